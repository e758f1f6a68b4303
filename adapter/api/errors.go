package api

import (
	"errors"
	"fmt"
	"net/http"

	billingDomain "github.com/felixgeelhaar/patentdesk/internal/billing/domain"
	documentsApp "github.com/felixgeelhaar/patentdesk/internal/documents/application"
	documentsDomain "github.com/felixgeelhaar/patentdesk/internal/documents/domain"
	identityApp "github.com/felixgeelhaar/patentdesk/internal/identity/application"
	projects "github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	sharedApplication "github.com/felixgeelhaar/patentdesk/internal/shared/application"
)

// APIError represents an API error.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Common API errors
var (
	ErrBadRequest = &APIError{
		Status:  http.StatusBadRequest,
		Code:    "bad_request",
		Message: "Invalid request",
	}
	ErrUnauthorized = &APIError{
		Status:  http.StatusUnauthorized,
		Code:    "unauthorized",
		Message: "Authentication required",
	}
	ErrForbidden = &APIError{
		Status:  http.StatusForbidden,
		Code:    "forbidden",
		Message: "Not permitted",
	}
	ErrNotFound = &APIError{
		Status:  http.StatusNotFound,
		Code:    "not_found",
		Message: "Resource not found",
	}
	ErrInternalServer = &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "Internal server error",
	}
)

// toAPIError classifies err. Unclassified errors become 500s and are
// never echoed to the caller.
func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var validation *projects.ValidationError
	switch {
	case errors.Is(err, documentsDomain.ErrDocumentTooLarge):
		return &APIError{Status: http.StatusRequestEntityTooLarge, Code: "too_large", Message: err.Error()}
	case errors.As(err, &validation):
		return &APIError{Status: http.StatusBadRequest, Code: "validation_failed", Message: validation.Message, Field: validation.Field}
	case projects.IsValidation(err):
		return &APIError{Status: http.StatusBadRequest, Code: "validation_failed", Message: err.Error()}
	case errors.Is(err, identityApp.ErrInvalidToken), errors.Is(err, sharedApplication.ErrUnauthenticated):
		return ErrUnauthorized
	case errors.Is(err, sharedApplication.ErrForbidden):
		return ErrForbidden
	case projects.IsNotFound(err):
		return &APIError{Status: http.StatusNotFound, Code: "not_found", Message: err.Error()}
	case errors.Is(err, projects.ErrTerminalState):
		return &APIError{Status: http.StatusConflict, Code: "terminal_state", Message: err.Error()}
	case errors.Is(err, projects.ErrConcurrentModification):
		return &APIError{Status: http.StatusConflict, Code: "concurrent_modification", Message: err.Error()}
	case errors.Is(err, projects.ErrUnknownStage):
		return &APIError{Status: http.StatusConflict, Code: "unknown_stage", Message: err.Error()}
	case errors.Is(err, billingDomain.ErrPaymentInProgress):
		return &APIError{Status: http.StatusConflict, Code: "payment_in_progress", Message: err.Error()}
	case errors.Is(err, documentsApp.ErrStorageNotConfigured):
		return &APIError{Status: http.StatusServiceUnavailable, Code: "storage_unavailable", Message: err.Error()}
	}
	return ErrInternalServer
}

// writeError writes err as a JSON error response, logging server faults.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeJSON(w, apiErr.Status, map[string]any{"error": apiErr})
}
