package api

import (
	"crypto/subtle"
	"errors"
	"net/http"

	billingDomain "github.com/felixgeelhaar/patentdesk/internal/billing/domain"
	documentsApp "github.com/felixgeelhaar/patentdesk/internal/documents/application"
	documentsDomain "github.com/felixgeelhaar/patentdesk/internal/documents/domain"
	messagesApp "github.com/felixgeelhaar/patentdesk/internal/messages/application"
)

// WebhookSecretHeader authenticates the checkout webhook.
const WebhookSecretHeader = "X-Webhook-Secret"

type postMessageRequest struct {
	Body string `json:"body"`
}

// handleListDocuments handles GET /api/v1/projects/{projectID}/documents
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "projectID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	docs, err := s.app.ListDocumentsHandler.Handle(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// handleUploadDocument handles POST /api/v1/projects/{projectID}/documents
// with a multipart "file" field.
func (s *Server) handleUploadDocument(maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "projectID")
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		// Leave room for the multipart envelope around the file.
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
		file, header, err := r.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				s.writeError(w, r, documentsDomain.ErrDocumentTooLarge)
				return
			}
			s.writeError(w, r, &APIError{Status: http.StatusBadRequest, Code: "bad_request", Message: `multipart field "file" is required`})
			return
		}
		defer file.Close()

		doc, err := s.app.UploadDocumentHandler.Handle(r.Context(), documentsApp.UploadDocumentCommand{
			Actor:       actorFrom(r.Context()),
			ProjectID:   id,
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Content:     file,
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, documentsApp.ToDTO(doc))
	}
}

// handleDocumentDownload handles GET /api/v1/documents/{documentID}/download
func (s *Server) handleDocumentDownload(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "documentID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	link, err := s.app.DocumentDownloadURLHandler.Handle(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

// handleListMessages handles GET /api/v1/projects/{projectID}/messages
func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "projectID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	messages, err := s.app.ListMessagesHandler.Handle(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// handlePostMessage handles POST /api/v1/projects/{projectID}/messages
func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "projectID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req postMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	message, err := s.app.PostMessageHandler.Handle(r.Context(), messagesApp.PostMessageCommand{
		Actor:     actorFrom(r.Context()),
		ProjectID: id,
		Body:      req.Body,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, message)
}

// handlePaymentSucceeded handles POST /api/v1/payments/succeeded. The
// checkout integration posts the normalized payment with the shared
// secret; repeat deliveries answer 200 with the existing project.
func (s *Server) handlePaymentSucceeded(w http.ResponseWriter, r *http.Request) {
	secret := s.app.Config.PaymentWebhookSecret
	given := r.Header.Get(WebhookSecretHeader)
	if secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(given)) != 1 {
		s.writeError(w, r, ErrUnauthorized)
		return
	}

	var event billingDomain.PaymentSucceeded
	if err := decodeJSON(w, r, &event); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.app.RecordPaymentHandler.Handle(r.Context(), event)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]any{
		"project_id": result.Project.ID(),
		"status":     string(result.Project.Status()),
		"duplicate":  result.Duplicate,
	})
}
