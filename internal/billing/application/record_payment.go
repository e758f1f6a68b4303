// Package application turns successful payments into projects.
package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/felixgeelhaar/patentdesk/internal/billing/domain"
	"github.com/felixgeelhaar/patentdesk/internal/projects/application/commands"
	projects "github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	sharedApplication "github.com/felixgeelhaar/patentdesk/internal/shared/application"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/database"
)

// Guard claims a payment reference for the duration of one attempt.
type Guard interface {
	Acquire(ctx context.Context, reference string) bool
	Release(ctx context.Context, reference string)
}

// ProjectCreator is the project creation command.
type ProjectCreator interface {
	Handle(ctx context.Context, cmd commands.CreateProjectCommand) (*projects.Project, error)
}

// PaymentLookup finds the project opened for a payment.
type PaymentLookup interface {
	FindByPaymentReference(ctx context.Context, reference string) (*projects.Project, error)
}

// RecordPaymentResult is the project for the payment and whether it
// already existed.
type RecordPaymentResult struct {
	Project   *projects.Project
	Duplicate bool
}

// RecordPaymentHandler opens a project for each distinct payment.
type RecordPaymentHandler struct {
	creator ProjectCreator
	lookup  PaymentLookup
	guard   Guard
	logger  *slog.Logger
}

// NewRecordPaymentHandler creates a handler. guard may be nil.
func NewRecordPaymentHandler(creator ProjectCreator, lookup PaymentLookup, guard Guard, logger *slog.Logger) *RecordPaymentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordPaymentHandler{creator: creator, lookup: lookup, guard: guard, logger: logger}
}

// Handle records event. Repeat deliveries of the same payment reference
// return the existing project.
func (h *RecordPaymentHandler) Handle(ctx context.Context, event domain.PaymentSucceeded) (*RecordPaymentResult, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}
	serviceType, err := domain.ServiceTypeFor(event.ServiceIdentifier)
	if err != nil {
		return nil, err
	}
	// Projects store the trimmed reference, so lookups and the guard key use it too.
	ref := strings.TrimSpace(event.PaymentReferenceID)

	if existing, err := h.existing(ctx, ref); err != nil || existing != nil {
		return existing, err
	}

	if h.guard != nil {
		if !h.guard.Acquire(ctx, ref) {
			return nil, domain.ErrPaymentInProgress
		}
	}

	price := event.AmountPaid()
	p, err := h.creator.Handle(ctx, commands.CreateProjectCommand{
		Actor:            sharedApplication.SystemActor,
		ClientEmail:      event.CustomerEmail,
		ClientName:       event.CustomerName,
		ServiceType:      string(serviceType),
		PricePaid:        &price,
		Currency:         domain.NormalizeCurrency(event.Currency),
		PaymentReference: ref,
		Origin:           commands.OriginPayment,
	})
	if err != nil {
		if h.guard != nil {
			h.guard.Release(ctx, ref)
		}
		if database.IsUniqueViolation(err) {
			if existing, lookupErr := h.existing(ctx, ref); lookupErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}

	h.logger.InfoContext(ctx, "project opened from payment",
		"project_id", p.ID(),
		"service_type", serviceType,
		"payment_reference", ref,
	)
	return &RecordPaymentResult{Project: p}, nil
}

func (h *RecordPaymentHandler) existing(ctx context.Context, ref string) (*RecordPaymentResult, error) {
	p, err := h.lookup.FindByPaymentReference(ctx, ref)
	if errors.Is(err, projects.ErrProjectNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &RecordPaymentResult{Project: p, Duplicate: true}, nil
}
