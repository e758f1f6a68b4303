package application

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/patentdesk/internal/shared/domain"
	"github.com/felixgeelhaar/patentdesk/pkg/observability"
)

type metadataSetter interface {
	SetMetadata(metadata domain.EventMetadata)
}

// NewEventMetadata stamps events raised by one command. The correlation id
// is the caller's (HTTP request or CLI invocation) when ctx carries a valid
// one, so outbox delivery logs line up with the request that caused them.
func NewEventMetadata(ctx context.Context, userID uuid.UUID) domain.EventMetadata {
	correlationID, err := uuid.Parse(observability.CorrelationIDFromContext(ctx))
	if err != nil {
		correlationID = domain.NewID()
	}
	return domain.EventMetadata{
		CorrelationID: correlationID,
		CausationID:   domain.NewID(),
		UserID:        userID,
	}
}

// ApplyEventMetadata sets metadata on all events that support it.
func ApplyEventMetadata(events []domain.DomainEvent, metadata domain.EventMetadata) {
	for _, event := range events {
		if setter, ok := event.(metadataSetter); ok {
			setter.SetMetadata(metadata)
		}
	}
}
