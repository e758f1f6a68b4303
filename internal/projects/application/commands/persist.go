package commands

import (
	"context"

	"github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	sharedApplication "github.com/felixgeelhaar/patentdesk/internal/shared/application"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// projectStore writes a project, its audit records and its events in the
// caller's transaction.
type projectStore struct {
	projects   domain.ProjectRepository
	updates    domain.UpdateRepository
	outboxRepo outbox.Repository
}

func (s projectStore) load(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	return s.projects.FindByID(ctx, id)
}

func (s projectStore) save(ctx context.Context, actor sharedApplication.Actor, p *domain.Project, records ...*domain.ProjectUpdate) error {
	if p.IsNew() {
		if err := s.projects.Create(ctx, p); err != nil {
			return err
		}
	} else if err := s.projects.Update(ctx, p); err != nil {
		return err
	}

	for _, record := range records {
		if record == nil {
			continue
		}
		if err := s.updates.Append(ctx, record); err != nil {
			return err
		}
	}

	events := p.DomainEvents()
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(ctx, actor.UserID))
	msgs, err := outbox.NewMessages(events)
	if err != nil {
		return err
	}
	if err := s.outboxRepo.SaveBatch(ctx, msgs); err != nil {
		return err
	}
	p.ClearDomainEvents()
	return nil
}
