package commands

import (
	"context"

	"github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	sharedApplication "github.com/felixgeelhaar/patentdesk/internal/shared/application"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// AnnotateProjectCommand adds a note without changing the stage.
type AnnotateProjectCommand struct {
	Actor        sharedApplication.Actor
	ProjectID    uuid.UUID
	Note         string
	InternalNote string
	NotifyClient bool
}

// AnnotateProjectHandler handles the AnnotateProjectCommand.
type AnnotateProjectHandler struct {
	store     projectStore
	scheduler *domain.DeliveryScheduler
	uow       sharedApplication.UnitOfWork
}

// NewAnnotateProjectHandler creates a new AnnotateProjectHandler.
func NewAnnotateProjectHandler(
	projects domain.ProjectRepository,
	updates domain.UpdateRepository,
	outboxRepo outbox.Repository,
	scheduler *domain.DeliveryScheduler,
	uow sharedApplication.UnitOfWork,
) *AnnotateProjectHandler {
	return &AnnotateProjectHandler{
		store:     projectStore{projects: projects, updates: updates, outboxRepo: outboxRepo},
		scheduler: scheduler,
		uow:       uow,
	}
}

// Handle executes the AnnotateProjectCommand.
func (h *AnnotateProjectHandler) Handle(ctx context.Context, cmd AnnotateProjectCommand) (*domain.ProjectUpdate, error) {
	if err := cmd.Actor.RequireAdmin(); err != nil {
		return nil, err
	}
	annotation := domain.Annotation{
		Note:         cmd.Note,
		InternalNote: cmd.InternalNote,
		NotifyClient: cmd.NotifyClient,
		By:           cmd.Actor.UserID,
	}
	if annotation.IsEmpty() {
		return nil, domain.NewValidationError("note", "is required")
	}

	var update *domain.ProjectUpdate
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		p, err := h.store.load(txCtx, cmd.ProjectID)
		if err != nil {
			return err
		}
		u, err := p.Annotate(annotation, h.scheduler.Now())
		if err != nil {
			return err
		}
		if err := h.store.save(txCtx, cmd.Actor, p, u); err != nil {
			return err
		}
		update = u
		return nil
	})
	return update, err
}
