package commands

import (
	"context"

	"github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	sharedApplication "github.com/felixgeelhaar/patentdesk/internal/shared/application"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/patentdesk/pkg/observability"
	"github.com/google/uuid"
)

// AdvanceProjectCommand moves a project one stage forward. NotifyClient
// defaults to true when nil.
type AdvanceProjectCommand struct {
	Actor        sharedApplication.Actor
	ProjectID    uuid.UUID
	Note         string
	InternalNote string
	NotifyClient *bool
}

// AdvanceProjectHandler handles the AdvanceProjectCommand.
type AdvanceProjectHandler struct {
	store     projectStore
	workflow  *domain.Workflow
	scheduler *domain.DeliveryScheduler
	uow       sharedApplication.UnitOfWork
	metrics   *observability.Metrics
}

// NewAdvanceProjectHandler creates a new AdvanceProjectHandler.
func NewAdvanceProjectHandler(
	projects domain.ProjectRepository,
	updates domain.UpdateRepository,
	outboxRepo outbox.Repository,
	workflow *domain.Workflow,
	scheduler *domain.DeliveryScheduler,
	uow sharedApplication.UnitOfWork,
	metrics *observability.Metrics,
) *AdvanceProjectHandler {
	return &AdvanceProjectHandler{
		store:     projectStore{projects: projects, updates: updates, outboxRepo: outboxRepo},
		workflow:  workflow,
		scheduler: scheduler,
		uow:       uow,
		metrics:   metrics,
	}
}

// Handle executes the AdvanceProjectCommand.
func (h *AdvanceProjectHandler) Handle(ctx context.Context, cmd AdvanceProjectCommand) (*domain.Project, error) {
	if err := cmd.Actor.RequireAdmin(); err != nil {
		return nil, err
	}

	notify := true
	if cmd.NotifyClient != nil {
		notify = *cmd.NotifyClient
	}

	var project *domain.Project
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		p, err := h.store.load(txCtx, cmd.ProjectID)
		if err != nil {
			return err
		}

		update, err := p.Advance(h.workflow, domain.Annotation{
			Note:         cmd.Note,
			InternalNote: cmd.InternalNote,
			NotifyClient: notify,
			By:           cmd.Actor.UserID,
		}, h.scheduler.Today(), h.scheduler.Now())
		if err != nil {
			return err
		}

		if err := h.store.save(txCtx, cmd.Actor, p, update); err != nil {
			return err
		}
		project = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.metrics.RecordStageAdvance(string(project.ServiceType()), string(project.Status()))
	return project, nil
}
