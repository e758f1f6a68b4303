package commands

import (
	"context"

	"github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	sharedApplication "github.com/felixgeelhaar/patentdesk/internal/shared/application"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// SetDeliveryScheduleCommand sets a project's timeline days or an explicit
// delivery date.
type SetDeliveryScheduleCommand struct {
	Actor     sharedApplication.Actor
	ProjectID uuid.UUID
	Schedule  domain.DeliverySchedule
}

// SetDeliveryScheduleHandler handles the SetDeliveryScheduleCommand.
type SetDeliveryScheduleHandler struct {
	store     projectStore
	scheduler *domain.DeliveryScheduler
	uow       sharedApplication.UnitOfWork
}

// NewSetDeliveryScheduleHandler creates a new SetDeliveryScheduleHandler.
func NewSetDeliveryScheduleHandler(
	projects domain.ProjectRepository,
	updates domain.UpdateRepository,
	outboxRepo outbox.Repository,
	scheduler *domain.DeliveryScheduler,
	uow sharedApplication.UnitOfWork,
) *SetDeliveryScheduleHandler {
	return &SetDeliveryScheduleHandler{
		store:     projectStore{projects: projects, updates: updates, outboxRepo: outboxRepo},
		scheduler: scheduler,
		uow:       uow,
	}
}

// Handle executes the SetDeliveryScheduleCommand.
func (h *SetDeliveryScheduleHandler) Handle(ctx context.Context, cmd SetDeliveryScheduleCommand) (*domain.Project, error) {
	if err := cmd.Actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := cmd.Schedule.Validate(); err != nil {
		return nil, err
	}

	schedule := cmd.Schedule
	if schedule.Annotation != nil {
		a := *schedule.Annotation
		a.By = cmd.Actor.UserID
		schedule.Annotation = &a
	}

	var project *domain.Project
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		p, err := h.store.load(txCtx, cmd.ProjectID)
		if err != nil {
			return err
		}
		update, err := p.ApplySchedule(schedule, h.scheduler.Now())
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
	return project, nil
}
