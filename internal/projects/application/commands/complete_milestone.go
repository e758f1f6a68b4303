package commands

import (
	"context"

	"github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	sharedApplication "github.com/felixgeelhaar/patentdesk/internal/shared/application"
	"github.com/google/uuid"
)

// SetMilestoneCompletionCommand marks a milestone done (today) or not done.
type SetMilestoneCompletionCommand struct {
	Actor       sharedApplication.Actor
	MilestoneID uuid.UUID
	Completed   bool
}

// SetMilestoneCompletionHandler handles complete and uncomplete.
type SetMilestoneCompletionHandler struct {
	milestones domain.MilestoneRepository
	scheduler  *domain.DeliveryScheduler
	uow        sharedApplication.UnitOfWork
}

// NewSetMilestoneCompletionHandler creates a new SetMilestoneCompletionHandler.
func NewSetMilestoneCompletionHandler(
	milestones domain.MilestoneRepository,
	scheduler *domain.DeliveryScheduler,
	uow sharedApplication.UnitOfWork,
) *SetMilestoneCompletionHandler {
	return &SetMilestoneCompletionHandler{
		milestones: milestones,
		scheduler:  scheduler,
		uow:        uow,
	}
}

// Handle executes the SetMilestoneCompletionCommand.
func (h *SetMilestoneCompletionHandler) Handle(ctx context.Context, cmd SetMilestoneCompletionCommand) (*domain.Milestone, error) {
	if err := cmd.Actor.RequireAdmin(); err != nil {
		return nil, err
	}

	var milestone *domain.Milestone
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		m, err := h.milestones.FindByID(txCtx, cmd.MilestoneID)
		if err != nil {
			return err
		}

		if cmd.Completed {
			m.Complete(h.scheduler.Today(), h.scheduler.Now())
		} else {
			m.Uncomplete(h.scheduler.Now())
		}

		if err := h.milestones.Save(txCtx, m); err != nil {
			return err
		}
		milestone = m
		return nil
	})
	return milestone, err
}
