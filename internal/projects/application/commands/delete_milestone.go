package commands

import (
	"context"

	"github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	sharedApplication "github.com/felixgeelhaar/patentdesk/internal/shared/application"
	"github.com/google/uuid"
)

// DeleteMilestoneCommand contains the data needed to delete a milestone.
type DeleteMilestoneCommand struct {
	Actor       sharedApplication.Actor
	MilestoneID uuid.UUID
}

// DeleteMilestoneHandler handles the DeleteMilestoneCommand.
type DeleteMilestoneHandler struct {
	milestones domain.MilestoneRepository
	uow        sharedApplication.UnitOfWork
}

// NewDeleteMilestoneHandler creates a new DeleteMilestoneHandler.
func NewDeleteMilestoneHandler(milestones domain.MilestoneRepository, uow sharedApplication.UnitOfWork) *DeleteMilestoneHandler {
	return &DeleteMilestoneHandler{milestones: milestones, uow: uow}
}

// Handle executes the DeleteMilestoneCommand.
func (h *DeleteMilestoneHandler) Handle(ctx context.Context, cmd DeleteMilestoneCommand) error {
	if err := cmd.Actor.RequireAdmin(); err != nil {
		return err
	}
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		return h.milestones.Delete(txCtx, cmd.MilestoneID)
	})
}
