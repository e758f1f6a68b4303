package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	sharedApplication "github.com/felixgeelhaar/patentdesk/internal/shared/application"
	"github.com/google/uuid"
)

// AddMilestoneCommand contains the data needed to add a milestone to a project.
type AddMilestoneCommand struct {
	Actor         sharedApplication.Actor
	ProjectID     uuid.UUID
	Title         string
	TargetDate    *time.Time
	ClientVisible bool
}

// AddMilestoneHandler handles the AddMilestoneCommand.
type AddMilestoneHandler struct {
	projects   domain.ProjectRepository
	milestones domain.MilestoneRepository
	scheduler  *domain.DeliveryScheduler
	uow        sharedApplication.UnitOfWork
}

// NewAddMilestoneHandler creates a new AddMilestoneHandler.
func NewAddMilestoneHandler(
	projects domain.ProjectRepository,
	milestones domain.MilestoneRepository,
	scheduler *domain.DeliveryScheduler,
	uow sharedApplication.UnitOfWork,
) *AddMilestoneHandler {
	return &AddMilestoneHandler{
		projects:   projects,
		milestones: milestones,
		scheduler:  scheduler,
		uow:        uow,
	}
}

// Handle executes the AddMilestoneCommand.
func (h *AddMilestoneHandler) Handle(ctx context.Context, cmd AddMilestoneCommand) (*domain.Milestone, error) {
	if err := cmd.Actor.RequireAdmin(); err != nil {
		return nil, err
	}

	var milestone *domain.Milestone
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if _, err := h.projects.FindByID(txCtx, cmd.ProjectID); err != nil {
			return err
		}

		m, err := domain.NewMilestone(cmd.ProjectID, cmd.Title, cmd.TargetDate, cmd.ClientVisible, h.scheduler.Now())
		if err != nil {
			return err
		}
		if err := h.milestones.Save(txCtx, m); err != nil {
			return err
		}
		milestone = m
		return nil
	})
	return milestone, err
}
