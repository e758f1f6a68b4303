package queries

import (
	"context"

	"github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	sharedApplication "github.com/felixgeelhaar/patentdesk/internal/shared/application"
	"github.com/google/uuid"
)

// GetProjectQuery contains the parameters for getting a project.
type GetProjectQuery struct {
	Actor     sharedApplication.Actor
	ProjectID uuid.UUID
}

// GetProjectHandler handles the GetProjectQuery.
type GetProjectHandler struct {
	projects   domain.ProjectRepository
	updates    domain.UpdateRepository
	milestones domain.MilestoneRepository
	presenter  presenter
}

// NewGetProjectHandler creates a new GetProjectHandler.
func NewGetProjectHandler(
	projects domain.ProjectRepository,
	updates domain.UpdateRepository,
	milestones domain.MilestoneRepository,
	workflow *domain.Workflow,
	scheduler *domain.DeliveryScheduler,
) *GetProjectHandler {
	return &GetProjectHandler{
		projects:   projects,
		updates:    updates,
		milestones: milestones,
		presenter:  presenter{workflow: workflow, scheduler: scheduler},
	}
}

// Handle executes the GetProjectQuery. Clients only see their own
// projects, client-visible milestones and updates without internal notes.
func (h *GetProjectHandler) Handle(ctx context.Context, query GetProjectQuery) (*ProjectDTO, error) {
	p, err := h.projects.FindByID(ctx, query.ProjectID)
	if err != nil {
		return nil, err
	}
	if !query.Actor.CanAccessClient(p.ClientID()) {
		return nil, sharedApplication.ErrForbidden
	}
	admin := query.Actor.IsAdmin()

	dto := h.presenter.project(p)
	dto.Timeline = h.presenter.workflow.Timeline(p.ServiceType(), p.Status())

	milestones, err := h.milestones.ListByProject(ctx, p.ID())
	if err != nil {
		return nil, err
	}
	for _, m := range milestones {
		if admin || m.IsClientVisible() {
			dto.Milestones = append(dto.Milestones, h.presenter.milestone(m))
		}
	}

	updates, err := h.updates.ListByProject(ctx, p.ID())
	if err != nil {
		return nil, err
	}
	for _, u := range updates {
		if !admin {
			u = u.ForClient()
		}
		dto.Updates = append(dto.Updates, h.presenter.update(u))
	}
	return &dto, nil
}
