package queries

import (
	"context"

	"github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	sharedApplication "github.com/felixgeelhaar/patentdesk/internal/shared/application"
	"github.com/google/uuid"
)

// ListProjectsQuery lists projects newest first. Client actors are always
// restricted to their own projects.
type ListProjectsQuery struct {
	Actor       sharedApplication.Actor
	Status      string
	ServiceType string
	Limit       int
}

// ListProjectsHandler handles the ListProjectsQuery.
type ListProjectsHandler struct {
	projects  domain.ProjectRepository
	presenter presenter
}

// NewListProjectsHandler creates a new ListProjectsHandler.
func NewListProjectsHandler(projects domain.ProjectRepository, workflow *domain.Workflow, scheduler *domain.DeliveryScheduler) *ListProjectsHandler {
	return &ListProjectsHandler{
		projects:  projects,
		presenter: presenter{workflow: workflow, scheduler: scheduler},
	}
}

// Handle executes the ListProjectsQuery.
func (h *ListProjectsHandler) Handle(ctx context.Context, query ListProjectsQuery) ([]ProjectDTO, error) {
	filter := domain.ProjectFilter{
		Status:      domain.Stage(query.Status),
		ServiceType: domain.ServiceType(query.ServiceType),
		Limit:       query.Limit,
	}
	switch {
	case query.Actor.IsAdmin():
	case query.Actor.Role == sharedApplication.RoleClient:
		// A signed-in client without a client record owns nothing yet.
		if query.Actor.UserID == uuid.Nil {
			return []ProjectDTO{}, nil
		}
		filter.ClientID = query.Actor.UserID
	default:
		return nil, sharedApplication.ErrUnauthenticated
	}

	projects, err := h.projects.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	dtos := make([]ProjectDTO, 0, len(projects))
	for _, p := range projects {
		dtos = append(dtos, h.presenter.project(p))
	}
	return dtos, nil
}
