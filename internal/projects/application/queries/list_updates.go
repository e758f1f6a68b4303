package queries

import (
	"context"

	"github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	sharedApplication "github.com/felixgeelhaar/patentdesk/internal/shared/application"
	"github.com/google/uuid"
)

// ListUpdatesQuery returns a project's audit trail oldest first.
type ListUpdatesQuery struct {
	Actor     sharedApplication.Actor
	ProjectID uuid.UUID
}

// ListUpdatesHandler handles the ListUpdatesQuery.
type ListUpdatesHandler struct {
	projects  domain.ProjectRepository
	updates   domain.UpdateRepository
	presenter presenter
}

// NewListUpdatesHandler creates a new ListUpdatesHandler.
func NewListUpdatesHandler(projects domain.ProjectRepository, updates domain.UpdateRepository, workflow *domain.Workflow) *ListUpdatesHandler {
	return &ListUpdatesHandler{
		projects:  projects,
		updates:   updates,
		presenter: presenter{workflow: workflow},
	}
}

// Handle executes the ListUpdatesQuery.
func (h *ListUpdatesHandler) Handle(ctx context.Context, query ListUpdatesQuery) ([]UpdateDTO, error) {
	p, err := h.projects.FindByID(ctx, query.ProjectID)
	if err != nil {
		return nil, err
	}
	if !query.Actor.CanAccessClient(p.ClientID()) {
		return nil, sharedApplication.ErrForbidden
	}

	updates, err := h.updates.ListByProject(ctx, p.ID())
	if err != nil {
		return nil, err
	}
	dtos := make([]UpdateDTO, 0, len(updates))
	for _, u := range updates {
		if !query.Actor.IsAdmin() {
			u = u.ForClient()
		}
		dtos = append(dtos, h.presenter.update(u))
	}
	return dtos, nil
}
