package queries

import (
	"context"
	"sort"

	"github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	sharedApplication "github.com/felixgeelhaar/patentdesk/internal/shared/application"
)

// DashboardDTO summarizes the practice's open work.
type DashboardDTO struct {
	Total       int          `json:"total"`
	Open        int          `json:"open"`
	Completed   int          `json:"completed"`
	Overdue     int          `json:"overdue"`
	Urgent      int          `json:"urgent"`
	Normal      int          `json:"normal"`
	Unscheduled int          `json:"unscheduled"`
	Deadlines   []ProjectDTO `json:"deadlines"`
}

// DashboardQuery is admin-only.
type DashboardQuery struct {
	Actor sharedApplication.Actor
}

// DashboardHandler handles the DashboardQuery.
type DashboardHandler struct {
	projects  domain.ProjectRepository
	presenter presenter
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(projects domain.ProjectRepository, workflow *domain.Workflow, scheduler *domain.DeliveryScheduler) *DashboardHandler {
	return &DashboardHandler{
		projects:  projects,
		presenter: presenter{workflow: workflow, scheduler: scheduler},
	}
}

// Handle executes the DashboardQuery. Deadlines lists open projects with an
// estimate, closest first.
func (h *DashboardHandler) Handle(ctx context.Context, query DashboardQuery) (*DashboardDTO, error) {
	if err := query.Actor.RequireAdmin(); err != nil {
		return nil, err
	}
	projects, err := h.projects.List(ctx, domain.ProjectFilter{})
	if err != nil {
		return nil, err
	}

	dash := &DashboardDTO{Total: len(projects), Deadlines: []ProjectDTO{}}
	for _, p := range projects {
		if p.IsComplete() {
			dash.Completed++
			continue
		}
		dash.Open++

		dto := h.presenter.project(p)
		if dto.DaysRemaining == nil {
			dash.Unscheduled++
			continue
		}
		switch domain.Urgency(dto.Urgency) {
		case domain.UrgencyOverdue:
			dash.Overdue++
		case domain.UrgencyUrgent:
			dash.Urgent++
		default:
			dash.Normal++
		}
		dash.Deadlines = append(dash.Deadlines, dto)
	}

	sort.SliceStable(dash.Deadlines, func(i, j int) bool {
		return *dash.Deadlines[i].DaysRemaining < *dash.Deadlines[j].DaysRemaining
	})
	return dash, nil
}
