package queries

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	sharedApplication "github.com/felixgeelhaar/patentdesk/internal/shared/application"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProjectRepo struct {
	mock.Mock
	domain.ProjectRepository
}

func (m *mockProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}

func (m *mockProjectRepo) List(ctx context.Context, filter domain.ProjectFilter) ([]*domain.Project, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Project), args.Error(1)
}

type mockUpdateRepo struct {
	mock.Mock
	domain.UpdateRepository
}

func (m *mockUpdateRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectUpdate, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]domain.ProjectUpdate), args.Error(1)
}

type mockMilestoneRepo struct {
	mock.Mock
	domain.MilestoneRepository
}

func (m *mockMilestoneRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Milestone, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]*domain.Milestone), args.Error(1)
}

var (
	today    = time.Date(2026, 2, 8, 10, 0, 0, 0, time.UTC)
	workflow = domain.NewWorkflow(domain.MustDefaultCatalog())
)

func scheduler() *domain.DeliveryScheduler {
	return domain.NewDeliveryScheduler(domain.ClockFunc(func() time.Time { return today }), time.UTC)
}

func project(t *testing.T, clientID uuid.UUID, st domain.ServiceType, days *int) *domain.Project {
	t.Helper()
	p, _, err := domain.NewProject(domain.NewProjectParams{
		ClientID:             clientID,
		ServiceType:          st,
		StartDate:            domain.Date(2026, 1, 1),
		TimelineDaysOverride: days,
	}, domain.MustDefaultCatalog(), today)
	require.NoError(t, err)
	return p
}

func intp(n int) *int { return &n }

func TestGetProjectHandler_Handle(t *testing.T) {
	clientID := uuid.New()
	owner := sharedApplication.Actor{UserID: clientID, Role: sharedApplication.RoleClient}
	admin := sharedApplication.Actor{UserID: uuid.New(), Role: sharedApplication.RoleAdmin}

	setup := func(t *testing.T) (*GetProjectHandler, *domain.Project) {
		p := project(t, clientID, domain.ServicePatentDrafting, nil)
		visible, err := domain.NewMilestone(p.ID(), "Draft claims", nil, true, today)
		require.NoError(t, err)
		hidden, err := domain.NewMilestone(p.ID(), "Internal QA", nil, false, today)
		require.NoError(t, err)
		upd := domain.NewProjectUpdate(p.ID(), nil, domain.StagePaymentReceived,
			domain.Annotation{Note: "Welcome", InternalNote: "rush job"}, today)

		projects, updates, milestones := new(mockProjectRepo), new(mockUpdateRepo), new(mockMilestoneRepo)
		projects.On("FindByID", mock.Anything, p.ID()).Return(p, nil)
		milestones.On("ListByProject", mock.Anything, p.ID()).Return([]*domain.Milestone{visible, hidden}, nil)
		updates.On("ListByProject", mock.Anything, p.ID()).Return([]domain.ProjectUpdate{*upd}, nil)

		return NewGetProjectHandler(projects, updates, milestones, workflow, scheduler()), p
	}

	t.Run("owner sees the client view", func(t *testing.T) {
		handler, p := setup(t)

		dto, err := handler.Handle(context.Background(), GetProjectQuery{Actor: owner, ProjectID: p.ID()})

		require.NoError(t, err)
		assert.Equal(t, "Payment Received", dto.StatusLabel)
		assert.Equal(t, "slate", dto.ColorClass)
		assert.Equal(t, 0, dto.ProgressPercent)
		require.NotNil(t, dto.EstimatedDelivery)
		assert.Equal(t, "2026-02-15", *dto.EstimatedDelivery)
		require.NotNil(t, dto.DaysRemaining)
		assert.Equal(t, 7, *dto.DaysRemaining)
		assert.Equal(t, "urgent", dto.Urgency)
		assert.Len(t, dto.Timeline, 7)
		require.Len(t, dto.Milestones, 1)
		assert.Equal(t, "Draft claims", dto.Milestones[0].Title)
		require.Len(t, dto.Updates, 1)
		assert.Equal(t, "Welcome", dto.Updates[0].Note)
		assert.Empty(t, dto.Updates[0].InternalNote)
	})

	t.Run("admin sees everything", func(t *testing.T) {
		handler, p := setup(t)

		dto, err := handler.Handle(context.Background(), GetProjectQuery{Actor: admin, ProjectID: p.ID()})

		require.NoError(t, err)
		assert.Len(t, dto.Milestones, 2)
		assert.Equal(t, "rush job", dto.Updates[0].InternalNote)
	})

	t.Run("other clients are refused", func(t *testing.T) {
		handler, p := setup(t)
		stranger := sharedApplication.Actor{UserID: uuid.New(), Role: sharedApplication.RoleClient}

		_, err := handler.Handle(context.Background(), GetProjectQuery{Actor: stranger, ProjectID: p.ID()})

		assert.ErrorIs(t, err, sharedApplication.ErrForbidden)
	})
}

func TestListProjectsHandler_Handle(t *testing.T) {
	clientID := uuid.New()
	p := project(t, clientID, domain.ServiceFTO, nil)

	t.Run("clients are scoped to their own projects", func(t *testing.T) {
		projects := new(mockProjectRepo)
		projects.On("List", mock.Anything, domain.ProjectFilter{ClientID: clientID}).Return([]*domain.Project{p}, nil)
		handler := NewListProjectsHandler(projects, workflow, scheduler())

		dtos, err := handler.Handle(context.Background(), ListProjectsQuery{
			Actor: sharedApplication.Actor{UserID: clientID, Role: sharedApplication.RoleClient},
		})

		require.NoError(t, err)
		require.Len(t, dtos, 1)
		assert.Equal(t, "Freedom to Operate", dtos[0].ServiceLabel)
		projects.AssertExpectations(t)
	})

	t.Run("anonymous callers are refused", func(t *testing.T) {
		handler := NewListProjectsHandler(new(mockProjectRepo), workflow, scheduler())
		_, err := handler.Handle(context.Background(), ListProjectsQuery{})
		assert.ErrorIs(t, err, sharedApplication.ErrUnauthenticated)
	})
}

func TestDashboardHandler_Handle(t *testing.T) {
	clientID := uuid.New()
	overdue := project(t, clientID, domain.ServiceFiling, intp(5)) // due 2026-01-06
	urgent := project(t, clientID, domain.ServiceFiling, intp(45)) // due 2026-02-15, 7 days
	normal := project(t, clientID, domain.ServiceFiling, intp(46)) // due 2026-02-16, 8 days
	unscheduled := project(t, clientID, domain.ServiceInternationalFiling, nil)

	snap := project(t, clientID, domain.ServiceFiling, intp(1)).Snapshot()
	snap.Status = domain.StageComplete
	done := domain.Date(2026, 1, 2)
	snap.ActualDelivery = &done
	complete := domain.RehydrateProject(snap)

	projects := new(mockProjectRepo)
	projects.On("List", mock.Anything, domain.ProjectFilter{}).
		Return([]*domain.Project{normal, complete, urgent, unscheduled, overdue}, nil)
	handler := NewDashboardHandler(projects, workflow, scheduler())

	dash, err := handler.Handle(context.Background(), DashboardQuery{Actor: sharedApplication.SystemActor})

	require.NoError(t, err)
	assert.Equal(t, 5, dash.Total)
	assert.Equal(t, 4, dash.Open)
	assert.Equal(t, 1, dash.Completed)
	assert.Equal(t, 1, dash.Overdue)
	assert.Equal(t, 1, dash.Urgent)
	assert.Equal(t, 1, dash.Normal)
	assert.Equal(t, 1, dash.Unscheduled)
	require.Len(t, dash.Deadlines, 3)
	assert.Equal(t, overdue.ID(), dash.Deadlines[0].ID)
	assert.Equal(t, normal.ID(), dash.Deadlines[2].ID)

	_, err = handler.Handle(context.Background(), DashboardQuery{
		Actor: sharedApplication.Actor{UserID: clientID, Role: sharedApplication.RoleClient},
	})
	assert.ErrorIs(t, err, sharedApplication.ErrForbidden)
}

func TestListUpdatesHandler_Handle(t *testing.T) {
	clientID := uuid.New()
	p := project(t, clientID, domain.ServiceFTO, nil)
	from := domain.StagePaymentReceived
	u := domain.NewProjectUpdate(p.ID(), &from, "scope_definition", domain.Annotation{Note: "Scoping", InternalNote: "x"}, today)

	projects, updates := new(mockProjectRepo), new(mockUpdateRepo)
	projects.On("FindByID", mock.Anything, p.ID()).Return(p, nil)
	updates.On("ListByProject", mock.Anything, p.ID()).Return([]domain.ProjectUpdate{*u}, nil)
	handler := NewListUpdatesHandler(projects, updates, workflow)

	dtos, err := handler.Handle(context.Background(), ListUpdatesQuery{
		Actor:     sharedApplication.Actor{UserID: clientID, Role: sharedApplication.RoleClient},
		ProjectID: p.ID(),
	})

	require.NoError(t, err)
	require.Len(t, dtos, 1)
	assert.Equal(t, "Defining Scope", dtos[0].StatusLabel)
	assert.Equal(t, "payment_received", *dtos[0].StatusFrom)
	assert.Empty(t, dtos[0].InternalNote)
}
