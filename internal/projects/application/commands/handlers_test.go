package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	sharedApplication "github.com/felixgeelhaar/patentdesk/internal/shared/application"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockProjectRepo is a mock implementation of domain.ProjectRepository.
type mockProjectRepo struct {
	mock.Mock
}

func (m *mockProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}

func (m *mockProjectRepo) FindByPaymentReference(ctx context.Context, reference string) (*domain.Project, error) {
	args := m.Called(ctx, reference)
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

// mockUpdateRepo is a mock implementation of domain.UpdateRepository.
type mockUpdateRepo struct {
	mock.Mock
}

func (m *mockUpdateRepo) Append(ctx context.Context, u *domain.ProjectUpdate) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUpdateRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectUpdate, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProjectUpdate), args.Error(1)
}

// mockOutboxRepo records the messages handed to SaveBatch.
type mockOutboxRepo struct {
	mock.Mock
	outbox.Repository
}

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	return m.Called(ctx, msgs).Error(0)
}

// mockUnitOfWork is a mock implementation of UnitOfWork.
type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var (
	admin     = sharedApplication.Actor{UserID: uuid.New(), Role: sharedApplication.RoleAdmin}
	clientAct = sharedApplication.Actor{UserID: uuid.New(), Role: sharedApplication.RoleClient}
	fixedNow  = time.Date(2026, 1, 1, 15, 0, 0, 0, time.UTC)
)

func testScheduler() *domain.DeliveryScheduler {
	return domain.NewDeliveryScheduler(domain.ClockFunc(func() time.Time { return fixedNow }), time.UTC)
}

func storedProject(t *testing.T, st domain.ServiceType) *domain.Project {
	t.Helper()
	p, _, err := domain.NewProject(domain.NewProjectParams{
		ClientID:    uuid.New(),
		ServiceType: st,
		StartDate:   domain.Date(2026, 1, 1),
	}, domain.MustDefaultCatalog(), fixedNow)
	require.NoError(t, err)
	p.MarkPersisted()
	p.ClearDomainEvents()
	return p
}

func txContexts() (context.Context, context.Context) {
	ctx := context.Background()
	return ctx, context.WithValue(ctx, "tx", "transaction")
}

// ============ AdvanceProjectHandler Tests ============

func TestAdvanceProjectHandler_Handle(t *testing.T) {
	wf := domain.NewWorkflow(domain.MustDefaultCatalog())

	t.Run("advances one stage and writes update and event together", func(t *testing.T) {
		projects, updates, outboxRepo, uow := new(mockProjectRepo), new(mockUpdateRepo), new(mockOutboxRepo), new(mockUnitOfWork)
		handler := NewAdvanceProjectHandler(projects, updates, outboxRepo, wf, testScheduler(), uow, nil)
		ctx, txCtx := txContexts()
		p := storedProject(t, domain.ServiceFiling)

		uow.On("Begin", ctx).Return(txCtx, nil)
		projects.On("FindByID", txCtx, p.ID()).Return(p, nil)
		projects.On("Update", txCtx, p).Return(nil)
		updates.On("Append", txCtx, mock.MatchedBy(func(u *domain.ProjectUpdate) bool {
			return *u.StatusFrom == domain.StagePaymentReceived && u.StatusTo == "document_review" &&
				u.NotifyClient && u.CreatedBy == admin.UserID
		})).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.MatchedBy(func(msgs []*outbox.Message) bool {
			return len(msgs) == 1 && msgs[0].RoutingKey == domain.RoutingKeyStatusAdvanced
		})).Return(nil)
		uow.On("Commit", txCtx).Return(nil)

		got, err := handler.Handle(ctx, AdvanceProjectCommand{Actor: admin, ProjectID: p.ID(), Note: "Reviewing documents"})

		require.NoError(t, err)
		assert.Equal(t, domain.Stage("document_review"), got.Status())
		assert.Empty(t, got.DomainEvents())
		projects.AssertExpectations(t)
		updates.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
		uow.AssertExpectations(t)
	})

	t.Run("terminal state rolls back without writing", func(t *testing.T) {
		projects, updates, outboxRepo, uow := new(mockProjectRepo), new(mockUpdateRepo), new(mockOutboxRepo), new(mockUnitOfWork)
		handler := NewAdvanceProjectHandler(projects, updates, outboxRepo, wf, testScheduler(), uow, nil)
		ctx, txCtx := txContexts()

		snap := storedProject(t, domain.ServiceFiling).Snapshot()
		snap.Status = domain.StageComplete
		done := fixedNow
		snap.ActualDelivery = &done
		p := domain.RehydrateProject(snap)

		uow.On("Begin", ctx).Return(txCtx, nil)
		projects.On("FindByID", txCtx, p.ID()).Return(p, nil)
		uow.On("Rollback", txCtx).Return(nil)

		_, err := handler.Handle(ctx, AdvanceProjectCommand{Actor: admin, ProjectID: p.ID()})

		assert.ErrorIs(t, err, domain.ErrTerminalState)
		projects.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		updates.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
		uow.AssertExpectations(t)
	})

	t.Run("audit failure rolls back the transition", func(t *testing.T) {
		projects, updates, outboxRepo, uow := new(mockProjectRepo), new(mockUpdateRepo), new(mockOutboxRepo), new(mockUnitOfWork)
		handler := NewAdvanceProjectHandler(projects, updates, outboxRepo, wf, testScheduler(), uow, nil)
		ctx, txCtx := txContexts()
		p := storedProject(t, domain.ServiceFiling)
		boom := errors.New("disk full")

		uow.On("Begin", ctx).Return(txCtx, nil)
		projects.On("FindByID", txCtx, p.ID()).Return(p, nil)
		projects.On("Update", txCtx, p).Return(nil)
		updates.On("Append", txCtx, mock.Anything).Return(boom)
		uow.On("Rollback", txCtx).Return(nil)

		_, err := handler.Handle(ctx, AdvanceProjectCommand{Actor: admin, ProjectID: p.ID()})

		assert.ErrorIs(t, err, boom)
		outboxRepo.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything)
		uow.AssertNotCalled(t, "Commit", mock.Anything)
	})

	t.Run("clients may not advance", func(t *testing.T) {
		uow := new(mockUnitOfWork)
		handler := NewAdvanceProjectHandler(new(mockProjectRepo), new(mockUpdateRepo), new(mockOutboxRepo), wf, testScheduler(), uow, nil)

		_, err := handler.Handle(context.Background(), AdvanceProjectCommand{Actor: clientAct, ProjectID: uuid.New()})

		assert.ErrorIs(t, err, sharedApplication.ErrForbidden)
		uow.AssertNotCalled(t, "Begin", mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		projects, uow := new(mockProjectRepo), new(mockUnitOfWork)
		handler := NewAdvanceProjectHandler(projects, new(mockUpdateRepo), new(mockOutboxRepo), wf, testScheduler(), uow, nil)
		ctx, txCtx := txContexts()
		id := uuid.New()

		uow.On("Begin", ctx).Return(txCtx, nil)
		projects.On("FindByID", txCtx, id).Return(nil, domain.ErrProjectNotFound)
		uow.On("Rollback", txCtx).Return(nil)

		_, err := handler.Handle(ctx, AdvanceProjectCommand{Actor: admin, ProjectID: id})
		assert.True(t, domain.IsNotFound(err))
	})
}

// ============ AnnotateProjectHandler Tests ============

func TestAnnotateProjectHandler_Handle(t *testing.T) {
	t.Run("empty note is rejected before any write", func(t *testing.T) {
		uow := new(mockUnitOfWork)
		handler := NewAnnotateProjectHandler(new(mockProjectRepo), new(mockUpdateRepo), new(mockOutboxRepo), testScheduler(), uow)

		_, err := handler.Handle(context.Background(), AnnotateProjectCommand{Actor: admin, ProjectID: uuid.New(), Note: "  "})

		assert.True(t, domain.IsValidation(err))
		uow.AssertNotCalled(t, "Begin", mock.Anything)
	})

	t.Run("records a same-status update", func(t *testing.T) {
		projects, updates, outboxRepo, uow := new(mockProjectRepo), new(mockUpdateRepo), new(mockOutboxRepo), new(mockUnitOfWork)
		handler := NewAnnotateProjectHandler(projects, updates, outboxRepo, testScheduler(), uow)
		ctx, txCtx := txContexts()
		p := storedProject(t, domain.ServiceFTO)

		uow.On("Begin", ctx).Return(txCtx, nil)
		projects.On("FindByID", txCtx, p.ID()).Return(p, nil)
		projects.On("Update", txCtx, p).Return(nil)
		updates.On("Append", txCtx, mock.Anything).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.Anything).Return(nil)
		uow.On("Commit", txCtx).Return(nil)

		u, err := handler.Handle(ctx, AnnotateProjectCommand{Actor: admin, ProjectID: p.ID(), Note: "Awaiting inventor feedback"})

		require.NoError(t, err)
		assert.Equal(t, *u.StatusFrom, u.StatusTo)
		assert.False(t, u.NotifyClient)
	})
}

// ============ SetDeliveryScheduleHandler Tests ============

func TestSetDeliveryScheduleHandler_Handle(t *testing.T) {
	t.Run("rejects a malformed schedule", func(t *testing.T) {
		uow := new(mockUnitOfWork)
		handler := NewSetDeliveryScheduleHandler(new(mockProjectRepo), new(mockUpdateRepo), new(mockOutboxRepo), testScheduler(), uow)

		_, err := handler.Handle(context.Background(), SetDeliveryScheduleCommand{
			Actor:    admin,
			Schedule: domain.DeliverySchedule{Mode: "weeks"},
		})

		assert.True(t, domain.IsValidation(err))
		uow.AssertNotCalled(t, "Begin", mock.Anything)
	})

	t.Run("date mode with a note appends an annotation", func(t *testing.T) {
		projects, updates, outboxRepo, uow := new(mockProjectRepo), new(mockUpdateRepo), new(mockOutboxRepo), new(mockUnitOfWork)
		handler := NewSetDeliveryScheduleHandler(projects, updates, outboxRepo, testScheduler(), uow)
		ctx, txCtx := txContexts()
		p := storedProject(t, domain.ServiceInternationalFiling)

		uow.On("Begin", ctx).Return(txCtx, nil)
		projects.On("FindByID", txCtx, p.ID()).Return(p, nil)
		projects.On("Update", txCtx, p).Return(nil)
		updates.On("Append", txCtx, mock.MatchedBy(func(u *domain.ProjectUpdate) bool {
			return u.Note == "Agent confirmed date" && u.CreatedBy == admin.UserID
		})).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.Anything).Return(nil)
		uow.On("Commit", txCtx).Return(nil)

		got, err := handler.Handle(ctx, SetDeliveryScheduleCommand{
			Actor:     admin,
			ProjectID: p.ID(),
			Schedule:  domain.ScheduleDate(domain.Date(2026, 5, 1), &domain.Annotation{Note: "Agent confirmed date"}),
		})

		require.NoError(t, err)
		assert.True(t, got.DeliveryOverridden())
		updates.AssertExpectations(t)
	})
}

// ============ CreateProjectHandler Tests ============

type mockClientRepo struct {
	mock.Mock
}

func (m *mockClientRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *mockClientRepo) FindByEmail(ctx context.Context, email string) (*domain.Client, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *mockClientRepo) EnsureByEmail(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func TestCreateProjectHandler_Handle(t *testing.T) {
	catalog := domain.MustDefaultCatalog()

	t.Run("unknown service type is a validation error", func(t *testing.T) {
		uow := new(mockUnitOfWork)
		handler := NewCreateProjectHandler(new(mockProjectRepo), new(mockUpdateRepo), new(mockClientRepo),
			new(mockOutboxRepo), catalog, testScheduler(), uow, nil)

		_, err := handler.Handle(context.Background(), CreateProjectCommand{
			Actor: admin, ClientID: uuid.New(), ServiceType: "trademark",
		})

		assert.ErrorIs(t, err, domain.ErrUnknownServiceType)
		uow.AssertNotCalled(t, "Begin", mock.Anything)
	})

	t.Run("creates the client by email and defaults the start date", func(t *testing.T) {
		projects, updates, clients, outboxRepo, uow := new(mockProjectRepo), new(mockUpdateRepo), new(mockClientRepo), new(mockOutboxRepo), new(mockUnitOfWork)
		handler := NewCreateProjectHandler(projects, updates, clients, outboxRepo, catalog, testScheduler(), uow, nil)
		ctx, txCtx := txContexts()
		existing := domain.RehydrateClient(uuid.New(), "inventor@example.com", "Inventor", fixedNow, fixedNow)

		uow.On("Begin", ctx).Return(txCtx, nil)
		clients.On("EnsureByEmail", txCtx, mock.Anything).Return(existing, nil)
		projects.On("Create", txCtx, mock.MatchedBy(func(p *domain.Project) bool {
			return p.ClientID() == existing.ID() && p.StartDate().Equal(domain.Date(2026, 1, 1))
		})).Return(nil)
		updates.On("Append", txCtx, mock.MatchedBy(func(u *domain.ProjectUpdate) bool {
			return u.StatusFrom == nil && u.StatusTo == domain.StagePaymentReceived && u.NotifyClient
		})).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.MatchedBy(func(msgs []*outbox.Message) bool {
			return len(msgs) == 1 && msgs[0].RoutingKey == domain.RoutingKeyProjectCreated
		})).Return(nil)
		uow.On("Commit", txCtx).Return(nil)

		p, err := handler.Handle(ctx, CreateProjectCommand{
			Actor:       admin,
			ClientEmail: "Inventor@Example.com",
			ServiceType: "patent_drafting",
		})

		require.NoError(t, err)
		assert.Equal(t, domain.Date(2026, 2, 15), *p.EstimatedDelivery())
		clients.AssertExpectations(t)
		projects.AssertExpectations(t)
		updates.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
	})
}
