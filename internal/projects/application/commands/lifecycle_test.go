package commands_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/patentdesk/internal/projects/application/commands"
	"github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	"github.com/felixgeelhaar/patentdesk/internal/projects/infrastructure/persistence"
	sharedApplication "github.com/felixgeelhaar/patentdesk/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/patentdesk/internal/shared/domain"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/patentdesk/pkg/observability"
)

type lifecycle struct {
	create    *commands.CreateProjectHandler
	advance   *commands.AdvanceProjectHandler
	annotate  *commands.AnnotateProjectHandler
	schedule  *commands.SetDeliveryScheduleHandler
	addMs     *commands.AddMilestoneHandler
	toggleMs  *commands.SetMilestoneCompletionHandler
	deleteMs  *commands.DeleteMilestoneHandler
	projects  *persistence.ProjectRepository
	updates   *persistence.UpdateRepository
	outbox    *outbox.SQLRepository
	metrics   *observability.Metrics
	catalog   *domain.Catalog
	milestone *persistence.MilestoneRepository
}

var admin = sharedApplication.Actor{UserID: uuid.New(), Role: sharedApplication.RoleAdmin}

func setupLifecycle(t *testing.T) *lifecycle {
	t.Helper()
	ctx := context.Background()
	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn))

	catalog := domain.MustDefaultCatalog()
	wf := domain.NewWorkflow(catalog)
	clock := domain.ClockFunc(func() time.Time { return time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC) })
	scheduler := domain.NewDeliveryScheduler(clock, time.UTC)
	uow := database.NewUnitOfWork(conn)
	metrics := observability.NewMetrics()

	l := &lifecycle{
		projects:  persistence.NewProjectRepository(conn),
		updates:   persistence.NewUpdateRepository(conn),
		outbox:    outbox.NewSQLRepository(conn),
		milestone: persistence.NewMilestoneRepository(conn),
		metrics:   metrics,
		catalog:   catalog,
	}
	clients := persistence.NewClientRepository(conn)
	l.create = commands.NewCreateProjectHandler(l.projects, l.updates, clients, l.outbox, catalog, scheduler, uow, metrics)
	l.advance = commands.NewAdvanceProjectHandler(l.projects, l.updates, l.outbox, wf, scheduler, uow, metrics)
	l.annotate = commands.NewAnnotateProjectHandler(l.projects, l.updates, l.outbox, scheduler, uow)
	l.schedule = commands.NewSetDeliveryScheduleHandler(l.projects, l.updates, l.outbox, scheduler, uow)
	l.addMs = commands.NewAddMilestoneHandler(l.projects, l.milestone, scheduler, uow)
	l.toggleMs = commands.NewSetMilestoneCompletionHandler(l.milestone, scheduler, uow)
	l.deleteMs = commands.NewDeleteMilestoneHandler(l.milestone, uow)
	return l
}

func (l *lifecycle) createDrafting(t *testing.T) *domain.Project {
	t.Helper()
	p, err := l.create.Handle(context.Background(), commands.CreateProjectCommand{
		Actor:       admin,
		ClientEmail: "inventor@example.com",
		ClientName:  "Ida Inventor",
		ServiceType: string(domain.ServicePatentDrafting),
		StartDate:   domain.Date(2026, 1, 1),
		InitialNote: "Thanks for your order",
	})
	require.NoError(t, err)
	return p
}

func TestLifecycle_AdvanceToComplete(t *testing.T) {
	l := setupLifecycle(t)
	ctx := context.Background()
	p := l.createDrafting(t)
	assert.Equal(t, domain.Date(2026, 2, 15), *p.EstimatedDelivery())

	seq := l.catalog.Stages(domain.ServicePatentDrafting)
	for i := 1; i < seq.Len(); i++ {
		got, err := l.advance.Handle(ctx, commands.AdvanceProjectCommand{Actor: admin, ProjectID: p.ID()})
		require.NoError(t, err)
		assert.Equal(t, seq[i], got.Status())
	}

	_, err := l.advance.Handle(ctx, commands.AdvanceProjectCommand{Actor: admin, ProjectID: p.ID()})
	assert.ErrorIs(t, err, domain.ErrTerminalState)

	stored, err := l.projects.FindByID(ctx, p.ID())
	require.NoError(t, err)
	assert.True(t, stored.IsComplete())
	require.NotNil(t, stored.ActualDelivery())
	assert.Equal(t, domain.Date(2026, 2, 20), *stored.ActualDelivery())

	updates, err := l.updates.ListByProject(ctx, p.ID())
	require.NoError(t, err)
	require.Len(t, updates, seq.Len())
	assert.Equal(t, "Thanks for your order", updates[0].Note)
	for i, u := range updates {
		assert.Equal(t, seq[i], u.StatusTo, "update %d out of order", i)
	}

	pending, err := l.outbox.GetUnpublished(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, pending, seq.Len())
	assert.Equal(t, domain.RoutingKeyProjectCreated, pending[0].RoutingKey)
	assert.Equal(t, domain.RoutingKeyStatusAdvanced, pending[1].RoutingKey)
}

func TestLifecycle_ScheduleOverridePrecedence(t *testing.T) {
	l := setupLifecycle(t)
	ctx := context.Background()
	p := l.createDrafting(t)

	override := domain.Date(2026, 3, 10)
	_, err := l.schedule.Handle(ctx, commands.SetDeliveryScheduleCommand{
		Actor: admin, ProjectID: p.ID(), Schedule: domain.ScheduleDate(override, nil),
	})
	require.NoError(t, err)

	same := 45
	got, err := l.schedule.Handle(ctx, commands.SetDeliveryScheduleCommand{
		Actor: admin, ProjectID: p.ID(), Schedule: domain.ScheduleDays(&same),
	})
	require.NoError(t, err)
	assert.Equal(t, override, *got.EstimatedDelivery())

	again, err := l.schedule.Handle(ctx, commands.SetDeliveryScheduleCommand{
		Actor: admin, ProjectID: p.ID(), Schedule: domain.ScheduleDays(&same),
	})
	require.NoError(t, err)
	assert.Equal(t, *got.EstimatedDelivery(), *again.EstimatedDelivery())

	longer := 50
	got, err = l.schedule.Handle(ctx, commands.SetDeliveryScheduleCommand{
		Actor: admin, ProjectID: p.ID(), Schedule: domain.ScheduleDays(&longer),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Date(2026, 2, 20), *got.EstimatedDelivery())
	assert.False(t, got.DeliveryOverridden())
}

func TestLifecycle_AnnotateKeepsStatus(t *testing.T) {
	l := setupLifecycle(t)
	ctx := context.Background()
	p := l.createDrafting(t)

	u, err := l.annotate.Handle(ctx, commands.AnnotateProjectCommand{
		Actor: admin, ProjectID: p.ID(), Note: "Drawings received", InternalNote: "late by a week", NotifyClient: true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StagePaymentReceived, u.StatusTo)

	stored, err := l.projects.FindByID(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.StagePaymentReceived, stored.Status())
}

func TestLifecycle_MilestonesNeverTouchTheProject(t *testing.T) {
	l := setupLifecycle(t)
	ctx := context.Background()
	p := l.createDrafting(t)
	before, err := l.projects.FindByID(ctx, p.ID())
	require.NoError(t, err)

	m, err := l.addMs.Handle(ctx, commands.AddMilestoneCommand{Actor: admin, ProjectID: p.ID(), Title: "Claims outline", ClientVisible: true})
	require.NoError(t, err)

	done, err := l.toggleMs.Handle(ctx, commands.SetMilestoneCompletionCommand{Actor: admin, MilestoneID: m.ID(), Completed: true})
	require.NoError(t, err)
	assert.Equal(t, domain.Date(2026, 2, 20), *done.CompletedDate())

	undone, err := l.toggleMs.Handle(ctx, commands.SetMilestoneCompletionCommand{Actor: admin, MilestoneID: m.ID()})
	require.NoError(t, err)
	assert.Nil(t, undone.CompletedDate())

	require.NoError(t, l.deleteMs.Handle(ctx, commands.DeleteMilestoneCommand{Actor: admin, MilestoneID: m.ID()}))

	after, err := l.projects.FindByID(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, before.Snapshot(), after.Snapshot())

	_, err = l.addMs.Handle(ctx, commands.AddMilestoneCommand{Actor: admin, ProjectID: uuid.New(), Title: "Orphan"})
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestLifecycle_OutboxCarriesRequestCorrelation(t *testing.T) {
	l := setupLifecycle(t)
	correlation := uuid.New()
	ctx := observability.NewRequestContext(context.Background(), correlation.String())

	p, err := l.create.Handle(ctx, commands.CreateProjectCommand{
		Actor:       admin,
		ClientEmail: "inventor@example.com",
		ServiceType: string(domain.ServiceFiling),
		StartDate:   domain.Date(2026, 1, 1),
	})
	require.NoError(t, err)
	_, err = l.advance.Handle(ctx, commands.AdvanceProjectCommand{Actor: admin, ProjectID: p.ID()})
	require.NoError(t, err)

	pending, err := l.outbox.GetUnpublished(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	for _, msg := range pending {
		var meta sharedDomain.EventMetadata
		require.NoError(t, json.Unmarshal(msg.Metadata, &meta))
		assert.Equal(t, correlation, meta.CorrelationID, msg.RoutingKey)
		assert.Equal(t, admin.UserID, meta.UserID)
	}
}
