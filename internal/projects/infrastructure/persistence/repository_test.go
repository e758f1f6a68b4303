package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	"github.com/felixgeelhaar/patentdesk/internal/projects/infrastructure/persistence"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/migrations"
)

var now = time.Date(2026, 1, 1, 9, 30, 0, 0, time.UTC)

func setupTestDB(t *testing.T) database.Connection {
	t.Helper()
	ctx := context.Background()
	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn))
	return conn
}

func createTestClient(t *testing.T, conn database.Connection, email string) *domain.Client {
	t.Helper()
	c, err := domain.NewClient(email, "Test Client", now)
	require.NoError(t, err)
	stored, err := persistence.NewClientRepository(conn).EnsureByEmail(context.Background(), c)
	require.NoError(t, err)
	return stored
}

func createTestProject(t *testing.T, conn database.Connection, clientID uuid.UUID, reference string) *domain.Project {
	t.Helper()
	price := decimal.RequireFromString("2450.50")
	p, _, err := domain.NewProject(domain.NewProjectParams{
		ClientID:         clientID,
		ServiceType:      domain.ServicePatentDrafting,
		StartDate:        domain.Date(2026, 1, 1),
		Jurisdictions:    []string{"US", "EP"},
		PricePaid:        &price,
		PaymentReference: reference,
	}, domain.MustDefaultCatalog(), now)
	require.NoError(t, err)
	require.NoError(t, persistence.NewProjectRepository(conn).Create(context.Background(), p))
	return p
}

func TestProjectRepository_CreateAndFind(t *testing.T) {
	conn := setupTestDB(t)
	repo := persistence.NewProjectRepository(conn)
	ctx := context.Background()
	client := createTestClient(t, conn, "inventor@example.com")

	p := createTestProject(t, conn, client.ID(), "pi_123")
	assert.Equal(t, 1, p.Version())

	found, err := repo.FindByID(ctx, p.ID())
	require.NoError(t, err)
	want, got := p.Snapshot(), found.Snapshot()
	require.NotNil(t, got.PricePaid)
	assert.True(t, want.PricePaid.Equal(*got.PricePaid))
	want.PricePaid, got.PricePaid = nil, nil
	assert.Equal(t, want, got)

	byRef, err := repo.FindByPaymentReference(ctx, "pi_123")
	require.NoError(t, err)
	assert.Equal(t, p.ID(), byRef.ID())

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)

	_, err = repo.FindByPaymentReference(ctx, "pi_missing")
	assert.True(t, domain.IsNotFound(err))
}

func TestProjectRepository_DuplicatePaymentReference(t *testing.T) {
	conn := setupTestDB(t)
	client := createTestClient(t, conn, "inventor@example.com")
	createTestProject(t, conn, client.ID(), "pi_dup")

	p, _, err := domain.NewProject(domain.NewProjectParams{
		ClientID:         client.ID(),
		ServiceType:      domain.ServiceFTO,
		StartDate:        domain.Date(2026, 1, 1),
		PaymentReference: "pi_dup",
	}, domain.MustDefaultCatalog(), now)
	require.NoError(t, err)

	err = persistence.NewProjectRepository(conn).Create(context.Background(), p)
	assert.True(t, database.IsUniqueViolation(err))
}

func TestProjectRepository_UpdateOptimisticConcurrency(t *testing.T) {
	conn := setupTestDB(t)
	repo := persistence.NewProjectRepository(conn)
	ctx := context.Background()
	wf := domain.NewWorkflow(domain.MustDefaultCatalog())
	client := createTestClient(t, conn, "inventor@example.com")
	p := createTestProject(t, conn, client.ID(), "")

	first, err := repo.FindByID(ctx, p.ID())
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, p.ID())
	require.NoError(t, err)

	_, err = first.Advance(wf, domain.Annotation{}, now, now)
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, first))
	assert.Equal(t, 2, first.Version())

	_, err = second.Advance(wf, domain.Annotation{}, now, now)
	require.NoError(t, err)
	err = repo.Update(ctx, second)
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)

	stored, err := repo.FindByID(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.Stage("intake_review"), stored.Status())
	assert.Equal(t, 2, stored.Version())
}

func TestProjectRepository_PersistsScheduleFields(t *testing.T) {
	conn := setupTestDB(t)
	repo := persistence.NewProjectRepository(conn)
	ctx := context.Background()
	client := createTestClient(t, conn, "inventor@example.com")
	p := createTestProject(t, conn, client.ID(), "")

	_, err := p.OverrideDeliveryDate(domain.Date(2026, 3, 1), nil, now)
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, p))

	stored, err := repo.FindByID(ctx, p.ID())
	require.NoError(t, err)
	assert.True(t, stored.DeliveryOverridden())
	assert.Equal(t, domain.Date(2026, 3, 1), *stored.EstimatedDelivery())

	_, err = stored.SetTimeline(nil, now)
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, stored))

	cleared, err := repo.FindByID(ctx, p.ID())
	require.NoError(t, err)
	assert.Nil(t, cleared.TimelineDays())
	assert.Nil(t, cleared.EstimatedDelivery())
	assert.False(t, cleared.DeliveryOverridden())
}

func TestProjectRepository_List(t *testing.T) {
	conn := setupTestDB(t)
	repo := persistence.NewProjectRepository(conn)
	ctx := context.Background()
	alice := createTestClient(t, conn, "alice@example.com")
	bob := createTestClient(t, conn, "bob@example.com")

	createTestProject(t, conn, alice.ID(), "pi_a1")
	createTestProject(t, conn, alice.ID(), "pi_a2")
	createTestProject(t, conn, bob.ID(), "pi_b1")

	all, err := repo.List(ctx, domain.ProjectFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	own, err := repo.List(ctx, domain.ProjectFilter{ClientID: alice.ID()})
	require.NoError(t, err)
	assert.Len(t, own, 2)
	for _, p := range own {
		assert.Equal(t, alice.ID(), p.ClientID())
	}

	limited, err := repo.List(ctx, domain.ProjectFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := repo.List(ctx, domain.ProjectFilter{Status: domain.StageComplete})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateRepository(t *testing.T) {
	conn := setupTestDB(t)
	repo := persistence.NewUpdateRepository(conn)
	ctx := context.Background()
	client := createTestClient(t, conn, "inventor@example.com")
	p := createTestProject(t, conn, client.ID(), "")

	admin := uuid.New()
	created := domain.NewProjectUpdate(p.ID(), nil, domain.StagePaymentReceived,
		domain.Annotation{NotifyClient: true, By: admin}, now)
	from := domain.StagePaymentReceived
	advanced := domain.NewProjectUpdate(p.ID(), &from, "intake_review",
		domain.Annotation{Note: "Started", InternalNote: "claims look broad"}, now.Add(time.Hour))

	require.NoError(t, repo.Append(ctx, advanced))
	require.NoError(t, repo.Append(ctx, created))

	updates, err := repo.ListByProject(ctx, p.ID())
	require.NoError(t, err)
	require.Len(t, updates, 2)

	assert.Equal(t, created.ID, updates[0].ID)
	assert.Nil(t, updates[0].StatusFrom)
	assert.True(t, updates[0].NotifyClient)
	assert.Equal(t, admin, updates[0].CreatedBy)

	assert.Equal(t, *advanced, updates[1])
}

func TestUpdateRepository_SameInstantKeepsInsertionOrder(t *testing.T) {
	conn := setupTestDB(t)
	repo := persistence.NewUpdateRepository(conn)
	ctx := context.Background()
	client := createTestClient(t, conn, "inventor@example.com")
	p := createTestProject(t, conn, client.ID(), "")

	seq := domain.MustDefaultCatalog().Stages(domain.ServicePatentDrafting)
	var want []uuid.UUID
	var from *domain.Stage
	for _, stage := range seq {
		u := domain.NewProjectUpdate(p.ID(), from, stage, domain.Annotation{}, now)
		require.NoError(t, repo.Append(ctx, u))
		want = append(want, u.ID)
		s := stage
		from = &s
	}

	updates, err := repo.ListByProject(ctx, p.ID())
	require.NoError(t, err)
	require.Len(t, updates, len(want))
	for i, u := range updates {
		assert.Equal(t, want[i], u.ID)
		assert.Equal(t, seq[i], u.StatusTo)
	}
}

func TestMilestoneRepository(t *testing.T) {
	conn := setupTestDB(t)
	repo := persistence.NewMilestoneRepository(conn)
	ctx := context.Background()
	client := createTestClient(t, conn, "inventor@example.com")
	p := createTestProject(t, conn, client.ID(), "")

	target := domain.Date(2026, 1, 15)
	dated, err := domain.NewMilestone(p.ID(), "Inventor interview", &target, true, now)
	require.NoError(t, err)
	undated, err := domain.NewMilestone(p.ID(), "Internal prior art sweep", nil, false, now)
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, undated))
	require.NoError(t, repo.Save(ctx, dated))

	dated.Complete(domain.Date(2026, 1, 14), now)
	require.NoError(t, repo.Save(ctx, dated))

	list, err := repo.ListByProject(ctx, p.ID())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, dated.ID(), list[0].ID())
	assert.Equal(t, domain.Date(2026, 1, 14), *list[0].CompletedDate())
	assert.False(t, list[1].IsClientVisible())

	require.NoError(t, repo.Delete(ctx, undated.ID()))
	_, err = repo.FindByID(ctx, undated.ID())
	assert.ErrorIs(t, err, domain.ErrMilestoneNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, undated.ID()), domain.ErrMilestoneNotFound)
}

func TestClientRepository_EnsureByEmail(t *testing.T) {
	conn := setupTestDB(t)
	repo := persistence.NewClientRepository(conn)
	ctx := context.Background()

	first := createTestClient(t, conn, "Inventor@Example.com")

	again, err := domain.NewClient("inventor@example.com", "Someone Else", now)
	require.NoError(t, err)
	stored, err := repo.EnsureByEmail(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, first.ID(), stored.ID())
	assert.Equal(t, "Test Client", stored.Name())

	byID, err := repo.FindByID(ctx, first.ID())
	require.NoError(t, err)
	assert.Equal(t, "inventor@example.com", byID.Email())

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrClientNotFound)
}
