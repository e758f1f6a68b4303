package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/patentdesk/internal/documents/domain"
	"github.com/felixgeelhaar/patentdesk/internal/documents/infrastructure/persistence"
	projects "github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	projectPersistence "github.com/felixgeelhaar/patentdesk/internal/projects/infrastructure/persistence"
	sharedApplication "github.com/felixgeelhaar/patentdesk/internal/shared/application"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/migrations"
)

var now = time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)

func setupProject(t *testing.T) (database.Connection, *projects.Project) {
	t.Helper()
	ctx := context.Background()
	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn))

	c, err := projects.NewClient("docs@example.com", "Docs Client", now)
	require.NoError(t, err)
	c, err = projectPersistence.NewClientRepository(conn).EnsureByEmail(ctx, c)
	require.NoError(t, err)

	p, _, err := projects.NewProject(projects.NewProjectParams{
		ClientID:    c.ID(),
		ServiceType: projects.ServiceIllustrations,
		StartDate:   projects.Date(2026, 2, 1),
	}, projects.MustDefaultCatalog(), now)
	require.NoError(t, err)
	require.NoError(t, projectPersistence.NewProjectRepository(conn).Create(ctx, p))
	return conn, p
}

func TestDocumentRepository_CreateAndFind(t *testing.T) {
	conn, p := setupProject(t)
	repo := persistence.NewDocumentRepository(conn)
	ctx := context.Background()
	actor := sharedApplication.Actor{UserID: uuid.New(), Role: sharedApplication.RoleClient}

	d, err := domain.NewDocument(p.ID(), actor, "sketch.pdf", "application/pdf", 1024, now)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, d))
	assert.False(t, d.IsNew())

	found, err := repo.FindByID(ctx, d.ID())
	require.NoError(t, err)
	assert.Equal(t, d.StoragePath(), found.StoragePath())
	assert.Equal(t, "sketch.pdf", found.Filename())
	assert.Equal(t, "application/pdf", found.ContentType())
	assert.Equal(t, int64(1024), found.Size())
	assert.Equal(t, actor.UserID, found.UploadedBy())
	assert.Equal(t, sharedApplication.RoleClient, found.UploaderRole())
	assert.True(t, found.CreatedAt().Equal(now))
}

func TestDocumentRepository_FindMissing(t *testing.T) {
	conn, _ := setupProject(t)
	repo := persistence.NewDocumentRepository(conn)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	assert.True(t, projects.IsNotFound(err))
}

func TestDocumentRepository_ListByProject(t *testing.T) {
	conn, p := setupProject(t)
	repo := persistence.NewDocumentRepository(conn)
	ctx := context.Background()
	actor := sharedApplication.Actor{UserID: uuid.New(), Role: sharedApplication.RoleAdmin}

	first, err := domain.NewDocument(p.ID(), actor, "first.pdf", "", 1, now)
	require.NoError(t, err)
	second, err := domain.NewDocument(p.ID(), actor, "second.pdf", "", 1, now.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	docs, err := repo.ListByProject(ctx, p.ID())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "second.pdf", docs[0].Filename())
	assert.Equal(t, "first.pdf", docs[1].Filename())

	empty, err := repo.ListByProject(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, empty)
}
