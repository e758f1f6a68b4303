package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/patentdesk/internal/shared/application"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/database"
)

func openTemp(t *testing.T) database.Connection {
	t.Helper()
	conn, err := NewConnection(context.Background(), database.Config{
		SQLitePath: filepath.Join(t.TempDir(), "portal.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestNewConnection(t *testing.T) {
	conn := openTemp(t)

	assert.NoError(t, conn.Ping(context.Background()))
	assert.Equal(t, database.DriverSQLite, conn.Driver())
}

func TestNewConnection_Registered(t *testing.T) {
	conn, err := database.NewConnection(context.Background(), database.Config{SQLitePath: ":memory:"})
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, database.DriverSQLite, conn.Driver())
}

func TestUnitOfWork_CommitAndRollback(t *testing.T) {
	ctx := context.Background()
	conn := openTemp(t)
	_, err := conn.Exec(ctx, `CREATE TABLE notes (id TEXT PRIMARY KEY, body TEXT)`)
	require.NoError(t, err)

	uow := database.NewUnitOfWork(conn)

	err = application.WithUnitOfWork(ctx, uow, func(txCtx context.Context) error {
		_, err := database.ExecutorFromContext(txCtx, conn).Exec(txCtx, `INSERT INTO notes VALUES (?, ?)`, "1", "kept")
		return err
	})
	require.NoError(t, err)

	err = application.WithUnitOfWork(ctx, uow, func(txCtx context.Context) error {
		if _, err := database.ExecutorFromContext(txCtx, conn).Exec(txCtx, `INSERT INTO notes VALUES (?, ?)`, "2", "dropped"); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)

	var count int
	require.NoError(t, conn.QueryRow(ctx, `SELECT COUNT(*) FROM notes`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestUnitOfWork_NestedJoinsOuter(t *testing.T) {
	ctx := context.Background()
	conn := openTemp(t)
	uow := database.NewUnitOfWork(conn)

	outer, err := uow.Begin(ctx)
	require.NoError(t, err)
	inner, err := uow.Begin(outer)
	require.NoError(t, err)

	innerInfo, ok := database.TxInfoFromContext(inner)
	require.True(t, ok)
	assert.False(t, innerInfo.Owned)

	assert.NoError(t, uow.Commit(inner))
	assert.NoError(t, uow.Commit(outer))
}
