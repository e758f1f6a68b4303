// Package migrations applies the embedded schema for the active backend.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/database"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

const ledgerDDL = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version    TEXT PRIMARY KEY,
    applied_at TEXT NOT NULL
)`

// Run applies every pending *.up.sql file for conn's driver in lexical order
// and records each one in schema_migrations. It is safe to call on every start.
func Run(ctx context.Context, conn database.Connection) error {
	dir := string(conn.Driver())
	names, err := upFiles(dir)
	if err != nil {
		return err
	}

	if _, err := conn.Exec(ctx, ledgerDDL); err != nil {
		return fmt.Errorf("failed to create migration ledger: %w", err)
	}

	uow := database.NewUnitOfWork(conn)
	for _, name := range names {
		version := strings.TrimSuffix(name, ".up.sql")

		var applied int
		if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version).Scan(&applied); err != nil {
			return fmt.Errorf("failed to read migration ledger: %w", err)
		}
		if applied > 0 {
			continue
		}

		body, err := files.ReadFile(dir + "/" + name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		txCtx, err := uow.Begin(ctx)
		if err != nil {
			return err
		}
		tx := database.ExecutorFromContext(txCtx, conn)
		if _, err := tx.Exec(txCtx, string(body)); err != nil {
			_ = uow.Rollback(txCtx)
			return fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
		if _, err := tx.Exec(txCtx, `INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
			version, database.FormatTime(time.Now())); err != nil {
			_ = uow.Rollback(txCtx)
			return fmt.Errorf("failed to record migration %s: %w", name, err)
		}
		if err := uow.Commit(txCtx); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", name, err)
		}
	}
	return nil
}

func upFiles(dir string) ([]string, error) {
	entries, err := fs.ReadDir(files, dir)
	if err != nil {
		return nil, fmt.Errorf("no migrations for driver %q: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
