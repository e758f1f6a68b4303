package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Config selects and configures a backend.
type Config struct {
	// Driver is the backend; empty means detect from URL.
	Driver Driver
	// URL is the Postgres connection string.
	URL string
	// SQLitePath is the SQLite file, or ":memory:". Defaults to ~/.patentdesk/portal.db.
	SQLitePath string
	// MaxConns caps the Postgres pool.
	MaxConns int
}

type connector func(ctx context.Context, cfg Config) (Connection, error)

var connectors = map[Driver]connector{}

// RegisterDriver makes a backend available to NewConnection. Backend packages
// call it from init, so importing them for side effects is enough.
func RegisterDriver(d Driver, fn func(ctx context.Context, cfg Config) (Connection, error)) {
	connectors[d] = fn
}

// NewConnection opens a connection for cfg.
func NewConnection(ctx context.Context, cfg Config) (Connection, error) {
	driver := cfg.Driver
	if driver == "" {
		if cfg.URL == "" && cfg.SQLitePath != "" {
			driver = DriverSQLite
		} else {
			driver = DetectDriver(cfg.URL)
		}
	}

	fn, ok := connectors[driver]
	if !ok {
		return nil, fmt.Errorf("database driver %q is not registered", driver)
	}
	return fn(ctx, cfg)
}

// DefaultSQLitePath is where local mode keeps its data.
func DefaultSQLitePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".patentdesk", "portal.db")
}

// EnsureDirectory creates the parent directory of path.
func EnsureDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
