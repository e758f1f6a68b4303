// Package clitest wires a CLI App over a throwaway SQLite database for
// command tests.
package clitest

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/patentdesk/adapter/cli"
	internalApp "github.com/felixgeelhaar/patentdesk/internal/app"
	notificationsDomain "github.com/felixgeelhaar/patentdesk/internal/notifications/domain"
	"github.com/felixgeelhaar/patentdesk/internal/projects/domain"
	"github.com/felixgeelhaar/patentdesk/pkg/config"
)

// Today is the fixed "now" of every test App.
var Today = time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

// RecordingSender captures notifications instead of emailing them.
type RecordingSender struct {
	mu   sync.Mutex
	sent []notificationsDomain.Notification
}

// Send records n.
func (s *RecordingSender) Send(_ context.Context, n notificationsDomain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	return nil
}

// Sent returns a copy of everything sent so far.
func (s *RecordingSender) Sent() []notificationsDomain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notificationsDomain.Notification(nil), s.sent...)
}

// Config is a local-mode configuration rooted in dir.
func Config(dir string) *config.Config {
	return &config.Config{
		AppEnv:                 "test",
		DatabaseDriver:         "sqlite",
		SQLitePath:             filepath.Join(dir, "test.db"),
		LogLevel:               "error",
		OutboxPollInterval:     time.Second,
		OutboxBatchSize:        50,
		OutboxMaxRetries:       3,
		OutboxRetryBackoffBase: time.Second,
		OutboxRetryBackoffMax:  time.Minute,
		PortalBaseURL:          "https://portal.example.com",
		AdminEmail:             "practice@example.com",
		PracticeTimezone:       "UTC",
		AdminUserID:            "00000000-0000-0000-0000-000000000001",
	}
}

// NewLocalApp builds an App, installs it with cli.SetApp and tears it
// down when the test ends.
func NewLocalApp(t *testing.T) (*cli.App, *RecordingSender) {
	t.Helper()

	sender := &RecordingSender{}
	clock := domain.ClockFunc(func() time.Time { return Today })
	container, err := internalApp.NewContainer(context.Background(), Config(t.TempDir()), nil,
		internalApp.WithClock(clock), internalApp.WithSender(sender))
	require.NoError(t, err)

	app, err := cli.NewApp(container)
	require.NoError(t, err)

	cli.SetApp(app)
	t.Cleanup(func() {
		cli.SetApp(nil)
		container.Close()
	})
	return app, sender
}
