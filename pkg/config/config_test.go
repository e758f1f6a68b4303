package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "DATABASE_URL", "OUTBOX_MAX_RETRIES", "PRACTICE_TIMEZONE", "STORAGE_USE_TLS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.True(t, cfg.LocalMode())
	assert.Equal(t, 8, cfg.OutboxMaxRetries)
	assert.Equal(t, time.Second, cfg.OutboxPollInterval)
	assert.True(t, cfg.StorageUseTLS)
	assert.Equal(t, "America/New_York", cfg.PracticeTimezone)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://portal@db/portal")
	t.Setenv("OUTBOX_MAX_RETRIES", "3")
	t.Setenv("OUTBOX_POLL_INTERVAL", "250ms")
	t.Setenv("STORAGE_USE_TLS", "false")
	t.Setenv("PRACTICE_TIMEZONE", "Europe/Berlin")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.LocalMode())
	assert.Equal(t, 3, cfg.OutboxMaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.OutboxPollInterval)
	assert.False(t, cfg.StorageUseTLS)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("OUTBOX_BATCH_SIZE", "lots")
	t.Setenv("OUTBOX_STATS_INTERVAL", "soon")
	t.Setenv("PRACTICE_TIMEZONE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.OutboxBatchSize)
	assert.Equal(t, time.Minute, cfg.OutboxStatsInterval)
}

func TestLoad_RejectsUnknownTimezone(t *testing.T) {
	t.Setenv("PRACTICE_TIMEZONE", "Mars/Olympus")

	_, err := Load()
	assert.ErrorContains(t, err, "PRACTICE_TIMEZONE")
}

func TestLoadFile(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "")
	require.NoError(t, os.Unsetenv("ADMIN_EMAIL"))
	t.Setenv("PRACTICE_TIMEZONE", "UTC")

	path := filepath.Join(t.TempDir(), "portal.env")
	require.NoError(t, os.WriteFile(path, []byte("ADMIN_EMAIL=desk@example.com\nPRACTICE_TIMEZONE=Asia/Tokyo\n"), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "desk@example.com", cfg.AdminEmail)
	assert.Equal(t, "UTC", cfg.PracticeTimezone, "environment wins over the file")

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
