package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Format: LogFormatText, Output: &buf, ServiceName: "patentdesk"})

		logger.Info("project advanced", "stage", "drafting")

		assert.Contains(t, buf.String(), "project advanced")
		assert.Contains(t, buf.String(), "stage=drafting")
		assert.Contains(t, buf.String(), "service=patentdesk")
	})

	t.Run("json with context ids", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Format: LogFormatJSON, Output: &buf, ServiceVersion: "1.2.3"})
		ctx := WithUserID(WithCorrelationID(context.Background(), "corr-1"), "user-9")

		logger.InfoContext(ctx, "hello")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "corr-1", entry[CorrelationIDKey])
		assert.Equal(t, "user-9", entry[UserIDKey])
		assert.Equal(t, "1.2.3", entry["version"])
	})

	t.Run("level filters", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: "warn", Output: &buf})

		logger.Info("quiet")
		logger.Warn("loud")

		assert.NotContains(t, buf.String(), "quiet")
		assert.Contains(t, buf.String(), "loud")
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestLogConfigFor(t *testing.T) {
	assert.Equal(t, LogFormatText, LogConfigFor("development", "info", "patentdesk", "dev").Format)
	prod := LogConfigFor("production", "info", "patentdesk", "dev")
	assert.Equal(t, LogFormatJSON, prod.Format)
	assert.True(t, prod.AddSource)
}

func TestNewRequestContext(t *testing.T) {
	parent := "6f1c1a56-8c43-4c3e-9b0e-2d7f5a1e9c10"
	ctx := NewRequestContext(context.Background(), parent)
	assert.Equal(t, parent, CorrelationIDFromContext(ctx))
	assert.NotEmpty(t, RequestIDFromContext(ctx))

	assert.NotEmpty(t, CorrelationIDFromContext(NewRequestContext(context.Background(), "")))

	replaced := CorrelationIDFromContext(NewRequestContext(context.Background(), "not-a-uuid"))
	assert.NotEqual(t, "not-a-uuid", replaced)
	assert.NotEmpty(t, replaced)
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()

	m.RecordStageAdvance("patent_drafting", "drafting")
	m.RecordStageAdvance("patent_drafting", "drafting")
	m.RecordNotification("status_update", errors.New("boom"))
	m.RecordOutbox("published")
	m.ObserveHTTP("GET", "/api/v1/projects", 200, 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.stageAdvances.WithLabelValues("patent_drafting", "drafting")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notificationsSent.WithLabelValues("status_update", "failed")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.True(t, strings.Contains(rec.Body.String(), "patentdesk_outbox_publish_total"))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordStageAdvance("x", "y")
		m.RecordOutbox("dead")
		m.RecordNotification("k", nil)
	})
}

func TestHealthRegistry(t *testing.T) {
	reg := NewHealthRegistry(time.Second)
	reg.Register("database", func(context.Context) error { return nil })

	rec := httptest.NewRecorder()
	reg.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	reg.Register("broker", func(context.Context) error { return errors.New("connection refused") })
	results, healthy := reg.Check(context.Background())
	assert.False(t, healthy)
	assert.Equal(t, "connection refused", results["broker"])
	assert.Equal(t, "", results["database"])
}
