package api

import (
	"context"
	"net/http"
	"time"

	identityApp "github.com/felixgeelhaar/patentdesk/internal/identity/application"
	sharedApplication "github.com/felixgeelhaar/patentdesk/internal/shared/application"
	"github.com/felixgeelhaar/patentdesk/pkg/observability"
)

type contextKey string

const actorKey contextKey = "actor"

// CorrelationHeader carries a caller-supplied correlation id.
const CorrelationHeader = "X-Correlation-ID"

func withActor(ctx context.Context, actor sharedApplication.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// actorFrom returns the authenticated caller. authenticate guarantees one
// is present on every routed handler.
func actorFrom(ctx context.Context) sharedApplication.Actor {
	actor, _ := ctx.Value(actorKey).(sharedApplication.Actor)
	return actor
}

// withRequestContext attaches request and correlation ids for logging.
func (s *Server) withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := observability.NewRequestContext(r.Context(), r.Header.Get(CorrelationHeader))
		w.Header().Set("X-Request-ID", observability.RequestIDFromContext(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authenticate resolves the bearer token into an actor.
func (s *Server) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := s.app.Authenticator.Authenticate(r.Context(), identityApp.ExtractToken(r))
		if err != nil {
			s.logger.DebugContext(r.Context(), "authentication failed", "path", r.URL.Path, "error", err)
			s.writeError(w, r, err)
			return
		}
		ctx := observability.WithUserID(withActor(r.Context(), actor), actor.UserID.String())
		next(w, r.WithContext(ctx))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// observe records request latency under the route pattern.
func (s *Server) observe(pattern string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		s.app.Metrics.ObserveHTTP(r.Method, pattern, rec.status, elapsed)
		s.logger.DebugContext(r.Context(), "request handled",
			"method", r.Method,
			"route", pattern,
			"status", rec.status,
			"duration_ms", elapsed.Milliseconds(),
		)
	})
}
