// Package infrastructure delivers notifications.
package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/felixgeelhaar/patentdesk/internal/notifications/domain"
	"github.com/resend/resend-go/v2"
	"github.com/sony/gobreaker/v2"
)

// DefaultResendURL is the base URL of the Resend API.
const DefaultResendURL = "https://api.resend.com/"

// ErrSenderUnavailable is returned while the circuit breaker is open.
var ErrSenderUnavailable = errors.New("email sender unavailable")

// ResendConfig configures the Resend sender.
type ResendConfig struct {
	APIKey           string
	From             string
	Endpoint         string
	Timeout          time.Duration
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// ResendSender sends rendered notifications through the Resend SDK.
// Consecutive failures open a circuit breaker so a Resend outage fails fast
// and the outbox backs off.
type ResendSender struct {
	client  *resend.Client
	config  ResendConfig
	breaker *gobreaker.CircuitBreaker[struct{}]
	logger  *slog.Logger
}

// NewResendSender creates a sender.
func NewResendSender(config ResendConfig, logger *slog.Logger) *ResendSender {
	if config.Endpoint == "" {
		config.Endpoint = DefaultResendURL
	}
	if !strings.HasSuffix(config.Endpoint, "/") {
		config.Endpoint += "/"
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 5
	}
	if config.OpenTimeout <= 0 {
		config.OpenTimeout = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := &http.Client{
		Timeout:   config.Timeout,
		Transport: statusTransport{base: http.DefaultTransport},
	}
	client := resend.NewCustomClient(httpClient, config.APIKey)
	if base, err := url.Parse(config.Endpoint); err == nil {
		client.BaseURL = base
	} else {
		logger.Warn("invalid resend endpoint, using default", "endpoint", config.Endpoint, "error", err)
	}

	s := &ResendSender{
		client: client,
		config: config,
		logger: logger,
	}
	s.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "resend",
		MaxRequests: 1,
		Timeout:     config.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			var perm *permanentError
			return err == nil || errors.As(err, &perm)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	return s
}

// permanentError is a rejection by Resend that retrying will not fix. It
// does not count against the breaker.
type permanentError struct {
	status int
	err    error
}

func (e *permanentError) Error() string {
	return fmt.Sprintf("resend rejected request: %d %v", e.status, e.err)
}

func (e *permanentError) Unwrap() error { return e.err }

type statusKey struct{}

// statusTransport records the HTTP status of the Resend response in the
// request context, since SDK errors carry only the API message.
type statusTransport struct {
	base http.RoundTripper
}

func (t statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if resp != nil {
		if status, ok := req.Context().Value(statusKey{}).(*int); ok {
			*status = resp.StatusCode
		}
	}
	return resp, err
}

// Send renders n and sends it. The notification id doubles as the Resend
// idempotency key so outbox retries do not send twice.
func (s *ResendSender) Send(ctx context.Context, n domain.Notification) error {
	rendered, err := domain.Render(n)
	if err != nil {
		return err
	}
	req := &resend.SendEmailRequest{
		From:    s.config.From,
		To:      []string{n.To},
		Subject: rendered.Subject,
		Html:    rendered.HTML,
		Text:    rendered.Text,
	}
	opts := &resend.SendEmailOptions{IdempotencyKey: string(n.Kind) + "/" + n.ID.String()}

	_, err = s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.send(ctx, req, opts)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrSenderUnavailable
	}
	return err
}

func (s *ResendSender) send(ctx context.Context, req *resend.SendEmailRequest, opts *resend.SendEmailOptions) error {
	var status int
	ctx = context.WithValue(ctx, statusKey{}, &status)

	_, err := s.client.Emails.SendWithOptions(ctx, req, opts)
	switch {
	case err == nil:
		return nil
	case status == 0 || status == http.StatusTooManyRequests || status >= 500:
		return fmt.Errorf("resend unavailable: %d: %w", status, err)
	default:
		return &permanentError{status: status, err: err}
	}
}

// LogSender writes notifications to the log. It is used when no email
// provider is configured.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

// Send logs the rendered subject.
func (s *LogSender) Send(ctx context.Context, n domain.Notification) error {
	rendered, err := domain.Render(n)
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "notification",
		"kind", n.Kind,
		"to", n.To,
		"subject", rendered.Subject,
		"notification_id", n.ID,
	)
	return nil
}
