package cli

import (
	"context"
	"errors"

	internalApp "github.com/felixgeelhaar/patentdesk/internal/app"
	sharedApplication "github.com/felixgeelhaar/patentdesk/internal/shared/application"
)

// ErrNotInitialized is returned by commands run without a wired App.
var ErrNotInitialized = errors.New("application not initialized - database connection required")

// App holds the CLI application dependencies.
type App struct {
	*internalApp.Container

	// Actor is the practitioner every command runs as.
	Actor sharedApplication.Actor
}

// NewApp creates a new CLI App acting as the configured admin.
func NewApp(container *internalApp.Container) (*App, error) {
	actor, err := container.AdminActor()
	if err != nil {
		return nil, err
	}
	return &App{Container: container, Actor: actor}, nil
}

// Flush delivers notifications queued by the command that just ran. A
// delivery failure leaves the message in the outbox for the next run.
func (a *App) Flush(ctx context.Context) {
	if err := a.DrainOutbox(ctx); err != nil {
		a.Logger.WarnContext(ctx, "outbox drain failed", "error", err)
	}
}

var app *App

// SetApp sets the global CLI app instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI app instance.
func GetApp() *App {
	return app
}

// RequireApp returns the global App or ErrNotInitialized.
func RequireApp() (*App, error) {
	if app == nil || app.Container == nil {
		return nil, ErrNotInitialized
	}
	return app, nil
}
