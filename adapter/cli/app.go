package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	internalApp "github.com/felixgeelhaar/studyload/internal/app"
)

// App holds the CLI application dependencies.
type App struct {
	Container *internalApp.Container

	// UserEmail selects the account commands act on. The --user flag
	// overrides it.
	UserEmail string
}

// NewApp creates a new CLI application on top of a wired container.
func NewApp(container *internalApp.Container) *App {
	a := &App{Container: container}
	if container != nil && container.Config != nil {
		a.UserEmail = container.Config.UserEmail
	}
	return a
}

// CurrentUserID resolves the selected account.
func (a *App) CurrentUserID(ctx context.Context) (uuid.UUID, error) {
	email := a.UserEmail
	if flagUser != "" {
		email = flagUser
	}
	user, err := a.Container.ResolveUser(ctx, strings.TrimSpace(email))
	if err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}

// ErrNotInitialized is returned by commands that need the database when the
// container could not be built.
var ErrNotInitialized = errors.New("application not initialized - database connection required")

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}

// Require returns the application or ErrNotInitialized.
func Require() (*App, error) {
	if app == nil || app.Container == nil {
		return nil, ErrNotInitialized
	}
	return app, nil
}
