// Package runtime assembles the digilink components — catalog, settings
// store, resolution engine, view controller, assistant session, HTTP
// server — and manages their lifecycle.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tracefirst/digilink/internal/assistant"
	"github.com/tracefirst/digilink/internal/catalog"
	"github.com/tracefirst/digilink/internal/controller"
	"github.com/tracefirst/digilink/internal/resolver"
	"github.com/tracefirst/digilink/internal/server"
	"github.com/tracefirst/digilink/internal/settings"
)

// App is the assembled digilink daemon. It can run standalone (cmd/digilink)
// or be embedded in a larger program.
type App struct {
	logger     *slog.Logger
	catalog    catalog.Catalog
	store      settings.Store
	provider   assistant.AnswerProvider
	live       resolver.LiveFunc
	latency    time.Duration
	latencySet bool
	initialCfg *settings.ResolverConfig
	port       int
	launchGTIN string

	engine  *resolver.Engine
	ctrl    *controller.Controller
	session *assistant.Session
	handler *server.Handler
	server  *server.Server

	closers []func() error
	serveCh chan error
}

// New creates an App with the given options. Defaults: in-memory settings
// store, demo catalog, no answer provider (assistant permanently reports
// the unconfigured state), port 8080.
func New(opts ...Option) (*App, error) {
	app := &App{
		logger: slog.Default(),
		port:   8080,
	}
	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	if app.catalog == nil {
		app.catalog = catalog.NewDemo()
	}
	if app.store == nil {
		app.store = settings.NewMemory()
	}
	if app.initialCfg != nil {
		if _, err := app.store.Load(context.Background()); errors.Is(err, settings.ErrNotFound) {
			if err := app.store.Save(context.Background(), *app.initialCfg); err != nil {
				return nil, fmt.Errorf("seed resolver config: %w", err)
			}
		}
	}

	engineOpts := []resolver.Option{resolver.WithLogger(app.logger)}
	if app.latencySet {
		engineOpts = append(engineOpts, resolver.WithLatency(app.latency))
	}
	if app.live != nil {
		engineOpts = append(engineOpts, resolver.WithLive(app.live))
	}
	app.engine = resolver.NewEngine(app.catalog, engineOpts...)

	app.session = assistant.NewSession(app.provider, app.logger)

	app.handler = server.NewHandler(nil, app.session, app.catalog, app.logger)
	app.ctrl = controller.New(app.engine, app.store,
		controller.WithLogger(app.logger),
		controller.WithLocatorClearer(app.handler.ClearLocator),
		controller.WithAssistantCloser(app.session.Close),
	)
	app.handler.Bind(app.ctrl)

	app.server = server.New(app.port, app.logger, app.handler)

	return app, nil
}

// Controller exposes the view controller for embedders.
func (a *App) Controller() *controller.Controller { return a.ctrl }

// Assistant exposes the assistant session for embedders.
func (a *App) Assistant() *assistant.Session { return a.session }

// Start loads the persisted resolver configuration, runs the deep-linked
// resolution when a launch GTIN is configured, and brings up the HTTP
// server in the background.
func (a *App) Start(ctx context.Context) error {
	if err := a.ctrl.Start(ctx, a.launchGTIN); err != nil {
		// A failed launch resolution is already folded into the view state;
		// it must not stop the daemon.
		var rerr *resolver.Error
		if !errors.As(err, &rerr) {
			return fmt.Errorf("start controller: %w", err)
		}
		a.logger.Info("launch resolution failed",
			slog.String("gtin", a.launchGTIN),
			slog.String("error", err.Error()))
	}

	a.serveCh = make(chan error, 1)
	go func() {
		a.serveCh <- a.server.Start()
	}()
	return nil
}

// Wait blocks until the HTTP server stops and returns its error.
func (a *App) Wait() error {
	if a.serveCh == nil {
		return fmt.Errorf("app not started")
	}
	return <-a.serveCh
}

// Shutdown drains the HTTP server and closes owned resources.
func (a *App) Shutdown(ctx context.Context) error {
	var first error
	if err := a.server.Shutdown(ctx); err != nil {
		first = err
	}
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
