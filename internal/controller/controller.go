// Package controller owns the resolution/view workflow: a single live view
// session stepped through SCAN, PRODUCT, and SETTINGS by a pure transition
// function, with resolution and persistence sequenced around it.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tracefirst/digilink/internal/resolver"
	"github.com/tracefirst/digilink/internal/settings"
)

var (
	// ErrResolveInFlight is returned when a submission arrives while a
	// resolution is already running. Submissions are rejected, never
	// interleaved.
	ErrResolveInFlight = errors.New("controller: resolution already in flight")
	// ErrConfigPersist wraps a settings store write failure. The SETTINGS
	// to SCAN transition still happens; the failure is surfaced, not
	// swallowed.
	ErrConfigPersist = errors.New("controller: saving resolver config failed")
)

// Controller sequences calls into the resolution engine and the settings
// store, and owns the only live ViewSession.
type Controller struct {
	engine *resolver.Engine
	store  settings.Store
	logger *slog.Logger

	// clearLocator clears the externally visible resolved-identifier
	// locator (e.g. a shareable URL) when leaving the product view.
	clearLocator func()
	// closeAssistant discards the assistant transcript when leaving the
	// product view; the conversation belongs to the departed product.
	closeAssistant func()

	mu          sync.Mutex
	session     ViewSession
	cfg         settings.ResolverConfig
	started     bool
	subscribers []func(ViewSession)
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithLocatorClearer installs the callback invoked on Back to clear any
// shareable locator carrying the resolved identifier.
func WithLocatorClearer(fn func()) Option {
	return func(c *Controller) { c.clearLocator = fn }
}

// WithAssistantCloser installs the callback invoked on Back to discard the
// assistant transcript for the product being left.
func WithAssistantCloser(fn func()) Option {
	return func(c *Controller) { c.closeAssistant = fn }
}

// New creates a Controller in the SCAN state. Call Start before anything
// else to load the persisted configuration.
func New(engine *resolver.Engine, store settings.Store, opts ...Option) *Controller {
	c := &Controller{
		engine:  engine,
		store:   store,
		logger:  slog.Default(),
		session: ViewSession{Mode: ModeScan},
		cfg:     settings.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start loads the persisted resolver configuration (exactly once; the
// built-in default applies when nothing was ever saved) and, when
// launchGTIN is non-empty, runs the submit transition with the loaded
// configuration before returning. launchGTIN models deep-linking into a
// product view from an external reference.
func (c *Controller) Start(ctx context.Context, launchGTIN string) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return fmt.Errorf("controller: already started")
	}
	c.started = true
	c.mu.Unlock()

	cfg, err := c.store.Load(ctx)
	switch {
	case errors.Is(err, settings.ErrNotFound):
		cfg = settings.Default()
	case err != nil:
		c.logger.Warn("loading resolver config failed, using default",
			slog.String("error", err.Error()))
		cfg = settings.Default()
	}

	c.mu.Lock()
	c.cfg = cfg
	c.mu.Unlock()

	if launchGTIN != "" {
		c.SetInput(launchGTIN)
		if err := c.Submit(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Session returns a snapshot of the live view session.
func (c *Controller) Session() ViewSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Config returns the controller's live resolver configuration.
func (c *Controller) Config() settings.ResolverConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// Subscribe registers fn to be called with a session snapshot after every
// transition. Callbacks run synchronously on the transitioning goroutine
// and must not call back into the controller.
func (c *Controller) Subscribe(fn func(ViewSession)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// dispatch applies ev under the lock and notifies subscribers.
func (c *Controller) dispatch(ev event) ViewSession {
	c.mu.Lock()
	c.session = apply(c.session, ev)
	snapshot := c.session
	subs := c.subscribers
	c.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
	return snapshot
}

// SetInput replaces the identifier input field.
func (c *Controller) SetInput(gtin string) {
	c.dispatch(inputChanged{gtin: gtin})
}

// Submit resolves the current identifier input. On success the session
// moves to PRODUCT; on failure it stays on SCAN with a user-visible error.
// A submission while a resolution is in flight returns ErrResolveInFlight.
func (c *Controller) Submit(ctx context.Context) error {
	// The in-flight check and the transition into the resolving state must
	// be one atomic step or two racing submissions could both pass the gate.
	c.mu.Lock()
	if c.session.Resolving {
		c.mu.Unlock()
		return ErrResolveInFlight
	}
	gtin := c.session.GTINInput
	cfg := c.cfg
	c.session = apply(c.session, resolveStarted{})
	snapshot := c.session
	subs := c.subscribers
	c.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}

	p, err := c.engine.Resolve(ctx, gtin, cfg)
	if err != nil {
		var rerr *resolver.Error
		msg := "Resolution failed."
		if errors.As(err, &rerr) {
			msg = rerr.UserMessage()
		}
		c.dispatch(resolveFailed{message: msg})
		return err
	}

	c.dispatch(resolveSucceeded{product: p})
	return nil
}

// QuickSelect overwrites the identifier input with gtin and submits it.
func (c *Controller) QuickSelect(ctx context.Context, gtin string) error {
	c.mu.Lock()
	resolving := c.session.Resolving
	c.mu.Unlock()
	if resolving {
		return ErrResolveInFlight
	}
	c.SetInput(gtin)
	return c.Submit(ctx)
}

// OpenSettings moves SCAN to SETTINGS.
func (c *Controller) OpenSettings() {
	c.dispatch(settingsOpened{})
}

// SaveSettings persists cfg and returns to SCAN. The transition happens
// regardless of the persistence outcome; a write failure is returned
// wrapped in ErrConfigPersist so callers can surface it distinctly from
// resolution errors.
func (c *Controller) SaveSettings(ctx context.Context, cfg settings.ResolverConfig) error {
	saveErr := c.store.Save(ctx, cfg)

	c.mu.Lock()
	c.cfg = cfg
	c.mu.Unlock()
	c.dispatch(settingsClosed{})

	if saveErr != nil {
		c.logger.Error("persisting resolver config failed",
			slog.String("error", saveErr.Error()))
		return fmt.Errorf("%w: %w", ErrConfigPersist, saveErr)
	}
	c.logger.Info("resolver config saved",
		slog.String("base_url", cfg.BaseURL),
		slog.Bool("use_mock_data", cfg.UseMockData))
	return nil
}

// CancelSettings returns to SCAN, discarding unsaved edits. The live
// configuration stays at the last persisted value.
func (c *Controller) CancelSettings() {
	c.dispatch(settingsClosed{})
}

// Back leaves the product view: the resolved product, identifier input, and
// any error are cleared, the shareable locator is reset so a reload does
// not replay the resolution, and the assistant transcript is discarded.
func (c *Controller) Back() {
	c.dispatch(wentBack{})
	if c.clearLocator != nil {
		c.clearLocator()
	}
	if c.closeAssistant != nil {
		c.closeAssistant()
	}
}
