// Package resolver turns a GTIN plus a resolver configuration into a
// product record or a typed failure.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tracefirst/digilink/internal/catalog"
	"github.com/tracefirst/digilink/internal/product"
	"github.com/tracefirst/digilink/internal/settings"
)

// DefaultLatency is the simulated round-trip inserted before every
// resolution so the UX behaves like a network call even against local data.
const DefaultLatency = 800 * time.Millisecond

// liveTimeout bounds a single live resolution attempt.
const liveTimeout = 15 * time.Second

// Kind classifies a resolution failure.
type Kind int

const (
	// KindNotFound means the GTIN has no record in the catalog (mock mode).
	KindNotFound Kind = iota
	// KindUnavailable means the configured live endpoint could not serve
	// the request.
	KindUnavailable
)

// Error is a typed resolution failure.
type Error struct {
	Kind     Kind
	GTIN     string
	Endpoint string // set for KindUnavailable
	cause    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("resolve %s: not found", e.GTIN)
	case KindUnavailable:
		return fmt.Sprintf("resolve %s: endpoint %s unavailable", e.GTIN, e.Endpoint)
	}
	return fmt.Sprintf("resolve %s: unknown failure", e.GTIN)
}

func (e *Error) Unwrap() error { return e.cause }

// UserMessage returns the text shown to the user for this failure.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindNotFound:
		return "GTIN not found. Try one of the quick options below."
	case KindUnavailable:
		return fmt.Sprintf("Resolution to %s is not active in this demo.", e.Endpoint)
	}
	return "Resolution failed."
}

// LiveFunc resolves a GTIN against a remote registry endpoint. The
// reference deployment leaves it nil, which makes every live-mode
// resolution fail with KindUnavailable.
type LiveFunc func(ctx context.Context, baseURL, gtin string) (*product.ProductData, error)

// SleepFunc suspends for d or until ctx is done. Injected so tests run
// without the simulated latency.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Engine performs resolutions. It holds no mutable session state; callers
// own whatever state they build from its results.
type Engine struct {
	catalog catalog.Catalog
	live    LiveFunc
	latency time.Duration
	sleep   SleepFunc
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLatency overrides the simulated round-trip latency.
func WithLatency(d time.Duration) Option {
	return func(e *Engine) { e.latency = d }
}

// WithSleep overrides the suspension primitive. Tests use this to make the
// latency a no-op while still observing that it was requested.
func WithSleep(fn SleepFunc) Option {
	return func(e *Engine) { e.sleep = fn }
}

// WithLive installs a live registry resolver for non-mock configurations.
func WithLive(fn LiveFunc) Option {
	return func(e *Engine) { e.live = fn }
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates an Engine backed by cat for mock-mode lookups.
func NewEngine(cat catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog: cat,
		latency: DefaultLatency,
		sleep:   sleep,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Resolve maps gtin to a product record under cfg. The simulated latency is
// applied before any branching. Failures are always a *Error; the caller
// decides how to fold them into view state.
func (e *Engine) Resolve(ctx context.Context, gtin string, cfg settings.ResolverConfig) (*product.ProductData, error) {
	start := time.Now()
	if err := e.sleep(ctx, e.latency); err != nil {
		// A cancelled or timed-out resolution is indistinguishable from an
		// unreachable resolver as far as the user is concerned.
		return nil, &Error{Kind: KindUnavailable, GTIN: gtin, Endpoint: cfg.BaseURL, cause: err}
	}

	if cfg.UseMockData {
		p, err := e.catalog.Lookup(ctx, gtin)
		if err != nil {
			e.logger.Info("resolution miss",
				slog.String("gtin", gtin),
				slog.Duration("duration", time.Since(start)))
			return nil, &Error{Kind: KindNotFound, GTIN: gtin, cause: err}
		}
		e.logger.Info("resolution hit",
			slog.String("gtin", gtin),
			slog.String("name", p.Name),
			slog.Duration("duration", time.Since(start)))
		return p, nil
	}

	if e.live == nil {
		return nil, &Error{Kind: KindUnavailable, GTIN: gtin, Endpoint: cfg.BaseURL}
	}

	liveCtx, cancel := context.WithTimeout(ctx, liveTimeout)
	defer cancel()
	p, err := e.live(liveCtx, cfg.BaseURL, gtin)
	if err != nil {
		e.logger.Warn("live resolution failed",
			slog.String("gtin", gtin),
			slog.String("endpoint", cfg.BaseURL),
			slog.String("error", err.Error()))
		return nil, &Error{Kind: KindUnavailable, GTIN: gtin, Endpoint: cfg.BaseURL, cause: err}
	}
	return p, nil
}
