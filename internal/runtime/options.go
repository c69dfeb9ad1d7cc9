package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tracefirst/digilink/internal/assistant"
	"github.com/tracefirst/digilink/internal/catalog"
	"github.com/tracefirst/digilink/internal/config"
	"github.com/tracefirst/digilink/internal/resolver"
	"github.com/tracefirst/digilink/internal/settings"
)

// Option is a functional option for configuring an App.
type Option func(*App) error

// WithLogger sets the logger used by all components.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithPort sets the HTTP listen port.
func WithPort(port int) Option {
	return func(a *App) error {
		a.port = port
		return nil
	}
}

// WithMemoryStorage uses in-memory settings storage and the demo catalog
// (default).
func WithMemoryStorage() Option {
	return func(a *App) error {
		a.store = settings.NewMemory()
		a.catalog = catalog.NewDemo()
		return nil
	}
}

// WithSQLite uses SQLite-backed settings storage and catalog at path. The
// catalog is seeded with the demo products.
func WithSQLite(path string) Option {
	return func(a *App) error {
		store, err := settings.OpenSQLite(path)
		if err != nil {
			return fmt.Errorf("open settings store: %w", err)
		}
		cat, err := catalog.OpenSQLite(path)
		if err != nil {
			store.Close()
			return fmt.Errorf("open catalog: %w", err)
		}
		if err := cat.Seed(context.Background(), catalog.DemoProducts()); err != nil {
			store.Close()
			cat.Close()
			return fmt.Errorf("seed catalog: %w", err)
		}
		a.store = store
		a.catalog = cat
		a.closers = append(a.closers, store.Close, cat.Close)
		return nil
	}
}

// WithCatalog overrides the product catalog.
func WithCatalog(cat catalog.Catalog) Option {
	return func(a *App) error {
		a.catalog = cat
		return nil
	}
}

// WithSettingsStore overrides the settings store.
func WithSettingsStore(store settings.Store) Option {
	return func(a *App) error {
		a.store = store
		return nil
	}
}

// WithAnswerProvider binds the assistant to provider. Leaving the provider
// unset is the first-class unconfigured state: the assistant answers every
// question with the fixed unconfigured-service text.
func WithAnswerProvider(p assistant.AnswerProvider) Option {
	return func(a *App) error {
		a.provider = p
		return nil
	}
}

// WithGemini binds the assistant to the Gemini API. An empty apiKey leaves
// the assistant unconfigured rather than failing.
func WithGemini(apiKey, model string) Option {
	return func(a *App) error {
		if apiKey == "" {
			a.logger.Info("no Gemini API key configured, assistant disabled")
			return nil
		}
		p, err := assistant.NewGeminiProvider(context.Background(), apiKey, model, a.logger)
		if err != nil {
			return fmt.Errorf("create gemini provider: %w", err)
		}
		a.provider = p
		return nil
	}
}

// WithResolverDefaults seeds the settings store with cfg when no resolver
// configuration has been persisted yet. Persisted values always win.
func WithResolverDefaults(cfg settings.ResolverConfig) Option {
	return func(a *App) error {
		a.initialCfg = &cfg
		return nil
	}
}

// WithResolveLatency overrides the simulated resolution latency.
func WithResolveLatency(d time.Duration) Option {
	return func(a *App) error {
		a.latency = d
		a.latencySet = true
		return nil
	}
}

// WithLiveResolver installs a live registry resolver for non-mock
// configurations.
func WithLiveResolver(fn resolver.LiveFunc) Option {
	return func(a *App) error {
		a.live = fn
		return nil
	}
}

// WithLaunchGTIN supplies a pre-resolved identifier from the invocation
// context; Start resolves it before serving.
func WithLaunchGTIN(gtin string) Option {
	return func(a *App) error {
		a.launchGTIN = gtin
		return nil
	}
}

// FromConfig expands a loaded daemon configuration into options.
func FromConfig(cfg *config.Config) []Option {
	opts := []Option{
		WithPort(cfg.Server.Port),
		WithGemini(cfg.Assistant.APIKey, cfg.Assistant.Model),
		WithResolveLatency(time.Duration(cfg.Resolver.LatencyMS) * time.Millisecond),
		WithResolverDefaults(settings.ResolverConfig{
			BaseURL:     cfg.Resolver.BaseURL,
			UseMockData: cfg.Resolver.UseMockData,
		}),
	}
	if cfg.Storage.Type == "sqlite" {
		opts = append(opts, WithSQLite(cfg.Storage.SQLite.Path))
	} else {
		opts = append(opts, WithMemoryStorage())
	}
	if cfg.Resolver.LaunchGTIN != "" {
		opts = append(opts, WithLaunchGTIN(cfg.Resolver.LaunchGTIN))
	}
	return opts
}
