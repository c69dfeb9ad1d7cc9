// Package digilink provides the public API for embedding the digilink
// resolver daemon. This is the stable surface for external consumers.
package digilink

import (
	"github.com/tracefirst/digilink/internal/runtime"
)

// App is the assembled resolver daemon.
// See internal/runtime.App for full documentation.
type App = runtime.App

// Option is a functional option for configuring an App.
type Option = runtime.Option

// New creates a new App with the given options.
// Example:
//
//	app, err := digilink.New(
//	    digilink.WithSQLite("./data/digilink.db"),
//	    digilink.WithGemini(apiKey, ""),
//	)
var New = runtime.New

var (
	// Storage
	WithMemoryStorage = runtime.WithMemoryStorage
	WithSQLite        = runtime.WithSQLite
	WithCatalog       = runtime.WithCatalog
	WithSettingsStore = runtime.WithSettingsStore

	// Assistant
	WithAnswerProvider = runtime.WithAnswerProvider
	WithGemini         = runtime.WithGemini

	// Resolution
	WithResolveLatency   = runtime.WithResolveLatency
	WithLiveResolver     = runtime.WithLiveResolver
	WithLaunchGTIN       = runtime.WithLaunchGTIN
	WithResolverDefaults = runtime.WithResolverDefaults

	// Daemon
	WithLogger = runtime.WithLogger
	WithPort   = runtime.WithPort

	// FromConfig expands a loaded daemon configuration into options.
	FromConfig = runtime.FromConfig
)
