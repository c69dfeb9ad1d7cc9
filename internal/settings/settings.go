// Package settings holds the persisted resolver configuration: which
// endpoint to resolve against and whether to use the built-in demo data.
package settings

import (
	"context"
	"errors"
	"sync"
)

// DefaultBaseURL is the GS1 resolver used when nothing was ever saved.
const DefaultBaseURL = "https://id.gs1.org"

// ErrNotFound is returned by Load when no configuration was ever saved.
var ErrNotFound = errors.New("settings: no saved configuration")

// ResolverConfig selects the resolution target. It is loaded once at
// startup and written only on an explicit save.
type ResolverConfig struct {
	BaseURL     string `json:"base_url"`
	UseMockData bool   `json:"use_mock_data"`
}

// Default returns the built-in configuration.
func Default() ResolverConfig {
	return ResolverConfig{BaseURL: DefaultBaseURL, UseMockData: true}
}

// Store persists a single ResolverConfig record.
type Store interface {
	// Load returns the saved configuration, or ErrNotFound when nothing was
	// ever saved.
	Load(ctx context.Context) (ResolverConfig, error)
	// Save persists cfg, replacing any previous record.
	Save(ctx context.Context, cfg ResolverConfig) error
}

// Memory is an in-memory Store.
type Memory struct {
	mu    sync.Mutex
	cfg   ResolverConfig
	saved bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(ctx context.Context) (ResolverConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.saved {
		return ResolverConfig{}, ErrNotFound
	}
	return m.cfg, nil
}

func (m *Memory) Save(ctx context.Context, cfg ResolverConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = cfg
	m.saved = true
	return nil
}
