// Package config loads daemon configuration from an optional YAML file
// layered under DIGILINK_-prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the full daemon configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Storage   StorageConfig   `koanf:"storage"`
	Resolver  ResolverConfig  `koanf:"resolver"`
	Assistant AssistantConfig `koanf:"assistant"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

type StorageConfig struct {
	Type   string       `koanf:"type"` // sqlite, memory
	SQLite SQLiteConfig `koanf:"sqlite"`
}

type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// ResolverConfig carries resolver daemon defaults. BaseURL and UseMockData
// apply only until a configuration record has been saved through the
// settings store; LaunchGTIN models a deep-linked start.
type ResolverConfig struct {
	BaseURL     string `koanf:"base_url"`
	UseMockData bool   `koanf:"use_mock_data"`
	LatencyMS   int    `koanf:"latency_ms"`
	LaunchGTIN  string `koanf:"launch_gtin"`
}

type AssistantConfig struct {
	APIKey string `koanf:"api_key"`
	Model  string `koanf:"model"`
}

// Load reads configuration from path (skipped when empty or absent) and the
// environment, then applies defaults for anything still unset. Environment
// keys use double underscores as section separators, e.g.
// DIGILINK_SERVER__PORT or DIGILINK_ASSISTANT__API_KEY.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider("DIGILINK_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "DIGILINK_")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	applyDefaults(k)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// GEMINI_API_KEY is the conventional name for the Gemini credential;
	// honor it when the digilink-specific key is unset.
	if cfg.Assistant.APIKey == "" {
		cfg.Assistant.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	return &cfg, nil
}

func applyDefaults(k *koanf.Koanf) {
	defaults := map[string]interface{}{
		"server.port":            8080,
		"storage.type":           "memory",
		"storage.sqlite.path":    "./data/digilink.db",
		"resolver.base_url":      "https://id.gs1.org",
		"resolver.use_mock_data": true,
		"resolver.latency_ms":    800,
	}
	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}
}
