package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Storage.Type != "memory" {
		t.Errorf("storage type = %q, want memory", cfg.Storage.Type)
	}
	if cfg.Resolver.BaseURL != "https://id.gs1.org" {
		t.Errorf("base url = %q", cfg.Resolver.BaseURL)
	}
	if !cfg.Resolver.UseMockData {
		t.Error("use_mock_data should default to true")
	}
	if cfg.Resolver.LatencyMS != 800 {
		t.Errorf("latency = %d, want 800", cfg.Resolver.LatencyMS)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DIGILINK_SERVER__PORT", "9000")
	t.Setenv("DIGILINK_RESOLVER__LAUNCH_GTIN", "9506000134352")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Resolver.LaunchGTIN != "9506000134352" {
		t.Errorf("launch gtin = %q", cfg.Resolver.LaunchGTIN)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `server:
  port: 9090
storage:
  type: sqlite
  sqlite:
    path: /tmp/test.db
resolver:
  latency_ms: 0
assistant:
  model: gemini-2.5-flash
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Storage.Type != "sqlite" || cfg.Storage.SQLite.Path != "/tmp/test.db" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Resolver.LatencyMS != 0 {
		t.Errorf("latency = %d, want 0 from file", cfg.Resolver.LatencyMS)
	}
	if cfg.Assistant.Model != "gemini-2.5-flash" {
		t.Errorf("model = %q", cfg.Assistant.Model)
	}
}

func TestLoadEnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DIGILINK_SERVER__PORT", "7000")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("port = %d, want env override 7000", cfg.Server.Port)
	}
}

func TestLoadMissingFileIgnored(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() with missing file error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want default", cfg.Server.Port)
	}
}
