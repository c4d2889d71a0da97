// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Registry.Backend != BackendMemory {
		t.Errorf("Registry.Backend = %q, want memory", cfg.Registry.Backend)
	}
	if cfg.Registry.TTL != 5*time.Minute {
		t.Errorf("Registry.TTL = %v, want 5m", cfg.Registry.TTL)
	}
	if cfg.Registry.SweepInterval != 60*time.Second {
		t.Errorf("Registry.SweepInterval = %v, want 60s", cfg.Registry.SweepInterval)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "*" {
		t.Errorf("Security.CORSOrigins = %v, want [*]", cfg.Security.CORSOrigins)
	}
	if cfg.Security.RateLimitEnabled {
		t.Error("rate limiting should be disabled by default")
	}
	if cfg.NATS.Enabled {
		t.Error("NATS should be disabled by default")
	}
	if !cfg.WebSocket.Enabled {
		t.Error("WebSocket should be enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoadWithKoanf_Defaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Addr() != "0.0.0.0:8000" {
		t.Errorf("Addr() = %q, want 0.0.0.0:8000", cfg.Server.Addr())
	}
}

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("HTTP_PORT", "9100")
	t.Setenv("LOCATION_TTL", "2m")
	t.Setenv("SWEEP_INTERVAL", "15s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("NATS_ENABLED", "true")
	t.Setenv("NATS_EMBEDDED", "true")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want 9100", cfg.Server.Port)
	}
	if cfg.Registry.TTL != 2*time.Minute {
		t.Errorf("Registry.TTL = %v, want 2m", cfg.Registry.TTL)
	}
	if cfg.Registry.SweepInterval != 15*time.Second {
		t.Errorf("Registry.SweepInterval = %v, want 15s", cfg.Registry.SweepInterval)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Security.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	for i := range want {
		if cfg.Security.CORSOrigins[i] != want[i] {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.Security.CORSOrigins[i], want[i])
		}
	}
	if !cfg.NATS.Enabled || !cfg.NATS.Embedded {
		t.Errorf("NATS = %+v, want enabled and embedded", cfg.NATS)
	}
}

func TestLoadWithKoanf_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 8123
registry:
  backend: badger
  path: ` + filepath.Join(dir, "data") + `
  ttl: 10m
logging:
  format: console
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 8123 {
		t.Errorf("Server.Port = %d, want 8123", cfg.Server.Port)
	}
	if cfg.Registry.Backend != BackendBadger {
		t.Errorf("Registry.Backend = %q, want badger", cfg.Registry.Backend)
	}
	if cfg.Registry.TTL != 10*time.Minute {
		t.Errorf("Registry.TTL = %v, want 10m", cfg.Registry.TTL)
	}
	if cfg.Registry.SweepInterval != 60*time.Second {
		t.Errorf("unset file keys should keep defaults, SweepInterval = %v", cfg.Registry.SweepInterval)
	}

	t.Run("env beats file", func(t *testing.T) {
		t.Setenv("PORT", "8200")
		cfg, err := LoadWithKoanf()
		if err != nil {
			t.Fatalf("LoadWithKoanf() error = %v", err)
		}
		if cfg.Server.Port != 8200 {
			t.Errorf("Server.Port = %d, want 8200", cfg.Server.Port)
		}
	})
}

func TestLoadWithKoanf_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"port out of range", "HTTP_PORT", "70000", "HTTP_PORT"},
		{"unknown backend", "REGISTRY_BACKEND", "redis", "REGISTRY_BACKEND"},
		{"tiny ttl", "LOCATION_TTL", "10ms", "LOCATION_TTL"},
		{"bad log level", "LOG_LEVEL", "loud", "LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(ConfigPathEnvVar, "")
			t.Setenv(tt.key, tt.value)

			_, err := LoadWithKoanf()
			if err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %s", err, tt.wantErr)
			}
		})
	}
}

func TestValidateNATS(t *testing.T) {
	cfg := defaultConfig()
	cfg.NATS.Enabled = true
	cfg.NATS.URL = "http://wrong-scheme:4222"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for http NATS URL")
	}

	cfg.NATS.Embedded = true
	if err := cfg.Validate(); err != nil {
		t.Errorf("embedded server ignores NATS_URL, got %v", err)
	}
}

func TestValidateRateLimit(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.RateLimitReqs = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled limiter should not be validated, got %v", err)
	}

	cfg.Security.RateLimitEnabled = true
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero requests with limiter enabled")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := map[string]string{
		"PORT":              "server.port",
		"HTTP_PORT":         "server.port",
		"REGISTRY_BACKEND":  "registry.backend",
		"NATS_URL":          "nats.url",
		"WEBSOCKET_ENABLED": "websocket.enabled",
		"HOME":              "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDump(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")

	out, err := Dump()
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if !strings.Contains(string(out), "registry:") {
		t.Errorf("dump should contain registry section, got:\n%s", out)
	}
}
