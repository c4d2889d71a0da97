// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/locbeacon/internal/config"
	"github.com/tomtom215/locbeacon/internal/models"
)

type captured struct {
	cfg   *config.Config
	calls int
}

func newTestRoot(t *testing.T, args ...string) (*bytes.Buffer, *captured, error) {
	t.Helper()
	t.Setenv(config.ConfigPathEnvVar, "")
	stdout := &bytes.Buffer{}
	got := &captured{}
	root := NewRootCommand(Dependencies{
		Version: "1.2.3",
		Stdout:  stdout,
		Stderr:  io.Discard,
		Serve: func(_ context.Context, cfg *config.Config) error {
			got.cfg = cfg
			got.calls++
			return nil
		},
	})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout, got, err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := newTestRoot(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out.String(), "locbeacon 1.2.3") {
		t.Errorf("output = %q", out.String())
	}
}

func TestServe_DefaultCommand(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantPort int
	}{
		{"root without args", nil, 8000},
		{"explicit serve", []string{"serve"}, 8000},
		{"port flag on root", []string{"--port", "9100"}, 9100},
		{"port flag on serve", []string{"serve", "-p", "9200"}, 9200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got, err := newTestRoot(t, tt.args...)
			if err != nil {
				t.Fatalf("execute: %v", err)
			}
			if got.calls != 1 {
				t.Fatalf("serve called %d times", got.calls)
			}
			if got.cfg.Server.Port != tt.wantPort {
				t.Errorf("port = %d, want %d", got.cfg.Server.Port, tt.wantPort)
			}
		})
	}
}

func TestServe_FlagOverridesValidated(t *testing.T) {
	_, got, err := newTestRoot(t, "serve", "--backend", "etcd")
	if err == nil {
		t.Fatal("expected validation error for unknown backend")
	}
	if got.calls != 0 {
		t.Error("serve ran with invalid configuration")
	}
}

func TestServe_ConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locbeacon.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9300\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, got, err := newTestRoot(t, "--config", path)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got.cfg.Server.Port != 9300 {
		t.Errorf("port = %d, want 9300 from file", got.cfg.Server.Port)
	}

	if _, _, err := newTestRoot(t, "--config", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestConfigCommand(t *testing.T) {
	t.Setenv("LOCATION_TTL", "7m")
	out, _, err := newTestRoot(t, "config")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	for _, want := range []string{"registry:", "ttl: 7m", "server:"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestReportCommand(t *testing.T) {
	var received models.LocationReport
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/report" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	out, _, err := newTestRoot(t, "report", "--server", server.URL+"/",
		"--user-id", "u1", "--name", "Alice", "--lat", "12.97", "--lng", "77.59", "--accuracy", "5")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if strings.TrimSpace(out.String()) != `{"ok":true}` {
		t.Errorf("output = %q", out.String())
	}
	if received.UserID != "u1" || received.Latitude != 12.97 || received.Longitude != 77.59 {
		t.Errorf("received = %+v", received)
	}
	if received.Accuracy == nil || *received.Accuracy != 5 {
		t.Errorf("accuracy = %v, want 5", received.Accuracy)
	}
}

func TestReportCommand_Errors(t *testing.T) {
	rejecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"reason":"invalid payload"}`))
	}))
	defer rejecting.Close()

	tests := []struct {
		name string
		args []string
	}{
		{"missing required flags", []string{"report", "--user-id", "u1"}},
		{"server rejects", []string{"report", "--server", rejecting.URL, "--user-id", "u1", "--lat", "1", "--lng", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := newTestRoot(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}
