package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/p-n-ai/materialbank/internal/platform/config"
	"github.com/p-n-ai/materialbank/internal/user"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	cfg.Database.URL = ""
	cfg.Cache.URL = ""
	cfg.CurriculumPath = ""
	cfg.Generator.SimulateLatency = false
	cfg.Auth.SeedDemo = true
	cfg.Auth.JWTSecret = "test-secret"
	return cfg
}

func TestHealthEndpoints(t *testing.T) {
	a, err := buildApp(context.Background(), memoryConfig(t))
	if err != nil {
		t.Fatalf("buildApp() error = %v", err)
	}
	defer a.Close()

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "healthz returns 200",
			path:       "/healthz",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ok"}`,
		},
		{
			name:       "readyz returns 200",
			path:       "/readyz",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ready"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()

			a.handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
		})
	}
}

func TestBuildApp_SeedsDemoAccounts(t *testing.T) {
	a, err := buildApp(context.Background(), memoryConfig(t))
	if err != nil {
		t.Fatalf("buildApp() error = %v", err)
	}
	defer a.Close()

	body, _ := json.Marshal(map[string]string{
		"email":    user.DemoAccounts[0].Email,
		"password": user.DemoPassword,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("demo login status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestBuildApp_BadCurriculumPath(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.CurriculumPath = t.TempDir() + "/missing"

	if _, err := buildApp(context.Background(), cfg); err == nil {
		t.Error("buildApp() error = nil, want an error for a missing curriculum directory")
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LogConfig
		wantDebug bool
		wantJSON  bool
	}{
		{"json info", config.LogConfig{Level: "info", Format: "json"}, false, true},
		{"text debug", config.LogConfig{Level: "debug", Format: "text"}, true, false},
		{"uppercase warn", config.LogConfig{Level: "WARN", Format: "json"}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(tt.cfg, &buf)

			if got := logger.Enabled(context.Background(), slog.LevelDebug); got != tt.wantDebug {
				t.Errorf("debug enabled = %v, want %v", got, tt.wantDebug)
			}
			logger.Error("boom")
			if got := strings.HasPrefix(buf.String(), "{"); got != tt.wantJSON {
				t.Errorf("output %q, json = %v, want %v", buf.String(), got, tt.wantJSON)
			}
		})
	}
}
