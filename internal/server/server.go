// Package server exposes the material bank over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/p-n-ai/materialbank/internal/agent"
	"github.com/p-n-ai/materialbank/internal/classify"
	"github.com/p-n-ai/materialbank/internal/curriculum"
	"github.com/p-n-ai/materialbank/internal/generator"
	"github.com/p-n-ai/materialbank/internal/material"
	"github.com/p-n-ai/materialbank/internal/user"
)

const (
	defaultMaxUploadSize = 32 << 20
	maxJSONBody          = 1 << 20
	readyTimeout         = 2 * time.Second
)

// ReadinessCheck reports whether a dependency is usable.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Config holds the server's collaborators.
type Config struct {
	Materials   material.Store
	Users       *user.Service
	Generation  *generator.Service
	Curriculum  *curriculum.Loader
	Classifier  *classify.Classifier // defaults to classify.Default()
	Chat        *agent.Engine
	ChatHandler http.Handler // WebSocket endpoint, optional
	Checks      []ReadinessCheck
	// MaxUploadSize bounds PDF uploads in bytes. Defaults to 32MB.
	MaxUploadSize int64
}

// Server routes HTTP requests to the material bank services.
type Server struct {
	materials  material.Store
	users      *user.Service
	gen        *generator.Service
	curriculum *curriculum.Loader
	classifier *classify.Classifier
	chat       *agent.Engine
	chatWS     http.Handler
	checks     []ReadinessCheck
	maxUpload  int64
	mux        *http.ServeMux
}

// New creates a server and registers its routes.
func New(cfg Config) *Server {
	classifier := cfg.Classifier
	if classifier == nil {
		classifier = classify.Default()
	}
	maxUpload := cfg.MaxUploadSize
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadSize
	}
	s := &Server{
		materials:  cfg.Materials,
		users:      cfg.Users,
		gen:        cfg.Generation,
		curriculum: cfg.Curriculum,
		classifier: classifier,
		chat:       cfg.Chat,
		chatWS:     cfg.ChatHandler,
		checks:     cfg.Checks,
		maxUpload:  maxUpload,
		mux:        http.NewServeMux(),
	}
	s.routes()
	return s
}

// Handler returns the root handler with request logging and authentication.
func (s *Server) Handler() http.Handler {
	return logRequests(s.authenticate(s.mux))
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", handleHealthz)
	s.mux.HandleFunc("GET /readyz", s.handleReadyz)

	s.mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	s.mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	s.mux.HandleFunc("GET /api/me", requireUser(s.handleMe))

	s.mux.HandleFunc("GET /api/materials", s.handleListMaterials)
	s.mux.HandleFunc("POST /api/materials", requireTeacher(s.handleCreateMaterial))
	s.mux.HandleFunc("GET /api/materials/{id}", s.handleGetMaterial)
	s.mux.HandleFunc("PUT /api/materials/{id}", requireTeacher(s.handleUpdateMaterial))
	s.mux.HandleFunc("DELETE /api/materials/{id}", requireTeacher(s.handleDeleteMaterial))
	s.mux.HandleFunc("POST /api/materials/{id}/fork", requireTeacher(s.handleForkMaterial))
	s.mux.HandleFunc("POST /api/materials/{id}/like", requireUser(s.handleLikeMaterial))
	s.mux.HandleFunc("GET /api/materials/{id}/comments", s.handleListComments)
	s.mux.HandleFunc("POST /api/materials/{id}/comments", requireUser(s.handleAddComment))

	s.mux.HandleFunc("POST /api/materials/{id}/details", requireTeacher(s.handleGenerateDetails))
	s.mux.HandleFunc("POST /api/materials/{id}/guide", requireUser(s.handleGenerateGuide))
	s.mux.HandleFunc("GET /api/materials/{id}/details.xlsx", s.handleExportDetails)
	s.mux.HandleFunc("GET /api/materials/{id}/guide.xlsx", s.handleExportGuide)
	s.mux.HandleFunc("POST /api/analyze-pdf", requireTeacher(s.handleAnalyzePDF))

	s.mux.HandleFunc("GET /api/curriculum", s.handleCurriculum)
	s.mux.HandleFunc("GET /api/classify", s.handleClassify)
	s.mux.HandleFunc("GET /api/dashboard", requireUser(s.handleDashboard))

	s.mux.HandleFunc("POST /api/chat/{session}", s.handleChat)
	s.mux.HandleFunc("GET /api/chat/{session}", requireUser(s.handleChatSession))
	if s.chatWS != nil {
		s.mux.Handle("GET /api/chat/{session}/ws", s.chatWS)
	}
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	for _, c := range s.checks {
		if err := c.Check(ctx); err != nil {
			slog.Warn("readiness check failed", "check", c.Name, "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "check": c.Name})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeErr maps a service error to a status code. Unknown errors are logged
// and reported as 500.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	var verr *material.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, material.ErrNotFound), errors.Is(err, user.ErrNotFound), errors.Is(err, agent.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, material.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, user.ErrEmailExists), errors.Is(err, material.ErrExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, user.ErrWeakPassword), errors.Is(err, user.ErrInvalidRole):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, user.ErrInvalidCredentials), errors.Is(err, user.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// readBody reads a bounded JSON request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return raw, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	raw, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
