package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/p-n-ai/materialbank/internal/agent"
	"github.com/p-n-ai/materialbank/internal/ai"
	"github.com/p-n-ai/materialbank/internal/chat"
	"github.com/p-n-ai/materialbank/internal/classify"
	"github.com/p-n-ai/materialbank/internal/curriculum"
	"github.com/p-n-ai/materialbank/internal/generator"
	"github.com/p-n-ai/materialbank/internal/material"
	"github.com/p-n-ai/materialbank/internal/pdftext"
	"github.com/p-n-ai/materialbank/internal/platform/cache"
	"github.com/p-n-ai/materialbank/internal/platform/config"
	"github.com/p-n-ai/materialbank/internal/platform/database"
	"github.com/p-n-ai/materialbank/internal/server"
	"github.com/p-n-ai/materialbank/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg.Log, os.Stdout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	a, err := buildApp(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      a.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "database", cfg.Database.URL != "", "cache", cfg.Cache.URL != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// newLogger builds the process logger from the log settings.
func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// app is the wired application and the resources it must release.
type app struct {
	handler http.Handler
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// stores groups the persistence backends selected by configuration.
type stores struct {
	materials material.Store
	users     user.Repository
	sessions  agent.SessionStore
	events    agent.EventLogger
}

// buildApp wires every service. Without a database URL the in-memory stores
// are used; without a cache URL generation results are not cached.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}
	var checks []server.ReadinessCheck

	loader, err := newCurriculumLoader(cfg.CurriculumPath)
	if err != nil {
		return nil, err
	}

	st := stores{
		materials: material.NewMemoryStore(),
		sessions:  agent.NewMemoryStore(),
		events:    agent.NopEventLogger{},
	}
	if st.users, err = user.NewMemoryRepository(); err != nil {
		return nil, err
	}
	if cfg.Database.URL != "" {
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if err := database.EnsureSchema(ctx, db.Pool); err != nil {
			a.Close()
			return nil, err
		}
		if st, err = postgresStores(db); err != nil {
			a.Close()
			return nil, err
		}
		checks = append(checks, server.ReadinessCheck{Name: "database", Check: db.HealthCheck})
	}

	var genCache generator.Cache
	if cfg.Cache.URL != "" {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connecting to cache: %w", err)
		}
		a.closers = append(a.closers, func() { c.Close() })
		genCache = generator.NewRedisCache(c, cfg.Cache.TTL)
		checks = append(checks, server.ReadinessCheck{Name: "cache", Check: c.HealthCheck})
	}

	classifier := classify.Default()
	gen := generator.New(loader, classifier)
	generation := generator.NewService(generator.ServiceConfig{
		Generator:       gen,
		Cache:           genCache,
		Extractor:       pdftext.New(),
		SimulateLatency: cfg.Generator.SimulateLatency,
	})

	users, err := user.NewService(user.ServiceConfig{
		Repo:      st.users,
		JWTSecret: cfg.Auth.JWTSecret,
		TokenTTL:  cfg.Auth.AccessTokenTTL,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	if cfg.Auth.SeedDemo {
		if err := user.SeedDemo(ctx, users); err != nil {
			a.Close()
			return nil, err
		}
		slog.Info("demo accounts ready", "count", len(user.DemoAccounts))
	}

	router := ai.NewRouter()
	router.Register("template", ai.NewTemplateProvider())
	checks = append(checks, server.ReadinessCheck{Name: "ai", Check: router.HealthCheck})
	engine := agent.NewEngine(agent.EngineConfig{
		AIRouter:        router,
		Generator:       gen,
		Store:           st.sessions,
		Events:          st.events,
		Budget:          ai.NewInMemoryBudget(cfg.Chat.TokenBudget),
		SimulateLatency: cfg.Generator.SimulateLatency,
	})

	srv := server.New(server.Config{
		Materials:  st.materials,
		Users:      users,
		Generation: generation,
		Curriculum: loader,
		Classifier: classifier,
		Chat:       engine,
		ChatHandler: chat.NewHandler(chat.HandlerConfig{
			Responder: engine,
			Materials: st.materials,
		}),
		Checks:        checks,
		MaxUploadSize: cfg.Server.MaxUploadSize,
	})
	a.handler = srv.Handler()
	return a, nil
}

func newCurriculumLoader(dir string) (*curriculum.Loader, error) {
	if dir == "" {
		return curriculum.NewLoader()
	}
	return curriculum.NewLoaderWithDir(dir)
}

func postgresStores(db *database.DB) (stores, error) {
	materials, err := material.NewPostgresStore(db.Pool)
	if err != nil {
		return stores{}, err
	}
	users, err := user.NewPostgresRepository(db.Pool)
	if err != nil {
		return stores{}, err
	}
	sessions, err := agent.NewPostgresStore(db.Pool)
	if err != nil {
		return stores{}, err
	}
	return stores{
		materials: materials,
		users:     users,
		sessions:  sessions,
		events:    agent.NewPostgresEventLogger(db.Pool),
	}, nil
}
