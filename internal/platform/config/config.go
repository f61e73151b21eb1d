// Package config loads application configuration from environment variables.
// All variables use the MBANK_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Cache          CacheConfig
	Auth           AuthConfig
	Log            LogConfig
	Generator      GeneratorConfig
	Chat           ChatConfig
	CurriculumPath string // optional overlay directory of standards YAML
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port          int
	Host          string
	MaxUploadSize int64 // bytes
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL selects
// the in-memory stores.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Redis connection settings. An empty URL disables the
// generator cache.
type CacheConfig struct {
	URL string
	TTL time.Duration
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	JWTSecret      string
	AccessTokenTTL time.Duration
	SeedDemo       bool
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// GeneratorConfig holds content generation settings.
type GeneratorConfig struct {
	SimulateLatency bool
}

// ChatConfig holds assistant chat settings.
type ChatConfig struct {
	TokenBudget int64 // per session; 0 means unlimited
}

// Load reads configuration from environment variables with MBANK_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:          envInt("MBANK_SERVER_PORT", 8080),
			Host:          envStr("MBANK_SERVER_HOST", "0.0.0.0"),
			MaxUploadSize: int64(envInt("MBANK_SERVER_MAX_UPLOAD_MB", 32)) << 20,
		},
		Database: DatabaseConfig{
			URL:      envStr("MBANK_DATABASE_URL", ""),
			MaxConns: envInt("MBANK_DATABASE_MAX_CONNS", 25),
			MinConns: envInt("MBANK_DATABASE_MIN_CONNS", 5),
		},
		Cache: CacheConfig{
			URL: envStr("MBANK_CACHE_URL", ""),
			TTL: envDuration("MBANK_CACHE_TTL", 24*time.Hour),
		},
		Auth: AuthConfig{
			JWTSecret:      envStr("MBANK_AUTH_JWT_SECRET", "change-me-in-production"),
			AccessTokenTTL: envDuration("MBANK_AUTH_ACCESS_TOKEN_TTL", 24*time.Hour),
			SeedDemo:       envBool("MBANK_AUTH_SEED_DEMO", true),
		},
		Log: LogConfig{
			Level:  envStr("MBANK_LOG_LEVEL", "info"),
			Format: envStr("MBANK_LOG_FORMAT", "json"),
		},
		Generator: GeneratorConfig{
			SimulateLatency: envBool("MBANK_GENERATOR_SIMULATE_LATENCY", true),
		},
		Chat: ChatConfig{
			TokenBudget: int64(envInt("MBANK_CHAT_TOKEN_BUDGET", 0)),
		},
		CurriculumPath: envStr("MBANK_CURRICULUM_PATH", ""),
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("MBANK_SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("MBANK_AUTH_JWT_SECRET is required")
	}
	if c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("MBANK_AUTH_ACCESS_TOKEN_TTL must be positive")
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("MBANK_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("MBANK_LOG_LEVEL must be debug, info, warn or error, got %q", c.Log.Level)
	}
	if c.Chat.TokenBudget < 0 {
		return fmt.Errorf("MBANK_CHAT_TOKEN_BUDGET must not be negative")
	}
	if c.Database.URL != "" && c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("MBANK_DATABASE_MIN_CONNS (%d) exceeds MBANK_DATABASE_MAX_CONNS (%d)",
			c.Database.MinConns, c.Database.MaxConns)
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
