package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/p-n-ai/materialbank/internal/material"
	"github.com/p-n-ai/materialbank/internal/platform/cache"
)

const keyPrefix = "mbank:gen:"

// Cache stores generated documents by content fingerprint.
type Cache interface {
	Load(ctx context.Context, key string, dst any) (bool, error)
	Store(ctx context.Context, key string, v any) error
}

// NopCache never hits.
type NopCache struct{}

func (NopCache) Load(context.Context, string, any) (bool, error) { return false, nil }
func (NopCache) Store(context.Context, string, any) error        { return nil }

// RedisCache keeps generated documents in Redis.
type RedisCache struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewRedisCache wraps a platform cache client. A zero ttl never expires.
func NewRedisCache(c *cache.Cache, ttl time.Duration) *RedisCache {
	return &RedisCache{cache: c, ttl: ttl}
}

func (c *RedisCache) Load(ctx context.Context, key string, dst any) (bool, error) {
	return c.cache.GetJSON(ctx, keyPrefix+key, dst)
}

func (c *RedisCache) Store(ctx context.Context, key string, v any) error {
	return c.cache.SetJSON(ctx, keyPrefix+key, v, c.ttl)
}

// fingerprint identifies the inputs that shape a generated document. Counters,
// timestamps and authorship do not affect generation and are left out.
func fingerprint(kind, dataVersion string, m material.Material, details *material.MaterialDetails) string {
	payload, _ := json.Marshal(struct {
		Kind        string                    `json:"k"`
		Version     string                    `json:"v"`
		Title       string                    `json:"t"`
		Description string                    `json:"d"`
		Subject     string                    `json:"s"`
		Grade       string                    `json:"g"`
		Duration    int                       `json:"m"`
		Details     *material.MaterialDetails `json:"x,omitempty"`
	}{kind, dataVersion, m.Title, m.Description, m.Subject, m.Grade, m.Duration, details})

	sum := sha256.Sum256(payload)
	return kind + ":" + hex.EncodeToString(sum[:])
}
