package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/urlsentry/urlsentry-backend/internal/config"
)

const approvedURLsKey = "reports:approved-urls"

// ApprovedURLCache is a read-through Redis cache for the approved-URL feed.
// A nil client (no REDIS_ADDR configured) degrades to always-miss.
type ApprovedURLCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewApprovedURLCache(cfg *config.Config) *ApprovedURLCache {
	if cfg.RedisAddr == "" {
		return &ApprovedURLCache{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		slog.Error("redis unavailable, approved-URL caching disabled", "error", err)
		return &ApprovedURLCache{}
	}

	slog.Info("redis connected", "addr", cfg.RedisAddr)
	return &ApprovedURLCache{client: client, ttl: cfg.CacheTTL}
}

// Get returns the cached list and whether it was present.
func (c *ApprovedURLCache) Get(ctx context.Context) ([]string, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, approvedURLsKey).Result()
	if err != nil {
		return nil, false
	}
	var urls []string
	if err := json.Unmarshal([]byte(raw), &urls); err != nil {
		return nil, false
	}
	return urls, true
}

func (c *ApprovedURLCache) Set(ctx context.Context, urls []string) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(urls)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, approvedURLsKey, raw, c.ttl).Err(); err != nil {
		slog.Error("failed to cache approved URLs", "error", err)
	}
}

// Invalidate drops the cached list. Called on any status transition or delete.
func (c *ApprovedURLCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, approvedURLsKey).Err(); err != nil {
		slog.Error("failed to invalidate approved URL cache", "error", err)
	}
}

func (c *ApprovedURLCache) Close() {
	if c.client != nil {
		_ = c.client.Close()
	}
}
