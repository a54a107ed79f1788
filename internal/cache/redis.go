// Package cache keeps positive revocation answers in Redis in front of the
// authoritative store. Revocation is terminal, so a cached "revoked" never
// goes stale; "not revoked" is never cached.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/EternisAI/silo-license/internal/store"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "license:revoked:"
	// minTTL keeps a marker briefly even for licenses already past expiry.
	minTTL = time.Minute
)

// Connect accepts either a redis:// URL or a bare host:port.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("Connected to Redis", "addr", client.Options().Addr)
	return client, nil
}

type RevocationCache struct {
	client *redis.Client
	store  store.Revocations
	now    func() time.Time
	logger *slog.Logger
}

func NewRevocationCache(client *redis.Client, revocations store.Revocations, logger *slog.Logger) *RevocationCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RevocationCache{
		client: client,
		store:  revocations,
		now:    time.Now,
		logger: logger,
	}
}

func (c *RevocationCache) ttl(expiresAt time.Time) time.Duration {
	if d := expiresAt.Sub(c.now()); d > minTTL {
		return d
	}
	return minTTL
}

// IsRevoked answers from Redis when it can and falls back to the store. Redis
// failures degrade to store lookups.
func (c *RevocationCache) IsRevoked(ctx context.Context, licenseID string, expiresAt time.Time) (bool, error) {
	n, err := c.client.Exists(ctx, keyPrefix+licenseID).Result()
	if err != nil {
		c.logger.Warn("Revocation cache read failed", "license_id", licenseID, "error", err)
	} else if n > 0 {
		return true, nil
	}

	if _, err := c.store.GetRevocation(ctx, licenseID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := c.MarkRevoked(ctx, licenseID, expiresAt); err != nil {
		c.logger.Warn("Revocation cache write failed", "license_id", licenseID, "error", err)
	}
	return true, nil
}

// MarkRevoked records a revocation until the license would have expired anyway.
func (c *RevocationCache) MarkRevoked(ctx context.Context, licenseID string, expiresAt time.Time) error {
	return c.client.Set(ctx, keyPrefix+licenseID, c.now().Unix(), c.ttl(expiresAt)).Err()
}
