// internal/service/session/cache.go
package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"realm-gateway/internal/domain/account"
)

// Cache keeps resolved sessions in Redis for their remaining lifetime.
// A nil *Cache is valid and means no cache is configured; every method is
// nil-safe so the service never has to branch.
type Cache struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCache(client *redis.Client, logger *zap.Logger) *Cache {
	if client == nil {
		return nil
	}
	return &Cache{client: client, logger: logger}
}

func sessionKey(id uuid.UUID) string {
	return "session:" + id.String()
}

// Get returns the cached session, or nil on miss or any cache error.
func (c *Cache) Get(ctx context.Context, id uuid.UUID) *account.Session {
	if c == nil {
		return nil
	}

	data, err := c.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("session cache read failed", zap.Error(err))
		}
		return nil
	}

	var session account.Session
	if err := json.Unmarshal(data, &session); err != nil {
		c.logger.Warn("session cache entry corrupt", zap.Error(err))
		return nil
	}
	return &session
}

// Put stores a session until its expiry. Best effort; failures are logged
// and ignored, the repository remains the source of truth.
func (c *Cache) Put(ctx context.Context, session *account.Session) {
	if c == nil {
		return
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return
	}

	data, err := json.Marshal(session)
	if err != nil {
		c.logger.Warn("failed to marshal session for cache", zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, sessionKey(session.ID), data, ttl).Err(); err != nil {
		c.logger.Warn("session cache write failed", zap.Error(err))
	}
}
