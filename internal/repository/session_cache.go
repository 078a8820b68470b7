package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tutor-service/internal/models"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "tutor:session:"

// SessionCache is a read-through Redis cache in front of the Mongo
// repository, keyed by session id. A nil cache is a no-op so the
// service runs without Redis configured.
type SessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionCache(client *redis.Client, ttl time.Duration) *SessionCache {
	return &SessionCache{client: client, ttl: ttl}
}

func (c *SessionCache) Get(ctx context.Context, id string) (*models.Session, error) {
	if c == nil || c.client == nil {
		return nil, redis.Nil
	}
	raw, err := c.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		return nil, err
	}
	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("error decoding cached session: %w", err)
	}
	return &session, nil
}

func (c *SessionCache) Set(ctx context.Context, session *models.Session) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("error encoding session for cache: %w", err)
	}
	return c.client.Set(ctx, sessionKeyPrefix+session.ID, raw, c.ttl).Err()
}

func (c *SessionCache) Delete(ctx context.Context, id string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, sessionKeyPrefix+id).Err()
}
