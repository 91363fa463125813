package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Nayuta9382/taskdeck/internal/database"
)

const sessionKeyPrefix = "session:"

// SessionRepository stores server-side session records. Each record maps a
// random session ID to the authenticated user ID and expires on its own.
type SessionRepository interface {
	Create(ctx context.Context, userID string, ttl time.Duration) (string, error)
	Get(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
}

type redisSessionRepo struct {
	redis *database.Redis
}

// NewSessionRepository creates a Redis-backed session repository.
func NewSessionRepository(redis *database.Redis) SessionRepository {
	return &redisSessionRepo{redis: redis}
}

// Create stores a new session record and returns its ID.
func (r *redisSessionRepo) Create(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	sessionID := uuid.NewString()
	if err := r.redis.Set(ctx, sessionKeyPrefix+sessionID, userID, ttl); err != nil {
		return "", err
	}
	return sessionID, nil
}

// Get returns the user ID bound to the session, or empty when the session
// does not exist or has expired.
func (r *redisSessionRepo) Get(ctx context.Context, sessionID string) (string, error) {
	userID, err := r.redis.Get(ctx, sessionKeyPrefix+sessionID)
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

// Delete removes the session record. Deleting a missing session is a no-op.
func (r *redisSessionRepo) Delete(ctx context.Context, sessionID string) error {
	return r.redis.Delete(ctx, sessionKeyPrefix+sessionID)
}
