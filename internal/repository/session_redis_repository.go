package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/teacher-directory/internal/models"
	appErrors "github.com/noah-isme/teacher-directory/pkg/errors"
)

const sessionKeyPrefix = "teacher-directory:session:"

// RedisSessionRepository stores directory state as JSON in Redis so sessions survive restarts and span replicas.
type RedisSessionRepository struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewRedisSessionRepository constructs a Redis-backed session store.
func NewRedisSessionRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisSessionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSessionRepository{client: client, logger: logger, ttl: ttl}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

// Get retrieves and decodes the stored state.
func (r *RedisSessionRepository) Get(ctx context.Context, id string) (*models.DirectoryState, error) {
	if r.client == nil {
		return nil, appErrors.ErrCacheMiss
	}

	raw, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get session %s: %w", id, err)
	}

	var state models.DirectoryState
	if err := json.Unmarshal(raw, &state); err != nil {
		r.logger.Warn("discarding undecodable session", zap.String("session_id", id), zap.Error(err))
		return nil, appErrors.ErrCacheMiss
	}
	return &state, nil
}

// Save marshals state and stores it with the configured TTL.
func (r *RedisSessionRepository) Save(ctx context.Context, id string, state *models.DirectoryState) error {
	if r.client == nil {
		return nil
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", id, err)
	}
	if err := r.client.Set(ctx, sessionKey(id), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session %s: %w", id, err)
	}
	return nil
}

// Delete removes the session key.
func (r *RedisSessionRepository) Delete(ctx context.Context, id string) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete session %s: %w", id, err)
	}
	return nil
}

// Ping reports whether Redis is reachable; used by the readiness probe.
func (r *RedisSessionRepository) Ping(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Ping(ctx).Err()
}
