package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lockin-app/lockin-api/internal/models"
	appErrors "github.com/lockin-app/lockin-api/pkg/errors"
)

// CacheRepository provides helpers around Redis for cached schedules and
// per-user chat history.
type CacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewCacheRepository constructs a cache repository.
func NewCacheRepository(client *redis.Client, logger *zap.Logger) *CacheRepository {
	return &CacheRepository{client: client, logger: logger}
}

// Get retrieves and unmarshals the cached value into the provided destination.
func (r *CacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	if r.client == nil {
		return appErrors.ErrCacheMiss
	}

	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return appErrors.ErrCacheMiss
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal cache value for %s: %w", key, err)
	}

	return nil
}

// Set marshals the provided value and stores it with the given TTL.
func (r *CacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}

	if err := r.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	return nil
}

// Delete removes a single key.
func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

// AppendChatMessage pushes a message onto the user's chat history list and
// trims it to the configured limit.
func (r *CacheRepository) AppendChatMessage(ctx context.Context, key string, msg models.ChatMessage, limit int, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal chat message: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	if limit > 0 {
		pipe.LTrim(ctx, key, int64(-limit), -1)
	}
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis append chat message %s: %w", key, err)
	}
	return nil
}

// ChatHistory loads the user's chat history list, oldest first.
func (r *CacheRepository) ChatHistory(ctx context.Context, key string) ([]models.ChatMessage, error) {
	if r.client == nil {
		return []models.ChatMessage{}, nil
	}

	raw, err := r.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return []models.ChatMessage{}, nil
		}
		return nil, fmt.Errorf("redis chat history %s: %w", key, err)
	}

	history := make([]models.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var msg models.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			r.log().Warn("skipping malformed chat message", zap.Error(err))
			continue
		}
		history = append(history, msg)
	}
	return history, nil
}

func (r *CacheRepository) log() *zap.Logger {
	if r.logger == nil {
		return zap.NewNop()
	}
	return r.logger
}
