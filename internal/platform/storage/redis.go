package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MichalMitros/marketguard/internal/platform/models"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "comp:"

// Redis is comp storage keeping every comp as JSON value under its own key.
type Redis struct {
	client *redis.Client
}

// NewRedis returns new Redis storage.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Get returns comp stored under key or nil if there is none.
func (r *Redis) Get(ctx context.Context, key string) (*models.ResaleComp, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("can't get comp from redis: %w", err)
	}

	var entry compEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("can't decode comp: %w", err)
	}

	return fromEntry(entry)
}

// Put stores comp under key without expiration, freshness is decided by the cache.
func (r *Redis) Put(ctx context.Context, key string, comp models.ResaleComp) error {
	data, err := json.Marshal(toEntry(comp))
	if err != nil {
		return fmt.Errorf("can't encode comp: %w", err)
	}

	if err := r.client.Set(ctx, redisKeyPrefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("can't set comp in redis: %w", err)
	}

	return nil
}
