package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Persisted key names carry schema versions; a shape change bumps the
// suffix instead of migrating old payloads in place.
const (
	stateKey    = "tracker:state.v2"
	lifetimeKey = "tracker:lifetime.v1"
)

// RedisStore persists tracker state in Redis. Entries have no TTL: tracking
// state lives until the user stops tracking.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Load(ctx context.Context) (*State, error) {
	raw, err := r.client.Get(ctx, stateKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load tracker state: %w", err)
	}

	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("decode tracker state: %w", err)
	}
	return &state, nil
}

func (r *RedisStore) Save(ctx context.Context, state *State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode tracker state: %w", err)
	}
	if err := r.client.Set(ctx, stateKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("save tracker state: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, stateKey).Err(); err != nil {
		return fmt.Errorf("clear tracker state: %w", err)
	}
	return nil
}

func (r *RedisStore) LoadLifetime(ctx context.Context) (int64, error) {
	raw, err := r.client.Get(ctx, lifetimeKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load lifetime marker: %w", err)
	}

	startedAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("decode lifetime marker: %w", err)
	}
	return startedAt, nil
}

func (r *RedisStore) SaveLifetime(ctx context.Context, startedAt int64) error {
	if err := r.client.Set(ctx, lifetimeKey, strconv.FormatInt(startedAt, 10), 0).Err(); err != nil {
		return fmt.Errorf("save lifetime marker: %w", err)
	}
	return nil
}
