package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSlot stores the session record under a single Redis key so it
// survives process restarts. The key is fixed per slot instance.
type RedisSlot struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisSlot creates a slot backed by the given Redis key. A ttl of 0
// means the record never expires.
func NewRedisSlot(client *redis.Client, key string, ttl time.Duration) *RedisSlot {
	return &RedisSlot{
		client: client,
		key:    key,
		ttl:    ttl,
	}
}

// Read returns the stored record, or ErrSlotEmpty if the key is absent.
func (r *RedisSlot) Read(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("reading session slot from redis: %w", err)
	}
	return data, nil
}

// Write replaces the stored record.
func (r *RedisSlot) Write(ctx context.Context, record []byte) error {
	if err := r.client.Set(ctx, r.key, record, r.ttl).Err(); err != nil {
		return fmt.Errorf("writing session slot to redis: %w", err)
	}
	return nil
}

// Delete removes the key. Redis DEL on a missing key is a no-op, which
// matches the Slot contract.
func (r *RedisSlot) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("deleting session slot from redis: %w", err)
	}
	return nil
}
