package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"studio-storefront/internal/cart"

	"github.com/redis/go-redis/v9"
)

// RedisCartRepository keeps each cart under cart:<key>; the key TTL follows
// the record's expiry so Redis drops abandoned carts on its own.
type RedisCartRepository struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisCartRepository(client *redis.Client) *RedisCartRepository {
	return &RedisCartRepository{client: client, now: time.Now}
}

func (r *RedisCartRepository) Load(ctx context.Context, key string) (*cart.Record, error) {
	data, err := r.client.Get(ctx, cartKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, cart.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var rec cart.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode cart record: %w", err)
	}
	return &rec, nil
}

func (r *RedisCartRepository) Save(ctx context.Context, key string, record cart.Record) error {
	ttl := record.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return r.Delete(ctx, key)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode cart record: %w", err)
	}
	if err := r.client.Set(ctx, cartKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

func (r *RedisCartRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, cartKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete cart: %w", err)
	}
	return nil
}

func cartKey(key string) string {
	return fmt.Sprintf("cart:%s", key)
}
