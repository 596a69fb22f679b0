package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"app/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

// カートの読みをMongoの手前で受けるキャッシュ。
// 書き込み時はDeleteで消すだけ（cache-aside）。
type CartCache interface {
	Get(ctx context.Context, sessionID string) (model.Cart, error)
	Set(ctx context.Context, cart model.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

type RedisCartCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartCache(client *redis.Client, ttl time.Duration) *RedisCartCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RedisCartCache{client: client, ttl: ttl}
}

func (c *RedisCartCache) Get(ctx context.Context, sessionID string) (model.Cart, error) {
	data, err := c.client.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Cart{}, ErrCacheMiss
	}
	if err != nil {
		return model.Cart{}, fmt.Errorf("redis get: %w", err)
	}

	var cart model.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return model.Cart{}, fmt.Errorf("unmarshal cart: %w", err)
	}
	return cart, nil
}

func (c *RedisCartCache) Set(ctx context.Context, cart model.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := c.client.Set(ctx, cartKey(cart.SessionID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisCartCache) Delete(ctx context.Context, sessionID string) error {
	if err := c.client.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

// Redisを使わない構成用
type NoopCartCache struct{}

func (NoopCartCache) Get(context.Context, string) (model.Cart, error) { return model.Cart{}, ErrCacheMiss }
func (NoopCartCache) Set(context.Context, model.Cart) error           { return nil }
func (NoopCartCache) Delete(context.Context, string) error            { return nil }
