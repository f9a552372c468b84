// Package cache implementa o cache de itens em Redis usado por dyndb.Store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/raywall/dynamodb-quick-service/dyndb"
	"github.com/raywall/dynamodb-quick-service/pkg/config"
	"github.com/redis/go-redis/v9"
)

// Cmdable é a parte de *redis.Client de que o cache precisa.
type Cmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisCache guarda os itens como JSON em prefix+key.
type RedisCache struct {
	client Cmdable
	prefix string
}

var _ dyndb.ItemCache = (*RedisCache)(nil)

func NewRedisCache(client Cmdable, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

// NewFromConfig conecta ao Redis descrito em cfg e o verifica com PING.
func NewFromConfig(ctx context.Context, cfg config.CacheConf) (*RedisCache, *redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("cache: redis %s: %w", cfg.Addr, err)
	}
	return NewRedisCache(client, cfg.Prefix), client, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (dyndb.Item, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var item dyndb.Item
	if err := json.Unmarshal([]byte(val), &item); err != nil {
		return nil, false, fmt.Errorf("cache: corrupt entry %s: %w", key, err)
	}
	return item, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, item dyndb.Item, ttl time.Duration) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	return c.client.Set(ctx, c.prefix+key, data, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}
