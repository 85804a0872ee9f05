package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Store backed by a Redis server, for deployments that want the
// cache shared across replicas. Entry semantics match the in-memory store;
// Redis handles expiry itself, so no sweep is needed.
type Redis struct {
	client *redis.Client
}

func NewRedis(url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("cache: parse redis url: %w", err)
	}
	return &Redis{client: redis.NewClient(opts)}, nil
}

func (r *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache: marshal %q failed: %v", key, err)
		return
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("cache: redis set %q failed: %v", key, err)
	}
}

func (r *Redis) Get(ctx context.Context, key string, dest any) bool {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache: redis get %q failed: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		log.Printf("cache: unmarshal %q failed: %v", key, err)
		return false
	}
	return true
}

func (r *Redis) Delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		log.Printf("cache: redis del %q failed: %v", key, err)
	}
}

func (r *Redis) Clear(ctx context.Context) {
	if err := r.client.FlushDB(ctx).Err(); err != nil {
		log.Printf("cache: redis flush failed: %v", err)
	}
}

func (r *Redis) Close() {
	_ = r.client.Close()
}
