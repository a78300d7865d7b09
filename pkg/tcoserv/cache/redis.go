package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nekruzvatanshoev/tcoserv/pkg/tcoserv/dal"
)

// Redis keeps results in a Redis server as JSON documents
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to addr. A ttl of zero keeps entries until evicted by Redis.
func NewRedis(addr string, ttl time.Duration) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &Redis{client: rdb, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, key string) (dal.TCOResult, bool, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return dal.TCOResult{}, false, nil
	}
	if err != nil {
		return dal.TCOResult{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var result dal.TCOResult
	if err := json.Unmarshal(val, &result); err != nil {
		return dal.TCOResult{}, false, fmt.Errorf("decode cached result %s: %w", key, err)
	}
	return result, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, result dal.TCOResult) error {
	val, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := r.client.Set(ctx, key, val, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Ping checks the connection
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the client's connections
func (r *Redis) Close() error {
	return r.client.Close()
}
