package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisPrefix  = "worksheet:"
	redisTimeout = 5 * time.Second
)

// Redis is a cache shared between machines. Keys are namespaced with a
// "worksheet:" prefix so one Redis database can serve other tools too.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to the server at url, e.g. "redis://localhost:6379/0".
func NewRedis(url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &Redis{client: client, prefix: redisPrefix}, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

func opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), redisTimeout)
}

// Save JSON-encodes v and stores it under key without expiry.
func (r *Redis) Save(key string, v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("cache save failed", "key", key, "error", err)
		return false
	}
	ctx, cancel := opContext()
	defer cancel()
	if err := r.client.Set(ctx, r.key(key), data, 0).Err(); err != nil {
		slog.Error("cache save failed", "key", key, "error", err)
		return false
	}
	return true
}

// LoadRaw returns the stored JSON for key, ErrNotFound when missing.
func (r *Redis) LoadRaw(key string) (json.RawMessage, error) {
	ctx, cancel := opContext()
	defer cancel()
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("load %s: %w", key, ErrSerialization)
	}
	return json.RawMessage(data), nil
}

func (r *Redis) Load(key string, out any) bool {
	raw, err := r.LoadRaw(key)
	return decode(key, raw, err, out)
}

func (r *Redis) Delete(key string) error {
	ctx, cancel := opContext()
	defer cancel()
	return r.client.Del(ctx, r.key(key)).Err()
}

// Keys lists stored keys without the namespace prefix, in lexical order.
func (r *Redis) Keys() ([]string, error) {
	ctx, cancel := opContext()
	defer cancel()

	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan keys: %w", err)
		}
		for _, k := range batch {
			keys = append(keys, strings.TrimPrefix(k, r.prefix))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	slices.Sort(keys)
	return slices.Compact(keys), nil
}
