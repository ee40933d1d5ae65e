package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oapi-codegen/runtime/types"
	backend "github.com/redis/go-redis/v9"
)

// RedisStore implements Store using Redis. Each forecast is a JSON string
// keyed by date; a sorted set scored by day indexes them in date order.
type RedisStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type RedisOption func(*RedisStore)

// WithTTL sets the expiration of stored forecasts.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// NewRedisStore creates a Redis store with options.
func NewRedisStore(address, password string, db int, opts ...RedisOption) *RedisStore {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewRedisStoreFromClient(rdb, opts...)
}

// NewRedisStoreFromClient creates a Redis store from an existing client.
func NewRedisStoreFromClient(client *backend.Client, opts ...RedisOption) *RedisStore {
	store := &RedisStore{
		client: client,
		prefix: "mcpbridge:forecast:",
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *RedisStore) key(date string) string {
	return s.prefix + date
}

func (s *RedisStore) indexKey() string {
	return s.prefix + "index"
}

func (s *RedisStore) Get(ctx context.Context, date types.Date) (Forecast, bool, error) {
	val, err := s.client.Get(ctx, s.key(date.String())).Result()
	if err != nil {
		if err == backend.Nil {
			return Forecast{}, false, nil
		}
		return Forecast{}, false, fmt.Errorf("failed to get from redis: %w", err)
	}

	var f Forecast
	if err := json.Unmarshal([]byte(val), &f); err != nil {
		return Forecast{}, false, fmt.Errorf("failed to unmarshal forecast: %w", err)
	}
	return f, true, nil
}

// List returns every indexed forecast ordered by date. Index entries whose
// forecast has expired are dropped.
func (s *RedisStore) List(ctx context.Context) ([]Forecast, error) {
	dates, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list forecasts: %w", err)
	}
	if len(dates) == 0 {
		return []Forecast{}, nil
	}

	keys := make([]string, len(dates))
	for i, d := range dates {
		keys[i] = s.key(d)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	out := make([]Forecast, 0, len(vals))
	var stale []any
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			stale = append(stale, dates[i])
			continue
		}
		var f Forecast
		if err := json.Unmarshal([]byte(str), &f); err != nil {
			return nil, fmt.Errorf("failed to unmarshal forecast %s: %w", dates[i], err)
		}
		out = append(out, f)
	}

	// Lazy cleanup of expired forecasts.
	if len(stale) > 0 {
		if err := s.client.ZRem(ctx, s.indexKey(), stale...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune expired forecasts: %w", err)
		}
	}
	return out, nil
}

func (s *RedisStore) Put(ctx context.Context, f Forecast) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal forecast: %w", err)
	}

	date := f.Date.String()
	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(date), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  float64(f.Date.Unix()),
		Member: date,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, date types.Date) (bool, error) {
	pipe := s.client.Pipeline()
	del := pipe.Del(ctx, s.key(date.String()))
	pipe.ZRem(ctx, s.indexKey(), date.String())

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to delete from redis: %w", err)
	}
	return del.Val() > 0, nil
}

// Close closes the redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
