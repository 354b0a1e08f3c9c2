package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Store is a key -> value cache with per-entry TTL.
// Get reports found=false for missing and expired keys.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Name() string
	Close() error
}

// GetJSON reads key and decodes it into a T.
func GetJSON[T any](ctx context.Context, s Store, key string) (T, bool, error) {
	var v T
	data, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return v, false, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return v, true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, data, ttl)
}

// Options selects and configures a Store backend.
type Options struct {
	Backend    string // memory, redis, sqlite or none
	MaxEntries int
	SQLitePath string
	Redis      RedisConfig
}

// Open builds the Store named by opts.Backend.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case "", "memory":
		return NewMemory(opts.MaxEntries), nil
	case "redis":
		return NewRedis(opts.Redis)
	case "sqlite":
		return NewSQLite(opts.SQLitePath)
	case "none":
		return NewNoop(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}
