package database

import (
	"context"
	"fmt"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Store persists the ledger between runs. Load on a store that was never
// saved returns an empty State. Save replaces the whole ledger at once.
type Store interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, state *State) error
	Close() error
}

var (
	_ Store = (*JSONStore)(nil)
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*RedisStore)(nil)
)

// OpenStore picks a backend. For redis, path is a redis:// URL.
func OpenStore(backend, path string) (Store, error) {
	switch backend {
	case BackendJSON, "":
		return NewJSONStore(path), nil
	case BackendSQLite:
		return NewSQLiteStore(path)
	case BackendRedis:
		return NewRedisStore(path)
	default:
		return nil, fmt.Errorf("unknown state backend: %s", backend)
	}
}
