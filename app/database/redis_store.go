package database

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisLedgerKey = "rss-relay:seen"

// RedisStore keeps the ledger in a single Redis hash, field per identity key.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Debug("Connected to Redis", "addr", opts.Addr, "db", opts.DB)

	return &RedisStore{client: client, key: redisLedgerKey}, nil
}

func (s *RedisStore) Load(ctx context.Context) (*State, error) {
	values, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger hash: %w", err)
	}

	state := NewState()
	for key, value := range values {
		if ts, err := strconv.ParseInt(value, 10, 64); err == nil {
			state.seen[key] = ts
		} else {
			state.setMalformed(key, value)
		}
	}

	return state, nil
}

// Save swaps the hash contents inside MULTI/EXEC.
func (s *RedisStore) Save(ctx context.Context, state *State) error {
	fields := make(map[string]any, state.Len())
	for key, ts := range state.seen {
		fields[key] = ts
	}
	for key, value := range state.malformed {
		fields[key] = fmt.Sprint(value)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		if len(fields) > 0 {
			pipe.HSet(ctx, s.key, fields)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write ledger hash: %w", err)
	}

	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
