package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisFieldValue   = "value"
	redisFieldVersion = "version"
)

// RedisKV stores each key as a hash holding the value and its version.
type RedisKV struct {
	client *redis.Client
	logger *log.Logger
}

func NewRedisKV(ctx context.Context, url string, logger *log.Logger) (*RedisKV, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(url))
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	if logger != nil {
		logger.Printf("[Store] redis connected addr=%s db=%d", opts.Addr, opts.DB)
	}
	return &RedisKV{client: client, logger: logger}, nil
}

// NewRedisKVFromClient wraps an existing client.
func NewRedisKVFromClient(client *redis.Client, logger *log.Logger) *RedisKV {
	return &RedisKV{client: client, logger: logger}
}

func (r *RedisKV) Ping(ctx context.Context) error {
	if r == nil || r.client == nil {
		return ErrClosed
	}
	return r.client.Ping(ctx).Err()
}

func (r *RedisKV) Get(ctx context.Context, key string) (Entry, error) {
	if r == nil || r.client == nil {
		return Entry{}, ErrClosed
	}
	vals, err := r.client.HMGet(ctx, key, redisFieldValue, redisFieldVersion).Result()
	if err != nil {
		return Entry{}, fmt.Errorf("redis get key=%s: %w", key, err)
	}
	return decodeRedisEntry(key, vals)
}

func decodeRedisEntry(key string, vals []any) (Entry, error) {
	if len(vals) != 2 || vals[0] == nil {
		return Entry{}, nil
	}
	value, ok := vals[0].(string)
	if !ok {
		return Entry{}, fmt.Errorf("%w: key=%s: unexpected value type %T", ErrCorrupt, key, vals[0])
	}
	var version int64
	if raw, ok := vals[1].(string); ok {
		if _, err := fmt.Sscan(raw, &version); err != nil {
			return Entry{}, fmt.Errorf("%w: key=%s: bad version %q", ErrCorrupt, key, raw)
		}
	}
	return Entry{Value: []byte(value), Version: version, Exists: true}, nil
}

// Commit watches every key, verifies versions and applies the writes in one
// MULTI/EXEC. A concurrent change to a watched key aborts with ErrConflict.
func (r *RedisKV) Commit(ctx context.Context, writes []Write) error {
	if r == nil || r.client == nil {
		return ErrClosed
	}
	if len(writes) == 0 {
		return nil
	}
	keys := uniqueKeys(writes)

	txf := func(tx *redis.Tx) error {
		current := make(map[string]int64, len(keys))
		for _, k := range keys {
			v, err := tx.HGet(ctx, k, redisFieldVersion).Int64()
			if err != nil {
				if !errors.Is(err, redis.Nil) {
					return err
				}
				v = 0
			}
			current[k] = v
		}
		for _, w := range writes {
			if !versionMatches(w, current[w.Key]) {
				return ErrConflict
			}
		}

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, w := range writes {
				switch w.Kind {
				case WritePut:
					pipe.HSet(ctx, w.Key,
						redisFieldValue, w.Value,
						redisFieldVersion, nextVersion(current[w.Key]),
					)
				case WriteDelete:
					pipe.Del(ctx, w.Key)
				}
			}
			return nil
		})
		return err
	}

	err := r.client.Watch(ctx, txf, keys...)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrConflict), errors.Is(err, redis.TxFailedErr):
		return ErrConflict
	default:
		if r.logger != nil {
			r.logger.Printf("[Store] redis commit error keys=%v err=%v", keys, err)
		}
		return fmt.Errorf("redis commit: %w", err)
	}
}

// Purge deletes every key matching pattern.
func (r *RedisKV) Purge(ctx context.Context, pattern string) error {
	if r == nil || r.client == nil {
		return ErrClosed
	}
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil
	}
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		if err := r.client.Del(ctx, k).Err(); err != nil && r.logger != nil {
			r.logger.Printf("[Store] redis delete error key=%s pattern=%s err=%v", k, pattern, err)
		}
	}
	return iter.Err()
}

func (r *RedisKV) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}
