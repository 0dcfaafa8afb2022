// Package cache keeps each user's product list in Redis so inventory reads
// skip the database. Entries are invalidated on every product write and
// expire after a TTL as a backstop.
//
// Every invalidation also bumps a per-user generation. A reader takes the
// generation before loading from the database and passes it to Set, which
// stores nothing if a write landed in between.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var (
	// ErrMiss is returned by Get when no entry exists for the user.
	ErrMiss = errors.New("cache miss")

	// ErrStale is returned by Set when the generation moved on since the
	// caller read it. Nothing was stored.
	ErrStale = errors.New("cache entry stale")
)

// ProductCache stores the serialized product list per user.
type ProductCache interface {
	Get(ctx context.Context, userID uuid.UUID) ([]byte, error)
	// Generation is the user's current write generation.
	Generation(ctx context.Context, userID uuid.UUID) (int64, error)
	// Set stores data if the generation still equals gen.
	Set(ctx context.Context, userID uuid.UUID, gen int64, data []byte) error
	// Invalidate drops the entry and bumps the generation.
	Invalidate(ctx context.Context, userID uuid.UUID) error
	Close() error
}

// Redis is a ProductCache backed by go-redis.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to url (redis://[:password@]host:port/db) and verifies
// the connection with a PING.
func NewRedis(ctx context.Context, url string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Redis{client: client, ttl: ttl}, nil
}

func inventoryKey(userID uuid.UUID) string {
	return "inventory:" + userID.String()
}

func (r *Redis) Get(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	data, err := r.client.Get(ctx, inventoryKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return data, nil
}

func generationKey(userID uuid.UUID) string {
	return inventoryKey(userID) + ":gen"
}

func (r *Redis) Generation(ctx context.Context, userID uuid.UUID) (int64, error) {
	gen, err := r.client.Get(ctx, generationKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get generation: %w", err)
	}
	return gen, nil
}

func (r *Redis) Set(ctx context.Context, userID uuid.UUID, gen int64, data []byte) error {
	genKey := generationKey(userID)
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return ErrStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, inventoryKey(userID), data, r.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStale), errors.Is(err, redis.TxFailedErr):
		return ErrStale
	default:
		return fmt.Errorf("redis set: %w", err)
	}
}

func (r *Redis) Invalidate(ctx context.Context, userID uuid.UUID) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(userID))
		pipe.Del(ctx, inventoryKey(userID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// Nop is the ProductCache used when Redis is not configured. Every Get misses.
type Nop struct{}

func (Nop) Get(context.Context, uuid.UUID) ([]byte, error)       { return nil, ErrMiss }
func (Nop) Generation(context.Context, uuid.UUID) (int64, error) { return 0, nil }
func (Nop) Set(context.Context, uuid.UUID, int64, []byte) error  { return nil }
func (Nop) Invalidate(context.Context, uuid.UUID) error          { return nil }
func (Nop) Close() error                                         { return nil }
