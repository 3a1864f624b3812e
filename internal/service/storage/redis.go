package storage

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/ChaseRain/lessonslides/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "lessonslides:deck:"

// RedisBackend stores snapshots as plain keys that expire after ttl.
type RedisBackend struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisBackend(ctx context.Context, addr string, db, ttlSeconds int) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, errors.ErrCodeStorage, "redis ping failed")
	}
	return NewRedisBackendFromClient(client, time.Duration(ttlSeconds)*time.Second), nil
}

// NewRedisBackendFromClient wraps an existing client. A ttl of zero keeps
// keys forever.
func NewRedisBackendFromClient(client *redis.Client, ttl time.Duration) *RedisBackend {
	return &RedisBackend{client: client, ttl: ttl}
}

func (b *RedisBackend) Put(ctx context.Context, id string, data []byte) error {
	if err := b.client.Set(ctx, redisKeyPrefix+id, data, b.ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorage, "redis set failed")
	}
	return nil
}

func (b *RedisBackend) Get(ctx context.Context, id string) ([]byte, error) {
	data, err := b.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, errors.New(errors.ErrCodeNotFound, "deck not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorage, "redis get failed")
	}
	return data, nil
}

func (b *RedisBackend) Delete(ctx context.Context, id string) error {
	if err := b.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorage, "redis del failed")
	}
	return nil
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}
