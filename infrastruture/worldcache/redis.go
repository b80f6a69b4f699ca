package worldcache

import (
	"context"
	"errors"
	"time"

	"github.com/beka-birhanu/vinom-warden/service/i"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "warden:world:"
	lockSuffix = ":lock"
	lockExpiry = 10 * time.Second
)

var _ i.WorldCache = &RedisCache{}

// RedisCache stores composed worlds in Redis and serialises their generation with a redsync mutex.
type RedisCache struct {
	client *redis.Client
	locker *redsync.Redsync
}

// NewRedisCache initializes a RedisCache with the provided Redis client.
func NewRedisCache(client *redis.Client) *RedisCache {
	pool := goredis.NewPool(client)
	return &RedisCache{
		client: client,
		locker: redsync.New(pool),
	}
}

// Get returns the cached bytes and whether the key was present.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores data under key for ttl.
func (r *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return r.client.Set(ctx, keyPrefix+key, data, ttl).Err()
}

// Lock takes the generation lock for key.
func (r *RedisCache) Lock(ctx context.Context, key string) (func() error, error) {
	mutex := r.locker.NewMutex(keyPrefix+key+lockSuffix, redsync.WithExpiry(lockExpiry))
	if err := mutex.LockContext(ctx); err != nil {
		return nil, err
	}
	return func() error {
		_, err := mutex.Unlock()
		return err
	}, nil
}
