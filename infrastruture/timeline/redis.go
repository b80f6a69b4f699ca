package timeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-warden/game/guard"
	"github.com/beka-birhanu/vinom-warden/service/i"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "warden:timeline:"

var _ i.Timeline = &RedisTimeline{}

// RedisTimeline keeps each session's transitions in a sorted set scored by tick, with TTL support.
type RedisTimeline struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTimeline initializes a RedisTimeline with the provided Redis client and TTL.
func NewRedisTimeline(client *redis.Client, ttl time.Duration) *RedisTimeline {
	return &RedisTimeline{
		client: client,
		ttl:    ttl,
	}
}

func key(sessionID string) string {
	return keyPrefix + sessionID
}

// Append adds a transition and sets expiration if necessary.
func (r *RedisTimeline) Append(ctx context.Context, sessionID string, t guard.Transition) error {
	member, err := json.Marshal(t)
	if err != nil {
		return err
	}

	k := key(sessionID)
	if err := r.client.ZAdd(ctx, k, redis.Z{Score: float64(t.Tick), Member: string(member)}).Err(); err != nil {
		return err
	}

	// Set expiration only if it's not already set
	ttl, err := r.client.TTL(ctx, k).Result()
	if err == nil && ttl == -1 {
		_ = r.client.Expire(ctx, k, r.ttl).Err()
	}
	return nil
}

// Range returns every transition of the session ordered by tick.
func (r *RedisTimeline) Range(ctx context.Context, sessionID string) ([]guard.Transition, error) {
	members, err := r.client.ZRange(ctx, key(sessionID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	out := make([]guard.Transition, 0, len(members))
	for _, m := range members {
		var t guard.Transition
		if err := json.Unmarshal([]byte(m), &t); err != nil {
			return nil, fmt.Errorf("decoding transition: %w", err)
		}
		out = append(out, t)
	}
	return out, nil
}

// Drop deletes the session's timeline.
func (r *RedisTimeline) Drop(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, key(sessionID)).Err()
}
