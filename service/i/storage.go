package i

import (
	"context"
	"time"

	"github.com/beka-birhanu/vinom-warden/game/guard"
)

// WorldCache stores composed worlds keyed by scenario fingerprint.
type WorldCache interface {
	// Get returns the cached bytes and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key for ttl.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Lock takes a lock on key and returns the function that releases it.
	Lock(ctx context.Context, key string) (func() error, error)
}

// Timeline records squad transitions per session in tick order.
type Timeline interface {
	Append(ctx context.Context, sessionID string, t guard.Transition) error
	Range(ctx context.Context, sessionID string) ([]guard.Transition, error)
	Drop(ctx context.Context, sessionID string) error
}
