package cache

import (
	"context"
	"time"
)

// Store is a small JSON key/value store with per-key expiry. It holds
// short-lived OAuth state and per-user wizard state.
type Store interface {
	// Set stores v encoded as JSON. A zero ttl means no expiry.
	Set(ctx context.Context, key string, v any, ttl time.Duration) error

	// Get decodes the value at key into dest. It returns false when the key
	// is absent or expired.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Take is Get followed by Delete in one step.
	Take(ctx context.Context, key string, dest any) (bool, error)

	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error
	Close() error
}
