// Package session implements the expiring client-side session store: an
// expiring key-value layer plus a record layer that keeps the bearer token
// and the cached user snapshot in lockstep.
package session

import (
	"context"
	"time"
)

// DefaultTTL is the default lifetime of a persisted session.
const DefaultTTL = 7 * 24 * time.Hour

// Store is an expiring key-value store scoped to the local client.
//
// Contract:
//   - Set overwrites unconditionally; the value expires ttl from now.
//   - SetMany behaves like Set for every entry, atomically: either all
//     entries are written or none.
//   - Get returns (nil, nil) when the key was never set, was deleted, or
//     has expired. Expiry is enforced by the store itself, not the caller.
//   - Delete is idempotent; removing an absent key is not an error.
//   - Clear removes every key.
//
// All methods must honor context cancellation/timeouts.
type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	SetMany(ctx context.Context, entries map[string][]byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
