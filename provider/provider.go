// Package provider defines the byte stores that back engine.Store.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly the
// same []byte that was previously passed to Set for a key (no prepended/appended
// metadata, no re-encoding, no mutation). engine.Store frames every value with
// its own record header (stored time + original TTL) and relies on that.
//
// TTLs passed to Set are a storage hint only. Freshness is decided from the
// record header at read time, so a store that keeps entries longer (BigCache's
// global life window) is still correct, just less memory-efficient.
package provider

import (
	"context"
	"time"
)

// Provider is a minimal byte store with TTLs.
// Must be safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL. May ignore cost if unsupported.
	// Returns ok=false when the store rejected the write under pressure.
	Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (ok bool, err error)

	// Del removes a key (best-effort).
	Del(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}

// Pinger is implemented by remote providers. engine.Store pings on Start and
// only reports ready once the ping succeeded.
type Pinger interface {
	Ping(ctx context.Context) error
}
