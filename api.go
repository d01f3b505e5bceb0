package cachepolicy

import (
	"context"
	"time"
)

// Key addresses one record. Identity is the (Segment, ID) pair as given;
// no normalization happens. The zero Key means "nothing to look up".
type Key struct {
	Segment string
	ID      string
}

func (k Key) IsZero() bool { return k.Segment == "" && k.ID == "" }

func (k Key) valid() bool { return k.Segment != "" && k.ID != "" }

func (k Key) String() string { return k.Segment + ":" + k.ID }

// StoredRecord is what an Engine keeps for a key. TTL is the original
// lifetime given to Set, not the remaining one.
type StoredRecord struct {
	Item   []byte
	Stored time.Time
	TTL    time.Duration
}

// CachedView is a record as seen at read time. TTL is the remaining lifetime
// (always > 0 for a returned view).
type CachedView[V any] struct {
	Item    V
	Stored  time.Time
	TTL     time.Duration
	IsStale bool
}

// Report is diagnostic metadata attached to every GetOrGenerate result.
// Err holds a lookup failure; it never becomes the returned error by itself.
type Report struct {
	Elapsed time.Duration
	Stored  time.Time
	TTL     time.Duration
	IsStale bool
	Err     error
}

// Result is what GetOrGenerate resolves with. Cached is set only when the
// value came from the cache (fresh hit or stale serve).
type Result[V any] struct {
	Value  V
	Cached *CachedView[V]
	Report *Report
}

// Generator produces a fresh value for id. A zero ttl means "use the rule's
// TTL", not "do not cache"; return NoCache (any negative ttl) to skip caching
// and drop what is there.
type Generator[V any] func(ctx context.Context, id string) (value V, ttl time.Duration, err error)

// NoCache can be returned as ttl from a Generator to skip caching.
const NoCache time.Duration = -1

// Engine is the storage contract the Client depends on. Implementations must
// be safe for concurrent use. Expiry may be lazy: Get can return a record
// whose Stored+TTL is in the past; the Client treats it as a miss.
type Engine interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	IsReady() bool
	ValidateSegmentName(name string) error

	// Get returns (nil, nil) on miss.
	Get(ctx context.Context, key Key) (*StoredRecord, error)
	Set(ctx context.Context, key Key, value []byte, ttl time.Duration) error
	Drop(ctx context.Context, key Key) error
}
