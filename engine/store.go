// Package engine turns a provider.Provider byte store into a
// cachepolicy.Engine. Keys are laid out as <partition>:<segment>:<id>; values
// are wrapped in a record header carrying the write time and original TTL.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	cp "github.com/unkn0wn-root/cachepolicy"
	"github.com/unkn0wn-root/cachepolicy/internal/keys"
	"github.com/unkn0wn-root/cachepolicy/internal/wire"
	pr "github.com/unkn0wn-root/cachepolicy/provider"
)

const DefaultPartition = "cachepolicy"

// CostFunc weighs one framed record for cost-aware providers (ristretto).
type CostFunc func(storageKey string, raw []byte) int64

// ByteCost weighs a record by its framed size, making MaxCost a byte budget.
func ByteCost(_ string, raw []byte) int64 { return int64(len(raw)) }

// Config for a Store. Only Provider is required.
type Config struct {
	Provider  pr.Provider
	Partition string    // "" => DefaultPartition; must match [A-Za-z0-9_-]+
	Logger    cp.Logger // if nil, NopLogger is used
	Clock     cp.Clock  // if nil, SystemClock is used
	Cost      CostFunc  // default 1 per entry
}

// Store is a cachepolicy.Engine over a byte provider.
// It is not ready until Start succeeds and stops being ready after Stop.
type Store struct {
	p         pr.Provider
	partition string
	log       cp.Logger
	clock     cp.Clock
	cost      CostFunc

	ready   atomic.Bool
	stopped atomic.Bool
}

var _ cp.Engine = (*Store)(nil)

func New(cfg Config) (*Store, error) {
	if cfg.Provider == nil {
		return nil, errors.New("engine: provider is required")
	}
	s := &Store{
		p:         cfg.Provider,
		partition: cfg.Partition,
		log:       cfg.Logger,
		clock:     cfg.Clock,
		cost:      cfg.Cost,
	}
	if s.partition == "" {
		s.partition = DefaultPartition
	}
	if err := keys.ValidatePartition(s.partition); err != nil {
		return nil, fmt.Errorf("engine: invalid partition %q: %w", s.partition, err)
	}
	if s.log == nil {
		s.log = cp.NopLogger{}
	}
	if s.clock == nil {
		s.clock = cp.SystemClock
	}
	if s.cost == nil {
		s.cost = func(string, []byte) int64 { return 1 }
	}
	return s, nil
}

// Start pings the provider when it supports it and marks the store ready.
// Calling Start on a ready store is a no-op. A stopped store can't restart
// since the provider has been closed.
func (s *Store) Start(ctx context.Context) error {
	if s.stopped.Load() {
		return errors.New("engine: store is stopped")
	}
	if s.ready.Load() {
		return nil
	}
	if pg, ok := s.p.(pr.Pinger); ok {
		if err := pg.Ping(ctx); err != nil {
			return fmt.Errorf("engine: ping: %w", err)
		}
	}
	s.ready.Store(true)
	s.log.Info("engine started", cp.Fields{"partition": s.partition})
	return nil
}

// Stop marks the store not ready and closes the provider. Safe to call
// multiple times.
func (s *Store) Stop(ctx context.Context) error {
	if !s.stopped.CompareAndSwap(false, true) {
		return nil
	}
	s.ready.Store(false)
	return s.p.Close(ctx)
}

func (s *Store) IsReady() bool { return s.ready.Load() }

func (s *Store) ValidateSegmentName(name string) error { return keys.ValidateSegment(name) }

func (s *Store) Get(ctx context.Context, key cp.Key) (*cp.StoredRecord, error) {
	k := s.storageKey(key)
	raw, ok, err := s.p.Get(ctx, k)
	if err != nil || !ok {
		return nil, err
	}
	stored, ttl, payload, err := wire.DecodeRecord(raw)
	if err != nil {
		_ = s.p.Del(ctx, k) // self-heal corrupt
		s.log.Warn("corrupt record dropped", cp.Fields{"key": k})
		return nil, nil
	}
	// in-process providers hand out their own memory; callers get a copy
	return &cp.StoredRecord{Item: bytes.Clone(payload), Stored: stored, TTL: ttl}, nil
}

func (s *Store) Set(ctx context.Context, key cp.Key, value []byte, ttl time.Duration) error {
	k := s.storageKey(key)
	raw := wire.EncodeRecord(s.clock.Now(), ttl, value)
	ok, err := s.p.Set(ctx, k, raw, s.cost(k, raw), ttl)
	if err != nil {
		return err
	}
	if !ok {
		s.log.Debug("set rejected by provider (pressure)", cp.Fields{"key": k})
	}
	return nil
}

func (s *Store) Drop(ctx context.Context, key cp.Key) error {
	return s.p.Del(ctx, s.storageKey(key))
}

func (s *Store) storageKey(key cp.Key) string {
	return keys.Storage(s.partition, key.Segment, key.ID)
}
