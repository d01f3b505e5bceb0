package cachepolicy

import (
	"context"
	"errors"
	"sync"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// memEngine is an Engine keeping records in a map. Expiry is lazy: records
// are never removed on read, matching what the Client must cope with.
type memEngine struct {
	mu     sync.Mutex
	m      map[Key]StoredRecord
	ready  bool
	clock  Clock
	getErr error

	gets, sets, drops int
}

var _ Engine = (*memEngine)(nil)

func newMemEngine(clock Clock) *memEngine {
	return &memEngine{m: make(map[Key]StoredRecord), ready: true, clock: clock}
}

func (e *memEngine) Start(context.Context) error {
	e.mu.Lock()
	e.ready = true
	e.mu.Unlock()
	return nil
}

func (e *memEngine) Stop(context.Context) error {
	e.mu.Lock()
	e.ready = false
	e.mu.Unlock()
	return nil
}

func (e *memEngine) IsReady() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready
}

func (e *memEngine) ValidateSegmentName(name string) error {
	if name == "" {
		return errors.New("empty string")
	}
	return nil
}

func (e *memEngine) Get(_ context.Context, key Key) (*StoredRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gets++
	if e.getErr != nil {
		return nil, e.getErr
	}
	rec, ok := e.m[key]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (e *memEngine) Set(_ context.Context, key Key, value []byte, ttl time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sets++
	e.m[key] = StoredRecord{Item: value, Stored: e.clock.Now(), TTL: ttl}
	return nil
}

func (e *memEngine) Drop(_ context.Context, key Key) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drops++
	delete(e.m, key)
	return nil
}

// put stores a record with an explicit write time.
func (e *memEngine) put(key Key, item []byte, stored time.Time, ttl time.Duration) {
	e.mu.Lock()
	e.m[key] = StoredRecord{Item: item, Stored: stored, TTL: ttl}
	e.mu.Unlock()
}

func (e *memEngine) record(key Key) (StoredRecord, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec, ok := e.m[key]
	return rec, ok
}

func (e *memEngine) counts() (gets, sets, drops int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gets, e.sets, e.drops
}

type signal struct {
	kind   string // get, hit, miss
	key    Key
	reason MissReason
	rec    *StoredRecord
	view   CachedView[[]byte]
}

type recordingHooks struct {
	mu  sync.Mutex
	got []signal
}

func (h *recordingHooks) add(s signal) {
	h.mu.Lock()
	h.got = append(h.got, s)
	h.mu.Unlock()
}

func (h *recordingHooks) Get(k Key) { h.add(signal{kind: "get", key: k}) }
func (h *recordingHooks) Hit(k Key, v CachedView[[]byte]) {
	h.add(signal{kind: "hit", key: k, view: v})
}
func (h *recordingHooks) Miss(k Key, r MissReason, rec *StoredRecord) {
	h.add(signal{kind: "miss", key: k, reason: r, rec: rec})
}

func (h *recordingHooks) signals() []signal {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]signal(nil), h.got...)
}
