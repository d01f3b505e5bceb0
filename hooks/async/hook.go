// Package asynchook moves hook delivery off the read path. Signals are queued
// to a fixed worker pool; when the queue is full they are dropped and counted.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{HitEvery: 100})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	client, _ := cachepolicy.NewClient(store, cachepolicy.ClientOptions{Hooks: hooks})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/cachepolicy"
)

type Hooks struct {
	inner   cachepolicy.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex // guards closed vs. send
	closed  bool
	dropped atomic.Uint64
}

var _ cachepolicy.Hooks = (*Hooks)(nil)

func New(inner cachepolicy.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued signals and stops the workers. Signals sent after
// Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped is the number of signals lost to a full queue or a closed hook.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) Get(k cachepolicy.Key) { h.try(func() { h.inner.Get(k) }) }

func (h *Hooks) Hit(k cachepolicy.Key, v cachepolicy.CachedView[[]byte]) {
	h.try(func() { h.inner.Hit(k, v) })
}

func (h *Hooks) Miss(k cachepolicy.Key, r cachepolicy.MissReason, rec *cachepolicy.StoredRecord) {
	h.try(func() { h.inner.Miss(k, r, rec) })
}
