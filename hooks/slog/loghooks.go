// Package sloghooks logs cachepolicy signals through log/slog.
// Gets and hits are high volume and sampled; misses are logged at debug,
// except expired misses which also carry the record's age.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/cachepolicy"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	GetEvery  uint64
	HitEvery  uint64
	MissEvery uint64
	// Optional id redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
	// Now is used for the age of expired records. Defaults to time.Now.
	Now func() time.Time
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	getCtr  atomic.Uint64
	hitCtr  atomic.Uint64
	missCtr atomic.Uint64
}

var _ cachepolicy.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(id string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(id)
	}
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Get(key cachepolicy.Key) {
	if h.l == nil || !sample(h.opts.GetEvery, &h.getCtr) {
		return
	}
	h.l.Debug("cachepolicy.get",
		"segment", key.Segment,
		"id", h.redact(key.ID))
}

func (h *Hooks) Hit(key cachepolicy.Key, view cachepolicy.CachedView[[]byte]) {
	if h.l == nil || !sample(h.opts.HitEvery, &h.hitCtr) {
		return
	}
	h.l.Debug("cachepolicy.hit",
		"segment", key.Segment,
		"id", h.redact(key.ID),
		"ttl", view.TTL,
		"bytes", len(view.Item))
}

func (h *Hooks) Miss(key cachepolicy.Key, reason cachepolicy.MissReason, rec *cachepolicy.StoredRecord) {
	if h.l == nil || !sample(h.opts.MissEvery, &h.missCtr) {
		return
	}
	if reason == cachepolicy.MissBadKey {
		h.l.Warn("cachepolicy.miss",
			"reason", string(reason),
			"segment", key.Segment)
		return
	}
	attrs := []any{
		"reason", string(reason),
		"segment", key.Segment,
		"id", h.redact(key.ID),
	}
	if rec != nil {
		attrs = append(attrs, "age", h.opts.Now().Sub(rec.Stored), "ttl", rec.TTL)
	}
	h.l.Debug("cachepolicy.miss", attrs...)
}
