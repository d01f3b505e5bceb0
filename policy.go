package cachepolicy

import (
	"context"
	"errors"
	"fmt"
	"time"

	c "github.com/unkn0wn-root/cachepolicy/codec"
)

// PolicyOptions configure a Policy. With a nil Client the policy runs in
// no-cache mode: every GetOrGenerate calls the generator and nothing is stored.
type PolicyOptions[V any] struct {
	Rule    RuleOptions
	Client  *Client
	Segment string     // required with Client
	Codec   c.Codec[V] // required with Client

	Logger Logger // if nil, NopLogger is used
	Clock  Clock  // if nil, the Client's clock (or SystemClock without one)
}

// Policy applies one Rule to one segment of a Client.
// Safe for concurrent use; it holds no mutable state of its own.
type Policy[V any] struct {
	rule    Rule
	client  *Client
	segment string
	codec   c.Codec[V]
	log     Logger
	clock   Clock
}

func NewPolicy[V any](opts PolicyOptions[V]) (*Policy[V], error) {
	rule, err := Compile(opts.Rule, opts.Client != nil)
	if err != nil {
		return nil, err
	}

	defClock := SystemClock
	if opts.Client != nil {
		// staleness and remaining ttl must read the same clock
		defClock = opts.Client.clock
	}
	p := &Policy[V]{
		rule:  rule,
		log:   coalesce[Logger](opts.Logger, NopLogger{}),
		clock: coalesce[Clock](opts.Clock, defClock),
	}
	if opts.Client == nil {
		return p, nil
	}

	if opts.Codec == nil {
		return nil, errors.New("cachepolicy: codec is required with a client")
	}
	if err := opts.Client.ValidateSegmentName(opts.Segment); err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidSegment, opts.Segment, err)
	}
	p.client = opts.Client
	p.segment = opts.Segment
	p.codec = opts.Codec
	return p, nil
}

func (p *Policy[V]) Rule() Rule { return p.rule }

// TTL is the rule's remaining lifetime for a record created at created
// (zero => now).
func (p *Policy[V]) TTL(created time.Time) time.Duration {
	return p.rule.TTL(created, p.clock.Now())
}

func (p *Policy[V]) key(id string) Key { return Key{Segment: p.segment, ID: id} }

// Get looks id up and marks the view stale when the rule says so.
// No-cache policies always miss.
func (p *Policy[V]) Get(ctx context.Context, id string) (*CachedView[V], error) {
	if p.client == nil {
		return nil, nil
	}
	raw, err := p.client.Get(ctx, p.key(id))
	if err != nil || raw == nil {
		return nil, err
	}
	v, err := p.codec.Decode(raw.Item)
	if err != nil {
		// undecodable bytes would keep failing; clear them
		p.log.Warn("cached value decode failed; dropping", Fields{"segment": p.segment, "id": id, "err": err})
		_ = p.client.Drop(ctx, p.key(id))
		return nil, fmt.Errorf("cachepolicy: decode %s: %w", p.key(id), err)
	}
	view := &CachedView[V]{
		Item:   v,
		Stored: raw.Stored,
		TTL:    raw.TTL,
	}
	if p.rule.StaleIn > 0 {
		view.IsStale = p.clock.Now().Sub(raw.Stored) >= p.rule.StaleIn
	}
	return view, nil
}

// Set stores value. A zero ttl uses the rule's TTL.
func (p *Policy[V]) Set(ctx context.Context, id string, value V, ttl time.Duration) error {
	if p.client == nil {
		return nil
	}
	if ttl == 0 {
		ttl = p.TTL(time.Time{})
	}
	b, err := p.codec.Encode(value)
	if err != nil {
		return fmt.Errorf("cachepolicy: encode %s: %w", p.key(id), err)
	}
	return p.client.Set(ctx, p.key(id), b, ttl)
}

func (p *Policy[V]) Drop(ctx context.Context, id string) error {
	if p.client == nil {
		return nil
	}
	return p.client.Drop(ctx, p.key(id))
}

// GetOrGenerate returns a fresh cached value when there is one. Otherwise it
// runs gen and races it against the rule's timers:
//   - stale hit: after StaleTimeout the stale value is returned, unless the
//     stale record would expire within that window;
//   - true miss with GenerateTimeout: after that long ErrServerTimeout is returned.
//
// Whichever finishes first is returned. gen always runs to completion and its
// result is written back (or the key dropped on error / NoCache) even if a
// timer won. Cancelling ctx only stops waiting.
func (p *Policy[V]) GetOrGenerate(ctx context.Context, id string, gen Generator[V]) (Result[V], error) {
	if p.client == nil {
		return p.race(ctx, id, nil, nil, gen)
	}

	start := time.Now()
	cached, err := p.Get(ctx, id)
	elapsed := time.Since(start)

	switch {
	case err != nil:
		p.log.Debug("lookup failed; generating", Fields{"segment": p.segment, "id": id, "err": err})
		return p.race(ctx, id, nil, &Report{Elapsed: elapsed, Err: err}, gen)
	case cached == nil:
		return p.race(ctx, id, nil, &Report{Elapsed: elapsed}, gen)
	}

	report := &Report{
		Elapsed: elapsed,
		Stored:  cached.Stored,
		TTL:     cached.TTL,
		IsStale: cached.IsStale,
	}
	if !cached.IsStale {
		return Result[V]{Value: cached.Item, Cached: cached, Report: report}, nil
	}
	return p.race(ctx, id, cached, report, gen)
}

type outcome[V any] struct {
	res Result[V]
	err error
}

func (p *Policy[V]) race(ctx context.Context, id string, cached *CachedView[V], report *Report, gen Generator[V]) (Result[V], error) {
	slot := newOnce[outcome[V]]()

	var timer *time.Timer
	switch {
	case cached != nil:
		// serve stale only if it outlives the grace window
		if cached.TTL-p.rule.StaleTimeout > 0 {
			stale := *cached
			stale.TTL -= p.rule.StaleTimeout
			timer = time.AfterFunc(p.rule.StaleTimeout, func() {
				slot.resolve(outcome[V]{res: Result[V]{Value: stale.Item, Cached: &stale, Report: report}})
			})
		}
	case p.rule.GenerateTimeout > 0:
		timer = time.AfterFunc(p.rule.GenerateTimeout, func() {
			slot.resolve(outcome[V]{res: Result[V]{Report: report}, err: ErrServerTimeout})
		})
	}

	go p.generate(context.WithoutCancel(ctx), id, report, gen, slot)

	select {
	case o := <-slot.done():
		if timer != nil {
			timer.Stop()
		}
		return o.res, o.err
	case <-ctx.Done():
		var zero Result[V]
		zero.Report = report
		return zero, ctx.Err()
	}
}

func (p *Policy[V]) generate(ctx context.Context, id string, report *Report, gen Generator[V], slot *once[outcome[V]]) {
	value, ttl, err := p.call(ctx, id, gen)

	if err != nil || ttl < 0 {
		if derr := p.Drop(ctx, id); derr != nil {
			p.log.Warn("drop after generate failed", Fields{"segment": p.segment, "id": id, "err": derr})
		}
	} else if serr := p.Set(ctx, id, value, ttl); serr != nil {
		p.log.Warn("write-back failed", Fields{"segment": p.segment, "id": id, "err": serr})
	}

	// no-op when a timer already answered
	slot.resolve(outcome[V]{res: Result[V]{Value: value, Report: report}, err: err})
}

func (p *Policy[V]) call(ctx context.Context, id string, gen Generator[V]) (value V, ttl time.Duration, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("generator panicked", Fields{"segment": p.segment, "id": id, "panic": r})
			var zero V
			value, ttl, err = zero, 0, fmt.Errorf("%w: %v", ErrGeneratePanic, r)
		}
	}()
	return gen(ctx, id)
}
