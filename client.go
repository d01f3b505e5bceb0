package cachepolicy

import (
	"context"
	"errors"
	"time"
)

// ClientOptions tune a Client. All fields are optional.
type ClientOptions struct {
	Logger Logger // if nil, NopLogger is used
	Hooks  Hooks  // if nil, NopHooks is used
	Clock  Clock  // if nil, SystemClock is used
}

// Client sits between policies and an Engine. It validates keys, turns
// stored records into views with remaining TTL and reports get/hit/miss.
// Expired records are not deleted here; they are simply not returned.
type Client struct {
	engine Engine
	log    Logger
	hooks  Hooks
	clock  Clock
}

func NewClient(engine Engine, opts ClientOptions) (*Client, error) {
	if engine == nil {
		return nil, errors.New("cachepolicy: engine is required")
	}
	return &Client{
		engine: engine,
		log:    coalesce[Logger](opts.Logger, NopLogger{}),
		hooks:  coalesce[Hooks](opts.Hooks, NopHooks{}),
		clock:  coalesce[Clock](opts.Clock, SystemClock),
	}, nil
}

func (c *Client) Start(ctx context.Context) error { return c.engine.Start(ctx) }

func (c *Client) Stop(ctx context.Context) error { return c.engine.Stop(ctx) }

func (c *Client) IsReady() bool { return c.engine.IsReady() }

func (c *Client) ValidateSegmentName(name string) error {
	return c.engine.ValidateSegmentName(name)
}

// Get returns (nil, nil) for a zero key, a missing record or an expired one.
// Engine errors are returned unchanged.
func (c *Client) Get(ctx context.Context, key Key) (*CachedView[[]byte], error) {
	c.hooks.Get(key)

	if !c.engine.IsReady() {
		return nil, ErrDisconnected
	}
	if key.IsZero() {
		return nil, nil
	}
	if !key.valid() {
		c.hooks.Miss(key, MissBadKey, nil)
		return nil, ErrInvalidKey
	}

	rec, err := c.engine.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.Item == nil {
		c.hooks.Miss(key, MissNotFound, nil)
		return nil, nil
	}

	ttl := rec.Stored.Add(rec.TTL).Sub(c.clock.Now())
	if ttl <= 0 {
		c.hooks.Miss(key, MissExpired, rec)
		return nil, nil
	}

	view := &CachedView[[]byte]{
		Item:   rec.Item,
		Stored: rec.Stored,
		TTL:    ttl,
	}
	c.hooks.Hit(key, *view)
	return view, nil
}

// Set stores value for ttl. A non-positive ttl means "not cacheable" and is
// a silent no-op.
func (c *Client) Set(ctx context.Context, key Key, value []byte, ttl time.Duration) error {
	if !c.engine.IsReady() {
		return ErrDisconnected
	}
	if !key.valid() {
		return ErrInvalidKey
	}
	if ttl <= 0 {
		c.log.Debug("set skipped (ttl <= 0)", Fields{"key": key.String(), "ttl": ttl})
		return nil
	}
	return c.engine.Set(ctx, key, value, ttl)
}

// Drop always reaches the engine, whatever the record's freshness.
func (c *Client) Drop(ctx context.Context, key Key) error {
	if !c.engine.IsReady() {
		return ErrDisconnected
	}
	if !key.valid() {
		return ErrInvalidKey
	}
	return c.engine.Drop(ctx, key)
}
