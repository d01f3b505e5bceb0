package cachepolicy

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestClient(t *testing.T) (*Client, *memEngine, *recordingHooks, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	eng := newMemEngine(clock)
	hooks := &recordingHooks{}
	cl, err := NewClient(eng, ClientOptions{Hooks: hooks, Clock: clock})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return cl, eng, hooks, clock
}

func TestNewClientRequiresEngine(t *testing.T) {
	if _, err := NewClient(nil, ClientOptions{}); err == nil {
		t.Fatalf("expected error for nil engine")
	}
}

func TestClientGetDisconnected(t *testing.T) {
	ctx := context.Background()
	cl, eng, hooks, _ := newTestClient(t)
	_ = eng.Stop(ctx)

	if _, err := cl.Get(ctx, Key{Segment: "s", ID: "1"}); !errors.Is(err, ErrDisconnected) {
		t.Fatalf("Get err = %v, want ErrDisconnected", err)
	}
	sig := hooks.signals()
	if len(sig) != 1 || sig[0].kind != "get" {
		t.Fatalf("expected a single get signal, got %+v", sig)
	}
	if err := cl.Set(ctx, Key{Segment: "s", ID: "1"}, []byte("x"), time.Minute); !errors.Is(err, ErrDisconnected) {
		t.Fatalf("Set err = %v, want ErrDisconnected", err)
	}
	if err := cl.Drop(ctx, Key{Segment: "s", ID: "1"}); !errors.Is(err, ErrDisconnected) {
		t.Fatalf("Drop err = %v, want ErrDisconnected", err)
	}
	if cl.IsReady() {
		t.Fatalf("IsReady should follow the engine")
	}
}

func TestClientGetZeroKey(t *testing.T) {
	ctx := context.Background()
	cl, eng, hooks, _ := newTestClient(t)

	view, err := cl.Get(ctx, Key{})
	if err != nil || view != nil {
		t.Fatalf("Get(zero) = %v, %v; want nil, nil", view, err)
	}
	if gets, _, _ := eng.counts(); gets != 0 {
		t.Fatalf("engine should not be consulted for a zero key")
	}
	if sig := hooks.signals(); len(sig) != 1 || sig[0].kind != "get" {
		t.Fatalf("expected only the get signal, got %+v", sig)
	}
}

func TestClientGetBadKey(t *testing.T) {
	ctx := context.Background()
	cl, eng, hooks, _ := newTestClient(t)

	for _, k := range []Key{{Segment: "s"}, {ID: "1"}} {
		if _, err := cl.Get(ctx, k); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("Get(%+v) err = %v, want ErrInvalidKey", k, err)
		}
	}
	if gets, _, _ := eng.counts(); gets != 0 {
		t.Fatalf("engine should not be consulted for a bad key")
	}
	sig := hooks.signals()
	if len(sig) != 4 || sig[1].kind != "miss" || sig[1].reason != MissBadKey {
		t.Fatalf("expected get+miss(bad key) pairs, got %+v", sig)
	}
}

func TestClientGetNotFound(t *testing.T) {
	ctx := context.Background()
	cl, eng, hooks, clock := newTestClient(t)
	k := Key{Segment: "s", ID: "1"}

	if view, err := cl.Get(ctx, k); err != nil || view != nil {
		t.Fatalf("Get miss = %v, %v", view, err)
	}
	// a record without an item counts as absent
	eng.put(k, nil, clock.Now(), time.Minute)
	if view, err := cl.Get(ctx, k); err != nil || view != nil {
		t.Fatalf("Get nil item = %v, %v", view, err)
	}

	sig := hooks.signals()
	if len(sig) != 4 {
		t.Fatalf("expected 4 signals, got %+v", sig)
	}
	for _, s := range []signal{sig[1], sig[3]} {
		if s.kind != "miss" || s.reason != MissNotFound || s.rec != nil {
			t.Fatalf("expected miss(not found), got %+v", s)
		}
	}
}

func TestClientGetExpiredIsLazy(t *testing.T) {
	ctx := context.Background()
	cl, eng, hooks, clock := newTestClient(t)
	k := Key{Segment: "s", ID: "1"}

	eng.put(k, []byte("v"), clock.Now(), time.Minute)
	clock.Advance(time.Minute)

	if view, err := cl.Get(ctx, k); err != nil || view != nil {
		t.Fatalf("Get expired = %v, %v; want miss", view, err)
	}
	sig := hooks.signals()
	if last := sig[len(sig)-1]; last.kind != "miss" || last.reason != MissExpired || last.rec == nil {
		t.Fatalf("expected miss(expired) with record, got %+v", last)
	}
	if _, ok := eng.record(k); !ok {
		t.Fatalf("expired record must not be deleted by Get")
	}
	if _, _, drops := eng.counts(); drops != 0 {
		t.Fatalf("Get must not drop, drops=%d", drops)
	}
}

func TestClientGetHitRemainingTTL(t *testing.T) {
	ctx := context.Background()
	cl, eng, hooks, clock := newTestClient(t)
	k := Key{Segment: "s", ID: "1"}

	stored := clock.Now()
	eng.put(k, []byte("v"), stored, time.Minute)
	clock.Advance(10 * time.Second)

	view, err := cl.Get(ctx, k)
	if err != nil || view == nil {
		t.Fatalf("Get hit = %v, %v", view, err)
	}
	if string(view.Item) != "v" || !view.Stored.Equal(stored) || view.TTL != 50*time.Second {
		t.Fatalf("unexpected view %+v", view)
	}
	if view.IsStale {
		t.Fatalf("client never marks staleness")
	}
	sig := hooks.signals()
	if last := sig[len(sig)-1]; last.kind != "hit" || last.view.TTL != 50*time.Second {
		t.Fatalf("expected hit signal with remaining ttl, got %+v", last)
	}
}

func TestClientGetPropagatesEngineError(t *testing.T) {
	ctx := context.Background()
	cl, eng, _, _ := newTestClient(t)
	boom := errors.New("connection reset")
	eng.getErr = boom

	if _, err := cl.Get(ctx, Key{Segment: "s", ID: "1"}); err != boom {
		t.Fatalf("Get err = %v, want the engine error unchanged", err)
	}
}

func TestClientSet(t *testing.T) {
	ctx := context.Background()
	cl, eng, _, _ := newTestClient(t)
	k := Key{Segment: "s", ID: "1"}

	for _, ttl := range []time.Duration{0, -time.Second} {
		if err := cl.Set(ctx, k, []byte("v"), ttl); err != nil {
			t.Fatalf("Set(ttl=%v) err = %v, want nil", ttl, err)
		}
	}
	if _, sets, _ := eng.counts(); sets != 0 {
		t.Fatalf("non-positive ttl must not reach the engine, sets=%d", sets)
	}

	if err := cl.Set(ctx, Key{}, []byte("v"), time.Second); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("Set(zero key) err = %v, want ErrInvalidKey", err)
	}
	if err := cl.Set(ctx, Key{Segment: "s"}, []byte("v"), time.Second); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("Set(no id) err = %v, want ErrInvalidKey", err)
	}

	if err := cl.Set(ctx, k, []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	rec, ok := eng.record(k)
	if !ok || string(rec.Item) != "v" || rec.TTL != time.Minute {
		t.Fatalf("unexpected stored record %+v (ok=%v)", rec, ok)
	}
}

func TestClientDropAlwaysForwards(t *testing.T) {
	ctx := context.Background()
	cl, eng, _, clock := newTestClient(t)
	k := Key{Segment: "s", ID: "1"}

	// absent and expired records are dropped all the same
	if err := cl.Drop(ctx, k); err != nil {
		t.Fatalf("Drop absent: %v", err)
	}
	eng.put(k, []byte("v"), clock.Now().Add(-time.Hour), time.Minute)
	if err := cl.Drop(ctx, k); err != nil {
		t.Fatalf("Drop expired: %v", err)
	}
	if _, _, drops := eng.counts(); drops != 2 {
		t.Fatalf("drops = %d, want 2", drops)
	}
	if _, ok := eng.record(k); ok {
		t.Fatalf("record should be gone")
	}
	if err := cl.Drop(ctx, Key{ID: "1"}); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("Drop(bad key) err = %v", err)
	}
}

func TestClientDelegates(t *testing.T) {
	ctx := context.Background()
	cl, _, _, _ := newTestClient(t)

	if err := cl.ValidateSegmentName(""); err == nil {
		t.Fatalf("expected engine validation error")
	}
	if err := cl.ValidateSegmentName("users"); err != nil {
		t.Fatalf("ValidateSegmentName: %v", err)
	}
	if err := cl.Stop(ctx); err != nil || cl.IsReady() {
		t.Fatalf("Stop: err=%v ready=%v", err, cl.IsReady())
	}
	if err := cl.Start(ctx); err != nil || !cl.IsReady() {
		t.Fatalf("Start: err=%v ready=%v", err, cl.IsReady())
	}
}
