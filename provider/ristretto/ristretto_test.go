package ristretto

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestConfigValidation(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error for zero config")
	}
}

func TestSyncWritesVisible(t *testing.T) {
	ctx := context.Background()
	p, err := New(Config{NumCounters: 1000, MaxCost: 100, BufferItems: 64, Metrics: true, SyncWrites: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close(ctx)

	ok, err := p.Set(ctx, "k", []byte("v"), 1, time.Minute)
	if err != nil || !ok {
		t.Fatalf("Set = %v, %v", ok, err)
	}
	b, hit, err := p.Get(ctx, "k")
	if err != nil || !hit || !bytes.Equal(b, []byte("v")) {
		t.Fatalf("Get = %q, %v, %v", b, hit, err)
	}
	if err := p.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, hit, _ := p.Get(ctx, "k"); hit {
		t.Fatalf("key still present after Del")
	}
	if p.Metrics() == nil {
		t.Fatalf("metrics requested but nil")
	}
}
