package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestRedisGetSetAndMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewRedis(mr.Addr(), "")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	if _, err := c.Get(ctx, "report:summary:x"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss, got %v", err)
	}
	if err := c.Set(ctx, "report:summary:x", `{"totalCaregivers":2}`, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := c.Get(ctx, "report:summary:x")
	if err != nil || got != `{"totalCaregivers":2}` {
		t.Fatalf("expected cached value, got %q %v", got, err)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := c.Get(ctx, "report:summary:x"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss after expiry, got %v", err)
	}
}

func TestNewRedisFailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := NewRedis(addr, ""); err == nil {
		t.Fatalf("expected connection error")
	}
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	if err := c.Set(context.Background(), "k", "v", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := c.Get(context.Background(), "k"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss, got %v", err)
	}
}
