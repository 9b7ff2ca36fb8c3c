package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newLimiterTest(t *testing.T, cfg Config) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return New(rdb, cfg), mr
}

func TestLimiterBlocksAfterMaxAttempts(t *testing.T) {
	l, _ := newLimiterTest(t, Config{MaxAttempts: 2, Window: time.Minute})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := l.Check(ctx, "a@b.c"); err != nil {
			t.Fatalf("attempt %d: unexpected %v", i, err)
		}
		if err := l.Increment(ctx, "a@b.c"); err != nil {
			t.Fatalf("increment %d: %v", i, err)
		}
	}
	if err := l.Check(ctx, "a@b.c"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if err := l.Check(ctx, "other@b.c"); err != nil {
		t.Fatalf("other identifiers must not be affected, got %v", err)
	}
}

func TestLimiterWindowExpires(t *testing.T) {
	l, mr := newLimiterTest(t, Config{MaxAttempts: 1, Window: time.Minute})
	ctx := context.Background()

	if err := l.Increment(ctx, "a@b.c"); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if ttl := mr.TTL("dl:a@b.c"); ttl != time.Minute {
		t.Fatalf("expected 1m TTL on first hit, got %v", ttl)
	}
	mr.FastForward(61 * time.Second)

	if err := l.Check(ctx, "a@b.c"); err != nil {
		t.Fatalf("expected window to reset, got %v", err)
	}
}

func TestLimiterReset(t *testing.T) {
	l, _ := newLimiterTest(t, Config{Prefix: "x"})
	ctx := context.Background()

	_ = l.Increment(ctx, "id")
	_ = l.Increment(ctx, "id")
	if n, err := l.Attempts(ctx, "id"); err != nil || n != 2 {
		t.Fatalf("expected 2 attempts, got %d (%v)", n, err)
	}
	if err := l.Reset(ctx, "id"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if n, _ := l.Attempts(ctx, "id"); n != 0 {
		t.Fatalf("expected 0 after reset, got %d", n)
	}
}

func TestLimiterRedisDown(t *testing.T) {
	l, mr := newLimiterTest(t, Config{})
	mr.Close()

	if err := l.Check(context.Background(), "id"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}
