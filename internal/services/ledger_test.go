package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryLedger_MarkSeenOnce(t *testing.T) {
	l := NewMemoryLedger(4)
	ctx := context.Background()

	first, _ := l.MarkSeen(ctx, "u1", "friend-request-r1")
	again, _ := l.MarkSeen(ctx, "u1", "friend-request-r1")
	other, _ := l.MarkSeen(ctx, "u2", "friend-request-r1")
	if !first || again || !other {
		t.Fatalf("expected true,false,true got %v,%v,%v", first, again, other)
	}
}

func TestMemoryLedger_EvictsLeastRecentlySeen(t *testing.T) {
	l := NewMemoryLedger(2)
	ctx := context.Background()

	_, _ = l.MarkSeen(ctx, "u", "a")
	_, _ = l.MarkSeen(ctx, "u", "b")
	_, _ = l.MarkSeen(ctx, "u", "a") // touch a so b is oldest
	_, _ = l.MarkSeen(ctx, "u", "c")

	if seen, _ := l.MarkSeen(ctx, "u", "a"); seen {
		t.Fatal("expected a to be retained")
	}
	if seen, _ := l.MarkSeen(ctx, "u", "b"); !seen {
		t.Fatal("expected b to have been evicted")
	}
}

func TestMemoryLedger_DefaultCapacity(t *testing.T) {
	if l := NewMemoryLedger(0); l.capacity != DefaultLedgerCapacity {
		t.Fatalf("expected default capacity, got %d", l.capacity)
	}
}

func TestRedisLedger_UsesSetNXWithTTL(t *testing.T) {
	fake := newFakeRedis()
	l := NewRedisLedger(fake, 0)
	ctx := context.Background()

	first, err := l.MarkSeen(ctx, "u1", "friend-request-r1")
	if err != nil || !first {
		t.Fatalf("expected first mark, got %v (%v)", first, err)
	}
	again, _ := l.MarkSeen(ctx, "u1", "friend-request-r1")
	if again {
		t.Fatal("expected duplicate to be reported as seen")
	}
	if ttl := fake.keys["notify:seen:u1:friend-request-r1"]; ttl != 24*time.Hour {
		t.Fatalf("expected 24h ttl, got %v", ttl)
	}
}

func TestRedisLedger_PropagatesErrors(t *testing.T) {
	fake := newFakeRedis()
	fake.setErr = errors.New("down")
	if _, err := NewRedisLedger(fake, time.Hour).MarkSeen(context.Background(), "u", "t"); err == nil {
		t.Fatal("expected error")
	}
}
