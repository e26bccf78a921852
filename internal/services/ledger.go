package services

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Ledger remembers which notifications were already emitted so that a
// request is announced at most once per user, even across restarts or
// concurrent agents when backed by redis.
type Ledger interface {
	// MarkSeen records tag for userID and reports whether this was the
	// first time it was seen.
	MarkSeen(ctx context.Context, userID, tag string) (bool, error)
}

const DefaultLedgerCapacity = 512

// MemoryLedger is a bounded in-process ledger. The least recently seen tag is
// evicted once capacity is reached.
type MemoryLedger struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List
}

func NewMemoryLedger(capacity int) *MemoryLedger {
	if capacity <= 0 {
		capacity = DefaultLedgerCapacity
	}
	return &MemoryLedger{
		capacity: capacity,
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

func (l *MemoryLedger) MarkSeen(_ context.Context, userID, tag string) (bool, error) {
	key := ledgerKey(userID, tag)

	l.mu.Lock()
	defer l.mu.Unlock()

	if elem, ok := l.items[key]; ok {
		l.order.MoveToFront(elem)
		return false, nil
	}
	if l.order.Len() >= l.capacity {
		if oldest := l.order.Back(); oldest != nil {
			l.order.Remove(oldest)
			delete(l.items, oldest.Value.(string))
		}
	}
	l.items[key] = l.order.PushFront(key)
	return true, nil
}

const DefaultLedgerTTL = 24 * time.Hour

// RedisLedger shares the seen set between agents with SET NX and a TTL.
type RedisLedger struct {
	redis  RedisClient
	ttl    time.Duration
	prefix string
}

func NewRedisLedger(client RedisClient, ttl time.Duration) *RedisLedger {
	if ttl <= 0 {
		ttl = DefaultLedgerTTL
	}
	return &RedisLedger{redis: client, ttl: ttl, prefix: "notify:seen:"}
}

func (l *RedisLedger) MarkSeen(ctx context.Context, userID, tag string) (bool, error) {
	return l.redis.SetNX(ctx, l.prefix+ledgerKey(userID, tag), "1", l.ttl)
}

func ledgerKey(userID, tag string) string {
	return userID + ":" + tag
}
