package events

import (
	"sync"
	"time"
)

type Kind string

const (
	FriendRequestSent     Kind = "friend_request_sent"
	FriendRequestReceived Kind = "friend_request_received"
	FriendsChanged        Kind = "friends_changed"
	PresenceUpdated       Kind = "presence_updated"
	WaterUpdated          Kind = "water_updated"
)

// Event is the payload every subscriber receives. UserID is the user the event
// is about; CounterpartID is the other side of a social edge when there is one.
type Event struct {
	Kind          Kind
	UserID        string
	CounterpartID string
	RequestID     string
	At            time.Time
}

type Handler func(Event)

// Publisher is the narrow side handed to emitters.
type Publisher interface {
	Publish(Event)
}

type subscription struct {
	id      uint64
	kind    Kind // empty matches every kind
	handler Handler
}

// Bus is an in-process publish/subscribe channel. Delivery is synchronous and
// in subscription order.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscription
	now    func() time.Time
}

func NewBus() *Bus {
	return &Bus{now: time.Now}
}

// Subscribe registers handler for one kind and returns its unsubscribe func.
func (b *Bus) Subscribe(kind Kind, handler Handler) func() {
	return b.add(kind, handler)
}

func (b *Bus) SubscribeAll(handler Handler) func() {
	return b.add("", handler)
}

func (b *Bus) add(kind Kind, handler Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, kind: kind, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subs {
				if s.id == id {
					b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = b.now()
	}

	b.mu.RLock()
	matched := make([]Handler, 0, len(b.subs))
	for _, s := range b.subs {
		if s.kind == "" || s.kind == e.Kind {
			matched = append(matched, s.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range matched {
		h(e)
	}
}

// Subscribers reports how many handlers are registered.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
