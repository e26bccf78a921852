package identity

import (
	"errors"
	"sync"
	"time"
)

var ErrNotSignedIn = errors.New("no signed-in user")

// Identity is the signed-in user as asserted by the identity provider.
type Identity struct {
	UID           string
	Email         string
	EmailVerified bool
	DisplayName   string
	PhotoURL      string
	IDToken       string
	ExpiresAt     time.Time
}

// Provider is the current-identity contract. Subscribe invokes fn right away
// with the current identity (nil when signed out) and again on every change.
type Provider interface {
	Current() *Identity
	Subscribe(fn func(*Identity)) (unsubscribe func())
}

// Store is an in-memory Provider fed by sign-in and sign-out calls.
type Store struct {
	mu      sync.Mutex
	current *Identity
	nextID  int
	subs    map[int]func(*Identity)
}

func NewStore() *Store {
	return &Store{subs: make(map[int]func(*Identity))}
}

func (s *Store) Current() *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.current)
}

func (s *Store) Subscribe(fn func(*Identity)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	current := clone(s.current)
	s.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// SignIn replaces the current identity. A token refresh for the same UID also
// notifies subscribers so they can pick up the new token.
func (s *Store) SignIn(id Identity) {
	s.set(&id)
}

func (s *Store) SignOut() {
	s.set(nil)
}

func (s *Store) set(id *Identity) {
	s.mu.Lock()
	if id == nil && s.current == nil {
		s.mu.Unlock()
		return
	}
	s.current = clone(id)
	fns := make([]func(*Identity), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	current := s.current
	s.mu.Unlock()

	for _, fn := range fns {
		fn(clone(current))
	}
}

func clone(id *Identity) *Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
