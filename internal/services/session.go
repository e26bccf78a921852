package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kyoolapp/lifestyle-sub000/internal/events"
	"github.com/kyoolapp/lifestyle-sub000/internal/identity"
	"github.com/kyoolapp/lifestyle-sub000/internal/logging"
	"github.com/kyoolapp/lifestyle-sub000/internal/models"
)

var ErrNotAuthenticated = errors.New("not signed in")

type SessionConfig struct {
	Presence            PresenceConfig
	HeartbeatInterval   time.Duration
	InteractionThrottle time.Duration
	Ledger              Ledger
	Sinks               []Sink
}

// Session is everything that runs on behalf of one signed-in user.
type Session struct {
	UserID     string
	Social     *SocialService
	Presence   *PresenceService
	Heartbeat  *Heartbeat
	Dispatcher *NotificationDispatcher

	api    Backend
	logger *logging.Logger

	mu       sync.Mutex
	identity identity.Identity
	cancel   context.CancelFunc
	unsubs   []func()
	wg       sync.WaitGroup
}

func (s *Session) Identity() identity.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

func (s *Session) setIdentity(id identity.Identity) {
	s.mu.Lock()
	s.identity = id
	s.mu.Unlock()
}

func (s *Session) start(ctx context.Context, bus *events.Bus) {
	ctx, s.cancel = context.WithCancel(ctx)

	own := func(fn func()) events.Handler {
		return func(e events.Event) {
			if e.UserID == s.UserID {
				fn()
			}
		}
	}
	if bus != nil {
		s.unsubs = append(s.unsubs,
			bus.Subscribe(events.FriendRequestSent, own(s.Presence.RefreshRequests)),
			bus.Subscribe(events.FriendsChanged, own(s.Presence.RefreshFriends)),
			bus.Subscribe(events.WaterUpdated, own(s.Presence.RefreshWater)),
		)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.bootstrap(ctx)
	}()

	s.Presence.Start(ctx)
	s.Heartbeat.Start(ctx)
}

// bootstrap registers the user with the backend and loads the outgoing list,
// which no poller covers.
func (s *Session) bootstrap(ctx context.Context) {
	id := s.Identity()
	_, err := s.api.UpsertUser(ctx, models.User{
		ID:        id.UID,
		Email:     id.Email,
		Name:      id.DisplayName,
		AvatarURL: id.PhotoURL,
	})
	if err != nil && ctx.Err() == nil {
		s.logger.Warn("User upsert failed", map[string]interface{}{"user_id": s.UserID, "error": err.Error()})
	}
	if err := s.Social.Refresh(ctx); err != nil && ctx.Err() == nil {
		s.logger.Warn("Initial social refresh failed", map[string]interface{}{"user_id": s.UserID, "error": err.Error()})
	}
}

func (s *Session) stop() {
	for _, unsub := range s.unsubs {
		unsub()
	}
	s.cancel()
	s.Presence.Stop()
	s.Heartbeat.Stop()
	s.wg.Wait()
}

// SessionManager follows the identity provider and keeps exactly one session
// running for the signed-in user.
type SessionManager struct {
	provider identity.Provider
	api      Backend
	bus      *events.Bus
	cfg      SessionConfig
	logger   *logging.Logger

	mu          sync.Mutex
	ctx         context.Context
	current     *Session
	unsubscribe func()
}

func NewSessionManager(provider identity.Provider, api Backend, bus *events.Bus, cfg SessionConfig, logger *logging.Logger) *SessionManager {
	if logger == nil {
		logger = logging.Default
	}
	return &SessionManager{provider: provider, api: api, bus: bus, cfg: cfg, logger: logger}
}

func (m *SessionManager) Start(ctx context.Context) {
	m.mu.Lock()
	m.ctx = ctx
	m.mu.Unlock()

	unsub := m.provider.Subscribe(m.handleIdentity)

	m.mu.Lock()
	m.unsubscribe = unsub
	m.mu.Unlock()
}

// Current returns the active session or ErrNotAuthenticated.
func (m *SessionManager) Current() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, ErrNotAuthenticated
	}
	return m.current, nil
}

func (m *SessionManager) Close() {
	m.mu.Lock()
	unsub := m.unsubscribe
	m.unsubscribe = nil
	current := m.current
	m.current = nil
	m.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	if current != nil {
		current.stop()
		m.logStopped(current)
	}
}

func (m *SessionManager) handleIdentity(id *identity.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ctx == nil {
		return
	}

	if id != nil && m.current != nil && m.current.UserID == id.UID {
		m.current.setIdentity(*id)
		return
	}
	if m.current != nil {
		m.current.stop()
		m.logStopped(m.current)
		m.current = nil
	}
	if id == nil || id.UID == "" {
		return
	}

	sess := m.newSession(*id)
	sess.start(m.ctx, m.bus)
	m.current = sess
	m.logger.Info("Session started", map[string]interface{}{"user_id": sess.UserID})
}

// logStopped reports the bus subscriptions left after a session released its
// own, so a leaked subscription shows up in the log.
func (m *SessionManager) logStopped(sess *Session) {
	fields := map[string]interface{}{"user_id": sess.UserID}
	if m.bus != nil {
		fields["bus_subscribers"] = m.bus.Subscribers()
	}
	m.logger.Info("Session stopped", fields)
}

func (m *SessionManager) newSession(id identity.Identity) *Session {
	var pub events.Publisher
	if m.bus != nil {
		pub = m.bus
	}
	social := NewSocialService(id.UID, m.api, pub, m.logger)
	dispatcher := NewNotificationDispatcher(id.UID, m.cfg.Ledger, m.logger, m.cfg.Sinks...)
	return &Session{
		UserID:     id.UID,
		Social:     social,
		Dispatcher: dispatcher,
		Presence:   NewPresenceService(id.UID, m.api, m.cfg.Presence, dispatcher, social, pub, m.logger),
		Heartbeat:  NewHeartbeat(id.UID, m.api, m.cfg.HeartbeatInterval, m.cfg.InteractionThrottle, m.logger),
		api:        m.api,
		logger:     m.logger,
		identity:   id,
	}
}
