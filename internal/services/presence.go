package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kyoolapp/lifestyle-sub000/internal/events"
	"github.com/kyoolapp/lifestyle-sub000/internal/logging"
	"github.com/kyoolapp/lifestyle-sub000/internal/models"
)

type PresenceConfig struct {
	FriendsInterval            time.Duration
	RequestsInterval           time.Duration
	RequestsForegroundInterval time.Duration
}

// PresenceSnapshot is what UI surfaces render: who is online, how many
// requests are pending, today's water.
type PresenceSnapshot struct {
	Friends             []models.User          `json:"friends"`
	OnlineFriends       []models.User          `json:"online_friends"`
	Incoming            []models.FriendRequest `json:"incoming"`
	PendingCount        int                    `json:"pending_count"`
	Water               *models.WaterIntake    `json:"water,omitempty"`
	Foreground          bool                   `json:"foreground"`
	FriendsRefreshedAt  *time.Time             `json:"friends_refreshed_at,omitempty"`
	RequestsRefreshedAt *time.Time             `json:"requests_refreshed_at,omitempty"`
}

// PresenceService keeps the friends list and incoming requests fresh on two
// independent pollers and feeds new requests to the dispatcher. Poll failures
// keep the last good state.
type PresenceService struct {
	userID     string
	api        PresenceAPI
	cfg        PresenceConfig
	dispatcher *NotificationDispatcher
	social     *SocialService
	bus        events.Publisher
	logger     *logging.Logger
	now        func() time.Time

	friendsPoller  *Poller
	requestsPoller *Poller

	wg     sync.WaitGroup
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	snap   PresenceSnapshot
}

func NewPresenceService(userID string, api PresenceAPI, cfg PresenceConfig, dispatcher *NotificationDispatcher, social *SocialService, bus events.Publisher, logger *logging.Logger) *PresenceService {
	if logger == nil {
		logger = logging.Default
	}
	s := &PresenceService{
		userID:     userID,
		api:        api,
		cfg:        cfg,
		dispatcher: dispatcher,
		social:     social,
		bus:        bus,
		logger:     logger,
		now:        time.Now,
		snap: PresenceSnapshot{
			Friends:       []models.User{},
			OnlineFriends: []models.User{},
			Incoming:      []models.FriendRequest{},
		},
	}
	s.friendsPoller = NewPoller("friends", cfg.FriendsInterval, s.refreshFriends, logger)
	s.requestsPoller = NewPoller("friend-requests", cfg.RequestsInterval, s.refreshRequests, logger)
	return s
}

// Start fetches water, friends and requests right away, then keeps polling.
func (s *PresenceService) Start(ctx context.Context) {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	runCtx := s.ctx
	s.mu.Unlock()

	s.RefreshWater()
	s.friendsPoller.Start(runCtx)
	s.requestsPoller.Start(runCtx)
}

// Stop halts both pollers and waits for any in-flight water fetch.
func (s *PresenceService) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	s.friendsPoller.Stop()
	s.requestsPoller.Stop()
	s.wg.Wait()
}

// SetForeground switches the request cadence between the background and the
// faster foreground interval.
func (s *PresenceService) SetForeground(foreground bool) {
	interval := s.cfg.RequestsInterval
	if foreground {
		interval = s.cfg.RequestsForegroundInterval
	}
	s.requestsPoller.SetInterval(interval)

	s.mu.Lock()
	s.snap.Foreground = foreground
	s.mu.Unlock()
}

func (s *PresenceService) RequestsInterval() time.Duration {
	return s.requestsPoller.Interval()
}

// RefreshFriends and RefreshRequests ask the pollers for an early run.
func (s *PresenceService) RefreshFriends()  { s.friendsPoller.Trigger() }
func (s *PresenceService) RefreshRequests() { s.requestsPoller.Trigger() }

// RefreshWater fetches today's intake in the background.
func (s *PresenceService) RefreshWater() {
	s.mu.Lock()
	if s.cancel == nil {
		s.mu.Unlock()
		return
	}
	ctx := s.ctx
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		water, err := s.api.GetWaterToday(ctx, s.userID)
		if err != nil {
			s.logFailure("water", err)
			return
		}
		s.mu.Lock()
		s.snap.Water = water
		s.mu.Unlock()
	}()
}

func (s *PresenceService) Snapshot() PresenceSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.snap
	out.Friends = append([]models.User{}, s.snap.Friends...)
	out.OnlineFriends = append([]models.User{}, s.snap.OnlineFriends...)
	out.Incoming = append([]models.FriendRequest{}, s.snap.Incoming...)
	if s.snap.Water != nil {
		w := *s.snap.Water
		out.Water = &w
	}
	return out
}

func (s *PresenceService) refreshFriends(ctx context.Context) {
	friends, err := s.api.GetUserFriends(ctx, s.userID)
	if err != nil {
		s.logFailure("friends", err)
		return
	}
	friends = nonNilUsers(friends)
	online := make([]models.User, 0, len(friends))
	for _, f := range friends {
		if f.IsOnline {
			online = append(online, f)
		}
	}
	at := s.now()

	s.mu.Lock()
	s.snap.Friends = friends
	s.snap.OnlineFriends = online
	s.snap.FriendsRefreshedAt = &at
	s.mu.Unlock()

	if s.social != nil {
		s.social.ApplyFriends(friends)
	}
	if s.bus != nil {
		s.bus.Publish(events.Event{Kind: events.PresenceUpdated, UserID: s.userID})
	}
}

func (s *PresenceService) refreshRequests(ctx context.Context) {
	incoming, err := s.api.GetIncomingFriendRequests(ctx, s.userID)
	if err != nil {
		s.logFailure("friend-requests", err)
		return
	}
	incoming = nonNilRequests(incoming)
	at := s.now()

	s.mu.Lock()
	s.snap.Incoming = incoming
	s.snap.PendingCount = len(incoming)
	s.snap.RequestsRefreshedAt = &at
	s.mu.Unlock()

	if s.social != nil {
		s.social.ApplyIncoming(incoming)
	}
	if s.dispatcher != nil {
		s.dispatcher.Observe(ctx, incoming)
	}
}

func (s *PresenceService) logFailure(what string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	s.logger.Warn("Presence refresh failed", map[string]interface{}{
		"user_id": s.userID,
		"what":    what,
		"error":   err.Error(),
	})
}
