package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kyoolapp/lifestyle-sub000/internal/events"
	"github.com/kyoolapp/lifestyle-sub000/internal/logging"
	"github.com/kyoolapp/lifestyle-sub000/internal/models"
)

var ErrActionInFlight = errors.New("an action for this user is already in progress")

// SocialSnapshot is a copy of the viewer's lists as last known locally.
type SocialSnapshot struct {
	Friends  []models.User          `json:"friends"`
	Incoming []models.FriendRequest `json:"incoming"`
	Outgoing []models.FriendRequest `json:"outgoing"`
	Loading  []string               `json:"loading"`
	Errors   map[string]string      `json:"errors,omitempty"`
}

// SocialService runs friend actions for one viewer. Each action holds a
// loading flag for its target, patches the local lists on success and leaves
// them untouched on failure. Errors are returned and also remembered per
// target until the next action on it.
type SocialService struct {
	userID string
	api    SocialAPI
	bus    events.Publisher
	logger *logging.Logger

	mu       sync.Mutex
	friends  []models.User
	incoming []models.FriendRequest
	outgoing []models.FriendRequest
	loading  map[string]bool
	errs     map[string]string
}

func NewSocialService(userID string, api SocialAPI, bus events.Publisher, logger *logging.Logger) *SocialService {
	if logger == nil {
		logger = logging.Default
	}
	return &SocialService{
		userID:   userID,
		api:      api,
		bus:      bus,
		logger:   logger,
		friends:  []models.User{},
		incoming: []models.FriendRequest{},
		outgoing: []models.FriendRequest{},
		loading:  map[string]bool{},
		errs:     map[string]string{},
	}
}

func (s *SocialService) UserID() string { return s.userID }

func (s *SocialService) Snapshot() SocialSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := SocialSnapshot{
		Friends:  append([]models.User{}, s.friends...),
		Incoming: append([]models.FriendRequest{}, s.incoming...),
		Outgoing: append([]models.FriendRequest{}, s.outgoing...),
		Loading:  make([]string, 0, len(s.loading)),
	}
	for id := range s.loading {
		snap.Loading = append(snap.Loading, id)
	}
	sort.Strings(snap.Loading)
	if len(s.errs) > 0 {
		snap.Errors = make(map[string]string, len(s.errs))
		for k, v := range s.errs {
			snap.Errors[k] = v
		}
	}
	return snap
}

func (s *SocialService) IsLoading(targetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading[targetID]
}

// Refresh reloads all three lists. Nothing is replaced unless every read succeeds.
func (s *SocialService) Refresh(ctx context.Context) error {
	var (
		friends  []models.User
		incoming []models.FriendRequest
		outgoing []models.FriendRequest
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		friends, err = s.api.GetUserFriends(gctx, s.userID)
		return err
	})
	g.Go(func() (err error) {
		incoming, err = s.api.GetIncomingFriendRequests(gctx, s.userID)
		return err
	})
	g.Go(func() (err error) {
		outgoing, err = s.api.GetOutgoingFriendRequests(gctx, s.userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	s.friends = nonNilUsers(friends)
	s.incoming = nonNilRequests(incoming)
	s.outgoing = nonNilRequests(outgoing)
	s.mu.Unlock()
	return nil
}

func (s *SocialService) ApplyFriends(friends []models.User) {
	s.mu.Lock()
	s.friends = nonNilUsers(friends)
	s.mu.Unlock()
}

func (s *SocialService) ApplyIncoming(incoming []models.FriendRequest) {
	s.mu.Lock()
	s.incoming = nonNilRequests(incoming)
	s.mu.Unlock()
}

func (s *SocialService) SendFriendRequest(ctx context.Context, targetID string) error {
	return s.act(ctx, "send", targetID, s.api.SendFriendRequest, func() {
		for _, r := range s.outgoing {
			if r.ReceiverID == targetID {
				return
			}
		}
		s.outgoing = append(s.outgoing, models.FriendRequest{SenderID: s.userID, ReceiverID: targetID})
	})
}

// AcceptFriendRequest moves the sender's pending request into the friends list.
func (s *SocialService) AcceptFriendRequest(ctx context.Context, senderID string) error {
	return s.act(ctx, "accept", senderID, s.api.AcceptFriendRequest, func() {
		friend := models.User{ID: senderID}
		kept := s.incoming[:0:0]
		for _, r := range s.incoming {
			if r.SenderID == senderID {
				if r.Sender != nil {
					friend = *r.Sender
				}
				continue
			}
			kept = append(kept, r)
		}
		s.incoming = kept
		for _, f := range s.friends {
			if f.ID == senderID {
				return
			}
		}
		s.friends = append(s.friends, friend)
	})
}

func (s *SocialService) RejectFriendRequest(ctx context.Context, senderID string) error {
	return s.act(ctx, "reject", senderID, s.api.RejectFriendRequest, func() {
		s.incoming = filterRequests(s.incoming, func(r models.FriendRequest) bool { return r.SenderID != senderID })
	})
}

func (s *SocialService) RevokeFriendRequest(ctx context.Context, receiverID string) error {
	return s.act(ctx, "revoke", receiverID, s.api.RevokeFriendRequest, func() {
		s.outgoing = filterRequests(s.outgoing, func(r models.FriendRequest) bool { return r.ReceiverID != receiverID })
	})
}

func (s *SocialService) RemoveFriend(ctx context.Context, friendID string) error {
	return s.act(ctx, "remove", friendID, s.api.RemoveFriend, func() {
		kept := s.friends[:0:0]
		for _, f := range s.friends {
			if f.ID != friendID {
				kept = append(kept, f)
			}
		}
		s.friends = kept
	})
}

func (s *SocialService) act(ctx context.Context, op, targetID string, call func(ctx context.Context, viewerID, targetID string) error, patch func()) error {
	if targetID == "" {
		return ErrMissingUserID
	}

	s.mu.Lock()
	if s.loading[targetID] {
		s.mu.Unlock()
		return ErrActionInFlight
	}
	s.loading[targetID] = true
	delete(s.errs, targetID)
	s.mu.Unlock()

	err := call(ctx, s.userID, targetID)

	s.mu.Lock()
	delete(s.loading, targetID)
	if err != nil {
		s.errs[targetID] = err.Error()
		s.mu.Unlock()
		s.logger.Warn("Friend action failed", map[string]interface{}{
			"action":    op,
			"user_id":   s.userID,
			"target_id": targetID,
			"error":     err.Error(),
		})
		return err
	}
	patch()
	s.mu.Unlock()

	if s.bus != nil && op != "send" {
		s.bus.Publish(events.Event{Kind: events.FriendsChanged, UserID: s.userID, CounterpartID: targetID})
	}
	return nil
}

func filterRequests(in []models.FriendRequest, keep func(models.FriendRequest) bool) []models.FriendRequest {
	out := make([]models.FriendRequest, 0, len(in))
	for _, r := range in {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func nonNilUsers(in []models.User) []models.User {
	if in == nil {
		return []models.User{}
	}
	return in
}

func nonNilRequests(in []models.FriendRequest) []models.FriendRequest {
	if in == nil {
		return []models.FriendRequest{}
	}
	return in
}
