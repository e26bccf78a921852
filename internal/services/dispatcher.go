package services

import (
	"context"
	"sync"
	"time"

	"github.com/kyoolapp/lifestyle-sub000/internal/logging"
	"github.com/kyoolapp/lifestyle-sub000/internal/models"
)

// Notification is a user-facing alert about a newly received friend request.
type Notification struct {
	Tag       string
	UserID    string
	Kind      models.NotificationKind
	Title     string
	Body      string
	Request   models.FriendRequest
	CreatedAt time.Time
}

// Sink delivers a notification somewhere: the log, the history store, email,
// the local event bus.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, n Notification) error
}

// NotificationDispatcher turns successive incoming-request snapshots into
// notifications. The first snapshot, and any snapshot following an empty
// one, only establishes a baseline.
type NotificationDispatcher struct {
	userID string
	ledger Ledger
	sinks  []Sink
	logger *logging.Logger
	now    func() time.Time

	mu       sync.Mutex
	previous map[string]struct{}
}

func NewNotificationDispatcher(userID string, ledger Ledger, logger *logging.Logger, sinks ...Sink) *NotificationDispatcher {
	if logger == nil {
		logger = logging.Default
	}
	return &NotificationDispatcher{
		userID: userID,
		ledger: ledger,
		sinks:  sinks,
		logger: logger,
		now:    time.Now,
	}
}

// Observe diffs incoming against the previous snapshot by request id and
// delivers one notification per new request. It returns what was emitted.
func (d *NotificationDispatcher) Observe(ctx context.Context, incoming []models.FriendRequest) []Notification {
	current := make(map[string]struct{}, len(incoming))
	for _, req := range incoming {
		current[req.RequestID] = struct{}{}
	}

	d.mu.Lock()
	previous := d.previous
	d.previous = current
	d.mu.Unlock()

	if len(previous) == 0 {
		return nil
	}

	var emitted []Notification
	for _, req := range incoming {
		if _, ok := previous[req.RequestID]; ok {
			continue
		}
		n := d.build(req)
		if !d.firstSighting(ctx, n.Tag) {
			continue
		}
		d.deliver(ctx, n)
		emitted = append(emitted, n)
	}
	return emitted
}

func (d *NotificationDispatcher) build(req models.FriendRequest) Notification {
	return Notification{
		Tag:       "friend-request-" + req.RequestID,
		UserID:    d.userID,
		Kind:      models.NotificationKindFriendRequestReceived,
		Title:     "New Friend Request",
		Body:      req.SenderName() + " sent you a friend request",
		Request:   req,
		CreatedAt: d.now(),
	}
}

// firstSighting consults the ledger. A failing ledger does not suppress the
// notification.
func (d *NotificationDispatcher) firstSighting(ctx context.Context, tag string) bool {
	if d.ledger == nil {
		return true
	}
	first, err := d.ledger.MarkSeen(ctx, d.userID, tag)
	if err != nil {
		d.logger.Warn("Notification ledger unavailable", map[string]interface{}{
			"user_id": d.userID,
			"tag":     tag,
			"error":   err.Error(),
		})
		return true
	}
	return first
}

func (d *NotificationDispatcher) deliver(ctx context.Context, n Notification) {
	for _, sink := range d.sinks {
		if err := sink.Deliver(ctx, n); err != nil {
			d.logger.Error("Notification delivery failed", map[string]interface{}{
				"sink":    sink.Name(),
				"user_id": n.UserID,
				"tag":     n.Tag,
				"error":   err.Error(),
			})
		}
	}
}
