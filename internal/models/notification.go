package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationKind string

const (
	NotificationKindFriendRequestReceived NotificationKind = "friend_request_received"
)

// NotificationRecord is a friend-request event already surfaced to the user.
type NotificationRecord struct {
	ID        uuid.UUID        `json:"id"`
	UserID    string           `json:"user_id"`
	Kind      NotificationKind `json:"kind"`
	RequestID string           `json:"request_id"`
	ActorID   string           `json:"actor_id"`
	ActorName string           `json:"actor_name"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
