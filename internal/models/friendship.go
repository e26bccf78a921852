package models

import "time"

// FriendshipStatus is the client-side classification of a viewer/subject pair.
type FriendshipStatus string

const (
	FriendshipStatusNone     FriendshipStatus = "none"
	FriendshipStatusSent     FriendshipStatus = "sent"
	FriendshipStatusReceived FriendshipStatus = "received"
	FriendshipStatusFriends  FriendshipStatus = "friends"
)

func (s FriendshipStatus) Valid() bool {
	switch s {
	case FriendshipStatusNone, FriendshipStatusSent, FriendshipStatusReceived, FriendshipStatusFriends:
		return true
	}
	return false
}

// FriendRequest is a pending directed edge. Sender and Receiver are only set
// when the backend embeds the profile.
type FriendRequest struct {
	RequestID  string    `json:"request_id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	CreatedAt  time.Time `json:"created_at"`
	Sender     *User     `json:"sender,omitempty"`
	Receiver   *User     `json:"receiver,omitempty"`
}

// SenderName returns the best display label for the sender.
func (r FriendRequest) SenderName() string {
	if r.Sender != nil {
		if name := r.Sender.DisplayName(); name != "" {
			return name
		}
	}
	return r.SenderID
}

// Friendship is symmetric; the order of the ids carries no meaning.
type Friendship struct {
	UserID   string `json:"user_id"`
	FriendID string `json:"friend_id"`
}

func (f Friendship) Involves(id string) bool {
	return f.UserID == id || f.FriendID == id
}

// Counterpart returns the other side of the edge, or "" when id is not part of it.
func (f Friendship) Counterpart(id string) string {
	switch id {
	case f.UserID:
		return f.FriendID
	case f.FriendID:
		return f.UserID
	}
	return ""
}

// FriendRequestState is what the backend reports for a single directed pair.
type FriendRequestState struct {
	Status    FriendshipStatus `json:"status"`
	RequestID string           `json:"request_id,omitempty"`
	Direction string           `json:"direction,omitempty"`
}
