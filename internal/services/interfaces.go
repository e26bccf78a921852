package services

import (
	"context"

	"github.com/kyoolapp/lifestyle-sub000/internal/models"
)

// FriendshipQueries is the read side the resolver needs.
type FriendshipQueries interface {
	CheckFriendshipStatus(ctx context.Context, viewerID, otherID string) (bool, error)
	GetIncomingFriendRequests(ctx context.Context, userID string) ([]models.FriendRequest, error)
	GetOutgoingFriendRequests(ctx context.Context, userID string) ([]models.FriendRequest, error)
}

// SocialAPI is everything the action handlers call.
type SocialAPI interface {
	FriendshipQueries
	GetUserFriends(ctx context.Context, userID string) ([]models.User, error)
	SendFriendRequest(ctx context.Context, viewerID, targetID string) error
	AcceptFriendRequest(ctx context.Context, viewerID, senderID string) error
	RejectFriendRequest(ctx context.Context, viewerID, senderID string) error
	RevokeFriendRequest(ctx context.Context, viewerID, receiverID string) error
	RemoveFriend(ctx context.Context, viewerID, friendID string) error
}

type PresenceAPI interface {
	GetUserFriends(ctx context.Context, userID string) ([]models.User, error)
	GetIncomingFriendRequests(ctx context.Context, userID string) ([]models.FriendRequest, error)
	GetWaterToday(ctx context.Context, userID string) (*models.WaterIntake, error)
}

type ActivityRecorder interface {
	RecordActivity(ctx context.Context, userID string) error
}

type HydrationAPI interface {
	GetWaterToday(ctx context.Context, userID string) (*models.WaterIntake, error)
	LogWater(ctx context.Context, userID string, amountML int) (*models.WaterIntake, error)
	SetWater(ctx context.Context, userID string, amountML int) (*models.WaterIntake, error)
	GetWaterHistory(ctx context.Context, userID string, days int) ([]models.WaterHistoryEntry, error)
}

// Backend is the full remote surface a signed-in session uses.
type Backend interface {
	SocialAPI
	PresenceAPI
	ActivityRecorder
	UpsertUser(ctx context.Context, user models.User) (*models.User, error)
}
