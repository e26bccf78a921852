package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/kyoolapp/lifestyle-sub000/internal/identity"
	"github.com/kyoolapp/lifestyle-sub000/internal/models"
	"github.com/kyoolapp/lifestyle-sub000/internal/services"
)

// IdentitySink receives sign-in and sign-out from the UI surfaces.
type IdentitySink interface {
	SignIn(id identity.Identity)
	SignOut()
}

type UserAPI interface {
	SearchUsers(ctx context.Context, query string) ([]models.User, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) (*models.User, error)
}

type FriendshipResolver interface {
	Resolve(ctx context.Context, viewerID, otherID string) (models.FriendRequestState, error)
	ResolveOrNone(ctx context.Context, viewerID, otherID string) models.FriendRequestState
}

type NotificationStore interface {
	List(ctx context.Context, userID string, params services.NotificationListParams) ([]models.NotificationRecord, error)
	MarkRead(ctx context.Context, userID string, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
}

type Hydration interface {
	Today(ctx context.Context, userID string) (*models.WaterIntake, error)
	Log(ctx context.Context, userID string, amountML int) (*models.WaterIntake, error)
	Set(ctx context.Context, userID string, amountML int) (*models.WaterIntake, error)
	History(ctx context.Context, userID string, days int) ([]models.WaterHistoryEntry, error)
}

// HealthChecker is satisfied by the postgres and redis handles.
type HealthChecker interface {
	Health(ctx context.Context) error
}
