package services

import (
	"context"
	"sync"

	"github.com/kyoolapp/lifestyle-sub000/internal/models"
)

type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	CheckFriendshipStatusFunc func(ctx context.Context, viewerID, otherID string) (bool, error)
	IncomingFunc              func(ctx context.Context, userID string) ([]models.FriendRequest, error)
	OutgoingFunc              func(ctx context.Context, userID string) ([]models.FriendRequest, error)
	FriendsFunc               func(ctx context.Context, userID string) ([]models.User, error)
	MutationFunc              func(ctx context.Context, op, viewerID, targetID string) error
	WaterTodayFunc            func(ctx context.Context, userID string) (*models.WaterIntake, error)
	LogWaterFunc              func(ctx context.Context, userID string, amountML int) (*models.WaterIntake, error)
	SetWaterFunc              func(ctx context.Context, userID string, amountML int) (*models.WaterIntake, error)
	WaterHistoryFunc          func(ctx context.Context, userID string, days int) ([]models.WaterHistoryEntry, error)
	RecordActivityFunc        func(ctx context.Context, userID string) error
	UpsertUserFunc            func(ctx context.Context, user models.User) (*models.User, error)
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeBackend) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeBackend) CheckFriendshipStatus(ctx context.Context, viewerID, otherID string) (bool, error) {
	f.record("check")
	if f.CheckFriendshipStatusFunc != nil {
		return f.CheckFriendshipStatusFunc(ctx, viewerID, otherID)
	}
	return false, nil
}

func (f *fakeBackend) GetIncomingFriendRequests(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	f.record("incoming")
	if f.IncomingFunc != nil {
		return f.IncomingFunc(ctx, userID)
	}
	return []models.FriendRequest{}, nil
}

func (f *fakeBackend) GetOutgoingFriendRequests(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	f.record("outgoing")
	if f.OutgoingFunc != nil {
		return f.OutgoingFunc(ctx, userID)
	}
	return []models.FriendRequest{}, nil
}

func (f *fakeBackend) GetUserFriends(ctx context.Context, userID string) ([]models.User, error) {
	f.record("friends")
	if f.FriendsFunc != nil {
		return f.FriendsFunc(ctx, userID)
	}
	return []models.User{}, nil
}

func (f *fakeBackend) mutate(ctx context.Context, op, viewerID, targetID string) error {
	f.record(op)
	if f.MutationFunc != nil {
		return f.MutationFunc(ctx, op, viewerID, targetID)
	}
	return nil
}

func (f *fakeBackend) SendFriendRequest(ctx context.Context, viewerID, targetID string) error {
	return f.mutate(ctx, "send", viewerID, targetID)
}

func (f *fakeBackend) AcceptFriendRequest(ctx context.Context, viewerID, senderID string) error {
	return f.mutate(ctx, "accept", viewerID, senderID)
}

func (f *fakeBackend) RejectFriendRequest(ctx context.Context, viewerID, senderID string) error {
	return f.mutate(ctx, "reject", viewerID, senderID)
}

func (f *fakeBackend) RevokeFriendRequest(ctx context.Context, viewerID, receiverID string) error {
	return f.mutate(ctx, "revoke", viewerID, receiverID)
}

func (f *fakeBackend) RemoveFriend(ctx context.Context, viewerID, friendID string) error {
	return f.mutate(ctx, "remove", viewerID, friendID)
}

func (f *fakeBackend) GetWaterToday(ctx context.Context, userID string) (*models.WaterIntake, error) {
	f.record("water")
	if f.WaterTodayFunc != nil {
		return f.WaterTodayFunc(ctx, userID)
	}
	return &models.WaterIntake{UserID: userID}, nil
}

func (f *fakeBackend) LogWater(ctx context.Context, userID string, amountML int) (*models.WaterIntake, error) {
	f.record("log_water")
	if f.LogWaterFunc != nil {
		return f.LogWaterFunc(ctx, userID, amountML)
	}
	return &models.WaterIntake{UserID: userID, AmountML: amountML}, nil
}

func (f *fakeBackend) SetWater(ctx context.Context, userID string, amountML int) (*models.WaterIntake, error) {
	f.record("set_water")
	if f.SetWaterFunc != nil {
		return f.SetWaterFunc(ctx, userID, amountML)
	}
	return &models.WaterIntake{UserID: userID, AmountML: amountML}, nil
}

func (f *fakeBackend) GetWaterHistory(ctx context.Context, userID string, days int) ([]models.WaterHistoryEntry, error) {
	f.record("water_history")
	if f.WaterHistoryFunc != nil {
		return f.WaterHistoryFunc(ctx, userID, days)
	}
	return []models.WaterHistoryEntry{}, nil
}

func (f *fakeBackend) RecordActivity(ctx context.Context, userID string) error {
	f.record("activity")
	if f.RecordActivityFunc != nil {
		return f.RecordActivityFunc(ctx, userID)
	}
	return nil
}

func (f *fakeBackend) UpsertUser(ctx context.Context, user models.User) (*models.User, error) {
	f.record("upsert")
	if f.UpsertUserFunc != nil {
		return f.UpsertUserFunc(ctx, user)
	}
	return &user, nil
}
