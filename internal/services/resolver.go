package services

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/kyoolapp/lifestyle-sub000/internal/logging"
	"github.com/kyoolapp/lifestyle-sub000/internal/models"
)

var (
	ErrMissingUserID = errors.New("user id is required")
	ErrSameUser      = errors.New("cannot resolve friendship with self")
)

// FriendshipResolver derives the relationship between the viewer and another
// user: a friendship check first, then the two pending request lists.
type FriendshipResolver struct {
	api    FriendshipQueries
	logger *logging.Logger
}

func NewFriendshipResolver(api FriendshipQueries, logger *logging.Logger) *FriendshipResolver {
	if logger == nil {
		logger = logging.Default
	}
	return &FriendshipResolver{api: api, logger: logger}
}

// Resolve returns friends as soon as the friendship check is true, without
// reading the request lists. Otherwise it returns the first incoming request
// from the other user (received), then the first outgoing request to them
// (sent), or none. A failed list read fails the resolution.
func (r *FriendshipResolver) Resolve(ctx context.Context, viewerID, otherID string) (models.FriendRequestState, error) {
	if viewerID == "" || otherID == "" {
		return models.FriendRequestState{}, ErrMissingUserID
	}
	if viewerID == otherID {
		return models.FriendRequestState{}, ErrSameUser
	}

	isFriend, err := r.api.CheckFriendshipStatus(ctx, viewerID, otherID)
	if err != nil {
		return models.FriendRequestState{}, err
	}
	if isFriend {
		return models.FriendRequestState{Status: models.FriendshipStatusFriends}, nil
	}

	var incoming, outgoing []models.FriendRequest
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		incoming, err = r.api.GetIncomingFriendRequests(gctx, viewerID)
		return err
	})
	g.Go(func() error {
		var err error
		outgoing, err = r.api.GetOutgoingFriendRequests(gctx, viewerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.FriendRequestState{}, err
	}

	for _, req := range incoming {
		if req.SenderID == otherID {
			return models.FriendRequestState{Status: models.FriendshipStatusReceived, RequestID: req.RequestID}, nil
		}
	}
	for _, req := range outgoing {
		if req.ReceiverID == otherID {
			return models.FriendRequestState{Status: models.FriendshipStatusSent, RequestID: req.RequestID}, nil
		}
	}
	return models.FriendRequestState{Status: models.FriendshipStatusNone}, nil
}

// ResolveOrNone is the fail-open variant used by list views: errors are
// logged and reported as none.
func (r *FriendshipResolver) ResolveOrNone(ctx context.Context, viewerID, otherID string) models.FriendRequestState {
	state, err := r.Resolve(ctx, viewerID, otherID)
	if err != nil {
		r.logger.Warn("Friendship resolution failed", map[string]interface{}{
			"viewer_id": viewerID,
			"other_id":  otherID,
			"error":     err.Error(),
		})
		return models.FriendRequestState{Status: models.FriendshipStatusNone}
	}
	return state
}
