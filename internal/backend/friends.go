package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kyoolapp/lifestyle-sub000/internal/events"
	"github.com/kyoolapp/lifestyle-sub000/internal/models"
)

type senderBody struct {
	SenderID string `json:"sender_id"`
}

type receiverBody struct {
	ReceiverID string `json:"receiver_id"`
}

type friendBody struct {
	FriendID string `json:"friend_id"`
}

type friendshipCheck struct {
	IsFriend bool `json:"is_friend"`
}

func checkPair(viewerID, otherID string) error {
	if viewerID == "" || otherID == "" {
		return ErrMissingID
	}
	return nil
}

// SendFriendRequest creates a pending request from viewer to target. The
// backend rejects self-requests, duplicates and existing friendships.
func (c *Client) SendFriendRequest(ctx context.Context, viewerID, targetID string) error {
	if err := checkPair(viewerID, targetID); err != nil {
		return err
	}
	err := c.do(ctx, "send friend request", http.MethodPost, userPath(viewerID, "send-friend-request"), nil, receiverBody{ReceiverID: targetID}, nil)
	if err != nil {
		return err
	}
	if c.events != nil {
		c.events.Publish(events.Event{
			Kind:          events.FriendRequestSent,
			UserID:        targetID,
			CounterpartID: viewerID,
		})
	}
	return nil
}

func (c *Client) AcceptFriendRequest(ctx context.Context, viewerID, senderID string) error {
	if err := checkPair(viewerID, senderID); err != nil {
		return err
	}
	return c.do(ctx, "accept friend request", http.MethodPost, userPath(viewerID, "accept-friend-request"), nil, senderBody{SenderID: senderID}, nil)
}

func (c *Client) RejectFriendRequest(ctx context.Context, viewerID, senderID string) error {
	if err := checkPair(viewerID, senderID); err != nil {
		return err
	}
	return c.do(ctx, "reject friend request", http.MethodPost, userPath(viewerID, "reject-friend-request"), nil, senderBody{SenderID: senderID}, nil)
}

func (c *Client) RevokeFriendRequest(ctx context.Context, viewerID, receiverID string) error {
	if err := checkPair(viewerID, receiverID); err != nil {
		return err
	}
	return c.do(ctx, "revoke friend request", http.MethodPost, userPath(viewerID, "revoke-friend-request"), nil, receiverBody{ReceiverID: receiverID}, nil)
}

func (c *Client) RemoveFriend(ctx context.Context, viewerID, friendID string) error {
	if err := checkPair(viewerID, friendID); err != nil {
		return err
	}
	return c.do(ctx, "remove friend", http.MethodPost, userPath(viewerID, "remove-friend"), nil, friendBody{FriendID: friendID}, nil)
}

func (c *Client) GetFriendRequestStatus(ctx context.Context, viewerID, otherID string) (models.FriendRequestState, error) {
	if err := checkPair(viewerID, otherID); err != nil {
		return models.FriendRequestState{}, err
	}
	var state models.FriendRequestState
	err := c.do(ctx, "get friend request status", http.MethodGet, userPath(viewerID, "friend-request-status", url.PathEscape(otherID)), nil, nil, &state)
	return state, err
}

func (c *Client) CheckFriendshipStatus(ctx context.Context, viewerID, otherID string) (bool, error) {
	if err := checkPair(viewerID, otherID); err != nil {
		return false, err
	}
	var check friendshipCheck
	if err := c.do(ctx, "check friendship status", http.MethodGet, userPath(viewerID, "friendship-status", url.PathEscape(otherID)), nil, nil, &check); err != nil {
		return false, err
	}
	return check.IsFriend, nil
}

func (c *Client) GetIncomingFriendRequests(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	return c.listRequests(ctx, "get incoming friend requests", userID, "incoming")
}

func (c *Client) GetOutgoingFriendRequests(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	return c.listRequests(ctx, "get outgoing friend requests", userID, "outgoing")
}

func (c *Client) listRequests(ctx context.Context, op, userID, direction string) ([]models.FriendRequest, error) {
	if userID == "" {
		return nil, ErrMissingID
	}
	var requests []models.FriendRequest
	if err := c.do(ctx, op, http.MethodGet, userPath(userID, "friend-requests", direction), nil, nil, &requests); err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []models.FriendRequest{}
	}
	return requests, nil
}

func (c *Client) GetUserFriends(ctx context.Context, userID string) ([]models.User, error) {
	if userID == "" {
		return nil, ErrMissingID
	}
	var friends []models.User
	if err := c.do(ctx, "get user friends", http.MethodGet, userPath(userID, "friends"), nil, nil, &friends); err != nil {
		return nil, err
	}
	if friends == nil {
		friends = []models.User{}
	}
	return friends, nil
}
