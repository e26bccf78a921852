package backend

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/kyoolapp/lifestyle-sub000/internal/models"
)

// SearchUsers returns matches in backend order. A blank query returns an empty
// result without touching the network.
func (c *Client) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.User{}, nil
	}

	var users []models.User
	if err := c.do(ctx, "search users", http.MethodGet, "/users/search", url.Values{"q": {query}}, nil, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (c *Client) GetUser(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, ErrMissingID
	}
	var user models.User
	if err := c.do(ctx, "get user", http.MethodGet, userPath(userID), nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertUser creates the user on first sign-in or refreshes identity fields.
func (c *Client) UpsertUser(ctx context.Context, user models.User) (*models.User, error) {
	if user.ID == "" {
		return nil, ErrMissingID
	}
	var saved models.User
	if err := c.do(ctx, "upsert user", http.MethodPost, "/users", nil, user, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *Client) UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) (*models.User, error) {
	if userID == "" {
		return nil, ErrMissingID
	}
	if patch.Username != nil {
		if err := models.ValidateUsername(*patch.Username); err != nil {
			return nil, err
		}
	}
	var saved models.User
	if err := c.do(ctx, "update profile", http.MethodPut, userPath(userID), nil, patch, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// RecordActivity is the presence heartbeat.
func (c *Client) RecordActivity(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingID
	}
	return c.do(ctx, "record activity", http.MethodPost, userPath(userID, "activity"), nil, nil, nil)
}
