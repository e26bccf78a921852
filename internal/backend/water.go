package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kyoolapp/lifestyle-sub000/internal/models"
)

type waterAmount struct {
	AmountML int `json:"amount_ml"`
}

func (c *Client) GetWaterToday(ctx context.Context, userID string) (*models.WaterIntake, error) {
	if userID == "" {
		return nil, ErrMissingID
	}
	var intake models.WaterIntake
	if err := c.do(ctx, "get water today", http.MethodGet, userPath(userID, "water", "today"), nil, nil, &intake); err != nil {
		return nil, err
	}
	return &intake, nil
}

// LogWater adds amountML to today's total.
func (c *Client) LogWater(ctx context.Context, userID string, amountML int) (*models.WaterIntake, error) {
	if userID == "" {
		return nil, ErrMissingID
	}
	var intake models.WaterIntake
	if err := c.do(ctx, "log water", http.MethodPost, userPath(userID, "water", "log"), nil, waterAmount{AmountML: amountML}, &intake); err != nil {
		return nil, err
	}
	return &intake, nil
}

// SetWater overwrites today's total.
func (c *Client) SetWater(ctx context.Context, userID string, amountML int) (*models.WaterIntake, error) {
	if userID == "" {
		return nil, ErrMissingID
	}
	var intake models.WaterIntake
	if err := c.do(ctx, "set water", http.MethodPost, userPath(userID, "water", "set"), nil, waterAmount{AmountML: amountML}, &intake); err != nil {
		return nil, err
	}
	return &intake, nil
}

func (c *Client) GetWaterHistory(ctx context.Context, userID string, days int) ([]models.WaterHistoryEntry, error) {
	if userID == "" {
		return nil, ErrMissingID
	}
	var query url.Values
	if days > 0 {
		query = url.Values{"days": {strconv.Itoa(days)}}
	}
	var history []models.WaterHistoryEntry
	if err := c.do(ctx, "get water history", http.MethodGet, userPath(userID, "water", "history"), query, nil, &history); err != nil {
		return nil, err
	}
	if history == nil {
		history = []models.WaterHistoryEntry{}
	}
	return history, nil
}
