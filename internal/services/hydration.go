package services

import (
	"context"
	"errors"

	"github.com/kyoolapp/lifestyle-sub000/internal/events"
	"github.com/kyoolapp/lifestyle-sub000/internal/models"
)

var (
	ErrInvalidWaterAmount = errors.New("water amount out of range")
	ErrInvalidHistoryDays = errors.New("history days must be between 1 and 90")
)

const (
	maxWaterLogML       = 5000
	maxWaterDailyML     = 20000
	defaultHistoryDays  = 7
	maxWaterHistoryDays = 90
)

// HydrationService validates water intake changes before forwarding them to
// the backend and announces successful writes on the bus.
type HydrationService struct {
	api HydrationAPI
	bus events.Publisher
}

func NewHydrationService(api HydrationAPI, bus events.Publisher) *HydrationService {
	return &HydrationService{api: api, bus: bus}
}

func (s *HydrationService) Today(ctx context.Context, userID string) (*models.WaterIntake, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	return s.api.GetWaterToday(ctx, userID)
}

// Log adds amountML to today's total.
func (s *HydrationService) Log(ctx context.Context, userID string, amountML int) (*models.WaterIntake, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if amountML <= 0 || amountML > maxWaterLogML {
		return nil, ErrInvalidWaterAmount
	}
	intake, err := s.api.LogWater(ctx, userID, amountML)
	if err != nil {
		return nil, err
	}
	s.publish(userID)
	return intake, nil
}

// Set overwrites today's total.
func (s *HydrationService) Set(ctx context.Context, userID string, amountML int) (*models.WaterIntake, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if amountML < 0 || amountML > maxWaterDailyML {
		return nil, ErrInvalidWaterAmount
	}
	intake, err := s.api.SetWater(ctx, userID, amountML)
	if err != nil {
		return nil, err
	}
	s.publish(userID)
	return intake, nil
}

// History returns the last days of totals; 0 means the default week.
func (s *HydrationService) History(ctx context.Context, userID string, days int) ([]models.WaterHistoryEntry, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if days == 0 {
		days = defaultHistoryDays
	}
	if days < 1 || days > maxWaterHistoryDays {
		return nil, ErrInvalidHistoryDays
	}
	return s.api.GetWaterHistory(ctx, userID, days)
}

func (s *HydrationService) publish(userID string) {
	if s.bus != nil {
		s.bus.Publish(events.Event{Kind: events.WaterUpdated, UserID: userID})
	}
}
