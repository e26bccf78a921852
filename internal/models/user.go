package models

import (
	"errors"
	"time"
)

var ErrInvalidUsername = errors.New("username must be 6-20 characters of letters, digits, '_' or '.'")

// User mirrors the backend user document. Physical attributes are optional and
// derived metrics are advisory copies of what the backend computed.
type User struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	AvatarURL     string     `json:"avatar_url,omitempty"`
	IsOnline      bool       `json:"is_online"`
	LastActive    *time.Time `json:"last_active,omitempty"`
	Height        *float64   `json:"height,omitempty"` // cm
	Weight        *float64   `json:"weight,omitempty"` // kg
	Age           *int       `json:"age,omitempty"`
	Gender        string     `json:"gender,omitempty"`
	ActivityLevel string     `json:"activity_level,omitempty"`
	BMI           *float64   `json:"bmi,omitempty"`
	BMR           *float64   `json:"bmr,omitempty"`
	TDEE          *float64   `json:"tdee,omitempty"`
}

// DisplayName prefers the profile name and falls back to the username.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

func (u User) Presence() Presence {
	return Presence{UserID: u.ID, IsOnline: u.IsOnline, LastActive: u.LastActive}
}

// ProfilePatch carries the editable profile fields; nil means unchanged.
type ProfilePatch struct {
	Name          *string  `json:"name,omitempty"`
	Username      *string  `json:"username,omitempty"`
	AvatarURL     *string  `json:"avatar_url,omitempty"`
	Height        *float64 `json:"height,omitempty"`
	Weight        *float64 `json:"weight,omitempty"`
	Age           *int     `json:"age,omitempty"`
	Gender        *string  `json:"gender,omitempty"`
	ActivityLevel *string  `json:"activity_level,omitempty"`
}

func ValidateUsername(username string) error {
	if len(username) < 6 || len(username) > 20 {
		return ErrInvalidUsername
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.':
		default:
			return ErrInvalidUsername
		}
	}
	return nil
}

type Presence struct {
	UserID     string     `json:"user_id"`
	IsOnline   bool       `json:"is_online"`
	LastActive *time.Time `json:"last_active,omitempty"`
}
