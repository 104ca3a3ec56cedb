package models

import "time"

const (
	PlatformStrava = "strava"
	PlatformGarmin = "garmin"
	PlatformPolar  = "polar"
)

type IntegrationAccount struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	Platform     string     `json:"platform"`
	ExternalID   string     `json:"external_id"`
	AccessToken  string     `json:"-"`
	RefreshToken *string    `json:"-"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	LastSyncAt   *time.Time `json:"last_sync_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
