package models

import "time"

type Activity struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	Type            string    `json:"type"`
	Title           *string   `json:"title,omitempty"`
	StartedAt       time.Time `json:"started_at"`
	DurationMinutes int       `json:"duration_minutes"`
	DistanceKM      *float64  `json:"distance_km,omitempty"`
	Calories        *int      `json:"calories,omitempty"`
	AvgHeartRate    *int      `json:"avg_heart_rate,omitempty"`
	Source          string    `json:"source"`
	ExternalID      *string   `json:"external_id,omitempty"`
	Notes           *string   `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ActivityTotals aggregates a user's logged activities, used by goal
// progress and achievement awarding.
type ActivityTotals struct {
	Count           int     `json:"count"`
	TotalDistanceKM float64 `json:"total_distance_km"`
	TotalDuration   int     `json:"total_duration_minutes"`
	ActiveDays      int     `json:"active_days"`
}
