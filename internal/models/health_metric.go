package models

import "time"

type HealthMetric struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Type       string    `json:"type"`
	Value      float64   `json:"value"`
	Unit       string    `json:"unit"`
	RecordedAt time.Time `json:"recorded_at"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"created_at"`
}
