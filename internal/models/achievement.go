package models

import "time"

type Achievement struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IconURL     *string   `json:"icon_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type UserAchievement struct {
	Achievement
	EarnedAt time.Time `json:"earned_at"`
}
