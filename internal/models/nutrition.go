package models

import "time"

type NutritionLog struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	LoggedAt  time.Time `json:"logged_at"`
	MealType  string    `json:"meal_type"`
	Name      string    `json:"name"`
	Calories  float64   `json:"calories"`
	ProteinG  *float64  `json:"protein_g,omitempty"`
	CarbsG    *float64  `json:"carbs_g,omitempty"`
	FatG      *float64  `json:"fat_g,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DailyNutritionSummary rolls one day's logs up for the dashboard.
type DailyNutritionSummary struct {
	Day      string  `json:"day"`
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	Meals    int     `json:"meals"`
}
