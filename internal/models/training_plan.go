package models

import "time"

const (
	PlanSourceAI    = "ai"
	PlanSourceCoach = "coach"
)

const (
	PlanStatusActive    = "active"
	PlanStatusCompleted = "completed"
	PlanStatusArchived  = "archived"
)

// TrainingPlan holds a structured weeks -> workouts schedule. Plans are
// either generated from the user's profile by the AI planner or authored
// by a coach for a client.
type TrainingPlan struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	CoachID   *int64     `json:"coach_id,omitempty"`
	Title     string     `json:"title"`
	Goal      *string    `json:"goal,omitempty"`
	Source    string     `json:"source"`
	Status    string     `json:"status"`
	Weeks     []PlanWeek `json:"weeks"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type PlanWeek struct {
	Number   int           `json:"number"`
	Focus    string        `json:"focus,omitempty"`
	Workouts []PlanWorkout `json:"workouts"`
}

type PlanWorkout struct {
	Day             int     `json:"day"`
	Type            string  `json:"type"`
	Description     string  `json:"description"`
	DurationMinutes int     `json:"duration_minutes"`
	DistanceKM      float64 `json:"distance_km,omitempty"`
}
