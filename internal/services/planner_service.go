package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/MartinT518/MomentumTracker-sub004/internal/models"
	"github.com/MartinT518/MomentumTracker-sub004/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	openai "github.com/sashabaranov/go-openai"
)

const (
	minPlanWeeks = 1
	maxPlanWeeks = 16
)

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type planStore interface {
	Create(ctx context.Context, input repository.CreateTrainingPlanInput) (*models.TrainingPlan, error)
	ArchiveActiveForUser(ctx context.Context, userID int64) error
}

type profileReader interface {
	GetByUserID(ctx context.Context, userID int64) (*models.UserProfile, error)
}

// PlannerService builds a prompt from the user's profile, asks the model
// for a structured schedule and persists the parsed result. With no API
// key configured the service reports ErrAIUnavailable.
type PlannerService struct {
	db          *pgxpool.Pool
	client      chatCompleter
	model       string
	planRepo    planStore
	profileRepo profileReader
}

func NewPlannerService(
	db *pgxpool.Pool,
	client chatCompleter,
	model string,
	planRepo planStore,
	profileRepo profileReader,
) *PlannerService {
	return &PlannerService{
		db:          db,
		client:      client,
		model:       model,
		planRepo:    planRepo,
		profileRepo: profileRepo,
	}
}

type GeneratePlanInput struct {
	Goal  string
	Weeks int
	Notes string
}

func (s *PlannerService) GeneratePlan(ctx context.Context, userID int64, input GeneratePlanInput) (*models.TrainingPlan, error) {
	if s.client == nil {
		return nil, ErrAIUnavailable
	}
	if strings.TrimSpace(input.Goal) == "" {
		return nil, ErrInvalidInput
	}
	if input.Weeks < minPlanWeeks || input.Weeks > maxPlanWeeks {
		return nil, ErrInvalidInput
	}

	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	prompt := BuildPlanPrompt(profile, input)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You are a running and fitness coach. Respond with a single JSON object " +
					`of the form {"weeks": [{"number": 1, "focus": "...", "workouts": ` +
					`[{"day": 1, "type": "easy_run", "description": "...", "duration_minutes": 40, "distance_km": 6}]}]}. ` +
					"Days are 1 (Monday) through 7 (Sunday). Do not include any prose outside the JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("plan generation: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("plan generation: empty response")
	}

	weeks, err := ParsePlanResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txPlanRepo := repository.NewTrainingPlanRepository(tx)
	if err := txPlanRepo.ArchiveActiveForUser(ctx, userID); err != nil {
		return nil, err
	}

	goal := input.Goal
	plan, err := txPlanRepo.Create(ctx, repository.CreateTrainingPlanInput{
		UserID: userID,
		Title:  planTitle(input),
		Goal:   &goal,
		Source: models.PlanSourceAI,
		Weeks:  weeks,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return plan, nil
}

func planTitle(input GeneratePlanInput) string {
	return fmt.Sprintf("%d-week plan: %s", input.Weeks, strings.TrimSpace(input.Goal))
}

// BuildPlanPrompt renders the user prompt sent to the model. Unset profile
// fields are simply omitted.
func BuildPlanPrompt(profile *models.UserProfile, input GeneratePlanInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a %d-week training plan for the goal: %s.\n", input.Weeks, strings.TrimSpace(input.Goal))

	if profile != nil {
		if profile.Age != nil {
			fmt.Fprintf(&b, "Age: %d.\n", *profile.Age)
		}
		if profile.FitnessLevel != nil {
			fmt.Fprintf(&b, "Fitness level: %s.\n", *profile.FitnessLevel)
		}
		if profile.HeightCM != nil && profile.WeightKG != nil {
			fmt.Fprintf(&b, "Height: %.0f cm, weight: %.1f kg.\n", *profile.HeightCM, *profile.WeightKG)
		}
		if profile.WeeklySessions != nil && *profile.WeeklySessions > 0 {
			fmt.Fprintf(&b, "Preferred sessions per week: %d.\n", *profile.WeeklySessions)
		}
		if profile.Goals != nil && len(*profile.Goals) > 0 {
			fmt.Fprintf(&b, "Long-term goals: %s.\n", strings.Join(*profile.Goals, ", "))
		}
		if profile.MedicalConditions != nil && strings.TrimSpace(*profile.MedicalConditions) != "" {
			fmt.Fprintf(&b, "Medical considerations: %s.\n", *profile.MedicalConditions)
		}
	}

	if notes := strings.TrimSpace(input.Notes); notes != "" {
		fmt.Fprintf(&b, "Additional notes: %s.\n", notes)
	}

	return b.String()
}

// ParsePlanResponse extracts and validates the weeks array from a model
// response. Markdown code fences around the JSON are tolerated.
func ParsePlanResponse(content string) ([]models.PlanWeek, error) {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var payload struct {
		Weeks []models.PlanWeek `json:"weeks"`
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("parse plan response: %w", err)
	}

	if err := validatePlanWeeks(payload.Weeks); err != nil {
		return nil, err
	}
	return payload.Weeks, nil
}

func validatePlanWeeks(weeks []models.PlanWeek) error {
	if len(weeks) == 0 {
		return fmt.Errorf("parse plan response: no weeks")
	}
	for i, week := range weeks {
		if len(week.Workouts) == 0 {
			return fmt.Errorf("parse plan response: week %d has no workouts", i+1)
		}
		for _, workout := range week.Workouts {
			if workout.Day < 1 || workout.Day > 7 {
				return fmt.Errorf("parse plan response: week %d has workout on day %d", i+1, workout.Day)
			}
			if workout.DurationMinutes <= 0 {
				return fmt.Errorf("parse plan response: week %d has workout with no duration", i+1)
			}
		}
	}
	return nil
}

// ValidatePlanWeeks is the entry point used for coach-authored plans, which
// arrive already structured but get the same structural checks.
func ValidatePlanWeeks(weeks []models.PlanWeek) error {
	return validatePlanWeeks(weeks)
}
