package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/MartinT518/MomentumTracker-sub004/internal/models"
	"github.com/MartinT518/MomentumTracker-sub004/internal/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

var allowedGoalStatuses = map[string]struct{}{
	models.GoalStatusActive:    {},
	models.GoalStatusCompleted: {},
	models.GoalStatusAbandoned: {},
}

type GoalHandler struct {
	goalRepo *repository.GoalRepository
}

func NewGoalHandler(goalRepo *repository.GoalRepository) *GoalHandler {
	return &GoalHandler{goalRepo: goalRepo}
}

type createGoalRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Metric      string  `json:"metric"`
	TargetValue float64 `json:"target_value"`
	Deadline    *string `json:"deadline"`
}

type updateGoalRequest struct {
	Title        *string  `json:"title"`
	Description  *string  `json:"description"`
	TargetValue  *float64 `json:"target_value"`
	CurrentValue *float64 `json:"current_value"`
	Deadline     *string  `json:"deadline"`
	Status       *string  `json:"status"`
}

type goalProgressRequest struct {
	Delta float64 `json:"delta"`
}

func (h *GoalHandler) Create(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Title) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title is required"})
	}
	if strings.TrimSpace(req.Metric) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "metric is required"})
	}
	if req.TargetValue <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "target_value must be greater than 0"})
	}

	var deadline *time.Time
	if req.Deadline != nil {
		parsed, err := time.Parse(time.RFC3339, *req.Deadline)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "deadline must be an RFC3339 timestamp"})
		}
		if parsed.Before(time.Now()) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "deadline must be in the future"})
		}
		deadline = &parsed
	}

	goal, err := h.goalRepo.Create(c.Context(), &models.Goal{
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Metric:      strings.TrimSpace(req.Metric),
		TargetValue: req.TargetValue,
		Deadline:    deadline,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create goal"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"goal": goal})
}

func (h *GoalHandler) List(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	status := c.Query("status")
	if status != "" {
		if _, ok := allowedGoalStatuses[status]; !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status filter"})
		}
	}

	goals, err := h.goalRepo.ListByUserID(c.Context(), userID, status)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list goals"})
	}

	return c.JSON(fiber.Map{"goals": goals})
}

func (h *GoalHandler) Get(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	goalID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || goalID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid goal id"})
	}

	goal, err := h.goalRepo.GetByIDForUser(c.Context(), goalID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Goal not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch goal"})
	}

	return c.JSON(fiber.Map{"goal": goal})
}

func (h *GoalHandler) Update(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	goalID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || goalID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid goal id"})
	}

	var req updateGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title must not be empty"})
	}
	if req.TargetValue != nil && *req.TargetValue <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "target_value must be greater than 0"})
	}
	if req.CurrentValue != nil && *req.CurrentValue < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "current_value must be 0 or greater"})
	}
	if req.Deadline != nil {
		if _, err := time.Parse(time.RFC3339, *req.Deadline); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "deadline must be an RFC3339 timestamp"})
		}
	}
	if req.Status != nil {
		if _, ok := allowedGoalStatuses[*req.Status]; !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status"})
		}
	}

	goal, err := h.goalRepo.UpdatePartial(c.Context(), goalID, userID, repository.UpdateGoalInput{
		Title:        req.Title,
		Description:  req.Description,
		TargetValue:  req.TargetValue,
		CurrentValue: req.CurrentValue,
		Deadline:     req.Deadline,
		Status:       req.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Goal not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update goal"})
	}

	return c.JSON(fiber.Map{"goal": goal})
}

// AddProgress bumps the goal's current value; completion happens in the
// database when the target is reached.
func (h *GoalHandler) AddProgress(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	goalID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || goalID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid goal id"})
	}

	var req goalProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Delta <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "delta must be greater than 0"})
	}

	goal, err := h.goalRepo.AddProgress(c.Context(), goalID, userID, req.Delta)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Active goal not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record progress"})
	}

	return c.JSON(fiber.Map{"goal": goal})
}

func (h *GoalHandler) Delete(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	goalID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || goalID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid goal id"})
	}

	deleted, err := h.goalRepo.Delete(c.Context(), goalID, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete goal"})
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Goal not found"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
