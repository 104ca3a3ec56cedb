package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/MartinT518/MomentumTracker-sub004/internal/models"
	"github.com/MartinT518/MomentumTracker-sub004/internal/repository"
	"github.com/MartinT518/MomentumTracker-sub004/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

const manualActivitySource = "manual"

type ActivityHandler struct {
	activityRepo *repository.ActivityRepository
	achievements *services.AchievementService
}

func NewActivityHandler(
	activityRepo *repository.ActivityRepository,
	achievements *services.AchievementService,
) *ActivityHandler {
	return &ActivityHandler{
		activityRepo: activityRepo,
		achievements: achievements,
	}
}

type createActivityRequest struct {
	Type            string   `json:"type"`
	Title           *string  `json:"title"`
	StartedAt       string   `json:"started_at"`
	DurationMinutes int      `json:"duration_minutes"`
	DistanceKM      *float64 `json:"distance_km"`
	Calories        *int     `json:"calories"`
	AvgHeartRate    *int     `json:"avg_heart_rate"`
	Notes           *string  `json:"notes"`
}

func (h *ActivityHandler) Create(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createActivityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Type) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "type is required"})
	}
	startedAt, err := time.Parse(time.RFC3339, req.StartedAt)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "started_at must be an RFC3339 timestamp"})
	}
	if startedAt.After(time.Now().Add(time.Minute)) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "started_at must not be in the future"})
	}
	if req.DurationMinutes <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "duration_minutes must be greater than 0"})
	}
	if req.DistanceKM != nil && *req.DistanceKM < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "distance_km must be 0 or greater"})
	}
	if req.Calories != nil && *req.Calories < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "calories must be 0 or greater"})
	}
	if req.AvgHeartRate != nil && (*req.AvgHeartRate <= 0 || *req.AvgHeartRate > 250) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avg_heart_rate must be between 1 and 250"})
	}

	activity, err := h.activityRepo.Create(c.Context(), &models.Activity{
		UserID:          userID,
		Type:            strings.TrimSpace(req.Type),
		Title:           req.Title,
		StartedAt:       startedAt,
		DurationMinutes: req.DurationMinutes,
		DistanceKM:      req.DistanceKM,
		Calories:        req.Calories,
		AvgHeartRate:    req.AvgHeartRate,
		Source:          manualActivitySource,
		Notes:           req.Notes,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to log activity"})
	}

	if h.achievements != nil {
		h.achievements.EvaluateAsync(userID)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"activity": activity})
}

func (h *ActivityHandler) List(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	page, limit := pageAndLimit(c)

	var after, before *time.Time
	if raw := c.Query("after"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "after must be an RFC3339 timestamp"})
		}
		after = &parsed
	}
	if raw := c.Query("before"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "before must be an RFC3339 timestamp"})
		}
		before = &parsed
	}

	activities, total, err := h.activityRepo.ListByUserID(c.Context(), userID, repository.ActivityListFilter{
		Type:   c.Query("type"),
		After:  after,
		Before: before,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list activities"})
	}

	return c.JSON(fiber.Map{
		"activities": activities,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *ActivityHandler) Get(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	activityID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || activityID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid activity id"})
	}

	activity, err := h.activityRepo.GetByIDForUser(c.Context(), activityID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Activity not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch activity"})
	}

	return c.JSON(fiber.Map{"activity": activity})
}

// Totals backs the dashboard summary tiles.
func (h *ActivityHandler) Totals(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	totals, err := h.activityRepo.TotalsForUser(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute totals"})
	}

	return c.JSON(fiber.Map{"totals": totals})
}

func (h *ActivityHandler) Delete(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	activityID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || activityID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid activity id"})
	}

	deleted, err := h.activityRepo.Delete(c.Context(), activityID, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete activity"})
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Activity not found"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
