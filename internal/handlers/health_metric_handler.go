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

const defaultMetricLimit = 100

var allowedMetricTypes = map[string]string{
	"weight":             "kg",
	"resting_heart_rate": "bpm",
	"sleep_hours":        "hours",
	"hrv":                "ms",
	"body_fat":           "percent",
	"vo2_max":            "ml/kg/min",
}

type HealthMetricHandler struct {
	metricRepo *repository.HealthMetricRepository
}

func NewHealthMetricHandler(metricRepo *repository.HealthMetricRepository) *HealthMetricHandler {
	return &HealthMetricHandler{metricRepo: metricRepo}
}

type createHealthMetricRequest struct {
	Type       string  `json:"type"`
	Value      float64 `json:"value"`
	Unit       string  `json:"unit"`
	RecordedAt string  `json:"recorded_at"`
}

func (h *HealthMetricHandler) Create(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createHealthMetricRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	metricType := strings.TrimSpace(req.Type)
	defaultUnit, ok := allowedMetricTypes[metricType]
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unsupported metric type"})
	}
	if req.Value <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "value must be greater than 0"})
	}

	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = defaultUnit
	}

	recordedAt := time.Now().UTC()
	if req.RecordedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.RecordedAt)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "recorded_at must be an RFC3339 timestamp"})
		}
		recordedAt = parsed
	}

	metric, err := h.metricRepo.Create(c.Context(), &models.HealthMetric{
		UserID:     userID,
		Type:       metricType,
		Value:      req.Value,
		Unit:       unit,
		RecordedAt: recordedAt,
		Source:     manualActivitySource,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record metric"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"metric": metric})
}

func (h *HealthMetricHandler) List(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	metricType := c.Query("type")
	if metricType != "" {
		if _, ok := allowedMetricTypes[metricType]; !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unsupported metric type"})
		}
	}

	var after *time.Time
	if raw := c.Query("after"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "after must be an RFC3339 timestamp"})
		}
		after = &parsed
	}

	limit := parsePositiveInt(c.Query("limit"), defaultMetricLimit)
	if limit > 500 {
		limit = 500
	}

	metrics, err := h.metricRepo.ListByUserID(c.Context(), userID, metricType, after, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list metrics"})
	}

	return c.JSON(fiber.Map{"metrics": metrics})
}

// Latest returns the newest reading per requested type, for the dashboard
// header cards.
func (h *HealthMetricHandler) Latest(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	metricType := c.Query("type")
	if _, ok := allowedMetricTypes[metricType]; !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unsupported metric type"})
	}

	metric, err := h.metricRepo.Latest(c.Context(), userID, metricType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No readings for this metric"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch metric"})
	}

	return c.JSON(fiber.Map{"metric": metric})
}

func (h *HealthMetricHandler) Delete(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	metricID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || metricID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid metric id"})
	}

	deleted, err := h.metricRepo.Delete(c.Context(), metricID, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete metric"})
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Metric not found"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
