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

var allowedMealTypes = map[string]struct{}{
	"breakfast": {},
	"lunch":     {},
	"dinner":    {},
	"snack":     {},
}

type NutritionHandler struct {
	nutritionRepo *repository.NutritionRepository
}

func NewNutritionHandler(nutritionRepo *repository.NutritionRepository) *NutritionHandler {
	return &NutritionHandler{nutritionRepo: nutritionRepo}
}

type createNutritionRequest struct {
	LoggedAt string   `json:"logged_at"`
	MealType string   `json:"meal_type"`
	Name     string   `json:"name"`
	Calories float64  `json:"calories"`
	ProteinG *float64 `json:"protein_g"`
	CarbsG   *float64 `json:"carbs_g"`
	FatG     *float64 `json:"fat_g"`
	Notes    *string  `json:"notes"`
}

type updateNutritionRequest struct {
	MealType *string  `json:"meal_type"`
	Name     *string  `json:"name"`
	Calories *float64 `json:"calories"`
	ProteinG *float64 `json:"protein_g"`
	CarbsG   *float64 `json:"carbs_g"`
	FatG     *float64 `json:"fat_g"`
	Notes    *string  `json:"notes"`
}

func validateMacro(value *float64, field string) string {
	if value != nil && *value < 0 {
		return field + " must be 0 or greater"
	}
	return ""
}

func (h *NutritionHandler) Create(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createNutritionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if _, ok := allowedMealTypes[req.MealType]; !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "meal_type must be one of: breakfast, lunch, dinner, snack"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}
	if req.Calories < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "calories must be 0 or greater"})
	}
	for field, value := range map[string]*float64{"protein_g": req.ProteinG, "carbs_g": req.CarbsG, "fat_g": req.FatG} {
		if msg := validateMacro(value, field); msg != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
		}
	}

	loggedAt := time.Now().UTC()
	if req.LoggedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.LoggedAt)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "logged_at must be an RFC3339 timestamp"})
		}
		loggedAt = parsed
	}

	entry, err := h.nutritionRepo.Create(c.Context(), &models.NutritionLog{
		UserID:   userID,
		LoggedAt: loggedAt,
		MealType: req.MealType,
		Name:     strings.TrimSpace(req.Name),
		Calories: req.Calories,
		ProteinG: req.ProteinG,
		CarbsG:   req.CarbsG,
		FatG:     req.FatG,
		Notes:    req.Notes,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to log meal"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"entry": entry})
}

func (h *NutritionHandler) List(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	page, limit := pageAndLimit(c)

	var day *time.Time
	if raw := c.Query("day"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "day must be a YYYY-MM-DD date"})
		}
		day = &parsed
	}

	entries, total, err := h.nutritionRepo.ListByUserID(c.Context(), userID, day, limit, (page-1)*limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list meals"})
	}

	return c.JSON(fiber.Map{
		"entries":    entries,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

// Summary rolls recent days up into per-day calorie and macro totals.
func (h *NutritionHandler) Summary(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	days := parsePositiveInt(c.Query("days"), 7)
	if days > 90 {
		days = 90
	}

	summaries, err := h.nutritionRepo.DailySummaries(c.Context(), userID, days)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to summarize nutrition"})
	}

	return c.JSON(fiber.Map{"days": summaries})
}

func (h *NutritionHandler) Update(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	entryID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || entryID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid entry id"})
	}

	var req updateNutritionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.MealType != nil {
		if _, ok := allowedMealTypes[*req.MealType]; !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "meal_type must be one of: breakfast, lunch, dinner, snack"})
		}
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name must not be empty"})
	}
	if req.Calories != nil && *req.Calories < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "calories must be 0 or greater"})
	}
	for field, value := range map[string]*float64{"protein_g": req.ProteinG, "carbs_g": req.CarbsG, "fat_g": req.FatG} {
		if msg := validateMacro(value, field); msg != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
		}
	}

	entry, err := h.nutritionRepo.UpdatePartial(c.Context(), entryID, userID, repository.UpdateNutritionInput{
		MealType: req.MealType,
		Name:     req.Name,
		Calories: req.Calories,
		ProteinG: req.ProteinG,
		CarbsG:   req.CarbsG,
		FatG:     req.FatG,
		Notes:    req.Notes,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Entry not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update entry"})
	}

	return c.JSON(fiber.Map{"entry": entry})
}

func (h *NutritionHandler) Delete(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	entryID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || entryID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid entry id"})
	}

	deleted, err := h.nutritionRepo.Delete(c.Context(), entryID, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete entry"})
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Entry not found"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
