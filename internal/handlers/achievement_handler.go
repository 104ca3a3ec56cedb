package handlers

import (
	"github.com/MartinT518/MomentumTracker-sub004/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AchievementHandler struct {
	service *services.AchievementService
}

func NewAchievementHandler(service *services.AchievementService) *AchievementHandler {
	return &AchievementHandler{service: service}
}

func (h *AchievementHandler) ListCatalog(c *fiber.Ctx) error {
	achievements, err := h.service.ListCatalog(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list achievements"})
	}
	return c.JSON(fiber.Map{"achievements": achievements})
}

func (h *AchievementHandler) ListEarned(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	earned, err := h.service.ListEarned(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list achievements"})
	}
	return c.JSON(fiber.Map{"achievements": earned})
}

// Evaluate re-checks milestones on demand and reports anything newly earned.
func (h *AchievementHandler) Evaluate(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	awarded, err := h.service.EvaluateForUser(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to evaluate achievements"})
	}
	return c.JSON(fiber.Map{"newly_earned": awarded})
}
