package middleware

import (
	"context"
	"strconv"

	"github.com/MartinT518/MomentumTracker-sub004/internal/models"
	"github.com/gofiber/fiber/v2"
)

type subscriptionReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// RequirePremium gates a route behind an active premium subscription. Runs
// after AuthRequired.
func RequirePremium(users subscriptionReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userIDStr, _ := c.Locals("user_id").(string)
		userID, err := strconv.ParseInt(userIDStr, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		user, err := users.GetByID(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to load user",
			})
		}

		if !user.IsPremium() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Premium subscription required",
			})
		}

		return c.Next()
	}
}
