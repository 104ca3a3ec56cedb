package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MartinT518/MomentumTracker-sub004/internal/models"
	"github.com/gofiber/fiber/v2"
)

type stubUserReader struct {
	user *models.User
}

func (s *stubUserReader) GetByID(_ context.Context, _ int64) (*models.User, error) {
	return s.user, nil
}

func newPremiumTestApp(user *models.User, userID string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	})
	app.Get("/premium", RequirePremium(&stubUserReader{user: user}), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app
}

func TestRequirePremiumAllowsActiveSubscriber(t *testing.T) {
	app := newPremiumTestApp(&models.User{
		SubscriptionTier:   models.TierPremiumMonthly,
		SubscriptionStatus: models.SubscriptionStatusActive,
	}, "1")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/premium", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestRequirePremiumBlocksFreeTier(t *testing.T) {
	app := newPremiumTestApp(&models.User{
		SubscriptionTier:   models.TierFree,
		SubscriptionStatus: models.SubscriptionStatusNone,
	}, "1")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/premium", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestRequirePremiumBlocksPastDueSubscription(t *testing.T) {
	app := newPremiumTestApp(&models.User{
		SubscriptionTier:   models.TierPremiumAnnual,
		SubscriptionStatus: models.SubscriptionStatusPastDue,
	}, "1")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/premium", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestRequirePremiumRejectsMissingIdentity(t *testing.T) {
	app := newPremiumTestApp(&models.User{}, "")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/premium", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}
