package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MartinT518/MomentumTracker-sub004/internal/models"
	"github.com/MartinT518/MomentumTracker-sub004/internal/services"
	"github.com/gofiber/fiber/v2"
	stripe "github.com/stripe/stripe-go/v76"
)

type stubBillingService struct {
	plans       []models.SubscriptionPlan
	checkout    *services.SubscriptionCheckout
	checkoutErr error
	cancelUser  *models.User
	cancelErr   error
	lastUserID  int64
	lastTier    string
}

func (s *stubBillingService) ListPlans(_ context.Context) ([]models.SubscriptionPlan, error) {
	return s.plans, nil
}

func (s *stubBillingService) StartSubscription(_ context.Context, userID int64, tier string) (*services.SubscriptionCheckout, error) {
	s.lastUserID = userID
	s.lastTier = tier
	return s.checkout, s.checkoutErr
}

func (s *stubBillingService) CancelSubscription(_ context.Context, userID int64) (*models.User, error) {
	s.lastUserID = userID
	return s.cancelUser, s.cancelErr
}

func (s *stubBillingService) ApplyEvent(_ context.Context, _ stripe.Event) error {
	return nil
}

func newBillingTestApp(service billingApplicationService, webhookSecret, role string) *fiber.App {
	handler := &BillingHandler{service: service, webhookSecret: webhookSecret}

	app := fiber.New()
	app.Post("/api/v1/billing/webhook", handler.Webhook)
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		c.Locals("user_id", "42")
		return c.Next()
	})
	app.Get("/api/v1/billing/plans", handler.ListPlans)
	app.Post("/api/v1/billing/subscribe", handler.Subscribe)
	app.Post("/api/v1/billing/cancel", handler.Cancel)
	return app
}

func TestListPlansReturnsCatalog(t *testing.T) {
	service := &stubBillingService{
		plans: []models.SubscriptionPlan{
			{Tier: models.TierFree, Name: "Free"},
			{Tier: models.TierPremiumMonthly, Name: "Premium Monthly", PriceCents: 999},
		},
	}
	app := newBillingTestApp(service, "", "user")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/billing/plans", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Plans []models.SubscriptionPlan `json:"plans"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Plans) != 2 {
		t.Fatalf("expected 2 plans, got %d", len(body.Plans))
	}
}

func TestSubscribeStartsCheckout(t *testing.T) {
	service := &stubBillingService{
		checkout: &services.SubscriptionCheckout{
			SubscriptionID: "sub_1",
			ClientSecret:   "pi_secret",
			Tier:           models.TierPremiumMonthly,
		},
	}
	app := newBillingTestApp(service, "", "user")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/subscribe",
		strings.NewReader(`{"tier": "premium_monthly"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastUserID != 42 {
		t.Fatalf("expected user 42, got %d", service.lastUserID)
	}
	if service.lastTier != models.TierPremiumMonthly {
		t.Fatalf("expected tier premium_monthly, got %s", service.lastTier)
	}
}

func TestSubscribeForbiddenForCoaches(t *testing.T) {
	app := newBillingTestApp(&stubBillingService{}, "", "coach")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/subscribe",
		strings.NewReader(`{"tier": "premium_monthly"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestSubscribeMapsBillingUnavailable(t *testing.T) {
	service := &stubBillingService{checkoutErr: services.ErrBillingUnavailable}
	app := newBillingTestApp(service, "", "user")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/subscribe",
		strings.NewReader(`{"tier": "premium_monthly"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

func TestWebhookWithoutSecretIsUnavailable(t *testing.T) {
	app := newBillingTestApp(&stubBillingService{}, "", "user")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/webhook", strings.NewReader(`{}`))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	app := newBillingTestApp(&stubBillingService{}, "whsec_test", "user")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/webhook", strings.NewReader(`{"type": "noop"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
