package handlers

import (
	"context"
	"errors"
	"log"

	"github.com/MartinT518/MomentumTracker-sub004/internal/models"
	"github.com/MartinT518/MomentumTracker-sub004/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

type billingApplicationService interface {
	ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error)
	StartSubscription(ctx context.Context, userID int64, tier string) (*services.SubscriptionCheckout, error)
	CancelSubscription(ctx context.Context, userID int64) (*models.User, error)
	ApplyEvent(ctx context.Context, event stripe.Event) error
}

type BillingHandler struct {
	service       billingApplicationService
	webhookSecret string
}

func NewBillingHandler(service billingApplicationService, webhookSecret string) *BillingHandler {
	return &BillingHandler{
		service:       service,
		webhookSecret: webhookSecret,
	}
}

type subscribeRequest struct {
	Tier string `json:"tier"`
}

func (h *BillingHandler) ListPlans(c *fiber.Ctx) error {
	plans, err := h.service.ListPlans(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list plans"})
	}
	return c.JSON(fiber.Map{"plans": plans})
}

func (h *BillingHandler) Subscribe(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleUser {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req subscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	checkout, err := h.service.StartSubscription(c.Context(), userID, req.Tier)
	if err != nil {
		return mapBillingError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"checkout": checkout})
}

func (h *BillingHandler) Cancel(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	user, err := h.service.CancelSubscription(c.Context(), userID)
	if err != nil {
		return mapBillingError(c, err)
	}

	return c.JSON(fiber.Map{"user": userResponse(user)})
}

// Webhook verifies the Stripe signature and applies the event. Stripe
// retries non-2xx responses, so handler errors surface as 500.
func (h *BillingHandler) Webhook(c *fiber.Ctx) error {
	if h.webhookSecret == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Billing is not configured"})
	}

	event, err := webhook.ConstructEvent(c.Body(), c.Get("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid webhook signature"})
	}

	if err := h.service.ApplyEvent(c.Context(), event); err != nil {
		log.Printf("billing webhook %s: %v", event.Type, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to apply event"})
	}

	return c.JSON(fiber.Map{"received": true})
}

func mapBillingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrBillingUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Billing is not configured"})
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid billing request"})
	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "An active subscription already exists"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process billing request"})
	}
}
