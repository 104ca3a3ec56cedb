package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/MartinT518/MomentumTracker-sub004/internal/services"
	"github.com/gofiber/fiber/v2"
)

type IntegrationHandler struct {
	service *services.SyncService
}

func NewIntegrationHandler(service *services.SyncService) *IntegrationHandler {
	return &IntegrationHandler{service: service}
}

type connectPlatformRequest struct {
	Platform     string  `json:"platform"`
	ExternalID   string  `json:"external_id"`
	AccessToken  string  `json:"access_token"`
	RefreshToken *string `json:"refresh_token"`
	ExpiresAt    *string `json:"expires_at"`
}

func (h *IntegrationHandler) Connect(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req connectPlatformRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	var expiresAt *time.Time
	if req.ExpiresAt != nil {
		parsed, err := time.Parse(time.RFC3339, *req.ExpiresAt)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "expires_at must be an RFC3339 timestamp"})
		}
		expiresAt = &parsed
	}

	account, err := h.service.ConnectPlatform(c.Context(), userID, services.ConnectPlatformInput{
		Platform:     strings.ToLower(strings.TrimSpace(req.Platform)),
		ExternalID:   strings.TrimSpace(req.ExternalID),
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		ExpiresAt:    expiresAt,
	})
	if err != nil {
		return mapIntegrationError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"integration": account})
}

func (h *IntegrationHandler) List(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	accounts, err := h.service.ListConnections(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list integrations"})
	}

	return c.JSON(fiber.Map{"integrations": accounts})
}

// Sync pulls new activities from the connected platform on demand.
func (h *IntegrationHandler) Sync(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	platform := strings.ToLower(c.Params("platform"))
	result, err := h.service.Sync(c.Context(), userID, platform)
	if err != nil {
		return mapIntegrationError(c, err)
	}

	return c.JSON(fiber.Map{"sync": result})
}

func (h *IntegrationHandler) Disconnect(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	platform := strings.ToLower(c.Params("platform"))
	if err := h.service.Disconnect(c.Context(), userID, platform); err != nil {
		return mapIntegrationError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func mapIntegrationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid integration request"})
	case errors.Is(err, services.ErrPlatformUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "This platform is not configured"})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Integration not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process integration request"})
	}
}
