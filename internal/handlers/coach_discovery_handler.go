package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/MartinT518/MomentumTracker-sub004/internal/models"
	"github.com/MartinT518/MomentumTracker-sub004/internal/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type coachMatchmaker interface {
	GetMatchedCoaches(ctx context.Context, userProfile *models.UserProfile, limit int) ([]models.CoachWithScore, error)
}

type CoachDiscoveryHandler struct {
	coachProfileRepo *repository.CoachProfileRepository
	userProfileRepo  *repository.UserProfileRepository
	matchmaking      coachMatchmaker
}

func NewCoachDiscoveryHandler(
	coachProfileRepo *repository.CoachProfileRepository,
	userProfileRepo *repository.UserProfileRepository,
	matchmaking coachMatchmaker,
) *CoachDiscoveryHandler {
	return &CoachDiscoveryHandler{
		coachProfileRepo: coachProfileRepo,
		userProfileRepo:  userProfileRepo,
		matchmaking:      matchmaking,
	}
}

// List is the browsable coach directory with optional filters.
func (h *CoachDiscoveryHandler) List(c *fiber.Ctx) error {
	page, limit := pageAndLimit(c)

	var maxRate *float64
	if raw := c.Query("max_hourly_rate"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "max_hourly_rate must be greater than 0"})
		}
		maxRate = &parsed
	}

	coaches, total, err := h.coachProfileRepo.List(c.Context(), repository.CoachListFilter{
		Specialization: c.Query("specialization"),
		MaxHourlyRate:  maxRate,
		VerifiedOnly:   c.QueryBool("verified"),
		Limit:          limit,
		Offset:         (page - 1) * limit,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list coaches"})
	}

	return c.JSON(fiber.Map{
		"coaches":    coaches,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *CoachDiscoveryHandler) Get(c *fiber.Ctx) error {
	coachID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || coachID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid coach id"})
	}

	coach, err := h.coachProfileRepo.GetByUserID(c.Context(), coachID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Coach not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch coach"})
	}
	if !coach.OnboardingComplete {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Coach not found"})
	}

	return c.JSON(fiber.Map{"coach": coach})
}

// Matches ranks coaches against the caller's profile.
func (h *CoachDiscoveryHandler) Matches(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleUser {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	profile, err := h.userProfileRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}
	if !profile.OnboardingComplete {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Complete onboarding to get coach matches"})
	}

	limit := parsePositiveInt(c.Query("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	matches, err := h.matchmaking.GetMatchedCoaches(c.Context(), profile, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to match coaches"})
	}

	return c.JSON(fiber.Map{"matches": matches})
}
