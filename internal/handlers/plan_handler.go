package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/MartinT518/MomentumTracker-sub004/internal/models"
	"github.com/MartinT518/MomentumTracker-sub004/internal/repository"
	"github.com/MartinT518/MomentumTracker-sub004/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type planGenerator interface {
	GeneratePlan(ctx context.Context, userID int64, input services.GeneratePlanInput) (*models.TrainingPlan, error)
}

type PlanHandler struct {
	db       *pgxpool.Pool
	planner  planGenerator
	planRepo *repository.TrainingPlanRepository
	userRepo *repository.UserRepository
}

func NewPlanHandler(
	db *pgxpool.Pool,
	planner planGenerator,
	planRepo *repository.TrainingPlanRepository,
	userRepo *repository.UserRepository,
) *PlanHandler {
	return &PlanHandler{
		db:       db,
		planner:  planner,
		planRepo: planRepo,
		userRepo: userRepo,
	}
}

type generatePlanRequest struct {
	Goal  string `json:"goal"`
	Weeks int    `json:"weeks"`
	Notes string `json:"notes"`
}

type createCoachPlanRequest struct {
	UserID int64             `json:"user_id"`
	Title  string            `json:"title"`
	Goal   *string           `json:"goal"`
	Weeks  []models.PlanWeek `json:"weeks"`
}

type updatePlanStatusRequest struct {
	Status string `json:"status"`
}

// Generate asks the AI planner for a schedule. The route sits behind the
// premium gate and the per-user rate limiter.
func (h *PlanHandler) Generate(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleUser {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req generatePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	plan, err := h.planner.GeneratePlan(c.Context(), userID, services.GeneratePlanInput{
		Goal:  req.Goal,
		Weeks: req.Weeks,
		Notes: req.Notes,
	})
	if err != nil {
		return mapPlanError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"plan": plan})
}

// CreateCoachPlan lets a coach hand-author a plan for a client. The client's
// current active plan is archived in the same transaction.
func (h *PlanHandler) CreateCoachPlan(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleCoach {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	coachID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createCoachPlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.UserID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
	}
	if strings.TrimSpace(req.Title) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title is required"})
	}
	if err := services.ValidatePlanWeeks(req.Weeks); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "weeks must contain valid workouts"})
	}

	client, err := h.userRepo.GetByID(c.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to lookup user"})
	}
	if client.Role != models.RoleUser {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Plans can only be assigned to users"})
	}

	tx, err := h.db.Begin(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create plan"})
	}
	defer func() {
		_ = tx.Rollback(c.Context())
	}()

	txPlanRepo := repository.NewTrainingPlanRepository(tx)
	if err := txPlanRepo.ArchiveActiveForUser(c.Context(), req.UserID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create plan"})
	}

	plan, err := txPlanRepo.Create(c.Context(), repository.CreateTrainingPlanInput{
		UserID:  req.UserID,
		CoachID: &coachID,
		Title:   strings.TrimSpace(req.Title),
		Goal:    req.Goal,
		Source:  models.PlanSourceCoach,
		Weeks:   req.Weeks,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create plan"})
	}

	if err := tx.Commit(c.Context()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create plan"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"plan": plan})
}

func (h *PlanHandler) List(c *fiber.Ctx) error {
	role, _ := c.Locals("role").(string)
	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var plans []models.TrainingPlan
	if role == models.RoleCoach {
		plans, err = h.planRepo.ListByCoachID(c.Context(), actorID)
	} else {
		plans, err = h.planRepo.ListByUserID(c.Context(), actorID)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list plans"})
	}

	return c.JSON(fiber.Map{"plans": plans})
}

func (h *PlanHandler) Get(c *fiber.Ctx) error {
	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	planID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || planID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid plan id"})
	}

	plan, err := h.planRepo.GetByID(c.Context(), planID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Plan not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch plan"})
	}

	if plan.UserID != actorID && (plan.CoachID == nil || *plan.CoachID != actorID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	return c.JSON(fiber.Map{"plan": plan})
}

func (h *PlanHandler) UpdateStatus(c *fiber.Ctx) error {
	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	planID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || planID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid plan id"})
	}

	var req updatePlanStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	switch req.Status {
	case models.PlanStatusActive, models.PlanStatusCompleted, models.PlanStatusArchived:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status"})
	}

	plan, err := h.planRepo.GetByID(c.Context(), planID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Plan not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch plan"})
	}
	if plan.UserID != actorID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	// Re-activating a plan retires whichever plan is currently active.
	if req.Status == models.PlanStatusActive && plan.Status != models.PlanStatusActive {
		if err := h.planRepo.ArchiveActiveForUser(c.Context(), actorID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update plan"})
		}
	}

	updated, err := h.planRepo.UpdateStatus(c.Context(), planID, req.Status)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update plan"})
	}

	return c.JSON(fiber.Map{"plan": updated})
}

func (h *PlanHandler) Delete(c *fiber.Ctx) error {
	actorID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	planID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || planID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid plan id"})
	}

	deleted, err := h.planRepo.Delete(c.Context(), planID, actorID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete plan"})
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Plan not found"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func mapPlanError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrAIUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Plan generation is not available"})
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid plan request"})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate plan"})
	}
}
