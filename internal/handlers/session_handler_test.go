package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MartinT518/MomentumTracker-sub004/internal/models"
	"github.com/MartinT518/MomentumTracker-sub004/internal/repository"
	"github.com/MartinT518/MomentumTracker-sub004/internal/services"
	"github.com/gofiber/fiber/v2"
)

type stubSessionService struct {
	bookResult     *models.SessionDetail
	bookErr        error
	listResult     []models.SessionDetail
	listErr        error
	getResult      *models.SessionDetail
	getErr         error
	updateResult   *models.CoachingSession
	updateErr      error
	payResult      *services.SessionPaymentIntent
	payErr         error
	lastActorID    int64
	lastRole       string
	lastSessionID  int64
	lastStatus     string
	lastBookInput  services.BookSessionInput
	lastListFilter repository.SessionListFilter
}

func (s *stubSessionService) BookSession(_ context.Context, userID int64, input services.BookSessionInput) (*models.SessionDetail, error) {
	s.lastActorID = userID
	s.lastBookInput = input
	return s.bookResult, s.bookErr
}

func (s *stubSessionService) ListSessions(_ context.Context, actorID int64, role string, filter repository.SessionListFilter) ([]models.SessionDetail, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastListFilter = filter
	return s.listResult, s.listErr
}

func (s *stubSessionService) GetSession(_ context.Context, actorID int64, sessionID int64) (*models.SessionDetail, error) {
	s.lastActorID = actorID
	s.lastSessionID = sessionID
	return s.getResult, s.getErr
}

func (s *stubSessionService) UpdateStatus(_ context.Context, actorID int64, role string, sessionID int64, nextStatus string) (*models.CoachingSession, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastSessionID = sessionID
	s.lastStatus = nextStatus
	return s.updateResult, s.updateErr
}

func (s *stubSessionService) PayForSession(_ context.Context, actorID int64, sessionID int64) (*services.SessionPaymentIntent, error) {
	s.lastActorID = actorID
	s.lastSessionID = sessionID
	return s.payResult, s.payErr
}

func newSessionTestApp(service sessionBookingService, role string) *fiber.App {
	handler := &SessionHandler{service: service}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		c.Locals("user_id", "42")
		return c.Next()
	})
	app.Post("/api/v1/sessions/book", handler.Book)
	app.Get("/api/v1/sessions", handler.List)
	app.Get("/api/v1/sessions/:id", handler.Get)
	app.Put("/api/v1/sessions/:id/status", handler.UpdateStatus)
	app.Post("/api/v1/sessions/:id/pay", handler.Pay)
	return app
}

func TestBookSessionReturnsCreatedSession(t *testing.T) {
	service := &stubSessionService{
		bookResult: &models.SessionDetail{
			CoachingSession: models.CoachingSession{
				ID:              91,
				UserID:          42,
				CoachID:         7,
				Status:          models.SessionStatusPending,
				DurationMinutes: 60,
			},
		},
	}
	app := newSessionTestApp(service, "user")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/book", strings.NewReader(`{
		"coach_id": 7,
		"scheduled_at": "2026-09-15T09:00:00Z",
		"duration_minutes": 60,
		"notes": "focus on mobility"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastActorID != 42 {
		t.Fatalf("expected actor id 42, got %d", service.lastActorID)
	}
	if service.lastBookInput.CoachID != 7 {
		t.Fatalf("expected coach id 7, got %d", service.lastBookInput.CoachID)
	}

	var body struct {
		Session models.SessionDetail `json:"session"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Session.ID != 91 {
		t.Fatalf("expected session 91, got %d", body.Session.ID)
	}
}

func TestBookSessionForbiddenForCoaches(t *testing.T) {
	app := newSessionTestApp(&stubSessionService{}, "coach")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/book", strings.NewReader(`{"coach_id": 7}`))
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

func TestBookSessionRejectsBadTimestamp(t *testing.T) {
	app := newSessionTestApp(&stubSessionService{}, "user")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/book", strings.NewReader(`{
		"coach_id": 7,
		"scheduled_at": "tomorrow",
		"duration_minutes": 60
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestBookSessionMapsBookingConflict(t *testing.T) {
	service := &stubSessionService{bookErr: services.ErrConflict}
	app := newSessionTestApp(service, "user")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/book", strings.NewReader(`{
		"coach_id": 7,
		"scheduled_at": "2026-09-15T09:00:00Z",
		"duration_minutes": 60
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestListSessionsRejectsUnknownStatusFilter(t *testing.T) {
	app := newSessionTestApp(&stubSessionService{}, "user")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions?status=snoozed", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestListSessionsPassesFilter(t *testing.T) {
	service := &stubSessionService{listResult: []models.SessionDetail{}}
	app := newSessionTestApp(service, "coach")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions?status=confirmed&timeframe=upcoming", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastRole != "coach" {
		t.Fatalf("expected coach role passed through, got %q", service.lastRole)
	}
	if service.lastListFilter.Status != "confirmed" || service.lastListFilter.Timeframe != "upcoming" {
		t.Fatalf("unexpected filter %+v", service.lastListFilter)
	}
}

func TestUpdateSessionStatusMapsInvalidTransition(t *testing.T) {
	service := &stubSessionService{updateErr: services.ErrInvalidStateTransition}
	app := newSessionTestApp(service, "coach")

	req := httptest.NewRequest(http.MethodPut, "/api/v1/sessions/91/status", strings.NewReader(`{"status": "confirmed"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	if service.lastSessionID != 91 || service.lastStatus != "confirmed" {
		t.Fatalf("expected status update for session 91, got %d/%s", service.lastSessionID, service.lastStatus)
	}
}

func TestPaySessionReturnsClientSecret(t *testing.T) {
	service := &stubSessionService{
		payResult: &services.SessionPaymentIntent{
			Payment:      &models.Payment{ID: 3, Status: models.PaymentStatusPending},
			ClientSecret: "pi_secret",
		},
	}
	app := newSessionTestApp(service, "user")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/91/pay", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		ClientSecret string `json:"client_secret"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.ClientSecret != "pi_secret" {
		t.Fatalf("expected client secret, got %q", body.ClientSecret)
	}
}

func TestPaySessionWithoutGatewayIsUnavailable(t *testing.T) {
	service := &stubSessionService{payErr: services.ErrBillingUnavailable}
	app := newSessionTestApp(service, "user")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/91/pay", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}
