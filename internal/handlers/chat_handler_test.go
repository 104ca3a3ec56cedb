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
)

type stubChatService struct {
	conversations []models.ConversationSummary
	conversation  *models.Conversation
	createErr     error
	messages      []models.ChatMessage
	messagesTotal int
	messagesErr   error
	lastActorID   int64
	lastRole      string
	lastCoachID   int64
	lastConvID    int64
	lastPage      int
	lastLimit     int
}

func (s *stubChatService) ListConversations(_ context.Context, actorID int64, role string) ([]models.ConversationSummary, error) {
	s.lastActorID = actorID
	s.lastRole = role
	return s.conversations, nil
}

func (s *stubChatService) CreateConversation(_ context.Context, actorID int64, role string, coachID int64) (*models.Conversation, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastCoachID = coachID
	return s.conversation, s.createErr
}

func (s *stubChatService) ListMessages(_ context.Context, actorID int64, role string, conversationID int64, page int, limit int) ([]models.ChatMessage, int, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastConvID = conversationID
	s.lastPage = page
	s.lastLimit = limit
	return s.messages, s.messagesTotal, s.messagesErr
}

func (s *stubChatService) SendMessage(_ context.Context, _ int64, _ string, _ int64, _ string) (*services.ChatDelivery, error) {
	return nil, nil
}

func (s *stubChatService) ConversationPeer(_ context.Context, _, _ int64) (int64, error) {
	return 0, nil
}

func newChatTestApp(service chatApplicationService, role string) *fiber.App {
	handler := &ChatHandler{service: service}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		c.Locals("user_id", "42")
		return c.Next()
	})
	app.Get("/api/v1/conversations", handler.ListConversations)
	app.Post("/api/v1/conversations", handler.CreateConversation)
	app.Get("/api/v1/conversations/:id/messages", handler.GetMessages)
	return app
}

func TestCreateConversationForbiddenForCoaches(t *testing.T) {
	app := newChatTestApp(&stubChatService{}, "coach")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations", strings.NewReader(`{"coach_id": 7}`))
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

func TestCreateConversationReturnsExistingOrNew(t *testing.T) {
	service := &stubChatService{
		conversation: &models.Conversation{ID: 5, UserID: 42, CoachID: 7},
	}
	app := newChatTestApp(service, "user")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations", strings.NewReader(`{"coach_id": 7}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastCoachID != 7 {
		t.Fatalf("expected coach id 7, got %d", service.lastCoachID)
	}
}

func TestCreateConversationMapsCoachNotFound(t *testing.T) {
	service := &stubChatService{createErr: services.ErrCoachNotFound}
	app := newChatTestApp(service, "user")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations", strings.NewReader(`{"coach_id": 999}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestGetMessagesAppliesPagination(t *testing.T) {
	service := &stubChatService{messages: []models.ChatMessage{}, messagesTotal: 120}
	app := newChatTestApp(service, "user")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations/5/messages?page=2&limit=20", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastConvID != 5 || service.lastPage != 2 || service.lastLimit != 20 {
		t.Fatalf("unexpected paging %d/%d for conversation %d", service.lastPage, service.lastLimit, service.lastConvID)
	}

	var body struct {
		Pagination models.PaginationMeta `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Pagination.TotalPages != 6 {
		t.Fatalf("expected 6 pages, got %d", body.Pagination.TotalPages)
	}
}

func TestGetMessagesRejectsBadConversationID(t *testing.T) {
	app := newChatTestApp(&stubChatService{}, "user")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations/zero/messages", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
