package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MartinT518/MomentumTracker-sub004/internal/config"
	"github.com/gofiber/fiber/v2"
)

func TestDocsRouteDisabledByDefault(t *testing.T) {
	app := fiber.New()
	api := app.Group("/api")
	registerDocsRoutes(api, &config.Config{AppEnv: "development"})

	req := httptest.NewRequest(http.MethodGet, "/api/docs", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 with docs disabled, got %d", resp.StatusCode)
	}
}

func TestDocsRouteNeverEnabledInProduction(t *testing.T) {
	app := fiber.New()
	api := app.Group("/api")
	registerDocsRoutes(api, &config.Config{AppEnv: "production", EnableDocs: true})

	req := httptest.NewRequest(http.MethodGet, "/api/docs", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 in production, got %d", resp.StatusCode)
	}
}

func TestDocsRouteServesIndexInDevelopment(t *testing.T) {
	app := fiber.New()
	api := app.Group("/api")
	registerDocsRoutes(api, &config.Config{AppEnv: "development", EnableDocs: true})

	req := httptest.NewRequest(http.MethodGet, "/api/docs", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Name   string     `json:"name"`
		Routes []routeDoc `json:"routes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Name != "momentumtracker-api" {
		t.Fatalf("unexpected api name %q", body.Name)
	}
	if len(body.Routes) == 0 {
		t.Fatalf("expected a non-empty route index")
	}
}
