package routes

import (
	"github.com/MartinT518/MomentumTracker-sub004/internal/config"
	"github.com/gofiber/fiber/v2"
)

type routeDoc struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Auth   string `json:"auth"`
	Notes  string `json:"notes,omitempty"`
}

var apiIndex = []routeDoc{
	{Method: "POST", Path: "/api/auth/register", Auth: "none"},
	{Method: "POST", Path: "/api/auth/login", Auth: "none"},
	{Method: "GET", Path: "/api/auth/me", Auth: "bearer"},

	{Method: "POST", Path: "/api/v1/users/onboarding", Auth: "bearer", Notes: "role user"},
	{Method: "PUT", Path: "/api/v1/users/profile", Auth: "bearer"},
	{Method: "POST", Path: "/api/v1/users/profile/avatar", Auth: "bearer", Notes: "multipart, field avatar"},

	{Method: "GET", Path: "/api/v1/coaches", Auth: "bearer"},
	{Method: "POST", Path: "/api/v1/coaches/onboarding", Auth: "bearer", Notes: "role coach"},
	{Method: "PUT", Path: "/api/v1/coaches/profile", Auth: "bearer", Notes: "role coach"},
	{Method: "GET", Path: "/api/v1/coaches/matches", Auth: "bearer", Notes: "role user"},
	{Method: "GET", Path: "/api/v1/coaches/:id", Auth: "bearer"},

	{Method: "POST", Path: "/api/v1/goals", Auth: "bearer"},
	{Method: "GET", Path: "/api/v1/goals", Auth: "bearer"},
	{Method: "GET", Path: "/api/v1/goals/:id", Auth: "bearer"},
	{Method: "PUT", Path: "/api/v1/goals/:id", Auth: "bearer"},
	{Method: "POST", Path: "/api/v1/goals/:id/progress", Auth: "bearer"},
	{Method: "DELETE", Path: "/api/v1/goals/:id", Auth: "bearer"},

	{Method: "POST", Path: "/api/v1/activities", Auth: "bearer"},
	{Method: "GET", Path: "/api/v1/activities", Auth: "bearer"},
	{Method: "GET", Path: "/api/v1/activities/totals", Auth: "bearer"},
	{Method: "GET", Path: "/api/v1/activities/:id", Auth: "bearer"},
	{Method: "DELETE", Path: "/api/v1/activities/:id", Auth: "bearer"},

	{Method: "POST", Path: "/api/v1/health-metrics", Auth: "bearer"},
	{Method: "GET", Path: "/api/v1/health-metrics", Auth: "bearer"},
	{Method: "GET", Path: "/api/v1/health-metrics/latest", Auth: "bearer", Notes: "query type required"},
	{Method: "DELETE", Path: "/api/v1/health-metrics/:id", Auth: "bearer"},

	{Method: "POST", Path: "/api/v1/nutrition", Auth: "bearer"},
	{Method: "GET", Path: "/api/v1/nutrition", Auth: "bearer"},
	{Method: "GET", Path: "/api/v1/nutrition/summary", Auth: "bearer"},
	{Method: "PUT", Path: "/api/v1/nutrition/:id", Auth: "bearer"},
	{Method: "DELETE", Path: "/api/v1/nutrition/:id", Auth: "bearer"},

	{Method: "GET", Path: "/api/v1/achievements", Auth: "bearer"},
	{Method: "GET", Path: "/api/v1/achievements/earned", Auth: "bearer"},
	{Method: "POST", Path: "/api/v1/achievements/evaluate", Auth: "bearer"},

	{Method: "POST", Path: "/api/v1/plans/generate", Auth: "bearer", Notes: "premium, rate limited"},
	{Method: "POST", Path: "/api/v1/plans", Auth: "bearer", Notes: "role coach"},
	{Method: "GET", Path: "/api/v1/plans", Auth: "bearer"},
	{Method: "GET", Path: "/api/v1/plans/:id", Auth: "bearer"},
	{Method: "PUT", Path: "/api/v1/plans/:id/status", Auth: "bearer"},
	{Method: "DELETE", Path: "/api/v1/plans/:id", Auth: "bearer"},

	{Method: "GET", Path: "/api/v1/billing/plans", Auth: "bearer"},
	{Method: "POST", Path: "/api/v1/billing/subscribe", Auth: "bearer", Notes: "role user"},
	{Method: "POST", Path: "/api/v1/billing/cancel", Auth: "bearer"},
	{Method: "POST", Path: "/api/v1/billing/webhook", Auth: "stripe signature"},

	{Method: "POST", Path: "/api/v1/sessions/book", Auth: "bearer", Notes: "role user"},
	{Method: "GET", Path: "/api/v1/sessions", Auth: "bearer"},
	{Method: "GET", Path: "/api/v1/sessions/:id", Auth: "bearer"},
	{Method: "PUT", Path: "/api/v1/sessions/:id/status", Auth: "bearer"},
	{Method: "POST", Path: "/api/v1/sessions/:id/pay", Auth: "bearer", Notes: "role user"},

	{Method: "GET", Path: "/api/v1/conversations", Auth: "bearer"},
	{Method: "POST", Path: "/api/v1/conversations", Auth: "bearer", Notes: "role user"},
	{Method: "GET", Path: "/api/v1/conversations/:id/messages", Auth: "bearer"},
	{Method: "GET", Path: "/api/v1/ws", Auth: "bearer", Notes: "websocket, token query param accepted"},

	{Method: "POST", Path: "/api/v1/integrations", Auth: "bearer"},
	{Method: "GET", Path: "/api/v1/integrations", Auth: "bearer"},
	{Method: "POST", Path: "/api/v1/integrations/:platform/sync", Auth: "bearer"},
	{Method: "DELETE", Path: "/api/v1/integrations/:platform", Auth: "bearer"},
}

// registerDocsRoutes serves a machine-readable route index for development
// environments. Disabled by default and never enabled in production.
func registerDocsRoutes(api fiber.Router, cfg *config.Config) {
	if !cfg.DocsEnabled() {
		return
	}

	api.Get("/docs", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"name":   "momentumtracker-api",
			"env":    cfg.AppEnv,
			"routes": apiIndex,
		})
	})
}
