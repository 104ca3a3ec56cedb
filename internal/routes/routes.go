package routes

import (
	"github.com/MartinT518/MomentumTracker-sub004/internal/config"
	"github.com/MartinT518/MomentumTracker-sub004/internal/handlers"
	"github.com/MartinT518/MomentumTracker-sub004/internal/middleware"
	"github.com/MartinT518/MomentumTracker-sub004/internal/repository"
	"github.com/MartinT518/MomentumTracker-sub004/internal/services"
	chatws "github.com/MartinT518/MomentumTracker-sub004/internal/websocket"
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	openai "github.com/sashabaranov/go-openai"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) {
	userRepo := repository.NewUserRepository(db)
	userProfileRepo := repository.NewUserProfileRepository(db)
	coachProfileRepo := repository.NewCoachProfileRepository(db)
	planRepo := repository.NewTrainingPlanRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	metricRepo := repository.NewHealthMetricRepository(db)
	nutritionRepo := repository.NewNutritionRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	integrationRepo := repository.NewIntegrationRepository(db)
	subscriptionPlanRepo := repository.NewSubscriptionPlanRepository(db)

	var storageService services.StorageService
	if cfg.SupabaseURL != "" && cfg.SupabaseBucket != "" && cfg.SupabaseServiceKey != "" {
		storageService = services.NewSupabaseStorageService(cfg.SupabaseURL, cfg.SupabaseBucket, cfg.SupabaseServiceKey)
	}

	var gateway services.PaymentGateway
	if cfg.StripeEnabled() {
		gateway = services.NewStripeGateway(cfg.StripeSecretKey)
	}

	achievementService := services.NewAchievementService(achievementRepo, activityRepo)
	matchmakingService := services.NewMatchmakingService(coachProfileRepo)
	chatService := services.NewChatService(db, conversationRepo, messageRepo, userRepo)
	sessionService := services.NewSessionService(db, sessionRepo, paymentRepo, userRepo, coachProfileRepo, gateway)
	billingService := services.NewBillingService(
		gateway, userRepo, paymentRepo, subscriptionPlanRepo,
		cfg.StripePriceMonthly, cfg.StripePriceAnnual,
	)

	var plannerService *services.PlannerService
	if cfg.AIEnabled() {
		plannerService = services.NewPlannerService(db, openai.NewClient(cfg.OpenAIKey), cfg.OpenAIModel, planRepo, userProfileRepo)
	} else {
		// A nil client keeps the route mounted but responding 503.
		plannerService = services.NewPlannerService(db, nil, cfg.OpenAIModel, planRepo, userProfileRepo)
	}

	var platformClients []services.PlatformClient
	if cfg.PlatformEnabled("strava") {
		platformClients = append(platformClients, services.NewStravaClient())
	}
	if cfg.PlatformEnabled("garmin") {
		platformClients = append(platformClients, services.NewGarminClient())
	}
	if cfg.PlatformEnabled("polar") {
		platformClients = append(platformClients, services.NewPolarClient())
	}
	syncService := services.NewSyncService(integrationRepo, activityRepo, achievementService, platformClients...)

	authHandler := handlers.NewAuthHandler(db, userRepo, userProfileRepo, coachProfileRepo, cfg.JWTSecret)
	onboardingHandler := handlers.NewOnboardingHandler(userProfileRepo, coachProfileRepo)
	profileHandler := handlers.NewProfileHandler(userProfileRepo, coachProfileRepo, storageService)
	planHandler := handlers.NewPlanHandler(db, plannerService, planRepo, userRepo)
	goalHandler := handlers.NewGoalHandler(goalRepo)
	activityHandler := handlers.NewActivityHandler(activityRepo, achievementService)
	metricHandler := handlers.NewHealthMetricHandler(metricRepo)
	nutritionHandler := handlers.NewNutritionHandler(nutritionRepo)
	achievementHandler := handlers.NewAchievementHandler(achievementService)
	coachDiscoveryHandler := handlers.NewCoachDiscoveryHandler(coachProfileRepo, userProfileRepo, matchmakingService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	billingHandler := handlers.NewBillingHandler(billingService, cfg.StripeWebhookSecret)
	integrationHandler := handlers.NewIntegrationHandler(syncService)

	chatHub := chatws.NewHub()
	go chatHub.Run()
	chatHandler := handlers.NewChatHandler(chatService, chatHub, cfg.JWTSecret)

	planLimiter := middleware.NewUserRateLimiter(cfg.AIPlansPerHour, 1)

	api := app.Group("/api")
	registerDocsRoutes(api, cfg)

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	// Stripe calls this without a bearer token; the signature is the auth.
	api.Post("/v1/billing/webhook", billingHandler.Webhook)

	v1 := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	users := v1.Group("/users")
	users.Post("/onboarding", onboardingHandler.CompleteUserOnboarding)
	users.Put("/profile", profileHandler.UpdateUserProfile)
	users.Post("/profile/avatar", profileHandler.UploadAvatar)

	coaches := v1.Group("/coaches")
	coaches.Get("", coachDiscoveryHandler.List)
	coaches.Post("/onboarding", onboardingHandler.CompleteCoachOnboarding)
	coaches.Put("/profile", profileHandler.UpdateCoachProfile)
	coaches.Post("/profile/avatar", profileHandler.UploadAvatar)
	coaches.Get("/matches", coachDiscoveryHandler.Matches)
	coaches.Get("/:id", coachDiscoveryHandler.Get)

	goals := v1.Group("/goals")
	goals.Post("", goalHandler.Create)
	goals.Get("", goalHandler.List)
	goals.Get("/:id", goalHandler.Get)
	goals.Put("/:id", goalHandler.Update)
	goals.Post("/:id/progress", goalHandler.AddProgress)
	goals.Delete("/:id", goalHandler.Delete)

	activities := v1.Group("/activities")
	activities.Post("", activityHandler.Create)
	activities.Get("", activityHandler.List)
	activities.Get("/totals", activityHandler.Totals)
	activities.Get("/:id", activityHandler.Get)
	activities.Delete("/:id", activityHandler.Delete)

	metrics := v1.Group("/health-metrics")
	metrics.Post("", metricHandler.Create)
	metrics.Get("", metricHandler.List)
	metrics.Get("/latest", metricHandler.Latest)
	metrics.Delete("/:id", metricHandler.Delete)

	nutrition := v1.Group("/nutrition")
	nutrition.Post("", nutritionHandler.Create)
	nutrition.Get("", nutritionHandler.List)
	nutrition.Get("/summary", nutritionHandler.Summary)
	nutrition.Put("/:id", nutritionHandler.Update)
	nutrition.Delete("/:id", nutritionHandler.Delete)

	achievements := v1.Group("/achievements")
	achievements.Get("", achievementHandler.ListCatalog)
	achievements.Get("/earned", achievementHandler.ListEarned)
	achievements.Post("/evaluate", achievementHandler.Evaluate)

	plans := v1.Group("/plans")
	plans.Post("/generate",
		middleware.RequirePremium(userRepo),
		planLimiter.Handler(),
		planHandler.Generate,
	)
	plans.Post("", planHandler.CreateCoachPlan)
	plans.Get("", planHandler.List)
	plans.Get("/:id", planHandler.Get)
	plans.Put("/:id/status", planHandler.UpdateStatus)
	plans.Delete("/:id", planHandler.Delete)

	billing := v1.Group("/billing")
	billing.Get("/plans", billingHandler.ListPlans)
	billing.Post("/subscribe", billingHandler.Subscribe)
	billing.Post("/cancel", billingHandler.Cancel)

	sessions := v1.Group("/sessions")
	sessions.Post("/book", sessionHandler.Book)
	sessions.Get("", sessionHandler.List)
	sessions.Get("/:id", sessionHandler.Get)
	sessions.Put("/:id/status", sessionHandler.UpdateStatus)
	sessions.Post("/:id/pay", sessionHandler.Pay)

	conversations := v1.Group("/conversations")
	conversations.Get("", chatHandler.ListConversations)
	conversations.Post("", chatHandler.CreateConversation)
	conversations.Get("/:id/messages", chatHandler.GetMessages)

	integrations := v1.Group("/integrations")
	integrations.Post("", integrationHandler.Connect)
	integrations.Get("", integrationHandler.List)
	integrations.Post("/:platform/sync", integrationHandler.Sync)
	integrations.Delete("/:platform", integrationHandler.Disconnect)

	api.Use("/v1/ws", chatHandler.WebSocketAuth)
	api.Get("/v1/ws", websocket.New(chatHandler.HandleWebSocket))
}
