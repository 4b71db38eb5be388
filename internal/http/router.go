package http

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/adforge/backend/internal/config"
	"github.com/adforge/backend/internal/http/handlers"
	"github.com/adforge/backend/internal/middleware"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	campaignHandler *handlers.CampaignHandler,
	appHandler *handlers.AppHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, X-Request-ID",
	}))
	app.Use(middleware.RequestID())
	app.Use(middleware.AccessLog(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Generated images for the dashboard
	app.Static("/output", cfg.OutputDir)

	api := app.Group("/api/v1")

	// Meta
	metaHandler := handlers.NewMetaHandler(cfg)
	api.Get("/meta/platforms", metaHandler.GetPlatforms)

	// App profiles
	api.Get("/apps", appHandler.ListApps)
	api.Post("/apps/import", appHandler.ImportApp)
	api.Get("/apps/:slug", appHandler.GetApp)
	api.Put("/apps/:slug", appHandler.PutApp)
	api.Delete("/apps/:slug", appHandler.DeleteApp)

	// Campaigns
	api.Post("/campaigns", campaignHandler.GenerateCampaign)
	api.Get("/campaigns", campaignHandler.ListCampaigns)
	api.Get("/campaigns/:id", campaignHandler.GetCampaign)
	api.Post("/campaigns/:id/post", campaignHandler.PostCampaign)
	api.Post("/campaigns/:id/post/:platform", campaignHandler.PostCampaignPlatform)
	api.Delete("/campaigns/:id", campaignHandler.DeleteCampaign)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
