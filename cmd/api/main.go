package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/adforge/backend/internal/campaign"
	"github.com/adforge/backend/internal/config"
	"github.com/adforge/backend/internal/events"
	"github.com/adforge/backend/internal/genai"
	"github.com/adforge/backend/internal/generator"
	apphttp "github.com/adforge/backend/internal/http"
	"github.com/adforge/backend/internal/http/handlers"
	"github.com/adforge/backend/internal/imagekit"
	"github.com/adforge/backend/internal/repositories"
	"github.com/adforge/backend/internal/social"
	"github.com/adforge/backend/internal/storeparser"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Repositories
	campaignRepo := repositories.NewCampaignRepo(cfg.OutputDir, log)
	appRepo := repositories.NewAppRepo(cfg.AppTemplatesPath, log)

	// Events
	bus := events.NewBus(log)

	// Generation
	textClient := genai.NewClient(cfg.GenAIBaseURL, cfg.TextModel, cfg.GoogleAPIKey, log)
	imageClient := genai.NewImageClient(cfg.GenAIBaseURL, cfg.ImageModel, cfg.GoogleAPIKey, log)
	contentGen := generator.NewContentGenerator(textClient, cfg.Platforms, log)
	imageGen := generator.NewImageGenerator(imageClient, cfg.Platforms, cfg.OutputDir, log)

	// Posting
	hoster := imagekit.NewUploader(cfg.ImageKitPrivateKey, cfg.ImageKitUploadURL, log)
	adapters := social.NewFactory(cfg, hoster, log)

	campaignService := campaign.NewService(contentGen, imageGen, adapters, campaignRepo, bus, log)

	// Handlers
	storeParser := storeparser.NewParser(10000, 2, log)
	campaignHandler := handlers.NewCampaignHandler(campaignService, appRepo, log)
	appHandler := handlers.NewAppHandler(appRepo, storeParser, log)
	wsHub := handlers.NewWSHub(bus, log)

	// Start WS hub
	wsHub.Start(ctx)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, campaignHandler, appHandler, wsHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
