package main

import (
	"context"
	"log"
	"os"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"leadpulse/config"
	"leadpulse/routes"
	"leadpulse/utils"
	"leadpulse/worker"
)

func main() {
	// Initialize logger
	logger := log.New(os.Stdout, "LEADPULSE: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Sentry for error reporting
	if config.AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			logger.Printf("Sentry initialization failed: %v", err)
		}
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Create Fiber app
	app := fiber.New()

	// Add CORS middleware
	app.Use(cors.New())

	// Initialize the follow-up mailer
	followUpMailer := utils.NewFollowUpMailer()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Nightly rollover sweep across all users
	rolloverWorker := worker.NewRolloverWorker(config.DB, log.New(os.Stdout, "ROLLOVER: ", log.LstdFlags))
	go rolloverWorker.Start(ctx)

	// Due-event email dispatch
	dispatchWorker := worker.NewDispatchWorker(config.DB, followUpMailer, log.New(os.Stdout, "DISPATCH: ", log.LstdFlags))
	go dispatchWorker.Start(ctx)

	// Setup routes
	routes.SetupRoutes(app, config.DB)

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "running",
			"version": "1.0.0",
		})
	})

	// Start server
	logger.Printf("🚀 Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
