package routes

import (
	"log"
	"os"

	controller "leadpulse/controllers"
	"leadpulse/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize logger
	authLogger := log.New(os.Stdout, "AUTH: ", log.Ldate|log.Ltime|log.Lshortfile)

	authController := controller.NewAuthController(db, authLogger)

	// Auth routes group with logging middleware
	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public auth endpoints (no authentication required)
	auth.Post("/register", authController.Register)
	auth.Post("/login", authController.Login)
	auth.Post("/refresh", authController.RefreshToken)

	// Protected auth endpoints (require valid JWT)
	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Post("/logout", authController.Logout)
	protectedAuth.Get("/me", authController.GetCurrentUser)

	// Log initialization
	authLogger.Println("Authentication routes initialized successfully")
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize controllers with their respective loggers
	settingsController := controller.NewSettingsController(db, log.New(os.Stdout, "SETTINGS: ", log.LstdFlags))
	leadController := controller.NewLeadController(db, log.New(os.Stdout, "LEAD: ", log.LstdFlags))
	promotionController := controller.NewPromotionController(db, log.New(os.Stdout, "PROMO: ", log.LstdFlags))
	sequenceController := controller.NewSequenceController(db, log.New(os.Stdout, "SEQUENCE: ", log.LstdFlags))
	contactController := controller.NewContactController(db, log.New(os.Stdout, "CONTACT: ", log.LstdFlags))
	calendarController := controller.NewCalendarController(db, log.New(os.Stdout, "CALENDAR: ", log.LstdFlags))

	// API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Pipeline settings routes
	pipeline := api.Group("/pipeline")
	pipeline.Get("/settings", settingsController.GetPipelineSettings)
	pipeline.Put("/settings", settingsController.UpdatePipelineSettings)
	pipeline.Put("/settings/stages/:index", settingsController.UpdatePipelineStage)
	pipeline.Post("/rollover/run", settingsController.RunRollover)

	// Lead routes
	lead := api.Group("/leads")
	lead.Post("/", leadController.CreateLead)
	lead.Get("/", leadController.GetLeads)
	lead.Get("/:id", leadController.GetLead)
	lead.Put("/:id", leadController.UpdateLead)
	lead.Delete("/:id", leadController.DeleteLead)
	lead.Post("/:id/complete-stage", leadController.CompleteLeadStage)
	lead.Get("/:id/email-preview", leadController.PreviewLeadEmail)

	// Push endpoint gets its own rate limit
	lead.Post("/:id/push", middleware.PushRateLimiter(), leadController.PushLead)

	// Promotion routes
	promotion := api.Group("/promotions")
	promotion.Post("/", promotionController.CreatePromotion)
	promotion.Get("/", promotionController.GetPromotions)
	promotion.Get("/:id", promotionController.GetPromotion)
	promotion.Post("/:id/cancel", promotionController.CancelPromotion)
	promotion.Post("/:id/events/:eventId/complete", promotionController.CompletePromotionEvent)

	// Sequence routes
	sequence := api.Group("/sequences")
	sequence.Post("/", sequenceController.CreateSequence)
	sequence.Get("/", sequenceController.GetSequences)
	sequence.Get("/:id", sequenceController.GetSequence)
	sequence.Put("/:id/steps/:stepId/status", sequenceController.UpdateSequenceStepStatus)

	// Contact routes
	contact := api.Group("/contacts")
	contact.Post("/", contactController.CreateContact)
	contact.Get("/", contactController.GetContacts)
	contact.Get("/:id", contactController.GetContact)
	contact.Put("/:id", contactController.UpdateContact)
	contact.Delete("/:id", contactController.DeleteContact)

	// Task routes
	task := api.Group("/tasks")
	task.Post("/", contactController.CreateTask)
	task.Get("/", contactController.GetTasks)
	task.Put("/:id", contactController.UpdateTask)
	task.Delete("/:id", contactController.DeleteTask)

	// Calendar feed
	api.Get("/calendar", calendarController.GetCalendar)

	// Log initialization
	log.Println("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Setup health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Setup auth routes
	SetupAuthRoutes(app, db)

	// Setup API routes
	SetupAPIRoutes(app, db)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
