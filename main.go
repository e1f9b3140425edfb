package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/TheKhanSoft/tks-prepify-sub000/billing"
	"github.com/TheKhanSoft/tks-prepify-sub000/config"
	"github.com/TheKhanSoft/tks-prepify-sub000/email"
	"github.com/TheKhanSoft/tks-prepify-sub000/middleware"
	"github.com/TheKhanSoft/tks-prepify-sub000/models"
	"github.com/TheKhanSoft/tks-prepify-sub000/quota"
	"github.com/TheKhanSoft/tks-prepify-sub000/routes"
	"github.com/TheKhanSoft/tks-prepify-sub000/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.LoginHistory{},
		&models.Subscription{},
		&models.Plan{},
		&models.PlanFeature{},
		&models.Order{},
		&models.Category{},
		&models.Question{},
		&models.Paper{},
		&models.PaperQuestion{},
		&models.Bookmark{},
		&models.UsageEvent{},
		&models.SupportRequest{},
		&models.TestConfig{},
		&models.CompositionRule{},
		&models.TestAttempt{},
		&models.QuestionAttempt{},
	)
	if err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// Services
	tracker := quota.NewTracker(quota.NewGormStore(db))
	mailer := email.NewFromConfig(cfg, logger)
	stripe := billing.NewStripeFromConfig(cfg, db)

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, db, cfg, tracker, mailer, stripe, logger)

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
