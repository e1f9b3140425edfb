package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/TheKhanSoft/tks-prepify-sub000/billing"
	"github.com/TheKhanSoft/tks-prepify-sub000/config"
	"github.com/TheKhanSoft/tks-prepify-sub000/controllers"
	"github.com/TheKhanSoft/tks-prepify-sub000/email"
	"github.com/TheKhanSoft/tks-prepify-sub000/middleware"
	"github.com/TheKhanSoft/tks-prepify-sub000/quota"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, tracker *quota.Tracker, mailer email.Service, stripe *billing.StripeService, logger *log.Logger) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(db, cfg)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Plan routes
	plansController := controllers.NewPlansController(db, cfg)
	app.Get("/api/plans", plansController.ListPlans)

	// Category routes
	categoriesController := controllers.NewCategoriesController(db, cfg)
	app.Get("/api/categories", categoriesController.ListCategories)

	// Question routes live under /api/admin below: the bank carries
	// correct answers, which only paid downloads and submitted attempts
	// may reveal.
	questionsController := controllers.NewQuestionsController(db, cfg)

	// Paper routes; the catalogue is public, downloads are quota-gated
	papersController := controllers.NewPapersController(db, cfg, tracker)
	app.Get("/api/papers", papersController.ListPapers)
	app.Get("/api/papers/:id", papersController.GetPaper)
	app.Get("/api/papers/:id/download", authMiddleware, papersController.DownloadPaper)

	// Bookmark routes
	bookmarksController := controllers.NewBookmarksController(db, cfg, tracker)
	bookmarks := app.Group("/api/bookmarks", authMiddleware)
	bookmarks.Get("/", bookmarksController.ListBookmarks)
	bookmarks.Post("/", bookmarksController.CreateBookmark)
	bookmarks.Delete("/:id", bookmarksController.DeleteBookmark)

	// Support routes
	supportController := controllers.NewSupportController(db, cfg, tracker, mailer, logger)
	support := app.Group("/api/support", authMiddleware)
	support.Post("/", supportController.CreateRequest)
	support.Get("/", supportController.ListOwnRequests)

	// Test routes
	testsController := controllers.NewTestsController(db, cfg)
	tests := app.Group("/api/tests", authMiddleware)
	tests.Get("/available", testsController.ListAvailableTests)
	tests.Post("/:id/start", testsController.StartTest)

	attempts := app.Group("/api/attempts", authMiddleware)
	attempts.Get("/", testsController.ListAttempts)
	attempts.Post("/:ref/submit", testsController.SubmitAttempt)
	attempts.Get("/:ref/result", testsController.GetResult)

	// Order routes
	ordersController := controllers.NewOrdersController(db, cfg, stripe)
	app.Post("/api/orders/webhook", ordersController.Webhook)
	orders := app.Group("/api/orders", authMiddleware)
	orders.Post("/checkout", ordersController.Checkout)
	orders.Get("/confirm", ordersController.Confirm)
	orders.Get("/", ordersController.ListOwnOrders)

	// Admin routes
	admin := app.Group("/api/admin", authMiddleware, adminMiddleware)
	admin.Get("/users", userController.ListUsers)
	admin.Put("/users/:id/role", userController.UpdateUserRole)

	admin.Get("/plans", plansController.ListAllPlans)
	admin.Post("/plans", plansController.CreatePlan)
	admin.Put("/plans/:id", plansController.UpdatePlan)
	admin.Delete("/plans/:id", plansController.DeletePlan)

	admin.Post("/categories", categoriesController.CreateCategory)
	admin.Put("/categories/:id", categoriesController.UpdateCategory)
	admin.Delete("/categories/:id", categoriesController.DeleteCategory)

	admin.Get("/questions", questionsController.ListQuestions)
	admin.Get("/questions/:id", questionsController.GetQuestion)
	admin.Post("/questions", questionsController.CreateQuestion)
	admin.Put("/questions/:id", questionsController.UpdateQuestion)
	admin.Delete("/questions/:id", questionsController.DeleteQuestion)

	admin.Post("/papers", papersController.CreatePaper)
	admin.Put("/papers/:id", papersController.UpdatePaper)
	admin.Put("/papers/:id/questions", papersController.SetPaperQuestions)
	admin.Delete("/papers/:id", papersController.DeletePaper)

	admin.Get("/tests", testsController.ListConfigs)
	admin.Post("/tests", testsController.CreateConfig)
	admin.Put("/tests/:id", testsController.UpdateConfig)
	admin.Delete("/tests/:id", testsController.DeleteConfig)

	admin.Get("/support", supportController.ListRequests)
	admin.Put("/support/:id/status", supportController.UpdateRequestStatus)

	admin.Get("/orders", ordersController.ListOrders)
}
