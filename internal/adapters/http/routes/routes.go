package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"

	"sogecredit/internal/adapters/http/handlers"
	"sogecredit/internal/adapters/http/middleware"
	"sogecredit/internal/adapters/persistence/repositories"
	"sogecredit/internal/config"
	"sogecredit/internal/core/permissions"
	"sogecredit/internal/core/services"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Unit of work + repositories
	uow := repositories.NewUnitOfWork(db)
	repos := uow.Repos()

	// Services
	auditService := services.NewAuditService(repos.AuditLogs)
	mailerService := services.NewMailerService(cfg.SMTP)
	notificationService := services.NewNotificationService(repos.Notifications)
	authService := services.NewAuthService(repos.Users, repos.RefreshTokens, auditService, cfg)
	userService := services.NewUserService(repos.Users, mailerService, auditService)
	applicationService := services.NewApplicationService(uow, permissions.NewEvaluator(), notificationService, auditService)
	reportService := services.NewReportService(repos.Applications, repos.Users)

	// Handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	applicationHandler := handlers.NewApplicationHandler(applicationService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	reportHandler := handlers.NewReportHandler(reportService)
	auditHandler := handlers.NewAuditHandler(repos.AuditLogs)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	auth := middleware.AuthMiddleware(cfg, repos.Users)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Auth routes
	authRoutes := apiV1.Group("/auth")
	authRoutes.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	authRoutes.Post("/refresh", authHandler.RefreshToken)
	authRoutes.Post("/logout", authHandler.Logout)
	authRoutes.Post("/logout-all", auth, authHandler.LogoutAll)
	authRoutes.Get("/me", auth, authHandler.Me)

	// Application routes
	appRoutes := apiV1.Group("/applications", auth)
	appRoutes.Post("/", applicationHandler.Create)
	appRoutes.Get("/", applicationHandler.List)
	appRoutes.Get("/:id", applicationHandler.GetByID)
	appRoutes.Patch("/:id", applicationHandler.Update)
	appRoutes.Delete("/:id", middleware.ManagerOnly(), applicationHandler.Delete)
	appRoutes.Post("/:id/assign-officer", applicationHandler.AssignOfficer)
	appRoutes.Get("/:id/history", applicationHandler.History)

	// User routes
	userRoutes := apiV1.Group("/users", auth)
	userRoutes.Get("/", userHandler.List)
	userRoutes.Post("/change-password", userHandler.ChangePassword)
	userRoutes.Post("/", middleware.ManagerOnly(), userHandler.Create)
	userRoutes.Get("/:id", middleware.ManagerOnly(), userHandler.GetByID)
	userRoutes.Patch("/:id", middleware.ManagerOnly(), userHandler.Update)
	userRoutes.Post("/:id/toggle-active", middleware.ManagerOnly(), userHandler.ToggleActive)
	userRoutes.Delete("/:id", middleware.ManagerOnly(), userHandler.Delete)

	// Notification routes
	notificationRoutes := apiV1.Group("/notifications", auth)
	notificationRoutes.Get("/", notificationHandler.List)
	notificationRoutes.Get("/unread-count", notificationHandler.UnreadCount)
	notificationRoutes.Post("/mark-all-read", notificationHandler.MarkAllRead)

	// Report routes
	apiV1.Post("/reports", auth, reportHandler.Report)
	apiV1.Get("/dashboard", auth, middleware.CacheControl(30*time.Second), reportHandler.Dashboard)

	// Audit trail (manager only)
	apiV1.Get("/audit-logs", auth, middleware.ManagerOnly(), auditHandler.List)
}
