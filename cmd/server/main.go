package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"sogecredit/internal/adapters/http/middleware"
	"sogecredit/internal/adapters/http/routes"
	"sogecredit/internal/adapters/persistence/models"
	"sogecredit/internal/adapters/persistence/repositories"
	"sogecredit/internal/config"
	"sogecredit/internal/core/services"

	_ "sogecredit/docs" // Swagger docs
)

// @title SogeCredit API
// @version 1.0
// @description Backend de gestion des demandes de cartes de crédit SogeCredit
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@sogecredit.ht

// @host api.sogecredit.ht
// @BasePath /api/v1
// @schemes https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	setupLogger()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer config.CloseDatabase()

	if err := models.AutoMigrate(db); err != nil {
		logrus.WithError(err).Fatal("Failed to auto migrate")
	}
	logrus.Info("Database migration completed")

	if err := config.NewSeeder(db).Run(); err != nil {
		logrus.WithError(err).Warn("Database seeding failed")
	}

	// Nightly refresh-token purge
	cleanupService := services.NewCleanupService(repositories.NewRefreshTokenRepository(db))
	if err := cleanupService.Start(); err != nil {
		logrus.WithError(err).Fatal("Failed to start cleanup scheduler")
	}
	defer cleanupService.Stop()

	app := fiber.New(fiber.Config{
		AppName:      "SogeCredit API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	middleware.Setup(app, cfg)
	routes.Setup(app, db, cfg)

	go gracefulShutdown(app)

	logrus.WithFields(logrus.Fields{
		"port": cfg.Port,
		"mode": cfg.AppMode,
	}).Info("Server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		logrus.WithError(err).Fatal("Failed to start server")
	}
}

// setupLogger configures logrus from the environment
func setupLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		logrus.WithError(err).Error("Error during shutdown")
	}
	logrus.Info("Server stopped gracefully")
}
