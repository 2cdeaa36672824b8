package main

import (
	"log"

	"athena_privacy_go/config"
	"athena_privacy_go/db"
	"athena_privacy_go/handlers"
	"athena_privacy_go/middleware"
	"athena_privacy_go/services"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()
	services.SetPseudonymSalt(cfg.PseudonymSalt)

	// Initialize database and migrate the privacy schema
	if err := db.Initialize(cfg.DBPath, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize blob store for export bundles
	services.InitializeBlobStore(cfg)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})

	// Public download route; the token itself is the credential
	e.GET("/api/gdpr/download/:token", handlers.DownloadExportHandler)

	// Authenticated routes (identity established by the platform gateway)
	api := e.Group("/api")
	api.Use(middleware.RequireUser())
	{
		api.POST("/gdpr/requests", handlers.CreateDSARRequestHandler)
		api.GET("/gdpr/requests", handlers.ListDSARRequestsHandler)
		api.GET("/gdpr/requests/:id", handlers.GetDSARRequestHandler)

		api.GET("/consents", handlers.ListConsentsHandler)
		api.POST("/consents", handlers.RecordConsentHandler)
		api.PUT("/consents/bulk", handlers.BulkUpdateConsentsHandler)

		// Admin routes: processing triggers and legal hold management
		admin := api.Group("")
		admin.Use(middleware.RequireAdmin())
		{
			admin.POST("/gdpr/requests/:id/process", handlers.ProcessDSARRequestHandler)

			admin.GET("/gdpr/legal-holds", handlers.ListLegalHoldsHandler)
			admin.POST("/gdpr/legal-holds", handlers.PlaceLegalHoldHandler)
			admin.DELETE("/gdpr/legal-holds/:id", handlers.ReleaseLegalHoldHandler)
		}
	}

	log.Printf("Starting privacy engine on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
