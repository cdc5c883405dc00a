package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OpenSAMS/sams/internal/auth"
	"github.com/OpenSAMS/sams/internal/config"
	"github.com/OpenSAMS/sams/internal/database"
	"github.com/OpenSAMS/sams/internal/grievance"
	"github.com/OpenSAMS/sams/internal/household/model"
	"github.com/OpenSAMS/sams/internal/household/router"
	"github.com/OpenSAMS/sams/internal/household/service"
	"github.com/OpenSAMS/sams/internal/middleware"
	"github.com/OpenSAMS/sams/internal/payment"
	"github.com/OpenSAMS/sams/internal/uploads"
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	slog.Info("configuration loaded successfully",
		"db_host", cfg.Database.Host,
		"db_port", cfg.Database.Port,
		"db_name", cfg.Database.Name,
		"db_sslmode", cfg.Database.SSLMode,
	)

	slog.Info("server configuration",
		"port", cfg.Server.Port,
		"storage_type", cfg.Storage.Type,
	)

	// Initialize database connection
	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	// Perform health check
	if err := database.HealthCheck(db); err != nil {
		log.Fatalf("database health check failed: %v", err)
	}

	if err := db.AutoMigrate(
		&model.Household{},
		&model.Member{},
		&model.WorkflowHistoryEntry{},
		&model.HomeVisit{},
		&auth.Reviewer{},
		&uploads.Document{},
		&grievance.Grievance{},
		&payment.Payment{},
	); err != nil {
		log.Fatalf("failed to run database migrations: %v", err)
	}

	// Initialize storage driver for document uploads
	storage, err := uploads.NewStorageFromConfig(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatalf("failed to initialize storage driver: %v", err)
	}

	// Wire services
	repo := service.NewGormHouseholdRepository(db)
	householdService := service.NewHouseholdService(db, repo)
	progressionService := service.NewProgressionService(repo)
	registryService := service.NewRegistryService(repo)
	authService := auth.NewAuthService(db)
	documentService := uploads.NewDocumentService(storage, db)
	grievanceService := grievance.NewService(db)
	paymentService := payment.NewService(db)

	householdRouter := router.NewHouseholdRouter(householdService)
	workflowRouter := router.NewWorkflowRouter(progressionService)
	registryRouter := router.NewRegistryRouter(registryService)
	documentRouter := uploads.NewRouter(documentService)
	grievanceRouter := grievance.NewRouter(grievanceService)
	paymentRouter := payment.NewRouter(paymentService)

	// Set up HTTP routes
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery())
	engine.Use(middleware.CORS(&cfg.CORS))
	engine.Use(auth.Middleware(authService))

	engine.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api/v1")
	{
		api.POST("/households", householdRouter.HandleCreateHousehold)
		api.GET("/households", householdRouter.HandleListHouseholds)
		api.GET("/households/:id", householdRouter.HandleGetHousehold)
		api.PUT("/households/:id", householdRouter.HandleUpdateHousehold)
		api.POST("/households/:id/submit", householdRouter.HandleSubmitToAssessment)
		api.POST("/households/:id/visits", householdRouter.HandleRecordHomeVisit)
		api.GET("/households/:id/visits", householdRouter.HandleListHomeVisits)

		api.POST("/households/:id/workflow/progress", workflowRouter.HandleProgress)
		api.POST("/households/:id/workflow/notes", workflowRouter.HandleSaveNotes)
		api.GET("/households/:id/workflow/history", workflowRouter.HandleGetHistory)

		api.GET("/registry", registryRouter.HandleGetRegistry)
		api.GET("/registry/national-id/:id", registryRouter.HandleCheckNationalID)

		api.POST("/documents", auth.RequireReviewer(), documentRouter.HandleUpload)
		api.GET("/documents/:id", documentRouter.HandleGetMetadata)
		api.GET("/documents/:id/download", documentRouter.HandleDownload)

		api.POST("/grievances", grievanceRouter.HandleCreate)
		api.GET("/grievances", grievanceRouter.HandleList)
		api.GET("/grievances/:id", grievanceRouter.HandleGet)
		api.PUT("/grievances/:id", auth.RequireReviewer(), grievanceRouter.HandleUpdateStatus)

		api.POST("/payments/generate", auth.RequireRole(auth.RoleAdmin), paymentRouter.HandleGenerateSchedule)
		api.GET("/payments", paymentRouter.HandleList)
		api.GET("/payments/:id", paymentRouter.HandleGet)
		api.PUT("/payments/:id", auth.RequireRole(auth.RoleAdmin), paymentRouter.HandleUpdateStatus)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: engine,
	}

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		slog.Info("starting server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	// Wait for interrupt signal
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	} else {
		slog.Info("server gracefully stopped")
	}

	slog.Info("server stopped")
}
