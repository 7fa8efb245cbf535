package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/vest-service/vest_service/internal/api/routes"
	"github.com/vest-service/vest_service/internal/infrastructure/config"
	"github.com/vest-service/vest_service/internal/infrastructure/database"
	"github.com/vest-service/vest_service/internal/infrastructure/di"
	investment_completion "github.com/vest-service/vest_service/internal/workers/investment_completion"
	"github.com/vest-service/vest_service/pkg/graceful"
	"github.com/vest-service/vest_service/pkg/logger"
	"github.com/vest-service/vest_service/pkg/metrics"
	"github.com/vest-service/vest_service/pkg/tracing"

	"github.com/gin-gonic/gin"
)

// @title Vest Service API
// @version 1.0
// @description Investment plan lifecycle API: plans, investments, progressive interest accrual and automated completion.

// @contact.name API Support
// @contact.email support@vestservice.com

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel, cfg.Environment)

	// Initialize OpenTelemetry tracing
	tracingConfig := tracing.Config{
		Enabled:      cfg.Tracing.Enabled && cfg.Environment != "test",
		CollectorURL: cfg.Tracing.CollectorURL,
		Environment:  cfg.Environment,
		SampleRate:   cfg.Tracing.SampleRate,
		Insecure:     cfg.Tracing.Insecure,
	}

	tracingShutdown, err := tracing.InitTracer(context.Background(), tracingConfig, log.Zap())
	if err != nil {
		log.Fatal("Failed to initialize tracing", "error", err)
	}
	defer tracingShutdown(context.Background())

	// Initialize database
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}

	// Run migrations
	if err := database.RunMigrations(cfg.Database.URL); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Build dependency injection container
	container, err := di.NewContainer(cfg, db, log)
	if err != nil {
		log.Fatal("Failed to create DI container", "error", err)
	}

	// Initialize router with DI container
	router := routes.SetupRoutes(container)

	// Start the investment completion worker
	var completionWorker *investment_completion.Worker
	if cfg.Scheduler.Enabled {
		completionWorker = investment_completion.NewWorker(
			container.GetInvestmentService(),
			cfg.Scheduler,
			log.Zap(),
		)
		if err := completionWorker.Start(); err != nil {
			log.Fatal("Failed to start investment completion worker", "error", err)
		}
		log.Info("Investment completion worker started", "cron_spec", cfg.Scheduler.CronSpec)
	} else {
		log.Info("Investment completion worker disabled in configuration")
	}

	// Create server with enhanced configuration
	server := &http.Server{
		Addr:           fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	// Start server in goroutine
	go func() {
		log.Info("Starting server",
			"port", cfg.Server.Port,
			"environment", cfg.Environment,
			"read_timeout", cfg.Server.ReadTimeout,
			"write_timeout", cfg.Server.WriteTimeout,
		)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", "error", err)
		}
	}()

	// Initialize metrics collection
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for range ticker.C {
			// Update database connection metrics
			stats := db.Stats()
			metrics.DatabaseConnectionsGauge.WithLabelValues("open").Set(float64(stats.OpenConnections))
			metrics.DatabaseConnectionsGauge.WithLabelValues("idle").Set(float64(stats.Idle))
			metrics.DatabaseConnectionsGauge.WithLabelValues("in_use").Set(float64(stats.InUse))
		}
	}()

	// Block until an interrupt arrives, then drain in order: worker first
	// so no sweep is mid-flight when the container tears down its clients.
	shutdown := graceful.NewShutdownManager(server, db, log)
	if completionWorker != nil {
		shutdown.Register(completionWorker)
	}
	shutdown.Register(container)
	shutdown.WaitForShutdown()
}
