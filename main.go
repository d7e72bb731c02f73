// Package main provides the main entry point for the Kyu-Ar QR code registry
package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirphl/Kyu-Ar/app/handlers"
	"github.com/amirphl/Kyu-Ar/app/middleware"
	"github.com/amirphl/Kyu-Ar/app/router"
	"github.com/amirphl/Kyu-Ar/app/services"
	businessflow "github.com/amirphl/Kyu-Ar/business_flow"
	"github.com/amirphl/Kyu-Ar/config"
	"github.com/amirphl/Kyu-Ar/repository"
	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    router.Router
	config    *config.Config
	server    *fiber.App
	db        *gorm.DB
	stopFuncs []func()
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	closeLog := initializeLogging(cfg.Logging)
	defer closeLog()

	log.Printf("Starting Kyu-Ar %s (%s, %s)...", cfg.Deployment.Version, cfg.Deployment.CommitHash, cfg.Deployment.Environment)

	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := app.router.Start(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	if err := repository.CloseDatabase(app.db); err != nil {
		log.Printf("Error closing database: %v", err)
	}

	log.Println("Server stopped")
}

// initializeLogging points the standard logger at stdout, a rotating file, or
// both. The returned func flushes and closes the file writer.
func initializeLogging(cfg config.LoggingConfig) func() {
	log.SetFlags(log.LstdFlags | log.LUTC)

	if cfg.Output != "file" && cfg.Output != "both" {
		log.SetOutput(os.Stdout)
		return func() {}
	}

	rotating := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	var w io.Writer = rotating
	if cfg.Output == "both" {
		w = io.MultiWriter(os.Stdout, rotating)
	}
	log.SetOutput(w)

	return func() {
		if err := rotating.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
		}
	}
}

// startDatabaseHealthMonitor periodically pings the database to surface
// connectivity issues in the logs. The returned cancel function stops it.
func startDatabaseHealthMonitor(parent context.Context, sqlDB *sql.DB, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := sqlDB.PingContext(ctx); err != nil {
					log.Printf("Database healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

func initializeApplication(cfg *config.Config) (*Application, error) {
	var stopFuncs []func()

	db, err := repository.OpenDatabase(cfg.Database, cfg.Logging.Level)
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(db); err != nil {
			_ = repository.CloseDatabase(db)
			return nil, err
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		_ = repository.CloseDatabase(db)
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	stopFuncs = append(stopFuncs, startDatabaseHealthMonitor(context.Background(), sqlDB, cfg.Database.HealthInterval))

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(sqlDB, cfg.Database.Driver),
	)
	metrics := middleware.NewMetrics(registry)

	// Repositories
	codeRepo := repository.NewCodeRepository(db)
	scanRepo := repository.NewScanEventRepository(db)

	// Services
	renderer := services.NewQRRenderer()

	// Business flows
	codeFlow := businessflow.NewCodeFlow(codeRepo, db, cfg.Registry, metrics)
	scanFlow := businessflow.NewScanFlow(codeRepo, scanRepo, db, cfg.Registry, metrics)
	renderFlow := businessflow.NewRenderFlow(codeRepo, renderer)

	// Handlers
	codeHandler := handlers.NewCodeHandler(codeFlow, scanFlow, cfg.Deployment.PublicBaseURL, cfg.Server.RequestTimeout)
	imageHandler := handlers.NewImageHandler(renderFlow, cfg.Server.RequestTimeout)

	appRouter := router.NewFiberRouter(cfg, codeHandler, imageHandler, metrics, registry, sqlDB)

	return &Application{
		router:    appRouter,
		config:    cfg,
		server:    appRouter.GetApp(),
		db:        db,
		stopFuncs: stopFuncs,
	}, nil
}
