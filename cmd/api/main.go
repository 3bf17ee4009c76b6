package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/auroradesk/aurora/internal/app"
	"github.com/auroradesk/aurora/internal/config"
	"github.com/auroradesk/aurora/internal/database"
	"github.com/auroradesk/aurora/internal/server"
	"github.com/auroradesk/aurora/pkg/Logger"
)

// This is the main entry point for the gateway.
// Loads in all system components
// Exposes functionalities
func main() {
	// fetch cfg
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	// load global logger
	logger := Logger.New(cfg.Debug)
	logger.Info("Logger initialized")

	// optional persistence: usage tracking needs the database, probe
	// caching and the scheduler need redis; the gateway runs without both
	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Warnf("Database unavailable, usage tracking disabled: %v", err)
		db = nil
	}
	rc, err := database.NewRedis(cfg.Redis)
	if err != nil {
		logger.Warnf("Redis unavailable, probe cache and scheduler disabled: %v", err)
		rc = nil
	}

	ctx := context.Background()
	application, err := app.NewApp(ctx, cfg, logger, db, rc)
	if err != nil {
		logger.Fatalf("Failed to wire application: %v", err)
	}
	if err := application.Start(ctx); err != nil {
		logger.Fatalf("Failed to start background components: %v", err)
	}

	// compose router
	engine := gin.New()
	server.InitializeRoutes(engine, application.GetServerDependencies())

	// listen with graceful exit
	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: engine.Handler(),
	}
	go func() {
		logger.Infof("Gateway listening on %s", cfg.Server.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server exiting %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	application.Stop()

	// 5 secs then cancel
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Shutdown err %v", err)
	}
	logger.Info("Shutdown system")
}
