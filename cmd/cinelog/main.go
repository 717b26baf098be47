package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mantonx/cinelog/internal/auth"
	"github.com/mantonx/cinelog/internal/config"
	"github.com/mantonx/cinelog/internal/database"
	"github.com/mantonx/cinelog/internal/logger"
	"github.com/mantonx/cinelog/internal/server"
)

func main() {
	configPath := os.Getenv("CINELOG_CONFIG_PATH")
	if configPath == "" {
		configPath = "./cinelog.yaml"
	}

	if err := config.Load(configPath); err != nil {
		logger.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	// Config edits on disk take effect without a restart.
	stopWatch, err := config.GetConfigManager().WatchFile(configPath)
	if err != nil {
		logger.Warn("Config watching disabled: %v", err)
	} else {
		defer stopWatch()
	}

	if err := database.Initialize(); err != nil {
		logger.Error("Failed to initialize database: %v", err)
		os.Exit(1)
	}

	if err := auth.Initialize(); err != nil {
		logger.Error("Failed to initialize auth: %v", err)
		os.Exit(1)
	}

	router, err := server.SetupRouter()
	if err != nil {
		logger.Error("Failed to set up server: %v", err)
		os.Exit(1)
	}

	cfg := config.Get().Server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Info("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown: %v", err)
	}
	logger.Info("Server stopped")
}
