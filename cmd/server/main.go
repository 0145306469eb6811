// backend-go/cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/po-analysis/backend-go/internal/api"
	"github.com/andresuchdata/po-analysis/backend-go/internal/cache"
	"github.com/andresuchdata/po-analysis/backend-go/internal/config"
	"github.com/andresuchdata/po-analysis/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/po-analysis/backend-go/internal/service"
	"github.com/andresuchdata/po-analysis/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Renderers expect quantities and amounts as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	// Initialize logger
	logger.SetLevel(cfg.Server.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	reportCache, err := cache.NewReportCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Str("backend", cfg.Cache.Backend).Msg("Report cache unavailable, continuing without cache")
		reportCache = cache.NewNoopReportCache()
	}

	// Initialize services
	poAnalysisService := service.NewPOAnalysisService(
		postgres.NewPORepository(db),
		reportCache,
		service.Options{ChartHeight: cfg.Report.ChartHeight},
	)

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{POAnalysisService: poAnalysisService}, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
