package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/wolfman30/htx-dental-leads/internal/api/router"
	appconfig "github.com/wolfman30/htx-dental-leads/internal/config"
	"github.com/wolfman30/htx-dental-leads/pkg/logging"
)

func main() {
	if os.Getenv("ENV") == "" || os.Getenv("ENV") == "development" {
		// .env is optional in local runs.
		_ = godotenv.Load()
	}
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting htx-dental-leads API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := buildApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: router.New(&router.Config{
			Logger:             logger,
			LeadsHandler:       app.leads,
			VoiceHandler:       app.voice,
			ChatHandler:        app.chat,
			BrowseHandler:      app.browse,
			MetricsHandler:     app.metricsHandler,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
			RateLimiter:        app.limiter,
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr, "sinks", app.dispatcher.Sinks())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	// Voice leads are dispatched after the caller hears the closing line.
	if err := app.voice.Drain(shutdownCtx); err != nil {
		logger.Warn("voice lead dispatch still in flight at shutdown", "error", err)
	}

	logger.Info("server stopped")
}
