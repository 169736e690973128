package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-locator/internal/api"
	"go-locator/internal/app"
	"go-locator/internal/config"
	"go-locator/internal/logger"
	"go-locator/internal/scheduler"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	appLog, closeLog, err := logger.New(logger.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		FluentHost: cfg.Log.FluentHost,
		FluentPort: cfg.Log.FluentPort,
		FluentTag:  "locator.server",
	})
	if err != nil {
		appLog.Warn("⚠️ Fluent logging disabled", logger.Fields{"error": err.Error()})
	}
	defer closeLog()

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, appLog, app.Options{})
	if err != nil {
		log.Fatalf("❌ Failed to start: %v", err)
	}
	defer a.Close()

	sched := scheduler.New(a.Orchestrator, a.Report, appLog)
	if err := sched.Add(ctx, cfg.Schedules); err != nil {
		log.Fatalf("❌ Invalid schedule: %v", err)
	}
	sched.Start()

	server := api.New(a.Orchestrator, a.Store, api.Options{
		DefaultRadiusKm: cfg.Search.RadiusKm,
		AllowedOrigins:  cfg.HTTP.AllowedOrigins,
		Log:             appLog,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLog.Info("Server listening", logger.Fields{"port": cfg.HTTP.Port})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("❌ Server failed", err, nil)
			stop()
		}
	}()

	<-ctx.Done()
	appLog.Info("🛑 Shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("❌ Server shutdown failed", err, nil)
	}
	sched.Stop(shutdownCtx)
}
