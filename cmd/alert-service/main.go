package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mkraiem/go-smartcity-alerts/internal/alertstore"
	"github.com/mkraiem/go-smartcity-alerts/internal/api"
	"github.com/mkraiem/go-smartcity-alerts/internal/broadcast"
	"github.com/mkraiem/go-smartcity-alerts/internal/config"
	"github.com/mkraiem/go-smartcity-alerts/internal/logging"
	"github.com/mkraiem/go-smartcity-alerts/internal/models"
	"github.com/mkraiem/go-smartcity-alerts/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, "alert-service")

	codec := alertstore.NewCodec(cfg.Alerts.DocumentPath)
	store, err := alertstore.NewStore(codec)
	if err != nil {
		logging.Fatalf("Failed to initialize alert store: %v", err)
	}
	engine := alertstore.NewEngine(codec)

	slog.Info("alert store ready", "document", store.DocumentPath(), "alerts", store.Count())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Live stream fan-out runs off the request path: saved alerts are queued
	// to the pool, which pushes the urgent ones to SSE subscribers.
	broadcaster := broadcast.NewBroadcaster()
	notifier := worker.NewPool(cfg.Worker.Count, cfg.Worker.BufferSize, func(ctx context.Context, a models.Alert) {
		if a.IsSevereOrHigher() {
			broadcaster.Broadcast(a)
		}
		slog.Info("alert broadcast", "id", a.ID, "severity", a.Severity, "region", a.Region)
	})
	notifier.Start(ctx)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))
	router.Use(api.RateLimitMiddleware(cfg.Alerts.RateLimitRPS))

	handler := api.NewAlertHandler(store, engine, broadcaster, notifier)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Alerts.Host, cfg.Alerts.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	notifier.Stop()
	broadcaster.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
