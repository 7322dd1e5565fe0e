package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/username/finapp/finsync/src/apiclient"
	"github.com/username/finapp/finsync/src/auth"
	"github.com/username/finapp/finsync/src/config"
	"github.com/username/finapp/finsync/src/database"
	"github.com/username/finapp/finsync/src/handlers"
	"github.com/username/finapp/finsync/src/loaders"
	"github.com/username/finapp/finsync/src/logger"
	"github.com/username/finapp/finsync/src/services"
)

const syncLogRetention = 500

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("Finance sync client starting...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	userID := auth.ResolveUserID(config.Cfg.UserID, config.Cfg.AccessToken)

	logger.L.Info("Initializing snapshot database...", "path", config.Cfg.SnapshotDBPath)
	if err := database.InitDB(config.Cfg.SnapshotDBPath); err != nil {
		logger.L.Error("Failed to initialize snapshot database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	client, err := apiclient.New(config.Cfg.APIBaseURL, apiclient.Options{
		AccessToken: config.Cfg.AccessToken,
		Timeout:     config.Cfg.RequestTimeout,
	})
	if err != nil {
		logger.L.Error("Invalid API configuration", "error", err)
		os.Exit(1)
	}

	bus := services.NewNotificationBus()
	poll := services.NewPollService(client, bus, config.Cfg.PollInterval, services.NewDBSyncRecorder(database.DB, syncLogRetention))

	var push *services.PushService
	if config.Cfg.PushEnabled {
		dialer := services.NewWebSocketDialer(config.Cfg.APIBaseURL, config.Cfg.AccessToken)
		push = services.NewPushService(dialer, services.SyncURL(config.Cfg.WSBaseURL, userID), bus, services.PushOptions{
			MinBackoff: config.Cfg.ReconnectMinInterval,
			MaxBackoff: config.Cfg.ReconnectMaxInterval,
		})
	}
	syncService := services.NewSyncService(bus, poll, push)

	registry := loaders.NewRegistry(client, syncService.Bus(), userID,
		loaders.WithSnapshotStore(loaders.NewDBSnapshotStore(database.DB, userID)),
		loaders.WithFetchTimeout(config.Cfg.RequestTimeout),
	)
	tracker := loaders.NewScreenTracker(registry, config.Cfg.ScreenIdleTimeout)

	if err := syncService.Start(ctx); err != nil {
		logger.L.Error("Failed to start sync service", "error", err)
		os.Exit(1)
	}

	router := handlers.NewRouter(
		handlers.NewViewHandler(registry, tracker),
		handlers.NewSyncHandler(syncService, database.DB, userID),
		config.Cfg.AllowedOrigins,
		handlers.NewRateLimiter(),
	)

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.L.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.L.Error("Server shutdown failed", "error", err)
		}
	}()

	logger.L.Info("Server starting", "address", serverAddr, "userID", userID)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		stdlog.Fatalf("Failed to start server: %v", err)
	}

	tracker.ReleaseAll()
	registry.DeactivateAll()
	if err := syncService.Stop(); err != nil {
		logger.L.Warn("Sync service stop", "error", err)
	}
	logger.L.Info("Finance sync client stopped")
}
