package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"leadgen-dashboard/internal/analytics"
	"leadgen-dashboard/internal/api"
	"leadgen-dashboard/internal/config"
	"leadgen-dashboard/internal/database"
	"leadgen-dashboard/internal/dataapi"
	"leadgen-dashboard/internal/logger"
	"leadgen-dashboard/internal/session"
	"leadgen-dashboard/internal/store"
	"leadgen-dashboard/internal/webhook"
	"leadgen-dashboard/internal/workflow"
	"leadgen-dashboard/internal/ws"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// openRepository returns the data store selected by database.backend.
func openRepository(cfg *config.Config, log logger.Logger) (store.Repository, error) {
	if cfg.Database.Backend == config.BackendREST {
		client := dataapi.NewClient(cfg.Supabase.URL, cfg.Supabase.Key, cfg.Supabase.Timeout, log)
		return dataapi.NewRepository(client), nil
	}

	db, err := database.Open(cfg.Database, cfg.Logging.Level == "debug")
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return database.NewGormRepository(db), nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := openRepository(cfg, log)
	if err != nil {
		zapLog.Fatal("data store init failed", zap.Error(err), zap.String("backend", cfg.Database.Backend))
	}
	zapLog.Info("data store ready", zap.String("backend", cfg.Database.Backend))

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	err = retryWithBackoff(func() error {
		return rdb.Ping(ctx).Err()
	}, 5, time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis unavailable", zap.Error(err))
	}

	hub := ws.NewHub(log)
	go hub.Run(ctx)

	cache := analytics.NewCache(rdb, cfg.Analytics.CacheTTL, log)
	trigger := workflow.NewClient(cfg.Webhooks, log)
	workspaces := api.NewWorkspaces(trigger, hub, cfg.Notifications.DismissAfter)
	defer workspaces.Close()

	router := api.NewRouter(api.Dependencies{
		Repo:       repo,
		Sessions:   session.NewStore(rdb, cfg.Session.TTL),
		Workspaces: workspaces,
		Cache:      cache,
		Hub:        hub,
		Webhook:    webhook.NewHandler(cfg.Server.VerifyToken, hub, cache, log),
		Log:        log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLog.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("Failed to run server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLog.Info("Server exited")
}
