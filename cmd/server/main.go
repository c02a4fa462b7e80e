package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/maxviazov/user-directory-service/internal/cache"
	"github.com/maxviazov/user-directory-service/internal/config"
	"github.com/maxviazov/user-directory-service/internal/handler"
	"github.com/maxviazov/user-directory-service/internal/logger"
	"github.com/maxviazov/user-directory-service/internal/metrics"
	"github.com/maxviazov/user-directory-service/internal/middleware"
	"github.com/maxviazov/user-directory-service/internal/repository/jsonplaceholder"
	"github.com/maxviazov/user-directory-service/internal/service"
)

func main() {
	configPath := os.Getenv("APP_CONFIG_FILE")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// Load application config
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("❌ Config loading failed: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("❌ Logger initialization failed: %v", err)
	}

	upstream, err := jsonplaceholder.New(cfg, &appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("❌ Upstream client setup failed")
	}

	store, rdb, err := newStore(cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("❌ Cache store setup failed")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	pages := cache.NewPageCache(upstream, appLogger,
		cache.WithStore(store, cfg.Cache.Backend),
		cache.WithStaleTime(cfg.Cache.StaleTime),
		cache.WithGCTime(cfg.Cache.GCTime),
		cache.WithFetchTimeout(cfg.Upstream.Timeout),
	)
	users := service.NewUserService(pages, upstream, cfg.View, appLogger)

	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(appLogger), metrics.Middleware())
	handler.Register(r, users, users)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      r,
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		appLogger.Info().Str("addr", srv.Addr).Str("upstream", cfg.Upstream.BaseURL).Str("cache", cfg.Cache.Backend).Msg("🚀 Service started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal().Err(err).Msg("❌ HTTP server failed")
		}
	}()

	<-ctx.Done()
	appLogger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error().Err(err).Msg("graceful shutdown failed")
	}
	// let background revalidations land before the store goes away
	pages.Wait()
	appLogger.Info().Msg("✅ Service stopped")
}

// newStore builds the page store for the configured backend. The redis backend keeps a short-lived
// in-memory L1 in front of the shared store.
func newStore(cfg *config.Config, l zerolog.Logger) (cache.Store, redis.UniversalClient, error) {
	switch cfg.Cache.Backend {
	case "redis":
		rdb, err := cache.NewRedisClient(cfg.Redis, l)
		if err != nil {
			return nil, nil, err
		}
		l2 := cache.NewRedisStore(rdb, cfg.Cache.KeyPrefix)
		return cache.NewTieredStore(cache.NewMemoryStore(), l2, cfg.Cache.StaleTime), rdb, nil
	default:
		return cache.NewMemoryStore(), nil, nil
	}
}
