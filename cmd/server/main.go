package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jengzang/travel-atlas-go/internal/api"
	"github.com/jengzang/travel-atlas-go/internal/config"
	"github.com/jengzang/travel-atlas-go/internal/database"
	"github.com/jengzang/travel-atlas-go/internal/logging"
	"github.com/jengzang/travel-atlas-go/internal/mapdata"
	"github.com/jengzang/travel-atlas-go/internal/middleware"
	"github.com/jengzang/travel-atlas-go/internal/observability"
	"github.com/jengzang/travel-atlas-go/internal/repository"
	"github.com/jengzang/travel-atlas-go/internal/service"
)

func main() {
	// 加载配置
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.TracingEnabled,
		ServiceName: cfg.TracingServiceName,
	}, logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, logger)

	// 初始化数据库
	if cfg.DBDriver == database.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}
	db, err := database.Open(database.Config{Driver: cfg.DBDriver, Path: cfg.DBPath, DSN: cfg.DSN}, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.NewMigrationManager(db, logger).RunMigrations(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	registry := observability.NewRegistry()
	httpMetrics, err := observability.NewHTTPCollector(registry)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}
	cacheMetrics, err := mapdata.NewMetrics(registry)
	if err != nil {
		return fmt.Errorf("register cache metrics: %w", err)
	}

	regionRepo := repository.NewRegionRepository(db)
	poiRepo := repository.NewPOIRepository(db)
	maps := mapdata.NewService(repository.NewMapBackend(regionRepo, poiRepo), mapdata.Options{
		ReferenceTTL:  cfg.ReferenceCacheTTL,
		POITTL:        cfg.POICacheTTL,
		POIMaxEntries: cfg.POICacheMaxEntries,
		Logger:        logger,
		Metrics:       cacheMetrics,
	})

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow)
	go limiter.Run(ctx)

	// 初始化路由
	router := api.SetupRouter(cfg, api.Dependencies{
		Logger:      logger,
		Registry:    registry,
		HTTPMetrics: httpMetrics,
		Limiter:     limiter,
		MapData:     maps,
		Regions:     service.NewRegionService(maps, regionRepo, logger),
		POIs:        service.NewPOIService(maps, poiRepo, logger),
		Trips:       service.NewTripService(repository.NewTripRepository(db), maps),
		Reviews:     service.NewReviewService(repository.NewReviewRepository(db), poiRepo),
	})

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", cfg.Port), zap.String("db_driver", cfg.DBDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited gracefully")
	return nil
}
