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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"helping-hands/shiftdesk/internal/api"
	"helping-hands/shiftdesk/internal/common"
	"helping-hands/shiftdesk/internal/config"
	"helping-hands/shiftdesk/internal/db"
	"helping-hands/shiftdesk/internal/logging"
	"helping-hands/shiftdesk/internal/metrics"
	"helping-hands/shiftdesk/internal/routes"
	"helping-hands/shiftdesk/internal/workers"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logging.Init(cfg.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("shiftdesk starting up",
		"environment", cfg.Env,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	if err := run(cfg); err != nil {
		logging.Fatal("Server exited with error", "error", err)
	}
	logging.Info("Server stopped")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orm, err := db.InitORM(cfg.Database)
	if err != nil {
		return err
	}
	logging.Info("Connected to store (GORM)", "driver", cfg.Database.Driver)

	applied, err := db.Migrate(ctx, orm)
	if err != nil {
		return err
	}
	logging.Info("Migrations complete", "applied", applied)

	sqlxDB, err := db.InitSQLX(cfg.Database, orm)
	if err != nil {
		return err
	}
	logging.Info("Connected to store (sqlx)")

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = common.NewRedisClient(cfg.Redis)
		defer redisClient.Close()
	}

	metricsReg := metrics.NewMetricsRegistry(prometheus.DefaultRegisterer)

	deps, err := api.InitDependencies(cfg, orm, sqlxDB, redisClient, metricsReg)
	if err != nil {
		return err
	}

	bg, err := workers.InitWorkers(ctx, deps.Services.RedisQueue, cfg.Notifications, metricsReg)
	if err != nil {
		return err
	}
	defer bg.Stop()

	upSince := time.Now()
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           routes.RegisterRoutes(deps, prometheus.DefaultGatherer, upSince),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Info("Server starting", "addr", cfg.Server.Addr, "environment", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logging.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := server.Shutdown(shutdownCtx)

		// let queued shift announcements finish before the store closes
		deps.Services.Dispatcher.Wait()
		return err
	})

	return g.Wait()
}
