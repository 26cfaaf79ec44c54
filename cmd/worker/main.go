package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/hibiken/asynq"
	"github.com/jhoicas/bodegas-api/internal/application/marketplace"
	inframarket "github.com/jhoicas/bodegas-api/internal/infrastructure/marketplace"
	"github.com/jhoicas/bodegas-api/internal/infrastructure/postgres"
	"github.com/jhoicas/bodegas-api/jobs"
	"github.com/jhoicas/bodegas-api/pkg/config"
	"github.com/jhoicas/bodegas-api/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	if !cfg.Marketplace.Enabled() {
		log.Fatal().Msg("MARKETPLACE_BASE_URL y MARKETPLACE_SELLER_ID son obligatorios para el worker")
	}
	if cfg.Inventory.Store == "memory" {
		log.Fatal().Msg("el worker requiere INVENTORY_STORE=postgres")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("esquema")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}

	source := inframarket.NewClient(cfg.Marketplace.BaseURL, cfg.Marketplace.Token, cfg.Marketplace.TimeoutSeconds)
	syncUC := marketplace.NewSyncUseCase(source, postgres.NewListingRepository(pool), cfg.Marketplace.SellerID, cfg.Marketplace.PageSize, log)
	metrics := jobs.NewMetrics(nil)
	handler := jobs.NewMarketplaceSyncHandler(syncUC, jobs.NewGuard(rdb, 10*time.Minute), metrics, log.Component("marketplace_sync"))

	// El payload lleva la hora de registro; el candado evita corridas simultáneas entre réplicas.
	task, err := jobs.NewMarketplaceSyncTask(time.Now().UTC(), false)
	if err != nil {
		log.Fatal().Err(err).Msg("tarea programada")
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		Concurrency: 2,
		Logger:      log,
		Handlers:    []jobs.TaskHandler{{Type: jobs.TaskMarketplaceSync, Handler: handler}},
		Cron:        []jobs.CronRegistration{{Spec: cfg.Marketplace.SyncCron, Task: task}},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("crear worker")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("cron", cfg.Marketplace.SyncCron).Msg("sincronización de publicaciones programada")
		err := worker.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	if cfg.HTTP.MetricsAddr != "" {
		metricsApp := fiber.New(fiber.Config{DisableStartupMessage: true})
		metricsApp.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
		g.Go(func() error {
			return metricsApp.Listen(cfg.HTTP.MetricsAddr)
		})
		g.Go(func() error {
			<-gctx.Done()
			return metricsApp.Shutdown()
		})
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("worker finalizado con error")
	}
	log.Info().Msg("worker detenido")
}
