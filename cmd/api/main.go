package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	_ "github.com/jhoicas/bodegas-api/docs"
	"github.com/jhoicas/bodegas-api/internal/application/inventory"
	"github.com/jhoicas/bodegas-api/internal/application/marketplace"
	"github.com/jhoicas/bodegas-api/internal/application/purchase"
	"github.com/jhoicas/bodegas-api/internal/application/usecase"
	rules "github.com/jhoicas/bodegas-api/internal/domain/inventory"
	"github.com/jhoicas/bodegas-api/internal/infrastructure/events"
	inframarket "github.com/jhoicas/bodegas-api/internal/infrastructure/marketplace"
	"github.com/jhoicas/bodegas-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/bodegas-api/internal/interfaces/http"
	"github.com/jhoicas/bodegas-api/jobs"
	"github.com/jhoicas/bodegas-api/pkg/config"
	"github.com/jhoicas/bodegas-api/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// @title                       Bodegas API
// @version                     1.0
// @description                 Inventario multi-bodega: movimientos, transferencias y compras.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Inventory.Store).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer store.Close()

	hub := events.NewHub(256, log)
	go hub.Run(ctx)

	policy := rules.ParseUnderflowPolicy(cfg.Inventory.UnderflowPolicy)
	warehouseUC := usecase.NewWarehouseUseCase(store.Warehouses, store.TxRunner, log)
	productUC := usecase.NewProductUseCase(store.Products, store.Warehouses, store.Stocks, store.TxRunner, log)
	movementUC := inventory.NewMovementUseCase(
		store.TxRunner, store.Warehouses, store.Movements,
		inventory.Config{UnderflowPolicy: policy}, hub, log,
	)
	transferUC := inventory.NewTransferUseCase(store.TxRunner, store.Warehouses, store.Transfers, hub, log)
	purchaseUC := purchase.NewUseCase(store.TxRunner, store.Warehouses, store.Purchases, hub, log)

	deps := httpRouter.RouterDeps{
		WarehouseUC: warehouseUC,
		ProductUC:   productUC,
		Movements:   movementUC,
		Transfers:   transferUC,
		Purchases:   purchaseUC,
		Hub:         hub,
		JWTSecret:   cfg.JWT.Secret,
	}

	// Espejo de publicaciones: la sincronización corre en el worker; la API sólo encola.
	if cfg.Marketplace.Enabled() {
		source := inframarket.NewClient(cfg.Marketplace.BaseURL, cfg.Marketplace.Token, cfg.Marketplace.TimeoutSeconds)
		deps.Marketplace = marketplace.NewSyncUseCase(source, store.Listings, cfg.Marketplace.SellerID, cfg.Marketplace.PageSize, log)
		client := jobs.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		deps.SyncEnqueuer = client
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	// Swagger UI carga sus recursos desde un CDN.
	app.Use(helmet.New(helmet.Config{CrossOriginEmbedderPolicy: "unsafe-none"}))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Bodegas API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "ws_clients": hub.Clients()})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpRouter.Router(app, deps)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	stop()

	log.Info().Msg("aplicación detenida")
}
