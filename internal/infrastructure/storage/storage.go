// Package storage arma los repositorios del backend configurado (PostgreSQL o memoria).
package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/bodegas-api/internal/application/inventory"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
	"github.com/jhoicas/bodegas-api/internal/infrastructure/memory"
	"github.com/jhoicas/bodegas-api/internal/infrastructure/postgres"
	"github.com/jhoicas/bodegas-api/pkg/config"
	"github.com/jhoicas/bodegas-api/pkg/logger"
)

// Storage repositorios fuera de transacción más el runner transaccional del backend elegido.
type Storage struct {
	Warehouses repository.WarehouseRepository
	Products   repository.ProductRepository
	Stocks     repository.StockRepository
	Movements  repository.MovementRepository
	Transfers  repository.TransferRepository
	Purchases  repository.PurchaseRepository
	Listings   repository.ListingRepository
	TxRunner   inventory.TxRunner
	Close      func()
}

// Open INVENTORY_STORE=postgres (por defecto) o memory para desarrollo local.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Storage, error) {
	log = logger.OrNop(log)
	switch cfg.Inventory.Store {
	case "memory":
		store := memory.NewStore()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return &Storage{
			Warehouses: store.Warehouses(),
			Products:   store.Products(),
			Stocks:     store.Stocks(),
			Movements:  store.Movements(),
			Transfers:  store.Transfers(),
			Purchases:  store.Purchases(),
			Listings:   store.Listings(),
			TxRunner:   memory.NewTxRunner(store),
			Close:      func() {},
		}, nil
	case "postgres", "":
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("esquema: %w", err)
		}
		return &Storage{
			Warehouses: postgres.NewWarehouseRepository(pool),
			Products:   postgres.NewProductRepository(pool),
			Stocks:     postgres.NewStockRepository(pool),
			Movements:  postgres.NewMovementRepository(pool),
			Transfers:  postgres.NewTransferRepository(pool),
			Purchases:  postgres.NewPurchaseRepository(pool),
			Listings:   postgres.NewListingRepository(pool),
			TxRunner:   postgres.NewTxRunner(pool, cfg.Inventory.TxMaxRetries, log),
			Close:      pool.Close,
		}, nil
	default:
		return nil, fmt.Errorf("INVENTORY_STORE desconocido: %q", cfg.Inventory.Store)
	}
}
