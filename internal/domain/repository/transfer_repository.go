package repository

import (
	"context"

	"github.com/jhoicas/bodegas-api/internal/domain/entity"
)

// TransferFilter filtros para listar transferencias.
type TransferFilter struct {
	State       entity.TransferState
	WarehouseID string // origen o destino
	Limit       int
	Offset      int
}

// TransferRepository define el puerto de persistencia para Transfer.
type TransferRepository interface {
	Create(ctx context.Context, transfer *entity.Transfer) error
	GetByID(ctx context.Context, id string) (*entity.Transfer, error)
	// GetForUpdate bloquea el documento de la transferencia dentro de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error)
	// Update persiste estado y acumulados recibidos.
	Update(ctx context.Context, transfer *entity.Transfer) error
	List(ctx context.Context, filter TransferFilter) ([]*entity.Transfer, error)
	Delete(ctx context.Context, id string) error
	// CountOpenByWarehouse y CountOpenByProduct cuentan transferencias no recibidas que los referencian.
	CountOpenByWarehouse(ctx context.Context, warehouseID string) (int, error)
	CountOpenByProduct(ctx context.Context, productID string) (int, error)
}
