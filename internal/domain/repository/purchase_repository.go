package repository

import (
	"context"

	"github.com/jhoicas/bodegas-api/internal/domain/entity"
)

// PurchaseFilter filtros para listar compras (forma aplanada: una fila por línea).
type PurchaseFilter struct {
	OrderNumber string
	State       entity.PurchaseState
	Limit       int
	Offset      int
}

// PurchaseRepository define el puerto de persistencia para Purchase.
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *entity.Purchase) error
	GetByID(ctx context.Context, id string) (*entity.Purchase, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Purchase, error)
	Update(ctx context.Context, purchase *entity.Purchase) error
	List(ctx context.Context, filter PurchaseFilter) ([]*entity.Purchase, error)
}
