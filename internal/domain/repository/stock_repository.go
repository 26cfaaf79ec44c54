package repository

import (
	"context"

	"github.com/jhoicas/bodegas-api/internal/domain/entity"
)

// StockRepository define el puerto para consultar/actualizar stock y tránsito por bodega+producto.
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	// Get devuelve el nivel actual (en cero si no existe la fila).
	Get(ctx context.Context, productID, warehouseID string) (*entity.StockLevel, error)
	// GetForUpdate bloquea la fila (producto, bodega), creándola en cero si no existe.
	GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.StockLevel, error)
	// SetStock y SetTransit fijan el valor absoluto, recortado a 0.
	SetStock(ctx context.Context, productID, warehouseID string, value int) error
	SetTransit(ctx context.Context, productID, warehouseID string, value int) error
	// EnsureRows crea en cero las filas faltantes de un producto para las bodegas dadas.
	EnsureRows(ctx context.Context, productID string, warehouseIDs []string) error
	// LockByWarehouse y LockByProduct bloquean todas las filas de la bodega o del producto
	// e indican si alguna tiene stock o tránsito > 0.
	LockByWarehouse(ctx context.Context, warehouseID string) (bool, error)
	LockByProduct(ctx context.Context, productID string) (bool, error)
	// DeleteEmptyByWarehouse y DeleteEmptyByProduct borran sólo las filas en cero.
	DeleteEmptyByWarehouse(ctx context.Context, warehouseID string) error
	DeleteEmptyByProduct(ctx context.Context, productID string) error
}
