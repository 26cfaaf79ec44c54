package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/inventory"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo filas product_stocks: una por (producto, bodega). Es la unidad de bloqueo.
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el nivel actual; una fila inexistente equivale a cero.
func (r *StockRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.StockLevel, error) {
	query := `
		SELECT product_id, warehouse_id, stock, transit, updated_at
		FROM product_stocks WHERE product_id = $1 AND warehouse_id = $2`
	var s entity.StockLevel
	err := r.q.QueryRow(ctx, query, productID, warehouseID).Scan(&s.ProductID, &s.WarehouseID, &s.Stock, &s.Transit, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockLevel{ProductID: productID, WarehouseID: warehouseID}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// GetForUpdate asegura la fila y la bloquea (SELECT FOR UPDATE). Pares distintos no se bloquean entre sí.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.StockLevel, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO product_stocks (product_id, warehouse_id) VALUES ($1, $2)
		ON CONFLICT (product_id, warehouse_id) DO NOTHING`, productID, warehouseID)
	if err != nil {
		if isForeignKeyViolation(err) {
			// La bodega o el producto se eliminó en una transacción concurrente.
			return nil, fmt.Errorf("ensure stock row: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("ensure stock row: %w", err)
	}
	query := `
		SELECT product_id, warehouse_id, stock, transit, updated_at
		FROM product_stocks WHERE product_id = $1 AND warehouse_id = $2
		FOR UPDATE`
	var s entity.StockLevel
	err = r.q.QueryRow(ctx, query, productID, warehouseID).Scan(&s.ProductID, &s.WarehouseID, &s.Stock, &s.Transit, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return &s, nil
}

// SetStock fija el stock (valor absoluto, piso 0).
func (r *StockRepo) SetStock(ctx context.Context, productID, warehouseID string, value int) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO product_stocks (product_id, warehouse_id, stock, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (product_id, warehouse_id) DO UPDATE SET stock = EXCLUDED.stock, updated_at = now()`,
		productID, warehouseID, inventory.Floor(value))
	if err != nil {
		return fmt.Errorf("set stock: %w", err)
	}
	return nil
}

// SetTransit fija el tránsito (valor absoluto, piso 0).
func (r *StockRepo) SetTransit(ctx context.Context, productID, warehouseID string, value int) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO product_stocks (product_id, warehouse_id, transit, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (product_id, warehouse_id) DO UPDATE SET transit = EXCLUDED.transit, updated_at = now()`,
		productID, warehouseID, inventory.Floor(value))
	if err != nil {
		return fmt.Errorf("set transit: %w", err)
	}
	return nil
}

// EnsureRows crea filas en cero para las bodegas que falten.
func (r *StockRepo) EnsureRows(ctx context.Context, productID string, warehouseIDs []string) error {
	if len(warehouseIDs) == 0 {
		return nil
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO product_stocks (product_id, warehouse_id)
		SELECT $1, w FROM unnest($2::text[]) AS w
		ON CONFLICT (product_id, warehouse_id) DO NOTHING`, productID, warehouseIDs)
	if err != nil {
		return fmt.Errorf("ensure stock rows: %w", err)
	}
	return nil
}

// LockByWarehouse bloquea las filas de la bodega (FOR UPDATE) e indica si alguna tiene stock o tránsito.
func (r *StockRepo) LockByWarehouse(ctx context.Context, warehouseID string) (bool, error) {
	return r.lockRows(ctx, `
		SELECT stock, transit FROM product_stocks WHERE warehouse_id = $1
		ORDER BY product_id FOR UPDATE`, warehouseID)
}

// LockByProduct bloquea las filas del producto (FOR UPDATE) e indica si alguna tiene stock o tránsito.
func (r *StockRepo) LockByProduct(ctx context.Context, productID string) (bool, error) {
	return r.lockRows(ctx, `
		SELECT stock, transit FROM product_stocks WHERE product_id = $1
		ORDER BY warehouse_id FOR UPDATE`, productID)
}

func (r *StockRepo) lockRows(ctx context.Context, query, id string) (bool, error) {
	rows, err := r.q.Query(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("lock stock rows: %w", err)
	}
	defer rows.Close()
	busy := false
	for rows.Next() {
		var stock, transit int
		if err := rows.Scan(&stock, &transit); err != nil {
			return false, fmt.Errorf("scan stock row: %w", err)
		}
		if stock > 0 || transit > 0 {
			busy = true
		}
	}
	return busy, rows.Err()
}

// DeleteEmptyByWarehouse borra las filas en cero de la bodega.
func (r *StockRepo) DeleteEmptyByWarehouse(ctx context.Context, warehouseID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM product_stocks WHERE warehouse_id = $1 AND stock = 0 AND transit = 0`, warehouseID)
	if err != nil {
		return fmt.Errorf("delete stocks by warehouse: %w", err)
	}
	return nil
}

// DeleteEmptyByProduct borra las filas en cero del producto.
func (r *StockRepo) DeleteEmptyByProduct(ctx context.Context, productID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM product_stocks WHERE product_id = $1 AND stock = 0 AND transit = 0`, productID)
	if err != nil {
		return fmt.Errorf("delete stocks by product: %w", err)
	}
	return nil
}
