package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo transferencias sobre PostgreSQL. Items y acumulados recibidos en JSONB.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferColumns = `id, receipt_number, created_at, updated_at, state, origin_id, dest_id, items, received_items, operator, notes`

// Create persiste una transferencia.
func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	received := t.ReceivedItems
	if received == nil {
		received = []entity.ReceivedItem{}
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO transfers (`+transferColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.ReceiptNumber, t.CreatedAt, t.UpdatedAt, string(t.State), t.OriginWarehouseID,
		t.DestinationWarehouseID, t.Items, received, t.Operator, t.Notes,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create transfer: %w", err)
	}
	return nil
}

// GetByID obtiene una transferencia por ID.
func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.getOne(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1`, id)
}

// GetForUpdate obtiene y bloquea la transferencia dentro de la tx.
func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.getOne(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1 FOR UPDATE`, id)
}

func (r *TransferRepo) getOne(ctx context.Context, query, id string) (*entity.Transfer, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	return t, nil
}

// Update persiste estado y acumulados recibidos.
func (r *TransferRepo) Update(ctx context.Context, t *entity.Transfer) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE transfers SET state = $2, received_items = $3, updated_at = $4
		WHERE id = $1`, t.ID, string(t.State), t.ReceivedItems, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update transfer: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista transferencias por estado y/o bodega (origen o destino), las más recientes primero.
func (r *TransferRepo) List(ctx context.Context, f repository.TransferFilter) ([]*entity.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE TRUE`
	var args []any
	pos := 1
	if f.State != "" {
		query += fmt.Sprintf(" AND state = $%d", pos)
		args = append(args, string(f.State))
		pos++
	}
	if f.WarehouseID != "" {
		query += fmt.Sprintf(" AND (origin_id = $%d OR dest_id = $%d)", pos, pos)
		args = append(args, f.WarehouseID)
		pos++
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// Delete elimina una transferencia.
func (r *TransferRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM transfers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete transfer: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CountOpenByWarehouse transferencias no recibidas que involucran la bodega.
func (r *TransferRepo) CountOpenByWarehouse(ctx context.Context, warehouseID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `
		SELECT count(*) FROM transfers
		WHERE state <> $2 AND (origin_id = $1 OR dest_id = $1)`,
		warehouseID, string(entity.TransferReceived)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count open transfers by warehouse: %w", err)
	}
	return n, nil
}

// CountOpenByProduct transferencias no recibidas que incluyen el producto.
func (r *TransferRepo) CountOpenByProduct(ctx context.Context, productID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `
		SELECT count(*) FROM transfers
		WHERE state <> $2 AND EXISTS (SELECT 1 FROM jsonb_array_elements(items) e WHERE e->>'product_id' = $1)`,
		productID, string(entity.TransferReceived)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count open transfers by product: %w", err)
	}
	return n, nil
}

func scanTransfer(row pgx.Row) (*entity.Transfer, error) {
	var t entity.Transfer
	var state string
	err := row.Scan(&t.ID, &t.ReceiptNumber, &t.CreatedAt, &t.UpdatedAt, &state, &t.OriginWarehouseID,
		&t.DestinationWarehouseID, &t.Items, &t.ReceivedItems, &t.Operator, &t.Notes)
	if err != nil {
		return nil, err
	}
	t.State = entity.TransferState(state)
	return &t, nil
}
