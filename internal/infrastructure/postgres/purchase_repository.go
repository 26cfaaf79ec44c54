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

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

// PurchaseRepo líneas de compra sobre PostgreSQL. Montos NUMERIC vía pgx-shopspring-decimal.
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

const purchaseColumns = `id, order_number, combined_receipt_label, dest_id, state, guides, claim_reason, claim_amount,
	claim_state, supplier_name, supplier_contact, product_code, product_name, quantity, received_quantity,
	total_cost, observations, created_at, updated_at`

// Create persiste una línea de compra.
func (r *PurchaseRepo) Create(ctx context.Context, p *entity.Purchase) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO purchases (`+purchaseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		p.ID, p.OrderNumber, p.CombinedReceiptLabel, p.DestinationWarehouseID, string(p.State), guides(p),
		string(p.Claim.Reason), p.Claim.Amount, string(p.Claim.State), p.Supplier.Name, p.Supplier.Contact,
		p.ProductCode, p.ProductName, p.Quantity, p.ReceivedQuantity, p.TotalCost, p.Observations,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create purchase: %w", err)
	}
	return nil
}

func guides(p *entity.Purchase) []string {
	if p.ShipmentGuides == nil {
		return []string{}
	}
	return p.ShipmentGuides
}

// GetByID obtiene una línea de compra.
func (r *PurchaseRepo) GetByID(ctx context.Context, id string) (*entity.Purchase, error) {
	return r.getOne(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id = $1`, id)
}

// GetForUpdate obtiene y bloquea la línea de compra.
func (r *PurchaseRepo) GetForUpdate(ctx context.Context, id string) (*entity.Purchase, error) {
	return r.getOne(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id = $1 FOR UPDATE`, id)
}

func (r *PurchaseRepo) getOne(ctx context.Context, query, id string) (*entity.Purchase, error) {
	p, err := scanPurchase(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	return p, nil
}

// Update persiste estado logístico, guías, reclamo y cantidad recibida.
func (r *PurchaseRepo) Update(ctx context.Context, p *entity.Purchase) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE purchases SET state = $2, guides = $3, combined_receipt_label = $4, claim_reason = $5,
			claim_amount = $6, claim_state = $7, received_quantity = $8, observations = $9, updated_at = $10
		WHERE id = $1`,
		p.ID, string(p.State), guides(p), p.CombinedReceiptLabel, string(p.Claim.Reason),
		p.Claim.Amount, string(p.Claim.State), p.ReceivedQuantity, p.Observations, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update purchase: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista líneas de compra por orden y/o estado, las más recientes primero.
func (r *PurchaseRepo) List(ctx context.Context, f repository.PurchaseFilter) ([]*entity.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE TRUE`
	var args []any
	pos := 1
	if f.OrderNumber != "" {
		query += fmt.Sprintf(" AND order_number = $%d", pos)
		args = append(args, f.OrderNumber)
		pos++
	}
	if f.State != "" {
		query += fmt.Sprintf(" AND state = $%d", pos)
		args = append(args, string(f.State))
		pos++
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()
	var list []*entity.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanPurchase(row pgx.Row) (*entity.Purchase, error) {
	var (
		p                         entity.Purchase
		state, reason, claimState string
	)
	err := row.Scan(&p.ID, &p.OrderNumber, &p.CombinedReceiptLabel, &p.DestinationWarehouseID, &state,
		&p.ShipmentGuides, &reason, &p.Claim.Amount, &claimState, &p.Supplier.Name, &p.Supplier.Contact,
		&p.ProductCode, &p.ProductName, &p.Quantity, &p.ReceivedQuantity, &p.TotalCost, &p.Observations,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.State = entity.PurchaseState(state)
	p.Claim.Reason = entity.ClaimReason(reason)
	p.Claim.State = entity.ClaimState(claimState)
	return &p, nil
}
