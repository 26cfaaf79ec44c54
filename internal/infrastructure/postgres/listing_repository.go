package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
)

var _ repository.ListingRepository = (*ListingRepo)(nil)

// ListingRepo espejo de publicaciones del marketplace. Sólo lo escribe el job de sincronización.
type ListingRepo struct {
	q Querier
}

// NewListingRepository construye el adaptador.
func NewListingRepository(q Querier) *ListingRepo {
	return &ListingRepo{q: q}
}

// Upsert reemplaza la instantánea de la publicación.
func (r *ListingRepo) Upsert(ctx context.Context, l *entity.Listing) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO listings (id, seller_id, title, status, price, available_qty, sold_qty, permalink, raw, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			seller_id = EXCLUDED.seller_id, title = EXCLUDED.title, status = EXCLUDED.status,
			price = EXCLUDED.price, available_qty = EXCLUDED.available_qty, sold_qty = EXCLUDED.sold_qty,
			permalink = EXCLUDED.permalink, raw = EXCLUDED.raw, synced_at = EXCLUDED.synced_at`,
		l.ID, l.SellerID, l.Title, l.Status, l.Price, l.AvailableQty, l.SoldQty, l.Permalink, []byte(l.Raw), l.SyncedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert listing: %w", err)
	}
	return nil
}

// List lista publicaciones de un vendedor.
func (r *ListingRepo) List(ctx context.Context, sellerID string, limit, offset int) ([]*entity.Listing, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, seller_id, title, status, price, available_qty, sold_qty, permalink, raw, synced_at
		FROM listings WHERE ($1 = '' OR seller_id = $1) ORDER BY title LIMIT $2 OFFSET $3`, sellerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()
	var list []*entity.Listing
	for rows.Next() {
		var l entity.Listing
		var raw []byte
		if err := rows.Scan(&l.ID, &l.SellerID, &l.Title, &l.Status, &l.Price, &l.AvailableQty, &l.SoldQty, &l.Permalink, &raw, &l.SyncedAt); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		l.Raw = raw
		list = append(list, &l)
	}
	return list, rows.Err()
}
