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

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
// Los mapas Stocks/Transitos se arman desde product_stocks.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, code, name, barcode, category, subcategory, created_at, updated_at`

// Create persiste un nuevo producto y sus niveles iniciales.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, code, code_key, name, barcode, category, subcategory, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Code, inventory.NormalizeCode(p.Code), p.Name, p.Barcode, p.Category, p.Subcategory,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	for w := range union(p.Stocks, p.Transitos) {
		_, err := r.q.Exec(ctx, `
			INSERT INTO product_stocks (product_id, warehouse_id, stock, transit, updated_at)
			VALUES ($1, $2, $3, $4, now())
			ON CONFLICT (product_id, warehouse_id) DO UPDATE SET stock = EXCLUDED.stock, transit = EXCLUDED.transit`,
			p.ID, w, inventory.Floor(p.Stocks[w]), inventory.Floor(p.Transitos[w]),
		)
		if err != nil {
			return fmt.Errorf("insert product stock: %w", err)
		}
	}
	return nil
}

func union(a, b map[string]int) map[string]struct{} {
	out := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// FindByCode busca por código normalizado (sin espacios, sin distinguir mayúsculas).
func (r *ProductRepo) FindByCode(ctx context.Context, code string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE code_key = $1`, inventory.NormalizeCode(code))
}

// FindByBarcode busca por código de barras exacto.
func (r *ProductRepo) FindByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	if barcode == "" {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE barcode = $1 LIMIT 1`, barcode)
}

func (r *ProductRepo) getOne(ctx context.Context, query string, arg any) (*entity.Product, error) {
	var p entity.Product
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&p.ID, &p.Code, &p.Name, &p.Barcode, &p.Category, &p.Subcategory, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	if err := r.loadLevels(ctx, []*entity.Product{&p}); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update actualiza metadatos. Stock y tránsito sólo cambian vía StockRepository.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products SET name = $2, barcode = $3, category = $4, subcategory = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, p.ID, p.Name, p.Barcode, p.Category, p.Subcategory, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// List lista productos por código con paginación.
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY code_key LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Barcode, &p.Category, &p.Subcategory, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadLevels(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// Delete elimina un producto por ID.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrReferenced
		}
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (r *ProductRepo) loadLevels(ctx context.Context, products []*entity.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, len(products))
	byID := make(map[string]*entity.Product, len(products))
	for i, p := range products {
		ids[i] = p.ID
		p.Stocks = make(map[string]int)
		p.Transitos = make(map[string]int)
		byID[p.ID] = p
	}
	rows, err := r.q.Query(ctx, `
		SELECT product_id, warehouse_id, stock, transit
		FROM product_stocks WHERE product_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("load product stocks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var pid, wid string
		var stock, transit int
		if err := rows.Scan(&pid, &wid, &stock, &transit); err != nil {
			return fmt.Errorf("scan product stock: %w", err)
		}
		if p := byID[pid]; p != nil {
			p.Stocks[wid] = stock
			p.Transitos[wid] = transit
		}
	}
	return rows.Err()
}
