package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/inventory"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
)

var (
	_ repository.WarehouseRepository = (*WarehouseRepo)(nil)
	_ repository.ProductRepository   = (*ProductRepo)(nil)
	_ repository.StockRepository     = (*StockRepo)(nil)
)

// WarehouseRepo bodegas en memoria.
type WarehouseRepo struct{ v view }

// Create asigna CreationOrder monotónico.
func (r *WarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	return r.v.read(func(st *state) error {
		if _, ok := st.warehouses[w.ID]; ok {
			return domain.ErrDuplicate
		}
		st.nextOrder++
		w.CreationOrder = st.nextOrder
		st.warehouses[w.ID] = *w
		return nil
	})
}

func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	err := r.v.read(func(st *state) error {
		if w, ok := st.warehouses[id]; ok {
			out = &w
		}
		return nil
	})
	return out, err
}

func (r *WarehouseRepo) Update(_ context.Context, w *entity.Warehouse) error {
	return r.v.read(func(st *state) error {
		cur, ok := st.warehouses[w.ID]
		if !ok {
			return nil
		}
		cur.Name = w.Name
		cur.UpdatedAt = w.UpdatedAt
		st.warehouses[w.ID] = cur
		return nil
	})
}

func (r *WarehouseRepo) List(_ context.Context) ([]*entity.Warehouse, error) {
	var out []*entity.Warehouse
	err := r.v.read(func(st *state) error {
		for _, w := range st.warehouses {
			w := w
			out = append(out, &w)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreationOrder < out[j].CreationOrder })
	return out, err
}

func (r *WarehouseRepo) Delete(_ context.Context, id string) error {
	return r.v.read(func(st *state) error {
		if referenced(st, func(k stockKey) bool { return k.warehouseID == id }) {
			return domain.ErrReferenced
		}
		delete(st.warehouses, id)
		return nil
	})
}

// ProductRepo productos en memoria; Stocks/Transitos se arman desde las filas de stock.
type ProductRepo struct{ v view }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.v.read(func(st *state) error {
		key := inventory.NormalizeCode(p.Code)
		for _, cur := range st.products {
			if cur.ID == p.ID || inventory.NormalizeCode(cur.Code) == key {
				return domain.ErrDuplicate
			}
		}
		stored := *p
		stored.Stocks, stored.Transitos = nil, nil
		st.products[p.ID] = stored
		st.productOrder = append(st.productOrder, p.ID)
		for w, q := range p.Stocks {
			lvl := st.stocks[stockKey{p.ID, w}]
			lvl.ProductID, lvl.WarehouseID, lvl.Stock = p.ID, w, inventory.Floor(q)
			st.stocks[stockKey{p.ID, w}] = lvl
		}
		for w, q := range p.Transitos {
			lvl := st.stocks[stockKey{p.ID, w}]
			lvl.ProductID, lvl.WarehouseID, lvl.Transit = p.ID, w, inventory.Floor(q)
			st.stocks[stockKey{p.ID, w}] = lvl
		}
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.read(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = withLevels(st, p)
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) FindByCode(_ context.Context, code string) (*entity.Product, error) {
	key := inventory.NormalizeCode(code)
	var out *entity.Product
	err := r.v.read(func(st *state) error {
		for _, p := range st.products {
			if inventory.NormalizeCode(p.Code) == key {
				out = withLevels(st, p)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) FindByBarcode(_ context.Context, barcode string) (*entity.Product, error) {
	var out *entity.Product
	if barcode == "" {
		return nil, nil
	}
	err := r.v.read(func(st *state) error {
		for _, p := range st.products {
			if p.Barcode == barcode {
				out = withLevels(st, p)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	return r.v.read(func(st *state) error {
		cur, ok := st.products[p.ID]
		if !ok {
			return nil
		}
		cur.Name, cur.Barcode, cur.Category, cur.Subcategory, cur.UpdatedAt = p.Name, p.Barcode, p.Category, p.Subcategory, p.UpdatedAt
		st.products[p.ID] = cur
		return nil
	})
}

func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.v.read(func(st *state) error {
		for _, id := range st.productOrder {
			if p, ok := st.products[id]; ok {
				out = append(out, withLevels(st, p))
			}
		}
		return nil
	})
	return page(out, limit, offset), err
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	return r.v.read(func(st *state) error {
		if referenced(st, func(k stockKey) bool { return k.productID == id }) {
			return domain.ErrReferenced
		}
		delete(st.products, id)
		return nil
	})
}

func withLevels(st *state, p entity.Product) *entity.Product {
	p.Stocks = make(map[string]int)
	p.Transitos = make(map[string]int)
	for k, lvl := range st.stocks {
		if k.productID == p.ID {
			p.Stocks[k.warehouseID] = lvl.Stock
			p.Transitos[k.warehouseID] = lvl.Transit
		}
	}
	return &p
}

// StockRepo filas (producto, bodega) en memoria.
type StockRepo struct{ v view }

func (r *StockRepo) Get(_ context.Context, productID, warehouseID string) (*entity.StockLevel, error) {
	var out entity.StockLevel
	err := r.v.read(func(st *state) error {
		out = st.stocks[stockKey{productID, warehouseID}]
		out.ProductID, out.WarehouseID = productID, warehouseID
		return nil
	})
	return &out, err
}

// GetForUpdate dentro de una transacción el candado del store ya serializa el acceso.
func (r *StockRepo) GetForUpdate(_ context.Context, productID, warehouseID string) (*entity.StockLevel, error) {
	var out entity.StockLevel
	err := r.v.read(func(st *state) error {
		k := stockKey{productID, warehouseID}
		lvl, ok := st.stocks[k]
		if !ok {
			lvl = entity.StockLevel{ProductID: productID, WarehouseID: warehouseID}
			st.stocks[k] = lvl
		}
		out = lvl
		return nil
	})
	return &out, err
}

func (r *StockRepo) SetStock(_ context.Context, productID, warehouseID string, value int) error {
	return r.v.read(func(st *state) error {
		k := stockKey{productID, warehouseID}
		lvl := st.stocks[k]
		lvl.ProductID, lvl.WarehouseID, lvl.Stock = productID, warehouseID, inventory.Floor(value)
		st.stocks[k] = lvl
		return nil
	})
}

func (r *StockRepo) SetTransit(_ context.Context, productID, warehouseID string, value int) error {
	return r.v.read(func(st *state) error {
		k := stockKey{productID, warehouseID}
		lvl := st.stocks[k]
		lvl.ProductID, lvl.WarehouseID, lvl.Transit = productID, warehouseID, inventory.Floor(value)
		st.stocks[k] = lvl
		return nil
	})
}

func (r *StockRepo) EnsureRows(_ context.Context, productID string, warehouseIDs []string) error {
	return r.v.read(func(st *state) error {
		for _, w := range warehouseIDs {
			k := stockKey{productID, w}
			if _, ok := st.stocks[k]; !ok {
				st.stocks[k] = entity.StockLevel{ProductID: productID, WarehouseID: w}
			}
		}
		return nil
	})
}

// LockByWarehouse dentro de una transacción el candado del store ya cubre todas las filas.
func (r *StockRepo) LockByWarehouse(_ context.Context, warehouseID string) (bool, error) {
	return r.busy(func(k stockKey) bool { return k.warehouseID == warehouseID })
}

func (r *StockRepo) LockByProduct(_ context.Context, productID string) (bool, error) {
	return r.busy(func(k stockKey) bool { return k.productID == productID })
}

func (r *StockRepo) busy(match func(stockKey) bool) (bool, error) {
	found := false
	err := r.v.read(func(st *state) error {
		for k, lvl := range st.stocks {
			if match(k) && (lvl.Stock > 0 || lvl.Transit > 0) {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r *StockRepo) DeleteEmptyByWarehouse(_ context.Context, warehouseID string) error {
	return r.deleteEmpty(func(k stockKey) bool { return k.warehouseID == warehouseID })
}

func (r *StockRepo) DeleteEmptyByProduct(_ context.Context, productID string) error {
	return r.deleteEmpty(func(k stockKey) bool { return k.productID == productID })
}

func (r *StockRepo) deleteEmpty(match func(stockKey) bool) error {
	return r.v.read(func(st *state) error {
		for k, lvl := range st.stocks {
			if match(k) && lvl.Stock == 0 && lvl.Transit == 0 {
				delete(st.stocks, k)
			}
		}
		return nil
	})
}

// referenced indica si queda alguna fila de stock que coincida; equivale a la FK de PostgreSQL.
func referenced(st *state, match func(stockKey) bool) bool {
	for k := range st.stocks {
		if match(k) {
			return true
		}
	}
	return false
}
