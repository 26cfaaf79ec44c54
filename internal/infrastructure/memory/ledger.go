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
	_ repository.MovementRepository = (*MovementRepo)(nil)
	_ repository.TransferRepository = (*TransferRepo)(nil)
	_ repository.PurchaseRepository = (*PurchaseRepo)(nil)
	_ repository.ListingRepository  = (*ListingRepo)(nil)
)

// MovementRepo libro de movimientos append-only.
type MovementRepo struct{ v view }

func (r *MovementRepo) Create(_ context.Context, m *entity.Movement) error {
	return r.v.read(func(st *state) error {
		for _, cur := range st.movements {
			if cur.ID == m.ID {
				return domain.ErrDuplicate
			}
		}
		stored := *m
		stored.Items = append([]entity.MovementItem(nil), m.Items...)
		st.movements = append(st.movements, stored)
		return nil
	})
}

func (r *MovementRepo) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	var out *entity.Movement
	err := r.v.read(func(st *state) error {
		for _, m := range st.movements {
			if m.ID == id {
				out = copyMovement(m)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	code := inventory.NormalizeCode(f.ProductCode)
	var out []*entity.Movement
	err := r.v.read(func(st *state) error {
		// recorrido inverso: los más recientes primero
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if f.WarehouseID != "" && m.WarehouseID != f.WarehouseID {
				continue
			}
			if f.Type != "" && m.Type != f.Type {
				continue
			}
			if f.TransferID != "" && m.TransferID != f.TransferID {
				continue
			}
			if f.From != nil && m.Timestamp.Before(*f.From) {
				continue
			}
			if f.To != nil && m.Timestamp.After(*f.To) {
				continue
			}
			if code != "" && !hasCode(m.Items, code) {
				continue
			}
			out = append(out, copyMovement(m))
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return page(out, f.Limit, f.Offset), err
}

func hasCode(items []entity.MovementItem, key string) bool {
	for _, it := range items {
		if inventory.NormalizeCode(it.ProductCode) == key {
			return true
		}
	}
	return false
}

func copyMovement(m entity.Movement) *entity.Movement {
	m.Items = append([]entity.MovementItem(nil), m.Items...)
	return &m
}

// TransferRepo transferencias en memoria.
type TransferRepo struct{ v view }

func (r *TransferRepo) Create(_ context.Context, t *entity.Transfer) error {
	return r.v.read(func(st *state) error {
		if _, ok := st.transfers[t.ID]; ok {
			return domain.ErrDuplicate
		}
		st.transfers[t.ID] = *copyTransfer(*t)
		st.transferOrder = append(st.transferOrder, t.ID)
		return nil
	})
}

func (r *TransferRepo) GetByID(_ context.Context, id string) (*entity.Transfer, error) {
	var out *entity.Transfer
	err := r.v.read(func(st *state) error {
		if t, ok := st.transfers[id]; ok {
			out = copyTransfer(t)
		}
		return nil
	})
	return out, err
}

func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.GetByID(ctx, id)
}

func (r *TransferRepo) Update(_ context.Context, t *entity.Transfer) error {
	return r.v.read(func(st *state) error {
		if _, ok := st.transfers[t.ID]; !ok {
			return domain.ErrNotFound
		}
		st.transfers[t.ID] = *copyTransfer(*t)
		return nil
	})
}

func (r *TransferRepo) List(_ context.Context, f repository.TransferFilter) ([]*entity.Transfer, error) {
	var out []*entity.Transfer
	err := r.v.read(func(st *state) error {
		for i := len(st.transferOrder) - 1; i >= 0; i-- {
			t, ok := st.transfers[st.transferOrder[i]]
			if !ok {
				continue
			}
			if f.State != "" && t.State != f.State {
				continue
			}
			if f.WarehouseID != "" && !t.References(f.WarehouseID) {
				continue
			}
			out = append(out, copyTransfer(t))
		}
		return nil
	})
	return page(out, f.Limit, f.Offset), err
}

func (r *TransferRepo) Delete(_ context.Context, id string) error {
	return r.v.read(func(st *state) error {
		if _, ok := st.transfers[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.transfers, id)
		return nil
	})
}

func (r *TransferRepo) CountOpenByWarehouse(_ context.Context, warehouseID string) (int, error) {
	n := 0
	err := r.v.read(func(st *state) error {
		for _, t := range st.transfers {
			if !t.IsClosed() && t.References(warehouseID) {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *TransferRepo) CountOpenByProduct(_ context.Context, productID string) (int, error) {
	n := 0
	err := r.v.read(func(st *state) error {
		for _, t := range st.transfers {
			if t.IsClosed() {
				continue
			}
			for _, it := range t.Items {
				if it.ProductID == productID {
					n++
					break
				}
			}
		}
		return nil
	})
	return n, err
}

func copyTransfer(t entity.Transfer) *entity.Transfer {
	t.Items = append([]entity.TransferItem(nil), t.Items...)
	t.ReceivedItems = append([]entity.ReceivedItem(nil), t.ReceivedItems...)
	return &t
}

// PurchaseRepo líneas de compra en memoria.
type PurchaseRepo struct{ v view }

func (r *PurchaseRepo) Create(_ context.Context, p *entity.Purchase) error {
	return r.v.read(func(st *state) error {
		if _, ok := st.purchases[p.ID]; ok {
			return domain.ErrDuplicate
		}
		st.purchases[p.ID] = *copyPurchase(*p)
		st.purchaseOrder = append(st.purchaseOrder, p.ID)
		return nil
	})
}

func (r *PurchaseRepo) GetByID(_ context.Context, id string) (*entity.Purchase, error) {
	var out *entity.Purchase
	err := r.v.read(func(st *state) error {
		if p, ok := st.purchases[id]; ok {
			out = copyPurchase(p)
		}
		return nil
	})
	return out, err
}

func (r *PurchaseRepo) GetForUpdate(ctx context.Context, id string) (*entity.Purchase, error) {
	return r.GetByID(ctx, id)
}

func (r *PurchaseRepo) Update(_ context.Context, p *entity.Purchase) error {
	return r.v.read(func(st *state) error {
		if _, ok := st.purchases[p.ID]; !ok {
			return domain.ErrNotFound
		}
		st.purchases[p.ID] = *copyPurchase(*p)
		return nil
	})
}

func (r *PurchaseRepo) List(_ context.Context, f repository.PurchaseFilter) ([]*entity.Purchase, error) {
	var out []*entity.Purchase
	err := r.v.read(func(st *state) error {
		for i := len(st.purchaseOrder) - 1; i >= 0; i-- {
			p, ok := st.purchases[st.purchaseOrder[i]]
			if !ok {
				continue
			}
			if f.OrderNumber != "" && p.OrderNumber != f.OrderNumber {
				continue
			}
			if f.State != "" && p.State != f.State {
				continue
			}
			out = append(out, copyPurchase(p))
		}
		return nil
	})
	return page(out, f.Limit, f.Offset), err
}

func copyPurchase(p entity.Purchase) *entity.Purchase {
	p.ShipmentGuides = append([]string(nil), p.ShipmentGuides...)
	return &p
}

// ListingRepo espejo de publicaciones del marketplace.
type ListingRepo struct{ v view }

func (r *ListingRepo) Upsert(_ context.Context, l *entity.Listing) error {
	return r.v.read(func(st *state) error {
		if _, ok := st.listings[l.ID]; !ok {
			st.listingOrder = append(st.listingOrder, l.ID)
		}
		stored := *l
		stored.Raw = append([]byte(nil), l.Raw...)
		st.listings[l.ID] = stored
		return nil
	})
}

func (r *ListingRepo) List(_ context.Context, sellerID string, limit, offset int) ([]*entity.Listing, error) {
	var out []*entity.Listing
	err := r.v.read(func(st *state) error {
		for _, id := range st.listingOrder {
			l := st.listings[id]
			if sellerID != "" && l.SellerID != sellerID {
				continue
			}
			out = append(out, &l)
		}
		return nil
	})
	return page(out, limit, offset), err
}
