// Package memory implementa los puertos de persistencia en memoria. Sirve para tests y para correr
// la API en desarrollo sin PostgreSQL; no está pensado para producción.
// Las transacciones se serializan y se revierten restaurando una copia del estado: los mapas se copian
// (costo proporcional al catálogo) y las listas de sólo-agregar, incluido el libro de movimientos, se
// comparten hasta su largo al inicio de la transacción.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/bodegas-api/internal/application/inventory"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
)

type stockKey struct {
	productID   string
	warehouseID string
}

type state struct {
	warehouses    map[string]entity.Warehouse
	nextOrder     int64
	products      map[string]entity.Product // sin Stocks/Transitos: viven en stocks
	productOrder  []string
	stocks        map[stockKey]entity.StockLevel
	movements     []entity.Movement
	transfers     map[string]entity.Transfer
	transferOrder []string
	purchases     map[string]entity.Purchase
	purchaseOrder []string
	listings      map[string]entity.Listing
	listingOrder  []string
}

func newState() *state {
	return &state{
		warehouses: make(map[string]entity.Warehouse),
		products:   make(map[string]entity.Product),
		stocks:     make(map[stockKey]entity.StockLevel),
		transfers:  make(map[string]entity.Transfer),
		purchases:  make(map[string]entity.Purchase),
		listings:   make(map[string]entity.Listing),
	}
}

// clone copia los mapas. Los valores guardados nunca se mutan en sitio, así que basta una copia superficial.
// Las listas sólo crecen por append: alcanza con recortar su capacidad.
func (s *state) clone() *state {
	c := &state{
		warehouses:    make(map[string]entity.Warehouse, len(s.warehouses)),
		nextOrder:     s.nextOrder,
		products:      make(map[string]entity.Product, len(s.products)),
		productOrder:  frozen(s.productOrder),
		stocks:        make(map[stockKey]entity.StockLevel, len(s.stocks)),
		movements:     frozen(s.movements),
		transfers:     make(map[string]entity.Transfer, len(s.transfers)),
		transferOrder: frozen(s.transferOrder),
		purchases:     make(map[string]entity.Purchase, len(s.purchases)),
		purchaseOrder: frozen(s.purchaseOrder),
		listings:      make(map[string]entity.Listing, len(s.listings)),
		listingOrder:  frozen(s.listingOrder),
	}
	for k, v := range s.warehouses {
		c.warehouses[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.stocks {
		c.stocks[k] = v
	}
	for k, v := range s.transfers {
		c.transfers[k] = v
	}
	for k, v := range s.purchases {
		c.purchases[k] = v
	}
	for k, v := range s.listings {
		c.listings[k] = v
	}
	return c
}

// frozen devuelve el prefijo actual con capacidad recortada; un append posterior no lo altera.
func frozen[T any](items []T) []T {
	return items[:len(items):len(items)]
}

// Store estado compartido por todos los repositorios en memoria.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// view acceso al estado: fuera de una transacción toma el candado; dentro ya lo tiene el TxRunner.
type view struct {
	s    *Store
	inTx bool
}

func (v view) read(fn func(st *state) error) error {
	if !v.inTx {
		v.s.mu.Lock()
		defer v.s.mu.Unlock()
	}
	return fn(v.s.st)
}

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks en exclusión mutua con rollback ante error.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run ejecuta fn con repositorios transaccionales; si fn falla se restaura el estado previo.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	snapshot := r.store.st.clone()
	v := view{s: r.store, inTx: true}
	repos := inventory.TxRepos{
		Warehouses: &WarehouseRepo{v: v},
		Movements:  &MovementRepo{v: v},
		Stocks:     &StockRepo{v: v},
		Products:   &ProductRepo{v: v},
		Transfers:  &TransferRepo{v: v},
		Purchases:  &PurchaseRepo{v: v},
	}
	if err := fn(ctx, repos); err != nil {
		r.store.st = snapshot
		return err
	}
	return nil
}

// Repositorios fuera de transacción.

// Warehouses repositorio de bodegas.
func (s *Store) Warehouses() *WarehouseRepo { return &WarehouseRepo{v: view{s: s}} }

// Products repositorio de productos.
func (s *Store) Products() *ProductRepo { return &ProductRepo{v: view{s: s}} }

// Stocks repositorio de niveles de stock.
func (s *Store) Stocks() *StockRepo { return &StockRepo{v: view{s: s}} }

// Movements repositorio del libro de movimientos.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{v: view{s: s}} }

// Transfers repositorio de transferencias.
func (s *Store) Transfers() *TransferRepo { return &TransferRepo{v: view{s: s}} }

// Purchases repositorio de compras.
func (s *Store) Purchases() *PurchaseRepo { return &PurchaseRepo{v: view{s: s}} }

// Listings colección de publicaciones del marketplace.
func (s *Store) Listings() *ListingRepo { return &ListingRepo{v: view{s: s}} }

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
