package usecase_test

import (
	"context"
	"sync"
	"testing"

	"github.com/jhoicas/bodegas-api/internal/application/dto"
	"github.com/jhoicas/bodegas-api/internal/application/inventory"
	"github.com/jhoicas/bodegas-api/internal/application/usecase"
	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
	"github.com/jhoicas/bodegas-api/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalog struct {
	store      *memory.Store
	warehouses *usecase.WarehouseUseCase
	products   *usecase.ProductUseCase
	movements  *inventory.MovementUseCase
}

func newCatalog() *catalog {
	s := memory.NewStore()
	tx := memory.NewTxRunner(s)
	return &catalog{
		store:      s,
		warehouses: usecase.NewWarehouseUseCase(s.Warehouses(), tx, nil),
		products:   usecase.NewProductUseCase(s.Products(), s.Warehouses(), s.Stocks(), tx, nil),
		movements:  inventory.NewMovementUseCase(tx, s.Warehouses(), s.Movements(), inventory.Config{}, nil, nil),
	}
}

func strPtr(s string) *string { return &s }

func TestWarehouse_CreationOrder(t *testing.T) {
	ctx := context.Background()
	c := newCatalog()

	a, err := c.warehouses.Create(ctx, dto.CreateWarehouseRequest{Name: " Central "})
	require.NoError(t, err)
	b, err := c.warehouses.Create(ctx, dto.CreateWarehouseRequest{Name: "Norte"})
	require.NoError(t, err)
	assert.Equal(t, "Central", a.Name)
	assert.Less(t, a.CreationOrder, b.CreationOrder)

	list, err := c.warehouses.List(ctx)
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, a.ID, list.Items[0].ID)
	assert.Equal(t, b.ID, list.Items[1].ID)
}

func TestWarehouse_CreateBlankName(t *testing.T) {
	_, err := newCatalog().warehouses.Create(context.Background(), dto.CreateWarehouseRequest{Name: "   "})
	assert.True(t, domain.IsValidation(err))
}

func TestWarehouse_Update(t *testing.T) {
	ctx := context.Background()
	c := newCatalog()
	w, err := c.warehouses.Create(ctx, dto.CreateWarehouseRequest{Name: "Central"})
	require.NoError(t, err)

	got, err := c.warehouses.Update(ctx, w.ID, dto.UpdateWarehouseRequest{Name: strPtr("Principal")})
	require.NoError(t, err)
	assert.Equal(t, "Principal", got.Name)

	_, err = c.warehouses.Update(ctx, w.ID, dto.UpdateWarehouseRequest{Name: strPtr(" ")})
	assert.True(t, domain.IsValidation(err))

	_, err = c.warehouses.Update(ctx, "nope", dto.UpdateWarehouseRequest{Name: strPtr("X")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWarehouse_DeleteRejectedWithStock(t *testing.T) {
	ctx := context.Background()
	c := newCatalog()
	w, err := c.warehouses.Create(ctx, dto.CreateWarehouseRequest{Name: "Central"})
	require.NoError(t, err)
	p, err := c.products.Create(ctx, dto.CreateProductRequest{Code: "A-1", Name: "Arandela", Stocks: map[string]int{w.ID: 3}})
	require.NoError(t, err)

	assert.ErrorIs(t, c.warehouses.Delete(ctx, w.ID), domain.ErrReferenced)

	require.NoError(t, c.store.Stocks().SetStock(ctx, p.ID, w.ID, 0))
	require.NoError(t, c.warehouses.Delete(ctx, w.ID))

	_, err = c.warehouses.GetByID(ctx, w.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, c.warehouses.Delete(ctx, w.ID), domain.ErrNotFound)
}

func TestProduct_CreateZeroFillsWarehouses(t *testing.T) {
	ctx := context.Background()
	c := newCatalog()
	a, err := c.warehouses.Create(ctx, dto.CreateWarehouseRequest{Name: "A"})
	require.NoError(t, err)
	b, err := c.warehouses.Create(ctx, dto.CreateWarehouseRequest{Name: "B"})
	require.NoError(t, err)

	p, err := c.products.Create(ctx, dto.CreateProductRequest{Code: "TOR-1", Name: "Tornillo", Stocks: map[string]int{a.ID: 5}})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{a.ID: 5, b.ID: 0}, p.Stocks)
	assert.Equal(t, map[string]int{a.ID: 0, b.ID: 0}, p.Transitos)
}

func TestProduct_CreateValidations(t *testing.T) {
	ctx := context.Background()
	c := newCatalog()
	w, err := c.warehouses.Create(ctx, dto.CreateWarehouseRequest{Name: "A"})
	require.NoError(t, err)
	_, err = c.products.Create(ctx, dto.CreateProductRequest{Code: "Tor-1", Name: "Tornillo"})
	require.NoError(t, err)

	cases := []struct {
		name string
		in   dto.CreateProductRequest
	}{
		{"codigo vacio", dto.CreateProductRequest{Code: " ", Name: "X"}},
		{"nombre vacio", dto.CreateProductRequest{Code: "X-1", Name: ""}},
		{"codigo duplicado normalizado", dto.CreateProductRequest{Code: " TOR-1 ", Name: "Otro"}},
		{"bodega desconocida", dto.CreateProductRequest{Code: "X-2", Name: "X", Stocks: map[string]int{"nope": 1}}},
		{"stock negativo", dto.CreateProductRequest{Code: "X-3", Name: "X", Stocks: map[string]int{w.ID: -1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.products.Create(ctx, tc.in)
			assert.True(t, domain.IsValidation(err), "err = %v", err)
		})
	}
}

func TestProduct_Lookup(t *testing.T) {
	ctx := context.Background()
	c := newCatalog()
	p, err := c.products.Create(ctx, dto.CreateProductRequest{Code: "TOR-1", Name: "Tornillo", Barcode: "7701234"})
	require.NoError(t, err)

	byCode, err := c.products.FindByCode(ctx, " tor-1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byCode.ID)

	byBarcode, err := c.products.FindByBarcode(ctx, "7701234")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byBarcode.ID)

	_, err = c.products.FindByBarcode(ctx, "000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = c.products.FindByCode(ctx, "")
	assert.True(t, domain.IsValidation(err))
}

func TestProduct_UpdateKeepsLevels(t *testing.T) {
	ctx := context.Background()
	c := newCatalog()
	w, err := c.warehouses.Create(ctx, dto.CreateWarehouseRequest{Name: "A"})
	require.NoError(t, err)
	p, err := c.products.Create(ctx, dto.CreateProductRequest{Code: "TOR-1", Name: "Tornillo", Stocks: map[string]int{w.ID: 4}})
	require.NoError(t, err)

	got, err := c.products.Update(ctx, p.ID, dto.UpdateProductRequest{Name: strPtr("Tornillo 1/4"), Category: strPtr("Ferretería")})
	require.NoError(t, err)
	assert.Equal(t, "Tornillo 1/4", got.Name)
	assert.Equal(t, "Ferretería", got.Category)
	assert.Equal(t, 4, got.Stocks[w.ID])
}

func TestProduct_Delete(t *testing.T) {
	ctx := context.Background()
	c := newCatalog()
	w, err := c.warehouses.Create(ctx, dto.CreateWarehouseRequest{Name: "A"})
	require.NoError(t, err)
	p, err := c.products.Create(ctx, dto.CreateProductRequest{Code: "TOR-1", Name: "Tornillo", Stocks: map[string]int{w.ID: 2}})
	require.NoError(t, err)

	assert.ErrorIs(t, c.products.Delete(ctx, p.ID), domain.ErrReferenced)

	require.NoError(t, c.store.Stocks().SetStock(ctx, p.ID, w.ID, 0))
	require.NoError(t, c.products.Delete(ctx, p.ID))
	_, err = c.products.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWarehouse_DeleteKeepsRowsWhenReferenced(t *testing.T) {
	ctx := context.Background()
	c := newCatalog()
	a, err := c.warehouses.Create(ctx, dto.CreateWarehouseRequest{Name: "A"})
	require.NoError(t, err)
	p, err := c.products.Create(ctx, dto.CreateProductRequest{Code: "A-1", Name: "Arandela"})
	require.NoError(t, err)
	q, err := c.products.Create(ctx, dto.CreateProductRequest{Code: "A-2", Name: "Abrazadera", Stocks: map[string]int{a.ID: 2}})
	require.NoError(t, err)

	assert.ErrorIs(t, c.warehouses.Delete(ctx, a.ID), domain.ErrReferenced)

	// La transacción se revierte completa: la fila en cero del otro producto sigue ahí.
	got, err := c.store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Contains(t, got.Stocks, a.ID)
	lvl, err := c.store.Stocks().Get(ctx, q.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, lvl.Stock)
}

func TestProduct_DeleteKeepsRowsWhenReferenced(t *testing.T) {
	ctx := context.Background()
	c := newCatalog()
	a, err := c.warehouses.Create(ctx, dto.CreateWarehouseRequest{Name: "A"})
	require.NoError(t, err)
	b, err := c.warehouses.Create(ctx, dto.CreateWarehouseRequest{Name: "B"})
	require.NoError(t, err)
	p, err := c.products.Create(ctx, dto.CreateProductRequest{Code: "A-1", Name: "Arandela", Stocks: map[string]int{b.ID: 1}})
	require.NoError(t, err)

	assert.ErrorIs(t, c.products.Delete(ctx, p.ID), domain.ErrReferenced)

	got, err := c.store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, map[string]int{a.ID: 0, b.ID: 1}, got.Stocks)
}

// Un ingreso concurrente con el borrado de la bodega: o el borrado se rechaza y el stock queda,
// o el ingreso falla y no queda nada apuntando a la bodega eliminada.
func TestWarehouse_DeleteConcurrentWithMovement(t *testing.T) {
	ctx := context.Background()
	for i := 0; i < 50; i++ {
		c := newCatalog()
		w, err := c.warehouses.Create(ctx, dto.CreateWarehouseRequest{Name: "A"})
		require.NoError(t, err)
		p, err := c.products.Create(ctx, dto.CreateProductRequest{Code: "TOR-1", Name: "Tornillo"})
		require.NoError(t, err)

		var (
			wg     sync.WaitGroup
			delErr error
			movErr error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			delErr = c.warehouses.Delete(ctx, w.ID)
		}()
		go func() {
			defer wg.Done()
			_, movErr = c.movements.RecordMovement(ctx, inventory.MovementInput{
				Type:        entity.MovementIngreso,
				WarehouseID: w.ID,
				Items:       []inventory.MovementLine{{ProductCode: "TOR-1", Quantity: 5}},
			})
		}()
		wg.Wait()

		movs, err := c.store.Movements().List(ctx, repository.MovementFilter{WarehouseID: w.ID})
		require.NoError(t, err)
		lvl, err := c.store.Stocks().Get(ctx, p.ID, w.ID)
		require.NoError(t, err)

		if delErr == nil {
			require.Error(t, movErr)
			assert.True(t, domain.IsValidation(movErr), "err = %v", movErr)
			assert.Empty(t, movs)
			assert.Equal(t, 0, lvl.Stock)
		} else {
			require.ErrorIs(t, delErr, domain.ErrReferenced)
			require.NoError(t, movErr)
			assert.Len(t, movs, 1)
			assert.Equal(t, 5, lvl.Stock)
		}
	}
}
