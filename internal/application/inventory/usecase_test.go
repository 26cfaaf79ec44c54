package inventory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodegas-api/internal/application/inventory"
	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	rules "github.com/jhoicas/bodegas-api/internal/domain/inventory"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
	"github.com/jhoicas/bodegas-api/internal/infrastructure/memory"
)

type recorder struct {
	mu     sync.Mutex
	events []inventory.ChangeEvent
}

func (r *recorder) Publish(evt inventory.ChangeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recorder) count(typ, action string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == typ && e.Action == action {
			n++
		}
	}
	return n
}

type fixture struct {
	store     *memory.Store
	movements *inventory.MovementUseCase
	transfers *inventory.TransferUseCase
	events    *recorder
}

func newFixture(t *testing.T, policy rules.UnderflowPolicy) *fixture {
	t.Helper()
	store := memory.NewStore()
	tx := memory.NewTxRunner(store)
	rec := &recorder{}
	return &fixture{
		store:     store,
		movements: inventory.NewMovementUseCase(tx, store.Warehouses(), store.Movements(), inventory.Config{UnderflowPolicy: policy}, rec, nil),
		transfers: inventory.NewTransferUseCase(tx, store.Warehouses(), store.Transfers(), rec, nil),
		events:    rec,
	}
}

func (f *fixture) warehouse(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, f.store.Warehouses().Create(context.Background(), &entity.Warehouse{ID: id, Name: "Bodega " + id}))
}

func (f *fixture) product(t *testing.T, id, code string, stocks map[string]int) {
	t.Helper()
	require.NoError(t, f.store.Products().Create(context.Background(), &entity.Product{ID: id, Code: code, Name: "Producto " + code, Stocks: stocks}))
}

func (f *fixture) level(t *testing.T, productID, warehouseID string) *entity.StockLevel {
	t.Helper()
	l, err := f.store.Stocks().Get(context.Background(), productID, warehouseID)
	require.NoError(t, err)
	return l
}

func TestRecordMovement_Ingreso(t *testing.T) {
	f := newFixture(t, "")
	f.warehouse(t, "A")
	f.product(t, "p1", "P-1", nil)

	res, err := f.movements.RecordMovement(context.Background(), inventory.MovementInput{
		Type:         entity.MovementIngreso,
		WarehouseID:  "A",
		Items:        []inventory.MovementLine{{ProductCode: " p-1 ", Quantity: 8}},
		Counterparty: "Proveedor",
		Operator:     "ana",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.MovementID)
	require.Len(t, res.Applied, 1)
	assert.Equal(t, "P-1", res.Applied[0].ProductCode)
	assert.Equal(t, 8, f.level(t, "p1", "A").Stock)
	assert.Equal(t, 1, f.events.count(inventory.EventMovement, "created"))

	mov, err := f.movements.GetMovement(context.Background(), res.MovementID)
	require.NoError(t, err)
	assert.Equal(t, "ana", mov.Operator)
	assert.Equal(t, "Proveedor", mov.Counterparty)
}

func TestRecordMovement_EgresoClampPorDefecto(t *testing.T) {
	f := newFixture(t, "")
	f.warehouse(t, "A")
	f.product(t, "p1", "P-1", map[string]int{"A": 2})

	res, err := f.movements.RecordMovement(context.Background(), inventory.MovementInput{
		Type: entity.MovementEgreso, WarehouseID: "A",
		Items: []inventory.MovementLine{{ProductCode: "P-1", Quantity: 5}},
	})
	require.NoError(t, err)
	assert.Empty(t, res.LineErrors)
	assert.Equal(t, 0, f.level(t, "p1", "A").Stock)
}

func TestRecordMovement_EgresoRejectReportaLinea(t *testing.T) {
	f := newFixture(t, rules.UnderflowReject)
	f.warehouse(t, "A")
	f.product(t, "p1", "P-1", map[string]int{"A": 2})
	f.product(t, "p2", "P-2", map[string]int{"A": 9})

	res, err := f.movements.RecordMovement(context.Background(), inventory.MovementInput{
		Type: entity.MovementEgreso, WarehouseID: "A",
		Items: []inventory.MovementLine{{ProductCode: "P-1", Quantity: 5}, {ProductCode: "P-2", Quantity: 4}},
	})
	require.NoError(t, err)
	require.Len(t, res.LineErrors, 1)
	assert.Equal(t, 0, res.LineErrors[0].Index)
	assert.ErrorIs(t, res.LineErrors[0], domain.ErrInsufficientStock)
	assert.Equal(t, 2, f.level(t, "p1", "A").Stock)
	assert.Equal(t, 5, f.level(t, "p2", "A").Stock)
}

func TestRecordMovement_AjusteEsAbsoluto(t *testing.T) {
	f := newFixture(t, "")
	f.warehouse(t, "A")
	f.product(t, "p1", "P-1", map[string]int{"A": 7})

	_, err := f.movements.RecordMovement(context.Background(), inventory.MovementInput{
		Type: entity.MovementAjuste, WarehouseID: "A",
		Items: []inventory.MovementLine{{ProductCode: "P-1", Quantity: 0}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, f.level(t, "p1", "A").Stock)
}

func TestRecordMovement_ProductoDesconocidoNoAborta(t *testing.T) {
	f := newFixture(t, "")
	f.warehouse(t, "A")
	f.product(t, "p1", "P-1", nil)

	res, err := f.movements.RecordMovement(context.Background(), inventory.MovementInput{
		Type: entity.MovementIngreso, WarehouseID: "A",
		Items: []inventory.MovementLine{{ProductCode: "X-9", Quantity: 1}, {ProductCode: "P-1", Quantity: 2}},
	})
	require.NoError(t, err)
	require.Len(t, res.LineErrors, 1)
	assert.ErrorIs(t, res.LineErrors[0], domain.ErrNotFound)
	assert.Equal(t, 2, f.level(t, "p1", "A").Stock)
}

func TestRecordMovement_SinLineasAplicadasIgualQuedaEnElLibro(t *testing.T) {
	f := newFixture(t, "")
	f.warehouse(t, "A")

	res, err := f.movements.RecordMovement(context.Background(), inventory.MovementInput{
		Type: entity.MovementIngreso, WarehouseID: "A",
		Items: []inventory.MovementLine{{ProductCode: "X-9", Quantity: 1}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.MovementID)
	assert.Empty(t, res.Applied)
	require.Len(t, res.LineErrors, 1)
	assert.ErrorIs(t, res.LineErrors[0], domain.ErrNotFound)

	list, err := f.movements.ListMovements(context.Background(), repository.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, res.MovementID, list[0].ID)
	assert.Empty(t, list[0].Items)
}

func TestRecordMovement_Validaciones(t *testing.T) {
	f := newFixture(t, "")
	f.warehouse(t, "A")
	ctx := context.Background()

	_, err := f.movements.RecordMovement(ctx, inventory.MovementInput{
		Type: entity.MovementRecepcionTransferencia, WarehouseID: "A",
		Items: []inventory.MovementLine{{ProductCode: "P-1", Quantity: 1}},
	})
	assert.True(t, domain.IsValidation(err))

	_, err = f.movements.RecordMovement(ctx, inventory.MovementInput{
		Type: entity.MovementIngreso, WarehouseID: "Z",
		Items: []inventory.MovementLine{{ProductCode: "P-1", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.movements.RecordMovement(ctx, inventory.MovementInput{Type: entity.MovementIngreso, WarehouseID: "A"})
	assert.ErrorIs(t, err, domain.ErrEmptyItems)
}

func TestRecordBatch_ComandosIndependientes(t *testing.T) {
	f := newFixture(t, "")
	f.warehouse(t, "A")
	f.product(t, "p1", "P-1", nil)

	results := f.movements.RecordBatch(context.Background(), []inventory.MovementInput{
		{Type: entity.MovementIngreso, WarehouseID: "A", Items: []inventory.MovementLine{{ProductCode: "P-1", Quantity: 3}}},
		{Type: "Desconocido", WarehouseID: "A", Items: []inventory.MovementLine{{ProductCode: "P-1", Quantity: 3}}},
		{Type: entity.MovementIngreso, WarehouseID: "A", Items: []inventory.MovementLine{{ProductCode: "P-1", Quantity: 4}}},
	})
	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, 7, f.level(t, "p1", "A").Stock)
}

func TestRecordMovement_ConcurrenteSinPerderUnidades(t *testing.T) {
	f := newFixture(t, "")
	f.warehouse(t, "A")
	f.product(t, "p1", "P-1", nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.movements.RecordMovement(context.Background(), inventory.MovementInput{
				Type: entity.MovementIngreso, WarehouseID: "A",
				Items: []inventory.MovementLine{{ProductCode: "P-1", Quantity: 1}},
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, f.level(t, "p1", "A").Stock)
}
