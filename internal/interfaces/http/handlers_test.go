package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodegas-api/internal/application/dto"
	"github.com/jhoicas/bodegas-api/internal/application/inventory"
	"github.com/jhoicas/bodegas-api/internal/application/purchase"
	"github.com/jhoicas/bodegas-api/internal/application/usecase"
	"github.com/jhoicas/bodegas-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/bodegas-api/internal/interfaces/http"
)

type apiClient struct {
	t   *testing.T
	app *fiber.App
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	store := memory.NewStore()
	tx := memory.NewTxRunner(store)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		WarehouseUC: usecase.NewWarehouseUseCase(store.Warehouses(), tx, nil),
		ProductUC:   usecase.NewProductUseCase(store.Products(), store.Warehouses(), store.Stocks(), tx, nil),
		Movements:   inventory.NewMovementUseCase(tx, store.Warehouses(), store.Movements(), inventory.Config{}, nil, nil),
		Transfers:   inventory.NewTransferUseCase(tx, store.Warehouses(), store.Transfers(), nil, nil),
		Purchases:   purchase.NewUseCase(tx, store.Warehouses(), store.Purchases(), nil, nil),
		JWTSecret:   testJWTSecret,
	})
	return &apiClient{t: t, app: app}
}

// do envía la petición con el rol indicado y decodifica la respuesta en out (si no es nil).
func (a *apiClient) do(role, method, path string, body any, out any) int {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(a.t, role))
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(out))
	}
	if e, ok := out.(*dto.ErrorResponse); ok && resp.StatusCode >= 400 {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(e))
	}
	return resp.StatusCode
}

func (a *apiClient) warehouse(name string) string {
	var w dto.WarehouseResponse
	require.Equal(a.t, http.StatusCreated, a.do("admin", http.MethodPost, "/api/warehouses", dto.CreateWarehouseRequest{Name: name}, &w))
	return w.ID
}

func (a *apiClient) product(code string, stocks map[string]int) dto.ProductResponse {
	var p dto.ProductResponse
	require.Equal(a.t, http.StatusCreated, a.do("admin", http.MethodPost, "/api/products",
		dto.CreateProductRequest{Code: code, Name: "Producto " + code, Stocks: stocks}, &p))
	return p
}

func (a *apiClient) getProduct(id string) dto.ProductResponse {
	var p dto.ProductResponse
	require.Equal(a.t, http.StatusOK, a.do("vendedor", http.MethodGet, "/api/products/"+id, nil, &p))
	return p
}

func TestWarehouses_OrdenDeCreacionYBorrado(t *testing.T) {
	api := newAPI(t)
	a := api.warehouse("Central")
	b := api.warehouse("Norte")

	var list dto.WarehouseListResponse
	require.Equal(t, http.StatusOK, api.do("vendedor", http.MethodGet, "/api/warehouses", nil, &list))
	require.Len(t, list.Items, 2)
	assert.Equal(t, a, list.Items[0].ID)
	assert.Equal(t, b, list.Items[1].ID)

	api.product("P-1", map[string]int{a: 4})
	var e dto.ErrorResponse
	assert.Equal(t, http.StatusConflict, api.do("admin", http.MethodDelete, "/api/warehouses/"+a, nil, &e))
	assert.Equal(t, "REFERENCED", e.Code)
	assert.Equal(t, http.StatusNoContent, api.do("admin", http.MethodDelete, "/api/warehouses/"+b, nil, nil))
	assert.Equal(t, http.StatusNotFound, api.do("admin", http.MethodGet, "/api/warehouses/"+b, nil, nil))
}

func TestWarehouses_SoloAdminCrea(t *testing.T) {
	api := newAPI(t)
	assert.Equal(t, http.StatusForbidden,
		api.do("bodeguero", http.MethodPost, "/api/warehouses", dto.CreateWarehouseRequest{Name: "X"}, nil))
	var e dto.ErrorResponse
	assert.Equal(t, http.StatusBadRequest,
		api.do("admin", http.MethodPost, "/api/warehouses", dto.CreateWarehouseRequest{Name: "  "}, &e))
	assert.Equal(t, "VALIDATION", e.Code)
}

func TestProducts_CodigoNormalizadoYCeros(t *testing.T) {
	api := newAPI(t)
	a := api.warehouse("Central")
	b := api.warehouse("Norte")
	p := api.product("ABC-1", map[string]int{a: 3})

	var found dto.ProductResponse
	require.Equal(t, http.StatusOK, api.do("vendedor", http.MethodGet, "/api/products/code/abc-1", nil, &found))
	assert.Equal(t, p.ID, found.ID)
	assert.Equal(t, 3, found.Stocks[a])
	assert.Equal(t, 0, found.Stocks[b])
	assert.Contains(t, found.Transitos, b)

	assert.Equal(t, http.StatusBadRequest, api.do("admin", http.MethodPost, "/api/products",
		dto.CreateProductRequest{Code: " abc-1 ", Name: "Duplicado"}, nil))
}

func TestProducts_Paginacion(t *testing.T) {
	api := newAPI(t)
	api.product("P-1", nil)
	api.product("P-2", nil)

	var list dto.ProductListResponse
	require.Equal(t, http.StatusOK, api.do("vendedor", http.MethodGet, "/api/products", nil, &list))
	assert.Len(t, list.Items, 2)
	assert.Equal(t, dto.DefaultLimit, list.Page.Limit)

	require.Equal(t, http.StatusOK, api.do("vendedor", http.MethodGet, "/api/products?limit=1&offset=1", nil, &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "P-2", list.Items[0].Code)
	assert.Equal(t, dto.PageResponse{Limit: 1, Offset: 1}, list.Page)

	for _, q := range []string{"limit=500", "limit=-1", "offset=-3", "limit=abc"} {
		var e dto.ErrorResponse
		assert.Equal(t, http.StatusBadRequest, api.do("vendedor", http.MethodGet, "/api/products?"+q, nil, &e), q)
		assert.Equal(t, "VALIDATION", e.Code, q)
	}
}

func TestMovements_EgresoYLineasDesconocidas(t *testing.T) {
	api := newAPI(t)
	a := api.warehouse("Central")
	p := api.product("P-1", map[string]int{a: 10})

	var res dto.MovementResultResponse
	status := api.do("bodeguero", http.MethodPost, "/api/movements", dto.CreateMovementRequest{
		Type:        "Egreso",
		WarehouseID: a,
		Items: []dto.MovementItemRequest{
			{ProductCode: "P-1", Quantity: 3},
			{ProductCode: "NO-EXISTE", Quantity: 1},
		},
	}, &res)
	require.Equal(t, http.StatusCreated, status)
	require.Len(t, res.Applied, 1)
	require.Len(t, res.LineErrors, 1)
	assert.Equal(t, "NO-EXISTE", res.LineErrors[0].ProductCode)
	assert.Equal(t, 7, api.getProduct(p.ID).Stocks[a])

	var list dto.MovementListResponse
	require.Equal(t, http.StatusOK, api.do("vendedor", http.MethodGet, "/api/movements?warehouse_id="+a+"&product_code=p-1", nil, &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Operador Test", list.Items[0].Operator)
}

func TestMovements_TodasLasLineasFallanIgualSeRegistra(t *testing.T) {
	api := newAPI(t)
	a := api.warehouse("Central")

	var res dto.MovementResultResponse
	status := api.do("bodeguero", http.MethodPost, "/api/movements", dto.CreateMovementRequest{
		Type: "Ingreso", WarehouseID: a, Items: []dto.MovementItemRequest{{ProductCode: "NO-EXISTE", Quantity: 1}},
	}, &res)
	require.Equal(t, http.StatusCreated, status)
	assert.NotEmpty(t, res.MovementID)
	assert.Empty(t, res.Applied)
	require.Len(t, res.LineErrors, 1)

	var list dto.MovementListResponse
	require.Equal(t, http.StatusOK, api.do("vendedor", http.MethodGet, "/api/movements?warehouse_id="+a, nil, &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, res.MovementID, list.Items[0].ID)
}

func TestMovements_VendedorNoRegistra(t *testing.T) {
	api := newAPI(t)
	a := api.warehouse("Central")
	assert.Equal(t, http.StatusForbidden, api.do("vendedor", http.MethodPost, "/api/movements", dto.CreateMovementRequest{
		Type: "Ingreso", WarehouseID: a, Items: []dto.MovementItemRequest{{ProductCode: "X", Quantity: 1}},
	}, nil))
}

func TestMovements_LoteIndependiente(t *testing.T) {
	api := newAPI(t)
	a := api.warehouse("Central")
	p := api.product("P-1", nil)

	var out []dto.BatchItemResponse
	status := api.do("bodeguero", http.MethodPost, "/api/movements/batch", dto.MovementBatchRequest{
		Movements: []dto.CreateMovementRequest{
			{Type: "Ingreso", WarehouseID: a, Items: []dto.MovementItemRequest{{ProductCode: "P-1", Quantity: 5}}},
			{Type: "Ingreso", WarehouseID: "bodega-inexistente", Items: []dto.MovementItemRequest{{ProductCode: "P-1", Quantity: 5}}},
			{Type: "Ajuste", WarehouseID: a, Items: []dto.MovementItemRequest{{ProductCode: "P-1", Quantity: 2}}},
		},
	}, &out)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, out, 3)
	assert.Nil(t, out[0].Error)
	require.NotNil(t, out[1].Error)
	assert.Nil(t, out[2].Error)
	assert.Equal(t, 2, api.getProduct(p.ID).Stocks[a])
}

func TestTransfers_RecepcionParcialYExceso(t *testing.T) {
	api := newAPI(t)
	a := api.warehouse("Central")
	b := api.warehouse("Norte")
	p := api.product("P-1", map[string]int{a: 10})

	var tr dto.TransferResponse
	require.Equal(t, http.StatusCreated, api.do("bodeguero", http.MethodPost, "/api/transfers", dto.CreateTransferRequest{
		OriginWarehouseID:      a,
		DestinationWarehouseID: b,
		Items:                  []dto.TransferItemRequest{{ProductCode: "P-1", Quantity: 5}},
	}, &tr))
	assert.Equal(t, "PENDING_RECEIPT", tr.State)
	prod := api.getProduct(p.ID)
	assert.Equal(t, 5, prod.Stocks[a])
	assert.Equal(t, 5, prod.Transitos[b])

	path := "/api/transfers/" + tr.ID + "/receipts"
	require.Equal(t, http.StatusOK, api.do("bodeguero", http.MethodPost, path, dto.ReceiveTransferRequest{
		Lines: []dto.ReceiptLineRequest{{ProductCode: "P-1", Received: 3}},
	}, &tr))
	assert.Equal(t, "PARTIALLY_RECEIVED", tr.State)
	assert.Equal(t, 2, tr.Items[0].Pending)

	var e dto.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, api.do("bodeguero", http.MethodPost, path, dto.ReceiveTransferRequest{
		Lines: []dto.ReceiptLineRequest{{ProductCode: "P-1", Received: 6}},
	}, &e))
	assert.Equal(t, "VALIDATION", e.Code)

	prod = api.getProduct(p.ID)
	assert.Equal(t, 3, prod.Stocks[b])
	assert.Equal(t, 2, prod.Transitos[b])

	var list dto.MovementListResponse
	require.Equal(t, http.StatusOK, api.do("vendedor", http.MethodGet, "/api/movements?transfer_id="+tr.ID, nil, &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, 3, list.Items[0].Items[0].Quantity)
}

func TestTransfers_MismaBodegaYStockInsuficiente(t *testing.T) {
	api := newAPI(t)
	a := api.warehouse("Central")
	b := api.warehouse("Norte")
	api.product("P-1", map[string]int{a: 1})

	assert.Equal(t, http.StatusBadRequest, api.do("bodeguero", http.MethodPost, "/api/transfers", dto.CreateTransferRequest{
		OriginWarehouseID: a, DestinationWarehouseID: a,
		Items: []dto.TransferItemRequest{{ProductCode: "P-1", Quantity: 1}},
	}, nil))

	var e dto.ErrorResponse
	assert.Equal(t, http.StatusConflict, api.do("bodeguero", http.MethodPost, "/api/transfers", dto.CreateTransferRequest{
		OriginWarehouseID: a, DestinationWarehouseID: b,
		Items: []dto.TransferItemRequest{{ProductCode: "P-1", Quantity: 2}},
	}, &e))
	assert.Equal(t, "INSUFFICIENT_STOCK", e.Code)
}

func TestPurchases_GuiaYReclamo(t *testing.T) {
	api := newAPI(t)
	a := api.warehouse("Central")

	var created []dto.PurchaseResponse
	require.Equal(t, http.StatusCreated, api.do("bodeguero", http.MethodPost, "/api/purchases", dto.CreatePurchaseRequest{
		OrderNumber:            "OC-77",
		DestinationWarehouseID: a,
		SupplierName:           "Proveedor SA",
		Lines:                  []dto.PurchaseLineRequest{{ProductCode: "P-9", ProductName: "Tornillo", Quantity: 4}},
	}, &created))
	require.Len(t, created, 1)
	assert.Equal(t, "PENDING_SHIPMENT", created[0].State)

	id := created[0].ID
	var p dto.PurchaseResponse
	require.Equal(t, http.StatusOK, api.do("bodeguero", http.MethodPost, "/api/purchases/"+id+"/guides", dto.AddGuideRequest{Guide: "G-1"}, &p))
	assert.Equal(t, "IN_TRANSIT", p.State)
	assert.Equal(t, "OC-77 G-1", p.CombinedReceiptLabel)

	var e dto.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, api.do("bodeguero", http.MethodPut, "/api/purchases/"+id+"/claim",
		dto.ClaimRequest{Reason: "producto_danado", State: "NONE"}, &e))
	assert.Equal(t, "VALIDATION", e.Code)

	require.Equal(t, http.StatusOK, api.do("bodeguero", http.MethodPut, "/api/purchases/"+id+"/claim",
		dto.ClaimRequest{Reason: "producto_danado", State: "IN_PROGRESS"}, &p))
	assert.Equal(t, "producto_danado", p.Claim.Reason)
	assert.Equal(t, "IN_TRANSIT", p.State)
}
