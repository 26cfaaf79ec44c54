package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/bodegas-api/internal/application/dto"
	"github.com/jhoicas/bodegas-api/internal/application/inventory"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
)

// MovementHandler libro de movimientos: registro manual, importación por lotes y consulta (protegido).
type MovementHandler struct {
	uc *inventory.MovementUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *inventory.MovementUseCase) *MovementHandler {
	return &MovementHandler{uc: uc}
}

func toMovementInput(in dto.CreateMovementRequest, operator string) inventory.MovementInput {
	lines := make([]inventory.MovementLine, 0, len(in.Items))
	for _, it := range in.Items {
		lines = append(lines, inventory.MovementLine{ProductCode: it.ProductCode, Quantity: it.Quantity})
	}
	return inventory.MovementInput{
		Type:         entity.MovementType(in.Type),
		WarehouseID:  in.WarehouseID,
		Items:        lines,
		Counterparty: in.Counterparty,
		ReceiptRef:   in.ReceiptRef,
		Operator:     operator,
		Comment:      in.Comment,
	}
}

// Create godoc
// @Summary      Registrar movimiento (Ingreso, Egreso o Ajuste)
// @Description  Las líneas con producto desconocido se omiten y se reportan en line_errors.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMovementRequest  true  "Movimiento"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMovementRequest
	if e := bind(c, &in); e != nil {
		return badRequest(c, e)
	}
	res, err := h.uc.RecordMovement(c.UserContext(), toMovementInput(in, GetOperator(c)))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResult(res))
}

// Batch godoc
// @Summary      Importar lote de movimientos
// @Description  Cada comando se procesa en su propia transacción; un fallo no aborta el resto.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementBatchRequest  true  "Lote"
// @Success      200   {array}   dto.BatchItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/movements/batch [post]
func (h *MovementHandler) Batch(c *fiber.Ctx) error {
	var in dto.MovementBatchRequest
	if e := bind(c, &in); e != nil {
		return badRequest(c, e)
	}
	operator := GetOperator(c)
	inputs := make([]inventory.MovementInput, 0, len(in.Movements))
	for _, m := range in.Movements {
		inputs = append(inputs, toMovementInput(m, operator))
	}
	results := h.uc.RecordBatch(c.UserContext(), inputs)
	out := make([]dto.BatchItemResponse, 0, len(results))
	for _, r := range results {
		item := dto.BatchItemResponse{Index: r.Index}
		if r.Err != nil {
			item.Error = batchError(r.Err)
		} else {
			item.Result = toMovementResult(r.Result)
		}
		out = append(out, item)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener movimiento
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [get]
func (h *MovementHandler) GetByID(c *fiber.Ctx) error {
	m, err := h.uc.GetMovement(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toMovementResponse(m))
}

// List godoc
// @Summary      Consultar el libro de movimientos
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        type          query  string  false  "Tipo de movimiento"
// @Param        product_code  query  string  false  "Código de producto"
// @Param        transfer_id   query  string  false  "Transferencia"
// @Param        from          query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        to            query  string  false  "Hasta (RFC3339 o YYYY-MM-DD, día incluido)"
// @Param        limit         query  int     false  "Límite"  default(20)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	from, err := queryTime(c, "from")
	if err != nil {
		return writeError(c, err)
	}
	to, err := queryTime(c, "to")
	if err != nil {
		return writeError(c, err)
	}
	if to != nil && len(c.Query("to")) == len("2006-01-02") {
		end := to.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	page, e := pageParams(c)
	if e != nil {
		return badRequest(c, e)
	}
	list, err := h.uc.ListMovements(c.UserContext(), repository.MovementFilter{
		WarehouseID: c.Query("warehouse_id"),
		Type:        entity.MovementType(c.Query("type")),
		ProductCode: c.Query("product_code"),
		TransferID:  c.Query("transfer_id"),
		From:        from,
		To:          to,
		Limit:       page.Limit,
		Offset:      page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, toMovementResponse(m))
	}
	return c.JSON(dto.MovementListResponse{Items: items, Page: page.Response()})
}
