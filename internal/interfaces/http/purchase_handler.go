package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/bodegas-api/internal/application/dto"
	"github.com/jhoicas/bodegas-api/internal/application/purchase"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
)

// PurchaseHandler órdenes de compra: guías, estado, reclamos y recepción (protegido).
type PurchaseHandler struct {
	uc *purchase.UseCase
}

// NewPurchaseHandler construye el handler.
func NewPurchaseHandler(uc *purchase.UseCase) *PurchaseHandler {
	return &PurchaseHandler{uc: uc}
}

func toPurchaseList(list []*entity.Purchase) []dto.PurchaseResponse {
	out := make([]dto.PurchaseResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toPurchaseResponse(p))
	}
	return out
}

// Create godoc
// @Summary      Registrar orden de compra (una fila por línea)
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseRequest  true  "Orden"
// @Success      201   {array}   dto.PurchaseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/purchases [post]
func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePurchaseRequest
	if e := bind(c, &in); e != nil {
		return badRequest(c, e)
	}
	lines := make([]purchase.Line, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, purchase.Line{ProductCode: l.ProductCode, ProductName: l.ProductName, Quantity: l.Quantity, TotalCost: l.TotalCost})
	}
	created, err := h.uc.AddPurchase(c.UserContext(), purchase.AddInput{
		OrderNumber:            in.OrderNumber,
		DestinationWarehouseID: in.DestinationWarehouseID,
		Supplier:               entity.Supplier{Name: in.SupplierName, Contact: in.SupplierContact},
		Guides:                 in.Guides,
		Observations:           in.Observations,
		Lines:                  lines,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toPurchaseList(created))
}

// GetByID godoc
// @Summary      Obtener línea de compra
// @Tags         purchases
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la línea"
// @Success      200  {object}  dto.PurchaseResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchases/{id} [get]
func (h *PurchaseHandler) GetByID(c *fiber.Ctx) error {
	p, err := h.uc.GetPurchase(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPurchaseResponse(p))
}

// List godoc
// @Summary      Listar compras (forma aplanada)
// @Tags         purchases
// @Security     Bearer
// @Produce      json
// @Param        order_number  query  string  false  "Número de orden"
// @Param        state         query  string  false  "Estado logístico"
// @Success      200  {object}  dto.PurchaseListResponse
// @Router       /api/purchases [get]
func (h *PurchaseHandler) List(c *fiber.Ctx) error {
	page, e := pageParams(c)
	if e != nil {
		return badRequest(c, e)
	}
	list, err := h.uc.ListPurchases(c.UserContext(), repository.PurchaseFilter{
		OrderNumber: c.Query("order_number"),
		State:       entity.PurchaseState(c.Query("state")),
		Limit:       page.Limit,
		Offset:      page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.PurchaseListResponse{Items: toPurchaseList(list), Page: page.Response()})
}

// AddGuide godoc
// @Summary      Agregar guía de envío (la primera pasa la compra a IN_TRANSIT)
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID de la línea"
// @Param        body  body  dto.AddGuideRequest  true  "Guía"
// @Success      200   {object}  dto.PurchaseResponse
// @Router       /api/purchases/{id}/guides [post]
func (h *PurchaseHandler) AddGuide(c *fiber.Ctx) error {
	var in dto.AddGuideRequest
	if e := bind(c, &in); e != nil {
		return badRequest(c, e)
	}
	p, err := h.uc.AddShipmentGuide(c.UserContext(), c.Params("id"), in.Guide)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPurchaseResponse(p))
}

// SetState godoc
// @Summary      Fijar estado logístico manualmente
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "ID de la línea"
// @Param        body  body  dto.SetPurchaseStateRequest  true  "Estado"
// @Success      200   {object}  dto.PurchaseResponse
// @Router       /api/purchases/{id}/state [put]
func (h *PurchaseHandler) SetState(c *fiber.Ctx) error {
	var in dto.SetPurchaseStateRequest
	if e := bind(c, &in); e != nil {
		return badRequest(c, e)
	}
	p, err := h.uc.SetState(c.UserContext(), c.Params("id"), entity.PurchaseState(in.State))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPurchaseResponse(p))
}

// FileClaim godoc
// @Summary      Registrar o limpiar reclamo al proveedor
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string            true  "ID de la línea"
// @Param        body  body  dto.ClaimRequest  true  "Reclamo"
// @Success      200   {object}  dto.PurchaseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/purchases/{id}/claim [put]
func (h *PurchaseHandler) FileClaim(c *fiber.Ctx) error {
	var in dto.ClaimRequest
	if e := bind(c, &in); e != nil {
		return badRequest(c, e)
	}
	p, err := h.uc.FileClaim(c.UserContext(), c.Params("id"), purchase.ClaimInput{
		Reason: entity.ClaimReason(in.Reason),
		Amount: in.Amount,
		State:  entity.ClaimState(in.State),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPurchaseResponse(p))
}

// Receive godoc
// @Summary      Registrar recepción de la compra (acumulado)
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID de la línea"
// @Param        body  body  dto.ReceivePurchaseRequest  true  "Acumulado recibido"
// @Success      200   {object}  dto.PurchaseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/purchases/{id}/receipts [post]
func (h *PurchaseHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceivePurchaseRequest
	if e := bind(c, &in); e != nil {
		return badRequest(c, e)
	}
	p, err := h.uc.ReceivePurchase(c.UserContext(), purchase.ReceiveInput{
		PurchaseID: c.Params("id"),
		Cumulative: in.Received,
		Operator:   GetOperator(c),
		Comment:    in.Comment,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPurchaseResponse(p))
}
