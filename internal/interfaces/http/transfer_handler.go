package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/bodegas-api/internal/application/dto"
	"github.com/jhoicas/bodegas-api/internal/application/inventory"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	domaininv "github.com/jhoicas/bodegas-api/internal/domain/inventory"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
)

// TransferHandler transferencias entre bodegas con recepción parcial (protegido).
type TransferHandler struct {
	uc *inventory.TransferUseCase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *inventory.TransferUseCase) *TransferHandler {
	return &TransferHandler{uc: uc}
}

// Create godoc
// @Summary      Crear transferencia
// @Description  Descuenta stock en origen y suma tránsito en destino en una sola transacción.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "Transferencia"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if e := bind(c, &in); e != nil {
		return badRequest(c, e)
	}
	lines := make([]inventory.TransferLine, 0, len(in.Items))
	for _, it := range in.Items {
		lines = append(lines, inventory.TransferLine{ProductID: it.ProductID, ProductCode: it.ProductCode, Quantity: it.Quantity})
	}
	t, err := h.uc.CreateTransfer(c.UserContext(), inventory.CreateTransferInput{
		OriginWarehouseID:      in.OriginWarehouseID,
		DestinationWarehouseID: in.DestinationWarehouseID,
		Items:                  lines,
		ReceiptNumber:          in.ReceiptNumber,
		Operator:               GetOperator(c),
		Notes:                  in.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransferResponse(t))
}

// Receive godoc
// @Summary      Registrar recepción (acumulados por línea)
// @Description  Los valores son acumulados, no incrementos. Superar lo solicitado rechaza toda la recepción.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID de la transferencia"
// @Param        body  body  dto.ReceiveTransferRequest  true  "Acumulados"
// @Success      200   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/receipts [post]
func (h *TransferHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveTransferRequest
	if e := bind(c, &in); e != nil {
		return badRequest(c, e)
	}
	lines := make([]domaininv.ReceiptLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, domaininv.ReceiptLine{ProductCode: l.ProductCode, Cumulative: l.Received})
	}
	t, err := h.uc.ReceiveTransfer(c.UserContext(), inventory.ReceiveTransferInput{
		TransferID: c.Params("id"),
		Lines:      lines,
		Operator:   GetOperator(c),
		Comment:    in.Comment,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toTransferResponse(t))
}

// GetByID godoc
// @Summary      Obtener transferencia con pendientes por línea
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la transferencia"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	t, err := h.uc.GetTransfer(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toTransferResponse(t))
}

// List godoc
// @Summary      Listar transferencias
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        state         query  string  false  "PENDING_RECEIPT | PARTIALLY_RECEIVED | RECEIVED"
// @Param        warehouse_id  query  string  false  "Bodega de origen o destino"
// @Success      200  {object}  dto.TransferListResponse
// @Router       /api/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	page, e := pageParams(c)
	if e != nil {
		return badRequest(c, e)
	}
	list, err := h.uc.ListTransfers(c.UserContext(), repository.TransferFilter{
		State:       entity.TransferState(c.Query("state")),
		WarehouseID: c.Query("warehouse_id"),
		Limit:       page.Limit,
		Offset:      page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.TransferResponse, 0, len(list))
	for _, t := range list {
		items = append(items, toTransferResponse(t))
	}
	return c.JSON(dto.TransferListResponse{Items: items, Page: page.Response()})
}

// Delete godoc
// @Summary      Eliminar transferencia (no revierte stock ni tránsito)
// @Tags         transfers
// @Security     Bearer
// @Param        id   path  string  true  "ID de la transferencia"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [delete]
func (h *TransferHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.DeleteTransfer(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
