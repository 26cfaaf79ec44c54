package http

import (
	"errors"

	"github.com/jhoicas/bodegas-api/internal/application/dto"
	"github.com/jhoicas/bodegas-api/internal/application/inventory"
	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
)

func toMovementItems(items []entity.MovementItem) []dto.MovementItemResponse {
	out := make([]dto.MovementItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.MovementItemResponse{ProductCode: it.ProductCode, ProductName: it.ProductName, Quantity: it.Quantity})
	}
	return out
}

func toMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:           m.ID,
		Timestamp:    m.Timestamp,
		Type:         string(m.Type),
		WarehouseID:  m.WarehouseID,
		Items:        toMovementItems(m.Items),
		Counterparty: m.Counterparty,
		ReceiptRef:   m.ReceiptRef,
		Operator:     m.Operator,
		Comment:      m.Comment,
		TransferID:   m.TransferID,
	}
}

func toMovementResult(r *inventory.MovementResult) *dto.MovementResultResponse {
	out := &dto.MovementResultResponse{
		MovementID: r.MovementID,
		Applied:    toMovementItems(r.Applied),
		LineErrors: make([]dto.LineErrorResponse, 0, len(r.LineErrors)),
	}
	for _, le := range r.LineErrors {
		msg := ""
		if le.Err != nil {
			msg = le.Err.Error()
		}
		out.LineErrors = append(out.LineErrors, dto.LineErrorResponse{Index: le.Index, ProductCode: le.Code, Message: msg})
	}
	return out
}

// batchError código de error de un comando del lote, el mismo que usaría writeError.
func batchError(err error) *dto.ErrorResponse {
	code := "INTERNAL"
	switch {
	case domain.IsValidation(err):
		code = "VALIDATION"
	case errors.Is(err, domain.ErrNotFound):
		code = "NOT_FOUND"
	case errors.Is(err, domain.ErrInsufficientStock):
		code = "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrTransient):
		code = "RETRY"
	}
	e := errorBody(err, code)
	return &e
}

func toTransferResponse(t *entity.Transfer) dto.TransferResponse {
	items := make([]dto.TransferItemResponse, 0, len(t.Items))
	for _, it := range t.Items {
		received := t.ReceivedFor(it.ProductCode)
		pending := it.Quantity - received
		if pending < 0 {
			pending = 0
		}
		items = append(items, dto.TransferItemResponse{
			ProductID:   it.ProductID,
			ProductCode: it.ProductCode,
			ProductName: it.ProductName,
			Barcode:     it.Barcode,
			Quantity:    it.Quantity,
			Received:    received,
			Pending:     pending,
		})
	}
	return dto.TransferResponse{
		ID:                     t.ID,
		ReceiptNumber:          t.ReceiptNumber,
		State:                  string(t.State),
		OriginWarehouseID:      t.OriginWarehouseID,
		DestinationWarehouseID: t.DestinationWarehouseID,
		Items:                  items,
		Operator:               t.Operator,
		Notes:                  t.Notes,
		CreatedAt:              t.CreatedAt,
		UpdatedAt:              t.UpdatedAt,
	}
}

func toPurchaseResponse(p *entity.Purchase) dto.PurchaseResponse {
	guides := p.ShipmentGuides
	if guides == nil {
		guides = []string{}
	}
	return dto.PurchaseResponse{
		ID:                     p.ID,
		OrderNumber:            p.OrderNumber,
		CombinedReceiptLabel:   p.CombinedReceiptLabel,
		DestinationWarehouseID: p.DestinationWarehouseID,
		State:                  string(p.State),
		ShipmentGuides:         guides,
		Claim: dto.ClaimResponse{
			Reason: string(p.Claim.Reason),
			Amount: p.Claim.Amount,
			State:  string(p.Claim.State),
		},
		SupplierName:     p.Supplier.Name,
		SupplierContact:  p.Supplier.Contact,
		ProductCode:      p.ProductCode,
		ProductName:      p.ProductName,
		Quantity:         p.Quantity,
		ReceivedQuantity: p.ReceivedQuantity,
		TotalCost:        p.TotalCost,
		UnitCost:         p.UnitCost(),
		Observations:     p.Observations,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func toListingResponse(l *entity.Listing) dto.ListingResponse {
	return dto.ListingResponse{
		ID:           l.ID,
		Title:        l.Title,
		Status:       l.Status,
		Price:        l.Price,
		AvailableQty: l.AvailableQty,
		SoldQty:      l.SoldQty,
		Permalink:    l.Permalink,
		SyncedAt:     l.SyncedAt,
	}
}
