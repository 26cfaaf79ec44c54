package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseLineRequest producto de una orden de compra.
type PurchaseLineRequest struct {
	ProductCode string          `json:"product_code" validate:"notblank"`
	ProductName string          `json:"product_name" validate:"max=200"`
	Quantity    int             `json:"quantity" validate:"gt=0"`
	TotalCost   decimal.Decimal `json:"total_cost" validate:"gte=0"`
}

// CreatePurchaseRequest body para POST /api/purchases.
type CreatePurchaseRequest struct {
	OrderNumber            string                `json:"order_number" validate:"notblank,max=100"`
	DestinationWarehouseID string                `json:"destination_warehouse_id" validate:"notblank"`
	SupplierName           string                `json:"supplier_name" validate:"max=200"`
	SupplierContact        string                `json:"supplier_contact" validate:"max=200"`
	Guides                 []string              `json:"guides" validate:"omitempty,dive,max=100"`
	Observations           string                `json:"observations" validate:"max=1000"`
	Lines                  []PurchaseLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// AddGuideRequest body para POST /api/purchases/:id/guides.
type AddGuideRequest struct {
	Guide string `json:"guide" validate:"notblank,max=100"`
}

// SetPurchaseStateRequest body para PUT /api/purchases/:id/state.
type SetPurchaseStateRequest struct {
	State string `json:"state" validate:"oneof=PENDING_SHIPMENT IN_TRANSIT PARTIALLY_RECEIVED RECEIVED"`
}

// ClaimRequest body para PUT /api/purchases/:id/claim. Motivo vacío limpia el reclamo.
type ClaimRequest struct {
	Reason string          `json:"reason" validate:"omitempty,oneof=producto_danado producto_faltante producto_incorrecto no_recibido otro"`
	Amount decimal.Decimal `json:"amount" validate:"gte=0"`
	State  string          `json:"state" validate:"omitempty,oneof=NONE IN_PROGRESS REFUNDED NO_REFUND"`
}

// ReceivePurchaseRequest acumulado recibido de la línea.
type ReceivePurchaseRequest struct {
	Received int    `json:"received" validate:"gte=0"`
	Comment  string `json:"comment" validate:"max=1000"`
}

// ClaimResponse reclamo de la línea.
type ClaimResponse struct {
	Reason string          `json:"reason"`
	Amount decimal.Decimal `json:"amount"`
	State  string          `json:"state"`
}

// PurchaseResponse una fila por línea de compra.
type PurchaseResponse struct {
	ID                     string          `json:"id"`
	OrderNumber            string          `json:"order_number"`
	CombinedReceiptLabel   string          `json:"combined_receipt_label"`
	DestinationWarehouseID string          `json:"destination_warehouse_id"`
	State                  string          `json:"state"`
	ShipmentGuides         []string        `json:"shipment_guides"`
	Claim                  ClaimResponse   `json:"claim"`
	SupplierName           string          `json:"supplier_name,omitempty"`
	SupplierContact        string          `json:"supplier_contact,omitempty"`
	ProductCode            string          `json:"product_code"`
	ProductName            string          `json:"product_name"`
	Quantity               int             `json:"quantity"`
	ReceivedQuantity       int             `json:"received_quantity"`
	TotalCost              decimal.Decimal `json:"total_cost"`
	UnitCost               decimal.Decimal `json:"unit_cost"`
	Observations           string          `json:"observations,omitempty"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

// PurchaseListResponse lista paginada de líneas de compra.
type PurchaseListResponse struct {
	Items []PurchaseResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// ListingResponse instantánea de una publicación del marketplace.
type ListingResponse struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Status       string          `json:"status"`
	Price        decimal.Decimal `json:"price"`
	AvailableQty int             `json:"available_quantity"`
	SoldQty      int             `json:"sold_quantity"`
	Permalink    string          `json:"permalink,omitempty"`
	SyncedAt     time.Time       `json:"synced_at"`
}
