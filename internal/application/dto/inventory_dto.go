package dto

import "time"

// MovementItemRequest línea de un movimiento. Para Ajuste, Quantity es el valor absoluto.
type MovementItemRequest struct {
	ProductCode string `json:"product_code" validate:"notblank"`
	Quantity    int    `json:"quantity" validate:"gte=0"`
}

// CreateMovementRequest body para POST /api/movements.
type CreateMovementRequest struct {
	Type         string                `json:"type" validate:"required"`
	WarehouseID  string                `json:"warehouse_id" validate:"notblank"`
	Items        []MovementItemRequest `json:"items" validate:"required,min=1,dive"`
	Counterparty string                `json:"counterparty" validate:"max=200"`
	ReceiptRef   string                `json:"receipt_ref" validate:"max=100"`
	Comment      string                `json:"comment" validate:"max=1000"`
}

// MovementBatchRequest lote de importación: cada comando se procesa por separado.
type MovementBatchRequest struct {
	Movements []CreateMovementRequest `json:"movements" validate:"required,min=1,max=500,dive"`
}

// MovementItemResponse línea aplicada.
type MovementItemResponse struct {
	ProductCode string `json:"product_code"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// MovementResponse entrada del libro.
type MovementResponse struct {
	ID           string                 `json:"id"`
	Timestamp    time.Time              `json:"timestamp"`
	Type         string                 `json:"type"`
	WarehouseID  string                 `json:"warehouse_id"`
	Items        []MovementItemResponse `json:"items"`
	Counterparty string                 `json:"counterparty,omitempty"`
	ReceiptRef   string                 `json:"receipt_ref,omitempty"`
	Operator     string                 `json:"operator,omitempty"`
	Comment      string                 `json:"comment,omitempty"`
	TransferID   string                 `json:"transfer_id,omitempty"`
}

// LineErrorResponse línea omitida.
type LineErrorResponse struct {
	Index       int    `json:"index"`
	ProductCode string `json:"product_code"`
	Message     string `json:"message"`
}

// MovementResultResponse resultado de registrar un movimiento.
type MovementResultResponse struct {
	MovementID string                 `json:"movement_id"`
	Applied    []MovementItemResponse `json:"applied"`
	LineErrors []LineErrorResponse    `json:"line_errors"`
}

// BatchItemResponse resultado de un comando del lote.
type BatchItemResponse struct {
	Index  int                     `json:"index"`
	Result *MovementResultResponse `json:"result,omitempty"`
	Error  *ErrorResponse          `json:"error,omitempty"`
}

// MovementListResponse lista paginada del libro.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// TransferItemRequest línea solicitada; se identifica el producto por id o por código.
type TransferItemRequest struct {
	ProductID   string `json:"product_id" validate:"required_without=ProductCode"`
	ProductCode string `json:"product_code" validate:"required_without=ProductID"`
	Quantity    int    `json:"quantity" validate:"gt=0"`
}

// CreateTransferRequest body para POST /api/transfers.
type CreateTransferRequest struct {
	OriginWarehouseID      string                `json:"origin_warehouse_id" validate:"notblank"`
	DestinationWarehouseID string                `json:"destination_warehouse_id" validate:"notblank,nefield=OriginWarehouseID"`
	Items                  []TransferItemRequest `json:"items" validate:"required,min=1,dive"`
	ReceiptNumber          string                `json:"receipt_number" validate:"max=100"`
	Notes                  string                `json:"notes" validate:"max=1000"`
}

// ReceiptLineRequest acumulado recibido de una línea (no un delta).
type ReceiptLineRequest struct {
	ProductCode string `json:"product_code" validate:"notblank"`
	Received    int    `json:"received" validate:"gte=0"`
}

// ReceiveTransferRequest body para POST /api/transfers/:id/receipts.
type ReceiveTransferRequest struct {
	Lines   []ReceiptLineRequest `json:"lines" validate:"required,min=1,dive"`
	Comment string               `json:"comment" validate:"max=1000"`
}

// TransferItemResponse línea con su acumulado y lo pendiente.
type TransferItemResponse struct {
	ProductID   string `json:"product_id"`
	ProductCode string `json:"product_code"`
	ProductName string `json:"product_name"`
	Barcode     string `json:"barcode,omitempty"`
	Quantity    int    `json:"quantity"`
	Received    int    `json:"received"`
	Pending     int    `json:"pending"`
}

// TransferResponse salida de una transferencia.
type TransferResponse struct {
	ID                     string                 `json:"id"`
	ReceiptNumber          string                 `json:"receipt_number"`
	State                  string                 `json:"state"`
	OriginWarehouseID      string                 `json:"origin_warehouse_id"`
	DestinationWarehouseID string                 `json:"destination_warehouse_id"`
	Items                  []TransferItemResponse `json:"items"`
	Operator               string                 `json:"operator,omitempty"`
	Notes                  string                 `json:"notes,omitempty"`
	CreatedAt              time.Time              `json:"created_at"`
	UpdatedAt              time.Time              `json:"updated_at"`
}

// TransferListResponse lista paginada de transferencias.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
