package entity

import "time"

// TransferState estado de una transferencia entre bodegas.
type TransferState string

const (
	TransferPendingReceipt    TransferState = "PENDING_RECEIPT"
	TransferPartiallyReceived TransferState = "PARTIALLY_RECEIVED"
	TransferReceived          TransferState = "RECEIVED"
)

// TransferItem línea solicitada de una transferencia.
type TransferItem struct {
	ProductID   string `json:"product_id"`
	ProductCode string `json:"product_code"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Barcode     string `json:"barcode,omitempty"`
}

// ReceivedItem acumulado recibido de una línea (no es un delta).
type ReceivedItem struct {
	ProductCode string `json:"product_code"`
	ProductName string `json:"product_name"`
	Received    int    `json:"received"`
}

// Transfer traslado de stock de una bodega de origen a una de destino con recepción parcial.
type Transfer struct {
	ID                     string
	ReceiptNumber          string
	CreatedAt              time.Time
	UpdatedAt              time.Time
	State                  TransferState
	OriginWarehouseID      string
	DestinationWarehouseID string
	Items                  []TransferItem
	ReceivedItems          []ReceivedItem
	Operator               string
	Notes                  string
}

// ReceivedFor devuelve el acumulado recibido de un código (0 si aún no hay recepción).
func (t *Transfer) ReceivedFor(code string) int {
	for _, r := range t.ReceivedItems {
		if r.ProductCode == code {
			return r.Received
		}
	}
	return 0
}

// IsClosed indica si la transferencia está en su estado terminal.
func (t *Transfer) IsClosed() bool {
	return t.State == TransferReceived
}

// Outstanding devuelve, por código, lo que falta por recibir.
func (t *Transfer) Outstanding() map[string]int {
	out := make(map[string]int, len(t.Items))
	for _, it := range t.Items {
		if pending := it.Quantity - t.ReceivedFor(it.ProductCode); pending > 0 {
			out[it.ProductCode] = pending
		}
	}
	return out
}

// References indica si la transferencia involucra la bodega.
func (t *Transfer) References(warehouseID string) bool {
	return t.OriginWarehouseID == warehouseID || t.DestinationWarehouseID == warehouseID
}
