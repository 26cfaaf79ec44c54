package entity

import "time"

// MovementType tipos de movimiento del libro de inventario.
type MovementType string

const (
	MovementIngreso                MovementType = "Ingreso"
	MovementEgreso                 MovementType = "Egreso"
	MovementAjuste                 MovementType = "Ajuste"
	MovementRecepcionTransferencia MovementType = "Recepción de transferencia"
)

// Valid indica si el tipo es uno de los soportados.
func (t MovementType) Valid() bool {
	switch t {
	case MovementIngreso, MovementEgreso, MovementAjuste, MovementRecepcionTransferencia:
		return true
	}
	return false
}

// MovementItem línea de un movimiento: una actualización de stock (producto, bodega, cantidad).
type MovementItem struct {
	ProductCode string `json:"product_code"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// Movement entrada del libro de movimientos (append-only).
// Para "Recepción de transferencia" Quantity es siempre el incremento recibido en ese evento.
type Movement struct {
	ID           string
	Timestamp    time.Time
	Type         MovementType
	WarehouseID  string
	Items        []MovementItem
	Counterparty string // proveedor, cliente o bodega de origen
	ReceiptRef   string // número de comprobante / remisión
	Operator     string
	Comment      string
	TransferID   string // sólo para recepciones de transferencia
}
