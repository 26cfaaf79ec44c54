package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseState estado logístico de una compra.
type PurchaseState string

const (
	PurchasePendingShipment   PurchaseState = "PENDING_SHIPMENT"
	PurchaseInTransit         PurchaseState = "IN_TRANSIT"
	PurchasePartiallyReceived PurchaseState = "PARTIALLY_RECEIVED"
	PurchaseReceived          PurchaseState = "RECEIVED"
)

// Valid indica si el estado es uno de los soportados.
func (s PurchaseState) Valid() bool {
	switch s {
	case PurchasePendingShipment, PurchaseInTransit, PurchasePartiallyReceived, PurchaseReceived:
		return true
	}
	return false
}

// ClaimReason motivo de reclamo al proveedor. Vacío = sin reclamo.
type ClaimReason string

const (
	ClaimReasonNone       ClaimReason = ""
	ClaimReasonDamaged    ClaimReason = "producto_danado"
	ClaimReasonMissing    ClaimReason = "producto_faltante"
	ClaimReasonWrong      ClaimReason = "producto_incorrecto"
	ClaimReasonNotArrived ClaimReason = "no_recibido"
	ClaimReasonOther      ClaimReason = "otro"
)

// Valid indica si el motivo pertenece al conjunto enumerado (incluye vacío).
func (r ClaimReason) Valid() bool {
	switch r {
	case ClaimReasonNone, ClaimReasonDamaged, ClaimReasonMissing, ClaimReasonWrong, ClaimReasonNotArrived, ClaimReasonOther:
		return true
	}
	return false
}

// ClaimState estado del reclamo.
type ClaimState string

const (
	ClaimNone       ClaimState = "NONE"
	ClaimInProgress ClaimState = "IN_PROGRESS"
	ClaimRefunded   ClaimState = "REFUNDED"
	ClaimNoRefund   ClaimState = "NO_REFUND"
)

// Valid indica si el estado de reclamo es soportado.
func (s ClaimState) Valid() bool {
	switch s {
	case ClaimNone, ClaimInProgress, ClaimRefunded, ClaimNoRefund:
		return true
	}
	return false
}

// Claim reclamo asociado a una compra.
type Claim struct {
	Reason ClaimReason
	Amount decimal.Decimal
	State  ClaimState
}

// Supplier datos del proveedor copiados en cada línea de compra.
type Supplier struct {
	Name    string
	Contact string
}

// Purchase una línea de una orden de compra. Los campos de la orden (número, proveedor, guías, bodega,
// observaciones) se duplican en cada línea.
type Purchase struct {
	ID                     string
	OrderNumber            string
	CombinedReceiptLabel   string
	DestinationWarehouseID string
	State                  PurchaseState
	ShipmentGuides         []string
	Claim                  Claim
	Supplier               Supplier
	ProductCode            string
	ProductName            string
	Quantity               int
	ReceivedQuantity       int
	TotalCost              decimal.Decimal
	Observations           string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// AddGuide agrega una guía de envío. La primera guía fuerza el estado a IN_TRANSIT,
// sin importar el estado manual previo. Devuelve false si la guía ya existía o es vacía.
func (p *Purchase) AddGuide(guide string) bool {
	guide = strings.TrimSpace(guide)
	if guide == "" {
		return false
	}
	for _, g := range p.ShipmentGuides {
		if g == guide {
			return false
		}
	}
	wasEmpty := len(p.ShipmentGuides) == 0
	p.ShipmentGuides = append(p.ShipmentGuides, guide)
	if wasEmpty {
		p.State = PurchaseInTransit
	}
	p.RecomputeLabel()
	return true
}

// RecomputeLabel deriva CombinedReceiptLabel = número de orden + guías concatenadas.
func (p *Purchase) RecomputeLabel() {
	if len(p.ShipmentGuides) == 0 {
		p.CombinedReceiptLabel = p.OrderNumber
		return
	}
	p.CombinedReceiptLabel = strings.TrimSpace(p.OrderNumber + " " + strings.Join(p.ShipmentGuides, " / "))
}

// UnitCost costo unitario de la línea (0 si la cantidad es 0).
func (p *Purchase) UnitCost() decimal.Decimal {
	if p.Quantity <= 0 {
		return decimal.Zero
	}
	return p.TotalCost.Div(decimal.NewFromInt(int64(p.Quantity))).Round(2)
}

// PendingQuantity unidades aún no recibidas.
func (p *Purchase) PendingQuantity() int {
	if p.ReceivedQuantity >= p.Quantity {
		return 0
	}
	return p.Quantity - p.ReceivedQuantity
}
