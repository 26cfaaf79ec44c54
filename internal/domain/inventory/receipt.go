package inventory

import (
	"fmt"

	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
)

// ReceiptLine acumulado reportado por el operador para una línea de la transferencia.
type ReceiptLine struct {
	ProductCode string
	Cumulative  int
}

// ReceiptIncrement unidades nuevas de una línea en este evento de recepción.
type ReceiptIncrement struct {
	Item      entity.TransferItem
	Increment int
}

// ReceiptPlan resultado de validar una recepción contra el estado guardado de la transferencia.
type ReceiptPlan struct {
	Increments []ReceiptIncrement    // sólo líneas con incremento > 0, en el orden de la transferencia
	Received   []entity.ReceivedItem // acumulados completos tras la recepción
	State      entity.TransferState
}

// Changed indica si la recepción mueve alguna unidad.
func (p ReceiptPlan) Changed() bool { return len(p.Increments) > 0 }

// MovementItems líneas del movimiento "Recepción de transferencia": siempre el incremento.
func (p ReceiptPlan) MovementItems() []entity.MovementItem {
	items := make([]entity.MovementItem, 0, len(p.Increments))
	for _, inc := range p.Increments {
		items = append(items, entity.MovementItem{
			ProductCode: inc.Item.ProductCode,
			ProductName: inc.Item.ProductName,
			Quantity:    inc.Increment,
		})
	}
	return items
}

// PlanReceipt valida todas las líneas antes de calcular nada; cualquier línea inválida rechaza la recepción completa.
// Las líneas omitidas conservan su acumulado previo.
func PlanReceipt(t *entity.Transfer, lines []ReceiptLine) (ReceiptPlan, error) {
	if t.IsClosed() {
		return ReceiptPlan{}, domain.ErrTransferClosed
	}
	if len(lines) == 0 {
		return ReceiptPlan{}, domain.Invalid("items", domain.ErrEmptyItems)
	}

	byKey := make(map[string]int, len(t.Items))
	for i, it := range t.Items {
		byKey[NormalizeCode(it.ProductCode)] = i
	}

	cumulative := make([]int, len(t.Items))
	for i, it := range t.Items {
		cumulative[i] = t.ReceivedFor(it.ProductCode)
	}

	seen := make(map[int]bool, len(lines))
	for n, line := range lines {
		field := fmt.Sprintf("items[%d]", n)
		idx, ok := byKey[NormalizeCode(line.ProductCode)]
		if !ok {
			return ReceiptPlan{}, domain.Invalid(field+".product_code", domain.ErrNotFound)
		}
		if seen[idx] {
			return ReceiptPlan{}, domain.Invalid(field+".product_code", domain.ErrDuplicate)
		}
		seen[idx] = true

		item := t.Items[idx]
		switch {
		case line.Cumulative < 0:
			return ReceiptPlan{}, domain.Invalid(field+".cumulative", nil)
		case line.Cumulative > item.Quantity:
			return ReceiptPlan{}, domain.Invalid(field+".cumulative", domain.ErrExcessReceipt)
		case line.Cumulative < cumulative[idx]:
			// El acumulado no puede retroceder: lo ya acreditado en destino no se revierte.
			return ReceiptPlan{}, domain.Invalid(field+".cumulative", nil)
		}
	}

	plan := ReceiptPlan{Received: make([]entity.ReceivedItem, 0, len(t.Items))}
	for _, line := range lines {
		cumulative[byKey[NormalizeCode(line.ProductCode)]] = line.Cumulative
	}

	complete, started := true, false
	for i, it := range t.Items {
		prev := t.ReceivedFor(it.ProductCode)
		if inc := cumulative[i] - prev; inc > 0 {
			plan.Increments = append(plan.Increments, ReceiptIncrement{Item: it, Increment: inc})
		}
		if cumulative[i] != it.Quantity {
			complete = false
		}
		if cumulative[i] > 0 {
			started = true
		}
		plan.Received = append(plan.Received, entity.ReceivedItem{
			ProductCode: it.ProductCode,
			ProductName: it.ProductName,
			Received:    cumulative[i],
		})
	}

	switch {
	case complete:
		plan.State = entity.TransferReceived
	case started:
		plan.State = entity.TransferPartiallyReceived
	default:
		plan.State = t.State
	}
	return plan, nil
}
