package inventory

import (
	"strings"

	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"golang.org/x/text/cases"
)

// UnderflowPolicy define qué hacer cuando un egreso deja el stock por debajo de cero.
type UnderflowPolicy string

const (
	// UnderflowClamp recorta a 0 sin error (comportamiento por defecto).
	UnderflowClamp UnderflowPolicy = "clamp"
	// UnderflowReject rechaza la línea con domain.ErrInsufficientStock.
	UnderflowReject UnderflowPolicy = "reject"
)

// ParseUnderflowPolicy interpreta el valor de configuración; cualquier otro valor es clamp.
func ParseUnderflowPolicy(s string) UnderflowPolicy {
	if strings.EqualFold(strings.TrimSpace(s), string(UnderflowReject)) {
		return UnderflowReject
	}
	return UnderflowClamp
}

// ApplyStockDelta calcula el nuevo stock de un (producto, bodega).
//   - Ingreso y Recepción de transferencia suman.
//   - Egreso resta.
//   - Ajuste fija el valor absoluto.
//
// El resultado nunca es negativo. Con UnderflowReject un resultado negativo devuelve ErrInsufficientStock.
func ApplyStockDelta(current, quantity int, t entity.MovementType, policy UnderflowPolicy) (int, error) {
	var next int
	switch t {
	case entity.MovementIngreso, entity.MovementRecepcionTransferencia:
		next = current + quantity
	case entity.MovementEgreso:
		next = current - quantity
	case entity.MovementAjuste:
		next = quantity
	default:
		return current, domain.Invalid("type", nil)
	}
	if next < 0 {
		if policy == UnderflowReject {
			return current, domain.ErrInsufficientStock
		}
		next = 0
	}
	return next, nil
}

// Floor recorta un valor a 0.
func Floor(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// NormalizeCode clave de búsqueda de un código de producto: sin espacios en los extremos y sin mayúsculas.
func NormalizeCode(code string) string {
	return cases.Fold().String(strings.TrimSpace(code))
}
