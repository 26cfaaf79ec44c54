package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")

	ErrSameWarehouse  = errors.New("la bodega de origen y destino deben ser distintas")
	ErrEmptyItems     = errors.New("se requiere al menos un ítem")
	ErrExcessReceipt  = errors.New("la cantidad recibida supera la solicitada")
	ErrTransferClosed = errors.New("la transferencia ya fue recibida por completo")
	ErrClaimState     = errors.New("un reclamo con motivo requiere un estado distinto de ninguno")
	ErrReferenced     = errors.New("el recurso está referenciado y no puede eliminarse")
	ErrTransient      = errors.New("conflicto de concurrencia, reintente la operación")
)

// ValidationError asocia un error de validación al campo que lo produjo.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Err.Error())
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Invalid construye un ValidationError; si err es nil se usa ErrInvalidInput.
func Invalid(field string, err error) error {
	if err == nil {
		err = ErrInvalidInput
	}
	return &ValidationError{Field: field, Err: err}
}

// LineError reporta el fallo de una línea de un lote (importación o movimiento manual).
// No aborta el resto del lote.
type LineError struct {
	Index int    `json:"index"`
	Code  string `json:"product_code"`
	Err   error  `json:"-"`
}

func (e LineError) Error() string {
	return fmt.Sprintf("línea %d (%s): %s", e.Index+1, e.Code, e.Err.Error())
}

func (e LineError) Unwrap() error { return e.Err }

// IsValidation indica si err pertenece a la familia de errores de validación (rechazo sin mutación).
func IsValidation(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	for _, target := range []error{
		ErrInvalidInput, ErrSameWarehouse, ErrEmptyItems, ErrExcessReceipt, ErrClaimState,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
