package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrUserNotFound           = errors.New("usuario no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrInvalidQuantity        = errors.New("cantidad inválida")
	ErrInvalidConversionRatio = errors.New("ratio de conversión inválido")
	ErrDuplicate              = errors.New("recurso duplicado")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrForbidden              = errors.New("acceso denegado")
	ErrConflict               = errors.New("conflicto con el estado actual")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrAlreadyReceived        = errors.New("el traslado ya fue recibido")
	ErrRequestInFlight        = errors.New("petición en curso con la misma clave de idempotencia")
	ErrTokenAlreadyBound      = errors.New("el token ya está vinculado a un traslado activo")
)

// InsufficientStockError detalla cuánto se pidió y cuánto había, para que la UI
// muestre un mensaje accionable sin volver a consultar. Envuelve ErrInsufficientStock.
type InsufficientStockError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: requerido %s, disponible %s", e.Required, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// InvalidTransferStateError indica una transición inválida en el ciclo de vida del traslado.
type InvalidTransferStateError struct {
	Current   string // estado actual del traslado
	Attempted string // operación intentada: receive, cancel
}

func (e *InvalidTransferStateError) Error() string {
	return fmt.Sprintf("traslado en estado %q: no se puede aplicar %q", e.Current, e.Attempted)
}

// Unwrap mapea el caso más común (recibir dos veces) a ErrAlreadyReceived.
func (e *InvalidTransferStateError) Unwrap() error {
	if e.Attempted == "receive" && e.Current == "completed" {
		return ErrAlreadyReceived
	}
	return ErrConflict
}
