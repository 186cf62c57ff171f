package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del traslado. El ciclo es draft → in_transit → completed, con
// in_transit → cancelled como única otra transición; completed y cancelled
// son terminales. En la operación normal los traslados nacen in_transit
// (se crean ya despachados); draft existe para sistemas que los preparan antes.
const (
	TransferStatusDraft     = "draft"
	TransferStatusInTransit = "in_transit"
	TransferStatusCompleted = "completed"
	TransferStatusCancelled = "cancelled"
)

// CanTransition indica si el traslado admite pasar de from a to.
func CanTransition(from, to string) bool {
	switch from {
	case TransferStatusDraft:
		return to == TransferStatusInTransit
	case TransferStatusInTransit:
		return to == TransferStatusCompleted || to == TransferStatusCancelled
	}
	return false // completed y cancelled no regresan
}

// Condiciones opcionales del ítem al recibirse.
const (
	ItemConditionGood    = "good"
	ItemConditionDamaged = "damaged"
	ItemConditionMissing = "missing"
)

// Transfer agrupa el movimiento de uno o más productos entre dos ubicaciones.
// El stock NO se mueve al crear el traslado: la custodia física y el kardex
// se reconcilian al recibir, no al despachar.
type Transfer struct {
	ID                    string
	Number                string // legible: TR-20260901-0001
	StoreID               string
	SourceLocationID      string
	DestinationLocationID string
	Status                string
	Notes                 string
	TrackingNumber        string
	CreatedByUserID       string
	ReceivedByUserID      string
	CancelledByUserID     string
	ShippedAt             time.Time
	ReceivedAt            *time.Time
	CancelledAt           *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time

	Items []TransferItem
}

// Formas de seguimiento de un ítem de traslado. El caso token-bound es una
// variante explícita, no un chequeo de null: cuando el ítem va atado a un
// token físico, la ubicación/estado del token ES el inventario de esa unidad
// y el kardex numérico no se toca al recibir.
const (
	TrackingLedger = "ledger"
	TrackingToken  = "token"
)

// TransferItem es una línea del traslado.
type TransferItem struct {
	ID               string
	TransferID       string
	ProductID        string
	Quantity         decimal.Decimal
	ReceivedQuantity decimal.Decimal
	Condition        string // good, damaged, missing; vacío si no se reportó
	BoundTokenID     string // vacío => seguimiento por kardex
}

// Tracking devuelve la variante de seguimiento del ítem.
func (i TransferItem) Tracking() string {
	if i.BoundTokenID != "" {
		return TrackingToken
	}
	return TrackingLedger
}

// IsTerminal indica si el estado del traslado ya no admite transiciones.
func (t *Transfer) IsTerminal() bool {
	return t.Status == TransferStatusCompleted || t.Status == TransferStatusCancelled
}
