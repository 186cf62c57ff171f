package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de ajuste de inventario.
const (
	AdjustTypeCountCorrection = "count_correction"
	AdjustTypeDamage          = "damage"
	AdjustTypeShrinkage       = "shrinkage"
	AdjustTypeTheft           = "theft"
	AdjustTypeExpired         = "expired"
	AdjustTypeReceived        = "received"
	AdjustTypeReturn          = "return"
	AdjustTypeOther           = "other"
)

// ValidAdjustmentType verifica que el tipo de ajuste sea uno de los conocidos.
func ValidAdjustmentType(t string) bool {
	switch t {
	case AdjustTypeCountCorrection, AdjustTypeDamage, AdjustTypeShrinkage,
		AdjustTypeTheft, AdjustTypeExpired, AdjustTypeReceived,
		AdjustTypeReturn, AdjustTypeOther:
		return true
	}
	return false
}

// Modos de ajuste: delta relativo o valor absoluto final.
// El modo absoluto existe para ganar la carrera entre la lectura del stock en
// la UI y ventas concurrentes: el conteo manda sobre el estado final, no sobre
// un delta calculado con datos viejos.
const (
	AdjustModeRelative = "relative"
	AdjustModeAbsolute = "absolute"
)

// Estados del registro de idempotencia.
const (
	IdempotencyPending   = "pending"
	IdempotencyCompleted = "completed"
	IdempotencyFailed    = "failed"
)

// IdempotencyRecord persiste el resultado de una operación financieramente
// significativa, indexado por la clave que aporta el caller. Su INSERT atómico
// es la única puerta de exclusión mutua entre reintentos concurrentes.
type IdempotencyRecord struct {
	Key       string
	StoreID   string
	Status    string          // pending, completed, failed
	Result    json.RawMessage // payload del resultado cuando Status == completed
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AdjustmentRequest entrada transitoria para AdjustmentEngine; se consume una
// vez y se descarta. La clave de idempotencia sobrevive como IdempotencyRecord.
type AdjustmentRequest struct {
	StoreID        string
	ProductID      string
	LocationID     string
	AdjustmentType string
	Mode           string          // relative | absolute
	Value          decimal.Decimal // delta con signo (relative) o valor final (absolute)
	Reason         string
	Notes          string
	IdempotencyKey string
	PerformedBy    string
}
