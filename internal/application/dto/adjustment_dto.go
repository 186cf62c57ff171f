package dto

import "github.com/shopspring/decimal"

// AdjustmentRequest body para POST /api/adjustments.
// La clave de idempotencia puede venir en el body o en el header
// Idempotency-Key (el header gana si ambos están presentes).
type AdjustmentRequest struct {
	ProductID      string          `json:"product_id"`
	LocationID     string          `json:"location_id"`
	AdjustmentType string          `json:"adjustment_type"` // count_correction, damage, shrinkage, theft, expired, received, return, other
	Mode           string          `json:"mode"`            // relative | absolute
	Value          decimal.Decimal `json:"value"`
	Reason         string          `json:"reason,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
}

// AdjustmentResponse resultado del ajuste.
type AdjustmentResponse struct {
	AdjustmentID   string          `json:"adjustment_id"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
	CellTotal      decimal.Decimal `json:"cell_total"`
	Replayed       bool            `json:"replayed"` // true si se respondió desde idempotencia
}
