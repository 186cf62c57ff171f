package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockCellResponse cantidad actual de un producto en una ubicación.
type StockCellResponse struct {
	ProductID  string          `json:"product_id"`
	LocationID string          `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// LedgerEntryResponse fila del stream de auditoría del kardex.
type LedgerEntryResponse struct {
	ID              string          `json:"id"`
	LocationID      string          `json:"location_id"`
	ProductID       string          `json:"product_id"`
	TransactionType string          `json:"transaction_type"`
	QuantityBefore  decimal.Decimal `json:"quantity_before"`
	QuantityChange  decimal.Decimal `json:"quantity_change"`
	QuantityAfter   decimal.Decimal `json:"quantity_after"`
	Reason          string          `json:"reason,omitempty"`
	ReferenceType   string          `json:"reference_type,omitempty"`
	ReferenceID     string          `json:"reference_id,omitempty"`
	PerformedBy     string          `json:"performed_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}
