package dto

import "github.com/shopspring/decimal"

// ConversionRequest body para POST /api/conversions.
type ConversionRequest struct {
	ProductID       string          `json:"product_id"` // SKU padre
	VariantID       string          `json:"variant_id"`
	LocationID      string          `json:"location_id"`
	UnitsToCreate   decimal.Decimal `json:"units_to_create"`
	ConversionRatio decimal.Decimal `json:"conversion_ratio"`
}

// ConversionResponse resultado de la conversión.
type ConversionResponse struct {
	ConversionID           string          `json:"conversion_id"`
	ParentQuantityConsumed decimal.Decimal `json:"parent_quantity_consumed"`
	VariantUnitsCreated    decimal.Decimal `json:"variant_units_created"`
	ParentRemaining        decimal.Decimal `json:"parent_remaining"`
	VariantTotal           decimal.Decimal `json:"variant_total"`
}
