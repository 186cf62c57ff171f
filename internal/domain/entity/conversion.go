package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConversionRecord registra una conversión de stock padre → variante
// (ej. gramos a granel → unidades empacadas). Inmutable después de creado.
type ConversionRecord struct {
	ID                     string
	StoreID                string
	ProductID              string // SKU padre
	VariantID              string // SKU variante derivado
	LocationID             string
	ParentQuantityConsumed decimal.Decimal // UnitsCreated * Ratio
	VariantUnitsCreated    decimal.Decimal
	ConversionRatio        decimal.Decimal // cantidad de padre por unidad de variante
	PerformedBy            string
	CreatedAt              time.Time
}
