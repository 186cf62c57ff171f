package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockCell es la unidad atómica de verdad del inventario: cantidad de un
// producto en una ubicación. Se crea perezosamente en la primera entrada
// de stock y nunca se borra, solo se lleva a cero.
type StockCell struct {
	ProductID  string
	LocationID string
	Quantity   decimal.Decimal // invariante: >= 0, fraccional (ej. gramos)
	UpdatedAt  time.Time
}
