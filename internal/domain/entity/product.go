package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU de la tienda. Un SKU variante apunta a
// su padre vía ParentID (ej. "bolsa 3.5g" deriva de "flor a granel") y declara
// el ratio por defecto de conversión padre → variante.
type Product struct {
	ID              string
	StoreID         string
	SKU             string // único por tienda
	Name            string
	Description     string
	UnitMeasure     string           // g, unidad, ml
	ParentID        string           // vacío si no es variante
	ConversionRatio *decimal.Decimal // cantidad de padre consumida por unidad; nil si no es variante
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsVariant indica si el producto deriva de un SKU padre.
func (p *Product) IsVariant() bool { return p.ParentID != "" }
