package entity

import "time"

// Location representa una ubicación física de inventario dentro de una tienda
// (piso de venta, bodega trasera, vitrina). El kardex solo necesita su ID;
// el nombre existe para los read models de la UI.
type Location struct {
	ID        string
	StoreID   string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
