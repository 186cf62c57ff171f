package entity

import "time"

// Estados de un token físico (código QR/etiqueta de una unidad).
// Invariante: Status == in_transit si y solo si CurrentTransferID apunta a un
// traslado no terminal; un token nunca está atado a dos traslados a la vez.
const (
	TokenStatusAvailable = "available"
	TokenStatusInTransit = "in_transit"
	TokenStatusSold      = "sold"
	TokenStatusSplit     = "split"
	TokenStatusConsumed  = "consumed"
)

// PhysicalToken representa una unidad física escaneable. Su ubicación y estado
// son la fuente de verdad de esa unidad: mientras está atado a un traslado, el
// kardex numérico de ese ítem queda suprimido (el token ES el kardex).
type PhysicalToken struct {
	ID                string
	Code              string // único por tienda
	StoreID           string
	ProductID         string // vacío si el token aún no se asoció a un SKU
	CurrentLocationID string
	Status            string
	CurrentTransferID string // vacío salvo in_transit
	TotalScans        int
	LastScannedAt     *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Bindable indica si el token puede atarse a un traslado nuevo.
func (t *PhysicalToken) Bindable() bool {
	return t.Status == TokenStatusAvailable && t.CurrentTransferID == ""
}
