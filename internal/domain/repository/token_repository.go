package repository

import "github.com/jhoicas/Kardex-api/internal/domain/entity"

// TokenRepository define el puerto de persistencia para tokens físicos (QR).
type TokenRepository interface {
	Create(token *entity.PhysicalToken) error
	GetByID(id string) (*entity.PhysicalToken, error)
	// GetByCode busca por código exacto dentro de la tienda.
	GetByCode(storeID, code string) (*entity.PhysicalToken, error)
	// GetByCodeNormalized busca ignorando mayúsculas y espacios, como fallback
	// cuando el match exacto falla (lectores QR ruidosos).
	GetByCodeNormalized(storeID, normalizedCode string) (*entity.PhysicalToken, error)
	// GetForUpdate bloquea la fila del token (SELECT FOR UPDATE).
	GetForUpdate(id string) (*entity.PhysicalToken, error)
	Update(token *entity.PhysicalToken) error
	RecordScan(id string) error
	ListByTransfer(transferID string) ([]*entity.PhysicalToken, error)
}
