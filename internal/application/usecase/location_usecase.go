package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// LocationUseCase gestión de ubicaciones (catálogo para los read models).
type LocationUseCase struct {
	locationRepo repository.LocationRepository
}

// NewLocationUseCase construye el caso de uso.
func NewLocationUseCase(locationRepo repository.LocationRepository) *LocationUseCase {
	return &LocationUseCase{locationRepo: locationRepo}
}

// Create registra una ubicación nueva de la tienda.
func (uc *LocationUseCase) Create(storeID, name, address string) (*entity.Location, error) {
	if storeID == "" || name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	location := &entity.Location{
		ID:        uuid.New().String(),
		StoreID:   storeID,
		Name:      name,
		Address:   address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.locationRepo.Create(location); err != nil {
		return nil, err
	}
	return location, nil
}

// GetByID devuelve la ubicación si pertenece a la tienda.
func (uc *LocationUseCase) GetByID(storeID, id string) (*entity.Location, error) {
	location, err := uc.locationRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, domain.ErrNotFound
	}
	if location.StoreID != storeID {
		return nil, domain.ErrForbidden
	}
	return location, nil
}

// List lista ubicaciones de la tienda con paginación.
func (uc *LocationUseCase) List(storeID string, limit, offset int) ([]*entity.Location, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.locationRepo.ListByStore(storeID, limit, offset)
}
