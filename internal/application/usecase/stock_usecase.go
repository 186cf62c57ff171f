package usecase

import (
	"time"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// StockQueryUseCase lecturas del kardex: celda actual y stream de auditoría.
type StockQueryUseCase struct {
	cellRepo     repository.StockCellRepository
	entryRepo    repository.LedgerEntryRepository
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
}

// NewStockQueryUseCase construye el caso de uso de consultas.
func NewStockQueryUseCase(
	cellRepo repository.StockCellRepository,
	entryRepo repository.LedgerEntryRepository,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
) *StockQueryUseCase {
	return &StockQueryUseCase{
		cellRepo:     cellRepo,
		entryRepo:    entryRepo,
		productRepo:  productRepo,
		locationRepo: locationRepo,
	}
}

// GetCell devuelve la cantidad actual de un producto en una ubicación.
// Si la celda nunca se materializó, devuelve cantidad cero (no error).
func (uc *StockQueryUseCase) GetCell(storeID, productID, locationID string) (*entity.StockCell, error) {
	if err := uc.checkOwnership(storeID, productID, locationID); err != nil {
		return nil, err
	}
	return uc.cellRepo.Get(productID, locationID)
}

// ListLedger devuelve el stream de auditoría de una celda ordenado por fecha
// ascendente: sumando los cambios desde cero se reconstruye la cantidad actual.
func (uc *StockQueryUseCase) ListLedger(storeID, productID, locationID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error) {
	if err := uc.checkOwnership(storeID, productID, locationID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return uc.entryRepo.ListByCell(productID, locationID, from, to, limit, offset)
}

func (uc *StockQueryUseCase) checkOwnership(storeID, productID, locationID string) error {
	product, err := uc.productRepo.GetByID(productID)
	if err != nil || product == nil {
		return domain.ErrNotFound
	}
	if product.StoreID != storeID {
		return domain.ErrForbidden
	}
	location, err := uc.locationRepo.GetByID(locationID)
	if err != nil || location == nil {
		return domain.ErrNotFound
	}
	if location.StoreID != storeID {
		return domain.ErrForbidden
	}
	return nil
}
