package usecase

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// ProductUseCase gestión de productos y sus SKUs variantes.
type ProductUseCase struct {
	productRepo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(productRepo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{productRepo: productRepo}
}

// Create registra un producto. Si ParentID viene, valida que el padre exista,
// sea de la tienda y que el ratio de conversión sea positivo.
func (uc *ProductUseCase) Create(storeID string, in dto.CreateProductRequest) (*entity.Product, error) {
	if storeID == "" || in.SKU == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	switch _, err := uc.productRepo.GetBySKU(storeID, in.SKU); {
	case err == nil:
		return nil, domain.ErrDuplicate
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}
	if in.ParentID != "" {
		parent, err := uc.productRepo.GetByID(in.ParentID)
		if err != nil || parent == nil {
			return nil, domain.ErrNotFound
		}
		if parent.StoreID != storeID {
			return nil, domain.ErrForbidden
		}
		if in.ConversionRatio == nil || !in.ConversionRatio.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidConversionRatio
		}
	}

	now := time.Now()
	product := &entity.Product{
		ID:              uuid.New().String(),
		StoreID:         storeID,
		SKU:             in.SKU,
		Name:            in.Name,
		Description:     in.Description,
		UnitMeasure:     in.UnitMeasure,
		ParentID:        in.ParentID,
		ConversionRatio: in.ConversionRatio,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.productRepo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetByID devuelve el producto si pertenece a la tienda.
func (uc *ProductUseCase) GetByID(storeID, id string) (*entity.Product, error) {
	product, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.StoreID != storeID {
		return nil, domain.ErrForbidden
	}
	return product, nil
}

// List lista productos de la tienda con paginación.
func (uc *ProductUseCase) List(storeID string, limit, offset int) ([]*entity.Product, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.productRepo.ListByStore(storeID, limit, offset)
}

// ListVariants lista los SKUs derivados de un producto padre.
func (uc *ProductUseCase) ListVariants(storeID, parentID string) ([]*entity.Product, error) {
	if _, err := uc.GetByID(storeID, parentID); err != nil {
		return nil, err
	}
	return uc.productRepo.ListVariants(parentID)
}
