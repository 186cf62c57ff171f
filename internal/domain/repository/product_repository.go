package repository

import "github.com/jhoicas/Kardex-api/internal/domain/entity"

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetBySKU(storeID, sku string) (*entity.Product, error)
	Update(product *entity.Product) error
	ListByStore(storeID string, limit, offset int) ([]*entity.Product, error)
	ListVariants(parentID string) ([]*entity.Product, error)
}
