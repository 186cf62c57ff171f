package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo persistencia de productos sobre PostgreSQL.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador.
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, store_id, sku, name, description, unit_measure,
		COALESCE(parent_id::text, ''), conversion_ratio, created_at, updated_at`

// Create inserta un producto.
func (r *ProductRepo) Create(p *entity.Product) error {
	query := `
		INSERT INTO products
			(id, store_id, sku, name, description, unit_measure, parent_id, conversion_ratio, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::uuid, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		p.ID, p.StoreID, p.SKU, p.Name, p.Description, p.UnitMeasure,
		p.ParentID, p.ConversionRatio, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.getOne(query, "get product", id)
}

// GetBySKU obtiene un producto por SKU dentro de la tienda.
func (r *ProductRepo) GetBySKU(storeID, sku string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE store_id = $1 AND sku = $2`
	return r.getOne(query, "get product by sku", storeID, sku)
}

func (r *ProductRepo) getOne(query, op string, args ...any) (*entity.Product, error) {
	row := r.q.QueryRow(context.Background(), query, args...)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// Update actualiza los campos editables del producto.
func (r *ProductRepo) Update(p *entity.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, unit_measure = $4,
			parent_id = NULLIF($5, '')::uuid, conversion_ratio = $6, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		p.ID, p.Name, p.Description, p.UnitMeasure, p.ParentID, p.ConversionRatio)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// ListByStore lista los productos de una tienda.
func (r *ProductRepo) ListByStore(storeID string, limit, offset int) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products WHERE store_id = $1
		ORDER BY sku LIMIT $2 OFFSET $3`
	return r.list(query, storeID, limit, offset)
}

// ListVariants lista los SKUs variante que derivan de un padre.
func (r *ProductRepo) ListVariants(parentID string) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE parent_id = $1 ORDER BY sku`
	return r.list(query, parentID)
}

func (r *ProductRepo) list(query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.StoreID, &p.SKU, &p.Name, &p.Description, &p.UnitMeasure,
		&p.ParentID, &p.ConversionRatio, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
