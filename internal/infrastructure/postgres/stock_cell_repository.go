package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.StockCellRepository = (*StockCellRepo)(nil)

// StockCellRepo implementación de StockCellRepository sobre PostgreSQL
// (usable con pool o tx).
type StockCellRepo struct {
	q Querier
}

// NewStockCellRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockCellRepository(q Querier) *StockCellRepo {
	return &StockCellRepo{q: q}
}

// Get obtiene la celda; si no se materializó aún, devuelve cantidad cero.
func (r *StockCellRepo) Get(productID, locationID string) (*entity.StockCell, error) {
	query := `
		SELECT product_id, location_id, quantity, updated_at
		FROM stock_cells WHERE product_id = $1 AND location_id = $2`
	return r.scanCell(query, productID, locationID, "get stock cell")
}

// GetForUpdate obtiene la celda bloqueando la fila (SELECT FOR UPDATE).
// La secuencia leer-modificar-escribir de la celda queda serializada frente a
// cualquier otro writer de la misma celda.
func (r *StockCellRepo) GetForUpdate(productID, locationID string) (*entity.StockCell, error) {
	query := `
		SELECT product_id, location_id, quantity, updated_at
		FROM stock_cells WHERE product_id = $1 AND location_id = $2
		FOR UPDATE`
	return r.scanCell(query, productID, locationID, "get stock cell for update")
}

func (r *StockCellRepo) scanCell(query, productID, locationID, op string) (*entity.StockCell, error) {
	var c entity.StockCell
	err := r.q.QueryRow(context.Background(), query, productID, locationID).Scan(
		&c.ProductID, &c.LocationID, &c.Quantity, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockCell{ProductID: productID, LocationID: locationID, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}

// Upsert inserta o actualiza la cantidad de la celda (creación perezosa).
func (r *StockCellRepo) Upsert(cell *entity.StockCell) error {
	query := `
		INSERT INTO stock_cells (product_id, location_id, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (product_id, location_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query, cell.ProductID, cell.LocationID, cell.Quantity)
	if err != nil {
		return fmt.Errorf("upsert stock cell: %w", err)
	}
	return nil
}

// ListByLocation lista celdas de una ubicación con paginación.
func (r *StockCellRepo) ListByLocation(locationID string, limit, offset int) ([]*entity.StockCell, error) {
	query := `
		SELECT product_id, location_id, quantity, updated_at
		FROM stock_cells WHERE location_id = $1
		ORDER BY product_id LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, locationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock cells: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockCell
	for rows.Next() {
		var c entity.StockCell
		if err := rows.Scan(&c.ProductID, &c.LocationID, &c.Quantity, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock cell: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// SumByProduct suma la cantidad del producto en todas sus ubicaciones.
func (r *StockCellRepo) SumByProduct(productID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM stock_cells WHERE product_id = $1`
	var total decimal.Decimal
	if err := r.q.QueryRow(context.Background(), query, productID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum stock by product: %w", err)
	}
	return total, nil
}
