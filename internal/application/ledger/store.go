package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
	"github.com/jhoicas/Kardex-api/pkg/metrics"
)

// Policy opciones de negocio del kardex.
type Policy struct {
	// AllowNegativeOnSale permite que una venta deje la celda en negativo
	// (decisión del caller documentada como flag; por defecto false).
	AllowNegativeOnSale bool
}

// Metadata acompaña cada escritura del kardex y queda en la entrada.
type Metadata struct {
	StoreID         string
	TransactionType string // entity.TxType*
	Reason          string
	ReferenceType   string
	ReferenceID     string
	PerformedBy     string
}

// Store es el punto único de durabilidad y verdad de auditoría: toda mutación
// de cantidades pasa por aquí. Cada operación lee la celda con bloqueo de fila,
// calcula la nueva cantidad y escribe celda + entrada de kardex en la misma
// transacción, o falla completa (sin aplicación parcial).
type Store struct {
	txRunner TxRunner
	policy   Policy
}

// NewStore construye el kardex con su runner transaccional.
func NewStore(txRunner TxRunner, policy Policy) *Store {
	return &Store{txRunner: txRunner, policy: policy}
}

// ApplyDelta aplica un cambio relativo con signo sobre una celda, en su propia
// transacción. Rechaza con InsufficientStockError si el resultado quedaría
// negativo, salvo contexto de venta con AllowNegativeOnSale activo.
func (s *Store) ApplyDelta(ctx context.Context, productID, locationID string, change decimal.Decimal, meta Metadata) (*entity.LedgerEntry, error) {
	var entry *entity.LedgerEntry
	err := s.txRunner.Run(ctx, func(
		cellRepo repository.StockCellRepository,
		entryRepo repository.LedgerEntryRepository,
	) error {
		var err error
		entry, err = s.ApplyDeltaIn(cellRepo, entryRepo, productID, locationID, change, meta, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// SetAbsolute fija la cantidad final de la celda, en su propia transacción.
// No hay chequeo de negatividad más allá de rechazar un target negativo:
// el conteo físico manda sobre el estado final.
func (s *Store) SetAbsolute(ctx context.Context, productID, locationID string, target decimal.Decimal, meta Metadata) (*entity.LedgerEntry, error) {
	var entry *entity.LedgerEntry
	err := s.txRunner.Run(ctx, func(
		cellRepo repository.StockCellRepository,
		entryRepo repository.LedgerEntryRepository,
	) error {
		var err error
		entry, err = s.SetAbsoluteIn(cellRepo, entryRepo, productID, locationID, target, meta, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ApplyDeltaIn aplica el delta usando repositorios del caller (misma transacción
// del caller). Lo usan la recepción de traslados y la conversión para reutilizar
// la lógica del kardex dentro de su propia unidad atómica.
func (s *Store) ApplyDeltaIn(
	cellRepo repository.StockCellRepository,
	entryRepo repository.LedgerEntryRepository,
	productID, locationID string,
	change decimal.Decimal,
	meta Metadata,
	now time.Time,
) (*entity.LedgerEntry, error) {
	// Bloquea la fila de la celda (SELECT FOR UPDATE); si no existe, el repo
	// devuelve una celda en cero que se materializa en el Upsert.
	cell, err := cellRepo.GetForUpdate(productID, locationID)
	if err != nil {
		return nil, err
	}
	before := cell.Quantity
	after := before.Add(change)
	if after.IsNegative() && !s.negativeAllowed(meta) {
		metrics.RejectionsTotal.WithLabelValues("insufficient_stock").Inc()
		return nil, &domain.InsufficientStockError{Required: change.Neg(), Available: before}
	}

	cell.Quantity = after
	cell.UpdatedAt = now
	if err := cellRepo.Upsert(cell); err != nil {
		return nil, err
	}
	entry := s.newEntry(productID, locationID, before, change, after, meta, now)
	if err := entryRepo.Append(entry); err != nil {
		return nil, err
	}
	metrics.LedgerEntriesTotal.WithLabelValues(meta.TransactionType).Inc()
	return entry, nil
}

// SetAbsoluteIn fija la cantidad final usando repositorios del caller.
func (s *Store) SetAbsoluteIn(
	cellRepo repository.StockCellRepository,
	entryRepo repository.LedgerEntryRepository,
	productID, locationID string,
	target decimal.Decimal,
	meta Metadata,
	now time.Time,
) (*entity.LedgerEntry, error) {
	if target.IsNegative() {
		metrics.RejectionsTotal.WithLabelValues("invalid_quantity").Inc()
		return nil, domain.ErrInvalidQuantity
	}
	cell, err := cellRepo.GetForUpdate(productID, locationID)
	if err != nil {
		return nil, err
	}
	before := cell.Quantity
	change := target.Sub(before)

	cell.Quantity = target
	cell.UpdatedAt = now
	if err := cellRepo.Upsert(cell); err != nil {
		return nil, err
	}
	entry := s.newEntry(productID, locationID, before, change, target, meta, now)
	if err := entryRepo.Append(entry); err != nil {
		return nil, err
	}
	metrics.LedgerEntriesTotal.WithLabelValues(meta.TransactionType).Inc()
	return entry, nil
}

func (s *Store) negativeAllowed(meta Metadata) bool {
	return meta.TransactionType == entity.TxTypeSale && s.policy.AllowNegativeOnSale
}

func (s *Store) newEntry(productID, locationID string, before, change, after decimal.Decimal, meta Metadata, now time.Time) *entity.LedgerEntry {
	return &entity.LedgerEntry{
		ID:              uuid.New().String(),
		StoreID:         meta.StoreID,
		LocationID:      locationID,
		ProductID:       productID,
		TransactionType: meta.TransactionType,
		QuantityBefore:  before,
		QuantityChange:  change,
		QuantityAfter:   after,
		Reason:          meta.Reason,
		ReferenceType:   meta.ReferenceType,
		ReferenceID:     meta.ReferenceID,
		PerformedBy:     meta.PerformedBy,
		CreatedAt:       now,
	}
}
