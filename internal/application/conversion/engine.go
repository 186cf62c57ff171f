// Package conversion implementa la conversión de stock padre → variante a un
// ratio fijo (ej. gramos a granel → bolsas empacadas), atómica y sin sobregiro.
package conversion

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
	"github.com/jhoicas/Kardex-api/pkg/logger"
	"github.com/jhoicas/Kardex-api/pkg/metrics"
)

// TxRunner transacción con los repositorios de la conversión.
type TxRunner interface {
	RunConversion(ctx context.Context, fn func(
		cellRepo repository.StockCellRepository,
		entryRepo repository.LedgerEntryRepository,
		convRepo repository.ConversionRecordRepository,
	) error) error
}

// Input entrada de una conversión.
type Input struct {
	StoreID         string
	ProductID       string // SKU padre
	VariantID       string // SKU variante
	LocationID      string
	UnitsToCreate   decimal.Decimal
	ConversionRatio decimal.Decimal // cantidad de padre por unidad de variante
	PerformedBy     string
}

// Result resultado de la conversión.
type Result struct {
	ConversionID           string
	ParentQuantityConsumed decimal.Decimal
	VariantUnitsCreated    decimal.Decimal
	ParentRemaining        decimal.Decimal
	VariantTotal           decimal.Decimal
}

// Engine ejecuta conversiones contra el kardex.
type Engine struct {
	txRunner    TxRunner
	store       *ledger.Store
	productRepo repository.ProductRepository
	log         *logger.Logger
}

// NewEngine construye el motor de conversiones.
func NewEngine(txRunner TxRunner, store *ledger.Store, productRepo repository.ProductRepository, log *logger.Logger) *Engine {
	return &Engine{txRunner: txRunner, store: store, productRepo: productRepo, log: log}
}

// Convert decrementa el padre en UnitsToCreate*Ratio e incrementa (o crea) la
// celda de la variante en UnitsToCreate, en una sola transacción, con dos
// entradas de kardex (conversion_out/conversion_in) enlazadas por el mismo
// ReferenceID más un ConversionRecord inmutable. La suficiencia se verifica
// contra la celda bloqueada, nunca contra un valor cacheado por el caller.
func (e *Engine) Convert(ctx context.Context, in Input) (*Result, error) {
	if err := e.validate(in); err != nil {
		return nil, err
	}

	required := in.UnitsToCreate.Mul(in.ConversionRatio)
	conversionID := uuid.New().String()
	now := time.Now()
	result := &Result{
		ConversionID:           conversionID,
		ParentQuantityConsumed: required,
		VariantUnitsCreated:    in.UnitsToCreate,
	}

	err := e.txRunner.RunConversion(ctx, func(
		cellRepo repository.StockCellRepository,
		entryRepo repository.LedgerEntryRepository,
		convRepo repository.ConversionRecordRepository,
	) error {
		// Bloquea la celda del padre y verifica contra el valor autoritativo.
		parentCell, err := cellRepo.GetForUpdate(in.ProductID, in.LocationID)
		if err != nil {
			return err
		}
		if parentCell.Quantity.LessThan(required) {
			metrics.RejectionsTotal.WithLabelValues("insufficient_stock").Inc()
			return &domain.InsufficientStockError{Required: required, Available: parentCell.Quantity}
		}

		meta := ledger.Metadata{
			StoreID:       in.StoreID,
			Reason:        "conversión padre → variante",
			ReferenceType: entity.RefTypeConversion,
			ReferenceID:   conversionID,
			PerformedBy:   in.PerformedBy,
		}
		outMeta := meta
		outMeta.TransactionType = entity.TxTypeConversionOut
		outEntry, err := e.store.ApplyDeltaIn(cellRepo, entryRepo,
			in.ProductID, in.LocationID, required.Neg(), outMeta, now)
		if err != nil {
			return err
		}
		inMeta := meta
		inMeta.TransactionType = entity.TxTypeConversionIn
		inEntry, err := e.store.ApplyDeltaIn(cellRepo, entryRepo,
			in.VariantID, in.LocationID, in.UnitsToCreate, inMeta, now)
		if err != nil {
			return err
		}
		result.ParentRemaining = outEntry.QuantityAfter
		result.VariantTotal = inEntry.QuantityAfter

		return convRepo.Create(&entity.ConversionRecord{
			ID:                     conversionID,
			StoreID:                in.StoreID,
			ProductID:              in.ProductID,
			VariantID:              in.VariantID,
			LocationID:             in.LocationID,
			ParentQuantityConsumed: required,
			VariantUnitsCreated:    in.UnitsToCreate,
			ConversionRatio:        in.ConversionRatio,
			PerformedBy:            in.PerformedBy,
			CreatedAt:              now,
		})
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Str("conversion_id", conversionID).
		Str("product_id", in.ProductID).
		Str("variant_id", in.VariantID).
		Str("consumed", required.String()).
		Str("created", in.UnitsToCreate.String()).
		Msg("conversión aplicada")
	return result, nil
}

func (e *Engine) validate(in Input) error {
	if in.ProductID == "" || in.VariantID == "" || in.LocationID == "" || in.ProductID == in.VariantID {
		return domain.ErrInvalidInput
	}
	if !in.ConversionRatio.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidConversionRatio
	}
	if !in.UnitsToCreate.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidQuantity
	}

	parent, err := e.productRepo.GetByID(in.ProductID)
	if err != nil || parent == nil {
		return domain.ErrNotFound
	}
	if parent.StoreID != in.StoreID {
		return domain.ErrForbidden
	}
	variant, err := e.productRepo.GetByID(in.VariantID)
	if err != nil || variant == nil {
		return domain.ErrNotFound
	}
	if variant.StoreID != in.StoreID {
		return domain.ErrForbidden
	}
	// La variante debe derivar del padre que se consume.
	if variant.ParentID != "" && variant.ParentID != in.ProductID {
		return domain.ErrInvalidInput
	}
	return nil
}
