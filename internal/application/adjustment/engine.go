// Package adjustment implementa los ajustes de cantidad sobre una celda de
// stock con deduplicación por clave de idempotencia: reintentar la misma
// petición cualquier número de veces aplica el cambio exactamente una vez y
// devuelve el mismo resultado.
package adjustment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
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

// Result resultado de un ajuste. Se persiste como payload del registro de
// idempotencia para poder responder reintentos sin reaplicar nada.
type Result struct {
	AdjustmentID   string          `json:"adjustment_id"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
	CellTotal      decimal.Decimal `json:"cell_total"` // total del producto sumando todas las ubicaciones
	Replayed       bool            `json:"-"`          // true si vino del registro de idempotencia
}

// pendingTakeoverTTL tiempo sin actividad tras el cual una clave pending se
// considera huérfana y un reintento puede retomarla.
const pendingTakeoverTTL = 5 * time.Minute

// Engine aplica AdjustmentRequest contra el kardex.
type Engine struct {
	store        *ledger.Store
	idemRepo     repository.IdempotencyRepository
	cellRepo     repository.StockCellRepository
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	log          *logger.Logger
}

// NewEngine construye el motor de ajustes.
func NewEngine(
	store *ledger.Store,
	idemRepo repository.IdempotencyRepository,
	cellRepo repository.StockCellRepository,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	log *logger.Logger,
) *Engine {
	return &Engine{
		store:        store,
		idemRepo:     idemRepo,
		cellRepo:     cellRepo,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		log:          log,
	}
}

// Adjust valida la petición, pasa por la puerta de idempotencia y aplica el
// cambio vía kardex. Modo relative usa el delta tal cual lo aporta el caller;
// modo absolute fija el estado final (el conteo manda, no un delta calculado
// contra una lectura vieja).
func (e *Engine) Adjust(ctx context.Context, req entity.AdjustmentRequest) (*Result, error) {
	if err := e.validate(req); err != nil {
		return nil, err
	}

	// Puerta de idempotencia: el INSERT atómico decide quién aplica.
	replay, err := e.claimKey(req)
	if err != nil {
		return nil, err
	}
	if replay != nil {
		metrics.IdempotentReplaysTotal.Inc()
		return replay, nil
	}

	result, err := e.apply(ctx, req)
	if err != nil {
		if markErr := e.idemRepo.MarkFailed(req.IdempotencyKey); markErr != nil {
			e.log.Error().Err(markErr).Str("key", req.IdempotencyKey).Msg("marcar idempotencia failed")
		}
		return nil, err
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("serializar resultado de ajuste: %w", err)
	}
	if err := e.idemRepo.MarkCompleted(req.IdempotencyKey, payload); err != nil {
		// El ajuste ya se aplicó; perder la marca solo degrada futuros replays.
		e.log.Error().Err(err).Str("key", req.IdempotencyKey).Msg("marcar idempotencia completed")
	}
	return result, nil
}

func (e *Engine) validate(req entity.AdjustmentRequest) error {
	if req.IdempotencyKey == "" || req.ProductID == "" || req.LocationID == "" {
		return domain.ErrInvalidInput
	}
	if !entity.ValidAdjustmentType(req.AdjustmentType) {
		return domain.ErrInvalidInput
	}
	switch req.Mode {
	case entity.AdjustModeRelative:
		if req.Value.IsZero() {
			return domain.ErrInvalidQuantity
		}
	case entity.AdjustModeAbsolute:
		if req.Value.IsNegative() {
			return domain.ErrInvalidQuantity
		}
	default:
		return domain.ErrInvalidInput
	}

	product, err := e.productRepo.GetByID(req.ProductID)
	if err != nil || product == nil {
		return domain.ErrNotFound
	}
	if product.StoreID != req.StoreID {
		return domain.ErrForbidden
	}
	location, err := e.locationRepo.GetByID(req.LocationID)
	if err != nil || location == nil {
		return domain.ErrNotFound
	}
	if location.StoreID != req.StoreID {
		return domain.ErrForbidden
	}
	return nil
}

// claimKey intenta reclamar la clave de idempotencia. Devuelve el resultado
// almacenado si la petición ya se completó, nil si este caller debe aplicar.
func (e *Engine) claimKey(req entity.AdjustmentRequest) (*Result, error) {
	now := time.Now()
	inserted, err := e.idemRepo.InsertPending(&entity.IdempotencyRecord{
		Key:       req.IdempotencyKey,
		StoreID:   req.StoreID,
		Status:    entity.IdempotencyPending,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	if inserted {
		return nil, nil
	}

	existing, err := e.idemRepo.Get(req.IdempotencyKey)
	if errors.Is(err, domain.ErrNotFound) {
		// Carrera rarísima: el registro desapareció entre el INSERT y el SELECT.
		return nil, domain.ErrRequestInFlight
	}
	if err != nil {
		return nil, err
	}
	switch existing.Status {
	case entity.IdempotencyCompleted:
		var stored Result
		if err := json.Unmarshal(existing.Result, &stored); err != nil {
			return nil, fmt.Errorf("leer resultado almacenado: %w", err)
		}
		stored.Replayed = true
		return &stored, nil
	case entity.IdempotencyFailed:
		// Los fallos no bloquean reintentos: tomamos el registro si nadie más lo hizo.
		taken, err := e.idemRepo.TakeOverFailed(req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if !taken {
			return nil, domain.ErrRequestInFlight
		}
		return nil, nil
	default:
		// pending con dueño vivo bloquea al concurrente. Pero un crash entre
		// aplicar y MarkCompleted dejaría la clave en pending para siempre:
		// pasado el TTL se asume al dueño muerto y el reintento la retoma.
		taken, err := e.idemRepo.TakeOverStale(req.IdempotencyKey, pendingTakeoverTTL)
		if err != nil {
			return nil, err
		}
		if !taken {
			return nil, domain.ErrRequestInFlight
		}
		return nil, nil
	}
}

func (e *Engine) apply(ctx context.Context, req entity.AdjustmentRequest) (*Result, error) {
	adjustmentID := uuid.New().String()
	meta := ledger.Metadata{
		StoreID:         req.StoreID,
		TransactionType: entity.TxTypeAdjustment,
		Reason:          reasonOrType(req),
		ReferenceType:   entity.RefTypeAdjustment,
		ReferenceID:     adjustmentID,
		PerformedBy:     req.PerformedBy,
	}

	var entry *entity.LedgerEntry
	var err error
	switch req.Mode {
	case entity.AdjustModeRelative:
		entry, err = e.store.ApplyDelta(ctx, req.ProductID, req.LocationID, req.Value, meta)
	case entity.AdjustModeAbsolute:
		entry, err = e.store.SetAbsolute(ctx, req.ProductID, req.LocationID, req.Value, meta)
	}
	if err != nil {
		return nil, err
	}

	total, err := e.cellRepo.SumByProduct(req.ProductID)
	if err != nil {
		return nil, err
	}
	e.log.Info().
		Str("adjustment_id", adjustmentID).
		Str("product_id", req.ProductID).
		Str("location_id", req.LocationID).
		Str("mode", req.Mode).
		Str("before", entry.QuantityBefore.String()).
		Str("after", entry.QuantityAfter.String()).
		Msg("ajuste aplicado")

	return &Result{
		AdjustmentID:   adjustmentID,
		QuantityBefore: entry.QuantityBefore,
		QuantityAfter:  entry.QuantityAfter,
		CellTotal:      total,
	}, nil
}

func reasonOrType(req entity.AdjustmentRequest) string {
	if req.Reason != "" {
		return req.Reason
	}
	return req.AdjustmentType
}
