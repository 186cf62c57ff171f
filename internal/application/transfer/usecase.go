// Package transfer implementa la máquina de estados de traslados entre
// ubicaciones: creación (ya despachado, sin tocar stock), recepción (ahí se
// mueve el kardex, o el token físico cuando el ítem va atado a uno) y
// cancelación. completed y cancelled son terminales.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/internal/application/tokens"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
	"github.com/jhoicas/Kardex-api/pkg/logger"
	"github.com/jhoicas/Kardex-api/pkg/metrics"
)

// CreateItemInput línea del traslado a crear. TokenCode vacío => seguimiento
// por kardex; con código => el ítem queda atado a ese token físico.
type CreateItemInput struct {
	ProductID string
	Quantity  decimal.Decimal
	TokenCode string
}

// CreateInput entrada para crear un traslado.
type CreateInput struct {
	StoreID               string
	SourceLocationID      string
	DestinationLocationID string
	Notes                 string
	TrackingNumber        string
	CreatedBy             string
	Items                 []CreateItemInput
}

// ReceiveInput entrada para recibir un traslado.
type ReceiveInput struct {
	TransferID            string
	DestinationLocationID string
	ReceivedBy            string
	// Conditions condición opcional por ítem (ID de ítem -> good/damaged/missing).
	Conditions map[string]string
}

// ReceivedItem detalle por ítem del resultado de recepción.
type ReceivedItem struct {
	ItemID    string
	ProductID string
	Tracking  string // ledger | token
	Requested decimal.Decimal
	Received  decimal.Decimal
	// Shortfall cantidad que no pudo deducirse en origen (deducción recortada a
	// cero en vez de fallar: la mercancía física puede ya no estar). Se reporta
	// como advertencia porque sub-registra merma.
	Shortfall decimal.Decimal
}

// ReceiveResult resultado de la recepción completa.
type ReceiveResult struct {
	TransferID string
	Number     string
	Items      []ReceivedItem
	Warnings   []string
}

// UseCase orquesta el ciclo de vida del traslado.
type UseCase struct {
	txRunner     TxRunner
	store        *ledger.Store
	transferRepo repository.TransferRepository
	tokenRepo    repository.TokenRepository
	locationRepo repository.LocationRepository
	productRepo  repository.ProductRepository
	log          *logger.Logger
}

// NewUseCase construye el caso de uso de traslados.
func NewUseCase(
	txRunner TxRunner,
	store *ledger.Store,
	transferRepo repository.TransferRepository,
	tokenRepo repository.TokenRepository,
	locationRepo repository.LocationRepository,
	productRepo repository.ProductRepository,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:     txRunner,
		store:        store,
		transferRepo: transferRepo,
		tokenRepo:    tokenRepo,
		locationRepo: locationRepo,
		productRepo:  productRepo,
		log:          log,
	}
}

// maxNumberAttempts reintentos de numeración ante carreras por el consecutivo.
const maxNumberAttempts = 3

// Create persiste la cabecera en in_transit y sus ítems. NO muta ninguna celda
// de stock: la custodia física y el kardex se reconcilian al recibir. Los
// tokens referenciados quedan en in_transit atados al traslado, dentro de la
// misma transacción (un token nunca queda atado a dos traslados a la vez).
func (uc *UseCase) Create(ctx context.Context, in CreateInput) (*entity.Transfer, error) {
	if err := uc.validateCreate(in); err != nil {
		return nil, err
	}

	now := time.Now()
	t := &entity.Transfer{
		ID:                    uuid.New().String(),
		StoreID:               in.StoreID,
		SourceLocationID:      in.SourceLocationID,
		DestinationLocationID: in.DestinationLocationID,
		Status:                entity.TransferStatusInTransit,
		Notes:                 in.Notes,
		TrackingNumber:        in.TrackingNumber,
		CreatedByUserID:       in.CreatedBy,
		ShippedAt:             now,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	// Dos creadores concurrentes del mismo día pueden leer el mismo
	// consecutivo; el UNIQUE (store_id, number) hace perder a uno con
	// ErrDuplicate. Se reintenta la transacción completa: el nuevo conteo ya
	// ve al ganador confirmado.
	var err error
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		t.Items = nil
		if err = uc.createTx(ctx, in, t, now); !errors.Is(err, domain.ErrDuplicate) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("transfer_id", t.ID).
		Str("number", t.Number).
		Str("source", t.SourceLocationID).
		Str("destination", t.DestinationLocationID).
		Int("items", len(t.Items)).
		Msg("traslado creado")
	return t, nil
}

// createTx un intento de persistir el traslado: numera, inserta cabecera e
// ítems y ata tokens, todo en una transacción.
func (uc *UseCase) createTx(ctx context.Context, in CreateInput, t *entity.Transfer, now time.Time) error {
	return uc.txRunner.RunTransfer(ctx, func(
		transferRepo repository.TransferRepository,
		tokenRepo repository.TokenRepository,
		_ repository.StockCellRepository,
		_ repository.LedgerEntryRepository,
	) error {
		day := now.Format("20060102")
		seq, err := transferRepo.NextSequence(in.StoreID, day)
		if err != nil {
			return err
		}
		t.Number = fmt.Sprintf("TR-%s-%04d", day, seq)

		if err := transferRepo.Create(t); err != nil {
			return err
		}
		for _, line := range in.Items {
			item := &entity.TransferItem{
				ID:         uuid.New().String(),
				TransferID: t.ID,
				ProductID:  line.ProductID,
				Quantity:   line.Quantity,
			}
			if line.TokenCode != "" {
				tokenID, err := uc.bindToken(tokenRepo, t, line, now)
				if err != nil {
					return err
				}
				item.BoundTokenID = tokenID
			}
			if err := transferRepo.CreateItem(item); err != nil {
				return err
			}
			t.Items = append(t.Items, *item)
		}
		return nil
	})
}

// bindToken ata un token físico al traslado dentro de la tx de creación.
func (uc *UseCase) bindToken(
	tokenRepo repository.TokenRepository,
	t *entity.Transfer,
	line CreateItemInput,
	now time.Time,
) (string, error) {
	token, err := tokenRepo.GetByCode(t.StoreID, line.TokenCode)
	if errors.Is(err, domain.ErrNotFound) {
		token, err = tokenRepo.GetByCodeNormalized(t.StoreID, tokens.NormalizeCode(line.TokenCode))
	}
	if err != nil {
		return "", err
	}
	// Relee con bloqueo de fila para que dos creaciones concurrentes no aten
	// el mismo token.
	token, err = tokenRepo.GetForUpdate(token.ID)
	if err != nil {
		return "", err
	}
	if !token.Bindable() {
		return "", domain.ErrTokenAlreadyBound
	}
	if token.ProductID != "" && token.ProductID != line.ProductID {
		return "", domain.ErrInvalidInput
	}
	token.Status = entity.TokenStatusInTransit
	token.CurrentTransferID = t.ID
	token.UpdatedAt = now
	if err := tokenRepo.Update(token); err != nil {
		return "", err
	}
	return token.ID, nil
}

// Receive procesa la recepción completa en una sola transacción: bloquea la
// cabecera, exige in_transit, y por cada ítem mueve el kardex (o libera el
// token) registrando transfer_out/transfer_in con el ID del traslado como
// referencia. Repetir la llamada devuelve ErrAlreadyReceived sin acreditar
// destino dos veces.
func (uc *UseCase) Receive(ctx context.Context, in ReceiveInput) (*ReceiveResult, error) {
	if in.TransferID == "" {
		return nil, domain.ErrInvalidInput
	}
	result := &ReceiveResult{TransferID: in.TransferID}
	now := time.Now()

	err := uc.txRunner.RunTransfer(ctx, func(
		transferRepo repository.TransferRepository,
		tokenRepo repository.TokenRepository,
		cellRepo repository.StockCellRepository,
		entryRepo repository.LedgerEntryRepository,
	) error {
		t, err := transferRepo.GetByIDForUpdate(in.TransferID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if t.Status != entity.TransferStatusInTransit {
			return &domain.InvalidTransferStateError{Current: t.Status, Attempted: "receive"}
		}
		if in.DestinationLocationID != "" && in.DestinationLocationID != t.DestinationLocationID {
			return domain.ErrInvalidInput
		}
		result.Number = t.Number

		items, err := transferRepo.ListItems(t.ID)
		if err != nil {
			return err
		}
		for _, item := range items {
			received, err := uc.receiveItem(transferRepo, tokenRepo, cellRepo, entryRepo, t, item, in, now, result)
			if err != nil {
				return err
			}
			result.Items = append(result.Items, received)
		}

		t.Status = entity.TransferStatusCompleted
		t.ReceivedAt = &now
		t.ReceivedByUserID = in.ReceivedBy
		t.UpdatedAt = now
		return transferRepo.UpdateStatus(t)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("transfer_id", in.TransferID).
		Str("number", result.Number).
		Int("items", len(result.Items)).
		Int("warnings", len(result.Warnings)).
		Msg("traslado recibido")
	return result, nil
}

// receiveItem procesa un ítem. Las dos variantes de seguimiento se manejan de
// forma exhaustiva: token-bound no toca celdas (el token ES el inventario de
// esa unidad); ledger-tracked escribe las dos mitades del movimiento.
func (uc *UseCase) receiveItem(
	transferRepo repository.TransferRepository,
	tokenRepo repository.TokenRepository,
	cellRepo repository.StockCellRepository,
	entryRepo repository.LedgerEntryRepository,
	t *entity.Transfer,
	item *entity.TransferItem,
	in ReceiveInput,
	now time.Time,
	result *ReceiveResult,
) (ReceivedItem, error) {
	received := ReceivedItem{
		ItemID:    item.ID,
		ProductID: item.ProductID,
		Tracking:  item.Tracking(),
		Requested: item.Quantity,
	}

	switch item.Tracking() {
	case entity.TrackingToken:
		token, err := tokenRepo.GetForUpdate(item.BoundTokenID)
		if err != nil {
			return received, err
		}
		if token == nil {
			return received, domain.ErrNotFound
		}
		token.Status = entity.TokenStatusAvailable
		token.CurrentLocationID = t.DestinationLocationID
		token.CurrentTransferID = ""
		token.UpdatedAt = now
		if err := tokenRepo.Update(token); err != nil {
			return received, err
		}
		received.Received = item.Quantity

	case entity.TrackingLedger:
		meta := ledger.Metadata{
			StoreID:       t.StoreID,
			Reason:        "traslado " + t.Number,
			ReferenceType: entity.RefTypeTransfer,
			ReferenceID:   t.ID,
			PerformedBy:   in.ReceivedBy,
		}

		// Deducción en origen recortada a cero si el stock ya no alcanza: piso
		// correctivo en vez de fallo duro (la mercancía pudo salir ya por otra
		// vía). OJO: esto sub-registra merma; se reporta como advertencia.
		srcCell, err := cellRepo.GetForUpdate(item.ProductID, t.SourceLocationID)
		if err != nil {
			return received, err
		}
		deduct := item.Quantity
		if srcCell.Quantity.LessThan(deduct) {
			deduct = srcCell.Quantity
			shortfall := item.Quantity.Sub(deduct)
			received.Shortfall = shortfall
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"ítem %s: stock en origen insuficiente, deducción recortada (faltante %s)",
				item.ProductID, shortfall))
			metrics.TransferClampsTotal.Inc()
			uc.log.Warn().
				Str("transfer_id", t.ID).
				Str("product_id", item.ProductID).
				Str("shortfall", shortfall.String()).
				Msg("deducción de traslado recortada por stock insuficiente en origen")
		}
		outMeta := meta
		outMeta.TransactionType = entity.TxTypeTransferOut
		if _, err := uc.store.ApplyDeltaIn(cellRepo, entryRepo,
			item.ProductID, t.SourceLocationID, deduct.Neg(), outMeta, now); err != nil {
			return received, err
		}

		inMeta := meta
		inMeta.TransactionType = entity.TxTypeTransferIn
		if _, err := uc.store.ApplyDeltaIn(cellRepo, entryRepo,
			item.ProductID, t.DestinationLocationID, item.Quantity, inMeta, now); err != nil {
			return received, err
		}
		received.Received = item.Quantity
	}

	item.ReceivedQuantity = received.Received
	if cond, ok := in.Conditions[item.ID]; ok {
		item.Condition = cond
	}
	if err := transferRepo.UpdateItemReceipt(item); err != nil {
		return received, err
	}
	return received, nil
}

// Cancel cancela un traslado en tránsito. Libera los tokens atados dejándolos
// available en su ubicación previa; no escribe kardex porque el despacho nunca
// movió stock.
func (uc *UseCase) Cancel(ctx context.Context, transferID, cancelledBy string) (*entity.Transfer, error) {
	if transferID == "" {
		return nil, domain.ErrInvalidInput
	}
	var cancelled *entity.Transfer
	now := time.Now()

	err := uc.txRunner.RunTransfer(ctx, func(
		transferRepo repository.TransferRepository,
		tokenRepo repository.TokenRepository,
		_ repository.StockCellRepository,
		_ repository.LedgerEntryRepository,
	) error {
		t, err := transferRepo.GetByIDForUpdate(transferID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if t.Status != entity.TransferStatusInTransit {
			return &domain.InvalidTransferStateError{Current: t.Status, Attempted: "cancel"}
		}

		items, err := transferRepo.ListItems(t.ID)
		if err != nil {
			return err
		}
		for _, item := range items {
			if item.Tracking() != entity.TrackingToken {
				continue
			}
			token, err := tokenRepo.GetForUpdate(item.BoundTokenID)
			if err != nil {
				return err
			}
			if token == nil {
				continue
			}
			token.Status = entity.TokenStatusAvailable
			token.CurrentTransferID = ""
			token.UpdatedAt = now
			if err := tokenRepo.Update(token); err != nil {
				return err
			}
		}

		t.Status = entity.TransferStatusCancelled
		t.CancelledAt = &now
		t.CancelledByUserID = cancelledBy
		t.UpdatedAt = now
		cancelled = t
		return transferRepo.UpdateStatus(t)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("transfer_id", transferID).Msg("traslado cancelado")
	return cancelled, nil
}

// LookupByToken resuelve un código de token físico a su traslado activo, para
// el flujo escanear-para-recibir. Primero match exacto; si falla, match
// normalizado (mayúsculas/espacios/Unicode).
func (uc *UseCase) LookupByToken(ctx context.Context, storeID, code string) (*entity.Transfer, error) {
	if code == "" {
		return nil, domain.ErrInvalidInput
	}
	token, err := uc.tokenRepo.GetByCode(storeID, code)
	if errors.Is(err, domain.ErrNotFound) {
		token, err = uc.tokenRepo.GetByCodeNormalized(storeID, tokens.NormalizeCode(code))
	}
	if err != nil {
		return nil, err
	}
	if token.CurrentTransferID == "" {
		return nil, domain.ErrNotFound
	}
	return uc.GetByID(ctx, storeID, token.CurrentTransferID)
}

// GetByID devuelve el traslado con sus ítems (read model para la UI).
func (uc *UseCase) GetByID(_ context.Context, storeID, transferID string) (*entity.Transfer, error) {
	t, err := uc.transferRepo.GetByID(transferID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	if t.StoreID != storeID {
		return nil, domain.ErrForbidden
	}
	items, err := uc.transferRepo.ListItems(t.ID)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		t.Items = append(t.Items, *item)
	}
	return t, nil
}

// Manifest devuelve el traslado con sus ítems más los tokens físicos atados,
// para generar el documento de despacho (QR por token).
func (uc *UseCase) Manifest(ctx context.Context, storeID, transferID string) (*entity.Transfer, []*entity.PhysicalToken, error) {
	t, err := uc.GetByID(ctx, storeID, transferID)
	if err != nil {
		return nil, nil, err
	}
	toks, err := uc.tokenRepo.ListByTransfer(t.ID)
	if err != nil {
		return nil, nil, err
	}
	return t, toks, nil
}

// ListByStore lista traslados de la tienda, opcionalmente filtrados por estado.
func (uc *UseCase) ListByStore(_ context.Context, storeID, status string, limit, offset int) ([]*entity.Transfer, error) {
	return uc.transferRepo.ListByStore(storeID, status, limit, offset)
}

func (uc *UseCase) validateCreate(in CreateInput) error {
	if in.StoreID == "" || in.SourceLocationID == "" || in.DestinationLocationID == "" {
		return domain.ErrInvalidInput
	}
	if in.SourceLocationID == in.DestinationLocationID || len(in.Items) == 0 {
		return domain.ErrInvalidInput
	}
	for _, loc := range []string{in.SourceLocationID, in.DestinationLocationID} {
		location, err := uc.locationRepo.GetByID(loc)
		if err != nil || location == nil {
			return domain.ErrNotFound
		}
		if location.StoreID != in.StoreID {
			return domain.ErrForbidden
		}
	}
	for _, line := range in.Items {
		if line.ProductID == "" || !line.Quantity.GreaterThan(decimal.Zero) {
			return domain.ErrInvalidQuantity
		}
		product, err := uc.productRepo.GetByID(line.ProductID)
		if err != nil || product == nil {
			return domain.ErrNotFound
		}
		if product.StoreID != in.StoreID {
			return domain.ErrForbidden
		}
	}
	return nil
}
