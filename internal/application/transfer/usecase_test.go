package transfer

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/internal/application/tokens"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memCellRepo struct {
	cells map[string]*entity.StockCell
}

func newMemCellRepo() *memCellRepo {
	return &memCellRepo{cells: make(map[string]*entity.StockCell)}
}

func cellKey(productID, locationID string) string { return productID + "|" + locationID }

func (r *memCellRepo) Get(productID, locationID string) (*entity.StockCell, error) {
	return r.GetForUpdate(productID, locationID)
}

func (r *memCellRepo) GetForUpdate(productID, locationID string) (*entity.StockCell, error) {
	if c, ok := r.cells[cellKey(productID, locationID)]; ok {
		cp := *c
		return &cp, nil
	}
	return &entity.StockCell{ProductID: productID, LocationID: locationID, Quantity: decimal.Zero}, nil
}

func (r *memCellRepo) Upsert(cell *entity.StockCell) error {
	cp := *cell
	r.cells[cellKey(cell.ProductID, cell.LocationID)] = &cp
	return nil
}

func (r *memCellRepo) ListByLocation(locationID string, limit, offset int) ([]*entity.StockCell, error) {
	return nil, nil
}

func (r *memCellRepo) SumByProduct(productID string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (r *memCellRepo) quantity(productID, locationID string) decimal.Decimal {
	if c, ok := r.cells[cellKey(productID, locationID)]; ok {
		return c.Quantity
	}
	return decimal.Zero
}

type memEntryRepo struct {
	entries []*entity.LedgerEntry
}

func (r *memEntryRepo) Append(e *entity.LedgerEntry) error {
	cp := *e
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *memEntryRepo) GetByID(id string) (*entity.LedgerEntry, error) {
	return nil, domain.ErrNotFound
}

func (r *memEntryRepo) ListByCell(productID, locationID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error) {
	return nil, nil
}

func (r *memEntryRepo) ListByReference(refType, refID string) ([]*entity.LedgerEntry, error) {
	var out []*entity.LedgerEntry
	for _, e := range r.entries {
		if e.ReferenceType == refType && e.ReferenceID == refID {
			out = append(out, e)
		}
	}
	return out, nil
}

type memTransferRepo struct {
	transfers map[string]*entity.Transfer
	items     map[string][]*entity.TransferItem
	// staleSeqs consecutivos que NextSequence devuelve antes de contar, para
	// simular dos creadores leyendo el mismo número.
	staleSeqs []int
}

func newMemTransferRepo() *memTransferRepo {
	return &memTransferRepo{
		transfers: make(map[string]*entity.Transfer),
		items:     make(map[string][]*entity.TransferItem),
	}
}

func (r *memTransferRepo) Create(t *entity.Transfer) error {
	for _, existing := range r.transfers {
		if existing.StoreID == t.StoreID && existing.Number == t.Number {
			return domain.ErrDuplicate
		}
	}
	cp := *t
	cp.Items = nil
	r.transfers[t.ID] = &cp
	return nil
}

func (r *memTransferRepo) CreateItem(item *entity.TransferItem) error {
	cp := *item
	r.items[item.TransferID] = append(r.items[item.TransferID], &cp)
	return nil
}

func (r *memTransferRepo) GetByID(id string) (*entity.Transfer, error) {
	if t, ok := r.transfers[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memTransferRepo) GetByIDForUpdate(id string) (*entity.Transfer, error) {
	return r.GetByID(id)
}

func (r *memTransferRepo) ListItems(transferID string) ([]*entity.TransferItem, error) {
	var out []*entity.TransferItem
	for _, item := range r.items[transferID] {
		cp := *item
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memTransferRepo) UpdateStatus(t *entity.Transfer) error {
	stored, ok := r.transfers[t.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Status = t.Status
	stored.ReceivedAt = t.ReceivedAt
	stored.ReceivedByUserID = t.ReceivedByUserID
	stored.CancelledAt = t.CancelledAt
	stored.CancelledByUserID = t.CancelledByUserID
	stored.UpdatedAt = t.UpdatedAt
	return nil
}

func (r *memTransferRepo) UpdateItemReceipt(item *entity.TransferItem) error {
	for _, stored := range r.items[item.TransferID] {
		if stored.ID == item.ID {
			stored.ReceivedQuantity = item.ReceivedQuantity
			stored.Condition = item.Condition
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memTransferRepo) ListByStore(storeID, status string, limit, offset int) ([]*entity.Transfer, error) {
	var out []*entity.Transfer
	for _, t := range r.transfers {
		if t.StoreID == storeID && (status == "" || t.Status == status) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTransferRepo) NextSequence(storeID, yyyymmdd string) (int, error) {
	if len(r.staleSeqs) > 0 {
		n := r.staleSeqs[0]
		r.staleSeqs = r.staleSeqs[1:]
		return n, nil
	}
	n := 1
	for _, t := range r.transfers {
		if t.StoreID == storeID && len(t.Number) >= 11 && t.Number[3:11] == yyyymmdd {
			n++
		}
	}
	return n, nil
}

type memTokenRepo struct {
	toks map[string]*entity.PhysicalToken
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{toks: make(map[string]*entity.PhysicalToken)}
}

func (r *memTokenRepo) Create(t *entity.PhysicalToken) error {
	cp := *t
	r.toks[t.ID] = &cp
	return nil
}

func (r *memTokenRepo) GetByID(id string) (*entity.PhysicalToken, error) {
	if t, ok := r.toks[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memTokenRepo) GetByCode(storeID, code string) (*entity.PhysicalToken, error) {
	for _, t := range r.toks {
		if t.StoreID == storeID && t.Code == code {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memTokenRepo) GetByCodeNormalized(storeID, normalizedCode string) (*entity.PhysicalToken, error) {
	for _, t := range r.toks {
		if t.StoreID == storeID && tokens.NormalizeCode(t.Code) == normalizedCode {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memTokenRepo) GetForUpdate(id string) (*entity.PhysicalToken, error) {
	return r.GetByID(id)
}

func (r *memTokenRepo) Update(t *entity.PhysicalToken) error {
	if _, ok := r.toks[t.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *t
	r.toks[t.ID] = &cp
	return nil
}

func (r *memTokenRepo) RecordScan(id string) error { return nil }

func (r *memTokenRepo) ListByTransfer(transferID string) ([]*entity.PhysicalToken, error) {
	var out []*entity.PhysicalToken
	for _, t := range r.toks {
		if t.CurrentTransferID == transferID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memLocationRepo struct {
	locations map[string]*entity.Location
}

func (r *memLocationRepo) Create(l *entity.Location) error { r.locations[l.ID] = l; return nil }

func (r *memLocationRepo) GetByID(id string) (*entity.Location, error) {
	if l, ok := r.locations[id]; ok {
		return l, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memLocationRepo) Update(l *entity.Location) error { return nil }

func (r *memLocationRepo) ListByStore(storeID string, limit, offset int) ([]*entity.Location, error) {
	return nil, nil
}

type memProductRepo struct {
	products map[string]*entity.Product
}

func (r *memProductRepo) Create(p *entity.Product) error { r.products[p.ID] = p; return nil }

func (r *memProductRepo) GetByID(id string) (*entity.Product, error) {
	if p, ok := r.products[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memProductRepo) GetBySKU(storeID, sku string) (*entity.Product, error) {
	return nil, domain.ErrNotFound
}

func (r *memProductRepo) Update(p *entity.Product) error { return nil }

func (r *memProductRepo) ListByStore(storeID string, limit, offset int) ([]*entity.Product, error) {
	return nil, nil
}

func (r *memProductRepo) ListVariants(parentID string) ([]*entity.Product, error) { return nil, nil }

type memTxRunner struct {
	transfers *memTransferRepo
	toks      *memTokenRepo
	cells     *memCellRepo
	entries   *memEntryRepo
}

// RunTransfer imita el rollback: si fn falla, restaura el estado previo para
// que las aserciones de atomicidad tengan sentido.
func (r *memTxRunner) RunTransfer(_ context.Context, fn func(
	repository.TransferRepository,
	repository.TokenRepository,
	repository.StockCellRepository,
	repository.LedgerEntryRepository,
) error) error {
	prevTransfers := snapshotMap(r.transfers.transfers)
	prevItems := snapshotItems(r.transfers.items)
	prevToks := snapshotMap(r.toks.toks)
	prevCells := snapshotMap(r.cells.cells)
	prevEntries := append([]*entity.LedgerEntry(nil), r.entries.entries...)

	if err := fn(r.transfers, r.toks, r.cells, r.entries); err != nil {
		r.transfers.transfers = prevTransfers
		r.transfers.items = prevItems
		r.toks.toks = prevToks
		r.cells.cells = prevCells
		r.entries.entries = prevEntries
		return err
	}
	return nil
}

func snapshotMap[V any](m map[string]*V) map[string]*V {
	out := make(map[string]*V, len(m))
	for k, v := range m {
		cp := *v
		out[k] = &cp
	}
	return out
}

func snapshotItems(m map[string][]*entity.TransferItem) map[string][]*entity.TransferItem {
	out := make(map[string][]*entity.TransferItem, len(m))
	for k, items := range m {
		for _, item := range items {
			cp := *item
			out[k] = append(out[k], &cp)
		}
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	uc        *UseCase
	transfers *memTransferRepo
	toks      *memTokenRepo
	cells     *memCellRepo
	entries   *memEntryRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	transfers := newMemTransferRepo()
	toks := newMemTokenRepo()
	cells := newMemCellRepo()
	entries := &memEntryRepo{}
	locations := &memLocationRepo{locations: map[string]*entity.Location{
		"l-origen":  {ID: "l-origen", StoreID: "s1", Name: "Bodega"},
		"l-destino": {ID: "l-destino", StoreID: "s1", Name: "Sala"},
	}}
	products := &memProductRepo{products: map[string]*entity.Product{
		"p1": {ID: "p1", StoreID: "s1", Name: "Collar", SKU: "COL-001"},
	}}
	runner := &memTxRunner{transfers: transfers, toks: toks, cells: cells, entries: entries}
	// El kardex corre dentro de la tx del traslado (ApplyDeltaIn), así que el
	// runner propio del Store no se usa aquí.
	store := ledger.NewStore(nil, ledger.Policy{})
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	uc := NewUseCase(runner, store, transfers, toks, locations, products, log)
	return &fixture{uc: uc, transfers: transfers, toks: toks, cells: cells, entries: entries}
}

func (f *fixture) seedCell(productID, locationID string, qty int64) {
	f.cells.cells[cellKey(productID, locationID)] = &entity.StockCell{
		ProductID:  productID,
		LocationID: locationID,
		Quantity:   decimal.NewFromInt(qty),
	}
}

func (f *fixture) seedToken(id, code, locationID string) {
	now := time.Now()
	f.toks.toks[id] = &entity.PhysicalToken{
		ID:                id,
		Code:              code,
		StoreID:           "s1",
		ProductID:         "p1",
		CurrentLocationID: locationID,
		Status:            entity.TokenStatusAvailable,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func createInput(items ...CreateItemInput) CreateInput {
	return CreateInput{
		StoreID:               "s1",
		SourceLocationID:      "l-origen",
		DestinationLocationID: "l-destino",
		CreatedBy:             "u1",
		Items:                 items,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_NoMueveStockYNumeraPorDia(t *testing.T) {
	f := newFixture(t)
	f.seedCell("p1", "l-origen", 10)

	tr, err := f.uc.Create(context.Background(), createInput(
		CreateItemInput{ProductID: "p1", Quantity: decimal.NewFromInt(4)},
	))
	require.NoError(t, err)

	day := time.Now().Format("20060102")
	assert.Equal(t, "TR-"+day+"-0001", tr.Number)
	assert.Equal(t, entity.TransferStatusInTransit, tr.Status)
	// El despacho no toca celdas ni kardex.
	assert.True(t, f.cells.quantity("p1", "l-origen").Equal(decimal.NewFromInt(10)))
	assert.Empty(t, f.entries.entries)

	tr2, err := f.uc.Create(context.Background(), createInput(
		CreateItemInput{ProductID: "p1", Quantity: decimal.NewFromInt(1)},
	))
	require.NoError(t, err)
	assert.Equal(t, "TR-"+day+"-0002", tr2.Number)
}

func TestCreate_ConsecutivoRepetidoReintentaConElSiguiente(t *testing.T) {
	f := newFixture(t)
	day := time.Now().Format("20060102")
	// Un creador concurrente leyó el mismo consecutivo y confirmó primero.
	f.transfers.transfers["t-previo"] = &entity.Transfer{
		ID: "t-previo", StoreID: "s1", Number: "TR-" + day + "-0001",
		Status: entity.TransferStatusCompleted,
	}
	f.transfers.staleSeqs = []int{1}

	tr, err := f.uc.Create(context.Background(), createInput(
		CreateItemInput{ProductID: "p1", Quantity: decimal.NewFromInt(2)},
	))
	require.NoError(t, err)
	assert.Equal(t, "TR-"+day+"-0002", tr.Number)
	require.Len(t, tr.Items, 1)
	assert.Len(t, f.transfers.items[tr.ID], 1)
}

func TestCreate_ConsecutivoAgotadoPropagaDuplicado(t *testing.T) {
	f := newFixture(t)
	day := time.Now().Format("20060102")
	f.transfers.transfers["t-previo"] = &entity.Transfer{
		ID: "t-previo", StoreID: "s1", Number: "TR-" + day + "-0001",
		Status: entity.TransferStatusCompleted,
	}
	f.transfers.staleSeqs = []int{1, 1, 1}

	_, err := f.uc.Create(context.Background(), createInput(
		CreateItemInput{ProductID: "p1", Quantity: decimal.NewFromInt(2)},
	))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	// El perdedor no deja cabecera ni ítems a medias.
	assert.Len(t, f.transfers.transfers, 1)
}

func TestCreate_AtaElTokenEnLaMismaTransaccion(t *testing.T) {
	f := newFixture(t)
	f.seedToken("tok1", "QR-001", "l-origen")

	tr, err := f.uc.Create(context.Background(), createInput(
		CreateItemInput{ProductID: "p1", Quantity: decimal.NewFromInt(1), TokenCode: "QR-001"},
	))
	require.NoError(t, err)
	require.Len(t, tr.Items, 1)
	assert.Equal(t, "tok1", tr.Items[0].BoundTokenID)
	assert.Equal(t, entity.TrackingToken, tr.Items[0].Tracking())

	tok := f.toks.toks["tok1"]
	assert.Equal(t, entity.TokenStatusInTransit, tok.Status)
	assert.Equal(t, tr.ID, tok.CurrentTransferID)
}

func TestCreate_TokenOcupadoRechazaElTraslado(t *testing.T) {
	f := newFixture(t)
	f.seedToken("tok1", "QR-001", "l-origen")
	f.toks.toks["tok1"].Status = entity.TokenStatusInTransit
	f.toks.toks["tok1"].CurrentTransferID = "otro-traslado"

	_, err := f.uc.Create(context.Background(), createInput(
		CreateItemInput{ProductID: "p1", Quantity: decimal.NewFromInt(1), TokenCode: "QR-001"},
	))
	require.ErrorIs(t, err, domain.ErrTokenAlreadyBound)
	// Nada quedó persistido: la creación es todo o nada.
	assert.Empty(t, f.transfers.transfers)
}

func TestCreate_CodigoConRuidoResuelvePorNormalizacion(t *testing.T) {
	f := newFixture(t)
	f.seedToken("tok1", "QR-001", "l-origen")

	tr, err := f.uc.Create(context.Background(), createInput(
		CreateItemInput{ProductID: "p1", Quantity: decimal.NewFromInt(1), TokenCode: " qr-001 "},
	))
	require.NoError(t, err)
	assert.Equal(t, "tok1", tr.Items[0].BoundTokenID)
}

func TestCreate_ValidaEntrada(t *testing.T) {
	f := newFixture(t)

	casos := []struct {
		nombre string
		mutar  func(*CreateInput)
		want   error
	}{
		{"mismo origen y destino", func(in *CreateInput) { in.DestinationLocationID = in.SourceLocationID }, domain.ErrInvalidInput},
		{"sin items", func(in *CreateInput) { in.Items = nil }, domain.ErrInvalidInput},
		{"cantidad cero", func(in *CreateInput) { in.Items[0].Quantity = decimal.Zero }, domain.ErrInvalidQuantity},
		{"producto inexistente", func(in *CreateInput) { in.Items[0].ProductID = "nope" }, domain.ErrNotFound},
		{"ubicacion inexistente", func(in *CreateInput) { in.SourceLocationID = "nope" }, domain.ErrNotFound},
	}
	for _, tc := range casos {
		t.Run(tc.nombre, func(t *testing.T) {
			in := createInput(CreateItemInput{ProductID: "p1", Quantity: decimal.NewFromInt(1)})
			tc.mutar(&in)
			_, err := f.uc.Create(context.Background(), in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Recepción
// ──────────────────────────────────────────────────────────────────────────────

func TestReceive_MueveElKardexUnaSolaVez(t *testing.T) {
	f := newFixture(t)
	f.seedCell("p1", "l-origen", 10)

	tr, err := f.uc.Create(context.Background(), createInput(
		CreateItemInput{ProductID: "p1", Quantity: decimal.NewFromInt(4)},
	))
	require.NoError(t, err)

	res, err := f.uc.Receive(context.Background(), ReceiveInput{TransferID: tr.ID, ReceivedBy: "u2"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.True(t, res.Items[0].Received.Equal(decimal.NewFromInt(4)))
	assert.Empty(t, res.Warnings)

	assert.True(t, f.cells.quantity("p1", "l-origen").Equal(decimal.NewFromInt(6)))
	assert.True(t, f.cells.quantity("p1", "l-destino").Equal(decimal.NewFromInt(4)))

	// Dos mitades del movimiento, ambas referenciando el traslado.
	refs, _ := f.entries.ListByReference(entity.RefTypeTransfer, tr.ID)
	require.Len(t, refs, 2)
	assert.Equal(t, entity.TxTypeTransferOut, refs[0].TransactionType)
	assert.Equal(t, entity.TxTypeTransferIn, refs[1].TransactionType)

	// Repetir la recepción no acredita el destino de nuevo.
	_, err = f.uc.Receive(context.Background(), ReceiveInput{TransferID: tr.ID, ReceivedBy: "u2"})
	require.ErrorIs(t, err, domain.ErrAlreadyReceived)
	var stateErr *domain.InvalidTransferStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, entity.TransferStatusCompleted, stateErr.Current)
	assert.True(t, f.cells.quantity("p1", "l-destino").Equal(decimal.NewFromInt(4)))
	refs, _ = f.entries.ListByReference(entity.RefTypeTransfer, tr.ID)
	assert.Len(t, refs, 2)
}

func TestReceive_ItemConTokenNoTocaCeldas(t *testing.T) {
	f := newFixture(t)
	f.seedToken("tok1", "QR-001", "l-origen")

	tr, err := f.uc.Create(context.Background(), createInput(
		CreateItemInput{ProductID: "p1", Quantity: decimal.NewFromInt(1), TokenCode: "QR-001"},
	))
	require.NoError(t, err)

	res, err := f.uc.Receive(context.Background(), ReceiveInput{TransferID: tr.ID, ReceivedBy: "u2"})
	require.NoError(t, err)
	assert.Equal(t, entity.TrackingToken, res.Items[0].Tracking)

	// El token ES el inventario: ninguna celda ni entrada de kardex cambia.
	assert.Empty(t, f.entries.entries)
	tok := f.toks.toks["tok1"]
	assert.Equal(t, entity.TokenStatusAvailable, tok.Status)
	assert.Equal(t, "l-destino", tok.CurrentLocationID)
	assert.Empty(t, tok.CurrentTransferID)
}

func TestReceive_StockCortoRecortaACeroConAdvertencia(t *testing.T) {
	f := newFixture(t)
	f.seedCell("p1", "l-origen", 3)

	tr, err := f.uc.Create(context.Background(), createInput(
		CreateItemInput{ProductID: "p1", Quantity: decimal.NewFromInt(5)},
	))
	require.NoError(t, err)

	res, err := f.uc.Receive(context.Background(), ReceiveInput{TransferID: tr.ID, ReceivedBy: "u2"})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.True(t, res.Items[0].Shortfall.Equal(decimal.NewFromInt(2)))

	// El origen baja solo lo que había; el destino acredita lo declarado.
	assert.True(t, f.cells.quantity("p1", "l-origen").IsZero())
	assert.True(t, f.cells.quantity("p1", "l-destino").Equal(decimal.NewFromInt(5)))
}

func TestReceive_RegistraCondicionPorItem(t *testing.T) {
	f := newFixture(t)
	f.seedCell("p1", "l-origen", 10)

	tr, err := f.uc.Create(context.Background(), createInput(
		CreateItemInput{ProductID: "p1", Quantity: decimal.NewFromInt(2)},
	))
	require.NoError(t, err)
	itemID := tr.Items[0].ID

	_, err = f.uc.Receive(context.Background(), ReceiveInput{
		TransferID: tr.ID,
		ReceivedBy: "u2",
		Conditions: map[string]string{itemID: entity.ItemConditionDamaged},
	})
	require.NoError(t, err)

	items, _ := f.transfers.ListItems(tr.ID)
	assert.Equal(t, entity.ItemConditionDamaged, items[0].Condition)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cancelación
// ──────────────────────────────────────────────────────────────────────────────

func TestCancel_LiberaTokensSinEscribirKardex(t *testing.T) {
	f := newFixture(t)
	f.seedToken("tok1", "QR-001", "l-origen")

	tr, err := f.uc.Create(context.Background(), createInput(
		CreateItemInput{ProductID: "p1", Quantity: decimal.NewFromInt(1), TokenCode: "QR-001"},
	))
	require.NoError(t, err)

	cancelled, err := f.uc.Cancel(context.Background(), tr.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusCancelled, cancelled.Status)
	assert.Empty(t, f.entries.entries)

	// El token vuelve a available en su ubicación previa.
	tok := f.toks.toks["tok1"]
	assert.Equal(t, entity.TokenStatusAvailable, tok.Status)
	assert.Equal(t, "l-origen", tok.CurrentLocationID)
	assert.Empty(t, tok.CurrentTransferID)
}

func TestCancel_EstadoTerminalRechaza(t *testing.T) {
	f := newFixture(t)
	f.seedCell("p1", "l-origen", 10)

	tr, err := f.uc.Create(context.Background(), createInput(
		CreateItemInput{ProductID: "p1", Quantity: decimal.NewFromInt(1)},
	))
	require.NoError(t, err)
	_, err = f.uc.Receive(context.Background(), ReceiveInput{TransferID: tr.ID, ReceivedBy: "u2"})
	require.NoError(t, err)

	_, err = f.uc.Cancel(context.Background(), tr.ID, "u2")
	var stateErr *domain.InvalidTransferStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, entity.TransferStatusCompleted, stateErr.Current)
	assert.Equal(t, "cancel", stateErr.Attempted)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consulta por token
// ──────────────────────────────────────────────────────────────────────────────

func TestLookupByToken_ResuelveConNormalizacion(t *testing.T) {
	f := newFixture(t)
	f.seedToken("tok1", "QR-001", "l-origen")

	tr, err := f.uc.Create(context.Background(), createInput(
		CreateItemInput{ProductID: "p1", Quantity: decimal.NewFromInt(1), TokenCode: "QR-001"},
	))
	require.NoError(t, err)

	found, err := f.uc.LookupByToken(context.Background(), "s1", "qr-001")
	require.NoError(t, err)
	assert.Equal(t, tr.ID, found.ID)

	// Un token suelto (sin traslado activo) no resuelve a nada.
	f.seedToken("tok2", "QR-002", "l-origen")
	_, err = f.uc.LookupByToken(context.Background(), "s1", "QR-002")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
