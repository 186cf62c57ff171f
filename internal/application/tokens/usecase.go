// Package tokens administra los tokens físicos (códigos QR/etiqueta) cuyo
// estado y ubicación sustituyen al kardex numérico para la unidad que representan.
package tokens

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

// CreateInput entrada para registrar un token físico.
type CreateInput struct {
	StoreID    string
	Code       string
	ProductID  string // opcional: SKU al que representa
	LocationID string
}

// UseCase casos de uso de tokens físicos.
type UseCase struct {
	tokenRepo    repository.TokenRepository
	locationRepo repository.LocationRepository
	log          *logger.Logger
}

// NewUseCase construye el caso de uso de tokens.
func NewUseCase(tokenRepo repository.TokenRepository, locationRepo repository.LocationRepository, log *logger.Logger) *UseCase {
	return &UseCase{tokenRepo: tokenRepo, locationRepo: locationRepo, log: log}
}

// Create registra un token nuevo en available. El código es único por tienda.
func (uc *UseCase) Create(_ context.Context, in CreateInput) (*entity.PhysicalToken, error) {
	if in.StoreID == "" || in.Code == "" || in.LocationID == "" {
		return nil, domain.ErrInvalidInput
	}
	location, err := uc.locationRepo.GetByID(in.LocationID)
	if err != nil || location == nil {
		return nil, domain.ErrNotFound
	}
	if location.StoreID != in.StoreID {
		return nil, domain.ErrForbidden
	}
	switch _, err := uc.tokenRepo.GetByCode(in.StoreID, in.Code); {
	case err == nil:
		return nil, domain.ErrDuplicate
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	now := time.Now()
	token := &entity.PhysicalToken{
		ID:                uuid.New().String(),
		Code:              in.Code,
		StoreID:           in.StoreID,
		ProductID:         in.ProductID,
		CurrentLocationID: in.LocationID,
		Status:            entity.TokenStatusAvailable,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.tokenRepo.Create(token); err != nil {
		return nil, err
	}
	uc.log.Info().Str("token_id", token.ID).Str("code", token.Code).Msg("token físico registrado")
	return token, nil
}

// Resolve busca un token por código: match exacto y, si falla, match
// normalizado (mayúsculas, espacios, Unicode NFKC).
func (uc *UseCase) Resolve(_ context.Context, storeID, code string) (*entity.PhysicalToken, error) {
	if code == "" {
		return nil, domain.ErrInvalidInput
	}
	token, err := uc.tokenRepo.GetByCode(storeID, code)
	if errors.Is(err, domain.ErrNotFound) {
		token, err = uc.tokenRepo.GetByCodeNormalized(storeID, NormalizeCode(code))
	}
	if err != nil {
		return nil, err
	}
	return token, nil
}

// Scan registra un escaneo del token (TotalScans, LastScannedAt) y lo devuelve.
func (uc *UseCase) Scan(ctx context.Context, storeID, code string) (*entity.PhysicalToken, error) {
	token, err := uc.Resolve(ctx, storeID, code)
	if err != nil {
		return nil, err
	}
	if err := uc.tokenRepo.RecordScan(token.ID); err != nil {
		return nil, err
	}
	return uc.tokenRepo.GetByID(token.ID)
}

// MarkSold marca el token como vendido (la unidad salió por venta).
func (uc *UseCase) MarkSold(ctx context.Context, storeID, code, actor string) (*entity.PhysicalToken, error) {
	token, err := uc.Resolve(ctx, storeID, code)
	if err != nil {
		return nil, err
	}
	if token.Status != entity.TokenStatusAvailable {
		return nil, domain.ErrConflict
	}
	token.Status = entity.TokenStatusSold
	token.UpdatedAt = time.Now()
	if err := uc.tokenRepo.Update(token); err != nil {
		return nil, err
	}
	uc.log.Info().Str("token_id", token.ID).Str("actor", actor).Msg("token marcado como vendido")
	return token, nil
}
