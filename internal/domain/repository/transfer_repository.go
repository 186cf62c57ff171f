package repository

import "github.com/jhoicas/Kardex-api/internal/domain/entity"

// TransferRepository define el puerto de persistencia para traslados e ítems.
type TransferRepository interface {
	Create(transfer *entity.Transfer) error
	CreateItem(item *entity.TransferItem) error
	GetByID(id string) (*entity.Transfer, error)
	// GetByIDForUpdate bloquea la cabecera del traslado (SELECT FOR UPDATE);
	// serializa recepciones/cancelaciones concurrentes del mismo traslado.
	GetByIDForUpdate(id string) (*entity.Transfer, error)
	ListItems(transferID string) ([]*entity.TransferItem, error)
	UpdateStatus(transfer *entity.Transfer) error
	UpdateItemReceipt(item *entity.TransferItem) error
	ListByStore(storeID, status string, limit, offset int) ([]*entity.Transfer, error)
	// NextSequence devuelve el consecutivo del día para el número legible.
	NextSequence(storeID string, yyyymmdd string) (int, error)
}
