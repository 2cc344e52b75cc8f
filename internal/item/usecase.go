package item

import (
	"context"

	"github.com/fekuna/stockroom-service/internal/item/dto"
	"github.com/fekuna/stockroom-service/internal/model"
)

type UseCase interface {
	CreateItem(ctx context.Context, input *dto.CreateItemInput) (*model.Item, error)
	GetItem(ctx context.Context, id string) (*model.Item, error)
	ListItems(ctx context.Context, filters *dto.ItemFilters) ([]model.Item, error)
	ListAvailableItems(ctx context.Context) ([]model.AvailableItem, error)
	UpdateItem(ctx context.Context, input *dto.UpdateItemInput) (*model.Item, error)
	DeleteItem(ctx context.Context, id string) error

	// SyncSearchIndex creates the search index and writes every item to it.
	SyncSearchIndex(ctx context.Context) error
}
