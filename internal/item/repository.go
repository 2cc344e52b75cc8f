package item

import (
	"context"

	"github.com/fekuna/stockroom-service/internal/item/dto"
	"github.com/fekuna/stockroom-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, item *model.Item) error
	FindByID(ctx context.Context, id string) (*model.Item, error)
	// FindByIDs keeps the order of ids and skips ids that do not exist.
	FindByIDs(ctx context.Context, ids []string) ([]model.Item, error)
	FindAll(ctx context.Context, filters *dto.ItemFilters) ([]model.Item, error)
	FindAvailable(ctx context.Context) ([]model.AvailableItem, error)
	Update(ctx context.Context, item *model.Item) error
	Delete(ctx context.Context, id string) (bool, error)

	IsSKUUnique(ctx context.Context, sku, excludeID string) (bool, error)
}
