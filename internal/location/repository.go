package location

import (
	"context"

	"github.com/fekuna/stockroom-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, location *model.Location) error
	FindByID(ctx context.Context, id string) (*model.Location, error)
	FindBySlug(ctx context.Context, slug string) (*model.Location, error)
	FindAll(ctx context.Context) ([]model.Location, error)
}
