package location

import (
	"context"

	"github.com/fekuna/stockroom-service/internal/location/dto"
	"github.com/fekuna/stockroom-service/internal/model"
)

type UseCase interface {
	CreateLocation(ctx context.Context, input *dto.CreateLocationInput) (*model.Location, error)
	GetLocationBySlug(ctx context.Context, slug string) (*model.Location, error)
	ListLocations(ctx context.Context) ([]model.Location, error)
}
