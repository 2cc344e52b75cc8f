package order

import (
	"context"
	"time"

	"github.com/fekuna/stockroom-service/internal/model"
	"github.com/fekuna/stockroom-service/internal/order/dto"
)

type Repository interface {
	Create(ctx context.Context, order *model.Order, lines []model.OrderLine) error
	FindByID(ctx context.Context, id string) (*model.Order, error)
	FindLines(ctx context.Context, orderID string) ([]model.OrderLine, error)
	FindDetails(ctx context.Context, filters *dto.OrderFilters) ([]model.OrderWithDetails, error)
	FindDetailsByID(ctx context.Context, id string) (*model.OrderWithDetails, error)

	// UpdateStatus moves the order only if it is still in from. It reports
	// false when another writer got there first.
	UpdateStatus(ctx context.Context, id string, from, to model.OrderStatus, completedAt *time.Time) (bool, error)
}
