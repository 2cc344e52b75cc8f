package inventory

import (
	"context"

	"github.com/fekuna/stockroom-service/internal/inventory/dto"
	"github.com/fekuna/stockroom-service/internal/model"
)

type UseCase interface {
	ApplyDelta(ctx context.Context, input *dto.ApplyDeltaInput) (*dto.StockResult, error)
	SubmitCart(ctx context.Context, input *dto.SubmitCartInput) (*dto.CartResult, error)
	EditLog(ctx context.Context, input *dto.EditLogInput) error
	DeleteLog(ctx context.Context, logID string) error

	// ListItemLogs returns the most recent entries of one item.
	ListItemLogs(ctx context.Context, itemID string) ([]model.StockLog, error)
	ListLogs(ctx context.Context) ([]model.LogEntry, error)
	StockOverTime(ctx context.Context) ([]model.StockPoint, error)
	Statistics(ctx context.Context) (*model.Statistics, error)
}

// OrderCompleter marks an order done as part of the caller's transaction.
type OrderCompleter interface {
	CompleteForFulfillment(ctx context.Context, orderID string) (*model.Order, error)
}
