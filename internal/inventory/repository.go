package inventory

import (
	"context"
	"time"

	"github.com/fekuna/stockroom-service/internal/model"
)

type Repository interface {
	// ApplyDelta adds delta to the item's stock in one conditional statement.
	// ok is false when no row matched: the item is missing or the result
	// would be negative.
	ApplyDelta(ctx context.Context, itemID string, delta int, at time.Time) (change *model.StockChange, ok bool, err error)
	// FindStock reads the current name and stock of an item, nil if missing.
	FindStock(ctx context.Context, itemID string) (*model.StockChange, error)

	InsertLog(ctx context.Context, log *model.StockLog) error
	FindLog(ctx context.Context, id string) (*model.StockLog, error)
	// UpdateLogAmount and DeleteLog report false when the row is gone or its
	// amount no longer matches; callers treat that as a lost race.
	UpdateLogAmount(ctx context.Context, id string, from, to int) (bool, error)
	DeleteLog(ctx context.Context, id string) (bool, error)

	ListLogs(ctx context.Context) ([]model.LogEntry, error)
	ListItemLogs(ctx context.Context, itemID string, limit int) ([]model.StockLog, error)
	// ListDeltas returns every log newest first.
	ListDeltas(ctx context.Context) ([]model.StockLog, error)
	TotalStock(ctx context.Context) (int, error)
	Statistics(ctx context.Context, topN int) (*model.Statistics, error)
}
