package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/fekuna/stockroom-service/internal/apperror"
	"github.com/fekuna/stockroom-service/internal/events"
	"github.com/fekuna/stockroom-service/internal/inventory"
	"github.com/fekuna/stockroom-service/internal/inventory/dto"
	"github.com/fekuna/stockroom-service/internal/model"
	"github.com/fekuna/stockroom-service/internal/notify"
	"github.com/fekuna/stockroom-service/internal/views"
	"github.com/fekuna/stockroom-service/pkg/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	recentLogLimit = 10
	topItemsLimit  = 5
)

var tracer = otel.Tracer("github.com/fekuna/stockroom-service/internal/inventory")

// TxRunner is satisfied by *database.TxManager.
type TxRunner interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Cache is satisfied by *cache.RedisClient.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

type Options struct {
	Orders   inventory.OrderCompleter
	Notifier notify.Notifier
	Events   events.Emitter
	Views    views.Invalidator
	Cache    Cache
	CacheTTL time.Duration
	// Timeout bounds every mutation, commit included. Zero disables it.
	Timeout time.Duration
}

type inventoryUseCase struct {
	repo     inventory.Repository
	tx       TxRunner
	orders   inventory.OrderCompleter
	notifier notify.Notifier
	events   events.Emitter
	views    views.Invalidator
	cache    Cache
	cacheTTL time.Duration
	timeout  time.Duration
	logger   logger.ZapLogger
	now      func() time.Time
}

func NewInventoryUseCase(repo inventory.Repository, tx TxRunner, opts Options, log logger.ZapLogger) inventory.UseCase {
	uc := &inventoryUseCase{
		repo:     repo,
		tx:       tx,
		orders:   opts.Orders,
		notifier: opts.Notifier,
		events:   opts.Events,
		views:    opts.Views,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		timeout:  opts.Timeout,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
	}
	if uc.notifier == nil {
		uc.notifier = notify.Noop{}
	}
	if uc.events == nil {
		uc.events = events.Noop{}
	}
	if uc.views == nil {
		uc.views = views.Noop{}
	}
	if uc.cacheTTL <= 0 {
		uc.cacheTTL = time.Minute
	}
	return uc
}

// applied is one committed stock change together with how it was logged.
type applied struct {
	model.StockChange
	reason model.LogReason
	actor  string
}

// crossedLowStock is the level-crossing rule shared by every mutation path:
// a consuming change that moves stock from above the threshold to at or
// below it.
func crossedLowStock(c model.StockChange) bool {
	return c.Delta() < 0 && c.Before > c.MinThreshold && c.After <= c.MinThreshold
}

// applyDelta must run inside a transaction. The guarded update either moves
// the stock or changes nothing; the follow-up read only tells a missing item
// from a short one.
func (uc *inventoryUseCase) applyDelta(ctx context.Context, itemID string, delta int, reason model.LogReason, actor string, at time.Time) (*applied, error) {
	change, ok, err := uc.repo.ApplyDelta(ctx, itemID, delta, at)
	if err != nil {
		return nil, apperror.Internal("Failed to update stock", err)
	}
	if !ok {
		current, err := uc.repo.FindStock(ctx, itemID)
		if err != nil {
			return nil, apperror.Internal("Failed to update stock", err)
		}
		if current == nil {
			return nil, apperror.NotFound("Item not found")
		}
		return nil, apperror.InsufficientStock(current.ItemName, current.After)
	}

	if delta != 0 {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, apperror.Internal("Failed to update stock", err)
		}
		entry := &model.StockLog{
			ID:           id.String(),
			ItemID:       itemID,
			ChangeAmount: delta,
			Reason:       reason,
			CreatedAt:    at,
		}
		if actor != "" {
			entry.UserName = &actor
		}
		if err := uc.repo.InsertLog(ctx, entry); err != nil {
			return nil, apperror.Internal("Failed to update stock", err)
		}
	}

	return &applied{StockChange: *change, reason: reason, actor: actor}, nil
}

// afterCommit runs the side channels of committed changes. None of them can
// fail the mutation.
func (uc *inventoryUseCase) afterCommit(ctx context.Context, changes []applied) {
	ctx = context.WithoutCancel(ctx)

	var alerts []notify.Alert
	var evs []events.StockChanged
	stale := []views.View{views.ItemList, views.History}
	for _, c := range changes {
		if crossedLowStock(c.StockChange) {
			alerts = append(alerts, notify.Alert{
				ItemID:       c.ItemID,
				ItemName:     c.ItemName,
				SKU:          c.SKU,
				Category:     c.Category,
				CurrentStock: c.After,
				MinThreshold: c.MinThreshold,
			})
		}
		if c.Delta() != 0 {
			evs = append(evs, events.NewStockChanged(c.StockChange, c.reason, c.actor, uc.now()))
		}
		stale = append(stale, views.ItemPage(c.ItemID))
	}

	if len(alerts) > 0 {
		uc.notifier.Notify(alerts...)
	}
	uc.events.Emit(evs...)
	uc.views.Invalidate(ctx, stale...)
}

// withTimeout runs fn under the configured deadline. An unexpected failure
// after the deadline passed is reported as a timeout rather than a storage
// error.
func (uc *inventoryUseCase) withTimeout(ctx context.Context, fn func(ctx context.Context) error) error {
	if uc.timeout <= 0 {
		return fn(ctx)
	}
	tctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	err := fn(tctx)
	if err == nil {
		return nil
	}
	if apperror.KindOf(err) == apperror.KindInternal &&
		(errors.Is(err, context.DeadlineExceeded) || errors.Is(tctx.Err(), context.DeadlineExceeded)) {
		return apperror.Timeout("Request timed out", err)
	}
	return err
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperror.KindOf(err).String())
	}
	span.End()
}

func (uc *inventoryUseCase) ApplyDelta(ctx context.Context, input *dto.ApplyDeltaInput) (res *dto.StockResult, err error) {
	ctx, span := tracer.Start(ctx, "inventory.ApplyDelta", trace.WithAttributes(
		attribute.String("item.id", input.ItemID),
		attribute.Int("stock.delta", input.Delta),
	))
	defer func() { endSpan(span, err) }()

	if _, perr := uuid.Parse(input.ItemID); perr != nil {
		return nil, apperror.NotFound("Item not found")
	}
	reason := input.Reason
	if reason == "" {
		reason = model.ReasonForDelta(input.Delta)
	}
	if !reason.Valid() {
		return nil, apperror.Validation("Unknown reason %q", reason)
	}
	actor := strings.TrimSpace(input.Actor)

	var change *applied
	err = uc.withTimeout(ctx, func(ctx context.Context) error {
		return uc.tx.Do(ctx, func(ctx context.Context) error {
			c, err := uc.applyDelta(ctx, input.ItemID, input.Delta, reason, actor, uc.now())
			if err != nil {
				return err
			}
			change = c
			return nil
		})
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			uc.logger.Error("failed to apply stock delta", zap.String("item_id", input.ItemID), zap.Error(err))
		}
		return nil, err
	}

	uc.afterCommit(ctx, []applied{*change})

	return &dto.StockResult{
		ItemID:   change.ItemID,
		ItemName: change.ItemName,
		NewStock: change.After,
	}, nil
}

func (uc *inventoryUseCase) SubmitCart(ctx context.Context, input *dto.SubmitCartInput) (res *dto.CartResult, err error) {
	ctx, span := tracer.Start(ctx, "inventory.SubmitCart", trace.WithAttributes(
		attribute.Int("cart.lines", len(input.Lines)),
		attribute.String("order.id", input.OrderID),
	))
	defer func() { endSpan(span, err) }()

	actor := strings.TrimSpace(input.Actor)
	if actor == "" {
		return nil, apperror.Validation("Please enter your name")
	}
	if len(input.Lines) == 0 {
		return nil, apperror.Validation("Cart is empty")
	}

	seen := make(map[string]struct{}, len(input.Lines))
	lines := make(model.Cart, 0, len(input.Lines))
	for _, l := range input.Lines {
		if _, perr := uuid.Parse(l.ItemID); perr != nil {
			return nil, apperror.Validation("Invalid item id %q", l.ItemID)
		}
		if _, dup := seen[l.ItemID]; dup {
			return nil, apperror.Validation("Item %s appears more than once in the cart", l.ItemID)
		}
		seen[l.ItemID] = struct{}{}
		if l.Delta != 0 {
			lines = append(lines, l)
		}
	}

	// Rows are locked in id order so two carts touching the same items cannot
	// deadlock each other.
	slices.SortFunc(lines, func(a, b model.CartLine) int { return strings.Compare(a.ItemID, b.ItemID) })

	result := &dto.CartResult{Items: make([]dto.StockResult, 0, len(lines))}
	var changes []applied

	err = uc.withTimeout(ctx, func(ctx context.Context) error {
		return uc.tx.Do(ctx, func(ctx context.Context) error {
			at := uc.now()
			for _, l := range lines {
				c, err := uc.applyDelta(ctx, l.ItemID, l.Delta, model.ReasonForDelta(l.Delta), actor, at)
				if err != nil {
					if apperror.Is(err, apperror.KindNotFound) {
						return apperror.NotFound("Item %s not found", l.ItemID)
					}
					return err
				}
				changes = append(changes, *c)
			}

			if input.OrderID != "" {
				if uc.orders == nil {
					return apperror.Validation("Order fulfillment is not available")
				}
				order, err := uc.orders.CompleteForFulfillment(ctx, input.OrderID)
				if err != nil {
					return err
				}
				result.Order = order
			}
			return nil
		})
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			uc.logger.Error("failed to submit cart", zap.Int("lines", len(lines)), zap.Error(err))
		}
		return nil, err
	}

	for _, c := range changes {
		result.Items = append(result.Items, dto.StockResult{ItemID: c.ItemID, ItemName: c.ItemName, NewStock: c.After})
	}

	uc.logger.Info("cart submitted",
		zap.String("actor", actor),
		zap.Int("lines", len(changes)),
		zap.String("order_id", input.OrderID),
	)
	uc.afterCommit(ctx, changes)
	if result.Order != nil {
		uc.views.Invalidate(context.WithoutCancel(ctx), views.Orders)
	}

	return result, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (uc *inventoryUseCase) EditLog(ctx context.Context, input *dto.EditLogInput) (err error) {
	ctx, span := tracer.Start(ctx, "inventory.EditLog", trace.WithAttributes(
		attribute.String("log.id", input.LogID),
	))
	defer func() { endSpan(span, err) }()

	if input.Amount <= 0 {
		return apperror.Validation("Amount must be greater than zero")
	}

	var changes []applied
	err = uc.withTimeout(ctx, func(ctx context.Context) error {
		return uc.tx.Do(ctx, func(ctx context.Context) error {
			original, err := uc.repo.FindLog(ctx, input.LogID)
			if err != nil {
				return apperror.Internal("Failed to edit order log", err)
			}
			if original == nil {
				return apperror.NotFound("Log not found")
			}

			newAmount := input.Amount
			if original.Reason == model.ReasonConsumed || original.ChangeAmount < 0 {
				newAmount = -input.Amount
			}
			difference := newAmount - original.ChangeAmount
			if difference == 0 {
				return nil
			}

			// The guarded row update comes first so it holds the log's row lock
			// before stock moves.
			ok, err := uc.repo.UpdateLogAmount(ctx, original.ID, original.ChangeAmount, newAmount)
			if err != nil {
				return apperror.Internal("Failed to edit order log", err)
			}
			if !ok {
				return apperror.Conflict("Log was changed by someone else, reload and try again")
			}

			actor := fmt.Sprintf("System (Edit of log %s)", shortID(original.ID))
			c, err := uc.applyDelta(ctx, original.ItemID, difference, model.ReasonAdjustment, actor, uc.now())
			if err != nil {
				if apperror.Is(err, apperror.KindInsufficientStock) {
					return apperror.New(apperror.KindInsufficientStock, "Adjustment would result in negative stock")
				}
				return err
			}
			changes = append(changes, *c)
			return nil
		})
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			uc.logger.Error("failed to edit log", zap.String("log_id", input.LogID), zap.Error(err))
		}
		return err
	}

	if len(changes) > 0 {
		uc.afterCommit(ctx, changes)
	}
	return nil
}

func (uc *inventoryUseCase) DeleteLog(ctx context.Context, logID string) (err error) {
	ctx, span := tracer.Start(ctx, "inventory.DeleteLog", trace.WithAttributes(
		attribute.String("log.id", logID),
	))
	defer func() { endSpan(span, err) }()

	var changes []applied
	err = uc.withTimeout(ctx, func(ctx context.Context) error {
		return uc.tx.Do(ctx, func(ctx context.Context) error {
			original, err := uc.repo.FindLog(ctx, logID)
			if err != nil {
				return apperror.Internal("Failed to delete order log", err)
			}
			if original == nil {
				return apperror.NotFound("Log not found")
			}

			deleted, err := uc.repo.DeleteLog(ctx, original.ID)
			if err != nil {
				return apperror.Internal("Failed to delete order log", err)
			}
			if !deleted {
				return apperror.NotFound("Log not found")
			}

			actor := fmt.Sprintf("System (Deleted log %s)", shortID(original.ID))
			c, err := uc.applyDelta(ctx, original.ItemID, -original.ChangeAmount, model.ReasonAdjustment, actor, uc.now())
			if err != nil {
				if apperror.Is(err, apperror.KindInsufficientStock) {
					return apperror.New(apperror.KindInsufficientStock, "Deleting this log would result in negative stock")
				}
				return err
			}
			changes = append(changes, *c)
			return nil
		})
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			uc.logger.Error("failed to delete log", zap.String("log_id", logID), zap.Error(err))
		}
		return err
	}

	uc.afterCommit(ctx, changes)
	return nil
}

func (uc *inventoryUseCase) ListItemLogs(ctx context.Context, itemID string) ([]model.StockLog, error) {
	current, err := uc.repo.FindStock(ctx, itemID)
	if err != nil {
		return nil, apperror.Internal("Failed to fetch item history", err)
	}
	if current == nil {
		return nil, apperror.NotFound("Item not found")
	}
	logs, err := uc.repo.ListItemLogs(ctx, itemID, recentLogLimit)
	if err != nil {
		return nil, apperror.Internal("Failed to fetch item history", err)
	}
	return logs, nil
}

func (uc *inventoryUseCase) ListLogs(ctx context.Context) ([]model.LogEntry, error) {
	entries, err := uc.repo.ListLogs(ctx)
	if err != nil {
		return nil, apperror.Internal("Failed to fetch order history", err)
	}
	return entries, nil
}

func (uc *inventoryUseCase) StockOverTime(ctx context.Context) ([]model.StockPoint, error) {
	key := views.Key(views.History, "stock")
	var points []model.StockPoint
	if uc.readCache(ctx, key, &points) {
		return points, nil
	}

	var (
		total  int
		deltas []model.StockLog
	)
	// Both reads share one transaction so the total matches the ledger.
	err := uc.tx.Do(ctx, func(ctx context.Context) error {
		var err error
		if total, err = uc.repo.TotalStock(ctx); err != nil {
			return err
		}
		deltas, err = uc.repo.ListDeltas(ctx)
		return err
	})
	if err != nil {
		return nil, apperror.Internal("Failed to fetch stock history", err)
	}

	points = ReconstructHistory(total, deltas, uc.now())
	uc.writeCache(ctx, key, points)
	return points, nil
}

func (uc *inventoryUseCase) Statistics(ctx context.Context) (*model.Statistics, error) {
	key := views.Key(views.History, "stats")
	var stats model.Statistics
	if uc.readCache(ctx, key, &stats) {
		return &stats, nil
	}

	s, err := uc.repo.Statistics(ctx, topItemsLimit)
	if err != nil {
		return nil, apperror.Internal("Failed to fetch statistics", err)
	}
	uc.writeCache(ctx, key, s)
	return s, nil
}

func (uc *inventoryUseCase) readCache(ctx context.Context, key string, dest any) bool {
	if uc.cache == nil {
		return false
	}
	hit, err := uc.cache.GetJSON(ctx, key, dest)
	if err != nil {
		uc.logger.Warn("history cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

func (uc *inventoryUseCase) writeCache(ctx context.Context, key string, value any) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.SetJSON(ctx, key, value, uc.cacheTTL); err != nil {
		uc.logger.Warn("history cache write failed", zap.String("key", key), zap.Error(err))
	}
}
