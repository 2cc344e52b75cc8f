package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/stockroom-service/internal/apperror"
	"github.com/fekuna/stockroom-service/internal/item"
	"github.com/fekuna/stockroom-service/internal/location"
	"github.com/fekuna/stockroom-service/internal/model"
	"github.com/fekuna/stockroom-service/internal/order"
	"github.com/fekuna/stockroom-service/internal/order/dto"
	"github.com/fekuna/stockroom-service/internal/views"
	"github.com/fekuna/stockroom-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

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
	// SplitByStorage files normal and cold items of one request as sibling
	// orders.
	SplitByStorage bool
	Cache          Cache
	CacheTTL       time.Duration
	Views          views.Invalidator
}

type orderUseCase struct {
	repo      order.Repository
	locations location.Repository
	items     item.Repository
	tx        TxRunner
	split     bool
	cache     Cache
	cacheTTL  time.Duration
	views     views.Invalidator
	logger    logger.ZapLogger
	now       func() time.Time
}

func NewOrderUseCase(
	repo order.Repository,
	locations location.Repository,
	items item.Repository,
	tx TxRunner,
	opts Options,
	log logger.ZapLogger,
) order.UseCase {
	uc := &orderUseCase{
		repo:      repo,
		locations: locations,
		items:     items,
		tx:        tx,
		split:     opts.SplitByStorage,
		cache:     opts.Cache,
		cacheTTL:  opts.CacheTTL,
		views:     opts.Views,
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
	}
	if uc.views == nil {
		uc.views = views.Noop{}
	}
	if uc.cacheTTL <= 0 {
		uc.cacheTTL = time.Minute
	}
	return uc
}

func (uc *orderUseCase) SubmitRequest(ctx context.Context, input *dto.SubmitRequestInput) (*dto.SubmitRequestResult, error) {
	seen := map[string]struct{}{}
	lines := make([]dto.RequestLine, 0, len(input.Lines))
	for _, l := range input.Lines {
		if l.Quantity <= 0 {
			continue
		}
		if _, err := uuid.Parse(l.ItemID); err != nil {
			return nil, apperror.Validation("Invalid item id %q", l.ItemID)
		}
		if _, dup := seen[l.ItemID]; dup {
			return nil, apperror.Validation("Item %s appears more than once in the request", l.ItemID)
		}
		seen[l.ItemID] = struct{}{}
		lines = append(lines, l)
	}
	if len(lines) == 0 {
		return nil, apperror.Validation("No items selected")
	}

	result := &dto.SubmitRequestResult{}
	err := uc.tx.Do(ctx, func(ctx context.Context) error {
		loc, err := uc.locations.FindByID(ctx, input.LocationID)
		if err != nil {
			return apperror.Internal("Failed to submit request", err)
		}
		if loc == nil {
			return apperror.NotFound("Location not found")
		}

		ids := make([]string, len(lines))
		for i, l := range lines {
			ids[i] = l.ItemID
		}
		found, err := uc.items.FindByIDs(ctx, ids)
		if err != nil {
			return apperror.Internal("Failed to submit request", err)
		}
		classes := make(map[string]model.StorageClass, len(found))
		for _, it := range found {
			classes[it.ID] = it.StorageClass
		}
		for _, id := range ids {
			if _, ok := classes[id]; !ok {
				return apperror.NotFound("Item %s not found", id)
			}
		}

		now := uc.now()
		for _, g := range uc.group(lines, classes) {
			o := model.Order{
				ID:           uuid.New().String(),
				LocationID:   loc.ID,
				Status:       model.OrderNew,
				StorageClass: g.class,
				CreatedAt:    now,
			}
			orderLines := make([]model.OrderLine, 0, len(g.lines))
			for _, l := range g.lines {
				// v7 ids keep lines in request order.
				lineID, err := uuid.NewV7()
				if err != nil {
					return apperror.Internal("Failed to submit request", err)
				}
				orderLines = append(orderLines, model.OrderLine{
					ID:       lineID.String(),
					OrderID:  o.ID,
					ItemID:   l.ItemID,
					Quantity: l.Quantity,
				})
			}
			if err := uc.repo.Create(ctx, &o, orderLines); err != nil {
				return apperror.Internal("Failed to submit request", err)
			}
			result.Orders = append(result.Orders, o)
		}
		return nil
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			uc.logger.Error("failed to submit request", zap.String("location_id", input.LocationID), zap.Error(err))
		}
		return nil, err
	}

	result.Groups = len(result.Orders)
	uc.logger.Info("request submitted",
		zap.String("location_id", input.LocationID),
		zap.Int("lines", len(lines)),
		zap.Int("groups", result.Groups),
	)
	uc.views.Invalidate(ctx, views.Orders)
	return result, nil
}

type lineGroup struct {
	class *model.StorageClass
	lines []dto.RequestLine
}

// group splits lines by storage class, normal before cold. Without splitting
// everything lands in one untagged group.
func (uc *orderUseCase) group(lines []dto.RequestLine, classes map[string]model.StorageClass) []lineGroup {
	if !uc.split {
		return []lineGroup{{lines: lines}}
	}
	var groups []lineGroup
	for _, class := range []model.StorageClass{model.StorageNormal, model.StorageCold} {
		var matched []dto.RequestLine
		for _, l := range lines {
			if classes[l.ItemID] == class {
				matched = append(matched, l)
			}
		}
		if len(matched) > 0 {
			c := class
			groups = append(groups, lineGroup{class: &c, lines: matched})
		}
	}
	return groups
}

// transition applies one enumerated move and stamps or clears completedAt.
func (uc *orderUseCase) transition(ctx context.Context, o *model.Order, to model.OrderStatus) error {
	if !model.CanTransition(o.Status, to) {
		return apperror.Validation("Cannot move order from %s to %s", o.Status, to)
	}
	var completedAt *time.Time
	if to == model.OrderDone {
		now := uc.now()
		completedAt = &now
	}

	ok, err := uc.repo.UpdateStatus(ctx, o.ID, o.Status, to, completedAt)
	if err != nil {
		return apperror.Internal("Failed to update order status", err)
	}
	if !ok {
		return apperror.Conflict("Order was updated by someone else, reload and try again")
	}
	o.Status = to
	o.CompletedAt = completedAt
	return nil
}

func (uc *orderUseCase) findOrder(ctx context.Context, id string) (*model.Order, error) {
	o, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal("Failed to fetch order", err)
	}
	if o == nil {
		return nil, apperror.NotFound("Order not found")
	}
	return o, nil
}

func (uc *orderUseCase) UpdateStatus(ctx context.Context, input *dto.UpdateStatusInput) (*model.Order, error) {
	to := model.OrderStatus(strings.TrimSpace(input.Status))
	if !to.Valid() {
		return nil, apperror.Validation("Unknown order status %q", input.Status)
	}

	var o *model.Order
	err := uc.tx.Do(ctx, func(ctx context.Context) error {
		var err error
		if o, err = uc.findOrder(ctx, input.OrderID); err != nil {
			return err
		}
		return uc.transition(ctx, o, to)
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			uc.logger.Error("failed to update order status", zap.String("order_id", input.OrderID), zap.Error(err))
		}
		return nil, err
	}

	uc.logger.Info("order status updated", zap.String("order_id", o.ID), zap.String("status", string(o.Status)))
	uc.views.Invalidate(ctx, views.Orders)
	return o, nil
}

func (uc *orderUseCase) CompleteForFulfillment(ctx context.Context, orderID string) (*model.Order, error) {
	var o *model.Order
	err := uc.tx.Do(ctx, func(ctx context.Context) error {
		var err error
		if o, err = uc.findOrder(ctx, orderID); err != nil {
			return err
		}
		if o.Status == model.OrderDone {
			return apperror.Validation("Order is already done")
		}
		if o.Status == model.OrderNew {
			if err := uc.transition(ctx, o, model.OrderInProgress); err != nil {
				return err
			}
		}
		return uc.transition(ctx, o, model.OrderDone)
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (uc *orderUseCase) GetOrderAsCart(ctx context.Context, orderID string) (model.Cart, error) {
	lines, err := uc.repo.FindLines(ctx, orderID)
	if err != nil {
		uc.logger.Error("failed to load order lines", zap.String("order_id", orderID), zap.Error(err))
		return nil, apperror.Internal("Failed to get order for cart", err)
	}
	if len(lines) == 0 {
		return nil, apperror.NotFound("Order not found or has no items")
	}

	cart := make(model.Cart, 0, len(lines))
	for _, l := range lines {
		cart = append(cart, model.CartLine{ItemID: l.ItemID, Delta: -l.Quantity})
	}
	return cart, nil
}

func (uc *orderUseCase) GetOrder(ctx context.Context, orderID string) (*model.OrderWithDetails, error) {
	o, err := uc.repo.FindDetailsByID(ctx, orderID)
	if err != nil {
		uc.logger.Error("failed to fetch order", zap.String("order_id", orderID), zap.Error(err))
		return nil, apperror.Internal("Failed to fetch order", err)
	}
	if o == nil {
		return nil, apperror.NotFound("Order not found")
	}
	return o, nil
}

func (uc *orderUseCase) ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.OrderWithDetails, error) {
	f := dto.OrderFilters{Status: filters.Status, StorageClass: filters.StorageClass}
	if f.Status != "" && f.Status != "all" && !model.OrderStatus(f.Status).Valid() {
		return nil, apperror.Validation("Unknown order status %q", f.Status)
	}
	if f.StorageClass != "" && !model.StorageClass(f.StorageClass).Valid() {
		return nil, apperror.Validation("Unknown storage class %q", f.StorageClass)
	}

	key := views.Key(views.Orders, "list", orDefault(f.Status, "all"), orDefault(f.StorageClass, "any"))
	var orders []model.OrderWithDetails
	if uc.readCache(ctx, key, &orders) {
		return orders, nil
	}

	orders, err := uc.repo.FindDetails(ctx, &f)
	if err != nil {
		uc.logger.Error("failed to fetch orders", zap.Error(err))
		return nil, apperror.Internal("Failed to fetch orders", err)
	}
	uc.writeCache(ctx, key, orders)
	return orders, nil
}

func (uc *orderUseCase) ListOrdersByLocation(ctx context.Context, locationID string) ([]model.OrderWithDetails, error) {
	loc, err := uc.locations.FindByID(ctx, locationID)
	if err != nil {
		return nil, apperror.Internal("Failed to fetch location orders", err)
	}
	if loc == nil {
		return nil, apperror.NotFound("Location not found")
	}

	orders, err := uc.repo.FindDetails(ctx, &dto.OrderFilters{LocationID: locationID, NewestFirst: true})
	if err != nil {
		uc.logger.Error("failed to fetch location orders", zap.String("location_id", locationID), zap.Error(err))
		return nil, apperror.Internal("Failed to fetch location orders", err)
	}
	return orders, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func (uc *orderUseCase) readCache(ctx context.Context, key string, dest any) bool {
	if uc.cache == nil {
		return false
	}
	hit, err := uc.cache.GetJSON(ctx, key, dest)
	if err != nil {
		uc.logger.Warn("order cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

func (uc *orderUseCase) writeCache(ctx context.Context, key string, value any) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.SetJSON(ctx, key, value, uc.cacheTTL); err != nil {
		uc.logger.Warn("order cache write failed", zap.String("key", key), zap.Error(err))
	}
}
