package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/stockroom-service/internal/apperror"
	"github.com/fekuna/stockroom-service/internal/events"
	"github.com/fekuna/stockroom-service/internal/inventory"
	"github.com/fekuna/stockroom-service/internal/inventory/dto"
	"github.com/fekuna/stockroom-service/internal/inventory/repository"
	itemrepo "github.com/fekuna/stockroom-service/internal/item/repository"
	"github.com/fekuna/stockroom-service/internal/model"
	"github.com/fekuna/stockroom-service/internal/notify"
	"github.com/fekuna/stockroom-service/internal/views"
	"github.com/fekuna/stockroom-service/pkg/database"
	"github.com/fekuna/stockroom-service/pkg/database/dbtest"
	"github.com/fekuna/stockroom-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db     *sqlx.DB
	uc     inventory.UseCase
	alerts *notify.Recorder
	events *events.Recorder
	views  *views.Recorder
}

func newFixture(t *testing.T, configure ...func(*Options)) *fixture {
	t.Helper()
	db := dbtest.New(t)
	f := &fixture{
		db:     db,
		alerts: &notify.Recorder{},
		events: &events.Recorder{},
		views:  &views.Recorder{},
	}
	opts := Options{Notifier: f.alerts, Events: f.events, Views: f.views}
	for _, c := range configure {
		c(&opts)
	}
	f.uc = NewInventoryUseCase(repository.NewSQLRepository(db), database.NewTxManager(db), opts, logger.NewNop())
	return f
}

func (f *fixture) seedItem(t *testing.T, name string, stock, threshold int) *model.Item {
	t.Helper()
	now := time.Now().UTC()
	it := &model.Item{
		ID:              uuid.NewString(),
		Name:            name,
		SKU:             name + "-" + uuid.NewString()[:8],
		Category:        "Coffee",
		Stock:           stock,
		MinThreshold:    threshold,
		QuantityPerUnit: 1,
		UnitName:        "case",
		StorageClass:    model.StorageNormal,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, itemrepo.NewSQLRepository(f.db).Create(context.Background(), it))
	return it
}

func (f *fixture) stock(t *testing.T, itemID string) int {
	t.Helper()
	var s int
	require.NoError(t, f.db.Get(&s, f.db.Rebind(`SELECT stock FROM items WHERE id = ?`), itemID))
	return s
}

func (f *fixture) logs(t *testing.T, itemID string) []model.StockLog {
	t.Helper()
	var logs []model.StockLog
	require.NoError(t, f.db.Select(&logs, f.db.Rebind(`
		SELECT id, item_id, change_amount, reason, user_name, created_at
		FROM logs WHERE item_id = ? ORDER BY created_at, id`), itemID))
	return logs
}

func consume(itemID string, n int) *dto.ApplyDeltaInput {
	return &dto.ApplyDeltaInput{ItemID: itemID, Delta: -n, Reason: model.ReasonConsumed, Actor: "Sam"}
}

func TestApplyDelta_WritesLog(t *testing.T) {
	f := newFixture(t)
	it := f.seedItem(t, "Beans", 10, 2)

	res, err := f.uc.ApplyDelta(context.Background(), &dto.ApplyDeltaInput{ItemID: it.ID, Delta: 4, Actor: "Sam"})
	require.NoError(t, err)

	assert.Equal(t, 14, res.NewStock)
	assert.Equal(t, "Beans", res.ItemName)
	logs := f.logs(t, it.ID)
	require.Len(t, logs, 1)
	assert.Equal(t, 4, logs[0].ChangeAmount)
	assert.Equal(t, model.ReasonRestocked, logs[0].Reason)
	require.NotNil(t, logs[0].UserName)
	assert.Equal(t, "Sam", *logs[0].UserName)

	assert.Contains(t, f.views.Views(), views.ItemPage(it.ID))
	require.Len(t, f.events.Events(), 1)
	assert.Equal(t, 14, f.events.Events()[0].Stock)
}

func TestApplyDelta_RejectionChangesNothing(t *testing.T) {
	f := newFixture(t)
	it := f.seedItem(t, "Beans", 3, 1)

	for i := 0; i < 2; i++ {
		_, err := f.uc.ApplyDelta(context.Background(), consume(it.ID, 5))
		require.Error(t, err)
		assert.True(t, apperror.Is(err, apperror.KindInsufficientStock))
		assert.Equal(t, "Insufficient stock for Beans. Available: 3", apperror.DisplayMessage(err, ""))
	}

	assert.Equal(t, 3, f.stock(t, it.ID))
	assert.Empty(t, f.logs(t, it.ID))
	assert.Empty(t, f.events.Events())
}

func TestApplyDelta_UnknownItem(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.ApplyDelta(context.Background(), consume(uuid.NewString(), 1))
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = f.uc.ApplyDelta(context.Background(), consume("not-an-id", 1))
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestApplyDelta_ZeroDeltaWritesNoLog(t *testing.T) {
	f := newFixture(t)
	it := f.seedItem(t, "Beans", 3, 1)

	res, err := f.uc.ApplyDelta(context.Background(), &dto.ApplyDeltaInput{ItemID: it.ID, Delta: 0})
	require.NoError(t, err)

	assert.Equal(t, 3, res.NewStock)
	assert.Empty(t, f.logs(t, it.ID))
}

func TestApplyDelta_ConcurrentMutatorsNeverOversell(t *testing.T) {
	f := newFixture(t)
	it := f.seedItem(t, "Beans", 50, 0)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.ApplyDelta(context.Background(), consume(it.ID, 3))
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.True(t, apperror.Is(err, apperror.KindInsufficientStock), "unexpected error %v", err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 16, succeeded)
	assert.Equal(t, 50-3*succeeded, f.stock(t, it.ID))
	assert.Len(t, f.logs(t, it.ID), succeeded)
}

func TestLedgerMatchesStock(t *testing.T) {
	f := newFixture(t)
	it := f.seedItem(t, "Milk", 7, 2)
	ctx := context.Background()

	for _, d := range []int{5, -3, -20, 12, -9, -1} {
		_, _ = f.uc.ApplyDelta(ctx, &dto.ApplyDeltaInput{ItemID: it.ID, Delta: d})
	}

	sum := 0
	for _, l := range f.logs(t, it.ID) {
		sum += l.ChangeAmount
	}
	assert.Equal(t, f.stock(t, it.ID)-7, sum)
	assert.Equal(t, 11, f.stock(t, it.ID))
}

func TestSubmitCart_AllOrNothing(t *testing.T) {
	f := newFixture(t)
	a := f.seedItem(t, "Alpha", 10, 0)
	b := f.seedItem(t, "Bravo", 2, 0)

	_, err := f.uc.SubmitCart(context.Background(), &dto.SubmitCartInput{
		Actor: "Sam",
		Lines: model.Cart{{ItemID: a.ID, Delta: -5}, {ItemID: b.ID, Delta: -3}},
	})

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindInsufficientStock))
	assert.Equal(t, "Insufficient stock for Bravo. Available: 2", apperror.DisplayMessage(err, ""))
	assert.Equal(t, 10, f.stock(t, a.ID))
	assert.Equal(t, 2, f.stock(t, b.ID))
	assert.Empty(t, f.logs(t, a.ID))
	assert.Empty(t, f.alerts.Alerts())
}

func TestSubmitCart_Validation(t *testing.T) {
	f := newFixture(t)
	it := f.seedItem(t, "Alpha", 10, 0)
	ctx := context.Background()

	cases := map[string]*dto.SubmitCartInput{
		"blank actor":  {Actor: "  ", Lines: model.Cart{{ItemID: it.ID, Delta: -1}}},
		"empty cart":   {Actor: "Sam"},
		"bad item id":  {Actor: "Sam", Lines: model.Cart{{ItemID: "x'; DROP TABLE items", Delta: -1}}},
		"duplicate id": {Actor: "Sam", Lines: model.Cart{{ItemID: it.ID, Delta: -1}, {ItemID: it.ID, Delta: 2}}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.uc.SubmitCart(ctx, in)
			assert.True(t, apperror.Is(err, apperror.KindValidation), "got %v", err)
		})
	}
	assert.Equal(t, 10, f.stock(t, it.ID))
}

func TestSubmitCart_SkipsZeroAndAbortsOnMissingItem(t *testing.T) {
	f := newFixture(t)
	a := f.seedItem(t, "Alpha", 10, 0)
	b := f.seedItem(t, "Bravo", 10, 0)
	ctx := context.Background()

	res, err := f.uc.SubmitCart(ctx, &dto.SubmitCartInput{
		Actor: "Sam",
		Lines: model.Cart{{ItemID: a.ID, Delta: -2}, {ItemID: b.ID, Delta: 0}},
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, 8, res.Items[0].NewStock)
	assert.Empty(t, f.logs(t, b.ID))

	missing := uuid.NewString()
	_, err = f.uc.SubmitCart(ctx, &dto.SubmitCartInput{
		Actor: "Sam",
		Lines: model.Cart{{ItemID: a.ID, Delta: -2}, {ItemID: missing, Delta: -1}},
	})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.Equal(t, fmt.Sprintf("Item %s not found", missing), apperror.DisplayMessage(err, ""))
	assert.Equal(t, 8, f.stock(t, a.ID))
}

func TestThresholdCrossing_SingleItem(t *testing.T) {
	f := newFixture(t)
	it := f.seedItem(t, "Oat Milk", 10, 5)
	ctx := context.Background()

	_, err := f.uc.ApplyDelta(ctx, consume(it.ID, 6))
	require.NoError(t, err)
	alerts := f.alerts.Alerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, 4, alerts[0].CurrentStock)
	assert.Equal(t, 5, alerts[0].MinThreshold)
	assert.Equal(t, it.SKU, alerts[0].SKU)

	_, err = f.uc.ApplyDelta(ctx, consume(it.ID, 1))
	require.NoError(t, err)
	assert.Len(t, f.alerts.Alerts(), 1)
}

func TestThresholdCrossing_CartMatchesSingleItemPath(t *testing.T) {
	f := newFixture(t)
	a := f.seedItem(t, "Alpha", 10, 5)
	b := f.seedItem(t, "Bravo", 3, 5)
	c := f.seedItem(t, "Charlie", 6, 5)
	ctx := context.Background()

	_, err := f.uc.SubmitCart(ctx, &dto.SubmitCartInput{
		Actor: "Sam",
		Lines: model.Cart{
			{ItemID: a.ID, Delta: -5}, // 10 -> 5, lands on the threshold
			{ItemID: b.ID, Delta: -1}, // already below
			{ItemID: c.ID, Delta: 4},  // restock never alerts
		},
	})
	require.NoError(t, err)

	alerts := f.alerts.Alerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, a.ID, alerts[0].ItemID)
	assert.Equal(t, 5, alerts[0].CurrentStock)
}

func TestThresholdCrossing_RestockThenConsumeAlertsAgain(t *testing.T) {
	f := newFixture(t)
	it := f.seedItem(t, "Beans", 6, 5)
	ctx := context.Background()

	_, err := f.uc.ApplyDelta(ctx, consume(it.ID, 2))
	require.NoError(t, err)
	_, err = f.uc.ApplyDelta(ctx, &dto.ApplyDeltaInput{ItemID: it.ID, Delta: 10})
	require.NoError(t, err)
	_, err = f.uc.ApplyDelta(ctx, consume(it.ID, 10))
	require.NoError(t, err)

	assert.Len(t, f.alerts.Alerts(), 2)
}

type fakeOrders struct {
	err   error
	calls []string
}

func (o *fakeOrders) CompleteForFulfillment(_ context.Context, id string) (*model.Order, error) {
	o.calls = append(o.calls, id)
	if o.err != nil {
		return nil, o.err
	}
	now := time.Now()
	return &model.Order{ID: id, Status: model.OrderDone, CompletedAt: &now}, nil
}

func TestSubmitCart_CompletesLinkedOrder(t *testing.T) {
	orders := &fakeOrders{}
	f := newFixture(t, func(o *Options) { o.Orders = orders })
	it := f.seedItem(t, "Alpha", 10, 0)

	res, err := f.uc.SubmitCart(context.Background(), &dto.SubmitCartInput{
		Actor:   "Sam",
		OrderID: "order-1",
		Lines:   model.Cart{{ItemID: it.ID, Delta: -4}},
	})
	require.NoError(t, err)

	require.NotNil(t, res.Order)
	assert.Equal(t, model.OrderDone, res.Order.Status)
	assert.Equal(t, []string{"order-1"}, orders.calls)
	assert.Contains(t, f.views.Views(), views.Orders)
}

func TestSubmitCart_OrderFailureRollsBackStock(t *testing.T) {
	orders := &fakeOrders{err: apperror.Validation("Order is already done")}
	f := newFixture(t, func(o *Options) { o.Orders = orders })
	it := f.seedItem(t, "Alpha", 10, 5)

	_, err := f.uc.SubmitCart(context.Background(), &dto.SubmitCartInput{
		Actor:   "Sam",
		OrderID: "order-1",
		Lines:   model.Cart{{ItemID: it.ID, Delta: -6}},
	})

	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Equal(t, 10, f.stock(t, it.ID))
	assert.Empty(t, f.logs(t, it.ID))
	assert.Empty(t, f.alerts.Alerts())
}

type stalledTx struct{}

func (stalledTx) Do(ctx context.Context, _ func(ctx context.Context) error) error {
	<-ctx.Done()
	return fmt.Errorf("begin tx: %w", ctx.Err())
}

func TestSubmitCart_TimeoutIsDistinct(t *testing.T) {
	db := dbtest.New(t)
	uc := NewInventoryUseCase(repository.NewSQLRepository(db), stalledTx{}, Options{Timeout: 20 * time.Millisecond}, logger.NewNop())

	_, err := uc.SubmitCart(context.Background(), &dto.SubmitCartInput{
		Actor: "Sam",
		Lines: model.Cart{{ItemID: uuid.NewString(), Delta: -1}},
	})

	assert.True(t, apperror.Is(err, apperror.KindTimeout))
	assert.False(t, apperror.Is(err, apperror.KindInsufficientStock))
}

func TestEditLog_CompensatingAdjustment(t *testing.T) {
	f := newFixture(t)
	it := f.seedItem(t, "Beans", 25, 0)
	ctx := context.Background()

	_, err := f.uc.ApplyDelta(ctx, consume(it.ID, 5))
	require.NoError(t, err)
	require.Equal(t, 20, f.stock(t, it.ID))
	original := f.logs(t, it.ID)[0]

	require.NoError(t, f.uc.EditLog(ctx, &dto.EditLogInput{LogID: original.ID, Amount: 8}))

	assert.Equal(t, 17, f.stock(t, it.ID))
	logs := f.logs(t, it.ID)
	require.Len(t, logs, 2)

	byID := map[string]model.StockLog{}
	for _, l := range logs {
		byID[l.ID] = l
	}
	assert.Equal(t, -8, byID[original.ID].ChangeAmount)
	assert.Equal(t, model.ReasonConsumed, byID[original.ID].Reason)

	var adjustment model.StockLog
	for _, l := range logs {
		if l.ID != original.ID {
			adjustment = l
		}
	}
	assert.Equal(t, -3, adjustment.ChangeAmount)
	assert.Equal(t, model.ReasonAdjustment, adjustment.Reason)
	require.NotNil(t, adjustment.UserName)
	assert.Equal(t, "System (Edit of log "+original.ID[:8]+")", *adjustment.UserName)
}

func TestEditLog_RejectedEditLeavesLog(t *testing.T) {
	f := newFixture(t)
	it := f.seedItem(t, "Beans", 10, 0)
	ctx := context.Background()

	_, err := f.uc.ApplyDelta(ctx, consume(it.ID, 8))
	require.NoError(t, err)
	original := f.logs(t, it.ID)[0]

	err = f.uc.EditLog(ctx, &dto.EditLogInput{LogID: original.ID, Amount: 20})
	assert.True(t, apperror.Is(err, apperror.KindInsufficientStock))
	assert.Equal(t, "Adjustment would result in negative stock", apperror.DisplayMessage(err, ""))

	assert.Equal(t, 2, f.stock(t, it.ID))
	logs := f.logs(t, it.ID)
	require.Len(t, logs, 1)
	assert.Equal(t, -8, logs[0].ChangeAmount)
}

func TestEditLog_NoDifferenceIsNoop(t *testing.T) {
	f := newFixture(t)
	it := f.seedItem(t, "Beans", 10, 0)
	ctx := context.Background()

	_, err := f.uc.ApplyDelta(ctx, &dto.ApplyDeltaInput{ItemID: it.ID, Delta: 4})
	require.NoError(t, err)
	original := f.logs(t, it.ID)[0]

	require.NoError(t, f.uc.EditLog(ctx, &dto.EditLogInput{LogID: original.ID, Amount: 4}))
	assert.Len(t, f.logs(t, it.ID), 1)
	assert.Equal(t, 14, f.stock(t, it.ID))

	err = f.uc.EditLog(ctx, &dto.EditLogInput{LogID: original.ID, Amount: 0})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	err = f.uc.EditLog(ctx, &dto.EditLogInput{LogID: "missing", Amount: 3})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestDeleteLog_ReversesAndRemoves(t *testing.T) {
	f := newFixture(t)
	it := f.seedItem(t, "Beans", 0, 0)
	ctx := context.Background()

	_, err := f.uc.ApplyDelta(ctx, &dto.ApplyDeltaInput{ItemID: it.ID, Delta: 10})
	require.NoError(t, err)
	_, err = f.uc.ApplyDelta(ctx, consume(it.ID, 8))
	require.NoError(t, err)
	logs := f.logs(t, it.ID)
	require.Len(t, logs, 2)
	restock, consumed := logs[0], logs[1]

	err = f.uc.DeleteLog(ctx, restock.ID)
	assert.True(t, apperror.Is(err, apperror.KindInsufficientStock))
	assert.Equal(t, "Deleting this log would result in negative stock", apperror.DisplayMessage(err, ""))
	assert.Equal(t, 2, f.stock(t, it.ID))
	assert.Len(t, f.logs(t, it.ID), 2)

	require.NoError(t, f.uc.DeleteLog(ctx, consumed.ID))
	assert.Equal(t, 10, f.stock(t, it.ID))

	logs = f.logs(t, it.ID)
	require.Len(t, logs, 2)
	for _, l := range logs {
		assert.NotEqual(t, consumed.ID, l.ID)
	}
	assert.Equal(t, 8, logs[1].ChangeAmount)
	assert.Equal(t, model.ReasonAdjustment, logs[1].Reason)

	err = f.uc.DeleteLog(ctx, consumed.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestStockOverTime_ReplaysToCurrentTotal(t *testing.T) {
	f := newFixture(t)
	a := f.seedItem(t, "Alpha", 10, 0)
	b := f.seedItem(t, "Bravo", 5, 0)
	ctx := context.Background()

	for _, in := range []*dto.ApplyDeltaInput{
		{ItemID: a.ID, Delta: -4},
		{ItemID: b.ID, Delta: 7},
		{ItemID: a.ID, Delta: -1},
	} {
		_, err := f.uc.ApplyDelta(ctx, in)
		require.NoError(t, err)
	}

	points, err := f.uc.StockOverTime(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(points), 2)

	assert.Equal(t, 15, points[0].TotalStock)
	assert.Equal(t, 17, points[len(points)-1].TotalStock)
}

func TestListLogsAndStatistics(t *testing.T) {
	f := newFixture(t)
	a := f.seedItem(t, "Alpha", 50, 0)
	b := f.seedItem(t, "Bravo", 50, 0)
	ctx := context.Background()

	for _, in := range []*dto.ApplyDeltaInput{
		consume(a.ID, 3),
		consume(b.ID, 9),
		{ItemID: a.ID, Delta: 6, Reason: model.ReasonRestocked},
		consume(a.ID, 2),
	} {
		_, err := f.uc.ApplyDelta(ctx, in)
		require.NoError(t, err)
	}

	entries, err := f.uc.ListLogs(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, -2, entries[0].ChangeAmount)
	require.NotNil(t, entries[0].ItemName)
	assert.Equal(t, "Alpha", *entries[0].ItemName)

	stats, err := f.uc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 14, stats.TotalConsumed)
	assert.Equal(t, 6, stats.TotalRestocked)
	require.Len(t, stats.TopItems, 2)
	assert.Equal(t, b.ID, stats.TopItems[0].ItemID)
	assert.Equal(t, 9, stats.TopItems[0].TotalConsumed)
	require.Len(t, stats.CategoryStats, 1)
	assert.Equal(t, 14, stats.CategoryStats[0].TotalConsumed)

	recent, err := f.uc.ListItemLogs(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, recent, 3)

	_, err = f.uc.ListItemLogs(ctx, uuid.NewString())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

// snapshotRepo answers FindLog from rows captured earlier, the view a
// transaction that started before a concurrent edit or delete would have.
type snapshotRepo struct {
	inventory.Repository
	logs map[string]model.StockLog
}

func (r *snapshotRepo) FindLog(_ context.Context, id string) (*model.StockLog, error) {
	l, ok := r.logs[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (f *fixture) staleUseCase(snapshot ...model.StockLog) inventory.UseCase {
	repo := &snapshotRepo{Repository: repository.NewSQLRepository(f.db), logs: map[string]model.StockLog{}}
	for _, l := range snapshot {
		repo.logs[l.ID] = l
	}
	return NewInventoryUseCase(repo, database.NewTxManager(f.db), Options{}, logger.NewNop())
}

func TestDeleteLog_OverlappingDeleteReversesOnce(t *testing.T) {
	f := newFixture(t)
	it := f.seedItem(t, "Beans", 10, 0)
	ctx := context.Background()

	_, err := f.uc.ApplyDelta(ctx, &dto.ApplyDeltaInput{ItemID: it.ID, Delta: 10})
	require.NoError(t, err)
	restock := f.logs(t, it.ID)[0]
	stale := f.staleUseCase(restock)

	require.NoError(t, f.uc.DeleteLog(ctx, restock.ID))
	require.Equal(t, 10, f.stock(t, it.ID))

	err = stale.DeleteLog(ctx, restock.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.Equal(t, 10, f.stock(t, it.ID))
	assert.Len(t, f.logs(t, it.ID), 1)
}

func TestEditLog_OverlappingEditAppliesOnce(t *testing.T) {
	f := newFixture(t)
	it := f.seedItem(t, "Beans", 25, 0)
	ctx := context.Background()

	_, err := f.uc.ApplyDelta(ctx, consume(it.ID, 5))
	require.NoError(t, err)
	original := f.logs(t, it.ID)[0]
	stale := f.staleUseCase(original)

	require.NoError(t, f.uc.EditLog(ctx, &dto.EditLogInput{LogID: original.ID, Amount: 8}))
	require.Equal(t, 17, f.stock(t, it.ID))

	err = stale.EditLog(ctx, &dto.EditLogInput{LogID: original.ID, Amount: 8})
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	assert.Equal(t, 17, f.stock(t, it.ID))
	assert.Len(t, f.logs(t, it.ID), 2)
}
