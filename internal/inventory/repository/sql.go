package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fekuna/stockroom-service/internal/model"
	"github.com/fekuna/stockroom-service/pkg/database"
	"github.com/jmoiron/sqlx"
)

type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

type stockRow struct {
	Stock        int    `db:"stock"`
	Name         string `db:"name"`
	SKU          string `db:"sku"`
	Category     string `db:"category"`
	MinThreshold int    `db:"min_threshold"`
}

// ApplyDelta relies on the row lock taken by UPDATE: a concurrent writer
// blocks until this transaction ends and then re-checks the predicate
// against the committed stock.
func (r *SQLRepository) ApplyDelta(ctx context.Context, itemID string, delta int, at time.Time) (*model.StockChange, bool, error) {
	ext := database.Executor(ctx, r.DB)

	query := ext.Rebind(`
		UPDATE items
		SET stock = stock + ?, updated_at = ?
		WHERE id = ? AND stock + ? >= 0
		RETURNING stock, name, sku, category, min_threshold
	`)

	var row stockRow
	err := sqlx.GetContext(ctx, ext, &row, query, delta, at, itemID, delta)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &model.StockChange{
		ItemID:       itemID,
		ItemName:     row.Name,
		SKU:          row.SKU,
		Category:     row.Category,
		Before:       row.Stock - delta,
		After:        row.Stock,
		MinThreshold: row.MinThreshold,
	}, true, nil
}

func (r *SQLRepository) FindStock(ctx context.Context, itemID string) (*model.StockChange, error) {
	ext := database.Executor(ctx, r.DB)

	var row stockRow
	query := ext.Rebind(`SELECT stock, name, sku, category, min_threshold FROM items WHERE id = ?`)
	if err := sqlx.GetContext(ctx, ext, &row, query, itemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &model.StockChange{
		ItemID:       itemID,
		ItemName:     row.Name,
		SKU:          row.SKU,
		Category:     row.Category,
		Before:       row.Stock,
		After:        row.Stock,
		MinThreshold: row.MinThreshold,
	}, nil
}

func (r *SQLRepository) InsertLog(ctx context.Context, l *model.StockLog) error {
	query := `
		INSERT INTO logs (id, item_id, change_amount, reason, user_name, created_at)
		VALUES (:id, :item_id, :change_amount, :reason, :user_name, :created_at)
	`
	_, err := sqlx.NamedExecContext(ctx, database.Executor(ctx, r.DB), query, l)
	return err
}

func (r *SQLRepository) FindLog(ctx context.Context, id string) (*model.StockLog, error) {
	ext := database.Executor(ctx, r.DB)

	var l model.StockLog
	query := ext.Rebind(`
		SELECT id, item_id, change_amount, reason, user_name, created_at
		FROM logs WHERE id = ?
	`)
	if err := sqlx.GetContext(ctx, ext, &l, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

// UpdateLogAmount rewrites the amount only while it still equals from, so two
// overlapping edits of one log cannot both succeed.
func (r *SQLRepository) UpdateLogAmount(ctx context.Context, id string, from, to int) (bool, error) {
	ext := database.Executor(ctx, r.DB)
	res, err := ext.ExecContext(ctx,
		ext.Rebind(`UPDATE logs SET change_amount = ? WHERE id = ? AND change_amount = ?`),
		to, id, from,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *SQLRepository) DeleteLog(ctx context.Context, id string) (bool, error) {
	ext := database.Executor(ctx, r.DB)
	res, err := ext.ExecContext(ctx, ext.Rebind(`DELETE FROM logs WHERE id = ?`), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *SQLRepository) ListLogs(ctx context.Context) ([]model.LogEntry, error) {
	ext := database.Executor(ctx, r.DB)

	query := `
		SELECT
			l.id AS log_id,
			l.item_id,
			i.name AS item_name,
			i.sku AS item_sku,
			i.category AS item_category,
			l.change_amount,
			l.reason,
			l.user_name,
			l.created_at
		FROM logs l
		LEFT JOIN items i ON i.id = l.item_id
		ORDER BY l.created_at DESC, l.id DESC
	`
	entries := []model.LogEntry{}
	if err := sqlx.SelectContext(ctx, ext, &entries, query); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *SQLRepository) ListItemLogs(ctx context.Context, itemID string, limit int) ([]model.StockLog, error) {
	ext := database.Executor(ctx, r.DB)

	query := ext.Rebind(`
		SELECT id, item_id, change_amount, reason, user_name, created_at
		FROM logs
		WHERE item_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`)
	logs := []model.StockLog{}
	if err := sqlx.SelectContext(ctx, ext, &logs, query, itemID, limit); err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *SQLRepository) ListDeltas(ctx context.Context) ([]model.StockLog, error) {
	ext := database.Executor(ctx, r.DB)

	query := `
		SELECT id, item_id, change_amount, reason, user_name, created_at
		FROM logs
		ORDER BY created_at DESC, id DESC
	`
	logs := []model.StockLog{}
	if err := sqlx.SelectContext(ctx, ext, &logs, query); err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *SQLRepository) TotalStock(ctx context.Context) (int, error) {
	ext := database.Executor(ctx, r.DB)

	var total int
	if err := sqlx.GetContext(ctx, ext, &total, `SELECT COALESCE(SUM(stock), 0) FROM items`); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *SQLRepository) Statistics(ctx context.Context, topN int) (*model.Statistics, error) {
	ext := database.Executor(ctx, r.DB)
	stats := &model.Statistics{
		TopItems:      []model.ItemConsumption{},
		CategoryStats: []model.CategoryConsumption{},
	}

	err := sqlx.GetContext(ctx, ext, &stats.TotalConsumed,
		`SELECT COALESCE(SUM(ABS(change_amount)), 0) FROM logs WHERE reason = 'consumed'`)
	if err != nil {
		return nil, err
	}

	err = sqlx.GetContext(ctx, ext, &stats.TotalRestocked,
		`SELECT COALESCE(SUM(change_amount), 0) FROM logs WHERE reason = 'restocked'`)
	if err != nil {
		return nil, err
	}

	topQuery := ext.Rebind(`
		SELECT
			l.item_id,
			i.name AS item_name,
			i.category AS item_category,
			SUM(ABS(l.change_amount)) AS total_consumed
		FROM logs l
		LEFT JOIN items i ON i.id = l.item_id
		WHERE l.reason = 'consumed'
		GROUP BY l.item_id, i.name, i.category
		ORDER BY total_consumed DESC
		LIMIT ?
	`)
	if err := sqlx.SelectContext(ctx, ext, &stats.TopItems, topQuery, topN); err != nil {
		return nil, err
	}

	categoryQuery := `
		SELECT
			i.category AS category,
			SUM(ABS(l.change_amount)) AS total_consumed
		FROM logs l
		LEFT JOIN items i ON i.id = l.item_id
		WHERE l.reason = 'consumed'
		GROUP BY i.category
		ORDER BY total_consumed DESC
	`
	if err := sqlx.SelectContext(ctx, ext, &stats.CategoryStats, categoryQuery); err != nil {
		return nil, err
	}

	return stats, nil
}
