package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/stockroom-service/internal/model"
	"github.com/fekuna/stockroom-service/internal/order/dto"
	"github.com/fekuna/stockroom-service/pkg/database"
	"github.com/jmoiron/sqlx"
)

const orderColumns = `id, location_id, status, storage_class, created_at, completed_at`

type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

// Create inserts the order and its lines. Callers wanting both to land
// together run it inside a transaction.
func (r *SQLRepository) Create(ctx context.Context, o *model.Order, lines []model.OrderLine) error {
	ext := database.Executor(ctx, r.DB)

	_, err := sqlx.NamedExecContext(ctx, ext, `
		INSERT INTO orders (id, location_id, status, storage_class, created_at, completed_at)
		VALUES (:id, :location_id, :status, :storage_class, :created_at, :completed_at)
	`, o)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range lines {
		_, err := sqlx.NamedExecContext(ctx, ext, `
			INSERT INTO order_items (id, order_id, item_id, quantity)
			VALUES (:id, :order_id, :item_id, :quantity)
		`, &lines[i])
		if err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}
	return nil
}

func (r *SQLRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	ext := database.Executor(ctx, r.DB)

	var o model.Order
	query := ext.Rebind(`SELECT ` + orderColumns + ` FROM orders WHERE id = ?`)
	if err := sqlx.GetContext(ctx, ext, &o, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *SQLRepository) FindLines(ctx context.Context, orderID string) ([]model.OrderLine, error) {
	ext := database.Executor(ctx, r.DB)

	lines := []model.OrderLine{}
	query := ext.Rebind(`SELECT id, order_id, item_id, quantity FROM order_items WHERE order_id = ? ORDER BY id`)
	if err := sqlx.SelectContext(ctx, ext, &lines, query, orderID); err != nil {
		return nil, err
	}
	return lines, nil
}

const detailColumns = `
	o.id, o.location_id, o.status, o.storage_class, o.created_at, o.completed_at,
	COALESCE(l.name, 'Unknown') AS location_name`

func (r *SQLRepository) FindDetails(ctx context.Context, f *dto.OrderFilters) ([]model.OrderWithDetails, error) {
	ext := database.Executor(ctx, r.DB)

	conditions := []string{}
	args := []any{}
	if f.Status != "" && f.Status != "all" {
		conditions = append(conditions, "o.status = ?")
		args = append(args, f.Status)
	}
	if f.StorageClass != "" {
		conditions = append(conditions, "o.storage_class = ?")
		args = append(args, f.StorageClass)
	}
	if f.LocationID != "" {
		conditions = append(conditions, "o.location_id = ?")
		args = append(args, f.LocationID)
	}

	query := `SELECT ` + detailColumns + ` FROM orders o LEFT JOIN locations l ON l.id = o.location_id`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	if f.NewestFirst {
		query += " ORDER BY o.created_at DESC, o.id DESC"
	} else {
		query += " ORDER BY o.created_at ASC, o.id ASC"
	}

	orders := []model.OrderWithDetails{}
	if err := sqlx.SelectContext(ctx, ext, &orders, ext.Rebind(query), args...); err != nil {
		return nil, err
	}
	if err := r.attachLines(ctx, ext, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *SQLRepository) FindDetailsByID(ctx context.Context, id string) (*model.OrderWithDetails, error) {
	ext := database.Executor(ctx, r.DB)

	var o model.OrderWithDetails
	query := ext.Rebind(`SELECT ` + detailColumns + ` FROM orders o LEFT JOIN locations l ON l.id = o.location_id WHERE o.id = ?`)
	if err := sqlx.GetContext(ctx, ext, &o, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	orders := []model.OrderWithDetails{o}
	if err := r.attachLines(ctx, ext, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// attachLines loads the lines of every order in one query.
func (r *SQLRepository) attachLines(ctx context.Context, ext sqlx.ExtContext, orders []model.OrderWithDetails) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		orders[i].Items = []model.OrderLineDetail{}
	}

	query, args, err := sqlx.In(`
		SELECT oi.id, oi.order_id, oi.item_id, COALESCE(i.name, 'Unknown Item') AS item_name, oi.quantity
		FROM order_items oi
		LEFT JOIN items i ON i.id = oi.item_id
		WHERE oi.order_id IN (?)
		ORDER BY oi.order_id, oi.id
	`, ids)
	if err != nil {
		return fmt.Errorf("expand order ids: %w", err)
	}

	var lines []model.OrderLineDetail
	if err := sqlx.SelectContext(ctx, ext, &lines, ext.Rebind(query), args...); err != nil {
		return err
	}

	index := make(map[string]int, len(orders))
	for i, o := range orders {
		index[o.ID] = i
	}
	for _, l := range lines {
		i := index[l.OrderID]
		orders[i].Items = append(orders[i].Items, l)
	}
	return nil
}

func (r *SQLRepository) UpdateStatus(ctx context.Context, id string, from, to model.OrderStatus, completedAt *time.Time) (bool, error) {
	ext := database.Executor(ctx, r.DB)

	query := ext.Rebind(`UPDATE orders SET status = ?, completed_at = ? WHERE id = ? AND status = ?`)
	res, err := ext.ExecContext(ctx, query, to, completedAt, id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
