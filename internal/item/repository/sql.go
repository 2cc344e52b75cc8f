package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/stockroom-service/internal/item/dto"
	"github.com/fekuna/stockroom-service/internal/model"
	"github.com/fekuna/stockroom-service/pkg/database"
	"github.com/jmoiron/sqlx"
)

const itemColumns = `id, name, sku, category, stock, min_threshold, quantity_per_unit,
	unit_name, size, image_url, storage_class, created_at, updated_at`

// SQLRepository runs on both supported drivers; queries are written with ?
// placeholders and rebound per driver.
type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

func (r *SQLRepository) Create(ctx context.Context, it *model.Item) error {
	query := `
		INSERT INTO items (
			id, name, sku, category, stock, min_threshold, quantity_per_unit,
			unit_name, size, image_url, storage_class, created_at, updated_at
		)
		VALUES (
			:id, :name, :sku, :category, :stock, :min_threshold, :quantity_per_unit,
			:unit_name, :size, :image_url, :storage_class, :created_at, :updated_at
		)
	`
	_, err := sqlx.NamedExecContext(ctx, database.Executor(ctx, r.DB), query, it)
	return err
}

func (r *SQLRepository) FindByID(ctx context.Context, id string) (*model.Item, error) {
	ext := database.Executor(ctx, r.DB)

	var it model.Item
	query := ext.Rebind(`SELECT ` + itemColumns + ` FROM items WHERE id = ?`)
	err := sqlx.GetContext(ctx, ext, &it, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &it, nil
}

func (r *SQLRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Item, error) {
	if len(ids) == 0 {
		return []model.Item{}, nil
	}
	ext := database.Executor(ctx, r.DB)

	query, args, err := sqlx.In(`SELECT `+itemColumns+` FROM items WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("expand ids: %w", err)
	}

	var found []model.Item
	if err := sqlx.SelectContext(ctx, ext, &found, ext.Rebind(query), args...); err != nil {
		return nil, err
	}

	byID := make(map[string]model.Item, len(found))
	for _, it := range found {
		byID[it.ID] = it
	}
	items := make([]model.Item, 0, len(found))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			items = append(items, it)
		}
	}
	return items, nil
}

func (r *SQLRepository) FindAll(ctx context.Context, f *dto.ItemFilters) ([]model.Item, error) {
	ext := database.Executor(ctx, r.DB)

	conditions := []string{}
	args := []any{}

	if f != nil && f.SearchQuery != "" {
		// LOWER + LIKE behaves the same on Postgres and SQLite, unlike ILIKE.
		pattern := "%" + strings.ToLower(f.SearchQuery) + "%"
		conditions = append(conditions, "(LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(category) LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}
	if f != nil && f.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, f.Category)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := ext.Rebind(`SELECT ` + itemColumns + ` FROM items` + whereClause + ` ORDER BY name`)

	items := []model.Item{}
	if err := sqlx.SelectContext(ctx, ext, &items, query, args...); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *SQLRepository) FindAvailable(ctx context.Context) ([]model.AvailableItem, error) {
	ext := database.Executor(ctx, r.DB)

	query := `
		SELECT id, name, category, image_url, quantity_per_unit, unit_name, storage_class
		FROM items
		WHERE stock > 0
		ORDER BY category, name
	`
	items := []model.AvailableItem{}
	if err := sqlx.SelectContext(ctx, ext, &items, query); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *SQLRepository) Update(ctx context.Context, it *model.Item) error {
	query := `
		UPDATE items
		SET name = :name,
			sku = :sku,
			category = :category,
			min_threshold = :min_threshold,
			quantity_per_unit = :quantity_per_unit,
			unit_name = :unit_name,
			size = :size,
			image_url = :image_url,
			storage_class = :storage_class,
			updated_at = :updated_at
		WHERE id = :id
	`
	_, err := sqlx.NamedExecContext(ctx, database.Executor(ctx, r.DB), query, it)
	return err
}

func (r *SQLRepository) Delete(ctx context.Context, id string) (bool, error) {
	ext := database.Executor(ctx, r.DB)

	res, err := ext.ExecContext(ctx, ext.Rebind(`DELETE FROM items WHERE id = ?`), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SQLRepository) IsSKUUnique(ctx context.Context, sku, excludeID string) (bool, error) {
	ext := database.Executor(ctx, r.DB)

	var count int
	query := ext.Rebind(`SELECT COUNT(*) FROM items WHERE sku = ? AND id <> ?`)
	if err := sqlx.GetContext(ctx, ext, &count, query, sku, excludeID); err != nil {
		return false, err
	}
	return count == 0, nil
}
