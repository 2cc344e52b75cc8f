package repository

import (
	"context"
	"database/sql"
	"errors"

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

func (r *SQLRepository) Create(ctx context.Context, l *model.Location) error {
	query := `
		INSERT INTO locations (id, name, slug, created_at)
		VALUES (:id, :name, :slug, :created_at)
	`
	_, err := sqlx.NamedExecContext(ctx, database.Executor(ctx, r.DB), query, l)
	return err
}

func (r *SQLRepository) FindByID(ctx context.Context, id string) (*model.Location, error) {
	return r.findOne(ctx, `SELECT id, name, slug, created_at FROM locations WHERE id = ?`, id)
}

func (r *SQLRepository) FindBySlug(ctx context.Context, slug string) (*model.Location, error) {
	return r.findOne(ctx, `SELECT id, name, slug, created_at FROM locations WHERE slug = ?`, slug)
}

func (r *SQLRepository) findOne(ctx context.Context, query string, arg any) (*model.Location, error) {
	ext := database.Executor(ctx, r.DB)

	var l model.Location
	if err := sqlx.GetContext(ctx, ext, &l, ext.Rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func (r *SQLRepository) FindAll(ctx context.Context) ([]model.Location, error) {
	locations := []model.Location{}
	err := sqlx.SelectContext(ctx, database.Executor(ctx, r.DB), &locations,
		`SELECT id, name, slug, created_at FROM locations ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	return locations, nil
}
