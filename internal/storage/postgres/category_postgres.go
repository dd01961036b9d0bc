package postgres

import (
	"CivicLens/internal/app_errors"
	"CivicLens/internal/models"
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CategoryPostgres struct {
	db *pgxpool.Pool
}

func NewCategoryPostgres(db *pgxpool.Pool) *CategoryPostgres {
	return &CategoryPostgres{db: db}
}

func (r *CategoryPostgres) CreateCategory(ctx context.Context, category *models.Category) (uuid.UUID, error) {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO categories (id, name, slug, description)
		VALUES ($1, $2, $3, $4)
	`, category.ID, category.Name, category.Slug, category.Description)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return uuid.Nil, app_errors.NewConflict("category slug already in use")
		}
		return uuid.Nil, err
	}
	return category.ID, nil
}

func (r *CategoryPostgres) CategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category := &models.Category{}
	err := r.db.QueryRow(ctx, `
		SELECT id, name, slug, COALESCE(description, '') FROM categories WHERE id = $1
	`, id).Scan(&category.ID, &category.Name, &category.Slug, &category.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.NewNotFound("category", id.String())
		}
		return nil, err
	}
	return category, nil
}

func (r *CategoryPostgres) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, slug, COALESCE(description, '') FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *CategoryPostgres) UpdateCategory(ctx context.Context, category models.Category) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE categories SET name = $2, slug = $3, description = $4 WHERE id = $1
	`, category.ID, category.Name, category.Slug, category.Description)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.NewNotFound("category", category.ID.String())
	}
	return nil
}

func (r *CategoryPostgres) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.NewNotFound("category", id.String())
	}
	return nil
}
