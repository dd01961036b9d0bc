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

type AuthorityPostgres struct {
	db *pgxpool.Pool
}

func NewAuthorityPostgres(db *pgxpool.Pool) *AuthorityPostgres {
	return &AuthorityPostgres{db: db}
}

func (r *AuthorityPostgres) CreateAuthority(ctx context.Context, authority *models.Authority) (uuid.UUID, error) {
	if authority.ID == uuid.Nil {
		authority.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO authorities (id, name, city, region, department_id, address)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, authority.ID, authority.Name, authority.City, authority.Region, authority.DepartmentID, authority.Address)
	if err != nil {
		return uuid.Nil, err
	}
	return authority.ID, nil
}

func (r *AuthorityPostgres) AuthorityByID(ctx context.Context, id uuid.UUID) (*models.Authority, error) {
	authority := &models.Authority{}
	err := r.db.QueryRow(ctx, `
		SELECT id, name, city, region, department_id, COALESCE(address, '')
		FROM authorities WHERE id = $1
	`, id).Scan(&authority.ID, &authority.Name, &authority.City, &authority.Region,
		&authority.DepartmentID, &authority.Address)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.NewNotFound("authority", id.String())
		}
		return nil, err
	}

	authority.Categories, err = r.CategoriesFor(ctx, id)
	if err != nil {
		return nil, err
	}
	return authority, nil
}

// ListAuthorities returns every authority with its handled-category set
// preloaded, which is what the matcher iterates over.
func (r *AuthorityPostgres) ListAuthorities(ctx context.Context) ([]models.Authority, error) {
	rows, err := r.db.Query(ctx, `
		SELECT a.id, a.name, a.city, a.region, a.department_id, COALESCE(a.address, ''),
		       array_remove(array_agg(ac.category_id), NULL)
		FROM authorities a
		LEFT JOIN authority_categories ac ON a.id = ac.authority_id
		GROUP BY a.id
		ORDER BY a.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var authorities []models.Authority
	for rows.Next() {
		var a models.Authority
		if err := rows.Scan(&a.ID, &a.Name, &a.City, &a.Region, &a.DepartmentID, &a.Address, &a.Categories); err != nil {
			return nil, err
		}
		authorities = append(authorities, a)
	}
	return authorities, rows.Err()
}

func (r *AuthorityPostgres) UpdateAuthority(ctx context.Context, authority models.Authority) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE authorities SET name = $2, city = $3, region = $4, department_id = $5, address = $6
		WHERE id = $1
	`, authority.ID, authority.Name, authority.City, authority.Region, authority.DepartmentID, authority.Address)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.NewNotFound("authority", authority.ID.String())
	}
	return nil
}

func (r *AuthorityPostgres) DeleteAuthority(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM authorities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.NewNotFound("authority", id.String())
	}
	return nil
}

func (r *AuthorityPostgres) CategoriesFor(ctx context.Context, authorityID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		SELECT category_id FROM authority_categories WHERE authority_id = $1 ORDER BY category_id
	`, authorityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetCategories replaces the handled-category set of an authority.
func (r *AuthorityPostgres) SetCategories(ctx context.Context, authorityID uuid.UUID, categoryIDs []uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM authority_categories WHERE authority_id = $1`, authorityID); err != nil {
		return err
	}
	for _, categoryID := range categoryIDs {
		if _, err = tx.Exec(ctx, `
			INSERT INTO authority_categories (authority_id, category_id) VALUES ($1, $2)
		`, authorityID, categoryID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// LinkUser binds an authority-role user to an authority. Unique indexes on
// both columns keep the link one-to-one on either side.
func (r *AuthorityPostgres) LinkUser(ctx context.Context, userID, authorityID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO authority_users (user_id, authority_id) VALUES ($1, $2)
	`, userID, authorityID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return app_errors.NewConflict("user or authority is already linked")
		}
		return err
	}
	return nil
}

func (r *AuthorityPostgres) UnlinkUser(ctx context.Context, userID uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM authority_users WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.NewNotFound("authority link", userID.String())
	}
	return nil
}

func (r *AuthorityPostgres) LinkedAuthority(ctx context.Context, userID uuid.UUID) (*models.AuthorityLink, error) {
	link := &models.AuthorityLink{}
	err := r.db.QueryRow(ctx, `
		SELECT user_id, authority_id FROM authority_users WHERE user_id = $1
	`, userID).Scan(&link.UserID, &link.AuthorityID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.NewNotFound("authority link", userID.String())
		}
		return nil, err
	}
	return link, nil
}

func (r *AuthorityPostgres) ListLinks(ctx context.Context) ([]models.AuthorityLink, error) {
	rows, err := r.db.Query(ctx, `SELECT user_id, authority_id FROM authority_users`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []models.AuthorityLink
	for rows.Next() {
		var l models.AuthorityLink
		if err := rows.Scan(&l.UserID, &l.AuthorityID); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (r *AuthorityPostgres) ListDepartments(ctx context.Context) ([]models.Department, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM departments ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []models.Department
	for rows.Next() {
		var d models.Department
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

func (r *AuthorityPostgres) CreateDepartment(ctx context.Context, department *models.Department) (uuid.UUID, error) {
	if department.ID == uuid.Nil {
		department.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx, `INSERT INTO departments (id, name) VALUES ($1, $2)`, department.ID, department.Name)
	if err != nil {
		return uuid.Nil, err
	}
	return department.ID, nil
}
