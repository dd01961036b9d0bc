package postgres

import (
	"CivicLens/internal/app_errors"
	"CivicLens/internal/models"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlagPostgres struct {
	db *pgxpool.Pool
}

func NewFlagPostgres(db *pgxpool.Pool) *FlagPostgres {
	return &FlagPostgres{db: db}
}

// CreateFlag inserts a flag. The flags table carries a unique index on
// (report_id, user_id), so a leftover flag from a failed replace flow
// surfaces here as a Conflict instead of a silent duplicate.
func (r *FlagPostgres) CreateFlag(ctx context.Context, flag *models.Flag) (*models.Flag, error) {
	if flag.ID == uuid.Nil {
		flag.ID = uuid.New()
	}
	flag.CreatedAt = time.Now().UTC()

	_, err := r.db.Exec(ctx, `
		INSERT INTO flags (id, report_id, flag_type_id, user_id, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, flag.ID, flag.ReportID, flag.FlagTypeID, flag.UserID, flag.Comment, flag.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, app_errors.NewConflict("user has already flagged this report")
		}
		return nil, err
	}
	return flag, nil
}

func (r *FlagPostgres) FlagByID(ctx context.Context, id uuid.UUID) (*models.Flag, error) {
	row := r.db.QueryRow(ctx, `
		SELECT f.id, f.report_id, f.flag_type_id, f.user_id, f.comment, f.created_at,
		       ft.id, ft.name, ft.description
		FROM flags f
		LEFT JOIN flag_types ft ON f.flag_type_id = ft.id
		WHERE f.id = $1
	`, id)

	flag, err := scanFlag(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.NewNotFound("flag", id.String())
		}
		return nil, err
	}
	return flag, nil
}

func (r *FlagPostgres) DeleteFlag(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM flags WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.NewNotFound("flag", id.String())
	}
	return nil
}

func (r *FlagPostgres) FlagsByReport(ctx context.Context, reportID uuid.UUID) ([]models.Flag, error) {
	rows, err := r.db.Query(ctx, `
		SELECT f.id, f.report_id, f.flag_type_id, f.user_id, f.comment, f.created_at,
		       ft.id, ft.name, ft.description
		FROM flags f
		LEFT JOIN flag_types ft ON f.flag_type_id = ft.id
		WHERE f.report_id = $1
		ORDER BY f.created_at
	`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flags []models.Flag
	for rows.Next() {
		flag, err := scanFlag(rows)
		if err != nil {
			return nil, err
		}
		flags = append(flags, *flag)
	}
	return flags, rows.Err()
}

func scanFlag(row pgx.Row) (*models.Flag, error) {
	var flag models.Flag
	var ftID *uuid.UUID
	var ftName, ftDesc *string
	err := row.Scan(&flag.ID, &flag.ReportID, &flag.FlagTypeID, &flag.UserID, &flag.Comment, &flag.CreatedAt,
		&ftID, &ftName, &ftDesc)
	if err != nil {
		return nil, err
	}
	if ftID != nil {
		flag.FlagType = &models.FlagType{ID: *ftID, Name: *ftName}
		if ftDesc != nil {
			flag.FlagType.Description = *ftDesc
		}
	}
	return &flag, nil
}

func (r *FlagPostgres) ListFlagTypes(ctx context.Context) ([]models.FlagType, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, COALESCE(description, '') FROM flag_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []models.FlagType
	for rows.Next() {
		var ft models.FlagType
		if err := rows.Scan(&ft.ID, &ft.Name, &ft.Description); err != nil {
			return nil, err
		}
		types = append(types, ft)
	}
	return types, rows.Err()
}
