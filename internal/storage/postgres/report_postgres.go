package postgres

import (
	"CivicLens/internal/app_errors"
	"CivicLens/internal/models"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReportPostgres struct {
	db *pgxpool.Pool
}

func NewReportPostgres(db *pgxpool.Pool) *ReportPostgres {
	return &ReportPostgres{db: db}
}

func (r *ReportPostgres) CreateReport(ctx context.Context, report *models.Report) (uuid.UUID, error) {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	now := time.Now().UTC()
	report.CreatedAt = now
	report.UpdatedAt = now

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	query := `
		INSERT INTO reports (
			id, title, description, category_id, city, region,
			latitude, longitude, reporter_id, authority_id,
			status, is_hidden, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13, $14
		)
	`
	_, err = tx.Exec(ctx, query,
		report.ID,
		report.Title,
		report.Description,
		report.CategoryID,
		report.City,
		report.Region,
		report.Latitude,
		report.Longitude,
		report.ReporterID,
		report.AuthorityID,
		report.Status,
		report.IsHidden,
		report.CreatedAt,
		report.UpdatedAt,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert report: %w", err)
	}

	// Creation opens the audit trail with a nil from-status.
	logEntry := models.StatusLogEntry{
		ID:        uuid.New(),
		ReportID:  report.ID,
		ToStatus:  report.Status,
		ActorID:   report.ReporterID,
		CreatedAt: now,
	}
	if err = insertStatusLogTx(ctx, tx, logEntry); err != nil {
		return uuid.Nil, err
	}

	for i, img := range report.Images {
		_, err = tx.Exec(ctx, `
			INSERT INTO report_images (id, report_id, object_key, position)
			VALUES ($1, $2, $3, $4)
		`, uuid.New(), report.ID, img.ObjectKey, i)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to insert report image: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return uuid.Nil, err
	}
	report.StatusLog = append(report.StatusLog, logEntry)
	return report.ID, nil
}

func (r *ReportPostgres) ReportByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	const query = `
		SELECT id, title, description, category_id, city, region,
		       latitude, longitude, reporter_id, authority_id,
		       status, is_hidden, created_at, updated_at
		FROM reports
		WHERE id = $1
	`
	report := &models.Report{}
	row := r.db.QueryRow(ctx, query, id)
	err := row.Scan(
		&report.ID,
		&report.Title,
		&report.Description,
		&report.CategoryID,
		&report.City,
		&report.Region,
		&report.Latitude,
		&report.Longitude,
		&report.ReporterID,
		&report.AuthorityID,
		&report.Status,
		&report.IsHidden,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.NewNotFound("report", id.String())
		}
		return nil, err
	}

	if report.Images, err = r.imagesFor(ctx, id); err != nil {
		return nil, err
	}
	if report.StatusLog, err = r.statusLogFor(ctx, id); err != nil {
		return nil, err
	}
	return report, nil
}

func (r *ReportPostgres) ListReports(ctx context.Context, filter models.ReportFilter) ([]models.Report, error) {
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !filter.IncludeHidden {
		conds = append(conds, "is_hidden = FALSE")
	}
	if filter.Status != "" {
		conds = append(conds, "status = "+arg(filter.Status))
	}
	if filter.CategoryID != uuid.Nil {
		conds = append(conds, "category_id = "+arg(filter.CategoryID))
	}
	if filter.City != "" {
		conds = append(conds, "LOWER(city) = LOWER("+arg(filter.City)+")")
	}
	if filter.ReporterID != uuid.Nil {
		conds = append(conds, "reporter_id = "+arg(filter.ReporterID))
	}
	if filter.AuthorityID != uuid.Nil {
		conds = append(conds, "authority_id = "+arg(filter.AuthorityID))
	}
	if filter.OnlyFlagged {
		conds = append(conds, "EXISTS (SELECT 1 FROM flags f WHERE f.report_id = reports.id)")
	}

	query := `
		SELECT id, title, description, category_id, city, region,
		       latitude, longitude, reporter_id, authority_id,
		       status, is_hidden, created_at, updated_at
		FROM reports
	`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		var report models.Report
		err := rows.Scan(
			&report.ID,
			&report.Title,
			&report.Description,
			&report.CategoryID,
			&report.City,
			&report.Region,
			&report.Latitude,
			&report.Longitude,
			&report.ReporterID,
			&report.AuthorityID,
			&report.Status,
			&report.IsHidden,
			&report.CreatedAt,
			&report.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// UpdateStatus sets the new status and appends the matching log entry in one
// transaction, so the trail can never miss a transition.
func (r *ReportPostgres) UpdateStatus(ctx context.Context, id uuid.UUID, status, comment string, actorID uuid.UUID) (*models.Report, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var prev string
	err = tx.QueryRow(ctx, `SELECT status FROM reports WHERE id = $1 FOR UPDATE`, id).Scan(&prev)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.NewNotFound("report", id.String())
		}
		return nil, err
	}

	now := time.Now().UTC()
	_, err = tx.Exec(ctx, `UPDATE reports SET status = $2, updated_at = $3 WHERE id = $1`, id, status, now)
	if err != nil {
		return nil, err
	}

	entry := models.StatusLogEntry{
		ID:         uuid.New(),
		ReportID:   id,
		FromStatus: &prev,
		ToStatus:   status,
		Comment:    comment,
		ActorID:    actorID,
		CreatedAt:  now,
	}
	if err = insertStatusLogTx(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.ReportByID(ctx, id)
}

func (r *ReportPostgres) SetHidden(ctx context.Context, id uuid.UUID, hidden bool) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE reports SET is_hidden = $2, updated_at = NOW() WHERE id = $1`, id, hidden)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.NewNotFound("report", id.String())
	}
	return nil
}

func (r *ReportPostgres) SetAuthority(ctx context.Context, id uuid.UUID, authorityID uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE reports SET authority_id = $2, updated_at = NOW() WHERE id = $1`, id, authorityID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.NewNotFound("report", id.String())
	}
	return nil
}

// AddImage appends one image row at the given position. Position assignment
// belongs to the caller, who counts the already-attached images.
func (r *ReportPostgres) AddImage(ctx context.Context, reportID uuid.UUID, objectKey string, position int) (*models.ReportImage, error) {
	img := &models.ReportImage{
		ID:        uuid.New(),
		ReportID:  reportID,
		ObjectKey: objectKey,
		Position:  position,
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO report_images (id, report_id, object_key, position)
		VALUES ($1, $2, $3, $4)
	`, img.ID, img.ReportID, img.ObjectKey, img.Position)
	if err != nil {
		return nil, fmt.Errorf("failed to insert report image: %w", err)
	}
	return img, nil
}

func insertStatusLogTx(ctx context.Context, tx pgx.Tx, entry models.StatusLogEntry) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO status_log (id, report_id, from_status, to_status, comment, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.ID, entry.ReportID, entry.FromStatus, entry.ToStatus, entry.Comment, entry.ActorID, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append status log: %w", err)
	}
	return nil
}

func (r *ReportPostgres) imagesFor(ctx context.Context, reportID uuid.UUID) ([]models.ReportImage, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, report_id, object_key, position
		FROM report_images
		WHERE report_id = $1
		ORDER BY position
	`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []models.ReportImage
	for rows.Next() {
		var img models.ReportImage
		if err := rows.Scan(&img.ID, &img.ReportID, &img.ObjectKey, &img.Position); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (r *ReportPostgres) statusLogFor(ctx context.Context, reportID uuid.UUID) ([]models.StatusLogEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, report_id, from_status, to_status, comment, actor_id, created_at
		FROM status_log
		WHERE report_id = $1
		ORDER BY created_at, id
	`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.StatusLogEntry
	for rows.Next() {
		var e models.StatusLogEntry
		if err := rows.Scan(&e.ID, &e.ReportID, &e.FromStatus, &e.ToStatus, &e.Comment, &e.ActorID, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
