package postgres

import (
	"CivicLens/internal/app_errors"
	"CivicLens/internal/models"
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserPostgres struct {
	db *pgxpool.Pool
}

func NewUserPostgres(db *pgxpool.Pool) *UserPostgres {
	return &UserPostgres{db: db}
}

const userSelect = `
	SELECT u.id, u.name, u.password, u.email, array_remove(array_agg(r.name), NULL)
	FROM users u
	LEFT JOIN user_roles ur ON u.id = ur.user_id
	LEFT JOIN roles r ON ur.role_id = r.id
`

func (r *UserPostgres) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := r.db.QueryRow(ctx, userSelect+` WHERE u.id = $1 GROUP BY u.id`, id)
	return scanUser(row)
}

func (r *UserPostgres) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRow(ctx, userSelect+` WHERE u.email = $1 GROUP BY u.id`, email)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	var roles []string
	err := row.Scan(&user.ID, &user.Name, &user.Password, &user.Email, &roles)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrUserNotFound
		}
		return nil, err
	}
	user.Roles = roles
	return &user, nil
}

func (r *UserPostgres) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.Query(ctx, userSelect+` GROUP BY u.id ORDER BY u.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		var roles []string
		if err := rows.Scan(&user.ID, &user.Name, &user.Password, &user.Email, &roles); err != nil {
			return nil, err
		}
		user.Roles = roles
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *UserPostgres) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	queryUser := `INSERT INTO users (name, password, email) VALUES ($1, $2, $3) RETURNING id`
	var userID uuid.UUID
	err = tx.QueryRow(ctx, queryUser, user.Name, user.Password, user.Email).Scan(&userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if ok := (errors.As(err, &pgErr)); ok && pgErr.Code == "23505" {
			return nil, app_errors.ErrUserExists
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	user.ID = userID

	if err = setRolesTx(ctx, tx, userID, user.Roles); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &user, nil
}

// SetRoles replaces the user's role set with the given role names.
func (r *UserPostgres) SetRoles(ctx context.Context, userID uuid.UUID, roles []string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return err
	}
	if err = setRolesTx(ctx, tx, userID, roles); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func setRolesTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, roles []string) error {
	queryRole := `SELECT id FROM roles WHERE name = $1`
	insertUserRole := `INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)`
	for _, roleName := range roles {
		var roleID int
		if err := tx.QueryRow(ctx, queryRole, roleName).Scan(&roleID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, insertUserRole, userID, roleID); err != nil {
			return err
		}
	}
	return nil
}
