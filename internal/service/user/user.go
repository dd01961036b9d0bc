package user

import (
	"context"

	"CivicLens/internal/app_errors"
	"CivicLens/internal/identity"
	"CivicLens/internal/models"
	"CivicLens/pkg/logger"

	"github.com/google/uuid"
)

type userRepo interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	SetRoles(ctx context.Context, userID uuid.UUID, roles []string) error
}

// UserService is the admin user-management surface: listing accounts and
// replacing role sets. Account creation itself goes through the auth service.
type UserService struct {
	log  logger.Log
	repo userRepo
}

func NewUserService(log logger.Log, repo userRepo) *UserService {
	return &UserService{log: log, repo: repo}
}

func (s *UserService) ListUsers(ctx context.Context, actor identity.Identity) ([]models.User, error) {
	if !actor.Capabilities.IsAdmin {
		return nil, app_errors.NewPermissionDenied("listUsers", models.AdminRole)
	}
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

// SetUserRoles replaces a user's role set. A user must always keep at least
// one role.
func (s *UserService) SetUserRoles(ctx context.Context, actor identity.Identity, userID uuid.UUID, roles []string) error {
	if !actor.Capabilities.IsAdmin {
		return app_errors.NewPermissionDenied("setUserRoles", models.AdminRole)
	}
	if len(roles) == 0 {
		return app_errors.NewValidation("roles", "at least one role is required")
	}
	for _, role := range roles {
		if role != models.AdminRole && role != models.AuthorityRole && role != models.CitizenRole {
			return app_errors.NewValidation("roles", "unknown role "+role)
		}
	}
	if _, err := s.repo.UserByID(ctx, userID); err != nil {
		return err
	}
	return s.repo.SetRoles(ctx, userID, roles)
}
