package authority

import (
	"context"

	"CivicLens/internal/app_errors"
	"CivicLens/internal/identity"
	"CivicLens/internal/models"
	"CivicLens/pkg/logger"

	"github.com/google/uuid"
)

type authorityRepo interface {
	CreateAuthority(ctx context.Context, authority *models.Authority) (uuid.UUID, error)
	AuthorityByID(ctx context.Context, id uuid.UUID) (*models.Authority, error)
	ListAuthorities(ctx context.Context) ([]models.Authority, error)
	UpdateAuthority(ctx context.Context, authority models.Authority) error
	DeleteAuthority(ctx context.Context, id uuid.UUID) error
	SetCategories(ctx context.Context, authorityID uuid.UUID, categoryIDs []uuid.UUID) error
	CategoriesFor(ctx context.Context, authorityID uuid.UUID) ([]uuid.UUID, error)
	LinkUser(ctx context.Context, userID, authorityID uuid.UUID) error
	UnlinkUser(ctx context.Context, userID uuid.UUID) error
	LinkedAuthority(ctx context.Context, userID uuid.UUID) (*models.AuthorityLink, error)
	ListLinks(ctx context.Context) ([]models.AuthorityLink, error)
	ListDepartments(ctx context.Context) ([]models.Department, error)
	CreateDepartment(ctx context.Context, department *models.Department) (uuid.UUID, error)
}

type userRepo interface {
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AuthorityService owns the authority catalog: admin CRUD, handled-category
// sets and the one-to-one authority/user link.
type AuthorityService struct {
	log      logger.Log
	repo     authorityRepo
	userRepo userRepo
	*Matcher
}

func NewAuthorityService(log logger.Log, repo authorityRepo, users userRepo) *AuthorityService {
	return &AuthorityService{
		log:      log,
		repo:     repo,
		userRepo: users,
		Matcher:  NewMatcher(log, repo),
	}
}

func (s *AuthorityService) ListAuthorities(ctx context.Context) ([]models.Authority, error) {
	return s.repo.ListAuthorities(ctx)
}

func (s *AuthorityService) AuthorityByID(ctx context.Context, id uuid.UUID) (*models.Authority, error) {
	return s.repo.AuthorityByID(ctx, id)
}

func (s *AuthorityService) CreateAuthority(ctx context.Context, actor identity.Identity, authority models.Authority) (uuid.UUID, error) {
	if !actor.Capabilities.IsAdmin {
		return uuid.Nil, app_errors.NewPermissionDenied("createAuthority", models.AdminRole)
	}
	if authority.Name == "" {
		return uuid.Nil, app_errors.NewValidation("name", "name is required")
	}
	if authority.City == "" {
		return uuid.Nil, app_errors.NewValidation("city", "city is required")
	}
	if authority.Region == "" {
		return uuid.Nil, app_errors.NewValidation("region", "region is required")
	}
	return s.repo.CreateAuthority(ctx, &authority)
}

func (s *AuthorityService) UpdateAuthority(ctx context.Context, actor identity.Identity, authority models.Authority) error {
	if !actor.Capabilities.IsAdmin {
		return app_errors.NewPermissionDenied("updateAuthority", models.AdminRole)
	}
	return s.repo.UpdateAuthority(ctx, authority)
}

func (s *AuthorityService) DeleteAuthority(ctx context.Context, actor identity.Identity, id uuid.UUID) error {
	if !actor.Capabilities.IsAdmin {
		return app_errors.NewPermissionDenied("deleteAuthority", models.AdminRole)
	}
	return s.repo.DeleteAuthority(ctx, id)
}

func (s *AuthorityService) SetHandledCategories(ctx context.Context, actor identity.Identity, authorityID uuid.UUID, categoryIDs []uuid.UUID) error {
	if !actor.Capabilities.IsAdmin {
		return app_errors.NewPermissionDenied("setHandledCategories", models.AdminRole)
	}
	if _, err := s.repo.AuthorityByID(ctx, authorityID); err != nil {
		return err
	}
	return s.repo.SetCategories(ctx, authorityID, categoryIDs)
}

// LinkUser binds a user holding the authority role to an authority. The user
// must hold the authority role; the repository enforces one link per user and
// per authority.
func (s *AuthorityService) LinkUser(ctx context.Context, actor identity.Identity, userID, authorityID uuid.UUID) error {
	if !actor.Capabilities.IsAdmin {
		return app_errors.NewPermissionDenied("linkAuthorityUser", models.AdminRole)
	}
	user, err := s.userRepo.UserByID(ctx, userID)
	if err != nil {
		return err
	}
	if identity.Resolve(user).Role != identity.RoleAuthority {
		return app_errors.NewValidation("userId", "user does not hold the authority role")
	}
	if _, err := s.repo.AuthorityByID(ctx, authorityID); err != nil {
		return err
	}
	return s.repo.LinkUser(ctx, userID, authorityID)
}

func (s *AuthorityService) UnlinkUser(ctx context.Context, actor identity.Identity, userID uuid.UUID) error {
	if !actor.Capabilities.IsAdmin {
		return app_errors.NewPermissionDenied("unlinkAuthorityUser", models.AdminRole)
	}
	return s.repo.UnlinkUser(ctx, userID)
}

// LinkedAuthorityFor resolves the authority an authority-role user acts for.
// Used by listing views to scope an authority user to their own reports.
func (s *AuthorityService) LinkedAuthorityFor(ctx context.Context, userID uuid.UUID) (*models.Authority, error) {
	link, err := s.repo.LinkedAuthority(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.AuthorityByID(ctx, link.AuthorityID)
}

func (s *AuthorityService) ListLinks(ctx context.Context, actor identity.Identity) ([]models.AuthorityLink, error) {
	if !actor.Capabilities.IsAdmin {
		return nil, app_errors.NewPermissionDenied("listAuthorityUsers", models.AdminRole)
	}
	return s.repo.ListLinks(ctx)
}

func (s *AuthorityService) ListDepartments(ctx context.Context) ([]models.Department, error) {
	return s.repo.ListDepartments(ctx)
}

func (s *AuthorityService) CreateDepartment(ctx context.Context, actor identity.Identity, department models.Department) (uuid.UUID, error) {
	if !actor.Capabilities.IsAdmin {
		return uuid.Nil, app_errors.NewPermissionDenied("createDepartment", models.AdminRole)
	}
	if department.Name == "" {
		return uuid.Nil, app_errors.NewValidation("name", "name is required")
	}
	return s.repo.CreateDepartment(ctx, &department)
}
