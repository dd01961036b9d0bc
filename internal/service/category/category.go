package category

import (
	"context"
	"strings"
	"unicode"

	"CivicLens/internal/app_errors"
	"CivicLens/internal/identity"
	"CivicLens/internal/models"
	"CivicLens/pkg/logger"

	"github.com/google/uuid"
)

type categoryRepo interface {
	CreateCategory(ctx context.Context, category *models.Category) (uuid.UUID, error)
	CategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	UpdateCategory(ctx context.Context, category models.Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type CategoryService struct {
	log  logger.Log
	repo categoryRepo
}

func NewCategoryService(log logger.Log, repo categoryRepo) *CategoryService {
	return &CategoryService{log: log, repo: repo}
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *CategoryService) CategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.repo.CategoryByID(ctx, id)
}

func (s *CategoryService) CreateCategory(ctx context.Context, actor identity.Identity, category models.Category) (uuid.UUID, error) {
	if !actor.Capabilities.IsAdmin {
		return uuid.Nil, app_errors.NewPermissionDenied("createCategory", models.AdminRole)
	}
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return uuid.Nil, app_errors.NewValidation("name", "name is required")
	}
	if category.Slug == "" {
		category.Slug = Slugify(category.Name)
	}
	return s.repo.CreateCategory(ctx, &category)
}

func (s *CategoryService) UpdateCategory(ctx context.Context, actor identity.Identity, category models.Category) error {
	if !actor.Capabilities.IsAdmin {
		return app_errors.NewPermissionDenied("updateCategory", models.AdminRole)
	}
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return app_errors.NewValidation("name", "name is required")
	}
	if category.Slug == "" {
		category.Slug = Slugify(category.Name)
	}
	return s.repo.UpdateCategory(ctx, category)
}

func (s *CategoryService) DeleteCategory(ctx context.Context, actor identity.Identity, id uuid.UUID) error {
	if !actor.Capabilities.IsAdmin {
		return app_errors.NewPermissionDenied("deleteCategory", models.AdminRole)
	}
	return s.repo.DeleteCategory(ctx, id)
}

// Slugify derives a URL-safe slug from a category name: lowered, runs of
// non-alphanumeric characters collapsed to single dashes, edges trimmed.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
