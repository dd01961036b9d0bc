package category

import (
	"context"
	"testing"

	"CivicLens/internal/app_errors"
	"CivicLens/internal/identity"
	"CivicLens/internal/models"
	"CivicLens/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCategoryRepo struct {
	created *models.Category
}

func (f *fakeCategoryRepo) CreateCategory(ctx context.Context, category *models.Category) (uuid.UUID, error) {
	category.ID = uuid.New()
	f.created = category
	return category.ID, nil
}

func (f *fakeCategoryRepo) CategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return nil, app_errors.NewNotFound("category", id.String())
}

func (f *fakeCategoryRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	return nil, nil
}

func (f *fakeCategoryRepo) UpdateCategory(ctx context.Context, category models.Category) error {
	return nil
}

func (f *fakeCategoryRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return nil
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Road Damage", "road-damage"},
		{"  Water & Sewage  ", "water-sewage"},
		{"street--lighting", "street-lighting"},
		{"Parks, Trees & Green Spaces", "parks-trees-green-spaces"},
		{"Garbage!!!", "garbage"},
		{"---", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "Slugify(%q)", tt.in)
	}
}

func TestCreateCategoryDerivesSlug(t *testing.T) {
	repo := &fakeCategoryRepo{}
	s := NewCategoryService(logger.New("prod"), repo)
	admin := identity.Resolve(&models.User{ID: uuid.New(), Roles: []string{"admin"}})

	_, err := s.CreateCategory(context.Background(), admin, models.Category{Name: "Road Damage"})
	require.NoError(t, err)
	assert.Equal(t, "road-damage", repo.created.Slug)

	_, err = s.CreateCategory(context.Background(), admin, models.Category{Name: "Road Damage", Slug: "roads"})
	require.NoError(t, err)
	assert.Equal(t, "roads", repo.created.Slug)
}

func TestCreateCategoryAdminOnly(t *testing.T) {
	repo := &fakeCategoryRepo{}
	s := NewCategoryService(logger.New("prod"), repo)
	citizen := identity.Resolve(&models.User{ID: uuid.New(), Roles: []string{"citizen"}})

	_, err := s.CreateCategory(context.Background(), citizen, models.Category{Name: "Road Damage"})
	assert.True(t, app_errors.IsPermissionDenied(err))
	assert.Nil(t, repo.created)
}

func TestCreateCategoryRequiresName(t *testing.T) {
	repo := &fakeCategoryRepo{}
	s := NewCategoryService(logger.New("prod"), repo)
	admin := identity.Resolve(&models.User{ID: uuid.New(), Roles: []string{"admin"}})

	_, err := s.CreateCategory(context.Background(), admin, models.Category{Name: "   "})
	assert.True(t, app_errors.IsValidation(err))
}
