package user

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

type fakeUserRepo struct {
	users    map[uuid.UUID]*models.User
	setRoles []string
}

func (f *fakeUserRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	out := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, app_errors.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) SetRoles(ctx context.Context, userID uuid.UUID, roles []string) error {
	f.setRoles = roles
	return nil
}

func TestListUsersScrubsPasswords(t *testing.T) {
	target := &models.User{ID: uuid.New(), Email: "a@b.c", Password: "hash", Roles: []string{"citizen"}}
	repo := &fakeUserRepo{users: map[uuid.UUID]*models.User{target.ID: target}}
	s := NewUserService(logger.New("prod"), repo)

	admin := identity.Resolve(&models.User{ID: uuid.New(), Roles: []string{"admin"}})
	users, err := s.ListUsers(context.Background(), admin)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Empty(t, users[0].Password)

	citizen := identity.Resolve(&models.User{ID: uuid.New(), Roles: []string{"citizen"}})
	_, err = s.ListUsers(context.Background(), citizen)
	assert.True(t, app_errors.IsPermissionDenied(err))
}

func TestSetUserRoles(t *testing.T) {
	target := &models.User{ID: uuid.New(), Roles: []string{"citizen"}}
	repo := &fakeUserRepo{users: map[uuid.UUID]*models.User{target.ID: target}}
	s := NewUserService(logger.New("prod"), repo)
	admin := identity.Resolve(&models.User{ID: uuid.New(), Roles: []string{"admin"}})

	err := s.SetUserRoles(context.Background(), admin, target.ID, []string{"citizen", "authority"})
	require.NoError(t, err)
	assert.Equal(t, []string{"citizen", "authority"}, repo.setRoles)

	err = s.SetUserRoles(context.Background(), admin, target.ID, nil)
	assert.True(t, app_errors.IsValidation(err))

	err = s.SetUserRoles(context.Background(), admin, target.ID, []string{"superuser"})
	assert.True(t, app_errors.IsValidation(err))

	err = s.SetUserRoles(context.Background(), admin, uuid.New(), []string{"citizen"})
	assert.ErrorIs(t, err, app_errors.ErrUserNotFound)
}
