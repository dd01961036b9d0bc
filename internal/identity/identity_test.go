package identity

import (
	"testing"

	"CivicLens/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestResolveNilUser(t *testing.T) {
	id := Resolve(nil)

	assert.Nil(t, id.User)
	assert.Equal(t, RoleNone, id.Role)
	assert.False(t, id.Capabilities.IsAdmin)
	assert.False(t, id.Capabilities.IsAuthority)
	assert.False(t, id.Capabilities.IsCitizen)
	assert.False(t, id.Capabilities.IsAuthenticated)
}

func TestResolveRolePrecedence(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		want  Role
	}{
		{"single citizen", []string{"citizen"}, RoleCitizen},
		{"single authority", []string{"authority"}, RoleAuthority},
		{"single admin", []string{"admin"}, RoleAdmin},
		{"admin wins over authority", []string{"authority", "admin"}, RoleAdmin},
		{"authority wins over citizen", []string{"citizen", "authority"}, RoleAuthority},
		{"order irrelevant", []string{"admin", "citizen"}, RoleAdmin},
		{"mixed case is lowered", []string{"Admin"}, RoleAdmin},
		{"whitespace trimmed", []string{" citizen "}, RoleCitizen},
		{"unknown roles ignored", []string{"moderator", "citizen"}, RoleCitizen},
		{"only unknown roles", []string{"moderator"}, RoleNone},
		{"no roles", nil, RoleNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &models.User{ID: uuid.New(), Roles: tt.roles}
			assert.Equal(t, tt.want, Resolve(user).Role)
		})
	}
}

func TestResolveCapabilities(t *testing.T) {
	admin := Resolve(&models.User{ID: uuid.New(), Roles: []string{"admin", "citizen"}})

	assert.True(t, admin.Capabilities.IsAdmin)
	assert.True(t, admin.Capabilities.IsAuthenticated)
	// Admin capability never implies the lower ones.
	assert.False(t, admin.Capabilities.IsAuthority)
	assert.False(t, admin.Capabilities.IsCitizen)

	citizen := Resolve(&models.User{ID: uuid.New(), Roles: []string{"citizen"}})
	assert.True(t, citizen.Capabilities.IsCitizen)
	assert.True(t, citizen.Capabilities.IsAuthenticated)
	assert.False(t, citizen.Capabilities.IsAdmin)

	roleless := Resolve(&models.User{ID: uuid.New()})
	assert.True(t, roleless.Capabilities.IsAuthenticated)
	assert.Equal(t, RoleNone, roleless.Role)
	assert.False(t, roleless.Capabilities.IsCitizen)
}
