package middleware

import (
	"net/http/httptest"
	"testing"

	"CivicLens/internal/identity"
	"CivicLens/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestIdentityFrom(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	resolved := identity.Resolve(&models.User{ID: uuid.New(), Roles: []string{"authority"}})
	c.Set(IdentityCtx, resolved)

	got := IdentityFrom(c)
	assert.Equal(t, resolved, got)
	assert.Equal(t, identity.RoleAuthority, got.Role)
}

func TestIdentityFromMissingIsAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	got := IdentityFrom(c)

	assert.False(t, got.Capabilities.IsAuthenticated)
	assert.Equal(t, identity.RoleNone, got.Role)

	c.Set(IdentityCtx, "not an identity")
	assert.Equal(t, identity.RoleNone, IdentityFrom(c).Role)
}
