package middleware

import (
	"net/http"

	"CivicLens/internal/identity"

	"github.com/gin-gonic/gin"
)

// RequireRoles permits the request iff the caller's resolved role is one of
// the allowed roles. The check runs against the single resolved role, so an
// admin is not implicitly allowed through a citizen-only gate.
func RequireRoles(allowedRoles ...identity.Role) gin.HandlerFunc {
	roleSet := make(map[identity.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		roleSet[r] = struct{}{}
	}
	return func(c *gin.Context) {
		id := IdentityFrom(c)
		if !id.Capabilities.IsAuthenticated {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "roles not found"})
			return
		}
		if _, allowed := roleSet[id.Role]; !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.Next()
	}
}
