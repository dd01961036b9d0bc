package middleware

import (
	"CivicLens/internal/identity"

	"github.com/gin-gonic/gin"
)

// IdentityCtx is the only identity-related context key: handlers read the
// resolved identity and never re-inspect raw token claims.
const IdentityCtx = "client_identity"

// IdentityFrom returns the identity the auth middleware resolved for this
// request. Requests that skipped the middleware get the anonymous identity.
func IdentityFrom(c *gin.Context) identity.Identity {
	raw, exists := c.Get(IdentityCtx)
	if !exists {
		return identity.Identity{}
	}
	id, ok := raw.(identity.Identity)
	if !ok {
		return identity.Identity{}
	}
	return id
}
