package identity

import (
	"strings"

	"CivicLens/internal/models"
)

type Role string

const (
	RoleAdmin     Role = models.AdminRole
	RoleAuthority Role = models.AuthorityRole
	RoleCitizen   Role = models.CitizenRole
	RoleNone      Role = ""
)

// precedence: when a user holds several roles, the highest one wins for the
// Role field. Capabilities are still derived from that single resolved role,
// so admin does not implicitly unlock authority- or citizen-only actions.
var precedence = []Role{RoleAdmin, RoleAuthority, RoleCitizen}

type Capabilities struct {
	IsAdmin         bool
	IsAuthority     bool
	IsCitizen       bool
	IsAuthenticated bool
}

type Identity struct {
	User         *models.User
	Role         Role
	Capabilities Capabilities
}

// Resolve turns an authenticated user into its effective role and capability
// set. A nil user resolves to the anonymous identity with every capability
// false; it is never an error to not be logged in.
func Resolve(user *models.User) Identity {
	if user == nil {
		return Identity{}
	}

	role := resolveRole(user.Roles)
	return Identity{
		User: user,
		Role: role,
		Capabilities: Capabilities{
			IsAdmin:         role == RoleAdmin,
			IsAuthority:     role == RoleAuthority,
			IsCitizen:       role == RoleCitizen,
			IsAuthenticated: true,
		},
	}
}

func resolveRole(roles []string) Role {
	held := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		held[Role(strings.ToLower(strings.TrimSpace(r)))] = struct{}{}
	}
	for _, r := range precedence {
		if _, ok := held[r]; ok {
			return r
		}
	}
	return RoleNone
}
