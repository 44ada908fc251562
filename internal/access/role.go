// Package access decides whether a resolved user may use a route class.
//
// Roles are flat: no admin role implies another, and superadmin is not a
// superset of the other admin roles. Route classes name the exact set they
// accept.
package access

import (
	"fmt"
	"strings"

	"bizdesk/internal/data/entity"
)

// RoleSet is a set of accepted roles. A nil RoleSet means "any authenticated
// user, role-agnostic".
type RoleSet map[entity.UserRole]struct{}

var (
	// AnyAuthenticated accepts every role.
	AnyAuthenticated RoleSet

	// AdminRoles is the fixed enumeration of elevated roles.
	AdminRoles = Exactly(
		entity.RoleSuperAdmin,
		entity.RoleRentalAdmin,
		entity.RoleEventAdmin,
		entity.RoleEcomAdmin,
	)

	knownRoles = Exactly(
		entity.RoleUser,
		entity.RoleTechnician,
		entity.RoleReceptionist,
		entity.RoleSuperAdmin,
		entity.RoleRentalAdmin,
		entity.RoleEventAdmin,
		entity.RoleEcomAdmin,
	)
)

// Exactly builds a set accepting only the listed roles.
func Exactly(roles ...entity.UserRole) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Union merges sets. The union with AnyAuthenticated is AnyAuthenticated.
func Union(sets ...RoleSet) RoleSet {
	out := RoleSet{}
	for _, s := range sets {
		if s == nil {
			return nil
		}
		for r := range s {
			out[r] = struct{}{}
		}
	}
	return out
}

func (s RoleSet) Contains(role entity.UserRole) bool {
	if s == nil {
		return true
	}
	_, ok := s[role]
	return ok
}

// IsAuthorized is a pure membership check of the user's role against set.
func IsAuthorized(user *entity.ResolvedUser, set RoleSet) bool {
	if user == nil {
		return false
	}
	return set.Contains(user.Role)
}

func IsAdminRole(role entity.UserRole) bool {
	return AdminRoles.Contains(role)
}

// ParseRole normalizes and validates a role name coming from a request.
func ParseRole(raw string) (entity.UserRole, error) {
	role := entity.UserRole(strings.ToLower(strings.TrimSpace(raw)))
	if !knownRoles.Contains(role) {
		return "", fmt.Errorf("unknown role %q", raw)
	}
	return role, nil
}
