package auth

import (
	"messaging_backend/internal/models"
)

// RoleSet is an allow-list of roles.
type RoleSet map[models.RoleName]struct{}

func NewRoleSet(roles ...models.RoleName) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

func (s RoleSet) Contains(role models.RoleName) bool {
	_, ok := s[role]
	return ok
}

var (
	// UserRoles is any resolvable role.
	UserRoles       = NewRoleSet(models.RoleSuperAdmin, models.RoleAdmin, models.RoleNormalUser)
	AdminRoles      = NewRoleSet(models.RoleSuperAdmin, models.RoleAdmin)
	SuperAdminRoles = NewRoleSet(models.RoleSuperAdmin)
)

func IsUser(claims *Claims) bool {
	return claims != nil && UserRoles.Contains(claims.Role)
}

func IsAdmin(claims *Claims) bool {
	return claims != nil && AdminRoles.Contains(claims.Role)
}

func IsSuperAdmin(claims *Claims) bool {
	return claims != nil && SuperAdminRoles.Contains(claims.Role)
}
