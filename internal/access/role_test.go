package access

import (
	"testing"

	"bizdesk/internal/data/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userWithRole(role entity.UserRole) *entity.ResolvedUser {
	return &entity.ResolvedUser{Role: role}
}

func TestIsAuthorized_AdminRoles(t *testing.T) {
	for _, role := range []entity.UserRole{
		entity.RoleSuperAdmin,
		entity.RoleRentalAdmin,
		entity.RoleEventAdmin,
		entity.RoleEcomAdmin,
	} {
		assert.True(t, IsAuthorized(userWithRole(role), AdminRoles), role)
	}

	for _, role := range []entity.UserRole{entity.RoleUser, entity.RoleTechnician, entity.RoleReceptionist} {
		assert.False(t, IsAuthorized(userWithRole(role), AdminRoles), role)
	}
}

func TestIsAuthorized_NoHierarchy(t *testing.T) {
	rental := Exactly(entity.RoleRentalAdmin)

	assert.True(t, IsAuthorized(userWithRole(entity.RoleRentalAdmin), rental))
	assert.False(t, IsAuthorized(userWithRole(entity.RoleEventAdmin), rental))
	assert.False(t, IsAuthorized(userWithRole(entity.RoleSuperAdmin), rental))
}

func TestIsAuthorized_AnyAuthenticated(t *testing.T) {
	assert.True(t, IsAuthorized(userWithRole(entity.RoleUser), AnyAuthenticated))
	assert.True(t, IsAuthorized(userWithRole("freetext-role"), AnyAuthenticated))
	assert.False(t, IsAuthorized(nil, AnyAuthenticated))
}

func TestUnion(t *testing.T) {
	staff := Union(Exactly(entity.RoleTechnician), AdminRoles)
	assert.True(t, staff.Contains(entity.RoleTechnician))
	assert.True(t, staff.Contains(entity.RoleEcomAdmin))
	assert.False(t, staff.Contains(entity.RoleUser))

	assert.Nil(t, Union(AdminRoles, AnyAuthenticated))
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("  RentalAdmin ")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleRentalAdmin, role)

	_, err = ParseRole("root")
	assert.Error(t, err)
}
