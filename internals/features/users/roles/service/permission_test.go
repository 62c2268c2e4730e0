package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestHasPermission(t *testing.T) {
	perms := ParsePermissions(datatypes.JSON(`{"students":["read","create"],"grades":["*"]}`))

	assert.True(t, HasPermission(perms, "students", "read"))
	assert.True(t, HasPermission(perms, "Students", "CREATE"))
	assert.False(t, HasPermission(perms, "students", "delete"))
	assert.True(t, HasPermission(perms, "grades", "validate"))
	assert.False(t, HasPermission(perms, "payments", "read"))

	admin := Permissions{"*": {"*"}}
	assert.True(t, HasPermission(admin, "anything", "everything"))

	readAll := Permissions{"*": {"read"}}
	assert.True(t, HasPermission(readAll, "payments", "read"))
	assert.False(t, HasPermission(readAll, "payments", "create"))

	assert.False(t, HasPermission(ParsePermissions(nil), "x", "y"))
}

func TestBuildRolesClaim(t *testing.T) {
	s1, s2 := uuid.New(), uuid.New()
	rc := BuildRolesClaim([]grantRow{
		{RoleSlug: "owner", RoleScope: "system"},
		{RoleSlug: "teacher", RoleScope: "school", SchoolID: &s1},
		{RoleSlug: "cashier", RoleScope: "school", SchoolID: &s1},
		{RoleSlug: "teacher", RoleScope: "school", SchoolID: &s1},
		{RoleSlug: "parent", RoleScope: "school", SchoolID: &s2},
	})

	assert.Equal(t, []string{"owner"}, rc.RolesGlobal)
	require.Len(t, rc.SchoolRoles, 2)
	assert.Equal(t, s1, rc.SchoolRoles[0].SchoolID)
	assert.Equal(t, []string{"teacher", "cashier"}, rc.SchoolRoles[0].Roles)
	assert.Equal(t, []string{"parent"}, rc.SchoolRoles[1].Roles)
}
