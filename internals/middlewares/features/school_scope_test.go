package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhub_backend/internals/constants"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

func fakeAuth(rc helperAuth.RolesClaim, active string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(helperAuth.LocRolesClaim, rc)
		if active != "" {
			c.Locals(helperAuth.LocActiveSchoolID, active)
		}
		return c.Next()
	}
}

func newScopedApp(rc helperAuth.RolesClaim, active string) *fiber.App {
	app := fiber.New()
	g := app.Group("/api/a/:school_id", fakeAuth(rc, active), UseSchoolScope(), RequirePathScopeMatch(), IsSchoolStaff())
	g.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	return app
}

func TestSchoolStaffAllowed(t *testing.T) {
	sid := uuid.New()
	app := newScopedApp(helperAuth.RolesClaim{
		SchoolRoles: []helperAuth.SchoolRolesEntry{{SchoolID: sid, Roles: []string{constants.RoleTeacher}}},
	}, sid.String())

	resp, err := app.Test(httptest.NewRequest("GET", "/api/a/"+sid.String()+"/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestParentRejected(t *testing.T) {
	sid := uuid.New()
	app := newScopedApp(helperAuth.RolesClaim{
		SchoolRoles: []helperAuth.SchoolRolesEntry{{SchoolID: sid, Roles: []string{constants.RoleParent}}},
	}, "")

	resp, err := app.Test(httptest.NewRequest("GET", "/api/a/"+sid.String()+"/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestPathMustMatchActiveSchool(t *testing.T) {
	sid, other := uuid.New(), uuid.New()
	app := newScopedApp(helperAuth.RolesClaim{
		SchoolRoles: []helperAuth.SchoolRolesEntry{
			{SchoolID: sid, Roles: []string{constants.RoleSchoolAdmin}},
			{SchoolID: other, Roles: []string{constants.RoleSchoolAdmin}},
		},
	}, sid.String())

	resp, err := app.Test(httptest.NewRequest("GET", "/api/a/"+other.String()+"/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestOwnerGlobal(t *testing.T) {
	app := fiber.New()
	app.Get("/o", fakeAuth(helperAuth.RolesClaim{RolesGlobal: []string{constants.RoleSuperAdmin}}, ""), IsOwnerGlobal(),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/x", fakeAuth(helperAuth.RolesClaim{}, ""), IsOwnerGlobal(),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	resp, err := app.Test(httptest.NewRequest("GET", "/o", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/x", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
