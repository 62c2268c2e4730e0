package helper

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhub_backend/internals/constants"
)

func TestHasSchoolRole(t *testing.T) {
	schoolA, schoolB := uuid.New(), uuid.New()
	app := fiber.New()
	app.Get("/:school_id", func(c *fiber.Ctx) error {
		c.Locals(LocRolesClaim, RolesClaim{
			SchoolRoles: []SchoolRolesEntry{{SchoolID: schoolA, Roles: []string{"Cashier"}}},
		})
		sid, err := ResolveSchoolID(c)
		if err != nil {
			return err
		}
		if HasSchoolRole(c, sid, constants.FinanceRoles...) {
			return c.SendStatus(fiber.StatusOK)
		}
		return c.SendStatus(fiber.StatusForbidden)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/"+schoolA.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/"+schoolB.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/bukan-uuid", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestOwnerBypassesSchoolRole(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		c.Locals(LocRolesClaim, RolesClaim{RolesGlobal: []string{constants.RoleOwner}})
		assert.True(t, HasSchoolRole(c, uuid.New(), constants.RoleSchoolAdmin))
		assert.True(t, IsOwnerGlobal(c))
		return nil
	})
	_, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
}

func TestGetUserIDFromToken(t *testing.T) {
	uid := uuid.New()
	app := fiber.New()
	app.Get("/ok", func(c *fiber.Ctx) error {
		c.Locals(LocUserID, uid.String())
		got, err := GetUserIDFromToken(c)
		require.NoError(t, err)
		assert.Equal(t, uid, got)
		return nil
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		_, err := GetUserIDFromToken(c)
		return err
	})
	_, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestHmacHexStable(t *testing.T) {
	a := HmacHex("token", "secret")
	assert.Len(t, a, 64)
	assert.Equal(t, a, HmacHex("token", "secret"))
	assert.NotEqual(t, a, HmacHex("token", "other"))
}
