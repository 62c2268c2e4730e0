package controller

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp() *fiber.App {
	ctl := NewAuthController(nil, nil)
	app := fiber.New()
	app.Post("/login", ctl.Login)
	app.Post("/refresh", ctl.RefreshToken)
	app.Post("/logout", ctl.Logout)
	app.Get("/me", ctl.Me)
	return app
}

func TestLoginValidation(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("POST", "/login", strings.NewReader(`{"identifier":"ab","password":"123"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	req = httptest.NewRequest("POST", "/login", strings.NewReader(`{bukan json`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRefreshAndLogoutWithoutTokens(t *testing.T) {
	app := newTestApp()

	resp, err := app.Test(httptest.NewRequest("POST", "/refresh", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/logout", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMeRequiresUser(t *testing.T) {
	resp, err := newTestApp().Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
