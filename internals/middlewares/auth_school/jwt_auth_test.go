package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	helperAuth "schoolhub_backend/internals/helpers/auth"
)

const testSecret = "rahasia-test"

func sign(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestAuthJWTHydratesLocals(t *testing.T) {
	uid, sid := uuid.New(), uuid.New()
	app := fiber.New()
	app.Get("/me", AuthJWT(AuthJWTOpts{Secret: testSecret}), func(c *fiber.Ctx) error {
		got, err := helperAuth.GetUserIDFromToken(c)
		require.NoError(t, err)
		assert.Equal(t, uid, got)

		rc := helperAuth.GetRolesClaim(c)
		require.Len(t, rc.SchoolRoles, 1)
		assert.Equal(t, sid, rc.SchoolRoles[0].SchoolID)
		assert.Equal(t, []string{"teacher"}, rc.SchoolRoles[0].Roles)
		return c.SendStatus(fiber.StatusOK)
	})

	tok := sign(t, jwt.MapClaims{
		"id":           uid.String(),
		"typ":          "access",
		"roles_global": []string{"user"},
		"school_roles": []map[string]any{{"school_id": sid.String(), "roles": []string{"teacher"}}},
		"exp":          time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuthJWTRejects(t *testing.T) {
	app := fiber.New()
	app.Get("/me", AuthJWT(AuthJWTOpts{
		Secret: testSecret,
		BlacklistChecker: func(_ *fiber.Ctx, raw string) (bool, error) {
			return raw == "revoked", nil
		},
	}), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	cases := map[string]string{
		"missing":      "",
		"wrong secret": sign(t, jwt.MapClaims{"id": uuid.NewString(), "exp": time.Now().Add(time.Hour).Unix()}, "lain"),
		"expired":      sign(t, jwt.MapClaims{"id": uuid.NewString(), "exp": time.Now().Add(-time.Hour).Unix()}, testSecret),
		"refresh type": sign(t, jwt.MapClaims{"id": uuid.NewString(), "typ": "refresh", "exp": time.Now().Add(time.Hour).Unix()}, testSecret),
		"revoked":      "revoked",
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tok != "" {
				req.Header.Set("Authorization", "Bearer "+tok)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
}
