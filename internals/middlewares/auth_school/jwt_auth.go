package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

type AuthJWTOpts struct {
	Secret              string
	BlacklistChecker    func(c *fiber.Ctx, rawToken string) (bool, error) // true kalau token sudah di-blacklist
	AllowCookieFallback bool                                              // pakai cookie access_token jika tidak ada Bearer
}

func AuthJWT(o AuthJWTOpts) fiber.Handler {
	secret := strings.TrimSpace(o.Secret)
	if secret == "" {
		panic("AuthJWT: Secret wajib diisi")
	}

	return func(c *fiber.Ctx) error {
		// 1) Ambil token: Authorization: Bearer xxx (atau cookie jika diizinkan)
		raw := ""
		if authz := strings.TrimSpace(c.Get(fiber.HeaderAuthorization)); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			raw = strings.TrimSpace(authz[7:])
		} else if o.AllowCookieFallback {
			raw = strings.TrimSpace(c.Cookies("access_token"))
		}
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		// 2) Cek blacklist
		if o.BlacklistChecker != nil {
			if black, err := o.BlacklistChecker(c, raw); err == nil && black {
				return fiber.NewError(fiber.StatusUnauthorized, "Sesi sudah keluar. Silakan login lagi.")
			}
		}

		// 3) Parse + verifikasi algoritma
		tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !tok.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}

		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
		}
		if typ := strClaim(claims, "typ"); typ != "" && typ != "access" {
			return fiber.NewError(fiber.StatusUnauthorized, "Bukan access token")
		}

		userID := strClaim(claims, "id")
		if userID == "" {
			userID = strClaim(claims, "sub")
		}
		if _, err := uuid.Parse(userID); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "user_id tidak valid")
		}

		c.Locals(helper.LocRawToken, raw)
		c.Locals("jwt_claims", claims)
		c.Locals(helperAuth.LocUserID, userID)

		if sid := strClaim(claims, "school_id"); sid != "" {
			c.Locals(helperAuth.LocActiveSchoolID, sid)
		}
		if tid := strClaim(claims, "teacher_id"); tid != "" {
			c.Locals(helperAuth.LocTeacherID, tid)
		}

		rc := helperAuth.RolesClaim{
			RolesGlobal: readStringSlice(claims["roles_global"]),
			SchoolRoles: readSchoolRoles(claims["school_roles"]),
		}
		c.Locals(helperAuth.LocRolesGlobal, rc.RolesGlobal)
		c.Locals(helperAuth.LocSchoolRoles, rc.SchoolRoles)
		c.Locals(helperAuth.LocRolesClaim, rc)

		return c.Next()
	}
}

// util kecil untuk ambil string claim
func strClaim(m jwt.MapClaims, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// util: ubah nilai interface{} → []string (robust untuk []string atau []any)
func readStringSlice(v any) []string {
	out := make([]string, 0)
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, it := range t {
			if s, ok := it.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func readSchoolRoles(v any) []helperAuth.SchoolRolesEntry {
	out := make([]helperAuth.SchoolRolesEntry, 0)
	arr, ok := v.([]any)
	if !ok {
		return out
	}
	for _, it := range arr {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		s, _ := m["school_id"].(string)
		id, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			continue
		}
		out = append(out, helperAuth.SchoolRolesEntry{SchoolID: id, Roles: readStringSlice(m["roles"])})
	}
	return out
}
