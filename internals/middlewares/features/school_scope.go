package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"schoolhub_backend/internals/constants"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

// UseSchoolScope: resolve :school_id lalu simpan di locals sebagai uuid.UUID.
func UseSchoolScope() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := helperAuth.ResolveSchoolID(c)
		if err != nil {
			return err
		}
		c.Locals(helperAuth.LocSchoolID, id)
		return c.Next()
	}
}

// RequirePathScopeMatch: kalau token mengunci satu sekolah (claim school_id),
// path tidak boleh menunjuk sekolah lain. Owner global bebas.
func RequirePathScopeMatch() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if helperAuth.IsOwnerGlobal(c) {
			return c.Next()
		}
		active, _ := c.Locals(helperAuth.LocActiveSchoolID).(string)
		if active == "" {
			return c.Next()
		}
		scoped, _ := c.Locals(helperAuth.LocSchoolID).(uuid.UUID)
		if scoped != uuid.Nil && scoped.String() != active {
			return fiber.NewError(fiber.StatusForbidden, "school_id pada path tidak sesuai dengan sesi aktif")
		}
		return c.Next()
	}
}

// RequireSchoolRoles: user harus punya salah satu role di sekolah dari scope.
func RequireSchoolRoles(feature string, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		schoolID, err := helperAuth.SchoolIDFromCtx(c)
		if err != nil {
			return err
		}
		if !helperAuth.HasSchoolRole(c, schoolID, roles...) {
			return fiber.NewError(fiber.StatusForbidden, constants.RoleErrorStaff(feature))
		}
		return c.Next()
	}
}

// IsSchoolStaff: guard default group /api/a.
func IsSchoolStaff() fiber.Handler {
	return RequireSchoolRoles("admin", constants.SchoolStaffRoles...)
}

// IsOwnerGlobal: owner/superadmin platform.
func IsOwnerGlobal() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !helperAuth.IsOwnerGlobal(c) {
			return fiber.NewError(fiber.StatusForbidden, constants.RoleErrorOwner("owner"))
		}
		return c.Next()
	}
}
