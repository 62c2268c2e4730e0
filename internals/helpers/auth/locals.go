// file: internals/helpers/auth/locals.go
package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"schoolhub_backend/internals/constants"
)

/* ============================================
   Locals Keys (diisi middleware AuthJWT)
   ============================================ */

const (
	LocUserID         = "user_id"          // string UUID
	LocRolesGlobal    = "roles_global"     // []string
	LocSchoolRoles    = "school_roles"     // []SchoolRolesEntry
	LocActiveSchoolID = "active_school_id" // string UUID
	LocTeacherID      = "teacher_id"       // string UUID
	LocRolesClaim     = "roles_claim"      // RolesClaim
	LocSchoolID       = "school_id"        // uuid.UUID hasil UseSchoolScope
)

type SchoolRolesEntry struct {
	SchoolID uuid.UUID `json:"school_id"`
	Roles    []string  `json:"roles"`
}

type RolesClaim struct {
	RolesGlobal []string           `json:"roles_global"`
	SchoolRoles []SchoolRolesEntry `json:"school_roles"`
}

// GetUserIDFromToken: user_id dari locals, 401 kalau tidak ada/invalid.
func GetUserIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	raw, _ := c.Locals(LocUserID).(string)
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "User ID tidak ditemukan di token")
	}
	return id, nil
}

// GetTeacherIDFromToken: teacher_id opsional (nil kalau user bukan guru).
func GetTeacherIDFromToken(c *fiber.Ctx) *uuid.UUID {
	raw, _ := c.Locals(LocTeacherID).(string)
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return nil
	}
	return &id
}

func GetRolesClaim(c *fiber.Ctx) RolesClaim {
	if rc, ok := c.Locals(LocRolesClaim).(RolesClaim); ok {
		return rc
	}
	return RolesClaim{}
}

// IsOwnerGlobal: owner/superadmin platform.
func IsOwnerGlobal(c *fiber.Ctx) bool {
	return hasAny(GetRolesClaim(c).RolesGlobal, constants.GlobalOwnerRoles...)
}

// RolesInSchool: semua role user pada sekolah tertentu.
func RolesInSchool(c *fiber.Ctx, schoolID uuid.UUID) []string {
	for _, e := range GetRolesClaim(c).SchoolRoles {
		if e.SchoolID == schoolID {
			return e.Roles
		}
	}
	return nil
}

// HasSchoolRole: true kalau user punya salah satu role di sekolah itu.
// Owner global selalu lolos.
func HasSchoolRole(c *fiber.Ctx, schoolID uuid.UUID, roles ...string) bool {
	if IsOwnerGlobal(c) {
		return true
	}
	return hasAny(RolesInSchool(c, schoolID), roles...)
}

func hasAny(have []string, wanted ...string) bool {
	set := make(map[string]struct{}, len(have))
	for _, r := range have {
		set[strings.ToLower(strings.TrimSpace(r))] = struct{}{}
	}
	for _, w := range wanted {
		if _, ok := set[strings.ToLower(w)]; ok {
			return true
		}
	}
	return false
}
