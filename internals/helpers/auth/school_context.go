// file: internals/helpers/auth/school_context.go
package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var (
	ErrSchoolContextMissing   = fiber.NewError(fiber.StatusBadRequest, "School context tidak ditemukan. Sertakan :school_id di path atau header X-Active-School-ID.")
	ErrSchoolContextForbidden = fiber.NewError(fiber.StatusForbidden, "Anda tidak memiliki akses ke sekolah ini.")
)

// ResolveSchoolID: path → header → token (single school).
func ResolveSchoolID(c *fiber.Ctx) (uuid.UUID, error) {
	if v := strings.TrimSpace(c.Params("school_id")); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "school_id tidak valid")
		}
		return id, nil
	}
	if v := strings.TrimSpace(c.Get("X-Active-School-ID")); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			return id, nil
		}
	}
	if v, ok := c.Locals(LocActiveSchoolID).(string); ok {
		if id, err := uuid.Parse(strings.TrimSpace(v)); err == nil {
			return id, nil
		}
	}
	return uuid.Nil, ErrSchoolContextMissing
}

// SchoolIDFromCtx: school yang sudah diverifikasi middleware UseSchoolScope.
func SchoolIDFromCtx(c *fiber.Ctx) (uuid.UUID, error) {
	if id, ok := c.Locals(LocSchoolID).(uuid.UUID); ok && id != uuid.Nil {
		return id, nil
	}
	return ResolveSchoolID(c)
}

// EnsureSchoolRole: resolve school + cek role. Dipakai handler yang butuh role lebih sempit
// dari guard group (mis. validasi nilai, keuangan).
func EnsureSchoolRole(c *fiber.Ctx, roles ...string) (uuid.UUID, error) {
	schoolID, err := SchoolIDFromCtx(c)
	if err != nil {
		return uuid.Nil, err
	}
	if !HasSchoolRole(c, schoolID, roles...) {
		return uuid.Nil, ErrSchoolContextForbidden
	}
	return schoolID, nil
}
