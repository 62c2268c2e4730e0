package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolhub_backend/internals/features/school/students/students/dto"
	"schoolhub_backend/internals/features/school/students/students/model"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

// GET /parents?q=
func (ctl *StudentController) ListParents(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	p := helper.ParseFiber(c, "last_name", "asc", helper.DefaultOpts)
	q := ctl.DB.WithContext(reqCtx(c)).Model(&model.ParentModel{}).Where("parent_school_id = ?", schoolID)
	if s := strings.TrimSpace(c.Query("q")); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(parent_first_name) LIKE ? OR LOWER(parent_last_name) LIKE ? OR parent_phone LIKE ? OR parent_email LIKE ?",
			like, like, "%"+s+"%", like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung orang tua")
	}
	rows := []model.ParentModel{}
	if err := q.Order(p.OrderClause(map[string]string{
		"last_name": "parent_last_name",
		"created":   "parent_created_at",
	}, "last_name")).Limit(p.Limit()).Offset(p.Offset()).Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil orang tua")
	}
	return helper.JsonList(c, "OK", rows, helper.BuildMeta(total, p))
}

// PUT /parents/:parent_id
func (ctl *StudentController) UpdateParent(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	pid, err := uuid.Parse(strings.TrimSpace(c.Params("parent_id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "parent_id tidak valid")
	}
	var req dto.ParentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	var m model.ParentModel
	if err := ctl.DB.WithContext(reqCtx(c)).
		Where("parent_id = ? AND parent_school_id = ?", pid, schoolID).First(&m).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Orang tua tidak ditemukan")
	}
	next := req.ToModel(schoolID)
	next.ParentID, next.ParentUserID, next.ParentCreatedAt = m.ParentID, m.ParentUserID, m.ParentCreatedAt
	if err := ctl.DB.WithContext(reqCtx(c)).Save(&next).Error; err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Orang tua diperbarui", next)
}

// POST /students/:id/parents : tautkan parent lama atau buat baru.
// is_primary=true menurunkan parent primary sebelumnya.
func (ctl *StudentController) LinkParent(c *fiber.Ctx) error {
	st, err := ctl.load(c)
	if err != nil {
		return err
	}
	var req dto.LinkParentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	var link model.StudentParentModel
	err = ctl.DB.WithContext(reqCtx(c)).Transaction(func(tx *gorm.DB) error {
		var parentID uuid.UUID
		if req.ParentID != nil {
			var n int64
			if err := tx.Model(&model.ParentModel{}).
				Where("parent_id = ? AND parent_school_id = ?", *req.ParentID, st.StudentSchoolID).
				Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return errors.Wrap(helper.ErrNotFound, "orang tua tidak ditemukan")
			}
			parentID = *req.ParentID
		} else {
			p := req.Parent.ToModel(st.StudentSchoolID)
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
			parentID = p.ParentID
		}

		if req.IsPrimary {
			if err := tx.Model(&model.StudentParentModel{}).
				Where("student_parent_student_id = ?", st.StudentID).
				Update("student_parent_is_primary", false).Error; err != nil {
				return err
			}
		}
		link = model.StudentParentModel{
			StudentParentStudentID:    st.StudentID,
			StudentParentParentID:     parentID,
			StudentParentRelationship: req.Relationship,
			StudentParentIsPrimary:    req.IsPrimary,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_parent_student_id"}, {Name: "student_parent_parent_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"student_parent_relationship", "student_parent_is_primary"}),
		}).Create(&link).Error
	})
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Orang tua ditautkan", link)
}

// DELETE /students/:id/parents/:parent_id
func (ctl *StudentController) UnlinkParent(c *fiber.Ctx) error {
	st, err := ctl.load(c)
	if err != nil {
		return err
	}
	pid, err := uuid.Parse(strings.TrimSpace(c.Params("parent_id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "parent_id tidak valid")
	}
	res := ctl.DB.WithContext(reqCtx(c)).
		Where("student_parent_student_id = ? AND student_parent_parent_id = ?", st.StudentID, pid).
		Delete(&model.StudentParentModel{})
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal melepas orang tua")
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Orang tua tidak tertaut ke siswa ini")
	}
	return helper.JsonDeleted(c, "Orang tua dilepas", fiber.Map{"student_id": st.StudentID, "parent_id": pid})
}
