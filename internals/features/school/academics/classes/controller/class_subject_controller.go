package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"schoolhub_backend/internals/features/school/academics/classes/dto"
	"schoolhub_backend/internals/features/school/academics/classes/model"
	"schoolhub_backend/internals/features/school/academics/classes/service"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

func (ctl *ClassController) classSubjects(c *fiber.Ctx, schoolID, classID uuid.UUID) ([]dto.ClassSubjectItem, error) {
	rows := []dto.ClassSubjectItem{}
	err := ctl.DB.WithContext(reqCtx(c)).Table("class_subjects cs").
		Select(`cs.class_subject_id, cs.class_subject_class_id, cs.class_subject_subject_id,
			s.subject_name, s.subject_category, cs.class_subject_teacher_id,
			COALESCE(u.full_name, u.user_name) AS teacher_name,
			cs.class_subject_coefficient, cs.class_subject_hours_per_week`).
		Joins("JOIN subjects s ON s.subject_id = cs.class_subject_subject_id").
		Joins("LEFT JOIN teachers t ON t.teacher_id = cs.class_subject_teacher_id").
		Joins("LEFT JOIN users u ON u.id = t.teacher_user_id").
		Where("cs.class_subject_school_id = ? AND cs.class_subject_class_id = ?", schoolID, classID).
		Order("s.subject_name ASC").
		Scan(&rows).Error
	return rows, err
}

func (ctl *ClassController) classScope(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	classID, err := paramUUID(c, "id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if _, err := service.LoadClass(reqCtx(c), ctl.DB, schoolID, classID); err != nil {
		return uuid.Nil, uuid.Nil, fiber.NewError(helper.StatusFor(err), helper.UserMessage(err))
	}
	return schoolID, classID, nil
}

// GET /classes/:id/subjects
func (ctl *ClassController) ListSubjects(c *fiber.Ctx) error {
	schoolID, classID, err := ctl.classScope(c)
	if err != nil {
		return err
	}
	rows, err := ctl.classSubjects(c, schoolID, classID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil mapel kelas")
	}
	return helper.JsonOK(c, "OK", rows)
}

// POST /classes/:id/subjects (upsert per class+subject)
func (ctl *ClassController) AddSubject(c *fiber.Ctx) error {
	schoolID, classID, err := ctl.classScope(c)
	if err != nil {
		return err
	}
	var req dto.ClassSubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	row := model.ClassSubjectModel{
		ClassSubjectSchoolID:     schoolID,
		ClassSubjectClassID:      classID,
		ClassSubjectSubjectID:    req.SubjectID,
		ClassSubjectTeacherID:    req.TeacherID,
		ClassSubjectCoefficient:  1,
		ClassSubjectHoursPerWeek: 2,
	}
	if req.Coefficient != nil {
		row.ClassSubjectCoefficient = *req.Coefficient
	}
	if req.HoursPerWeek != nil {
		row.ClassSubjectHoursPerWeek = *req.HoursPerWeek
	}
	err = ctl.DB.WithContext(reqCtx(c)).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "class_subject_class_id"}, {Name: "class_subject_subject_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"class_subject_teacher_id", "class_subject_coefficient",
			"class_subject_hours_per_week", "class_subject_updated_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Mapel ditambahkan ke kelas", row)
}

// PATCH /classes/:id/subjects/:subject_id
func (ctl *ClassController) UpdateSubject(c *fiber.Ctx) error {
	_, classID, err := ctl.classScope(c)
	if err != nil {
		return err
	}
	subjectID, err := paramUUID(c, "subject_id")
	if err != nil {
		return err
	}
	var req dto.UpdateClassSubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	up := map[string]any{}
	if req.Coefficient != nil {
		up["class_subject_coefficient"] = *req.Coefficient
	}
	if req.HoursPerWeek != nil {
		up["class_subject_hours_per_week"] = *req.HoursPerWeek
	}
	if len(up) == 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "Tidak ada perubahan")
	}
	return ctl.updateClassSubject(c, classID, subjectID, up, "Mapel kelas diperbarui")
}

func (ctl *ClassController) updateClassSubject(c *fiber.Ctx, classID, subjectID uuid.UUID, up map[string]any, msg string) error {
	res := ctl.DB.WithContext(reqCtx(c)).Model(&model.ClassSubjectModel{}).
		Where("class_subject_class_id = ? AND class_subject_subject_id = ?", classID, subjectID).
		Updates(up)
	if res.Error != nil {
		return helper.FromServiceError(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Mapel tidak terdaftar di kelas ini")
	}
	return helper.JsonUpdated(c, msg, fiber.Map{"class_id": classID, "subject_id": subjectID})
}

// DELETE /classes/:id/subjects/:subject_id
func (ctl *ClassController) RemoveSubject(c *fiber.Ctx) error {
	_, classID, err := ctl.classScope(c)
	if err != nil {
		return err
	}
	subjectID, err := paramUUID(c, "subject_id")
	if err != nil {
		return err
	}
	res := ctl.DB.WithContext(reqCtx(c)).
		Where("class_subject_class_id = ? AND class_subject_subject_id = ?", classID, subjectID).
		Delete(&model.ClassSubjectModel{})
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghapus mapel kelas")
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Mapel tidak terdaftar di kelas ini")
	}
	return helper.JsonDeleted(c, "Mapel dihapus dari kelas", fiber.Map{"class_id": classID, "subject_id": subjectID})
}

// PUT /classes/:id/subjects/:subject_id/teacher
func (ctl *ClassController) AssignTeacher(c *fiber.Ctx) error {
	schoolID, classID, err := ctl.classScope(c)
	if err != nil {
		return err
	}
	subjectID, err := paramUUID(c, "subject_id")
	if err != nil {
		return err
	}
	var req dto.AssignTeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	ok, err := service.TeacherQualified(reqCtx(c), ctl.DB, schoolID, req.TeacherID, subjectID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memeriksa kompetensi guru")
	}
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "Guru tidak terdaftar untuk mapel ini")
	}
	return ctl.updateClassSubject(c, classID, subjectID,
		map[string]any{"class_subject_teacher_id": req.TeacherID}, "Guru ditetapkan")
}

// DELETE /classes/:id/subjects/:subject_id/teacher
func (ctl *ClassController) UnassignTeacher(c *fiber.Ctx) error {
	_, classID, err := ctl.classScope(c)
	if err != nil {
		return err
	}
	subjectID, err := paramUUID(c, "subject_id")
	if err != nil {
		return err
	}
	return ctl.updateClassSubject(c, classID, subjectID,
		map[string]any{"class_subject_teacher_id": nil}, "Guru dilepas dari mapel")
}

// POST /classes/:id/subjects/copy
func (ctl *ClassController) CopySubjects(c *fiber.Ctx) error {
	schoolID, classID, err := ctl.classScope(c)
	if err != nil {
		return err
	}
	var req dto.CopySubjectsRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	if req.SourceClassID == classID {
		return helper.JsonError(c, fiber.StatusBadRequest, "Kelas sumber sama dengan kelas tujuan")
	}
	if _, err := service.LoadClass(reqCtx(c), ctl.DB, schoolID, req.SourceClassID); err != nil {
		return helper.FromServiceError(c, err)
	}
	rows, err := service.CopySubjects(reqCtx(c), ctl.DB, schoolID, req.SourceClassID, classID, req.Overwrite)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "Mapel disalin", fiber.Map{"copied": len(rows), "items": rows})
}

// GET /teachers/:teacher_id/workload?school_year_id=
func (ctl *ClassController) TeacherWorkload(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	teacherID, err := paramUUID(c, "teacher_id")
	if err != nil {
		return err
	}
	yearID, err := queryUUID(c, "school_year_id")
	if err != nil {
		return err
	}
	rows, err := service.TeacherAssignments(reqCtx(c), ctl.DB, schoolID, teacherID, yearID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil beban mengajar")
	}
	return helper.JsonOK(c, "OK", service.Workload(teacherID, rows))
}
