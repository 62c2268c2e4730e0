package controller

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"schoolhub_backend/internals/features/school/grades/student_grades/dto"
	"schoolhub_backend/internals/features/school/grades/student_grades/service"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

// POST /averages/recalculate
func (ctl *StudentGradeController) Recalculate(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.RecalculateRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	res, err := service.Recompute(reqCtx(c), ctl.DB, schoolID, req.ClassID, req.TermID)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, fmt.Sprintf("Rata-rata %d siswa dihitung ulang", res.Students), res)
}

// GET /averages/classes/:class_id?term_id=&subject_id=
func (ctl *StudentGradeController) Averages(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	classID, err := paramUUID(c, "class_id")
	if err != nil {
		return err
	}
	termID, err := queryUUID(c, "term_id")
	if err != nil {
		return err
	}
	if termID == nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "term_id wajib diisi")
	}
	subjectID, err := queryUUID(c, "subject_id")
	if err != nil {
		return err
	}
	if err := service.EnsureClass(ctl.DB.WithContext(reqCtx(c)), schoolID, classID); err != nil {
		return helper.FromServiceError(c, err)
	}
	rows, err := service.Averages(reqCtx(c), ctl.DB, schoolID, classID, *termID, subjectID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil rata-rata")
	}
	return helper.JsonOK(c, "OK", rows)
}

// GET /averages/classes/:class_id/export?term_id=
func (ctl *StudentGradeController) ExportSheet(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	classID, err := paramUUID(c, "class_id")
	if err != nil {
		return err
	}
	termID, err := queryUUID(c, "term_id")
	if err != nil {
		return err
	}
	if termID == nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "term_id wajib diisi")
	}
	gs, err := service.LoadGradeSheet(reqCtx(c), ctl.DB, schoolID, classID, *termID)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	f, err := service.BuildGradeSheet(gs)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat file excel")
	}
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat file excel")
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="notes.xlsx"`)
	return c.Send(buf.Bytes())
}
