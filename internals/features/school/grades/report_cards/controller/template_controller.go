package controller

import (
	"github.com/gofiber/fiber/v2"

	"schoolhub_backend/internals/features/school/grades/report_cards/dto"
	"schoolhub_backend/internals/features/school/grades/report_cards/model"
	"schoolhub_backend/internals/features/school/grades/report_cards/service"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

// GET /report-card-templates
func (ctl *ReportCardController) ListTemplates(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	rows := []model.ReportCardTemplateModel{}
	if err := ctl.DB.WithContext(reqCtx(c)).
		Where("report_card_template_school_id = ?", schoolID).
		Order("report_card_template_is_default DESC, report_card_template_name ASC").
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil template")
	}
	return helper.JsonOK(c, "OK", rows)
}

// POST /report-card-templates
func (ctl *ReportCardController) CreateTemplate(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.TemplateRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	m, err := service.CreateTemplate(reqCtx(c), ctl.DB, schoolID, req)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Template dibuat", m)
}

// PATCH /report-card-templates/:id
func (ctl *ReportCardController) UpdateTemplate(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateTemplateRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	m, err := service.UpdateTemplate(reqCtx(c), ctl.DB, schoolID, id, req)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Template diperbarui", m)
}

// DELETE /report-card-templates/:id
func (ctl *ReportCardController) DeleteTemplate(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := service.DeleteTemplate(reqCtx(c), ctl.DB, schoolID, id); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonDeleted(c, "Template dihapus", fiber.Map{"report_card_template_id": id})
}
