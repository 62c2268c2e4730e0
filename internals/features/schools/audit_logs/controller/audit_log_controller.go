package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/schools/audit_logs/model"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

type AuditLogController struct {
	DB *gorm.DB
}

func NewAuditLogController(db *gorm.DB) *AuditLogController {
	return &AuditLogController{DB: db}
}

// GET /audit-logs?entity_type=&entity_id=&action=
func (ctl *AuditLogController) List(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	p := helper.ParseFiber(c, "created_at", "desc", helper.AdminOpts)

	q := ctl.DB.WithContext(c.UserContext()).Model(&model.AuditLogModel{}).
		Where("audit_log_school_id = ?", schoolID)
	if et := strings.TrimSpace(c.Query("entity_type")); et != "" {
		q = q.Where("audit_log_entity_type = ?", et)
	}
	if raw := strings.TrimSpace(c.Query("entity_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "entity_id tidak valid")
		}
		q = q.Where("audit_log_entity_id = ?", id)
	}
	if a := strings.TrimSpace(c.Query("action")); a != "" {
		q = q.Where("audit_log_action = ?", a)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung log")
	}
	rows := []model.AuditLogModel{}
	if err := q.Order(p.OrderClause(map[string]string{
		"created_at": "audit_log_created_at",
		"action":     "audit_log_action",
	}, "created_at")).
		Limit(p.Limit()).Offset(p.Offset()).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil log")
	}
	return helper.JsonList(c, "OK", rows, helper.BuildMeta(total, p))
}
