package controller

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/school/grades/report_cards/dto"
	"schoolhub_backend/internals/features/school/grades/report_cards/model"
	"schoolhub_backend/internals/features/school/grades/report_cards/service"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
	"schoolhub_backend/internals/helpers/mailer"
)

type ReportCardController struct {
	DB       *gorm.DB
	Validate *validator.Validate
	Svc      *service.ReportCardService
}

func NewReportCardController(db *gorm.DB, v *validator.Validate, m mailer.Mailer) *ReportCardController {
	if v == nil {
		v = helper.NewValidator()
	}
	return &ReportCardController{DB: db, Validate: v, Svc: service.New(db, m)}
}

func reqCtx(c *fiber.Ctx) context.Context {
	if uc := c.UserContext(); uc != nil {
		return uc
	}
	return context.Background()
}

func actor(c *fiber.Ctx) *uuid.UUID {
	if uid, err := helperAuth.GetUserIDFromToken(c); err == nil {
		return &uid
	}
	return nil
}

func paramUUID(c *fiber.Ctx, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params(key)))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, key+" tidak valid")
	}
	return id, nil
}

func queryUUID(c *fiber.Ctx, key string, required bool) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		if required {
			return nil, fiber.NewError(fiber.StatusBadRequest, key+" wajib diisi")
		}
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, key+" tidak valid")
	}
	return &id, nil
}

func (ctl *ReportCardController) bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(out); err != nil {
		return helper.ValidationError(c, err)
	}
	return nil
}

// GET /report-cards?term_id=&class_id=&status=
func (ctl *ReportCardController) List(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	termID, err := queryUUID(c, "term_id", true)
	if err != nil {
		return err
	}
	classID, err := queryUUID(c, "class_id", false)
	if err != nil {
		return err
	}
	p := helper.ParseFiber(c, "rank", "asc", helper.AdminOpts)

	q := ctl.DB.WithContext(reqCtx(c)).Table("report_cards r").
		Joins("JOIN students s ON s.student_id = r.report_card_student_id").
		Joins(`LEFT JOIN student_averages a ON a.student_average_student_id = r.report_card_student_id
			AND a.student_average_term_id = r.report_card_term_id AND a.student_average_subject_id IS NULL`).
		Where("r.report_card_school_id = ? AND r.report_card_term_id = ?", schoolID, *termID)
	if classID != nil {
		q = q.Where("r.report_card_class_id = ?", *classID)
	}
	if st := strings.TrimSpace(c.Query("status")); st != "" {
		q = q.Where("r.report_card_status = ?", st)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung rapor")
	}
	rows := []dto.ReportCardListItem{}
	if err := q.Select(`r.*, s.student_matricule, s.student_first_name, s.student_last_name,
			a.student_average_value AS overall_average, a.student_average_rank_in_class AS rank`).
		Order(p.OrderClause(map[string]string{
			"rank":      "a.student_average_rank_in_class",
			"last_name": "s.student_last_name",
			"status":    "r.report_card_status",
		}, "rank")).
		Limit(p.Limit()).Offset(p.Offset()).
		Scan(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil rapor")
	}
	return helper.JsonList(c, "OK", rows, helper.BuildMeta(total, p))
}

// GET /report-cards/:id
func (ctl *ReportCardController) Get(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	data, err := service.ReportData(reqCtx(c), ctl.DB, schoolID, id)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", data)
}

// POST /report-cards/generate
func (ctl *ReportCardController) Generate(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.GenerateRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	card, err := ctl.Svc.Generate(reqCtx(c), schoolID, req, actor(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "Rapor berhasil dibuat", card)
}

// POST /report-cards/generate-class
func (ctl *ReportCardController) BulkGenerate(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.BulkGenerateRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	res, err := ctl.Svc.BulkGenerate(reqCtx(c), schoolID, req, actor(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "Generate rapor kelas selesai", res)
}

// POST /report-cards/:id/send
func (ctl *ReportCardController) Send(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	res, err := ctl.Svc.Send(reqCtx(c), schoolID, id, actor(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "Rapor terkirim", res)
}

func (ctl *ReportCardController) mark(status string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		schoolID, err := helperAuth.SchoolIDFromCtx(c)
		if err != nil {
			return err
		}
		id, err := paramUUID(c, "id")
		if err != nil {
			return err
		}
		card, err := service.Mark(reqCtx(c), ctl.DB, schoolID, id, status)
		if err != nil {
			return helper.FromServiceError(c, err)
		}
		return helper.JsonUpdated(c, "Status rapor diperbarui", card)
	}
}

// POST /report-cards/:id/delivered
func (ctl *ReportCardController) MarkDelivered(c *fiber.Ctx) error {
	return ctl.mark(model.ReportCardDelivered)(c)
}

// POST /report-cards/:id/viewed
func (ctl *ReportCardController) MarkViewed(c *fiber.Ctx) error {
	return ctl.mark(model.ReportCardViewed)(c)
}

// PUT /report-cards/:id/comments
func (ctl *ReportCardController) UpsertComment(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CommentRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	m, err := service.UpsertComment(reqCtx(c), ctl.DB, schoolID, id, req, helperAuth.GetTeacherIDFromToken(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Komentar disimpan", m)
}

// PUT /report-cards/:id/homeroom-comment
func (ctl *ReportCardController) HomeroomComment(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req dto.HomeroomCommentRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	card, err := service.LoadReportCard(reqCtx(c), ctl.DB, schoolID, id)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	var comment *string
	if s := strings.TrimSpace(req.Comment); s != "" {
		comment = &s
	}
	if err := ctl.DB.WithContext(reqCtx(c)).Model(&card).
		Update("report_card_homeroom_comment", comment).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menyimpan komentar")
	}
	return helper.JsonUpdated(c, "Komentar wali kelas disimpan", card)
}

// GET /report-cards/delivery-status?term_id=&class_id=
func (ctl *ReportCardController) DeliveryStatus(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	termID, err := queryUUID(c, "term_id", true)
	if err != nil {
		return err
	}
	classID, err := queryUUID(c, "class_id", false)
	if err != nil {
		return err
	}
	rows, err := service.DeliveryStatus(reqCtx(c), ctl.DB, schoolID, *termID, classID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil status pengiriman")
	}
	return helper.JsonOK(c, "OK", rows)
}

// GET /report-cards/classes/:class_id/stats?term_id=
func (ctl *ReportCardController) ClassStats(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	classID, err := paramUUID(c, "class_id")
	if err != nil {
		return err
	}
	termID, err := queryUUID(c, "term_id", true)
	if err != nil {
		return err
	}
	st, err := service.ClassStats(reqCtx(c), ctl.DB, schoolID, classID, *termID)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", st)
}
