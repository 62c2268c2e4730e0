package controller

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/finance/fees/dto"
	"schoolhub_backend/internals/features/finance/fees/model"
	"schoolhub_backend/internals/features/finance/fees/service"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

type FeeController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewFeeController(db *gorm.DB, v *validator.Validate) *FeeController {
	if v == nil {
		v = helper.NewValidator()
	}
	return &FeeController{DB: db, Validate: v}
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

func queryUUID(c *fiber.Ctx, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, key+" tidak valid")
	}
	return &id, nil
}

func requiredQueryUUID(c *fiber.Ctx, key string) (uuid.UUID, error) {
	id, err := queryUUID(c, key)
	if err != nil {
		return uuid.Nil, err
	}
	if id == nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, key+" wajib diisi")
	}
	return *id, nil
}

func (ctl *FeeController) bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(out); err != nil {
		return helper.ValidationError(c, err)
	}
	return nil
}

/* =========================
   Fee types
========================= */

// GET /finance/fee-types?category=&status=
func (ctl *FeeController) ListFeeTypes(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	rows, err := service.ListFeeTypes(reqCtx(c), ctl.DB, schoolID, c.Query("category"), c.Query("status"))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", rows)
}

// POST /finance/fee-types
func (ctl *FeeController) CreateFeeType(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.FeeTypeRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	out, err := service.CreateFeeType(reqCtx(c), ctl.DB, req.ToModel(schoolID))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Jenis biaya dibuat", out)
}

// PATCH /finance/fee-types/:id
func (ctl *FeeController) UpdateFeeType(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req dto.FeeTypeUpdateRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	out, err := service.UpdateFeeType(reqCtx(c), ctl.DB, schoolID, id, req.Updates())
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Jenis biaya diperbarui", out)
}

// DELETE /finance/fee-types/:id
func (ctl *FeeController) DeleteFeeType(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := service.DeleteFeeType(reqCtx(c), ctl.DB, schoolID, id); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonDeleted(c, "Jenis biaya dihapus", fiber.Map{"fee_type_id": id})
}

// GET /finance/fee-types/templates?category=
func (ctl *FeeController) ListTemplates(c *fiber.Ctx) error {
	rows, err := service.ListTemplates(reqCtx(c), ctl.DB, c.Query("category"))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", rows)
}

// POST /finance/fee-types/templates/copy
func (ctl *FeeController) CopyTemplates(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.CopyTemplatesRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	out, err := service.CopyTemplates(reqCtx(c), ctl.DB, schoolID, req.Codes)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Template disalin", out)
}

/* =========================
   Fee structures
========================= */

// GET /finance/fee-structures?school_year_id=&grade_id=&fee_type_id=
func (ctl *FeeController) ListStructures(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var f service.StructureFilter
	if f.SchoolYearID, err = queryUUID(c, "school_year_id"); err != nil {
		return err
	}
	if f.GradeID, err = queryUUID(c, "grade_id"); err != nil {
		return err
	}
	if f.FeeTypeID, err = queryUUID(c, "fee_type_id"); err != nil {
		return err
	}
	rows, err := service.ListStructures(reqCtx(c), ctl.DB, schoolID, f)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", rows)
}

// POST /finance/fee-structures
func (ctl *FeeController) CreateStructure(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.FeeStructureRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	m, ok := req.ToModel(schoolID)
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "Rentang tanggal berlaku tidak valid")
	}
	out, err := service.CreateStructure(reqCtx(c), ctl.DB, m)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Struktur biaya dibuat", out)
}

// POST /finance/fee-structures/bulk
func (ctl *FeeController) BulkCreateStructures(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.FeeStructureBulkRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	rows := make([]model.FeeStructureModel, 0, len(req.Items))
	for i, it := range req.Items {
		m, ok := it.ToModel(schoolID)
		if !ok {
			return helper.JsonErrorData(c, fiber.StatusBadRequest, "Rentang tanggal berlaku tidak valid", fiber.Map{"index": i})
		}
		rows = append(rows, m)
	}
	out, err := service.BulkCreateStructures(reqCtx(c), ctl.DB, rows)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Struktur biaya dibuat", out)
}

// PATCH /finance/fee-structures/:id
func (ctl *FeeController) UpdateStructure(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req dto.FeeStructureUpdateRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	u, ok := req.Updates()
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "Rentang tanggal berlaku tidak valid")
	}
	out, err := service.UpdateStructure(reqCtx(c), ctl.DB, schoolID, id, u)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Struktur biaya diperbarui", out)
}

// DELETE /finance/fee-structures/:id
func (ctl *FeeController) DeleteStructure(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := service.DeleteStructure(reqCtx(c), ctl.DB, schoolID, id); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonDeleted(c, "Struktur biaya dihapus", fiber.Map{"fee_structure_id": id})
}

// GET /finance/fee-structures/students/:student_id?school_year_id=
func (ctl *FeeController) StructuresForStudent(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	studentID, err := paramUUID(c, "student_id")
	if err != nil {
		return err
	}
	yearID, err := requiredQueryUUID(c, "school_year_id")
	if err != nil {
		return err
	}
	rows, err := service.StructuresForStudent(reqCtx(c), ctl.DB, schoolID, studentID, yearID)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", rows)
}

/* =========================
   Discounts
========================= */

// GET /finance/discounts?status=
func (ctl *FeeController) ListDiscounts(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	rows, err := service.ListDiscounts(reqCtx(c), ctl.DB, schoolID, c.Query("status"))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", rows)
}

// POST /finance/discounts
func (ctl *FeeController) CreateDiscount(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.DiscountRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	m, ok := req.ToModel(schoolID)
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "Persentase maksimal 100 dan masa berlaku harus valid")
	}
	out, err := service.CreateDiscount(reqCtx(c), ctl.DB, m)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Diskon dibuat", out)
}

// PATCH /finance/discounts/:id
func (ctl *FeeController) UpdateDiscount(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req dto.DiscountUpdateRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	out, err := service.UpdateDiscount(reqCtx(c), ctl.DB, schoolID, id, req.Updates())
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Diskon diperbarui", out)
}

// DELETE /finance/discounts/:id
func (ctl *FeeController) DeleteDiscount(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := service.DeleteDiscount(reqCtx(c), ctl.DB, schoolID, id); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonDeleted(c, "Diskon dihapus", fiber.Map{"discount_id": id})
}

// POST /finance/discounts/assign
func (ctl *FeeController) AssignDiscount(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.AssignDiscountRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	out, err := service.AssignDiscount(reqCtx(c), ctl.DB, schoolID, req, actor(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Diskon diberikan", out)
}

// GET /finance/student-discounts?student_id=&school_year_id=
func (ctl *FeeController) ListStudentDiscounts(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	studentID, err := requiredQueryUUID(c, "student_id")
	if err != nil {
		return err
	}
	yearID, err := queryUUID(c, "school_year_id")
	if err != nil {
		return err
	}
	rows, err := service.ListStudentDiscounts(reqCtx(c), ctl.DB, schoolID, studentID, yearID)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", rows)
}

// POST /finance/student-discounts/:id/approve
func (ctl *FeeController) ApproveStudentDiscount(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ApproveDiscountRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	out, err := service.ApproveStudentDiscount(reqCtx(c), ctl.DB, schoolID, id, req.Approve, actor(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Diskon siswa diproses", out)
}

/* =========================
   Student fees
========================= */

// GET /finance/student-fees?student_id=&school_year_id=&status=
func (ctl *FeeController) ListStudentFees(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	f := service.StudentFeeFilter{Status: strings.TrimSpace(c.Query("status"))}
	if f.StudentID, err = queryUUID(c, "student_id"); err != nil {
		return err
	}
	if f.SchoolYearID, err = queryUUID(c, "school_year_id"); err != nil {
		return err
	}
	p := helper.ParseFiber(c, "created_at", "desc", helper.AdminOpts)
	rows, total, err := service.ListStudentFees(reqCtx(c), ctl.DB, schoolID, f, p)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonList(c, "OK", rows, helper.BuildMeta(total, p))
}

// GET /finance/student-fees/calculate?student_id=&school_year_id=
func (ctl *FeeController) Calculate(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	studentID, err := requiredQueryUUID(c, "student_id")
	if err != nil {
		return err
	}
	yearID, err := requiredQueryUUID(c, "school_year_id")
	if err != nil {
		return err
	}
	out, err := service.CalculateForStudent(reqCtx(c), ctl.DB, schoolID, studentID, yearID)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", out)
}

// POST /finance/student-fees/assign
func (ctl *FeeController) AssignToStudent(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.AssignFeesRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	out, err := service.AssignToStudent(reqCtx(c), ctl.DB, schoolID, req.StudentID, req.SchoolYearID, actor(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Tagihan siswa dibuat", out)
}

// POST /finance/student-fees/bulk-assign
func (ctl *FeeController) BulkAssignToClass(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.BulkAssignRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	out, err := service.BulkAssignToClass(reqCtx(c), ctl.DB, schoolID, req.ClassID, req.SchoolYearID, actor(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	if out.Failed > 0 {
		return helper.JsonErrorData(c, fiber.StatusUnprocessableEntity, "Penagihan massal gagal", out)
	}
	return helper.JsonCreated(c, "Penagihan massal selesai", out)
}

// POST /finance/student-fees/:id/waive
func (ctl *FeeController) Waive(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req dto.WaiveRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	out, err := service.WaiveFee(reqCtx(c), ctl.DB, schoolID, id, strings.TrimSpace(req.Reason), actor(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Tagihan dibebaskan", out)
}

// GET /finance/student-fees/students/:student_id/summary?school_year_id=
func (ctl *FeeController) StudentSummary(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	studentID, err := paramUUID(c, "student_id")
	if err != nil {
		return err
	}
	yearID, err := queryUUID(c, "school_year_id")
	if err != nil {
		return err
	}
	out, err := service.StudentFeeSummary(reqCtx(c), ctl.DB, schoolID, studentID, yearID)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", out)
}

// GET /finance/student-fees/outstanding?school_year_id=
func (ctl *FeeController) Outstanding(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	yearID, err := queryUUID(c, "school_year_id")
	if err != nil {
		return err
	}
	p := helper.ParseFiber(c, "total_balance", "desc", helper.AdminOpts)
	rows, total, err := service.Outstanding(reqCtx(c), ctl.DB, schoolID, yearID, p)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonList(c, "OK", rows, helper.BuildMeta(total, p))
}
