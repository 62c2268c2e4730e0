package controller

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/hr/staff/dto"
	"schoolhub_backend/internals/features/hr/staff/model"
	"schoolhub_backend/internals/features/hr/staff/service"
	roleService "schoolhub_backend/internals/features/users/roles/service"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

type StaffController struct {
	DB       *gorm.DB
	Validate *validator.Validate
	Svc      *service.StaffService
}

func NewStaffController(db *gorm.DB, v *validator.Validate) *StaffController {
	if v == nil {
		v = helper.NewValidator()
	}
	return &StaffController{DB: db, Validate: v, Svc: service.NewStaffService(db, nil)}
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

func (ctl *StaffController) load(c *fiber.Ctx) (model.StaffModel, error) {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return model.StaffModel{}, err
	}
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return model.StaffModel{}, fiber.NewError(fiber.StatusBadRequest, "staff_id tidak valid")
	}
	m, err := service.LoadStaff(reqCtx(c), ctl.DB, schoolID, id)
	if err != nil {
		return m, fiber.NewError(helper.StatusFor(err), helper.UserMessage(err))
	}
	return m, nil
}

// GET /staff?q=&position=&status=
func (ctl *StaffController) List(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	p := helper.ParseFiber(c, "name", "asc", helper.AdminOpts)

	q := ctl.DB.WithContext(reqCtx(c)).Table("staff s").
		Joins("JOIN users u ON u.id = s.staff_user_id").
		Where("s.staff_school_id = ? AND s.staff_deleted_at IS NULL", schoolID)
	if s := strings.TrimSpace(c.Query("q")); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(COALESCE(u.full_name, '')) LIKE ? OR LOWER(u.email) LIKE ?", like, like)
	}
	if pos := strings.TrimSpace(c.Query("position")); pos != "" {
		if !dto.ValidPosition(pos) {
			return helper.JsonError(c, fiber.StatusBadRequest, "position tidak dikenal")
		}
		q = q.Where("s.staff_position = ?", pos)
	}
	if st := strings.TrimSpace(c.Query("status")); st != "" {
		q = q.Where("s.staff_status = ?", st)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung staf")
	}
	rows := []dto.StaffListItem{}
	order := p.OrderClause(map[string]string{
		"name":      "COALESCE(u.full_name, u.user_name)",
		"position":  "s.staff_position",
		"hire_date": "s.staff_hire_date",
	}, "name")
	if err := q.Select(`s.staff_id, s.staff_user_id, u.full_name, u.user_name, u.email, u.phone,
			s.staff_position, s.staff_department, s.staff_hire_date, s.staff_status`).
		Order(order).Limit(p.Limit()).Offset(p.Offset()).
		Scan(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil staf")
	}
	return helper.JsonList(c, "OK", rows, helper.BuildMeta(total, p))
}

// GET /staff/:id
func (ctl *StaffController) Get(c *fiber.Ctx) error {
	m, err := ctl.load(c)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "OK", m)
}

// POST /staff
func (ctl *StaffController) Create(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.CreateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	resp, err := ctl.Svc.Create(reqCtx(c), schoolID, req, actor(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Staf ditambahkan", resp)
}

// PATCH /staff/:id
func (ctl *StaffController) Update(c *fiber.Ctx) error {
	m, err := ctl.load(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	up := req.Updates()
	if len(up) == 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "Tidak ada perubahan")
	}
	if err := service.ChangePosition(reqCtx(c), ctl.DB, m, up, actor(c)); err != nil {
		return helper.FromServiceError(c, err)
	}
	fresh, err := service.LoadStaff(reqCtx(c), ctl.DB, m.StaffSchoolID, m.StaffID)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Staf diperbarui", fresh)
}

// DELETE /staff/:id : soft delete + cabut role jabatannya
func (ctl *StaffController) Delete(c *fiber.Ctx) error {
	m, err := ctl.load(c)
	if err != nil {
		return err
	}
	err = ctl.DB.WithContext(reqCtx(c)).Transaction(func(tx *gorm.DB) error {
		if r := service.RoleForPosition(m.StaffPosition); r != "" {
			if err := roleService.RevokeRole(reqCtx(c), tx, m.StaffUserID, r, &m.StaffSchoolID); err != nil {
				return err
			}
		}
		return tx.Delete(&m).Error
	})
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghapus staf")
	}
	return helper.JsonDeleted(c, "Staf dihapus", fiber.Map{"staff_id": m.StaffID})
}
