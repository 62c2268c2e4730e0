package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/configs"
	"schoolhub_backend/internals/features/school/students/students/dto"
	"schoolhub_backend/internals/features/school/students/students/model"
	"schoolhub_backend/internals/features/school/students/students/service"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

type StudentController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewStudentController(db *gorm.DB, v *validator.Validate) *StudentController {
	if v == nil {
		v = helper.NewValidator()
	}
	return &StudentController{DB: db, Validate: v}
}

func reqCtx(c *fiber.Ctx) context.Context {
	if uc := c.UserContext(); uc != nil {
		return uc
	}
	return context.Background()
}

func optUUID(c *fiber.Ctx, key string) (*uuid.UUID, error) {
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

func (ctl *StudentController) load(c *fiber.Ctx) (model.StudentModel, error) {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return model.StudentModel{}, err
	}
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return model.StudentModel{}, fiber.NewError(fiber.StatusBadRequest, "student_id tidak valid")
	}
	m, err := service.LoadStudent(reqCtx(c), ctl.DB, schoolID, id)
	if err != nil {
		return m, fiber.NewError(helper.StatusFor(err), helper.UserMessage(err))
	}
	return m, nil
}

// listQuery: siswa + kelas di enrollment confirmed (tahun ajaran tertentu atau yang aktif).
func (ctl *StudentController) listQuery(c *fiber.Ctx, schoolID uuid.UUID) (*gorm.DB, error) {
	yearID, err := optUUID(c, "school_year_id")
	if err != nil {
		return nil, err
	}
	classID, err := optUUID(c, "class_id")
	if err != nil {
		return nil, err
	}

	enrJoin := `LEFT JOIN enrollments e ON e.enrollment_student_id = s.student_id AND e.enrollment_status = 'confirmed'`
	var joinArgs []any
	if yearID != nil {
		enrJoin += " AND e.enrollment_school_year_id = ?"
		joinArgs = append(joinArgs, *yearID)
	} else {
		enrJoin += ` AND e.enrollment_school_year_id IN (
			SELECT school_year_id FROM school_years WHERE school_year_school_id = s.student_school_id AND school_year_is_active)`
	}

	q := ctl.DB.WithContext(reqCtx(c)).Table("students s").
		Joins(enrJoin, joinArgs...).
		Joins("LEFT JOIN classes c ON c.class_id = e.enrollment_class_id").
		Joins("LEFT JOIN series se ON se.serie_id = c.class_series_id").
		Where("s.student_school_id = ? AND s.student_deleted_at IS NULL", schoolID)

	if s := strings.TrimSpace(c.Query("q")); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where(`LOWER(s.student_first_name) LIKE ? OR LOWER(s.student_last_name) LIKE ? OR LOWER(s.student_matricule) LIKE ?`,
			like, like, like)
	}
	if st := strings.TrimSpace(c.Query("status")); st != "" {
		q = q.Where("s.student_status = ?", st)
	}
	if g := strings.TrimSpace(c.Query("gender")); g != "" {
		q = q.Where("s.student_gender = ?", g)
	}
	if classID != nil {
		q = q.Where("e.enrollment_class_id = ?", *classID)
	}
	return q, nil
}

var studentSorts = map[string]string{
	"last_name":  "s.student_last_name",
	"first_name": "s.student_first_name",
	"matricule":  "s.student_matricule",
	"created":    "s.student_created_at",
	"dob":        "s.student_dob",
}

// GET /students?q=&status=&class_id=&school_year_id=&gender=
func (ctl *StudentController) List(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	p := helper.ParseFiber(c, "last_name", "asc", helper.AdminOpts)
	q, err := ctl.listQuery(c, schoolID)
	if err != nil {
		return err
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Distinct("s.student_id").Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung siswa")
	}

	rows := []dto.StudentListItem{}
	if err := q.Select(`s.student_id, s.student_matricule, s.student_first_name, s.student_last_name,
			s.student_dob, s.student_gender, s.student_status, s.student_photo_url,
			c.class_id, c.class_name, se.serie_name AS series_name`).
		Order(p.OrderClause(studentSorts, "last_name")).
		Limit(p.Limit()).Offset(p.Offset()).
		Scan(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil siswa")
	}
	return helper.JsonList(c, "OK", rows, helper.BuildMeta(total, p))
}

// GET /students/:id (profil + orang tua + enrollment berjalan)
func (ctl *StudentController) Get(c *fiber.Ctx) error {
	m, err := ctl.load(c)
	if err != nil {
		return err
	}
	prof, err := service.Profile(reqCtx(c), ctl.DB, m)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil profil siswa")
	}
	return helper.JsonOK(c, "OK", prof)
}

// POST /students
func (ctl *StudentController) Create(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.StudentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	m, err := service.CreateStudent(reqCtx(c), ctl.DB, schoolID, req)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Siswa ditambahkan", m)
}

// PATCH /students/:id
func (ctl *StudentController) Update(c *fiber.Ctx) error {
	m, err := ctl.load(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStudentRequest
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
	if err := ctl.DB.WithContext(reqCtx(c)).Model(&m).Updates(up).Error; err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Siswa diperbarui", m)
}

// PATCH /students/:id/status
func (ctl *StudentController) UpdateStatus(c *fiber.Ctx) error {
	m, err := ctl.load(c)
	if err != nil {
		return err
	}
	var req dto.StudentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	if err := service.UpdateStatus(reqCtx(c), ctl.DB, &m, req.Status, req.Reason); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Status siswa diperbarui", m)
}

// DELETE /students/:id
func (ctl *StudentController) Delete(c *fiber.Ctx) error {
	m, err := ctl.load(c)
	if err != nil {
		return err
	}
	if err := ctl.DB.WithContext(reqCtx(c)).Delete(&m).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghapus siswa")
	}
	return helper.JsonDeleted(c, "Siswa dihapus", fiber.Map{"student_id": m.StudentID})
}

// GET /students/stats
func (ctl *StudentController) Stats(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	st, err := service.Stats(reqCtx(c), ctl.DB, schoolID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung statistik siswa")
	}
	return helper.JsonOK(c, "OK", st)
}

// POST /students/:id/photo (multipart "photo")
func (ctl *StudentController) UploadPhoto(c *fiber.Ctx) error {
	m, err := ctl.load(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("photo")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "File photo wajib diisi")
	}
	if fh.Size > helper.MaxImageUploadBytes {
		return helper.JsonError(c, fiber.StatusRequestEntityTooLarge, "Ukuran foto maksimal 5MB")
	}
	url, err := helper.SaveUploadedImageAsWebP(configs.UploadDir, "students/"+m.StudentSchoolID.String(), fh)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	if err := ctl.DB.WithContext(reqCtx(c)).Model(&m).Update("student_photo_url", url).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menyimpan foto")
	}
	return helper.JsonUpdated(c, "Foto siswa diperbarui", fiber.Map{"student_id": m.StudentID, "student_photo_url": url})
}

// POST /students/import (multipart "file", opsional form school_year_id)
func (ctl *StudentController) Import(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "File excel wajib diisi")
	}
	var yearID *uuid.UUID
	if raw := strings.TrimSpace(c.FormValue("school_year_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "school_year_id tidak valid")
		}
		yearID = &id
	}

	src, err := fh.Open()
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Gagal membuka file")
	}
	defer src.Close()

	rows, parseErrs, err := service.ParseImportSheet(src)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	res, err := service.ImportStudents(reqCtx(c), ctl.DB, schoolID, yearID, rows, parseErrs)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, fmt.Sprintf("%d siswa diimpor", res.Imported), res)
}

// GET /students/export (filter sama dengan list)
func (ctl *StudentController) Export(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	q, err := ctl.listQuery(c, schoolID)
	if err != nil {
		return err
	}
	var rows []service.ExportRow
	if err := q.Select(`s.student_matricule, s.student_last_name, s.student_first_name, s.student_dob,
			s.student_gender, s.student_status, c.class_name, se.serie_name AS series_name,
			s.student_nationality, s.student_address, s.student_emergency_contact,
			s.student_emergency_phone, s.student_admission_date`).
		Order("s.student_last_name ASC, s.student_first_name ASC").
		Limit(helper.ExportOpts.AllHardCap).
		Scan(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil siswa")
	}
	f, err := service.BuildExportWorkbook(rows)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat file excel")
	}
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat file excel")
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="eleves.xlsx"`)
	return c.Send(buf.Bytes())
}
