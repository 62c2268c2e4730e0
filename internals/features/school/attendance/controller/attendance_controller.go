package controller

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/school/attendance/dto"
	"schoolhub_backend/internals/features/school/attendance/model"
	"schoolhub_backend/internals/features/school/attendance/service"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
	"schoolhub_backend/internals/helpers/dbtime"
)

type AttendanceController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewAttendanceController(db *gorm.DB, v *validator.Validate) *AttendanceController {
	if v == nil {
		v = helper.NewValidator()
	}
	return &AttendanceController{DB: db, Validate: v}
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

// queryDate: kosong → def
func queryDate(c *fiber.Ctx, key string, def time.Time) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	d, err := dbtime.ParseDate(raw)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, key+" harus YYYY-MM-DD")
	}
	return d, nil
}

func queryRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	today := dbtime.Today()
	from, err := queryDate(c, "from", today.AddDate(0, 0, -30))
	if err != nil {
		return from, from, err
	}
	to, err := queryDate(c, "to", today)
	if err != nil {
		return from, to, err
	}
	if to.Before(from) {
		return from, to, fiber.NewError(fiber.StatusBadRequest, "to sebelum from")
	}
	return from, to, nil
}

func (ctl *AttendanceController) bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(out); err != nil {
		return helper.ValidationError(c, err)
	}
	return nil
}

/* ===================== siswa ===================== */

// GET /attendance/classes/:class_id/roster?date=&class_session_id=
func (ctl *AttendanceController) Roster(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	classID, err := paramUUID(c, "class_id")
	if err != nil {
		return err
	}
	date, err := queryDate(c, "date", dbtime.Today())
	if err != nil {
		return err
	}
	sessionID, err := queryUUID(c, "class_session_id")
	if err != nil {
		return err
	}
	rows, err := service.Roster(reqCtx(c), ctl.DB, schoolID, classID, date, sessionID)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", rows)
}

// POST /attendance/students/bulk
func (ctl *AttendanceController) BulkSave(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.BulkSaveRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	res, err := service.BulkSave(reqCtx(c), ctl.DB, schoolID, req, actor(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "Absensi disimpan", res)
}

// GET /attendance/students/:student_id/history?from=&to=
func (ctl *AttendanceController) StudentHistory(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	studentID, err := paramUUID(c, "student_id")
	if err != nil {
		return err
	}
	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		d, err := queryDate(c, "from", time.Time{})
		if err != nil {
			return err
		}
		from = &d
	}
	if raw := c.Query("to"); raw != "" {
		d, err := queryDate(c, "to", time.Time{})
		if err != nil {
			return err
		}
		to = &d
	}
	p := helper.ParseFiber(c, "date", "desc", helper.AdminOpts)
	rows, total, err := service.StudentHistory(reqCtx(c), ctl.DB, schoolID, studentID, from, to, p)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonList(c, "OK", rows, helper.BuildMeta(total, p))
}

// GET /attendance/classes/:class_id/stats?from=&to=
func (ctl *AttendanceController) ClassStats(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	classID, err := paramUUID(c, "class_id")
	if err != nil {
		return err
	}
	from, to, err := queryRange(c)
	if err != nil {
		return err
	}
	out, err := service.ClassStats(reqCtx(c), ctl.DB, schoolID, classID, from, to)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", out)
}

// GET /attendance/students/:student_id/trend?months=6
func (ctl *AttendanceController) StudentTrend(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	studentID, err := paramUUID(c, "student_id")
	if err != nil {
		return err
	}
	rows, err := service.StudentTrend(reqCtx(c), ctl.DB, schoolID, studentID, c.QueryInt("months", 6), dbtime.Today())
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", rows)
}

// GET /attendance/students/:student_id/chronic?from=&to=
func (ctl *AttendanceController) ChronicCheck(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	studentID, err := paramUUID(c, "student_id")
	if err != nil {
		return err
	}
	from, to, err := queryRange(c)
	if err != nil {
		return err
	}
	out, err := service.CheckChronic(reqCtx(c), ctl.DB, schoolID, studentID, from, to)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", out)
}

/* ===================== guru ===================== */

// PUT /attendance/teachers
func (ctl *AttendanceController) UpsertTeacher(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.TeacherAttendanceRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	out, err := service.UpsertTeacher(reqCtx(c), ctl.DB, schoolID, req, actor(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "Absensi guru disimpan", out)
}

// PUT /attendance/teachers/bulk
func (ctl *AttendanceController) BulkUpsertTeachers(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.BulkTeacherRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	out, err := service.BulkUpsertTeachers(reqCtx(c), ctl.DB, schoolID, req.Records, actor(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "Absensi guru disimpan", fiber.Map{"total": len(out), "items": out})
}

// GET /attendance/teachers/daily?date=
func (ctl *AttendanceController) TeachersDaily(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	date, err := queryDate(c, "date", dbtime.Today())
	if err != nil {
		return err
	}
	rows, err := service.TeachersDaily(reqCtx(c), ctl.DB, schoolID, date)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", rows)
}

// GET /attendance/teachers/:teacher_id?from=&to=
func (ctl *AttendanceController) TeacherRange(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	teacherID, err := paramUUID(c, "teacher_id")
	if err != nil {
		return err
	}
	from, to, err := queryRange(c)
	if err != nil {
		return err
	}
	rows, err := service.TeacherRange(reqCtx(c), ctl.DB, schoolID, teacherID, from, to)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", rows)
}

// GET /attendance/teachers/punctuality?from=&to=
func (ctl *AttendanceController) Punctuality(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	from, to, err := queryRange(c)
	if err != nil {
		return err
	}
	rows, err := service.Punctuality(reqCtx(c), ctl.DB, schoolID, from, to)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", rows)
}

func yearMonth(c *fiber.Ctx) (int, time.Month, error) {
	now := dbtime.Today()
	year := c.QueryInt("year", now.Year())
	month := c.QueryInt("month", int(now.Month()))
	if month < 1 || month > 12 || year < 2000 || year > 2100 {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "year/month tidak valid")
	}
	return year, time.Month(month), nil
}

// GET /attendance/teachers/:teacher_id/lateness?year=&month=
func (ctl *AttendanceController) LatenessInMonth(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	teacherID, err := paramUUID(c, "teacher_id")
	if err != nil {
		return err
	}
	year, month, err := yearMonth(c)
	if err != nil {
		return err
	}
	n, err := service.LatenessInMonth(reqCtx(c), ctl.DB, schoolID, teacherID, year, month)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", fiber.Map{"teacher_id": teacherID, "year": year, "month": int(month), "late_count": n})
}

/* ===================== settings ===================== */

// GET /attendance/settings
func (ctl *AttendanceController) GetSettings(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	s, err := service.LoadSettings(reqCtx(c), ctl.DB, schoolID)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", s)
}

// PUT /attendance/settings
func (ctl *AttendanceController) SaveSettings(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.SettingsRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	s, err := service.SaveSettings(reqCtx(c), ctl.DB, schoolID, req)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Pengaturan absensi disimpan", s)
}

/* ===================== alerts ===================== */

// GET /attendance/alerts?status=&type=&severity=&student_id=&teacher_id=
func (ctl *AttendanceController) ListAlerts(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	f := service.AlertFilter{
		Status:   strings.TrimSpace(c.Query("status")),
		Type:     strings.TrimSpace(c.Query("type")),
		Severity: strings.TrimSpace(c.Query("severity")),
	}
	if f.StudentID, err = queryUUID(c, "student_id"); err != nil {
		return err
	}
	if f.TeacherID, err = queryUUID(c, "teacher_id"); err != nil {
		return err
	}
	p := helper.ParseFiber(c, "created", "desc", helper.AdminOpts)
	rows, total, err := service.ListAlerts(reqCtx(c), ctl.DB, schoolID, f, p)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonList(c, "OK", rows, helper.BuildMeta(total, p))
}

// GET /attendance/alerts/counts
func (ctl *AttendanceController) AlertCounts(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	out, err := service.AlertCounts(reqCtx(c), ctl.DB, schoolID)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", out)
}

func (ctl *AttendanceController) moveAlert(to, msg string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		schoolID, err := helperAuth.SchoolIDFromCtx(c)
		if err != nil {
			return err
		}
		id, err := paramUUID(c, "id")
		if err != nil {
			return err
		}
		var req dto.AlertActionRequest
		if len(c.Body()) > 0 {
			if err := ctl.bind(c, &req); err != nil {
				return err
			}
		}
		out, err := service.MoveAlert(reqCtx(c), ctl.DB, schoolID, id, to, actor(c), req.Note)
		if err != nil {
			return helper.FromServiceError(c, err)
		}
		return helper.JsonUpdated(c, msg, out)
	}
}

func (ctl *AttendanceController) Acknowledge() fiber.Handler {
	return ctl.moveAlert(model.AlertAcknowledged, "Alert diterima")
}

func (ctl *AttendanceController) Resolve() fiber.Handler {
	return ctl.moveAlert(model.AlertResolved, "Alert diselesaikan")
}

func (ctl *AttendanceController) Dismiss() fiber.Handler {
	return ctl.moveAlert(model.AlertDismissed, "Alert diabaikan")
}

// POST /attendance/alerts/detect/chronic?term_id=
func (ctl *AttendanceController) DetectChronic(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
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
	res, err := service.DetectChronicAbsence(reqCtx(c), ctl.DB, schoolID, *termID, time.Now())
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "Deteksi absen kronis selesai", res)
}

// POST /attendance/alerts/detect/lateness?year=&month=
func (ctl *AttendanceController) DetectLateness(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	year, month, err := yearMonth(c)
	if err != nil {
		return err
	}
	res, err := service.DetectTeacherLateness(reqCtx(c), ctl.DB, schoolID, year, month)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "Deteksi keterlambatan guru selesai ("+strconv.Itoa(year)+"-"+strconv.Itoa(int(month))+")", res)
}
