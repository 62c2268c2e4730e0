package controller

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/school/timetables/dto"
	"schoolhub_backend/internals/features/school/timetables/model"
	"schoolhub_backend/internals/features/school/timetables/service"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
	"schoolhub_backend/internals/helpers/dbtime"
)

type TimetableController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewTimetableController(db *gorm.DB, v *validator.Validate) *TimetableController {
	if v == nil {
		v = helper.NewValidator()
	}
	return &TimetableController{DB: db, Validate: v}
}

func reqCtx(c *fiber.Ctx) context.Context {
	if uc := c.UserContext(); uc != nil {
		return uc
	}
	return context.Background()
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

func (ctl *TimetableController) bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(out); err != nil {
		return helper.ValidationError(c, err)
	}
	return nil
}

// respondErr: konflik jadwal → 409 + daftar konflik
func respondErr(c *fiber.Ctx, err error) error {
	var ce *service.ConflictError
	if errors.As(err, &ce) {
		return helper.JsonErrorData(c, fiber.StatusConflict, "Jadwal bentrok", fiber.Map{"conflicts": ce.Conflicts})
	}
	var tr dto.ErrTimeRange
	if errors.As(err, &tr) {
		return helper.JsonError(c, fiber.StatusBadRequest, tr.Msg)
	}
	return helper.FromServiceError(c, err)
}

// GET /timetables/classes/:id | /teachers/:id | /classrooms/:id ?school_year_id=
func (ctl *TimetableController) listBy(column string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		schoolID, err := helperAuth.SchoolIDFromCtx(c)
		if err != nil {
			return err
		}
		id, err := paramUUID(c, "id")
		if err != nil {
			return err
		}
		yearID, err := queryUUID(c, "school_year_id", false)
		if err != nil {
			return err
		}
		rows, err := service.ListViews(reqCtx(c), ctl.DB, schoolID, column, id, yearID)
		if err != nil {
			return respondErr(c, err)
		}
		return helper.JsonOK(c, "OK", rows)
	}
}

func (ctl *TimetableController) ByClass() fiber.Handler     { return ctl.listBy("class") }
func (ctl *TimetableController) ByTeacher() fiber.Handler   { return ctl.listBy("teacher") }
func (ctl *TimetableController) ByClassroom() fiber.Handler { return ctl.listBy("classroom") }

// POST /timetables
func (ctl *TimetableController) Create(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.SessionRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	m, err := req.ToModel(schoolID)
	if err != nil {
		return respondErr(c, err)
	}
	out, err := service.Create(reqCtx(c), ctl.DB, schoolID, m)
	if err != nil {
		return respondErr(c, err)
	}
	return helper.JsonCreated(c, "Jadwal dibuat", out)
}

// POST /timetables/bulk
func (ctl *TimetableController) BulkCreate(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.BulkSessionsRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	items := make([]model.TimetableSessionModel, 0, len(req.Sessions))
	for i, s := range req.Sessions {
		m, err := s.ToModel(schoolID)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "baris "+strconv.Itoa(i+1)+": "+err.Error())
		}
		items = append(items, m)
	}
	out, err := service.BulkCreate(reqCtx(c), ctl.DB, schoolID, items)
	if err != nil {
		return respondErr(c, err)
	}
	return helper.JsonCreated(c, "Jadwal dibuat", fiber.Map{"created": len(out), "items": out})
}

// PUT /timetables/:id
func (ctl *TimetableController) Update(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req dto.SessionRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	m, err := req.ToModel(schoolID)
	if err != nil {
		return respondErr(c, err)
	}
	out, err := service.Update(reqCtx(c), ctl.DB, schoolID, id, m)
	if err != nil {
		return respondErr(c, err)
	}
	return helper.JsonUpdated(c, "Jadwal diperbarui", out)
}

// DELETE /timetables/:id
func (ctl *TimetableController) Delete(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := service.Delete(reqCtx(c), ctl.DB, schoolID, id); err != nil {
		return respondErr(c, err)
	}
	return helper.JsonDeleted(c, "Jadwal dihapus", fiber.Map{"timetable_session_id": id})
}

// DELETE /timetables/classes/:id?school_year_id=
func (ctl *TimetableController) DeleteClassTimetable(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	classID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	yearID, err := queryUUID(c, "school_year_id", true)
	if err != nil {
		return err
	}
	n, err := service.DeleteClassTimetable(reqCtx(c), ctl.DB, schoolID, classID, *yearID)
	if err != nil {
		return respondErr(c, err)
	}
	return helper.JsonDeleted(c, "Jadwal kelas dihapus", fiber.Map{"deleted": n})
}

// POST /timetables/check-conflicts
func (ctl *TimetableController) CheckConflicts(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.ConflictQuery
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	start, _ := dbtime.ParseClock(req.StartTime)
	end, _ := dbtime.ParseClock(req.EndTime)
	if !start.Before(end) {
		return helper.JsonError(c, fiber.StatusBadRequest, "end_time harus setelah start_time")
	}
	cs, err := service.DetectConflictsDB(reqCtx(c), ctl.DB, schoolID, req.SchoolYearID, service.Candidate{
		ExcludeID:   req.ExcludeID,
		DayOfWeek:   req.DayOfWeek,
		Start:       start,
		End:         end,
		TeacherID:   req.TeacherID,
		ClassroomID: req.ClassroomID,
		ClassID:     req.ClassID,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return helper.JsonOK(c, "OK", fiber.Map{"has_conflicts": len(cs) > 0, "conflicts": cs})
}

// GET /timetables/conflicts?school_year_id=
func (ctl *TimetableController) SchoolConflicts(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	yearID, err := queryUUID(c, "school_year_id", true)
	if err != nil {
		return err
	}
	cs, err := service.SchoolConflicts(reqCtx(c), ctl.DB, schoolID, *yearID)
	if err != nil {
		return respondErr(c, err)
	}
	return helper.JsonOK(c, "OK", fiber.Map{"total": len(cs), "conflicts": cs})
}

// GET /timetables/teachers/:id/hours?school_year_id=
func (ctl *TimetableController) TeacherHours(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	teacherID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	yearID, err := queryUUID(c, "school_year_id", true)
	if err != nil {
		return err
	}
	out, err := service.TeacherWeeklyHours(reqCtx(c), ctl.DB, schoolID, teacherID, *yearID)
	if err != nil {
		return respondErr(c, err)
	}
	return helper.JsonOK(c, "OK", out)
}

// GET /timetables/{teachers|classrooms}/:id/availability?school_year_id=&day=
func (ctl *TimetableController) availability(column string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		schoolID, err := helperAuth.SchoolIDFromCtx(c)
		if err != nil {
			return err
		}
		id, err := paramUUID(c, "id")
		if err != nil {
			return err
		}
		yearID, err := queryUUID(c, "school_year_id", true)
		if err != nil {
			return err
		}
		day, err := strconv.Atoi(c.Query("day"))
		if err != nil || day < 1 || day > 7 {
			return helper.JsonError(c, fiber.StatusBadRequest, "day harus 1..7")
		}
		out, err := service.Availability(reqCtx(c), ctl.DB, schoolID, *yearID, column, id, day)
		if err != nil {
			return respondErr(c, err)
		}
		return helper.JsonOK(c, "OK", out)
	}
}

func (ctl *TimetableController) TeacherAvailability() fiber.Handler {
	return ctl.availability("teacher")
}

func (ctl *TimetableController) ClassroomAvailability() fiber.Handler {
	return ctl.availability("classroom")
}

// POST /timetables/generate-sessions
func (ctl *TimetableController) GenerateSessions(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.GenerateSessionsRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	out, err := service.GenerateClassSessions(reqCtx(c), ctl.DB, schoolID, req)
	if err != nil {
		return respondErr(c, err)
	}
	return helper.JsonCreated(c, "Sesi kelas digenerate", out)
}
