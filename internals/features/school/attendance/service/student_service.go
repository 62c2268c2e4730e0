package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolhub_backend/internals/features/school/attendance/dto"
	"schoolhub_backend/internals/features/school/attendance/model"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/dbtime"
)

var studentAttendanceUpdateCols = []string{
	"student_attendance_status", "student_attendance_arrival_time", "student_attendance_late_minutes",
	"student_attendance_reason", "student_attendance_reason_category", "student_attendance_recorded_by",
	"student_attendance_updated_at",
}

func onStudentAttendanceConflict(withSession bool) clause.OnConflict {
	c := clause.OnConflict{DoUpdates: clause.AssignmentColumns(studentAttendanceUpdateCols)}
	if withSession {
		c.Columns = []clause.Column{{Name: "student_attendance_enrollment_id"}, {Name: "student_attendance_date"}, {Name: "student_attendance_class_session_id"}}
		c.TargetWhere = clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "student_attendance_class_session_id IS NOT NULL"}}}
	} else {
		c.Columns = []clause.Column{{Name: "student_attendance_enrollment_id"}, {Name: "student_attendance_date"}}
		c.TargetWhere = clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "student_attendance_class_session_id IS NULL"}}}
	}
	return c
}

// LoadSettings: pengaturan sekolah, atau default kalau belum ada
func LoadSettings(ctx context.Context, db *gorm.DB, schoolID uuid.UUID) (model.AttendanceSettingsModel, error) {
	var s model.AttendanceSettingsModel
	err := db.WithContext(ctx).Where("attendance_settings_school_id = ?", schoolID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.DefaultSettings(schoolID), nil
	}
	return s, err
}

func SaveSettings(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, req dto.SettingsRequest) (model.AttendanceSettingsModel, error) {
	s, err := LoadSettings(ctx, db, schoolID)
	if err != nil {
		return s, err
	}
	if err := req.Apply(&s); err != nil {
		return s, errors.Wrap(helper.ErrBadRequest, "teacher_expected_arrival tidak valid")
	}
	err = db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "attendance_settings_school_id"}},
		UpdateAll: true,
	}).Create(&s).Error
	return s, err
}

func ensureClass(tx *gorm.DB, schoolID, classID uuid.UUID) error {
	var n int64
	if err := tx.Table("classes").
		Where("class_id = ? AND class_school_id = ? AND class_deleted_at IS NULL", classID, schoolID).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return errors.Wrap(helper.ErrNotFound, "kelas tidak ditemukan")
	}
	return nil
}

// classStart: jam mulai acuan untuk hitung telat.
// Urutan: sesi yang dipilih > sesi pertama kelas di tanggal itu > slot jadwal pertama di hari itu.
func classStart(tx *gorm.DB, classID uuid.UUID, date time.Time, sessionID *uuid.UUID) (*dbtime.Clock, error) {
	var rows []dbtime.Clock
	if sessionID != nil {
		if err := tx.Table("class_sessions").
			Where("class_session_id = ? AND class_session_class_id = ?", *sessionID, classID).
			Pluck("class_session_start_time", &rows).Error; err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, errors.Wrap(helper.ErrNotFound, "sesi kelas tidak ditemukan")
		}
		return &rows[0], nil
	}
	if err := tx.Table("class_sessions").
		Where("class_session_class_id = ? AND class_session_date = ? AND class_session_status <> 'cancelled'", classID, date).
		Order("class_session_start_time").Limit(1).
		Pluck("class_session_start_time", &rows).Error; err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		return &rows[0], nil
	}
	if err := tx.Table("timetable_sessions").
		Where("timetable_session_class_id = ? AND timetable_session_day_of_week = ? AND timetable_session_deleted_at IS NULL", classID, dbtime.ISOWeekday(date)).
		Where("(timetable_session_effective_from IS NULL OR timetable_session_effective_from <= ?)", date).
		Where("(timetable_session_effective_until IS NULL OR timetable_session_effective_until >= ?)", date).
		Order("timetable_session_start_time").Limit(1).
		Pluck("timetable_session_start_time", &rows).Error; err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		return &rows[0], nil
	}
	return nil, nil
}

func Roster(ctx context.Context, db *gorm.DB, schoolID, classID uuid.UUID, date time.Time, sessionID *uuid.UUID) ([]dto.RosterItem, error) {
	tx := db.WithContext(ctx)
	if err := ensureClass(tx, schoolID, classID); err != nil {
		return nil, err
	}
	join := "LEFT JOIN student_attendances a ON a.student_attendance_enrollment_id = e.enrollment_id AND a.student_attendance_date = ?"
	args := []any{date}
	if sessionID != nil {
		join += " AND a.student_attendance_class_session_id = ?"
		args = append(args, *sessionID)
	} else {
		join += " AND a.student_attendance_class_session_id IS NULL"
	}
	rows := []dto.RosterItem{}
	err := tx.Table("enrollments e").
		Select(`e.enrollment_id, e.enrollment_student_id AS student_id,
			s.student_first_name, s.student_last_name, s.student_matricule,
			a.student_attendance_id AS attendance_id, a.student_attendance_status AS status,
			a.student_attendance_arrival_time AS arrival_time, a.student_attendance_late_minutes AS late_minutes,
			a.student_attendance_reason AS reason`).
		Joins("JOIN students s ON s.student_id = e.enrollment_student_id").
		Joins(join, args...).
		Where("e.enrollment_class_id = ? AND e.enrollment_status = 'confirmed'", classID).
		Order("s.student_last_name, s.student_first_name").
		Scan(&rows).Error
	return rows, err
}

// BulkSave: upsert absensi satu kelas untuk satu tanggal (atau satu sesi)
func BulkSave(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, req dto.BulkSaveRequest, recordedBy *uuid.UUID) (dto.BulkSaveResult, error) {
	res := dto.BulkSaveResult{Total: len(req.Records)}
	date, err := dbtime.ParseDate(req.Date)
	if err != nil {
		return res, errors.Wrap(helper.ErrBadRequest, "date tidak valid")
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureClass(tx, schoolID, req.ClassID); err != nil {
			return err
		}
		start, err := classStart(tx, req.ClassID, date, req.ClassSessionID)
		if err != nil {
			return err
		}

		ids := make([]uuid.UUID, 0, len(req.Records))
		for _, r := range req.Records {
			ids = append(ids, r.EnrollmentID)
		}
		var members []struct {
			EnrollmentID        uuid.UUID
			EnrollmentStudentID uuid.UUID
		}
		if err := tx.Table("enrollments").Select("enrollment_id, enrollment_student_id").
			Where("enrollment_class_id = ? AND enrollment_status = 'confirmed' AND enrollment_id IN ?", req.ClassID, ids).
			Scan(&members).Error; err != nil {
			return err
		}
		studentOf := make(map[uuid.UUID]uuid.UUID, len(members))
		for _, m := range members {
			studentOf[m.EnrollmentID] = m.EnrollmentStudentID
		}

		existing := tx.Model(&model.StudentAttendanceModel{}).
			Where("student_attendance_date = ? AND student_attendance_enrollment_id IN ?", date, ids)
		if req.ClassSessionID != nil {
			existing = existing.Where("student_attendance_class_session_id = ?", *req.ClassSessionID)
		} else {
			existing = existing.Where("student_attendance_class_session_id IS NULL")
		}
		var already int64
		if err := existing.Count(&already).Error; err != nil {
			return err
		}

		rows := make([]model.StudentAttendanceModel, 0, len(req.Records))
		seen := map[uuid.UUID]bool{}
		for i, r := range req.Records {
			studentID, ok := studentOf[r.EnrollmentID]
			if !ok {
				return errors.Wrapf(helper.ErrBadRequest, "baris %d: siswa tidak terdaftar di kelas", i+1)
			}
			if seen[r.EnrollmentID] {
				return errors.Wrapf(helper.ErrBadRequest, "baris %d: siswa ganda", i+1)
			}
			seen[r.EnrollmentID] = true

			var arrival *dbtime.Clock
			if r.ArrivalTime != nil && *r.ArrivalTime != "" {
				c, err := dbtime.ParseClock(*r.ArrivalTime)
				if err != nil {
					return errors.Wrapf(helper.ErrBadRequest, "baris %d: arrival_time tidak valid", i+1)
				}
				arrival = &c
			}
			status, late := r.Status, LateMinutesFor(r.Status, arrival, start)
			rows = append(rows, model.StudentAttendanceModel{
				StudentAttendanceSchoolID:       schoolID,
				StudentAttendanceEnrollmentID:   r.EnrollmentID,
				StudentAttendanceStudentID:      studentID,
				StudentAttendanceClassID:        req.ClassID,
				StudentAttendanceClassSessionID: req.ClassSessionID,
				StudentAttendanceDate:           date,
				StudentAttendanceStatus:         status,
				StudentAttendanceArrivalTime:    arrival,
				StudentAttendanceLateMinutes:    late,
				StudentAttendanceReason:         r.Reason,
				StudentAttendanceReasonCategory: r.ReasonCategory,
				StudentAttendanceRecordedBy:     recordedBy,
			})
		}
		if err := tx.Clauses(onStudentAttendanceConflict(req.ClassSessionID != nil)).
			CreateInBatches(&rows, 100).Error; err != nil {
			return err
		}
		res.Updated = int(already)
		res.Created = len(rows) - int(already)
		return nil
	})
	return res, err
}

func StudentHistory(ctx context.Context, db *gorm.DB, schoolID, studentID uuid.UUID, from, to *time.Time, p helper.Params) ([]dto.StudentHistoryItem, int64, error) {
	q := db.WithContext(ctx).Table("student_attendances a").
		Joins("JOIN classes c ON c.class_id = a.student_attendance_class_id").
		Joins("LEFT JOIN class_sessions cs ON cs.class_session_id = a.student_attendance_class_session_id").
		Joins("LEFT JOIN subjects sj ON sj.subject_id = cs.class_session_subject_id").
		Where("a.student_attendance_school_id = ? AND a.student_attendance_student_id = ?", schoolID, studentID)
	if from != nil {
		q = q.Where("a.student_attendance_date >= ?", *from)
	}
	if to != nil {
		q = q.Where("a.student_attendance_date <= ?", *to)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := []dto.StudentHistoryItem{}
	err := q.Select("a.*, c.class_name, sj.subject_name").
		Order("a.student_attendance_date DESC").
		Limit(p.Limit()).Offset(p.Offset()).
		Scan(&rows).Error
	return rows, total, err
}

type statusCount struct {
	Status string
	Count  int64
}

func countsOf(rows []statusCount) Counts {
	var c Counts
	for _, r := range rows {
		switch r.Status {
		case model.StatusPresent:
			c.Present = r.Count
		case model.StatusLate:
			c.Late = r.Count
		case model.StatusAbsent:
			c.Absent = r.Count
		case model.StatusExcused:
			c.Excused = r.Count
		case model.StatusOnLeave:
			c.OnLeave = r.Count
		}
	}
	return c
}

func ClassStats(ctx context.Context, db *gorm.DB, schoolID, classID uuid.UUID, from, to time.Time) (dto.ClassStats, error) {
	var rows []statusCount
	if err := db.WithContext(ctx).Table("student_attendances").
		Select("student_attendance_status AS status, COUNT(*) AS count").
		Where("student_attendance_school_id = ? AND student_attendance_class_id = ? AND student_attendance_date BETWEEN ? AND ?",
			schoolID, classID, from, to).
		Group("student_attendance_status").Scan(&rows).Error; err != nil {
		return dto.ClassStats{}, err
	}
	c := countsOf(rows)
	return dto.ClassStats{
		ClassID: classID, From: from, To: to,
		Recorded: c.Total(), Present: c.Present, Late: c.Late, Absent: c.Absent, Excused: c.Excused,
		AttendanceRate: c.AttendanceRate(),
	}, nil
}

// StudentTrend: rate per bulan untuk N bulan terakhir
func StudentTrend(ctx context.Context, db *gorm.DB, schoolID, studentID uuid.UUID, months int, now time.Time) ([]dto.TrendPoint, error) {
	if months <= 0 || months > 24 {
		months = 6
	}
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	rows := []dto.TrendPoint{}
	if err := db.WithContext(ctx).Table("student_attendances").
		Select(`to_char(student_attendance_date, 'YYYY-MM') AS month,
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE student_attendance_status = 'present') AS present,
			COUNT(*) FILTER (WHERE student_attendance_status = 'late') AS late,
			COUNT(*) FILTER (WHERE student_attendance_status = 'absent') AS absent,
			COUNT(*) FILTER (WHERE student_attendance_status = 'excused') AS excused`).
		Where("student_attendance_school_id = ? AND student_attendance_student_id = ? AND student_attendance_date >= ?", schoolID, studentID, start).
		Group("month").Order("month").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Rate = helper.Percent(float64(rows[i].Present), float64(rows[i].Total))
	}
	return rows, nil
}

// CheckChronic: rasio absen tanpa izin siswa dalam rentang
func CheckChronic(ctx context.Context, db *gorm.DB, schoolID, studentID uuid.UUID, from, to time.Time) (dto.ChronicCheck, error) {
	settings, err := LoadSettings(ctx, db, schoolID)
	if err != nil {
		return dto.ChronicCheck{}, err
	}
	var absences int64
	if err := db.WithContext(ctx).Model(&model.StudentAttendanceModel{}).
		Where("student_attendance_school_id = ? AND student_attendance_student_id = ? AND student_attendance_status = ? AND student_attendance_date BETWEEN ? AND ?",
			schoolID, studentID, model.StatusAbsent, from, to).
		Distinct("student_attendance_date").
		Count(&absences).Error; err != nil {
		return dto.ChronicCheck{}, err
	}
	days := SchoolDays(from, to, settings.AttendanceSettingsWorkingDays)
	rate := AbsenceRate(absences, days)
	threshold := settings.AttendanceSettingsChronicAbsencePercent
	return dto.ChronicCheck{
		StudentID: studentID, Absences: absences, SchoolDays: days,
		AbsenceRate: rate, Threshold: threshold, IsChronic: IsChronic(rate, threshold),
	}, nil
}
