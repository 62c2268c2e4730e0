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

func optClock(s *string) (*dbtime.Clock, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	c, err := dbtime.ParseClock(*s)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// TeacherRow: request → baris teacher_attendances, menit telat dari jam datang yang diharapkan
func TeacherRow(schoolID uuid.UUID, r dto.TeacherAttendanceRequest, s model.AttendanceSettingsModel, recordedBy *uuid.UUID) (model.TeacherAttendanceModel, error) {
	date, err := dbtime.ParseDate(r.Date)
	if err != nil {
		return model.TeacherAttendanceModel{}, errors.Wrap(helper.ErrBadRequest, "date tidak valid")
	}
	arrival, err := optClock(r.ArrivalTime)
	if err != nil {
		return model.TeacherAttendanceModel{}, errors.Wrap(helper.ErrBadRequest, "arrival_time tidak valid")
	}
	departure, err := optClock(r.DepartureTime)
	if err != nil {
		return model.TeacherAttendanceModel{}, errors.Wrap(helper.ErrBadRequest, "departure_time tidak valid")
	}
	if arrival != nil && departure != nil && !arrival.Before(*departure) {
		return model.TeacherAttendanceModel{}, errors.Wrap(helper.ErrBadRequest, "departure_time harus setelah arrival_time")
	}
	expected := s.AttendanceSettingsTeacherExpectedArrival
	status, late := r.Status, LateMinutesFor(r.Status, arrival, &expected)
	return model.TeacherAttendanceModel{
		TeacherAttendanceSchoolID:      schoolID,
		TeacherAttendanceTeacherID:     r.TeacherID,
		TeacherAttendanceDate:          date,
		TeacherAttendanceStatus:        status,
		TeacherAttendanceArrivalTime:   arrival,
		TeacherAttendanceDepartureTime: departure,
		TeacherAttendanceLateMinutes:   late,
		TeacherAttendanceReason:        r.Reason,
		TeacherAttendanceRecordedBy:    recordedBy,
	}, nil
}

var teacherConflict = clause.OnConflict{
	Columns: []clause.Column{{Name: "teacher_attendance_teacher_id"}, {Name: "teacher_attendance_date"}},
	DoUpdates: clause.AssignmentColumns([]string{
		"teacher_attendance_status", "teacher_attendance_arrival_time", "teacher_attendance_departure_time",
		"teacher_attendance_late_minutes", "teacher_attendance_reason", "teacher_attendance_recorded_by",
		"teacher_attendance_updated_at",
	}),
}

func ensureTeachers(tx *gorm.DB, schoolID uuid.UUID, ids []uuid.UUID) error {
	uniq := map[uuid.UUID]bool{}
	for _, id := range ids {
		uniq[id] = true
	}
	var n int64
	if err := tx.Table("teachers").
		Where("teacher_school_id = ? AND teacher_deleted_at IS NULL AND teacher_id IN ?", schoolID, ids).
		Count(&n).Error; err != nil {
		return err
	}
	if int(n) != len(uniq) {
		return errors.Wrap(helper.ErrNotFound, "guru tidak ditemukan")
	}
	return nil
}

func UpsertTeacher(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, r dto.TeacherAttendanceRequest, recordedBy *uuid.UUID) (model.TeacherAttendanceModel, error) {
	rows, err := BulkUpsertTeachers(ctx, db, schoolID, []dto.TeacherAttendanceRequest{r}, recordedBy)
	if err != nil {
		return model.TeacherAttendanceModel{}, err
	}
	return rows[0], nil
}

func BulkUpsertTeachers(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, records []dto.TeacherAttendanceRequest, recordedBy *uuid.UUID) ([]model.TeacherAttendanceModel, error) {
	var out []model.TeacherAttendanceModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		settings, err := LoadSettings(ctx, tx, schoolID)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(records))
		seen := map[string]bool{}
		rows := make([]model.TeacherAttendanceModel, 0, len(records))
		for i, r := range records {
			key := r.TeacherID.String() + r.Date
			if seen[key] {
				return errors.Wrapf(helper.ErrBadRequest, "baris %d: guru & tanggal ganda", i+1)
			}
			seen[key] = true
			row, err := TeacherRow(schoolID, r, settings, recordedBy)
			if err != nil {
				return errors.Wrapf(err, "baris %d", i+1)
			}
			ids = append(ids, r.TeacherID)
			rows = append(rows, row)
		}
		if err := ensureTeachers(tx, schoolID, ids); err != nil {
			return err
		}
		if err := tx.Clauses(teacherConflict).CreateInBatches(&rows, 100).Error; err != nil {
			return err
		}
		out = rows
		return nil
	})
	return out, err
}

// TeachersDaily: semua guru aktif + absensinya pada tanggal (nil = belum dicatat)
func TeachersDaily(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, date time.Time) ([]dto.TeacherDailyItem, error) {
	tx := db.WithContext(ctx)
	var teachers []struct {
		TeacherID   uuid.UUID
		TeacherName string
	}
	if err := tx.Table("teachers t").
		Select("t.teacher_id, COALESCE(u.full_name, '') AS teacher_name").
		Joins("LEFT JOIN users u ON u.id = t.teacher_user_id").
		Where("t.teacher_school_id = ? AND t.teacher_deleted_at IS NULL AND t.teacher_status = 'active'", schoolID).
		Order("teacher_name").
		Scan(&teachers).Error; err != nil {
		return nil, err
	}
	var att []model.TeacherAttendanceModel
	if err := tx.Where("teacher_attendance_school_id = ? AND teacher_attendance_date = ?", schoolID, date).
		Find(&att).Error; err != nil {
		return nil, err
	}
	byTeacher := make(map[uuid.UUID]*model.TeacherAttendanceModel, len(att))
	for i := range att {
		byTeacher[att[i].TeacherAttendanceTeacherID] = &att[i]
	}
	out := make([]dto.TeacherDailyItem, 0, len(teachers))
	for _, t := range teachers {
		out = append(out, dto.TeacherDailyItem{TeacherID: t.TeacherID, TeacherName: t.TeacherName, Attendance: byTeacher[t.TeacherID]})
	}
	return out, nil
}

func TeacherRange(ctx context.Context, db *gorm.DB, schoolID, teacherID uuid.UUID, from, to time.Time) ([]model.TeacherAttendanceModel, error) {
	rows := []model.TeacherAttendanceModel{}
	err := db.WithContext(ctx).
		Where("teacher_attendance_school_id = ? AND teacher_attendance_teacher_id = ? AND teacher_attendance_date BETWEEN ? AND ?",
			schoolID, teacherID, from, to).
		Order("teacher_attendance_date").
		Find(&rows).Error
	return rows, err
}

func Punctuality(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, from, to time.Time) ([]dto.PunctualityRow, error) {
	rows := []dto.PunctualityRow{}
	if err := db.WithContext(ctx).Table("teacher_attendances a").
		Select(`a.teacher_attendance_teacher_id AS teacher_id,
			COALESCE(u.full_name, '') AS teacher_name,
			COUNT(*) AS total_days,
			COUNT(*) FILTER (WHERE a.teacher_attendance_status = 'present') AS present_days,
			COUNT(*) FILTER (WHERE a.teacher_attendance_status = 'late') AS late_days,
			COUNT(*) FILTER (WHERE a.teacher_attendance_status = 'absent') AS absent_days,
			COUNT(*) FILTER (WHERE a.teacher_attendance_status = 'excused') AS excused_days,
			COUNT(*) FILTER (WHERE a.teacher_attendance_status = 'on_leave') AS on_leave_days,
			COALESCE(SUM(a.teacher_attendance_late_minutes), 0) AS total_late_minutes`).
		Joins("JOIN teachers t ON t.teacher_id = a.teacher_attendance_teacher_id").
		Joins("LEFT JOIN users u ON u.id = t.teacher_user_id").
		Where("a.teacher_attendance_school_id = ? AND a.teacher_attendance_date BETWEEN ? AND ?", schoolID, from, to).
		Group("a.teacher_attendance_teacher_id, u.full_name").
		Order("teacher_name").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		r := &rows[i]
		c := Counts{Present: r.PresentDays, Late: r.LateDays, Absent: r.AbsentDays, Excused: r.ExcusedDays, OnLeave: r.OnLeaveDays}
		r.AttendanceRate = c.PresenceRate()
		r.PunctualityRate = c.PunctualityRate()
	}
	return rows, nil
}

func LatenessInMonth(ctx context.Context, db *gorm.DB, schoolID, teacherID uuid.UUID, year int, month time.Month) (int64, error) {
	start, end := dbtime.MonthRange(year, month)
	var n int64
	err := db.WithContext(ctx).Model(&model.TeacherAttendanceModel{}).
		Where("teacher_attendance_school_id = ? AND teacher_attendance_teacher_id = ? AND teacher_attendance_status = ? AND teacher_attendance_date >= ? AND teacher_attendance_date < ?",
			schoolID, teacherID, model.StatusLate, start, end).
		Count(&n).Error
	return n, err
}
