package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolhub_backend/internals/features/school/attendance/dto"
	"schoolhub_backend/internals/features/school/attendance/model"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/dbtime"
)

type AlertFilter struct {
	Status    string
	Type      string
	Severity  string
	StudentID *uuid.UUID
	TeacherID *uuid.UUID
}

func ListAlerts(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, f AlertFilter, p helper.Params) ([]dto.AlertItem, int64, error) {
	q := db.WithContext(ctx).Table("attendance_alerts a").
		Joins("LEFT JOIN teachers t ON t.teacher_id = a.attendance_alert_teacher_id").
		Joins("LEFT JOIN users u ON u.id = t.teacher_user_id").
		Joins("LEFT JOIN students s ON s.student_id = a.attendance_alert_student_id").
		Where("a.attendance_alert_school_id = ?", schoolID)
	if f.Status != "" {
		q = q.Where("a.attendance_alert_status = ?", f.Status)
	}
	if f.Type != "" {
		q = q.Where("a.attendance_alert_type = ?", f.Type)
	}
	if f.Severity != "" {
		q = q.Where("a.attendance_alert_severity = ?", f.Severity)
	}
	if f.StudentID != nil {
		q = q.Where("a.attendance_alert_student_id = ?", *f.StudentID)
	}
	if f.TeacherID != nil {
		q = q.Where("a.attendance_alert_teacher_id = ?", *f.TeacherID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := []dto.AlertItem{}
	err := q.Select(`a.*, u.full_name AS teacher_name,
			NULLIF(TRIM(COALESCE(s.student_first_name, '') || ' ' || COALESCE(s.student_last_name, '')), '') AS student_name`).
		Order("a.attendance_alert_created_at DESC").
		Limit(p.Limit()).Offset(p.Offset()).
		Scan(&rows).Error
	return rows, total, err
}

func AlertCounts(ctx context.Context, db *gorm.DB, schoolID uuid.UUID) (dto.AlertCounts, error) {
	var out dto.AlertCounts
	err := db.WithContext(ctx).Table("attendance_alerts").
		Select(`COUNT(*) FILTER (WHERE attendance_alert_status = 'active') AS active,
			COUNT(*) FILTER (WHERE attendance_alert_status = 'acknowledged') AS acknowledged,
			COUNT(*) FILTER (WHERE attendance_alert_status = 'resolved') AS resolved,
			COUNT(*) FILTER (WHERE attendance_alert_status = 'dismissed') AS dismissed,
			COUNT(*) FILTER (WHERE attendance_alert_status = 'active' AND attendance_alert_severity = 'high') AS high`).
		Where("attendance_alert_school_id = ?", schoolID).
		Scan(&out).Error
	return out, err
}

// CanMoveAlert: active → acknowledged|resolved|dismissed, acknowledged → resolved|dismissed
func CanMoveAlert(from, to string) bool {
	switch to {
	case model.AlertAcknowledged:
		return from == model.AlertActive
	case model.AlertResolved, model.AlertDismissed:
		return from == model.AlertActive || from == model.AlertAcknowledged
	}
	return false
}

func MoveAlert(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID, to string, by *uuid.UUID, note *string) (model.AttendanceAlertModel, error) {
	var m model.AttendanceAlertModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("attendance_alert_id = ? AND attendance_alert_school_id = ?", id, schoolID).
			First(&m).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.Wrap(helper.ErrNotFound, "alert tidak ditemukan")
		}
		if err != nil {
			return err
		}
		if !CanMoveAlert(m.AttendanceAlertStatus, to) {
			return errors.Wrapf(helper.ErrInvalidState, "alert %s tidak bisa diubah ke %s", m.AttendanceAlertStatus, to)
		}
		now := time.Now()
		u := map[string]any{"attendance_alert_status": to}
		if to == model.AlertAcknowledged {
			u["attendance_alert_acknowledged_at"] = now
			u["attendance_alert_acknowledged_by"] = by
		} else {
			u["attendance_alert_resolved_at"] = now
			u["attendance_alert_resolved_by"] = by
			if note != nil && strings.TrimSpace(*note) != "" {
				u["attendance_alert_resolution_note"] = strings.TrimSpace(*note)
			}
		}
		if err := tx.Model(&m).Updates(u).Error; err != nil {
			return err
		}
		return tx.First(&m, "attendance_alert_id = ?", id).Error
	})
	return m, err
}

// openAlertExists: active/acknowledged dengan tipe & subjek sama
func openAlertExists(tx *gorm.DB, schoolID uuid.UUID, typ string, studentID, teacherID *uuid.UUID) (bool, error) {
	q := tx.Model(&model.AttendanceAlertModel{}).
		Where("attendance_alert_school_id = ? AND attendance_alert_type = ? AND attendance_alert_status IN ?",
			schoolID, typ, []string{model.AlertActive, model.AlertAcknowledged})
	if studentID != nil {
		q = q.Where("attendance_alert_student_id = ?", *studentID)
	}
	if teacherID != nil {
		q = q.Where("attendance_alert_teacher_id = ?", *teacherID)
	}
	var n int64
	err := q.Count(&n).Error
	return n > 0, err
}

func createAlertOnce(tx *gorm.DB, a model.AttendanceAlertModel, res *dto.DetectResult) error {
	exists, err := openAlertExists(tx, a.AttendanceAlertSchoolID, a.AttendanceAlertType, a.AttendanceAlertStudentID, a.AttendanceAlertTeacherID)
	if err != nil {
		return err
	}
	if exists {
		res.Skipped++
		return nil
	}
	if err := tx.Create(&a).Error; err != nil {
		return err
	}
	res.Created++
	return nil
}

// DetectChronicAbsence: siswa dengan rasio absen > ambang sejak awal periode
func DetectChronicAbsence(ctx context.Context, db *gorm.DB, schoolID, termID uuid.UUID, now time.Time) (dto.DetectResult, error) {
	var res dto.DetectResult
	var term struct {
		TermName         string
		TermStartDate    time.Time
		TermEndDate      time.Time
		TermSchoolYearID uuid.UUID
	}
	err := db.WithContext(ctx).Table("terms").
		Select("term_name, term_start_date, term_end_date, term_school_year_id").
		Where("term_id = ? AND term_school_id = ? AND term_deleted_at IS NULL", termID, schoolID).
		Take(&term).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return res, errors.Wrap(helper.ErrNotFound, "periode tidak ditemukan")
	}
	if err != nil {
		return res, err
	}
	to := dbtime.DateOnly(now)
	if term.TermEndDate.Before(to) {
		to = term.TermEndDate
	}
	if to.Before(term.TermStartDate) {
		return res, nil
	}

	settings, err := LoadSettings(ctx, db, schoolID)
	if err != nil {
		return res, err
	}
	days := SchoolDays(term.TermStartDate, to, settings.AttendanceSettingsWorkingDays)
	threshold := settings.AttendanceSettingsChronicAbsencePercent

	var rows []struct {
		StudentID uuid.UUID
		Absences  int64
	}
	if err := db.WithContext(ctx).Table("enrollments e").
		Select("e.enrollment_student_id AS student_id, COUNT(DISTINCT a.student_attendance_date) AS absences").
		Joins(`JOIN student_attendances a ON a.student_attendance_enrollment_id = e.enrollment_id
			AND a.student_attendance_status = 'absent' AND a.student_attendance_date BETWEEN ? AND ?`, term.TermStartDate, to).
		Where("e.enrollment_school_id = ? AND e.enrollment_school_year_id = ? AND e.enrollment_status = 'confirmed'", schoolID, term.TermSchoolYearID).
		Group("e.enrollment_student_id").
		Scan(&rows).Error; err != nil {
		return res, err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, r := range rows {
			res.Checked++
			rate := AbsenceRate(r.Absences, days)
			if !IsChronic(rate, threshold) {
				continue
			}
			sid := r.StudentID
			if err := createAlertOnce(tx, model.AttendanceAlertModel{
				AttendanceAlertSchoolID:  schoolID,
				AttendanceAlertType:      model.AlertStudentChronicAbsence,
				AttendanceAlertSeverity:  ChronicSeverity(rate, threshold),
				AttendanceAlertStatus:    model.AlertActive,
				AttendanceAlertStudentID: &sid,
				AttendanceAlertTitle:     fmt.Sprintf("Absen kronis %.2f%% (%s)", rate, term.TermName),
				AttendanceAlertData: datatypes.JSONMap{
					"term_id": termID.String(), "absences": r.Absences, "school_days": days,
					"absence_rate": rate, "threshold": threshold,
				},
			}, &res); err != nil {
				return err
			}
		}
		return nil
	})
	return res, err
}

// DetectTeacherLateness: guru dengan >= 3 telat dalam bulan
func DetectTeacherLateness(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, year int, month time.Month) (dto.DetectResult, error) {
	var res dto.DetectResult
	start, end := dbtime.MonthRange(year, month)
	var rows []struct {
		TeacherID   uuid.UUID
		Lates       int64
		LateMinutes int64
	}
	if err := db.WithContext(ctx).Table("teacher_attendances").
		Select("teacher_attendance_teacher_id AS teacher_id, COUNT(*) AS lates, COALESCE(SUM(teacher_attendance_late_minutes), 0) AS late_minutes").
		Where("teacher_attendance_school_id = ? AND teacher_attendance_status = 'late' AND teacher_attendance_date >= ? AND teacher_attendance_date < ?",
			schoolID, start, end).
		Group("teacher_attendance_teacher_id").
		Scan(&rows).Error; err != nil {
		return res, err
	}
	period := fmt.Sprintf("%04d-%02d", year, int(month))
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, r := range rows {
			res.Checked++
			if r.Lates < RepeatedLatenessCount {
				continue
			}
			tid := r.TeacherID
			if err := createAlertOnce(tx, model.AttendanceAlertModel{
				AttendanceAlertSchoolID:  schoolID,
				AttendanceAlertType:      model.AlertTeacherRepeatedLateness,
				AttendanceAlertSeverity:  LatenessSeverity(r.Lates),
				AttendanceAlertStatus:    model.AlertActive,
				AttendanceAlertTeacherID: &tid,
				AttendanceAlertTitle:     fmt.Sprintf("Terlambat %d kali (%s)", r.Lates, period),
				AttendanceAlertData: datatypes.JSONMap{
					"period": period, "late_count": r.Lates, "late_minutes": r.LateMinutes,
				},
			}, &res); err != nil {
				return err
			}
		}
		return nil
	})
	return res, err
}
