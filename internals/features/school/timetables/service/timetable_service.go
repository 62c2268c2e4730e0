package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	curriculumModel "schoolhub_backend/internals/features/school/curriculum/model"
	"schoolhub_backend/internals/features/school/timetables/dto"
	"schoolhub_backend/internals/features/school/timetables/model"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/dbtime"
)

// Jam operasional untuk hitung slot kosong
var (
	DayStart = dbtime.NewClock(7, 0)
	DayEnd   = dbtime.NewClock(18, 0)
)

// ConflictError dibawa sampai controller → 409 + daftar konflik
type ConflictError struct {
	Conflicts []dto.Conflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("jadwal bentrok (%d konflik)", len(e.Conflicts))
}

func LoadSession(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID) (model.TimetableSessionModel, error) {
	var m model.TimetableSessionModel
	err := db.WithContext(ctx).
		Where("timetable_session_id = ? AND timetable_session_school_id = ?", id, schoolID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return m, errors.Wrap(helper.ErrNotFound, "jadwal tidak ditemukan")
	}
	return m, err
}

// sessionsOfDay: sesi aktif di tahun ajaran & hari tertentu
func sessionsOfDay(tx *gorm.DB, schoolID, yearID uuid.UUID, day int) ([]model.TimetableSessionModel, error) {
	var rows []model.TimetableSessionModel
	err := tx.Where("timetable_session_school_id = ? AND timetable_session_school_year_id = ? AND timetable_session_day_of_week = ?",
		schoolID, yearID, day).
		Find(&rows).Error
	return rows, err
}

// DetectConflictsDB: cek kandidat terhadap jadwal tersimpan
func DetectConflictsDB(ctx context.Context, db *gorm.DB, schoolID, yearID uuid.UUID, c Candidate) ([]dto.Conflict, error) {
	existing, err := sessionsOfDay(db.WithContext(ctx), schoolID, yearID, c.DayOfWeek)
	if err != nil {
		return nil, err
	}
	return DetectConflicts(c, existing), nil
}

// ensureRefs: kelas, mapel kelas, guru, ruang harus milik sekolah
func ensureRefs(tx *gorm.DB, schoolID uuid.UUID, m model.TimetableSessionModel) error {
	var class struct{ ClassSchoolYearID uuid.UUID }
	err := tx.Table("classes").Select("class_school_year_id").
		Where("class_id = ? AND class_school_id = ? AND class_deleted_at IS NULL", m.TimetableSessionClassID, schoolID).
		Take(&class).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrap(helper.ErrNotFound, "kelas tidak ditemukan")
	}
	if err != nil {
		return err
	}
	if class.ClassSchoolYearID != m.TimetableSessionSchoolYearID {
		return errors.Wrap(helper.ErrBadRequest, "kelas bukan milik tahun ajaran ini")
	}

	var n int64
	if err := tx.Table("class_subjects").
		Where("class_subject_class_id = ? AND class_subject_subject_id = ?", m.TimetableSessionClassID, m.TimetableSessionSubjectID).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return errors.Wrap(helper.ErrBadRequest, "mapel tidak diajarkan di kelas ini")
	}

	if err := tx.Table("teachers").
		Where("teacher_id = ? AND teacher_school_id = ? AND teacher_deleted_at IS NULL", m.TimetableSessionTeacherID, schoolID).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return errors.Wrap(helper.ErrNotFound, "guru tidak ditemukan")
	}

	if m.TimetableSessionClassroomID != nil {
		if err := tx.Table("classrooms").
			Where("classroom_id = ? AND classroom_school_id = ? AND classroom_deleted_at IS NULL", *m.TimetableSessionClassroomID, schoolID).
			Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return errors.Wrap(helper.ErrNotFound, "ruangan tidak ditemukan")
		}
	}
	return nil
}

func checkAndLock(tx *gorm.DB, schoolID uuid.UUID, m model.TimetableSessionModel, pending []model.TimetableSessionModel) error {
	if err := ensureRefs(tx, schoolID, m); err != nil {
		return err
	}
	existing, err := sessionsOfDay(tx.Clauses(clause.Locking{Strength: "UPDATE"}), schoolID, m.TimetableSessionSchoolYearID, m.TimetableSessionDayOfWeek)
	if err != nil {
		return err
	}
	if cs := DetectConflicts(CandidateOf(m), append(existing, pending...)); len(cs) > 0 {
		return &ConflictError{Conflicts: cs}
	}
	return nil
}

func Create(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, m model.TimetableSessionModel) (model.TimetableSessionModel, error) {
	m.TimetableSessionSchoolID = schoolID
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkAndLock(tx, schoolID, m, nil); err != nil {
			return err
		}
		return tx.Create(&m).Error
	})
	return m, err
}

// BulkCreate: semua atau tidak sama sekali; bentrok antar baris di payload ikut dicek
func BulkCreate(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, items []model.TimetableSessionModel) ([]model.TimetableSessionModel, error) {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		accepted := make([]model.TimetableSessionModel, 0, len(items))
		conflicts := []dto.Conflict{}
		for i := range items {
			items[i].TimetableSessionSchoolID = schoolID
			items[i].TimetableSessionID = uuid.New()
			err := checkAndLock(tx, schoolID, items[i], accepted)
			var ce *ConflictError
			switch {
			case errors.As(err, &ce):
				conflicts = append(conflicts, ce.Conflicts...)
				continue
			case err != nil:
				return errors.Wrapf(err, "baris %d", i+1)
			}
			accepted = append(accepted, items[i])
		}
		if len(conflicts) > 0 {
			return &ConflictError{Conflicts: conflicts}
		}
		return tx.CreateInBatches(&items, 100).Error
	})
	return items, err
}

func Update(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID, next model.TimetableSessionModel) (model.TimetableSessionModel, error) {
	var out model.TimetableSessionModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := LoadSession(ctx, tx, schoolID, id)
		if err != nil {
			return err
		}
		next.TimetableSessionID = cur.TimetableSessionID
		next.TimetableSessionSchoolID = schoolID
		next.TimetableSessionCreatedAt = cur.TimetableSessionCreatedAt
		if err := checkAndLock(tx, schoolID, next, nil); err != nil {
			return err
		}
		if err := tx.Select("*").Omit("timetable_session_created_at", "timetable_session_deleted_at").Save(&next).Error; err != nil {
			return err
		}
		out = next
		return nil
	})
	return out, err
}

func Delete(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID) error {
	res := db.WithContext(ctx).
		Where("timetable_session_id = ? AND timetable_session_school_id = ?", id, schoolID).
		Delete(&model.TimetableSessionModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.Wrap(helper.ErrNotFound, "jadwal tidak ditemukan")
	}
	return nil
}

func DeleteClassTimetable(ctx context.Context, db *gorm.DB, schoolID, classID, yearID uuid.UUID) (int64, error) {
	res := db.WithContext(ctx).
		Where("timetable_session_school_id = ? AND timetable_session_class_id = ? AND timetable_session_school_year_id = ?",
			schoolID, classID, yearID).
		Delete(&model.TimetableSessionModel{})
	return res.RowsAffected, res.Error
}

// ListViews: filter by kolom (class/teacher/classroom) + tahun ajaran opsional
func ListViews(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, column string, id uuid.UUID, yearID *uuid.UUID) ([]dto.SessionView, error) {
	allowed := map[string]string{
		"class":     "t.timetable_session_class_id",
		"teacher":   "t.timetable_session_teacher_id",
		"classroom": "t.timetable_session_classroom_id",
	}
	col, ok := allowed[column]
	if !ok {
		return nil, errors.Wrap(helper.ErrBadRequest, "filter jadwal tidak dikenal")
	}
	q := db.WithContext(ctx).Table("timetable_sessions t").
		Select(`t.*, c.class_name, sj.subject_name, COALESCE(u.full_name, '') AS teacher_name, r.classroom_name`).
		Joins("JOIN classes c ON c.class_id = t.timetable_session_class_id").
		Joins("JOIN subjects sj ON sj.subject_id = t.timetable_session_subject_id").
		Joins("LEFT JOIN teachers te ON te.teacher_id = t.timetable_session_teacher_id").
		Joins("LEFT JOIN users u ON u.id = te.teacher_user_id").
		Joins("LEFT JOIN classrooms r ON r.classroom_id = t.timetable_session_classroom_id").
		Where("t.timetable_session_school_id = ? AND t.timetable_session_deleted_at IS NULL", schoolID).
		Where(col+" = ?", id)
	if yearID != nil {
		q = q.Where("t.timetable_session_school_year_id = ?", *yearID)
	}
	rows := []dto.SessionView{}
	err := q.Order("t.timetable_session_day_of_week, t.timetable_session_start_time").Scan(&rows).Error
	return rows, err
}

func yearSessions(ctx context.Context, db *gorm.DB, schoolID, yearID uuid.UUID, extra func(*gorm.DB) *gorm.DB) ([]model.TimetableSessionModel, error) {
	q := db.WithContext(ctx).
		Where("timetable_session_school_id = ? AND timetable_session_school_year_id = ?", schoolID, yearID)
	if extra != nil {
		q = extra(q)
	}
	var rows []model.TimetableSessionModel
	err := q.Order("timetable_session_day_of_week, timetable_session_start_time").Find(&rows).Error
	return rows, err
}

func SchoolConflicts(ctx context.Context, db *gorm.DB, schoolID, yearID uuid.UUID) ([]dto.Conflict, error) {
	rows, err := yearSessions(ctx, db, schoolID, yearID, nil)
	if err != nil {
		return nil, err
	}
	return AllConflicts(rows), nil
}

func TeacherWeeklyHours(ctx context.Context, db *gorm.DB, schoolID, teacherID, yearID uuid.UUID) (dto.WeeklyHours, error) {
	rows, err := yearSessions(ctx, db, schoolID, yearID, func(q *gorm.DB) *gorm.DB {
		return q.Where("timetable_session_teacher_id = ?", teacherID)
	})
	if err != nil {
		return dto.WeeklyHours{}, err
	}
	return WeeklyHoursOf(rows), nil
}

// Availability: slot terisi + celah kosong guru/ruang pada satu hari
func Availability(ctx context.Context, db *gorm.DB, schoolID, yearID uuid.UUID, column string, id uuid.UUID, day int) (dto.Availability, error) {
	views, err := ListViews(ctx, db, schoolID, column, id, &yearID)
	if err != nil {
		return dto.Availability{}, err
	}
	busy := []dto.Slot{}
	for _, v := range views {
		if v.TimetableSessionDayOfWeek != day {
			continue
		}
		name := v.ClassName
		busy = append(busy, dto.Slot{StartTime: v.TimetableSessionStartTime, EndTime: v.TimetableSessionEndTime, ClassName: &name})
	}
	return dto.Availability{DayOfWeek: day, Busy: busy, Free: FreeWindows(busy, DayStart, DayEnd)}, nil
}

// GenerateClassSessions: satu class_session per slot per tanggal yang cocok; aman diulang
func GenerateClassSessions(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, req dto.GenerateSessionsRequest) (dto.GenerateSessionsResult, error) {
	var res dto.GenerateSessionsResult
	from, err := dbtime.ParseDate(req.FromDate)
	if err != nil {
		return res, errors.Wrap(helper.ErrBadRequest, "from_date tidak valid")
	}
	to, err := dbtime.ParseDate(req.ToDate)
	if err != nil {
		return res, errors.Wrap(helper.ErrBadRequest, "to_date tidak valid")
	}
	if to.Before(from) {
		return res, errors.Wrap(helper.ErrBadRequest, "to_date sebelum from_date")
	}
	if dbtime.DaysBetween(from, to) > 366 {
		return res, errors.Wrap(helper.ErrBadRequest, "rentang maksimal satu tahun")
	}

	var slots []model.TimetableSessionModel
	if err := db.WithContext(ctx).
		Where("timetable_session_school_id = ? AND timetable_session_class_id = ?", schoolID, req.ClassID).
		Find(&slots).Error; err != nil {
		return res, err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, s := range slots {
			slotID := s.TimetableSessionID
			for _, d := range SessionDates(s.TimetableSessionDayOfWeek, from, to, s.TimetableSessionEffectiveFrom, s.TimetableSessionEffectiveUntil) {
				row := curriculumModel.ClassSessionModel{
					ClassSessionSchoolID:           schoolID,
					ClassSessionClassID:            s.TimetableSessionClassID,
					ClassSessionSubjectID:          s.TimetableSessionSubjectID,
					ClassSessionTeacherID:          s.TimetableSessionTeacherID,
					ClassSessionTimetableSessionID: &slotID,
					ClassSessionDate:               d,
					ClassSessionStartTime:          s.TimetableSessionStartTime,
					ClassSessionEndTime:            s.TimetableSessionEndTime,
					ClassSessionStatus:             curriculumModel.SessionScheduled,
				}
				r := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "class_session_timetable_session_id"}, {Name: "class_session_date"}},
					DoNothing: true,
				}).Create(&row)
				if r.Error != nil {
					return r.Error
				}
				if r.RowsAffected == 0 {
					res.Skipped++
				} else {
					res.Created++
				}
			}
		}
		return nil
	})
	return res, err
}
