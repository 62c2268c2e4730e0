package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolhub_backend/internals/features/school/students/enrollments/dto"
	"schoolhub_backend/internals/features/school/students/enrollments/model"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/dbtime"
)

type classRow struct {
	ClassID           uuid.UUID
	ClassSchoolYearID uuid.UUID
	ClassMaxStudents  int
	ClassStatus       string
}

// lockClass: kunci baris kelas supaya cek kapasitas & nomor absen tidak balapan.
func lockClass(tx *gorm.DB, schoolID, classID uuid.UUID) (classRow, error) {
	var c classRow
	err := tx.Table("classes").
		Select("class_id, class_school_year_id, class_max_students, class_status").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("class_id = ? AND class_school_id = ? AND class_deleted_at IS NULL", classID, schoolID).
		Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c, errors.Wrap(helper.ErrNotFound, "kelas tidak ditemukan")
	}
	return c, err
}

func confirmedCount(tx *gorm.DB, classID uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(&model.EnrollmentModel{}).
		Where("enrollment_class_id = ? AND enrollment_status = ?", classID, model.EnrollmentConfirmed).
		Count(&n).Error
	return n, err
}

func nextRoll(tx *gorm.DB, classID uuid.UUID) (int, error) {
	var max int
	err := tx.Model(&model.EnrollmentModel{}).
		Select("COALESCE(MAX(enrollment_roll_number), 0)").
		Where("enrollment_class_id = ? AND enrollment_status = ?", classID, model.EnrollmentConfirmed).
		Scan(&max).Error
	return max + 1, err
}

func ensureCapacity(tx *gorm.DB, c classRow) error {
	n, err := confirmedCount(tx, c.ClassID)
	if err != nil {
		return err
	}
	if n >= int64(c.ClassMaxStudents) {
		return errors.Wrap(helper.ErrConflict, "kelas sudah penuh")
	}
	return nil
}

func LoadEnrollment(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID) (model.EnrollmentModel, error) {
	var m model.EnrollmentModel
	err := db.WithContext(ctx).
		Where("enrollment_id = ? AND enrollment_school_id = ?", id, schoolID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return m, errors.Wrap(helper.ErrNotFound, "pendaftaran tidak ditemukan")
	}
	return m, err
}

// Create: status awal pending. 409 kalau sudah terdaftar di tahun yang sama atau kelas penuh.
func Create(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, req dto.CreateEnrollmentRequest) (model.EnrollmentModel, error) {
	var m model.EnrollmentModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var st struct{ StudentStatus string }
		if err := tx.Table("students").Select("student_status").
			Where("student_id = ? AND student_school_id = ? AND student_deleted_at IS NULL", req.StudentID, schoolID).
			Take(&st).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.Wrap(helper.ErrNotFound, "siswa tidak ditemukan")
			}
			return err
		}
		if st.StudentStatus != "active" {
			return errors.Wrap(helper.ErrBadRequest, "siswa tidak aktif")
		}

		cls, err := lockClass(tx, schoolID, req.ClassID)
		if err != nil {
			return err
		}
		if cls.ClassStatus != "active" {
			return errors.Wrap(helper.ErrBadRequest, "kelas sudah diarsipkan")
		}

		var dup int64
		if err := tx.Model(&model.EnrollmentModel{}).
			Where("enrollment_student_id = ? AND enrollment_school_year_id = ? AND enrollment_status <> ?",
				req.StudentID, cls.ClassSchoolYearID, model.EnrollmentCancelled).
			Count(&dup).Error; err != nil {
			return err
		}
		if dup > 0 {
			return errors.Wrap(helper.ErrConflict, "siswa sudah terdaftar di tahun ajaran ini")
		}
		if err := ensureCapacity(tx, cls); err != nil {
			return err
		}

		roll := req.RollNumber
		if roll == nil {
			r, err := nextRoll(tx, cls.ClassID)
			if err != nil {
				return err
			}
			roll = &r
		}
		date := dbtime.Today()
		if req.EnrollmentDate != nil {
			if d, err := dbtime.ParseDate(*req.EnrollmentDate); err == nil {
				date = d
			}
		}
		m = model.EnrollmentModel{
			EnrollmentSchoolID:     schoolID,
			EnrollmentStudentID:    req.StudentID,
			EnrollmentClassID:      cls.ClassID,
			EnrollmentSchoolYearID: cls.ClassSchoolYearID,
			EnrollmentStatus:       model.EnrollmentPending,
			EnrollmentRollNumber:   roll,
			EnrollmentDate:         date,
		}
		return tx.Create(&m).Error
	})
	return m, err
}

// Confirm: pending → confirmed (kapasitas dicek ulang).
func Confirm(ctx context.Context, db *gorm.DB, m *model.EnrollmentModel, by *uuid.UUID) error {
	if m.EnrollmentStatus != model.EnrollmentPending {
		return errors.Wrap(helper.ErrInvalidState, "hanya pendaftaran pending yang bisa dikonfirmasi")
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cls, err := lockClass(tx, m.EnrollmentSchoolID, m.EnrollmentClassID)
		if err != nil {
			return err
		}
		if err := ensureCapacity(tx, cls); err != nil {
			return err
		}
		now := time.Now()
		return tx.Model(m).Updates(map[string]any{
			"enrollment_status":       model.EnrollmentConfirmed,
			"enrollment_confirmed_at": now,
			"enrollment_confirmed_by": by,
		}).Error
	})
}

func Cancel(ctx context.Context, db *gorm.DB, m *model.EnrollmentModel, by *uuid.UUID, reason *string) error {
	if m.EnrollmentStatus == model.EnrollmentCancelled || m.EnrollmentStatus == model.EnrollmentTransferred {
		return errors.Wrap(helper.ErrInvalidState, "pendaftaran sudah dibatalkan atau dipindahkan")
	}
	return db.WithContext(ctx).Model(m).Updates(map[string]any{
		"enrollment_status":              model.EnrollmentCancelled,
		"enrollment_cancelled_at":        time.Now(),
		"enrollment_cancelled_by":        by,
		"enrollment_cancellation_reason": reason,
	}).Error
}

// Transfer: enrollment lama → transferred, enrollment baru confirmed di kelas tujuan.
func Transfer(ctx context.Context, db *gorm.DB, schoolID, enrollmentID uuid.UUID, req dto.TransferRequest, by *uuid.UUID) (model.EnrollmentModel, error) {
	var next model.EnrollmentModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur model.EnrollmentModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("enrollment_id = ? AND enrollment_school_id = ?", enrollmentID, schoolID).
			First(&cur).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.Wrap(helper.ErrNotFound, "pendaftaran tidak ditemukan")
			}
			return err
		}
		if cur.EnrollmentStatus != model.EnrollmentConfirmed {
			return errors.Wrap(helper.ErrInvalidState, "hanya pendaftaran confirmed yang bisa dipindahkan")
		}
		if cur.EnrollmentClassID == req.NewClassID {
			return errors.Wrap(helper.ErrBadRequest, "kelas tujuan sama dengan kelas sekarang")
		}
		cls, err := lockClass(tx, schoolID, req.NewClassID)
		if err != nil {
			return err
		}
		if cls.ClassSchoolYearID != cur.EnrollmentSchoolYearID {
			return errors.Wrap(helper.ErrBadRequest, "kelas tujuan beda tahun ajaran")
		}
		if err := ensureCapacity(tx, cls); err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&cur).Updates(map[string]any{
			"enrollment_status":          model.EnrollmentTransferred,
			"enrollment_transferred_at":  now,
			"enrollment_transferred_to":  cls.ClassID,
			"enrollment_transfer_reason": req.Reason,
		}).Error; err != nil {
			return err
		}

		roll, err := nextRoll(tx, cls.ClassID)
		if err != nil {
			return err
		}
		date := dbtime.Today()
		if req.EffectiveDate != nil {
			if d, err := dbtime.ParseDate(*req.EffectiveDate); err == nil {
				date = d
			}
		}
		prev := cur.EnrollmentID
		next = model.EnrollmentModel{
			EnrollmentSchoolID:     schoolID,
			EnrollmentStudentID:    cur.EnrollmentStudentID,
			EnrollmentClassID:      cls.ClassID,
			EnrollmentSchoolYearID: cur.EnrollmentSchoolYearID,
			EnrollmentStatus:       model.EnrollmentConfirmed,
			EnrollmentRollNumber:   &roll,
			EnrollmentDate:         date,
			EnrollmentConfirmedAt:  &now,
			EnrollmentConfirmedBy:  by,
			EnrollmentPreviousID:   &prev,
		}
		return tx.Create(&next).Error
	})
	return next, err
}

func Stats(ctx context.Context, db *gorm.DB, schoolID, yearID uuid.UUID) (dto.EnrollmentStats, error) {
	out := dto.EnrollmentStats{ByStatus: []dto.StatusCount{}, ByClass: []dto.ClassCount{}}
	if err := db.WithContext(ctx).Model(&model.EnrollmentModel{}).
		Select("enrollment_status AS status, COUNT(*) AS count").
		Where("enrollment_school_id = ? AND enrollment_school_year_id = ?", schoolID, yearID).
		Group("enrollment_status").Order("enrollment_status").
		Scan(&out.ByStatus).Error; err != nil {
		return out, err
	}
	err := db.WithContext(ctx).Table("classes c").
		Select(`c.class_id, c.class_name, c.class_max_students AS max_students,
			COUNT(e.enrollment_id) AS count,
			COUNT(CASE WHEN s.student_gender = 'M' THEN 1 END) AS boys,
			COUNT(CASE WHEN s.student_gender = 'F' THEN 1 END) AS girls`).
		Joins("LEFT JOIN enrollments e ON e.enrollment_class_id = c.class_id AND e.enrollment_status = 'confirmed'").
		Joins("LEFT JOIN students s ON s.student_id = e.enrollment_student_id").
		Where("c.class_school_id = ? AND c.class_school_year_id = ? AND c.class_deleted_at IS NULL", schoolID, yearID).
		Group("c.class_id, c.class_name, c.class_max_students").
		Order("c.class_name ASC").
		Scan(&out.ByClass).Error
	return out, err
}
