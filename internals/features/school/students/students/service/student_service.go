package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	yearService "schoolhub_backend/internals/features/school/academics/school_years/service"
	"schoolhub_backend/internals/features/school/students/students/dto"
	"schoolhub_backend/internals/features/school/students/students/model"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/dbtime"
)

func LoadStudent(ctx context.Context, db *gorm.DB, schoolID, studentID uuid.UUID) (model.StudentModel, error) {
	var m model.StudentModel
	err := db.WithContext(ctx).
		Where("student_id = ? AND student_school_id = ?", studentID, schoolID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return m, errors.Wrap(helper.ErrNotFound, "siswa tidak ditemukan")
	}
	return m, err
}

// resolveYear: tahun ajaran dari request, kalau kosong pakai yang aktif.
func resolveYear(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, yearID *uuid.UUID) (uuid.UUID, error) {
	if yearID != nil {
		y, err := yearService.LoadYear(ctx, db, schoolID, *yearID)
		return y.SchoolYearID, err
	}
	y, err := yearService.ActiveYear(ctx, db, schoolID)
	if err != nil {
		return uuid.Nil, errors.Wrap(helper.ErrBadRequest, "belum ada tahun ajaran aktif")
	}
	return y.SchoolYearID, nil
}

// CreateStudent: matricule otomatis kalau kosong, cek duplikat per sekolah.
func CreateStudent(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, req dto.StudentRequest) (model.StudentModel, error) {
	m := req.ToModel(schoolID)
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if m.StudentMatricule == "" {
			yearID, err := resolveYear(ctx, tx, schoolID, req.SchoolYearID)
			if err != nil {
				return err
			}
			mats, err := ReserveMatricules(ctx, tx, schoolID, yearID, 1)
			if err != nil {
				return err
			}
			m.StudentMatricule = mats[0]
		} else {
			var n int64
			if err := tx.Model(&model.StudentModel{}).
				Where("student_school_id = ? AND student_matricule = ?", schoolID, m.StudentMatricule).
				Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return errors.Wrapf(helper.ErrConflict, "matricule %s sudah dipakai", m.StudentMatricule)
			}
		}
		if err := tx.Create(&m).Error; err != nil {
			if helper.IsUniqueViolation(err) {
				return errors.Wrapf(helper.ErrConflict, "matricule %s sudah dipakai", m.StudentMatricule)
			}
			return err
		}
		return nil
	})
	return m, err
}

// UpdateStatus: status selain active membatalkan enrollment yang masih confirmed.
func UpdateStatus(ctx context.Context, db *gorm.DB, m *model.StudentModel, status string, reason *string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		up := map[string]any{
			"student_status":          status,
			"student_status_reason":   reason,
			"student_withdrawal_date": nil,
		}
		if status == model.StudentStatusWithdrawn {
			up["student_withdrawal_date"] = dbtime.Today()
		}
		if err := tx.Model(m).Updates(up).Error; err != nil {
			return err
		}
		if status == model.StudentStatusActive {
			return nil
		}
		cancelReason := "Siswa " + status
		if reason != nil && *reason != "" {
			cancelReason = *reason
		}
		return tx.Exec(`
			UPDATE enrollments
			SET enrollment_status = 'cancelled',
			    enrollment_cancelled_at = ?,
			    enrollment_cancellation_reason = ?,
			    enrollment_updated_at = NOW()
			WHERE enrollment_student_id = ? AND enrollment_status = 'confirmed'
		`, time.Now(), cancelReason, m.StudentID).Error
	})
}

func Profile(ctx context.Context, db *gorm.DB, m model.StudentModel) (dto.StudentProfile, error) {
	out := dto.StudentProfile{Student: m, Parents: []dto.ParentLink{}}
	if err := db.WithContext(ctx).Table("student_parents sp").
		Select("p.*, sp.student_parent_relationship AS relationship, sp.student_parent_is_primary AS is_primary").
		Joins("JOIN parents p ON p.parent_id = sp.student_parent_parent_id AND p.parent_deleted_at IS NULL").
		Where("sp.student_parent_student_id = ?", m.StudentID).
		Order("sp.student_parent_is_primary DESC, p.parent_last_name ASC").
		Scan(&out.Parents).Error; err != nil {
		return out, err
	}

	var cur []dto.CurrentEnrollment
	if err := db.WithContext(ctx).Table("enrollments e").
		Select(`e.enrollment_id, c.class_id, c.class_name, y.school_year_id, y.school_year_name,
			e.enrollment_status AS status, e.enrollment_roll_number AS roll_number`).
		Joins("JOIN classes c ON c.class_id = e.enrollment_class_id").
		Joins("JOIN school_years y ON y.school_year_id = e.enrollment_school_year_id").
		Where("e.enrollment_student_id = ? AND e.enrollment_status IN ('pending','confirmed')", m.StudentID).
		Order("y.school_year_is_active DESC, y.school_year_start_date DESC").
		Limit(1).
		Scan(&cur).Error; err != nil {
		return out, err
	}
	if len(cur) > 0 {
		out.CurrentEnrollment = &cur[0]
	}
	return out, nil
}

func Stats(ctx context.Context, db *gorm.DB, schoolID uuid.UUID) (dto.StudentStats, error) {
	var st dto.StudentStats
	base := func() *gorm.DB {
		return db.WithContext(ctx).Model(&model.StudentModel{}).Where("student_school_id = ?", schoolID)
	}
	if err := base().Count(&st.Total).Error; err != nil {
		return st, err
	}
	if err := base().Select("student_status AS key, COUNT(*) AS count").
		Group("student_status").Order("student_status").Scan(&st.ByStatus).Error; err != nil {
		return st, err
	}
	if err := base().Where("student_status = ?", model.StudentStatusActive).
		Select("COALESCE(student_gender, 'unknown') AS key, COUNT(*) AS count").
		Group("student_gender").Order("key").Scan(&st.ByGender).Error; err != nil {
		return st, err
	}
	yearStart := time.Date(dbtime.Today().Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	if err := base().Where("student_admission_date >= ?", yearStart).Count(&st.NewAdmissions).Error; err != nil {
		return st, err
	}
	return st, nil
}
