package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/school/academics/school_years/model"
	helper "schoolhub_backend/internals/helpers"
)

// CheckRange: end harus setelah start.
func CheckRange(start, end time.Time) error {
	if !end.After(start) {
		return errors.Wrap(helper.ErrBadRequest, "end_date harus setelah start_date")
	}
	return nil
}

// CheckTermWithinYear: periode term harus di dalam tahun ajaran.
func CheckTermWithinYear(year model.SchoolYearModel, start, end time.Time) error {
	if err := CheckRange(start, end); err != nil {
		return err
	}
	if start.Before(year.SchoolYearStartDate) || end.After(year.SchoolYearEndDate) {
		return errors.Wrap(helper.ErrBadRequest, "periode term harus di dalam tahun ajaran")
	}
	return nil
}

// SetActive: aktifkan satu tahun ajaran, yang lain di sekolah yang sama dinonaktifkan.
func SetActive(ctx context.Context, db *gorm.DB, schoolID, yearID uuid.UUID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return setActiveTx(tx, schoolID, yearID)
	})
}

func setActiveTx(tx *gorm.DB, schoolID, yearID uuid.UUID) error {
	if err := tx.Model(&model.SchoolYearModel{}).
		Where("school_year_school_id = ? AND school_year_id <> ? AND school_year_is_active", schoolID, yearID).
		Update("school_year_is_active", false).Error; err != nil {
		return err
	}
	res := tx.Model(&model.SchoolYearModel{}).
		Where("school_year_school_id = ? AND school_year_id = ?", schoolID, yearID).
		Update("school_year_is_active", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.Wrap(helper.ErrNotFound, "tahun ajaran tidak ditemukan")
	}
	return nil
}

// Save: create/update tahun ajaran; kalau is_active, sekalian nonaktifkan yang lain.
func Save(ctx context.Context, db *gorm.DB, m *model.SchoolYearModel) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wantActive := m.SchoolYearIsActive
		if err := tx.Save(m).Error; err != nil {
			return err
		}
		if wantActive {
			return setActiveTx(tx, m.SchoolYearSchoolID, m.SchoolYearID)
		}
		return nil
	})
}

// ActiveYear: tahun ajaran aktif sekolah (ErrNotFound kalau belum ada).
func ActiveYear(ctx context.Context, db *gorm.DB, schoolID uuid.UUID) (model.SchoolYearModel, error) {
	var y model.SchoolYearModel
	err := db.WithContext(ctx).
		Where("school_year_school_id = ? AND school_year_is_active", schoolID).
		First(&y).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return y, errors.Wrap(helper.ErrNotFound, "belum ada tahun ajaran aktif")
	}
	return y, err
}

// LoadYear memastikan tahun ajaran milik sekolah.
func LoadYear(ctx context.Context, db *gorm.DB, schoolID, yearID uuid.UUID) (model.SchoolYearModel, error) {
	var y model.SchoolYearModel
	err := db.WithContext(ctx).
		Where("school_year_school_id = ? AND school_year_id = ?", schoolID, yearID).
		First(&y).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return y, errors.Wrap(helper.ErrNotFound, "tahun ajaran tidak ditemukan")
	}
	return y, err
}

// LoadTerm memastikan term milik sekolah.
func LoadTerm(ctx context.Context, db *gorm.DB, schoolID, termID uuid.UUID) (model.TermModel, error) {
	var t model.TermModel
	err := db.WithContext(ctx).
		Where("term_school_id = ? AND term_id = ?", schoolID, termID).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return t, errors.Wrap(helper.ErrNotFound, "term tidak ditemukan")
	}
	return t, err
}
