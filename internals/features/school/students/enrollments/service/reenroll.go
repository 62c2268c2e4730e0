package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/school/students/enrollments/dto"
	"schoolhub_backend/internals/features/school/students/enrollments/model"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/dbtime"
)

// PrevEnrollment: enrollment confirmed tahun lama + grade/serie kelasnya.
type PrevEnrollment struct {
	EnrollmentID uuid.UUID
	StudentID    uuid.UUID
	GradeID      uuid.UUID
	SeriesID     *uuid.UUID
}

// TargetClass: kelas aktif di tahun tujuan.
type TargetClass struct {
	ClassID     uuid.UUID
	GradeID     uuid.UUID
	SeriesID    *uuid.UUID
	MaxStudents int
	Confirmed   int
	MaxRoll     int
}

func classKey(grade uuid.UUID, series *uuid.UUID) string {
	if series == nil {
		return grade.String() + "-none"
	}
	return grade.String() + "-" + series.String()
}

// PlanReEnroll: pure, tanpa DB. Kelas pertama per (grade, serie) dipakai.
// Siswa yang sudah punya enrollment non-cancelled di tahun tujuan di-skip.
func PlanReEnroll(
	schoolID, toYearID uuid.UUID,
	prev []PrevEnrollment,
	already map[uuid.UUID]bool,
	targets []TargetClass,
	mapping map[string]uuid.UUID,
	autoConfirm bool,
	now time.Time,
) ([]model.EnrollmentModel, dto.ReEnrollResult) {
	res := dto.ReEnrollResult{Errors: []dto.ReEnrollError{}}

	lookup := make(map[string]*TargetClass, len(targets))
	for i := range targets {
		k := classKey(targets[i].GradeID, targets[i].SeriesID)
		if _, ok := lookup[k]; !ok {
			lookup[k] = &targets[i]
		}
	}

	out := make([]model.EnrollmentModel, 0, len(prev))
	for _, p := range prev {
		if already[p.StudentID] {
			res.Skipped++
			continue
		}
		grade := p.GradeID
		if g, ok := mapping[p.GradeID.String()]; ok && g != uuid.Nil {
			grade = g
		}
		tc := lookup[classKey(grade, p.SeriesID)]
		if tc == nil {
			res.Errors = append(res.Errors, dto.ReEnrollError{
				StudentID: p.StudentID,
				Error:     fmt.Sprintf("tidak ada kelas untuk grade %s", grade),
			})
			continue
		}
		if autoConfirm && tc.Confirmed >= tc.MaxStudents {
			res.Errors = append(res.Errors, dto.ReEnrollError{StudentID: p.StudentID, Error: "kelas tujuan sudah penuh"})
			continue
		}

		tc.MaxRoll++
		roll := tc.MaxRoll
		prevID := p.EnrollmentID
		e := model.EnrollmentModel{
			EnrollmentID:           uuid.New(),
			EnrollmentSchoolID:     schoolID,
			EnrollmentStudentID:    p.StudentID,
			EnrollmentClassID:      tc.ClassID,
			EnrollmentSchoolYearID: toYearID,
			EnrollmentStatus:       model.EnrollmentPending,
			EnrollmentRollNumber:   &roll,
			EnrollmentDate:         dbtime.DateOnly(now),
			EnrollmentPreviousID:   &prevID,
		}
		if autoConfirm {
			at := now
			e.EnrollmentStatus = model.EnrollmentConfirmed
			e.EnrollmentConfirmedAt = &at
			tc.Confirmed++
		}
		out = append(out, e)
	}
	res.Success = len(out)
	return out, res
}

// BulkReEnroll: siswa aktif yang confirmed di fromYear → kelas padanan di toYear.
func BulkReEnroll(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, req dto.ReEnrollRequest, by *uuid.UUID) (dto.ReEnrollResult, error) {
	var res dto.ReEnrollResult
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var years int64
		if err := tx.Table("school_years").
			Where("school_year_school_id = ? AND school_year_id IN ?", schoolID, []uuid.UUID{req.FromYearID, req.ToYearID}).
			Count(&years).Error; err != nil {
			return err
		}
		if years != 2 {
			return errors.Wrap(helper.ErrNotFound, "tahun ajaran tidak ditemukan")
		}

		var prev []PrevEnrollment
		if err := tx.Table("enrollments e").
			Select("e.enrollment_id, e.enrollment_student_id AS student_id, c.class_grade_id AS grade_id, c.class_series_id AS series_id").
			Joins("JOIN students s ON s.student_id = e.enrollment_student_id AND s.student_status = 'active' AND s.student_deleted_at IS NULL").
			Joins("JOIN classes c ON c.class_id = e.enrollment_class_id").
			Where("e.enrollment_school_id = ? AND e.enrollment_school_year_id = ? AND e.enrollment_status = 'confirmed'",
				schoolID, req.FromYearID).
			Order("e.enrollment_roll_number ASC NULLS LAST").
			Scan(&prev).Error; err != nil {
			return err
		}
		if len(prev) == 0 {
			res = dto.ReEnrollResult{Errors: []dto.ReEnrollError{}}
			return nil
		}

		ids := make([]uuid.UUID, 0, len(prev))
		for _, p := range prev {
			ids = append(ids, p.StudentID)
		}
		var existing []uuid.UUID
		if err := tx.Model(&model.EnrollmentModel{}).
			Where("enrollment_student_id IN ? AND enrollment_school_year_id = ? AND enrollment_status <> 'cancelled'", ids, req.ToYearID).
			Pluck("enrollment_student_id", &existing).Error; err != nil {
			return err
		}
		already := make(map[uuid.UUID]bool, len(existing))
		for _, id := range existing {
			already[id] = true
		}

		var targets []TargetClass
		if err := tx.Table("classes c").
			Select(`c.class_id, c.class_grade_id AS grade_id, c.class_series_id AS series_id,
				c.class_max_students AS max_students,
				COUNT(e.enrollment_id) FILTER (WHERE e.enrollment_status = 'confirmed') AS confirmed,
				COALESCE(MAX(e.enrollment_roll_number), 0) AS max_roll`).
			Joins("LEFT JOIN enrollments e ON e.enrollment_class_id = c.class_id AND e.enrollment_status IN ('pending','confirmed')").
			Where("c.class_school_id = ? AND c.class_school_year_id = ? AND c.class_status = 'active' AND c.class_deleted_at IS NULL",
				schoolID, req.ToYearID).
			Group("c.class_id").
			Order("c.class_section ASC").
			Scan(&targets).Error; err != nil {
			return err
		}

		rows, plan := PlanReEnroll(schoolID, req.ToYearID, prev, already, targets, req.GradeMapping, req.AutoConfirm, time.Now())
		if req.AutoConfirm && by != nil {
			for i := range rows {
				rows[i].EnrollmentConfirmedBy = by
			}
		}
		if len(rows) > 0 {
			if err := tx.CreateInBatches(&rows, 500).Error; err != nil {
				return err
			}
		}
		res = plan
		return nil
	})
	return res, err
}
