package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolhub_backend/internals/features/school/grades/student_grades/dto"
	"schoolhub_backend/internals/features/school/grades/student_grades/model"
)

var averageUpdateCols = []string{
	"student_average_class_id", "student_average_value", "student_average_grade_count",
	"student_average_rank_in_class", "student_average_calculated_at",
}

func onAverageConflict(overall bool) clause.OnConflict {
	c := clause.OnConflict{DoUpdates: clause.AssignmentColumns(averageUpdateCols)}
	if overall {
		c.Columns = []clause.Column{{Name: "student_average_student_id"}, {Name: "student_average_term_id"}}
		c.TargetWhere = clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "student_average_subject_id IS NULL"}}}
	} else {
		c.Columns = []clause.Column{{Name: "student_average_student_id"}, {Name: "student_average_term_id"}, {Name: "student_average_subject_id"}}
		c.TargetWhere = clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "student_average_subject_id IS NOT NULL"}}}
	}
	return c
}

// BuildAverageRows: hasil hitung → baris student_averages (mapel + umum)
func BuildAverageRows(schoolID, classID, termID uuid.UUID, subjects []SubjectAverage, overall []OverallAverage, at time.Time) (subjectRows, overallRows []model.StudentAverageModel) {
	for _, s := range subjects {
		subj, rank := s.SubjectID, s.Rank
		subjectRows = append(subjectRows, model.StudentAverageModel{
			StudentAverageSchoolID:     schoolID,
			StudentAverageStudentID:    s.StudentID,
			StudentAverageTermID:       termID,
			StudentAverageSubjectID:    &subj,
			StudentAverageClassID:      classID,
			StudentAverageValue:        s.Average,
			StudentAverageGradeCount:   s.GradeCount,
			StudentAverageRank:         &rank,
			StudentAverageCalculatedAt: at,
		})
	}
	for _, o := range overall {
		rank := o.Rank
		overallRows = append(overallRows, model.StudentAverageModel{
			StudentAverageSchoolID:     schoolID,
			StudentAverageStudentID:    o.StudentID,
			StudentAverageTermID:       termID,
			StudentAverageClassID:      classID,
			StudentAverageValue:        o.Average,
			StudentAverageGradeCount:   o.GradeCount,
			StudentAverageRank:         &rank,
			StudentAverageCalculatedAt: at,
		})
	}
	return subjectRows, overallRows
}

// Recompute: hitung ulang rata-rata & peringkat kelas+periode dari nilai tervalidasi.
// Baris lama yang tidak ikut terhitung lagi dihapus.
func Recompute(ctx context.Context, db *gorm.DB, schoolID, classID, termID uuid.UUID) (dto.RecalculateResult, error) {
	var res dto.RecalculateResult
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkScope(tx, schoolID, classID, termID); err != nil {
			return err
		}

		var grades []GradeInput
		if err := tx.Model(&model.StudentGradeModel{}).
			Select(`student_grade_student_id AS student_id, student_grade_subject_id AS subject_id,
				student_grade_value AS value, student_grade_weight AS weight`).
			Where("student_grade_school_id = ? AND student_grade_class_id = ? AND student_grade_term_id = ? AND student_grade_status = ?",
				schoolID, classID, termID, model.GradeStatusValidated).
			Scan(&grades).Error; err != nil {
			return err
		}

		var coefs []struct {
			SubjectID   uuid.UUID
			Coefficient int
		}
		if err := tx.Table("class_subjects").
			Select("class_subject_subject_id AS subject_id, class_subject_coefficient AS coefficient").
			Where("class_subject_class_id = ?", classID).
			Scan(&coefs).Error; err != nil {
			return err
		}
		coef := make(map[uuid.UUID]int, len(coefs))
		for _, c := range coefs {
			coef[c.SubjectID] = c.Coefficient
		}

		subjects := SubjectAverages(grades)
		overall := OverallAverages(subjects, coef)
		// presisi timestamp postgres = mikrodetik
		now := time.Now().Truncate(time.Millisecond)
		subjectRows, overallRows := BuildAverageRows(schoolID, classID, termID, subjects, overall, now)

		if len(subjectRows) > 0 {
			if err := tx.Clauses(onAverageConflict(false)).CreateInBatches(&subjectRows, 200).Error; err != nil {
				return err
			}
		}
		if len(overallRows) > 0 {
			if err := tx.Clauses(onAverageConflict(true)).CreateInBatches(&overallRows, 200).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("student_average_class_id = ? AND student_average_term_id = ? AND student_average_calculated_at < ?",
			classID, termID, now).
			Delete(&model.StudentAverageModel{}).Error; err != nil {
			return err
		}

		res = dto.RecalculateResult{Students: len(overall), SubjectRows: len(subjectRows), ValidatedUsed: len(grades)}
		return nil
	})
	return res, err
}

// Averages: baca tabel rata-rata terurut peringkat. subjectID nil = rata-rata umum.
func Averages(ctx context.Context, db *gorm.DB, schoolID, classID, termID uuid.UUID, subjectID *uuid.UUID) ([]dto.AverageRow, error) {
	rows := []dto.AverageRow{}
	q := db.WithContext(ctx).Table("student_averages a").
		Select(`a.student_average_student_id AS student_id, s.student_matricule, s.student_first_name, s.student_last_name,
			a.student_average_subject_id AS subject_id, a.student_average_value AS average,
			a.student_average_grade_count AS grade_count, a.student_average_rank_in_class AS rank`).
		Joins("JOIN students s ON s.student_id = a.student_average_student_id").
		Where("a.student_average_school_id = ? AND a.student_average_class_id = ? AND a.student_average_term_id = ?",
			schoolID, classID, termID)
	if subjectID != nil {
		q = q.Where("a.student_average_subject_id = ?", *subjectID)
	} else {
		q = q.Where("a.student_average_subject_id IS NULL")
	}
	if err := q.Order("a.student_average_rank_in_class ASC NULLS LAST, s.student_last_name ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Band = ColorBand(rows[i].Average)
	}
	return rows, nil
}
