package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/school/academics/classes/dto"
	"schoolhub_backend/internals/features/school/academics/classes/model"
	helper "schoolhub_backend/internals/helpers"
)

// MaxTeacherHoursPerWeek: di atas ini guru dianggap overload.
const MaxTeacherHoursPerWeek = 30

// ClassDisplayName: "Terminale D A", "6ème B", ...
func ClassDisplayName(gradeName, serieCode, section string) string {
	parts := []string{strings.TrimSpace(gradeName)}
	if s := strings.TrimSpace(serieCode); s != "" {
		parts = append(parts, s)
	}
	parts = append(parts, strings.TrimSpace(section))
	return strings.Join(parts, " ")
}

// Workload: jumlahkan jam per minggu; overload kalau > MaxTeacherHoursPerWeek.
func Workload(teacherID uuid.UUID, rows []dto.TeacherAssignment) dto.TeacherWorkload {
	w := dto.TeacherWorkload{TeacherID: teacherID, Assignments: rows}
	if w.Assignments == nil {
		w.Assignments = []dto.TeacherAssignment{}
	}
	for _, r := range rows {
		w.TotalHours += r.HoursPerWeek
	}
	w.Overloaded = w.TotalHours > MaxTeacherHoursPerWeek
	return w
}

// LoadClass memastikan kelas milik sekolah.
func LoadClass(ctx context.Context, db *gorm.DB, schoolID, classID uuid.UUID) (model.ClassModel, error) {
	var m model.ClassModel
	err := db.WithContext(ctx).
		Where("class_school_id = ? AND class_id = ?", schoolID, classID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return m, errors.Wrap(helper.ErrNotFound, "kelas tidak ditemukan")
	}
	return m, err
}

// ResolveName: nama kelas dari grade + série + section.
func ResolveName(ctx context.Context, db *gorm.DB, gradeID uuid.UUID, seriesID *uuid.UUID, section string) (string, error) {
	var gradeName string
	if err := db.WithContext(ctx).Table("grades").
		Select("grade_name").Where("grade_id = ? AND grade_deleted_at IS NULL", gradeID).
		Scan(&gradeName).Error; err != nil {
		return "", err
	}
	if gradeName == "" {
		return "", errors.Wrap(helper.ErrBadRequest, "grade_id tidak dikenal")
	}
	serie := ""
	if seriesID != nil {
		if err := db.WithContext(ctx).Table("series").
			Select("serie_code").Where("serie_id = ? AND serie_deleted_at IS NULL", *seriesID).
			Scan(&serie).Error; err != nil {
			return "", err
		}
		if serie == "" {
			return "", errors.Wrap(helper.ErrBadRequest, "series_id tidak dikenal")
		}
	}
	return ClassDisplayName(gradeName, serie, section), nil
}

// ConfirmedCount: jumlah enrollment terkonfirmasi di kelas.
func ConfirmedCount(ctx context.Context, db *gorm.DB, classID uuid.UUID) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Table("enrollments").
		Where("enrollment_class_id = ? AND enrollment_status = 'confirmed'", classID).
		Count(&n).Error
	return n, err
}

// TeacherAssignments: semua class_subject guru di tahun ajaran (kelas aktif).
func TeacherAssignments(ctx context.Context, db *gorm.DB, schoolID, teacherID uuid.UUID, yearID *uuid.UUID) ([]dto.TeacherAssignment, error) {
	q := db.WithContext(ctx).Table("class_subjects cs").
		Select("c.class_id, c.class_name, s.subject_name, cs.class_subject_hours_per_week AS hours_per_week").
		Joins("JOIN classes c ON c.class_id = cs.class_subject_class_id AND c.class_deleted_at IS NULL").
		Joins("JOIN subjects s ON s.subject_id = cs.class_subject_subject_id").
		Where("cs.class_subject_school_id = ? AND cs.class_subject_teacher_id = ? AND c.class_status = 'active'", schoolID, teacherID)
	if yearID != nil {
		q = q.Where("c.class_school_year_id = ?", *yearID)
	}
	var rows []dto.TeacherAssignment
	err := q.Order("c.class_name ASC, s.subject_name ASC").Scan(&rows).Error
	return rows, err
}

// CopySubjects: salin mapel dari kelas sumber; guru tidak ikut disalin.
// overwrite=true → koefisien & jam kelas target ditimpa.
func CopySubjects(ctx context.Context, db *gorm.DB, schoolID, sourceID, targetID uuid.UUID, overwrite bool) ([]model.ClassSubjectModel, error) {
	var out []model.ClassSubjectModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var src []model.ClassSubjectModel
		if err := tx.Where("class_subject_school_id = ? AND class_subject_class_id = ?", schoolID, sourceID).
			Find(&src).Error; err != nil {
			return err
		}
		for _, s := range src {
			var existing model.ClassSubjectModel
			err := tx.Where("class_subject_class_id = ? AND class_subject_subject_id = ?", targetID, s.ClassSubjectSubjectID).
				First(&existing).Error
			switch {
			case err == nil:
				if !overwrite {
					continue
				}
				existing.ClassSubjectCoefficient = s.ClassSubjectCoefficient
				existing.ClassSubjectHoursPerWeek = s.ClassSubjectHoursPerWeek
				if err := tx.Save(&existing).Error; err != nil {
					return err
				}
				out = append(out, existing)
			case errors.Is(err, gorm.ErrRecordNotFound):
				row := model.ClassSubjectModel{
					ClassSubjectSchoolID:     schoolID,
					ClassSubjectClassID:      targetID,
					ClassSubjectSubjectID:    s.ClassSubjectSubjectID,
					ClassSubjectCoefficient:  s.ClassSubjectCoefficient,
					ClassSubjectHoursPerWeek: s.ClassSubjectHoursPerWeek,
				}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
				out = append(out, row)
			default:
				return err
			}
		}
		return nil
	})
	return out, err
}

// TeacherQualified: guru harus punya mapel tsb di teacher_subjects.
func TeacherQualified(ctx context.Context, db *gorm.DB, schoolID, teacherID, subjectID uuid.UUID) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Table("teacher_subjects ts").
		Joins("JOIN teachers t ON t.teacher_id = ts.teacher_subject_teacher_id").
		Where("t.teacher_school_id = ? AND ts.teacher_subject_teacher_id = ? AND ts.teacher_subject_subject_id = ?", schoolID, teacherID, subjectID).
		Count(&n).Error
	return n > 0, err
}
