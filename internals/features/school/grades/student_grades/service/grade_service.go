package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolhub_backend/internals/features/school/grades/student_grades/dto"
	"schoolhub_backend/internals/features/school/grades/student_grades/model"
	helper "schoolhub_backend/internals/helpers"
)

// CanTransition: draft/rejected → submitted, submitted → validated|rejected
func CanTransition(from, to string) bool {
	switch to {
	case model.GradeStatusSubmitted:
		return from == model.GradeStatusDraft || from == model.GradeStatusRejected
	case model.GradeStatusValidated, model.GradeStatusRejected:
		return from == model.GradeStatusSubmitted
	}
	return false
}

func LoadGrade(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID) (model.StudentGradeModel, error) {
	var m model.StudentGradeModel
	err := db.WithContext(ctx).
		Where("student_grade_id = ? AND student_grade_school_id = ?", id, schoolID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return m, errors.Wrap(helper.ErrNotFound, "nilai tidak ditemukan")
	}
	return m, err
}

// EnsureClass: kelas harus milik sekolah
func EnsureClass(tx *gorm.DB, schoolID, classID uuid.UUID) error {
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

func ensureTerm(tx *gorm.DB, schoolID, termID uuid.UUID) error {
	var n int64
	if err := tx.Table("terms").
		Where("term_id = ? AND term_school_id = ? AND term_deleted_at IS NULL", termID, schoolID).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return errors.Wrap(helper.ErrNotFound, "periode tidak ditemukan")
	}
	return nil
}

// classSubjectTeacher: mapel wajib diajarkan di kelas; kembalikan guru pengampunya (boleh nil)
func classSubjectTeacher(tx *gorm.DB, classID, subjectID uuid.UUID) (*uuid.UUID, error) {
	var row struct{ ClassSubjectTeacherID *uuid.UUID }
	err := tx.Table("class_subjects").Select("class_subject_teacher_id").
		Where("class_subject_class_id = ? AND class_subject_subject_id = ?", classID, subjectID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(helper.ErrBadRequest, "mapel tidak diajarkan di kelas ini")
	}
	return row.ClassSubjectTeacherID, err
}

// enrolled: siswa yang terdaftar (confirmed) di kelas dari daftar ids
func enrolled(tx *gorm.DB, classID uuid.UUID, studentIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	if err := tx.Table("enrollments").
		Where("enrollment_class_id = ? AND enrollment_status = 'confirmed' AND enrollment_student_id IN ?", classID, studentIDs).
		Pluck("enrollment_student_id", &ids).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// resolveTeacher: teacher_id di body > guru dari token > guru pengampu kelas
func resolveTeacher(tx *gorm.DB, schoolID, classID, subjectID uuid.UUID, requested, fromToken *uuid.UUID) (uuid.UUID, error) {
	assigned, err := classSubjectTeacher(tx, classID, subjectID)
	if err != nil {
		return uuid.Nil, err
	}
	var id *uuid.UUID
	switch {
	case requested != nil:
		id = requested
	case fromToken != nil:
		id = fromToken
	default:
		id = assigned
	}
	if id == nil {
		return uuid.Nil, errors.Wrap(helper.ErrBadRequest, "teacher_id wajib (mapel belum punya guru)")
	}
	var n int64
	if err := tx.Table("teachers").
		Where("teacher_id = ? AND teacher_school_id = ? AND teacher_deleted_at IS NULL", *id, schoolID).
		Count(&n).Error; err != nil {
		return uuid.Nil, err
	}
	if n == 0 {
		return uuid.Nil, errors.Wrap(helper.ErrNotFound, "guru tidak ditemukan")
	}
	return *id, nil
}

func checkScope(tx *gorm.DB, schoolID, classID, termID uuid.UUID) error {
	if err := EnsureClass(tx, schoolID, classID); err != nil {
		return err
	}
	return ensureTerm(tx, schoolID, termID)
}

func CreateGrade(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, req dto.CreateGradeRequest, tokenTeacher *uuid.UUID) (model.StudentGradeModel, error) {
	var m model.StudentGradeModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkScope(tx, schoolID, req.ClassID, req.TermID); err != nil {
			return err
		}
		teacherID, err := resolveTeacher(tx, schoolID, req.ClassID, req.SubjectID, req.TeacherID, tokenTeacher)
		if err != nil {
			return err
		}
		ok, err := enrolled(tx, req.ClassID, []uuid.UUID{req.StudentID})
		if err != nil {
			return err
		}
		if !ok[req.StudentID] {
			return errors.Wrap(helper.ErrBadRequest, "siswa tidak terdaftar di kelas ini")
		}
		if m, err = req.ToModel(schoolID, teacherID); err != nil {
			return errors.Wrap(helper.ErrBadRequest, "grade_date tidak valid")
		}
		return tx.Create(&m).Error
	})
	return m, err
}

// BulkCreate: satu nilai draft per siswa, semua siswa wajib terdaftar di kelas
func BulkCreate(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, req dto.BulkGradesRequest, tokenTeacher *uuid.UUID) ([]model.StudentGradeModel, error) {
	rows := make([]model.StudentGradeModel, 0, len(req.Grades))
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkScope(tx, schoolID, req.ClassID, req.TermID); err != nil {
			return err
		}
		teacherID, err := resolveTeacher(tx, schoolID, req.ClassID, req.SubjectID, req.TeacherID, tokenTeacher)
		if err != nil {
			return err
		}

		ids := make([]uuid.UUID, 0, len(req.Grades))
		seen := map[uuid.UUID]bool{}
		for _, g := range req.Grades {
			if seen[g.StudentID] {
				return errors.Wrapf(helper.ErrBadRequest, "siswa %s muncul lebih dari sekali", g.StudentID)
			}
			seen[g.StudentID] = true
			ids = append(ids, g.StudentID)
		}
		ok, err := enrolled(tx, req.ClassID, ids)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if !ok[id] {
				return errors.Wrapf(helper.ErrBadRequest, "siswa %s tidak terdaftar di kelas ini", id)
			}
		}

		for _, g := range req.Grades {
			m, err := req.Entry(g).ToModel(schoolID, teacherID)
			if err != nil {
				return errors.Wrap(helper.ErrBadRequest, "grade_date tidak valid")
			}
			rows = append(rows, m)
		}
		return tx.CreateInBatches(&rows, 100).Error
	})
	return rows, err
}

// UpdateGrade: hanya draft/rejected. Nilai yang ditolak kembali ke draft + audit "edited".
func UpdateGrade(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID, req dto.UpdateGradeRequest, actor *uuid.UUID) (model.StudentGradeModel, error) {
	var m model.StudentGradeModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("student_grade_id = ? AND student_grade_school_id = ?", id, schoolID).
			First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.Wrap(helper.ErrNotFound, "nilai tidak ditemukan")
			}
			return err
		}
		if m.StudentGradeStatus != model.GradeStatusDraft && m.StudentGradeStatus != model.GradeStatusRejected {
			return errors.Wrap(helper.ErrInvalidState, "hanya nilai draft/ditolak yang bisa diubah")
		}
		upd, err := req.Updates()
		if err != nil {
			return errors.Wrap(helper.ErrBadRequest, "grade_date tidak valid")
		}
		wasRejected := m.StudentGradeStatus == model.GradeStatusRejected
		if wasRejected {
			upd["student_grade_status"] = model.GradeStatusDraft
			upd["student_grade_rejection_reason"] = nil
		}
		if len(upd) == 0 {
			return nil
		}
		prev := m.StudentGradeValue
		if err := tx.Model(&m).Updates(upd).Error; err != nil {
			return err
		}
		if wasRejected {
			newVal := m.StudentGradeValue
			return tx.Create(&model.GradeValidationModel{
				GradeValidationSchoolID:      schoolID,
				GradeValidationGradeID:       m.StudentGradeID,
				GradeValidationAction:        model.ValidationEdited,
				GradeValidationPreviousValue: &prev,
				GradeValidationNewValue:      &newVal,
				GradeValidationBy:            actor,
			}).Error
		}
		return nil
	})
	return m, err
}

// UpdateStatus: transisi massal. Nilai di luar sekolah / transisi tidak sah dilewati.
func UpdateStatus(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, req dto.StatusUpdateRequest, actor *uuid.UUID) (dto.StatusUpdateResult, error) {
	res := dto.StatusUpdateResult{Updated: []uuid.UUID{}, Skipped: []uuid.UUID{}}
	var reason *string
	if req.Reason != nil {
		if r := strings.TrimSpace(*req.Reason); r != "" {
			reason = &r
		}
	}
	if req.Status == model.GradeStatusRejected && reason == nil {
		return res, errors.Wrap(helper.ErrBadRequest, "alasan penolakan wajib diisi")
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var grades []model.StudentGradeModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("student_grade_school_id = ? AND student_grade_id IN ?", schoolID, req.GradeIDs).
			Find(&grades).Error; err != nil {
			return err
		}
		found := map[uuid.UUID]bool{}
		now := time.Now()
		for i := range grades {
			g := &grades[i]
			found[g.StudentGradeID] = true
			if !CanTransition(g.StudentGradeStatus, req.Status) {
				res.Skipped = append(res.Skipped, g.StudentGradeID)
				continue
			}
			upd := map[string]any{"student_grade_status": req.Status}
			switch req.Status {
			case model.GradeStatusSubmitted:
				upd["student_grade_submitted_at"] = now
				upd["student_grade_rejection_reason"] = nil
			case model.GradeStatusValidated:
				upd["student_grade_validated_at"] = now
				upd["student_grade_validated_by"] = actor
			case model.GradeStatusRejected:
				upd["student_grade_rejection_reason"] = *reason
			}
			if err := tx.Model(g).Updates(upd).Error; err != nil {
				return err
			}
			v := g.StudentGradeValue
			if err := tx.Create(&model.GradeValidationModel{
				GradeValidationSchoolID: schoolID,
				GradeValidationGradeID:  g.StudentGradeID,
				GradeValidationAction:   req.Status,
				GradeValidationNewValue: &v,
				GradeValidationComment:  reason,
				GradeValidationBy:       actor,
			}).Error; err != nil {
				return err
			}
			res.Updated = append(res.Updated, g.StudentGradeID)
		}
		for _, id := range req.GradeIDs {
			if !found[id] {
				res.Skipped = append(res.Skipped, id)
			}
		}
		return nil
	})
	return res, err
}

// SubmitAll: kirim semua draft satu kelas+mapel+periode
func SubmitAll(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, scope dto.ScopeRequest, actor *uuid.UUID) (dto.StatusUpdateResult, error) {
	var ids []uuid.UUID
	if err := db.WithContext(ctx).Model(&model.StudentGradeModel{}).
		Where(`student_grade_school_id = ? AND student_grade_class_id = ? AND student_grade_subject_id = ?
			AND student_grade_term_id = ? AND student_grade_status = ?`,
			schoolID, scope.ClassID, scope.SubjectID, scope.TermID, model.GradeStatusDraft).
		Pluck("student_grade_id", &ids).Error; err != nil {
		return dto.StatusUpdateResult{}, err
	}
	if len(ids) == 0 {
		return dto.StatusUpdateResult{Updated: []uuid.UUID{}, Skipped: []uuid.UUID{}}, nil
	}
	return UpdateStatus(ctx, db, schoolID, dto.StatusUpdateRequest{GradeIDs: ids, Status: model.GradeStatusSubmitted}, actor)
}

// DeleteDrafts: hanya baris draft yang terhapus
func DeleteDrafts(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, ids []uuid.UUID) (int64, error) {
	res := db.WithContext(ctx).
		Where("student_grade_school_id = ? AND student_grade_status = ? AND student_grade_id IN ?",
			schoolID, model.GradeStatusDraft, ids).
		Delete(&model.StudentGradeModel{})
	return res.RowsAffected, res.Error
}

func PendingValidations(ctx context.Context, db *gorm.DB, schoolID uuid.UUID) ([]dto.PendingValidation, error) {
	rows := []dto.PendingValidation{}
	err := db.WithContext(ctx).Table("student_grades g").
		Select(`g.student_grade_class_id AS class_id, c.class_name,
			g.student_grade_subject_id AS subject_id, s.subject_name,
			g.student_grade_term_id AS term_id, t.term_name,
			g.student_grade_teacher_id AS teacher_id, COALESCE(u.full_name, '') AS teacher_name,
			COUNT(*) AS pending_count, MIN(g.student_grade_submitted_at) AS oldest_submitted`).
		Joins("JOIN classes c ON c.class_id = g.student_grade_class_id").
		Joins("JOIN subjects s ON s.subject_id = g.student_grade_subject_id").
		Joins("JOIN terms t ON t.term_id = g.student_grade_term_id").
		Joins("LEFT JOIN teachers tc ON tc.teacher_id = g.student_grade_teacher_id").
		Joins("LEFT JOIN users u ON u.id = tc.teacher_user_id").
		Where("g.student_grade_school_id = ? AND g.student_grade_status = ? AND g.student_grade_deleted_at IS NULL",
			schoolID, model.GradeStatusSubmitted).
		Group("g.student_grade_class_id, c.class_name, g.student_grade_subject_id, s.subject_name, g.student_grade_term_id, t.term_name, g.student_grade_teacher_id, u.full_name").
		Order("oldest_submitted ASC").
		Scan(&rows).Error
	return rows, err
}

// ClassStats: statistik atas nilai tervalidasi
func ClassStats(ctx context.Context, db *gorm.DB, schoolID, classID uuid.UUID, subjectID, termID *uuid.UUID) (dto.GradeStats, error) {
	if err := EnsureClass(db.WithContext(ctx), schoolID, classID); err != nil {
		return dto.GradeStats{}, err
	}
	q := db.WithContext(ctx).Model(&model.StudentGradeModel{}).
		Where("student_grade_school_id = ? AND student_grade_class_id = ? AND student_grade_status = ?",
			schoolID, classID, model.GradeStatusValidated)
	if subjectID != nil {
		q = q.Where("student_grade_subject_id = ?", *subjectID)
	}
	if termID != nil {
		q = q.Where("student_grade_term_id = ?", *termID)
	}
	var vals []float64
	if err := q.Pluck("student_grade_value", &vals).Error; err != nil {
		return dto.GradeStats{}, err
	}
	return Stats(vals), nil
}

func History(ctx context.Context, db *gorm.DB, schoolID, gradeID uuid.UUID) ([]dto.HistoryItem, error) {
	if _, err := LoadGrade(ctx, db, schoolID, gradeID); err != nil {
		return nil, err
	}
	rows := []dto.HistoryItem{}
	err := db.WithContext(ctx).Table("grade_validations v").
		Select("v.*, u.full_name AS by_name").
		Joins("LEFT JOIN users u ON u.id = v.grade_validation_by").
		Where("v.grade_validation_grade_id = ? AND v.grade_validation_school_id = ?", gradeID, schoolID).
		Order("v.grade_validation_created_at ASC").
		Scan(&rows).Error
	return rows, err
}
