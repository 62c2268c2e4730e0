package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/school/grades/report_cards/dto"
	"schoolhub_backend/internals/features/school/grades/report_cards/model"
	gradeService "schoolhub_backend/internals/features/school/grades/student_grades/service"
	helper "schoolhub_backend/internals/helpers"
)

// ReportData: isi rapor (rata-rata per mapel, umum, peringkat, komentar guru)
func ReportData(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID) (dto.ReportData, error) {
	var out dto.ReportData
	card, err := LoadReportCard(ctx, db, schoolID, id)
	if err != nil {
		return out, err
	}
	out.ReportCard = card
	tx := db.WithContext(ctx)

	var head struct {
		StudentFirstName string
		StudentLastName  string
		StudentMatricule string
		ClassName        string
		TermName         string
	}
	if err := tx.Table("students s").
		Select("s.student_first_name, s.student_last_name, s.student_matricule, c.class_name, t.term_name").
		Joins("JOIN classes c ON c.class_id = ?", card.ReportCardClassID).
		Joins("JOIN terms t ON t.term_id = ?", card.ReportCardTermID).
		Where("s.student_id = ?", card.ReportCardStudentID).
		Take(&head).Error; err != nil {
		return out, err
	}
	out.StudentName = head.StudentFirstName + " " + head.StudentLastName
	out.StudentMatricule = head.StudentMatricule
	out.ClassName = head.ClassName
	out.TermName = head.TermName

	out.Subjects = []dto.SubjectLine{}
	if err := tx.Table("class_subjects cs").
		Select(`cs.class_subject_subject_id AS subject_id, sj.subject_name, cs.class_subject_coefficient AS coefficient,
			a.student_average_value AS average, a.student_average_rank_in_class AS rank,
			COALESCE(a.student_average_grade_count, 0) AS grade_count,
			tc.teacher_comment_text AS teacher_comment, u.full_name AS teacher_name`).
		Joins("JOIN subjects sj ON sj.subject_id = cs.class_subject_subject_id").
		Joins(`LEFT JOIN student_averages a ON a.student_average_subject_id = cs.class_subject_subject_id
			AND a.student_average_student_id = ? AND a.student_average_term_id = ?`, card.ReportCardStudentID, card.ReportCardTermID).
		Joins(`LEFT JOIN teacher_comments tc ON tc.teacher_comment_report_card_id = ?
			AND tc.teacher_comment_subject_id = cs.class_subject_subject_id`, card.ReportCardID).
		Joins("LEFT JOIN teachers te ON te.teacher_id = COALESCE(tc.teacher_comment_teacher_id, cs.class_subject_teacher_id)").
		Joins("LEFT JOIN users u ON u.id = te.teacher_user_id").
		Where("cs.class_subject_class_id = ?", card.ReportCardClassID).
		Order("sj.subject_name ASC").
		Scan(&out.Subjects).Error; err != nil {
		return out, err
	}

	var overall struct {
		Value *float64
		Rank  *int
	}
	if err := tx.Table("student_averages").
		Select("student_average_value AS value, student_average_rank_in_class AS rank").
		Where("student_average_student_id = ? AND student_average_term_id = ? AND student_average_subject_id IS NULL",
			card.ReportCardStudentID, card.ReportCardTermID).
		Scan(&overall).Error; err != nil {
		return out, err
	}
	out.OverallAverage, out.Rank = overall.Value, overall.Rank
	if overall.Value != nil {
		out.Band = gradeService.ColorBand(*overall.Value)
	}
	if err := tx.Table("enrollments").
		Where("enrollment_class_id = ? AND enrollment_status = 'confirmed'", card.ReportCardClassID).
		Count(&out.ClassSize).Error; err != nil {
		return out, err
	}

	out.Config = dto.DefaultTemplateConfig()
	if card.ReportCardTemplateID != nil {
		var tpl model.ReportCardTemplateModel
		if err := tx.Where("report_card_template_id = ?", *card.ReportCardTemplateID).First(&tpl).Error; err == nil {
			out.Config = dto.MergeConfig(out.Config, tpl.ReportCardTemplateConfig)
		}
	}
	return out, nil
}

// DeliveryStatus: jumlah rapor per status untuk satu periode (opsional per kelas)
func DeliveryStatus(ctx context.Context, db *gorm.DB, schoolID, termID uuid.UUID, classID *uuid.UUID) ([]dto.StatusCount, error) {
	rows := []dto.StatusCount{}
	q := db.WithContext(ctx).Model(&model.ReportCardModel{}).
		Select("report_card_status AS status, COUNT(*) AS count").
		Where("report_card_school_id = ? AND report_card_term_id = ?", schoolID, termID)
	if classID != nil {
		q = q.Where("report_card_class_id = ?", *classID)
	}
	err := q.Group("report_card_status").Order("report_card_status").Scan(&rows).Error
	return rows, err
}

// ClassStats: progres rapor + sebaran rata-rata umum kelas
func ClassStats(ctx context.Context, db *gorm.DB, schoolID, classID, termID uuid.UUID) (dto.ClassReportStats, error) {
	var st dto.ClassReportStats
	tx := db.WithContext(ctx)
	if err := gradeService.EnsureClass(tx, schoolID, classID); err != nil {
		return st, err
	}
	if err := tx.Table("enrollments").
		Where("enrollment_class_id = ? AND enrollment_status = 'confirmed'", classID).
		Count(&st.Students).Error; err != nil {
		return st, err
	}
	var counts []dto.StatusCount
	if err := tx.Model(&model.ReportCardModel{}).
		Select("report_card_status AS status, COUNT(*) AS count").
		Where("report_card_class_id = ? AND report_card_term_id = ?", classID, termID).
		Group("report_card_status").Scan(&counts).Error; err != nil {
		return st, err
	}
	for _, c := range counts {
		switch c.Status {
		case model.ReportCardGenerated:
			st.Generated += c.Count
		case model.ReportCardSent, model.ReportCardDelivered:
			st.Generated += c.Count
			st.Sent += c.Count
		case model.ReportCardViewed:
			st.Generated += c.Count
			st.Sent += c.Count
			st.Viewed += c.Count
		}
	}

	var vals []float64
	if err := tx.Table("student_averages").
		Where("student_average_class_id = ? AND student_average_term_id = ? AND student_average_subject_id IS NULL", classID, termID).
		Pluck("student_average_value", &vals).Error; err != nil {
		return st, err
	}
	gs := gradeService.Stats(vals)
	st.ClassAverage, st.Highest, st.Lowest = gs.Average, gs.Max, gs.Min
	st.PassRate = helper.Percent(float64(len(vals)-gs.BelowTen), float64(len(vals)))
	return st, nil
}
