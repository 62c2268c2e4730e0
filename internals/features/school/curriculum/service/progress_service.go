package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolhub_backend/internals/features/school/curriculum/dto"
	"schoolhub_backend/internals/features/school/curriculum/model"
	helper "schoolhub_backend/internals/helpers"
)

type subjectCount struct {
	SubjectID uuid.UUID
	Total     int
	LastAt    *time.Time
}

// Recalculate: hitung ulang progres semua mapel kelas untuk satu periode (upsert)
func Recalculate(ctx context.Context, db *gorm.DB, schoolID, classID, termID uuid.UUID, now time.Time) ([]model.CurriculumProgressModel, error) {
	var out []model.CurriculumProgressModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ci, err := loadClass(tx, schoolID, classID)
		if err != nil {
			return err
		}
		term, err := loadTerm(tx, schoolID, termID)
		if err != nil {
			return err
		}
		if term.TermSchoolYearID != ci.ClassSchoolYearID {
			return errors.Wrap(helper.ErrBadRequest, "periode bukan milik tahun ajaran kelas")
		}

		var subjects []uuid.UUID
		if err := tx.Table("class_subjects").Where("class_subject_class_id = ?", classID).
			Pluck("class_subject_subject_id", &subjects).Error; err != nil {
			return err
		}
		if len(subjects) == 0 {
			out = []model.CurriculumProgressModel{}
			return nil
		}

		var totals []subjectCount
		if err := tx.Table("program_chapters").
			Select("program_chapter_subject_id AS subject_id, COUNT(*) AS total").
			Where("program_chapter_school_id = ? AND program_chapter_grade_id = ? AND program_chapter_school_year_id = ? AND program_chapter_deleted_at IS NULL",
				schoolID, ci.ClassGradeID, ci.ClassSchoolYearID).
			Where("program_chapter_subject_id IN ?", subjects).
			Group("program_chapter_subject_id").Scan(&totals).Error; err != nil {
			return err
		}
		var done []subjectCount
		if err := tx.Table("chapter_completions cc").
			Select("pc.program_chapter_subject_id AS subject_id, COUNT(*) AS total, MAX(cc.chapter_completion_completed_at) AS last_at").
			Joins("JOIN program_chapters pc ON pc.program_chapter_id = cc.chapter_completion_chapter_id AND pc.program_chapter_deleted_at IS NULL").
			Where("cc.chapter_completion_class_id = ?", classID).
			Group("pc.program_chapter_subject_id").Scan(&done).Error; err != nil {
			return err
		}
		totalBy := map[uuid.UUID]int{}
		for _, t := range totals {
			totalBy[t.SubjectID] = t.Total
		}
		doneBy := map[uuid.UUID]subjectCount{}
		for _, d := range done {
			doneBy[d.SubjectID] = d
		}

		rows := make([]model.CurriculumProgressModel, 0, len(subjects))
		for _, sid := range subjects {
			d := doneBy[sid]
			p := CalculateProgress(totalBy[sid], d.Total, term.TermStartDate, term.TermEndDate, now)
			completed := d.Total
			if completed > totalBy[sid] {
				completed = totalBy[sid]
			}
			rows = append(rows, model.CurriculumProgressModel{
				CurriculumProgressSchoolID:           schoolID,
				CurriculumProgressClassID:            classID,
				CurriculumProgressSubjectID:          sid,
				CurriculumProgressTermID:             termID,
				CurriculumProgressTotalChapters:      totalBy[sid],
				CurriculumProgressCompletedChapters:  completed,
				CurriculumProgressPercentage:         p.Percentage,
				CurriculumProgressExpectedPercentage: p.Expected,
				CurriculumProgressVariance:           p.Variance,
				CurriculumProgressStatus:             p.Status,
				CurriculumProgressLastChapterAt:      d.LastAt,
				CurriculumProgressCalculatedAt:       now,
			})
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "curriculum_progress_class_id"}, {Name: "curriculum_progress_subject_id"}, {Name: "curriculum_progress_term_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"curriculum_progress_total_chapters", "curriculum_progress_completed_chapters",
				"curriculum_progress_percentage", "curriculum_progress_expected_percentage",
				"curriculum_progress_variance", "curriculum_progress_status",
				"curriculum_progress_last_chapter_completed_at", "curriculum_progress_calculated_at",
			}),
		}).Create(&rows).Error; err != nil {
			return err
		}
		out = rows
		return nil
	})
	return out, err
}

// RecalculateTerm: semua kelas aktif di tahun ajaran periode
func RecalculateTerm(ctx context.Context, db *gorm.DB, schoolID, termID uuid.UUID, now time.Time) (int, error) {
	term, err := loadTerm(db.WithContext(ctx), schoolID, termID)
	if err != nil {
		return 0, err
	}
	var classIDs []uuid.UUID
	if err := db.WithContext(ctx).Table("classes").
		Where("class_school_id = ? AND class_school_year_id = ? AND class_deleted_at IS NULL", schoolID, term.TermSchoolYearID).
		Pluck("class_id", &classIDs).Error; err != nil {
		return 0, err
	}
	n := 0
	for _, cid := range classIDs {
		rows, err := Recalculate(ctx, db, schoolID, cid, termID, now)
		if err != nil {
			return n, errors.Wrapf(err, "kelas %s", cid)
		}
		n += len(rows)
	}
	return n, nil
}

func progressQuery(ctx context.Context, db *gorm.DB, schoolID, termID uuid.UUID) *gorm.DB {
	return db.WithContext(ctx).Table("curriculum_progress cp").
		Joins("JOIN classes c ON c.class_id = cp.curriculum_progress_class_id").
		Joins("JOIN subjects sj ON sj.subject_id = cp.curriculum_progress_subject_id").
		Where("cp.curriculum_progress_school_id = ? AND cp.curriculum_progress_term_id = ?", schoolID, termID)
}

func Overview(ctx context.Context, db *gorm.DB, schoolID, termID uuid.UUID, classID *uuid.UUID, status string) ([]dto.ProgressItem, error) {
	q := progressQuery(ctx, db, schoolID, termID).Select("cp.*, c.class_name, sj.subject_name")
	if classID != nil {
		q = q.Where("cp.curriculum_progress_class_id = ?", *classID)
	}
	if status != "" {
		q = q.Where("cp.curriculum_progress_status = ?", status)
	}
	rows := []dto.ProgressItem{}
	err := q.Order("c.class_name, sj.subject_name").Scan(&rows).Error
	return rows, err
}

// BehindSchedule: variance <= threshold, paling tertinggal dulu
func BehindSchedule(ctx context.Context, db *gorm.DB, schoolID, termID uuid.UUID, threshold float64) ([]dto.ProgressItem, error) {
	rows := []dto.ProgressItem{}
	err := progressQuery(ctx, db, schoolID, termID).
		Select("cp.*, c.class_name, sj.subject_name").
		Where("cp.curriculum_progress_variance <= ?", threshold).
		Order("cp.curriculum_progress_variance ASC").
		Scan(&rows).Error
	return rows, err
}

func StatsByStatus(ctx context.Context, db *gorm.DB, schoolID, termID uuid.UUID) ([]dto.StatusCount, error) {
	var rows []dto.StatusCount
	if err := db.WithContext(ctx).Table("curriculum_progress").
		Select("curriculum_progress_status AS status, COUNT(*) AS count").
		Where("curriculum_progress_school_id = ? AND curriculum_progress_term_id = ?", schoolID, termID).
		Group("curriculum_progress_status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	// semua status selalu muncul, urutan tetap
	got := map[string]int64{}
	for _, r := range rows {
		got[r.Status] = r.Count
	}
	out := make([]dto.StatusCount, 0, 4)
	for _, s := range []string{model.ProgressAhead, model.ProgressOnTrack, model.ProgressSlightlyBehind, model.ProgressSignificantlyBehind} {
		out = append(out, dto.StatusCount{Status: s, Count: got[s]})
	}
	return out, nil
}

func ProgressBySubject(ctx context.Context, db *gorm.DB, schoolID, termID uuid.UUID) ([]dto.SubjectProgress, error) {
	rows := []dto.SubjectProgress{}
	err := progressQuery(ctx, db, schoolID, termID).
		Select(`cp.curriculum_progress_subject_id AS subject_id, sj.subject_name,
			COUNT(*) AS class_count,
			ROUND(AVG(cp.curriculum_progress_percentage)::numeric, 2) AS average_progress,
			ROUND(AVG(cp.curriculum_progress_variance)::numeric, 2) AS average_variance`).
		Group("cp.curriculum_progress_subject_id, sj.subject_name").
		Order("average_progress ASC").
		Scan(&rows).Error
	return rows, err
}

// TeacherSummary: progres per guru pengampu (class_subjects) + sesi selesai dalam periode
func TeacherSummary(ctx context.Context, db *gorm.DB, schoolID, termID uuid.UUID) ([]dto.TeacherSummary, error) {
	term, err := loadTerm(db.WithContext(ctx), schoolID, termID)
	if err != nil {
		return nil, err
	}
	rows := []dto.TeacherSummary{}
	err = db.WithContext(ctx).Raw(`
		SELECT cs.class_subject_teacher_id AS teacher_id,
		       COALESCE(u.full_name, '') AS teacher_name,
		       COUNT(*) AS class_subject_count,
		       ROUND(COALESCE(AVG(cp.curriculum_progress_percentage), 0)::numeric, 2) AS average_progress,
		       COUNT(*) FILTER (WHERE cp.curriculum_progress_status IN ('slightly_behind','significantly_behind')) AS behind_count,
		       (SELECT COUNT(*) FROM class_sessions s
		         WHERE s.class_session_teacher_id = cs.class_subject_teacher_id
		           AND s.class_session_status = 'completed'
		           AND s.class_session_date BETWEEN ? AND ?) AS completed_sessions
		FROM class_subjects cs
		JOIN classes c ON c.class_id = cs.class_subject_class_id AND c.class_deleted_at IS NULL
		LEFT JOIN curriculum_progress cp
		       ON cp.curriculum_progress_class_id = cs.class_subject_class_id
		      AND cp.curriculum_progress_subject_id = cs.class_subject_subject_id
		      AND cp.curriculum_progress_term_id = ?
		LEFT JOIN teachers t ON t.teacher_id = cs.class_subject_teacher_id
		LEFT JOIN users u ON u.id = t.teacher_user_id
		WHERE c.class_school_id = ? AND c.class_school_year_id = ? AND cs.class_subject_teacher_id IS NOT NULL
		GROUP BY cs.class_subject_teacher_id, u.full_name
		ORDER BY average_progress ASC
	`, term.TermStartDate, term.TermEndDate, termID, schoolID, term.TermSchoolYearID).Scan(&rows).Error
	return rows, err
}
