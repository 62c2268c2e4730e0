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
	"schoolhub_backend/internals/helpers/dbtime"
)

type classInfo struct {
	ClassGradeID      uuid.UUID
	ClassSchoolYearID uuid.UUID
}

func loadClass(tx *gorm.DB, schoolID, classID uuid.UUID) (classInfo, error) {
	var ci classInfo
	err := tx.Table("classes").Select("class_grade_id, class_school_year_id").
		Where("class_id = ? AND class_school_id = ? AND class_deleted_at IS NULL", classID, schoolID).
		Take(&ci).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ci, errors.Wrap(helper.ErrNotFound, "kelas tidak ditemukan")
	}
	return ci, err
}

type termInfo struct {
	TermStartDate    time.Time
	TermEndDate      time.Time
	TermSchoolYearID uuid.UUID
}

func loadTerm(tx *gorm.DB, schoolID, termID uuid.UUID) (termInfo, error) {
	var t termInfo
	err := tx.Table("terms").Select("term_start_date, term_end_date, term_school_year_id").
		Where("term_id = ? AND term_school_id = ? AND term_deleted_at IS NULL", termID, schoolID).
		Take(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return t, errors.Wrap(helper.ErrNotFound, "periode tidak ditemukan")
	}
	return t, err
}

/* ===================== chapters ===================== */

func LoadChapter(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID) (model.ProgramChapterModel, error) {
	var m model.ProgramChapterModel
	err := db.WithContext(ctx).
		Where("program_chapter_id = ? AND program_chapter_school_id = ?", id, schoolID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return m, errors.Wrap(helper.ErrNotFound, "bab tidak ditemukan")
	}
	return m, err
}

// ChaptersForClass: program bab mapel untuk grade+tahun kelas, dengan status selesai
func ChaptersForClass(ctx context.Context, db *gorm.DB, schoolID, classID, subjectID uuid.UUID) ([]dto.ChapterWithStatus, error) {
	tx := db.WithContext(ctx)
	ci, err := loadClass(tx, schoolID, classID)
	if err != nil {
		return nil, err
	}
	var chapters []model.ProgramChapterModel
	if err := tx.Where("program_chapter_school_id = ? AND program_chapter_subject_id = ? AND program_chapter_grade_id = ? AND program_chapter_school_year_id = ?",
		schoolID, subjectID, ci.ClassGradeID, ci.ClassSchoolYearID).
		Order("program_chapter_order").Find(&chapters).Error; err != nil {
		return nil, err
	}
	var done []model.ChapterCompletionModel
	if err := tx.Where("chapter_completion_class_id = ?", classID).Find(&done).Error; err != nil {
		return nil, err
	}
	at := make(map[uuid.UUID]time.Time, len(done))
	for _, d := range done {
		at[d.ChapterCompletionChapterID] = d.ChapterCompletionCompletedAt
	}
	out := make([]dto.ChapterWithStatus, 0, len(chapters))
	for _, ch := range chapters {
		row := dto.ChapterWithStatus{ProgramChapterModel: ch}
		if t, ok := at[ch.ProgramChapterID]; ok {
			t := t
			row.Completed = true
			row.CompletedAt = &t
		}
		out = append(out, row)
	}
	return out, nil
}

func CreateChapter(ctx context.Context, db *gorm.DB, m model.ProgramChapterModel) (model.ProgramChapterModel, error) {
	err := db.WithContext(ctx).Create(&m).Error
	return m, err
}

func UpdateChapter(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID, updates map[string]any) (model.ProgramChapterModel, error) {
	m, err := LoadChapter(ctx, db, schoolID, id)
	if err != nil {
		return m, err
	}
	if len(updates) == 0 {
		return m, nil
	}
	if err := db.WithContext(ctx).Model(&m).Updates(updates).Error; err != nil {
		return m, err
	}
	return LoadChapter(ctx, db, schoolID, id)
}

// DeleteChapter: bab yang sudah ditandai selesai di kelas mana pun tidak boleh dihapus
func DeleteChapter(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := LoadChapter(ctx, tx, schoolID, id)
		if err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&model.ChapterCompletionModel{}).
			Where("chapter_completion_chapter_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return errors.Wrap(helper.ErrConflict, "bab sudah diselesaikan di kelas, tidak bisa dihapus")
		}
		return tx.Delete(&m).Error
	})
}

/* ===================== chapter completion ===================== */

func completeChapter(tx *gorm.DB, schoolID uuid.UUID, req dto.CompleteChapterRequest, teacherID *uuid.UUID, at time.Time) (model.ChapterCompletionModel, error) {
	ci, err := loadClass(tx, schoolID, req.ClassID)
	if err != nil {
		return model.ChapterCompletionModel{}, err
	}
	var ch model.ProgramChapterModel
	err = tx.Where("program_chapter_id = ? AND program_chapter_school_id = ?", req.ChapterID, schoolID).First(&ch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ChapterCompletionModel{}, errors.Wrap(helper.ErrNotFound, "bab tidak ditemukan")
	}
	if err != nil {
		return model.ChapterCompletionModel{}, err
	}
	if ch.ProgramChapterGradeID != ci.ClassGradeID || ch.ProgramChapterSchoolYearID != ci.ClassSchoolYearID {
		return model.ChapterCompletionModel{}, errors.Wrap(helper.ErrBadRequest, "bab bukan bagian program kelas ini")
	}

	row := model.ChapterCompletionModel{
		ChapterCompletionSchoolID:       schoolID,
		ChapterCompletionClassID:        req.ClassID,
		ChapterCompletionChapterID:      req.ChapterID,
		ChapterCompletionClassSessionID: req.ClassSessionID,
		ChapterCompletionTeacherID:      teacherID,
		ChapterCompletionCompletedAt:    at,
		ChapterCompletionNotes:          req.Notes,
	}
	err = tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "chapter_completion_class_id"}, {Name: "chapter_completion_chapter_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"chapter_completion_class_session_id", "chapter_completion_teacher_id",
			"chapter_completion_completed_at", "chapter_completion_notes",
		}),
	}).Create(&row).Error
	return row, err
}

func CompleteChapter(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, req dto.CompleteChapterRequest, teacherID *uuid.UUID) (model.ChapterCompletionModel, error) {
	return completeChapter(db.WithContext(ctx), schoolID, req, teacherID, time.Now())
}

func UncompleteChapter(ctx context.Context, db *gorm.DB, schoolID, classID, chapterID uuid.UUID) error {
	res := db.WithContext(ctx).
		Where("chapter_completion_school_id = ? AND chapter_completion_class_id = ? AND chapter_completion_chapter_id = ?", schoolID, classID, chapterID).
		Delete(&model.ChapterCompletionModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.Wrap(helper.ErrNotFound, "bab belum ditandai selesai")
	}
	return nil
}

/* ===================== class sessions ===================== */

func LoadSession(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID) (model.ClassSessionModel, error) {
	var m model.ClassSessionModel
	err := db.WithContext(ctx).
		Where("class_session_id = ? AND class_session_school_id = ?", id, schoolID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return m, errors.Wrap(helper.ErrNotFound, "sesi kelas tidak ditemukan")
	}
	return m, err
}

func ListSessions(ctx context.Context, db *gorm.DB, schoolID, classID uuid.UUID, from, to *time.Time, status string) ([]dto.ClassSessionItem, error) {
	q := db.WithContext(ctx).Table("class_sessions cs").
		Select("cs.*, sj.subject_name, COALESCE(u.full_name, '') AS teacher_name, pc.program_chapter_title AS chapter_title").
		Joins("JOIN subjects sj ON sj.subject_id = cs.class_session_subject_id").
		Joins("LEFT JOIN teachers te ON te.teacher_id = cs.class_session_teacher_id").
		Joins("LEFT JOIN users u ON u.id = te.teacher_user_id").
		Joins("LEFT JOIN program_chapters pc ON pc.program_chapter_id = cs.class_session_chapter_id").
		Where("cs.class_session_school_id = ? AND cs.class_session_class_id = ?", schoolID, classID)
	if from != nil {
		q = q.Where("cs.class_session_date >= ?", *from)
	}
	if to != nil {
		q = q.Where("cs.class_session_date <= ?", *to)
	}
	if status != "" {
		q = q.Where("cs.class_session_status = ?", status)
	}
	rows := []dto.ClassSessionItem{}
	err := q.Order("cs.class_session_date, cs.class_session_start_time").Scan(&rows).Error
	return rows, err
}

func CreateSession(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, m model.ClassSessionModel) (model.ClassSessionModel, error) {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadClass(tx, schoolID, m.ClassSessionClassID); err != nil {
			return err
		}
		return tx.Create(&m).Error
	})
	return m, err
}

func UpdateSession(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID, req dto.ClassSessionUpdateRequest) (model.ClassSessionModel, error) {
	m, err := LoadSession(ctx, db, schoolID, id)
	if err != nil {
		return m, err
	}
	if m.ClassSessionStatus == model.SessionCompleted {
		return m, errors.Wrap(helper.ErrInvalidState, "sesi yang sudah selesai tidak bisa diubah")
	}
	u := map[string]any{}
	if req.ChapterID != nil {
		u["class_session_chapter_id"] = *req.ChapterID
	}
	if req.Date != nil {
		d, err := dbtime.ParseDate(*req.Date)
		if err != nil {
			return m, errors.Wrap(helper.ErrBadRequest, "date tidak valid")
		}
		u["class_session_date"] = d
	}
	start, end := m.ClassSessionStartTime, m.ClassSessionEndTime
	if req.StartTime != nil {
		if start, err = dbtime.ParseClock(*req.StartTime); err != nil {
			return m, errors.Wrap(helper.ErrBadRequest, "start_time tidak valid")
		}
		u["class_session_start_time"] = start
	}
	if req.EndTime != nil {
		if end, err = dbtime.ParseClock(*req.EndTime); err != nil {
			return m, errors.Wrap(helper.ErrBadRequest, "end_time tidak valid")
		}
		u["class_session_end_time"] = end
	}
	if !start.Before(end) {
		return m, errors.Wrap(helper.ErrBadRequest, "end_time harus setelah start_time")
	}
	if req.Status != nil {
		u["class_session_status"] = *req.Status
	}
	if req.Objectives != nil {
		u["class_session_objectives"] = *req.Objectives
	}
	if req.Homework != nil {
		u["class_session_homework"] = *req.Homework
	}
	if req.Notes != nil {
		u["class_session_notes"] = *req.Notes
	}
	if len(u) == 0 {
		return m, nil
	}
	if err := db.WithContext(ctx).Model(&m).Updates(u).Error; err != nil {
		return m, err
	}
	return LoadSession(ctx, db, schoolID, id)
}

func DeleteSession(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID) error {
	m, err := LoadSession(ctx, db, schoolID, id)
	if err != nil {
		return err
	}
	if m.ClassSessionStatus == model.SessionCompleted {
		return errors.Wrap(helper.ErrInvalidState, "sesi yang sudah selesai tidak bisa dihapus")
	}
	return db.WithContext(ctx).Delete(&m).Error
}

// CompleteSession: tandai sesi selesai; opsional bab sesi ikut ditandai selesai untuk kelas
func CompleteSession(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID, req dto.CompleteSessionRequest) (model.ClassSessionModel, error) {
	var out model.ClassSessionModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.ClassSessionModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("class_session_id = ? AND class_session_school_id = ?", id, schoolID).
			First(&m).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.Wrap(helper.ErrNotFound, "sesi kelas tidak ditemukan")
		}
		if err != nil {
			return err
		}
		if m.ClassSessionStatus == model.SessionCancelled {
			return errors.Wrap(helper.ErrInvalidState, "sesi dibatalkan tidak bisa diselesaikan")
		}
		now := time.Now()
		u := map[string]any{
			"class_session_status":       model.SessionCompleted,
			"class_session_completed_at": now,
		}
		if req.Objectives != nil {
			u["class_session_objectives"] = *req.Objectives
		}
		if req.Homework != nil {
			u["class_session_homework"] = *req.Homework
		}
		if req.Notes != nil {
			u["class_session_notes"] = *req.Notes
		}
		if err := tx.Model(&m).Updates(u).Error; err != nil {
			return err
		}

		if req.CompleteChapter {
			if m.ClassSessionChapterID == nil {
				return errors.Wrap(helper.ErrBadRequest, "sesi tidak terhubung ke bab")
			}
			sid := m.ClassSessionID
			teacher := m.ClassSessionTeacherID
			if _, err := completeChapter(tx, schoolID, dto.CompleteChapterRequest{
				ClassID:        m.ClassSessionClassID,
				ChapterID:      *m.ClassSessionChapterID,
				ClassSessionID: &sid,
			}, &teacher, now); err != nil {
				return err
			}
		}
		return tx.First(&out, "class_session_id = ?", id).Error
	})
	return out, err
}
