package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"schoolhub_backend/internals/features/school/curriculum/model"
	"schoolhub_backend/internals/helpers/dbtime"
)

/* ===================== chapters ===================== */

type ChapterRequest struct {
	SubjectID     uuid.UUID `json:"subject_id" validate:"required"`
	GradeID       uuid.UUID `json:"grade_id" validate:"required"`
	SchoolYearID  uuid.UUID `json:"school_year_id" validate:"required"`
	Order         int       `json:"order" validate:"required,min=1,max=500"`
	Title         string    `json:"title" validate:"required,min=2,max=200"`
	Description   *string   `json:"description" validate:"omitempty,max=2000"`
	DurationHours *int      `json:"duration_hours" validate:"omitempty,min=0,max=500"`
}

func (r ChapterRequest) ToModel(schoolID uuid.UUID) model.ProgramChapterModel {
	return model.ProgramChapterModel{
		ProgramChapterSchoolID:      schoolID,
		ProgramChapterSubjectID:     r.SubjectID,
		ProgramChapterGradeID:       r.GradeID,
		ProgramChapterSchoolYearID:  r.SchoolYearID,
		ProgramChapterOrder:         r.Order,
		ProgramChapterTitle:         strings.TrimSpace(r.Title),
		ProgramChapterDescription:   r.Description,
		ProgramChapterDurationHours: r.DurationHours,
	}
}

type ChapterUpdateRequest struct {
	Order         *int    `json:"order" validate:"omitempty,min=1,max=500"`
	Title         *string `json:"title" validate:"omitempty,min=2,max=200"`
	Description   *string `json:"description" validate:"omitempty,max=2000"`
	DurationHours *int    `json:"duration_hours" validate:"omitempty,min=0,max=500"`
}

func (r ChapterUpdateRequest) Updates() map[string]any {
	u := map[string]any{}
	if r.Order != nil {
		u["program_chapter_order"] = *r.Order
	}
	if r.Title != nil {
		u["program_chapter_title"] = strings.TrimSpace(*r.Title)
	}
	if r.Description != nil {
		u["program_chapter_description"] = *r.Description
	}
	if r.DurationHours != nil {
		u["program_chapter_duration_hours"] = *r.DurationHours
	}
	return u
}

// ChapterWithStatus: bab + status selesai untuk satu kelas
type ChapterWithStatus struct {
	model.ProgramChapterModel
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type CompleteChapterRequest struct {
	ClassID        uuid.UUID  `json:"class_id" validate:"required"`
	ChapterID      uuid.UUID  `json:"chapter_id" validate:"required"`
	ClassSessionID *uuid.UUID `json:"class_session_id"`
	Notes          *string    `json:"notes" validate:"omitempty,max=1000"`
}

/* ===================== class sessions ===================== */

type ClassSessionRequest struct {
	ClassID    uuid.UUID  `json:"class_id" validate:"required"`
	SubjectID  uuid.UUID  `json:"subject_id" validate:"required"`
	TeacherID  uuid.UUID  `json:"teacher_id" validate:"required"`
	ChapterID  *uuid.UUID `json:"chapter_id"`
	Date       string     `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime  string     `json:"start_time" validate:"required,hhmm"`
	EndTime    string     `json:"end_time" validate:"required,hhmm"`
	Objectives *string    `json:"objectives" validate:"omitempty,max=2000"`
	Homework   *string    `json:"homework" validate:"omitempty,max=2000"`
	Notes      *string    `json:"notes" validate:"omitempty,max=2000"`
}

func (r ClassSessionRequest) ToModel(schoolID uuid.UUID) (model.ClassSessionModel, bool) {
	d, err := dbtime.ParseDate(r.Date)
	if err != nil {
		return model.ClassSessionModel{}, false
	}
	start, err1 := dbtime.ParseClock(r.StartTime)
	end, err2 := dbtime.ParseClock(r.EndTime)
	if err1 != nil || err2 != nil || !start.Before(end) {
		return model.ClassSessionModel{}, false
	}
	return model.ClassSessionModel{
		ClassSessionSchoolID:   schoolID,
		ClassSessionClassID:    r.ClassID,
		ClassSessionSubjectID:  r.SubjectID,
		ClassSessionTeacherID:  r.TeacherID,
		ClassSessionChapterID:  r.ChapterID,
		ClassSessionDate:       d,
		ClassSessionStartTime:  start,
		ClassSessionEndTime:    end,
		ClassSessionStatus:     model.SessionScheduled,
		ClassSessionObjectives: r.Objectives,
		ClassSessionHomework:   r.Homework,
		ClassSessionNotes:      r.Notes,
	}, true
}

type ClassSessionUpdateRequest struct {
	ChapterID  *uuid.UUID `json:"chapter_id"`
	Date       *string    `json:"date" validate:"omitempty,datetime=2006-01-02"`
	StartTime  *string    `json:"start_time" validate:"omitempty,hhmm"`
	EndTime    *string    `json:"end_time" validate:"omitempty,hhmm"`
	Status     *string    `json:"status" validate:"omitempty,oneof=scheduled cancelled rescheduled"`
	Objectives *string    `json:"objectives" validate:"omitempty,max=2000"`
	Homework   *string    `json:"homework" validate:"omitempty,max=2000"`
	Notes      *string    `json:"notes" validate:"omitempty,max=2000"`
}

type CompleteSessionRequest struct {
	CompleteChapter bool    `json:"complete_chapter"`
	Objectives      *string `json:"objectives" validate:"omitempty,max=2000"`
	Homework        *string `json:"homework" validate:"omitempty,max=2000"`
	Notes           *string `json:"notes" validate:"omitempty,max=2000"`
}

type ClassSessionItem struct {
	model.ClassSessionModel
	SubjectName  string  `json:"subject_name"`
	TeacherName  string  `json:"teacher_name"`
	ChapterTitle *string `json:"chapter_title,omitempty"`
}

/* ===================== progress ===================== */

type RecalculateRequest struct {
	ClassID uuid.UUID `json:"class_id" validate:"required"`
	TermID  uuid.UUID `json:"term_id" validate:"required"`
}

type ProgressItem struct {
	model.CurriculumProgressModel
	ClassName   string `json:"class_name"`
	SubjectName string `json:"subject_name"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type SubjectProgress struct {
	SubjectID       uuid.UUID `json:"subject_id"`
	SubjectName     string    `json:"subject_name"`
	ClassCount      int64     `json:"class_count"`
	AverageProgress float64   `json:"average_progress"`
	AverageVariance float64   `json:"average_variance"`
}

type TeacherSummary struct {
	TeacherID         uuid.UUID `json:"teacher_id"`
	TeacherName       string    `json:"teacher_name"`
	ClassSubjectCount int64     `json:"class_subject_count"`
	AverageProgress   float64   `json:"average_progress"`
	BehindCount       int64     `json:"behind_count"`
	CompletedSessions int64     `json:"completed_sessions"`
}
