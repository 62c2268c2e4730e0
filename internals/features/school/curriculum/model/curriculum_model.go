package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/helpers/dbtime"
)

// ProgramChapterModel: bab program per mapel+grade+tahun ajaran
type ProgramChapterModel struct {
	ProgramChapterID            uuid.UUID `gorm:"column:program_chapter_id;type:uuid;default:gen_random_uuid();primaryKey" json:"program_chapter_id"`
	ProgramChapterSchoolID      uuid.UUID `gorm:"column:program_chapter_school_id;type:uuid;not null;index" json:"program_chapter_school_id"`
	ProgramChapterSubjectID     uuid.UUID `gorm:"column:program_chapter_subject_id;type:uuid;not null;index:idx_chapter_program" json:"program_chapter_subject_id"`
	ProgramChapterGradeID       uuid.UUID `gorm:"column:program_chapter_grade_id;type:uuid;not null;index:idx_chapter_program" json:"program_chapter_grade_id"`
	ProgramChapterSchoolYearID  uuid.UUID `gorm:"column:program_chapter_school_year_id;type:uuid;not null;index:idx_chapter_program" json:"program_chapter_school_year_id"`
	ProgramChapterOrder         int       `gorm:"column:program_chapter_order;not null" json:"program_chapter_order"`
	ProgramChapterTitle         string    `gorm:"column:program_chapter_title;size:200;not null" json:"program_chapter_title"`
	ProgramChapterDescription   *string   `gorm:"column:program_chapter_description" json:"program_chapter_description,omitempty"`
	ProgramChapterDurationHours *int      `gorm:"column:program_chapter_duration_hours" json:"program_chapter_duration_hours,omitempty"`

	ProgramChapterCreatedAt time.Time      `gorm:"column:program_chapter_created_at;autoCreateTime" json:"program_chapter_created_at"`
	ProgramChapterUpdatedAt time.Time      `gorm:"column:program_chapter_updated_at;autoUpdateTime" json:"program_chapter_updated_at"`
	ProgramChapterDeletedAt gorm.DeletedAt `gorm:"column:program_chapter_deleted_at;index" json:"-"`
}

func (ProgramChapterModel) TableName() string { return "program_chapters" }

type ChapterCompletionModel struct {
	ChapterCompletionID             uuid.UUID  `gorm:"column:chapter_completion_id;type:uuid;default:gen_random_uuid();primaryKey" json:"chapter_completion_id"`
	ChapterCompletionSchoolID       uuid.UUID  `gorm:"column:chapter_completion_school_id;type:uuid;not null;index" json:"chapter_completion_school_id"`
	ChapterCompletionClassID        uuid.UUID  `gorm:"column:chapter_completion_class_id;type:uuid;not null;uniqueIndex:uq_chapter_completion" json:"chapter_completion_class_id"`
	ChapterCompletionChapterID      uuid.UUID  `gorm:"column:chapter_completion_chapter_id;type:uuid;not null;uniqueIndex:uq_chapter_completion" json:"chapter_completion_chapter_id"`
	ChapterCompletionClassSessionID *uuid.UUID `gorm:"column:chapter_completion_class_session_id;type:uuid" json:"chapter_completion_class_session_id,omitempty"`
	ChapterCompletionTeacherID      *uuid.UUID `gorm:"column:chapter_completion_teacher_id;type:uuid" json:"chapter_completion_teacher_id,omitempty"`
	ChapterCompletionCompletedAt    time.Time  `gorm:"column:chapter_completion_completed_at;not null" json:"chapter_completion_completed_at"`
	ChapterCompletionNotes          *string    `gorm:"column:chapter_completion_notes" json:"chapter_completion_notes,omitempty"`
}

func (ChapterCompletionModel) TableName() string { return "chapter_completions" }

const (
	SessionScheduled   = "scheduled"
	SessionCompleted   = "completed"
	SessionCancelled   = "cancelled"
	SessionRescheduled = "rescheduled"
)

// ClassSessionModel: satu pertemuan nyata; timetable_session_id + tanggal unik untuk hasil generate
type ClassSessionModel struct {
	ClassSessionID                 uuid.UUID    `gorm:"column:class_session_id;type:uuid;default:gen_random_uuid();primaryKey" json:"class_session_id"`
	ClassSessionSchoolID           uuid.UUID    `gorm:"column:class_session_school_id;type:uuid;not null;index" json:"class_session_school_id"`
	ClassSessionClassID            uuid.UUID    `gorm:"column:class_session_class_id;type:uuid;not null;index:idx_class_session_class_date" json:"class_session_class_id"`
	ClassSessionSubjectID          uuid.UUID    `gorm:"column:class_session_subject_id;type:uuid;not null;index" json:"class_session_subject_id"`
	ClassSessionTeacherID          uuid.UUID    `gorm:"column:class_session_teacher_id;type:uuid;not null;index" json:"class_session_teacher_id"`
	ClassSessionChapterID          *uuid.UUID   `gorm:"column:class_session_chapter_id;type:uuid" json:"class_session_chapter_id,omitempty"`
	ClassSessionTimetableSessionID *uuid.UUID   `gorm:"column:class_session_timetable_session_id;type:uuid;uniqueIndex:uq_class_session_slot_date" json:"class_session_timetable_session_id,omitempty"`
	ClassSessionDate               time.Time    `gorm:"column:class_session_date;type:date;not null;uniqueIndex:uq_class_session_slot_date;index:idx_class_session_class_date" json:"class_session_date"`
	ClassSessionStartTime          dbtime.Clock `gorm:"column:class_session_start_time;type:time;not null" json:"class_session_start_time"`
	ClassSessionEndTime            dbtime.Clock `gorm:"column:class_session_end_time;type:time;not null" json:"class_session_end_time"`
	ClassSessionStatus             string       `gorm:"column:class_session_status;size:20;not null;default:scheduled;index" json:"class_session_status"`
	ClassSessionObjectives         *string      `gorm:"column:class_session_objectives" json:"class_session_objectives,omitempty"`
	ClassSessionHomework           *string      `gorm:"column:class_session_homework" json:"class_session_homework,omitempty"`
	ClassSessionNotes              *string      `gorm:"column:class_session_notes" json:"class_session_notes,omitempty"`
	ClassSessionCompletedAt        *time.Time   `gorm:"column:class_session_completed_at" json:"class_session_completed_at,omitempty"`

	ClassSessionCreatedAt time.Time `gorm:"column:class_session_created_at;autoCreateTime" json:"class_session_created_at"`
	ClassSessionUpdatedAt time.Time `gorm:"column:class_session_updated_at;autoUpdateTime" json:"class_session_updated_at"`
}

func (ClassSessionModel) TableName() string { return "class_sessions" }

const (
	ProgressOnTrack             = "on_track"
	ProgressSlightlyBehind      = "slightly_behind"
	ProgressSignificantlyBehind = "significantly_behind"
	ProgressAhead               = "ahead"
)

type CurriculumProgressModel struct {
	CurriculumProgressID                 uuid.UUID  `gorm:"column:curriculum_progress_id;type:uuid;default:gen_random_uuid();primaryKey" json:"curriculum_progress_id"`
	CurriculumProgressSchoolID           uuid.UUID  `gorm:"column:curriculum_progress_school_id;type:uuid;not null;index" json:"curriculum_progress_school_id"`
	CurriculumProgressClassID            uuid.UUID  `gorm:"column:curriculum_progress_class_id;type:uuid;not null;uniqueIndex:uq_curriculum_progress" json:"curriculum_progress_class_id"`
	CurriculumProgressSubjectID          uuid.UUID  `gorm:"column:curriculum_progress_subject_id;type:uuid;not null;uniqueIndex:uq_curriculum_progress" json:"curriculum_progress_subject_id"`
	CurriculumProgressTermID             uuid.UUID  `gorm:"column:curriculum_progress_term_id;type:uuid;not null;uniqueIndex:uq_curriculum_progress;index" json:"curriculum_progress_term_id"`
	CurriculumProgressTotalChapters      int        `gorm:"column:curriculum_progress_total_chapters;not null;default:0" json:"curriculum_progress_total_chapters"`
	CurriculumProgressCompletedChapters  int        `gorm:"column:curriculum_progress_completed_chapters;not null;default:0" json:"curriculum_progress_completed_chapters"`
	CurriculumProgressPercentage         float64    `gorm:"column:curriculum_progress_percentage;type:numeric(5,2);not null;default:0" json:"curriculum_progress_percentage"`
	CurriculumProgressExpectedPercentage float64    `gorm:"column:curriculum_progress_expected_percentage;type:numeric(5,2);not null;default:0" json:"curriculum_progress_expected_percentage"`
	CurriculumProgressVariance           float64    `gorm:"column:curriculum_progress_variance;type:numeric(6,2);not null;default:0" json:"curriculum_progress_variance"`
	CurriculumProgressStatus             string     `gorm:"column:curriculum_progress_status;size:30;not null;default:on_track;index" json:"curriculum_progress_status"`
	CurriculumProgressLastChapterAt      *time.Time `gorm:"column:curriculum_progress_last_chapter_completed_at" json:"curriculum_progress_last_chapter_completed_at,omitempty"`
	CurriculumProgressCalculatedAt       time.Time  `gorm:"column:curriculum_progress_calculated_at;not null" json:"curriculum_progress_calculated_at"`
}

func (CurriculumProgressModel) TableName() string { return "curriculum_progress" }
