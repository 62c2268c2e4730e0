package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/helpers/dbtime"
)

type TimetableSessionModel struct {
	TimetableSessionID             uuid.UUID    `gorm:"column:timetable_session_id;type:uuid;default:gen_random_uuid();primaryKey" json:"timetable_session_id"`
	TimetableSessionSchoolID       uuid.UUID    `gorm:"column:timetable_session_school_id;type:uuid;not null;index" json:"timetable_session_school_id"`
	TimetableSessionSchoolYearID   uuid.UUID    `gorm:"column:timetable_session_school_year_id;type:uuid;not null;index:idx_timetable_year_day" json:"timetable_session_school_year_id"`
	TimetableSessionClassID        uuid.UUID    `gorm:"column:timetable_session_class_id;type:uuid;not null;index" json:"timetable_session_class_id"`
	TimetableSessionSubjectID      uuid.UUID    `gorm:"column:timetable_session_subject_id;type:uuid;not null" json:"timetable_session_subject_id"`
	TimetableSessionTeacherID      uuid.UUID    `gorm:"column:timetable_session_teacher_id;type:uuid;not null;index" json:"timetable_session_teacher_id"`
	TimetableSessionClassroomID    *uuid.UUID   `gorm:"column:timetable_session_classroom_id;type:uuid;index" json:"timetable_session_classroom_id,omitempty"`
	TimetableSessionDayOfWeek      int          `gorm:"column:timetable_session_day_of_week;not null;index:idx_timetable_year_day" json:"timetable_session_day_of_week"`
	TimetableSessionStartTime      dbtime.Clock `gorm:"column:timetable_session_start_time;type:time;not null" json:"timetable_session_start_time"`
	TimetableSessionEndTime        dbtime.Clock `gorm:"column:timetable_session_end_time;type:time;not null" json:"timetable_session_end_time"`
	TimetableSessionEffectiveFrom  *time.Time   `gorm:"column:timetable_session_effective_from;type:date" json:"timetable_session_effective_from,omitempty"`
	TimetableSessionEffectiveUntil *time.Time   `gorm:"column:timetable_session_effective_until;type:date" json:"timetable_session_effective_until,omitempty"`
	TimetableSessionColor          *string      `gorm:"column:timetable_session_color;size:20" json:"timetable_session_color,omitempty"`
	TimetableSessionNotes          *string      `gorm:"column:timetable_session_notes" json:"timetable_session_notes,omitempty"`

	TimetableSessionCreatedAt time.Time      `gorm:"column:timetable_session_created_at;autoCreateTime" json:"timetable_session_created_at"`
	TimetableSessionUpdatedAt time.Time      `gorm:"column:timetable_session_updated_at;autoUpdateTime" json:"timetable_session_updated_at"`
	TimetableSessionDeletedAt gorm.DeletedAt `gorm:"column:timetable_session_deleted_at;index" json:"-"`
}

func (TimetableSessionModel) TableName() string { return "timetable_sessions" }
