package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"schoolhub_backend/internals/features/school/timetables/model"
	"schoolhub_backend/internals/helpers/dbtime"
)

type SessionRequest struct {
	SchoolYearID   uuid.UUID  `json:"school_year_id" validate:"required"`
	ClassID        uuid.UUID  `json:"class_id" validate:"required"`
	SubjectID      uuid.UUID  `json:"subject_id" validate:"required"`
	TeacherID      uuid.UUID  `json:"teacher_id" validate:"required"`
	ClassroomID    *uuid.UUID `json:"classroom_id"`
	DayOfWeek      int        `json:"day_of_week" validate:"required,min=1,max=7"`
	StartTime      string     `json:"start_time" validate:"required,hhmm"`
	EndTime        string     `json:"end_time" validate:"required,hhmm"`
	EffectiveFrom  *string    `json:"effective_from" validate:"omitempty,datetime=2006-01-02"`
	EffectiveUntil *string    `json:"effective_until" validate:"omitempty,datetime=2006-01-02"`
	Color          *string    `json:"color" validate:"omitempty,max=20"`
	Notes          *string    `json:"notes" validate:"omitempty,max=500"`
}

// ErrTimeRange: dikembalikan ToModel kalau end_time <= start_time atau tanggal terbalik
type ErrTimeRange struct{ Msg string }

func (e ErrTimeRange) Error() string { return e.Msg }

func parseOptDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	d, err := dbtime.ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r SessionRequest) ToModel(schoolID uuid.UUID) (model.TimetableSessionModel, error) {
	start, err := dbtime.ParseClock(r.StartTime)
	if err != nil {
		return model.TimetableSessionModel{}, ErrTimeRange{"start_time tidak valid"}
	}
	end, err := dbtime.ParseClock(r.EndTime)
	if err != nil {
		return model.TimetableSessionModel{}, ErrTimeRange{"end_time tidak valid"}
	}
	if !start.Before(end) {
		return model.TimetableSessionModel{}, ErrTimeRange{"end_time harus setelah start_time"}
	}
	from, err := parseOptDate(r.EffectiveFrom)
	if err != nil {
		return model.TimetableSessionModel{}, ErrTimeRange{"effective_from tidak valid"}
	}
	until, err := parseOptDate(r.EffectiveUntil)
	if err != nil {
		return model.TimetableSessionModel{}, ErrTimeRange{"effective_until tidak valid"}
	}
	if from != nil && until != nil && until.Before(*from) {
		return model.TimetableSessionModel{}, ErrTimeRange{"effective_until sebelum effective_from"}
	}
	return model.TimetableSessionModel{
		TimetableSessionSchoolID:       schoolID,
		TimetableSessionSchoolYearID:   r.SchoolYearID,
		TimetableSessionClassID:        r.ClassID,
		TimetableSessionSubjectID:      r.SubjectID,
		TimetableSessionTeacherID:      r.TeacherID,
		TimetableSessionClassroomID:    r.ClassroomID,
		TimetableSessionDayOfWeek:      r.DayOfWeek,
		TimetableSessionStartTime:      start,
		TimetableSessionEndTime:        end,
		TimetableSessionEffectiveFrom:  from,
		TimetableSessionEffectiveUntil: until,
		TimetableSessionColor:          r.Color,
		TimetableSessionNotes:          r.Notes,
	}, nil
}

type BulkSessionsRequest struct {
	Sessions []SessionRequest `json:"sessions" validate:"required,min=1,max=200,dive"`
}

type ConflictQuery struct {
	SchoolYearID uuid.UUID  `json:"school_year_id" validate:"required"`
	DayOfWeek    int        `json:"day_of_week" validate:"required,min=1,max=7"`
	StartTime    string     `json:"start_time" validate:"required,hhmm"`
	EndTime      string     `json:"end_time" validate:"required,hhmm"`
	TeacherID    *uuid.UUID `json:"teacher_id"`
	ClassroomID  *uuid.UUID `json:"classroom_id"`
	ClassID      *uuid.UUID `json:"class_id"`
	ExcludeID    *uuid.UUID `json:"exclude_id"`
}

const (
	ConflictTeacher   = "teacher"
	ConflictClassroom = "classroom"
	ConflictClass     = "class"
)

type Conflict struct {
	Type               string       `json:"type"`
	TimetableSessionID uuid.UUID    `json:"timetable_session_id"`
	OtherSessionID     *uuid.UUID   `json:"other_session_id,omitempty"`
	DayOfWeek          int          `json:"day_of_week"`
	StartTime          dbtime.Clock `json:"start_time"`
	EndTime            dbtime.Clock `json:"end_time"`
	ClassID            uuid.UUID    `json:"class_id"`
	TeacherID          uuid.UUID    `json:"teacher_id"`
	ClassroomID        *uuid.UUID   `json:"classroom_id,omitempty"`
	Message            string       `json:"message"`
}

type SessionView struct {
	model.TimetableSessionModel
	ClassName     string  `json:"class_name"`
	SubjectName   string  `json:"subject_name"`
	TeacherName   string  `json:"teacher_name"`
	ClassroomName *string `json:"classroom_name,omitempty"`
}

type WeeklyHours struct {
	TotalHours   int `json:"total_hours"`
	TotalMinutes int `json:"total_minutes"`
	SessionCount int `json:"session_count"`
}

type Slot struct {
	StartTime dbtime.Clock `json:"start_time"`
	EndTime   dbtime.Clock `json:"end_time"`
	ClassName *string      `json:"class_name,omitempty"`
}

type Availability struct {
	DayOfWeek int    `json:"day_of_week"`
	Busy      []Slot `json:"busy"`
	Free      []Slot `json:"free"`
}

type GenerateSessionsRequest struct {
	ClassID  uuid.UUID `json:"class_id" validate:"required"`
	FromDate string    `json:"from_date" validate:"required,datetime=2006-01-02"`
	ToDate   string    `json:"to_date" validate:"required,datetime=2006-01-02"`
}

type GenerateSessionsResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}
