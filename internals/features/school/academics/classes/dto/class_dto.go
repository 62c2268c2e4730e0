package dto

import (
	"strings"

	"github.com/google/uuid"
)

type ClassRequest struct {
	SchoolYearID      uuid.UUID  `json:"school_year_id" validate:"required"`
	GradeID           uuid.UUID  `json:"grade_id" validate:"required"`
	SeriesID          *uuid.UUID `json:"series_id"`
	Section           string     `json:"section" validate:"required,min=1,max=10"`
	ClassroomID       *uuid.UUID `json:"classroom_id"`
	HomeroomTeacherID *uuid.UUID `json:"homeroom_teacher_id"`
	MaxStudents       *int       `json:"max_students" validate:"omitempty,min=1,max=100"`
	Status            string     `json:"status" validate:"omitempty,oneof=active archived"`
}

func (r ClassRequest) CleanSection() string { return strings.ToUpper(strings.TrimSpace(r.Section)) }

func (r ClassRequest) MaxOrDefault() int {
	if r.MaxStudents != nil {
		return *r.MaxStudents
	}
	return 40
}

// ClassListItem: kelas + jumlah siswa terkonfirmasi
type ClassListItem struct {
	ClassID           uuid.UUID  `json:"class_id"`
	ClassName         string     `json:"class_name"`
	ClassSection      string     `json:"class_section"`
	ClassSchoolYearID uuid.UUID  `json:"class_school_year_id"`
	ClassGradeID      uuid.UUID  `json:"class_grade_id"`
	GradeName         string     `json:"grade_name"`
	GradeOrder        int        `json:"grade_order"`
	ClassSeriesID     *uuid.UUID `json:"class_series_id,omitempty"`
	ClassClassroomID  *uuid.UUID `json:"class_classroom_id,omitempty"`
	ClassMaxStudents  int        `json:"class_max_students"`
	ClassStatus       string     `json:"class_status"`
	EnrolledCount     int64      `json:"enrolled_count"`
}

/* ---------- class subjects ---------- */

type ClassSubjectRequest struct {
	SubjectID    uuid.UUID  `json:"subject_id" validate:"required"`
	TeacherID    *uuid.UUID `json:"teacher_id"`
	Coefficient  *int       `json:"coefficient" validate:"omitempty,min=1,max=20"`
	HoursPerWeek *int       `json:"hours_per_week" validate:"omitempty,min=1,max=40"`
}

type UpdateClassSubjectRequest struct {
	Coefficient  *int `json:"coefficient" validate:"omitempty,min=1,max=20"`
	HoursPerWeek *int `json:"hours_per_week" validate:"omitempty,min=1,max=40"`
}

type AssignTeacherRequest struct {
	TeacherID uuid.UUID `json:"teacher_id" validate:"required"`
}

type CopySubjectsRequest struct {
	SourceClassID uuid.UUID `json:"source_class_id" validate:"required"`
	Overwrite     bool      `json:"overwrite"`
}

type ClassSubjectItem struct {
	ClassSubjectID           uuid.UUID  `json:"class_subject_id"`
	ClassSubjectClassID      uuid.UUID  `json:"class_subject_class_id"`
	ClassSubjectSubjectID    uuid.UUID  `json:"class_subject_subject_id"`
	SubjectName              string     `json:"subject_name"`
	SubjectCategory          string     `json:"subject_category"`
	ClassSubjectTeacherID    *uuid.UUID `json:"class_subject_teacher_id,omitempty"`
	TeacherName              *string    `json:"teacher_name,omitempty"`
	ClassSubjectCoefficient  int        `json:"class_subject_coefficient"`
	ClassSubjectHoursPerWeek int        `json:"class_subject_hours_per_week"`
}

// TeacherAssignment: satu baris beban mengajar guru
type TeacherAssignment struct {
	ClassID      uuid.UUID `json:"class_id"`
	ClassName    string    `json:"class_name"`
	SubjectName  string    `json:"subject_name"`
	HoursPerWeek int       `json:"hours_per_week"`
}

type TeacherWorkload struct {
	TeacherID   uuid.UUID           `json:"teacher_id"`
	TotalHours  int                 `json:"total_hours"`
	Overloaded  bool                `json:"overloaded"`
	Assignments []TeacherAssignment `json:"assignments"`
}
