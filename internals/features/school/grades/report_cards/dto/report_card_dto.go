package dto

import (
	"time"

	"github.com/google/uuid"

	"schoolhub_backend/internals/features/school/grades/report_cards/model"
)

// DefaultTemplateConfig: kunci yang dikenali di config template
func DefaultTemplateConfig() map[string]any {
	return map[string]any{
		"show_rank":       true,
		"show_attendance": true,
		"show_conduct":    false,
		"show_comments":   true,
	}
}

type TemplateRequest struct {
	Name      string         `json:"name" validate:"required,min=2,max=120"`
	IsDefault bool           `json:"is_default"`
	Config    map[string]any `json:"config"`
}

type UpdateTemplateRequest struct {
	Name      *string        `json:"name" validate:"omitempty,min=2,max=120"`
	IsDefault *bool          `json:"is_default"`
	Config    map[string]any `json:"config"`
}

// MergeConfig: nilai bawaan ditimpa isi request
func MergeConfig(base, in map[string]any) map[string]any {
	out := map[string]any{}
	for k, v := range base {
		out[k] = v
	}
	for k, v := range in {
		out[k] = v
	}
	return out
}

type GenerateRequest struct {
	StudentID       uuid.UUID  `json:"student_id" validate:"required"`
	TermID          uuid.UUID  `json:"term_id" validate:"required"`
	TemplateID      *uuid.UUID `json:"template_id"`
	HomeroomComment *string    `json:"homeroom_comment" validate:"omitempty,max=1000"`
}

type BulkGenerateRequest struct {
	ClassID    uuid.UUID  `json:"class_id" validate:"required"`
	TermID     uuid.UUID  `json:"term_id" validate:"required"`
	TemplateID *uuid.UUID `json:"template_id"`
}

type BulkError struct {
	StudentID uuid.UUID `json:"student_id"`
	Error     string    `json:"error"`
}

type BulkResult struct {
	Total   int         `json:"total"`
	Success int         `json:"success"`
	Failed  int         `json:"failed"`
	Errors  []BulkError `json:"errors"`
}

type CommentRequest struct {
	SubjectID uuid.UUID  `json:"subject_id" validate:"required"`
	TeacherID *uuid.UUID `json:"teacher_id"`
	Comment   string     `json:"comment" validate:"required,max=1000"`
}

type HomeroomCommentRequest struct {
	Comment string `json:"comment" validate:"max=1000"`
}

type SendResult struct {
	ReportCardID uuid.UUID `json:"report_card_id"`
	Email        string    `json:"email"`
	SentAt       time.Time `json:"sent_at"`
}

type ReportCardListItem struct {
	model.ReportCardModel
	StudentMatricule string   `json:"student_matricule"`
	StudentFirstName string   `json:"student_first_name"`
	StudentLastName  string   `json:"student_last_name"`
	OverallAverage   *float64 `json:"overall_average,omitempty"`
	Rank             *int     `json:"rank,omitempty"`
}

type SubjectLine struct {
	SubjectID      uuid.UUID `json:"subject_id"`
	SubjectName    string    `json:"subject_name"`
	Coefficient    int       `json:"coefficient"`
	Average        *float64  `json:"average,omitempty"`
	Rank           *int      `json:"rank,omitempty"`
	GradeCount     int       `json:"grade_count"`
	TeacherComment *string   `json:"teacher_comment,omitempty"`
	TeacherName    *string   `json:"teacher_name,omitempty"`
}

type ReportData struct {
	ReportCard       model.ReportCardModel `json:"report_card"`
	StudentName      string                `json:"student_name"`
	StudentMatricule string                `json:"student_matricule"`
	ClassName        string                `json:"class_name"`
	TermName         string                `json:"term_name"`
	Subjects         []SubjectLine         `json:"subjects"`
	OverallAverage   *float64              `json:"overall_average,omitempty"`
	Rank             *int                  `json:"rank,omitempty"`
	ClassSize        int64                 `json:"class_size"`
	Band             string                `json:"band,omitempty"`
	Config           map[string]any        `json:"config"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type ClassReportStats struct {
	Students     int64   `json:"students"`
	Generated    int64   `json:"generated"`
	Sent         int64   `json:"sent"`
	Viewed       int64   `json:"viewed"`
	ClassAverage float64 `json:"class_average"`
	Highest      float64 `json:"highest"`
	Lowest       float64 `json:"lowest"`
	PassRate     float64 `json:"pass_rate"`
}
