package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"schoolhub_backend/internals/features/school/grades/student_grades/model"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/dbtime"
)

type CreateGradeRequest struct {
	StudentID   uuid.UUID  `json:"student_id" validate:"required"`
	ClassID     uuid.UUID  `json:"class_id" validate:"required"`
	SubjectID   uuid.UUID  `json:"subject_id" validate:"required"`
	TermID      uuid.UUID  `json:"term_id" validate:"required"`
	TeacherID   *uuid.UUID `json:"teacher_id"`
	Value       *float64   `json:"value" validate:"required,min=0,max=20"`
	Type        string     `json:"type" validate:"required,oneof=quiz test exam participation homework project"`
	Weight      *int       `json:"weight" validate:"omitempty,min=1,max=10"`
	Description *string    `json:"description" validate:"omitempty,max=500"`
	GradeDate   string     `json:"grade_date" validate:"required,datetime=2006-01-02,notfuture"`
}

func (r CreateGradeRequest) ToModel(schoolID, teacherID uuid.UUID) (model.StudentGradeModel, error) {
	d, err := dbtime.ParseDate(r.GradeDate)
	if err != nil {
		return model.StudentGradeModel{}, err
	}
	w := 1
	if r.Weight != nil {
		w = *r.Weight
	}
	return model.StudentGradeModel{
		StudentGradeSchoolID:    schoolID,
		StudentGradeStudentID:   r.StudentID,
		StudentGradeClassID:     r.ClassID,
		StudentGradeSubjectID:   r.SubjectID,
		StudentGradeTermID:      r.TermID,
		StudentGradeTeacherID:   teacherID,
		StudentGradeValue:       helper.Round2(*r.Value),
		StudentGradeType:        r.Type,
		StudentGradeWeight:      w,
		StudentGradeDescription: trimPtr(r.Description),
		StudentGradeDate:        d,
		StudentGradeStatus:      model.GradeStatusDraft,
	}, nil
}

type UpdateGradeRequest struct {
	Value       *float64 `json:"value" validate:"omitempty,min=0,max=20"`
	Type        *string  `json:"type" validate:"omitempty,oneof=quiz test exam participation homework project"`
	Weight      *int     `json:"weight" validate:"omitempty,min=1,max=10"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
	GradeDate   *string  `json:"grade_date" validate:"omitempty,datetime=2006-01-02,notfuture"`
}

func (r UpdateGradeRequest) Updates() (map[string]any, error) {
	m := map[string]any{}
	if r.Value != nil {
		m["student_grade_value"] = helper.Round2(*r.Value)
	}
	if r.Type != nil {
		m["student_grade_type"] = *r.Type
	}
	if r.Weight != nil {
		m["student_grade_weight"] = *r.Weight
	}
	if r.Description != nil {
		m["student_grade_description"] = trimPtr(r.Description)
	}
	if r.GradeDate != nil {
		d, err := dbtime.ParseDate(*r.GradeDate)
		if err != nil {
			return nil, err
		}
		m["student_grade_date"] = d
	}
	return m, nil
}

type BulkGradeEntry struct {
	StudentID   uuid.UUID `json:"student_id" validate:"required"`
	Value       *float64  `json:"value" validate:"required,min=0,max=20"`
	Description *string   `json:"description" validate:"omitempty,max=500"`
}

// BulkGradesRequest: satu evaluasi untuk seluruh kelas, satu nilai per siswa
type BulkGradesRequest struct {
	ClassID     uuid.UUID        `json:"class_id" validate:"required"`
	SubjectID   uuid.UUID        `json:"subject_id" validate:"required"`
	TermID      uuid.UUID        `json:"term_id" validate:"required"`
	TeacherID   *uuid.UUID       `json:"teacher_id"`
	Type        string           `json:"type" validate:"required,oneof=quiz test exam participation homework project"`
	Weight      *int             `json:"weight" validate:"omitempty,min=1,max=10"`
	Description *string          `json:"description" validate:"omitempty,max=500"`
	GradeDate   string           `json:"grade_date" validate:"required,datetime=2006-01-02,notfuture"`
	Grades      []BulkGradeEntry `json:"grades" validate:"required,min=1,max=200,dive"`
}

// Entry: turunkan request bulk jadi request satuan
func (r BulkGradesRequest) Entry(e BulkGradeEntry) CreateGradeRequest {
	desc := e.Description
	if desc == nil {
		desc = r.Description
	}
	return CreateGradeRequest{
		StudentID:   e.StudentID,
		ClassID:     r.ClassID,
		SubjectID:   r.SubjectID,
		TermID:      r.TermID,
		TeacherID:   r.TeacherID,
		Value:       e.Value,
		Type:        r.Type,
		Weight:      r.Weight,
		Description: desc,
		GradeDate:   r.GradeDate,
	}
}

type StatusUpdateRequest struct {
	GradeIDs []uuid.UUID `json:"grade_ids" validate:"required,min=1,max=500"`
	Status   string      `json:"status" validate:"required,oneof=submitted validated rejected"`
	Reason   *string     `json:"reason" validate:"required_if=Status rejected,omitempty,max=500"`
}

type StatusUpdateResult struct {
	Updated []uuid.UUID `json:"updated"`
	Skipped []uuid.UUID `json:"skipped"`
}

// ScopeRequest: kelas + mapel + periode (submit semua / hitung rata-rata)
type ScopeRequest struct {
	ClassID   uuid.UUID `json:"class_id" validate:"required"`
	SubjectID uuid.UUID `json:"subject_id" validate:"required"`
	TermID    uuid.UUID `json:"term_id" validate:"required"`
}

type DeleteDraftsRequest struct {
	GradeIDs []uuid.UUID `json:"grade_ids" validate:"required,min=1,max=500"`
}

type RecalculateRequest struct {
	ClassID uuid.UUID `json:"class_id" validate:"required"`
	TermID  uuid.UUID `json:"term_id" validate:"required"`
}

type GradeListItem struct {
	model.StudentGradeModel
	StudentFirstName string `json:"student_first_name"`
	StudentLastName  string `json:"student_last_name"`
	StudentMatricule string `json:"student_matricule"`
	SubjectName      string `json:"subject_name"`
}

type PendingValidation struct {
	ClassID         uuid.UUID `json:"class_id"`
	ClassName       string    `json:"class_name"`
	SubjectID       uuid.UUID `json:"subject_id"`
	SubjectName     string    `json:"subject_name"`
	TermID          uuid.UUID `json:"term_id"`
	TermName        string    `json:"term_name"`
	TeacherID       uuid.UUID `json:"teacher_id"`
	TeacherName     string    `json:"teacher_name"`
	PendingCount    int64     `json:"pending_count"`
	OldestSubmitted time.Time `json:"oldest_submitted_at"`
}

type GradeStats struct {
	Count        int     `json:"count"`
	Average      float64 `json:"average"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	StdDev       float64 `json:"std_dev"`
	BelowTen     int     `json:"below_ten"`
	AboveFifteen int     `json:"above_fifteen"`
}

type HistoryItem struct {
	model.GradeValidationModel
	ByName *string `json:"by_name,omitempty"`
}

type AverageRow struct {
	StudentID        uuid.UUID  `json:"student_id"`
	StudentMatricule string     `json:"student_matricule"`
	StudentFirstName string     `json:"student_first_name"`
	StudentLastName  string     `json:"student_last_name"`
	SubjectID        *uuid.UUID `json:"subject_id,omitempty"`
	Average          float64    `json:"average"`
	GradeCount       int        `json:"grade_count"`
	Rank             *int       `json:"rank_in_class,omitempty"`
	Band             string     `json:"band" gorm:"-"`
}

type RecalculateResult struct {
	Students      int `json:"students"`
	SubjectRows   int `json:"subject_rows"`
	ValidatedUsed int `json:"validated_grades"`
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
