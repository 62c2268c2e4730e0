package dto

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"schoolhub_backend/internals/features/school/conduct/model"
	"schoolhub_backend/internals/helpers/dbtime"
)

type ConductRequest struct {
	StudentID    uuid.UUID  `json:"student_id" validate:"required"`
	ClassID      *uuid.UUID `json:"class_id"`
	SchoolYearID uuid.UUID  `json:"school_year_id" validate:"required"`
	TermID       *uuid.UUID `json:"term_id"`

	Type        string  `json:"type" validate:"required,oneof=incident sanction reward note"`
	Category    string  `json:"category" validate:"required,oneof=behavior academic attendance uniform property violence bullying cheating achievement improvement general other"`
	Title       string  `json:"title" validate:"required,min=3,max=200"`
	Description string  `json:"description" validate:"required,min=3,max=5000"`
	Severity    *string `json:"severity" validate:"omitempty,oneof=low medium high critical urgent"`

	IncidentDate string   `json:"incident_date" validate:"required,datetime=2006-01-02,notfuture"`
	IncidentTime *string  `json:"incident_time" validate:"omitempty,hhmm"`
	Location     *string  `json:"location" validate:"omitempty,max=200"`
	Witnesses    []string `json:"witnesses" validate:"omitempty,max=20,dive,min=1,max=150"`

	SanctionType    *string `json:"sanction_type" validate:"omitempty,oneof=verbal_warning written_warning detention suspension community_service parent_meeting expulsion other"`
	SanctionStart   *string `json:"sanction_start_date" validate:"omitempty,datetime=2006-01-02"`
	SanctionEnd     *string `json:"sanction_end_date" validate:"omitempty,datetime=2006-01-02"`
	SanctionDetails *string `json:"sanction_details" validate:"omitempty,max=2000"`
	RewardType      *string `json:"reward_type" validate:"omitempty,oneof=certificate merit_points public_recognition prize scholarship other"`
	PointsAwarded   int     `json:"points_awarded" validate:"min=-100,max=100"`

	AssignedTo  *uuid.UUID      `json:"assigned_to"`
	Attachments json.RawMessage `json:"attachments"`
}

func parseOptDate(s *string) (*time.Time, bool) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, true
	}
	d, err := dbtime.ParseDate(*s)
	if err != nil {
		return nil, false
	}
	return &d, true
}

// ToModel: false kalau tanggal tidak valid atau sanksi berakhir sebelum mulai
func (r ConductRequest) ToModel(schoolID uuid.UUID, recordedBy *uuid.UUID) (model.ConductRecordModel, bool) {
	d, err := dbtime.ParseDate(r.IncidentDate)
	if err != nil {
		return model.ConductRecordModel{}, false
	}
	start, ok1 := parseOptDate(r.SanctionStart)
	end, ok2 := parseOptDate(r.SanctionEnd)
	if !ok1 || !ok2 || (start != nil && end != nil && end.Before(*start)) {
		return model.ConductRecordModel{}, false
	}
	m := model.ConductRecordModel{
		ConductRecordSchoolID:        schoolID,
		ConductRecordStudentID:       r.StudentID,
		ConductRecordClassID:         r.ClassID,
		ConductRecordSchoolYearID:    r.SchoolYearID,
		ConductRecordTermID:          r.TermID,
		ConductRecordType:            r.Type,
		ConductRecordCategory:        r.Category,
		ConductRecordTitle:           strings.TrimSpace(r.Title),
		ConductRecordDescription:     strings.TrimSpace(r.Description),
		ConductRecordSeverity:        r.Severity,
		ConductRecordIncidentDate:    d,
		ConductRecordIncidentTime:    r.IncidentTime,
		ConductRecordLocation:        r.Location,
		ConductRecordWitnesses:       r.Witnesses,
		ConductRecordSanctionType:    r.SanctionType,
		ConductRecordSanctionStart:   start,
		ConductRecordSanctionEnd:     end,
		ConductRecordSanctionDetails: r.SanctionDetails,
		ConductRecordRewardType:      r.RewardType,
		ConductRecordPointsAwarded:   r.PointsAwarded,
		ConductRecordStatus:          model.StatusOpen,
		ConductRecordAssignedTo:      r.AssignedTo,
		ConductRecordRecordedBy:      recordedBy,
	}
	if len(r.Attachments) > 0 {
		m.ConductRecordAttachments = []byte(r.Attachments)
	}
	return m, true
}

type ConductUpdateRequest struct {
	Category        *string    `json:"category" validate:"omitempty,oneof=behavior academic attendance uniform property violence bullying cheating achievement improvement general other"`
	Title           *string    `json:"title" validate:"omitempty,min=3,max=200"`
	Description     *string    `json:"description" validate:"omitempty,min=3,max=5000"`
	Severity        *string    `json:"severity" validate:"omitempty,oneof=low medium high critical urgent"`
	Location        *string    `json:"location" validate:"omitempty,max=200"`
	Witnesses       []string   `json:"witnesses" validate:"omitempty,max=20,dive,min=1,max=150"`
	SanctionType    *string    `json:"sanction_type" validate:"omitempty,oneof=verbal_warning written_warning detention suspension community_service parent_meeting expulsion other"`
	SanctionDetails *string    `json:"sanction_details" validate:"omitempty,max=2000"`
	PointsAwarded   *int       `json:"points_awarded" validate:"omitempty,min=-100,max=100"`
	AssignedTo      *uuid.UUID `json:"assigned_to"`
}

func (r ConductUpdateRequest) Updates() map[string]any {
	u := map[string]any{}
	if r.Category != nil {
		u["conduct_record_category"] = *r.Category
	}
	if r.Title != nil {
		u["conduct_record_title"] = strings.TrimSpace(*r.Title)
	}
	if r.Description != nil {
		u["conduct_record_description"] = strings.TrimSpace(*r.Description)
	}
	if r.Severity != nil {
		u["conduct_record_severity"] = *r.Severity
	}
	if r.Location != nil {
		u["conduct_record_location"] = *r.Location
	}
	if r.Witnesses != nil {
		u["conduct_record_witnesses"] = pq.StringArray(r.Witnesses)
	}
	if r.SanctionType != nil {
		u["conduct_record_sanction_type"] = *r.SanctionType
	}
	if r.SanctionDetails != nil {
		u["conduct_record_sanction_details"] = *r.SanctionDetails
	}
	if r.PointsAwarded != nil {
		u["conduct_record_points_awarded"] = *r.PointsAwarded
	}
	if r.AssignedTo != nil {
		u["conduct_record_assigned_to"] = *r.AssignedTo
	}
	return u
}

type StatusRequest struct {
	Status          string  `json:"status" validate:"required,oneof=open investigating pending_decision resolved closed appealed"`
	ResolutionNotes *string `json:"resolution_notes" validate:"omitempty,max=2000"`
}

type FollowUpRequest struct {
	Action  string  `json:"action" validate:"required,min=3,max=200"`
	Notes   *string `json:"notes" validate:"omitempty,max=2000"`
	DueDate *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

type CompleteFollowUpRequest struct {
	Outcome string `json:"outcome" validate:"required,min=2,max=2000"`
}

type ParentNotifyRequest struct {
	// SendEmail: kirim email ke wali utama sekalian
	SendEmail bool    `json:"send_email"`
	Message   *string `json:"message" validate:"omitempty,max=5000"`
}

type ParentAckRequest struct {
	Response *string `json:"response" validate:"omitempty,max=2000"`
}

type ConductItem struct {
	model.ConductRecordModel
	StudentName   string `json:"student_name"`
	FollowUpCount int64  `json:"follow_up_count"`
}

type ConductDetail struct {
	model.ConductRecordModel
	StudentName string                       `json:"student_name"`
	FollowUps   []model.ConductFollowUpModel `json:"follow_ups"`
}

type StudentSummary struct {
	StudentID   uuid.UUID      `json:"student_id"`
	Total       int            `json:"total"`
	ByType      map[string]int `json:"by_type"`
	Open        int            `json:"open"`
	Resolved    int            `json:"resolved"`
	BySeverity  map[string]int `json:"by_severity"`
	ByCategory  map[string]int `json:"by_category"`
	TotalPoints int            `json:"total_points"`
	LastRecord  *time.Time     `json:"last_record_date,omitempty"`
}
