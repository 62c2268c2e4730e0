package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TypeIncident = "incident"
	TypeSanction = "sanction"
	TypeReward   = "reward"
	TypeNote     = "note"
)

const (
	StatusOpen            = "open"
	StatusInvestigating   = "investigating"
	StatusPendingDecision = "pending_decision"
	StatusResolved        = "resolved"
	StatusClosed          = "closed"
	StatusAppealed        = "appealed"
)

const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
	SeverityUrgent   = "urgent"
)

// IsFinal: resolved & closed dianggap selesai
func IsFinal(status string) bool {
	return status == StatusResolved || status == StatusClosed
}

type ConductRecordModel struct {
	ConductRecordID           uuid.UUID  `gorm:"column:conduct_record_id;type:uuid;default:gen_random_uuid();primaryKey" json:"conduct_record_id"`
	ConductRecordSchoolID     uuid.UUID  `gorm:"column:conduct_record_school_id;type:uuid;not null;index" json:"conduct_record_school_id"`
	ConductRecordStudentID    uuid.UUID  `gorm:"column:conduct_record_student_id;type:uuid;not null;index:idx_conduct_student_date" json:"conduct_record_student_id"`
	ConductRecordClassID      *uuid.UUID `gorm:"column:conduct_record_class_id;type:uuid;index" json:"conduct_record_class_id,omitempty"`
	ConductRecordSchoolYearID uuid.UUID  `gorm:"column:conduct_record_school_year_id;type:uuid;not null;index" json:"conduct_record_school_year_id"`
	ConductRecordTermID       *uuid.UUID `gorm:"column:conduct_record_term_id;type:uuid" json:"conduct_record_term_id,omitempty"`

	ConductRecordType        string  `gorm:"column:conduct_record_type;size:20;not null;index" json:"conduct_record_type"`
	ConductRecordCategory    string  `gorm:"column:conduct_record_category;size:30;not null" json:"conduct_record_category"`
	ConductRecordTitle       string  `gorm:"column:conduct_record_title;size:200;not null" json:"conduct_record_title"`
	ConductRecordDescription string  `gorm:"column:conduct_record_description;not null" json:"conduct_record_description"`
	ConductRecordSeverity    *string `gorm:"column:conduct_record_severity;size:20;index" json:"conduct_record_severity,omitempty"`

	ConductRecordIncidentDate time.Time      `gorm:"column:conduct_record_incident_date;type:date;not null;index:idx_conduct_student_date" json:"conduct_record_incident_date"`
	ConductRecordIncidentTime *string        `gorm:"column:conduct_record_incident_time;size:5" json:"conduct_record_incident_time,omitempty"`
	ConductRecordLocation     *string        `gorm:"column:conduct_record_location;size:200" json:"conduct_record_location,omitempty"`
	ConductRecordWitnesses    pq.StringArray `gorm:"column:conduct_record_witnesses;type:text[]" json:"conduct_record_witnesses,omitempty"`

	ConductRecordSanctionType    *string    `gorm:"column:conduct_record_sanction_type;size:30" json:"conduct_record_sanction_type,omitempty"`
	ConductRecordSanctionStart   *time.Time `gorm:"column:conduct_record_sanction_start_date;type:date" json:"conduct_record_sanction_start_date,omitempty"`
	ConductRecordSanctionEnd     *time.Time `gorm:"column:conduct_record_sanction_end_date;type:date" json:"conduct_record_sanction_end_date,omitempty"`
	ConductRecordSanctionDetails *string    `gorm:"column:conduct_record_sanction_details" json:"conduct_record_sanction_details,omitempty"`
	ConductRecordRewardType      *string    `gorm:"column:conduct_record_reward_type;size:30" json:"conduct_record_reward_type,omitempty"`
	ConductRecordPointsAwarded   int        `gorm:"column:conduct_record_points_awarded;not null;default:0" json:"conduct_record_points_awarded"`

	ConductRecordStatus     string     `gorm:"column:conduct_record_status;size:20;not null;default:open;index" json:"conduct_record_status"`
	ConductRecordAssignedTo *uuid.UUID `gorm:"column:conduct_record_assigned_to;type:uuid" json:"conduct_record_assigned_to,omitempty"`

	ConductRecordParentNotified     bool       `gorm:"column:conduct_record_parent_notified;not null;default:false" json:"conduct_record_parent_notified"`
	ConductRecordParentNotifiedAt   *time.Time `gorm:"column:conduct_record_parent_notified_at" json:"conduct_record_parent_notified_at,omitempty"`
	ConductRecordParentAcknowledged bool       `gorm:"column:conduct_record_parent_acknowledged;not null;default:false" json:"conduct_record_parent_acknowledged"`
	ConductRecordParentAckAt        *time.Time `gorm:"column:conduct_record_parent_acknowledged_at" json:"conduct_record_parent_acknowledged_at,omitempty"`
	ConductRecordParentResponse     *string    `gorm:"column:conduct_record_parent_response" json:"conduct_record_parent_response,omitempty"`

	ConductRecordAttachments datatypes.JSON `gorm:"column:conduct_record_attachments;type:jsonb" json:"conduct_record_attachments,omitempty"`

	ConductRecordRecordedBy      *uuid.UUID `gorm:"column:conduct_record_recorded_by;type:uuid" json:"conduct_record_recorded_by,omitempty"`
	ConductRecordResolvedBy      *uuid.UUID `gorm:"column:conduct_record_resolved_by;type:uuid" json:"conduct_record_resolved_by,omitempty"`
	ConductRecordResolvedAt      *time.Time `gorm:"column:conduct_record_resolved_at" json:"conduct_record_resolved_at,omitempty"`
	ConductRecordResolutionNotes *string    `gorm:"column:conduct_record_resolution_notes" json:"conduct_record_resolution_notes,omitempty"`

	ConductRecordCreatedAt time.Time      `gorm:"column:conduct_record_created_at;autoCreateTime" json:"conduct_record_created_at"`
	ConductRecordUpdatedAt time.Time      `gorm:"column:conduct_record_updated_at;autoUpdateTime" json:"conduct_record_updated_at"`
	ConductRecordDeletedAt gorm.DeletedAt `gorm:"column:conduct_record_deleted_at;index" json:"-"`
}

func (ConductRecordModel) TableName() string { return "conduct_records" }

type ConductFollowUpModel struct {
	ConductFollowUpID          uuid.UUID  `gorm:"column:conduct_follow_up_id;type:uuid;default:gen_random_uuid();primaryKey" json:"conduct_follow_up_id"`
	ConductFollowUpRecordID    uuid.UUID  `gorm:"column:conduct_follow_up_record_id;type:uuid;not null;index" json:"conduct_follow_up_record_id"`
	ConductFollowUpAction      string     `gorm:"column:conduct_follow_up_action;size:200;not null" json:"conduct_follow_up_action"`
	ConductFollowUpNotes       *string    `gorm:"column:conduct_follow_up_notes" json:"conduct_follow_up_notes,omitempty"`
	ConductFollowUpOutcome     *string    `gorm:"column:conduct_follow_up_outcome" json:"conduct_follow_up_outcome,omitempty"`
	ConductFollowUpDueDate     *time.Time `gorm:"column:conduct_follow_up_due_date;type:date" json:"conduct_follow_up_due_date,omitempty"`
	ConductFollowUpCompletedAt *time.Time `gorm:"column:conduct_follow_up_completed_at" json:"conduct_follow_up_completed_at,omitempty"`
	ConductFollowUpCreatedBy   *uuid.UUID `gorm:"column:conduct_follow_up_created_by;type:uuid" json:"conduct_follow_up_created_by,omitempty"`

	ConductFollowUpCreatedAt time.Time `gorm:"column:conduct_follow_up_created_at;autoCreateTime" json:"conduct_follow_up_created_at"`
}

func (ConductFollowUpModel) TableName() string { return "conduct_follow_ups" }
