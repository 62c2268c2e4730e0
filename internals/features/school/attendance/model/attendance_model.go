package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"

	"schoolhub_backend/internals/helpers/dbtime"
)

const (
	StatusPresent = "present"
	StatusLate    = "late"
	StatusAbsent  = "absent"
	StatusExcused = "excused"
	StatusOnLeave = "on_leave" // khusus guru
)

// StudentAttendanceModel: satu baris per enrollment per tanggal (per sesi bila ada)
type StudentAttendanceModel struct {
	StudentAttendanceID             uuid.UUID     `gorm:"column:student_attendance_id;type:uuid;default:gen_random_uuid();primaryKey" json:"student_attendance_id"`
	StudentAttendanceSchoolID       uuid.UUID     `gorm:"column:student_attendance_school_id;type:uuid;not null;index" json:"student_attendance_school_id"`
	StudentAttendanceEnrollmentID   uuid.UUID     `gorm:"column:student_attendance_enrollment_id;type:uuid;not null;uniqueIndex:uq_student_att_day,where:student_attendance_class_session_id IS NULL;uniqueIndex:uq_student_att_session,where:student_attendance_class_session_id IS NOT NULL" json:"student_attendance_enrollment_id"`
	StudentAttendanceStudentID      uuid.UUID     `gorm:"column:student_attendance_student_id;type:uuid;not null;index:idx_student_att_student_date" json:"student_attendance_student_id"`
	StudentAttendanceClassID        uuid.UUID     `gorm:"column:student_attendance_class_id;type:uuid;not null;index:idx_student_att_class_date" json:"student_attendance_class_id"`
	StudentAttendanceClassSessionID *uuid.UUID    `gorm:"column:student_attendance_class_session_id;type:uuid;uniqueIndex:uq_student_att_session,where:student_attendance_class_session_id IS NOT NULL" json:"student_attendance_class_session_id,omitempty"`
	StudentAttendanceDate           time.Time     `gorm:"column:student_attendance_date;type:date;not null;uniqueIndex:uq_student_att_day,where:student_attendance_class_session_id IS NULL;uniqueIndex:uq_student_att_session,where:student_attendance_class_session_id IS NOT NULL;index:idx_student_att_class_date;index:idx_student_att_student_date" json:"student_attendance_date"`
	StudentAttendanceStatus         string        `gorm:"column:student_attendance_status;size:20;not null;index" json:"student_attendance_status"`
	StudentAttendanceArrivalTime    *dbtime.Clock `gorm:"column:student_attendance_arrival_time;type:time" json:"student_attendance_arrival_time,omitempty"`
	StudentAttendanceLateMinutes    int           `gorm:"column:student_attendance_late_minutes;not null;default:0" json:"student_attendance_late_minutes"`
	StudentAttendanceReason         *string       `gorm:"column:student_attendance_reason" json:"student_attendance_reason,omitempty"`
	StudentAttendanceReasonCategory *string       `gorm:"column:student_attendance_reason_category;size:30" json:"student_attendance_reason_category,omitempty"`
	StudentAttendanceRecordedBy     *uuid.UUID    `gorm:"column:student_attendance_recorded_by;type:uuid" json:"student_attendance_recorded_by,omitempty"`

	StudentAttendanceCreatedAt time.Time `gorm:"column:student_attendance_created_at;autoCreateTime" json:"student_attendance_created_at"`
	StudentAttendanceUpdatedAt time.Time `gorm:"column:student_attendance_updated_at;autoUpdateTime" json:"student_attendance_updated_at"`
}

func (StudentAttendanceModel) TableName() string { return "student_attendances" }

type TeacherAttendanceModel struct {
	TeacherAttendanceID            uuid.UUID     `gorm:"column:teacher_attendance_id;type:uuid;default:gen_random_uuid();primaryKey" json:"teacher_attendance_id"`
	TeacherAttendanceSchoolID      uuid.UUID     `gorm:"column:teacher_attendance_school_id;type:uuid;not null;index" json:"teacher_attendance_school_id"`
	TeacherAttendanceTeacherID     uuid.UUID     `gorm:"column:teacher_attendance_teacher_id;type:uuid;not null;uniqueIndex:uq_teacher_att_day" json:"teacher_attendance_teacher_id"`
	TeacherAttendanceDate          time.Time     `gorm:"column:teacher_attendance_date;type:date;not null;uniqueIndex:uq_teacher_att_day;index" json:"teacher_attendance_date"`
	TeacherAttendanceStatus        string        `gorm:"column:teacher_attendance_status;size:20;not null;index" json:"teacher_attendance_status"`
	TeacherAttendanceArrivalTime   *dbtime.Clock `gorm:"column:teacher_attendance_arrival_time;type:time" json:"teacher_attendance_arrival_time,omitempty"`
	TeacherAttendanceDepartureTime *dbtime.Clock `gorm:"column:teacher_attendance_departure_time;type:time" json:"teacher_attendance_departure_time,omitempty"`
	TeacherAttendanceLateMinutes   int           `gorm:"column:teacher_attendance_late_minutes;not null;default:0" json:"teacher_attendance_late_minutes"`
	TeacherAttendanceReason        *string       `gorm:"column:teacher_attendance_reason" json:"teacher_attendance_reason,omitempty"`
	TeacherAttendanceRecordedBy    *uuid.UUID    `gorm:"column:teacher_attendance_recorded_by;type:uuid" json:"teacher_attendance_recorded_by,omitempty"`

	TeacherAttendanceCreatedAt time.Time `gorm:"column:teacher_attendance_created_at;autoCreateTime" json:"teacher_attendance_created_at"`
	TeacherAttendanceUpdatedAt time.Time `gorm:"column:teacher_attendance_updated_at;autoUpdateTime" json:"teacher_attendance_updated_at"`
}

func (TeacherAttendanceModel) TableName() string { return "teacher_attendances" }

// AttendanceSettingsModel: satu baris per sekolah
type AttendanceSettingsModel struct {
	AttendanceSettingsSchoolID               uuid.UUID     `gorm:"column:attendance_settings_school_id;type:uuid;primaryKey" json:"attendance_settings_school_id"`
	AttendanceSettingsTeacherExpectedArrival dbtime.Clock  `gorm:"column:attendance_settings_teacher_expected_arrival;type:time;not null;default:'07:30'" json:"teacher_expected_arrival"`
	AttendanceSettingsTeacherLateThreshold   int           `gorm:"column:attendance_settings_teacher_late_threshold_minutes;not null;default:15" json:"teacher_late_threshold_minutes"`
	AttendanceSettingsStudentLateThreshold   int           `gorm:"column:attendance_settings_student_late_threshold_minutes;not null;default:10" json:"student_late_threshold_minutes"`
	AttendanceSettingsChronicAbsencePercent  float64       `gorm:"column:attendance_settings_chronic_absence_threshold_percent;type:numeric(5,2);not null;default:10" json:"chronic_absence_threshold_percent"`
	AttendanceSettingsWorkingDays            pq.Int64Array `gorm:"column:attendance_settings_working_days;type:integer[];not null;default:'{1,2,3,4,5}'" json:"working_days"`

	AttendanceSettingsUpdatedAt time.Time `gorm:"column:attendance_settings_updated_at;autoUpdateTime" json:"attendance_settings_updated_at"`
}

func (AttendanceSettingsModel) TableName() string { return "attendance_settings" }

// DefaultSettings: dipakai kalau sekolah belum menyimpan pengaturan
func DefaultSettings(schoolID uuid.UUID) AttendanceSettingsModel {
	return AttendanceSettingsModel{
		AttendanceSettingsSchoolID:               schoolID,
		AttendanceSettingsTeacherExpectedArrival: dbtime.NewClock(7, 30),
		AttendanceSettingsTeacherLateThreshold:   15,
		AttendanceSettingsStudentLateThreshold:   10,
		AttendanceSettingsChronicAbsencePercent:  10,
		AttendanceSettingsWorkingDays:            pq.Int64Array{1, 2, 3, 4, 5},
	}
}

const (
	AlertTeacherRepeatedLateness = "teacher_repeated_lateness"
	AlertStudentChronicAbsence   = "student_chronic_absence"
	AlertStudentRepeatedLateness = "student_repeated_lateness"

	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"

	AlertActive       = "active"
	AlertAcknowledged = "acknowledged"
	AlertResolved     = "resolved"
	AlertDismissed    = "dismissed"
)

type AttendanceAlertModel struct {
	AttendanceAlertID             uuid.UUID         `gorm:"column:attendance_alert_id;type:uuid;default:gen_random_uuid();primaryKey" json:"attendance_alert_id"`
	AttendanceAlertSchoolID       uuid.UUID         `gorm:"column:attendance_alert_school_id;type:uuid;not null;index" json:"attendance_alert_school_id"`
	AttendanceAlertType           string            `gorm:"column:attendance_alert_type;size:40;not null;index" json:"attendance_alert_type"`
	AttendanceAlertSeverity       string            `gorm:"column:attendance_alert_severity;size:10;not null;default:medium" json:"attendance_alert_severity"`
	AttendanceAlertStatus         string            `gorm:"column:attendance_alert_status;size:20;not null;default:active;index" json:"attendance_alert_status"`
	AttendanceAlertStudentID      *uuid.UUID        `gorm:"column:attendance_alert_student_id;type:uuid;index" json:"attendance_alert_student_id,omitempty"`
	AttendanceAlertTeacherID      *uuid.UUID        `gorm:"column:attendance_alert_teacher_id;type:uuid;index" json:"attendance_alert_teacher_id,omitempty"`
	AttendanceAlertTitle          string            `gorm:"column:attendance_alert_title;size:200;not null" json:"attendance_alert_title"`
	AttendanceAlertData           datatypes.JSONMap `gorm:"column:attendance_alert_data;type:jsonb" json:"attendance_alert_data,omitempty"`
	AttendanceAlertAcknowledgedAt *time.Time        `gorm:"column:attendance_alert_acknowledged_at" json:"attendance_alert_acknowledged_at,omitempty"`
	AttendanceAlertAcknowledgedBy *uuid.UUID        `gorm:"column:attendance_alert_acknowledged_by;type:uuid" json:"attendance_alert_acknowledged_by,omitempty"`
	AttendanceAlertResolvedAt     *time.Time        `gorm:"column:attendance_alert_resolved_at" json:"attendance_alert_resolved_at,omitempty"`
	AttendanceAlertResolvedBy     *uuid.UUID        `gorm:"column:attendance_alert_resolved_by;type:uuid" json:"attendance_alert_resolved_by,omitempty"`
	AttendanceAlertResolutionNote *string           `gorm:"column:attendance_alert_resolution_note" json:"attendance_alert_resolution_note,omitempty"`

	AttendanceAlertCreatedAt time.Time `gorm:"column:attendance_alert_created_at;autoCreateTime" json:"attendance_alert_created_at"`
	AttendanceAlertUpdatedAt time.Time `gorm:"column:attendance_alert_updated_at;autoUpdateTime" json:"attendance_alert_updated_at"`
}

func (AttendanceAlertModel) TableName() string { return "attendance_alerts" }
