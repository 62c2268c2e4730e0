package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuditLogModel struct {
	AuditLogID         uuid.UUID         `gorm:"column:audit_log_id;type:uuid;default:gen_random_uuid();primaryKey" json:"audit_log_id"`
	AuditLogSchoolID   uuid.UUID         `gorm:"column:audit_log_school_id;type:uuid;not null;index:idx_audit_school_created" json:"audit_log_school_id"`
	AuditLogUserID     *uuid.UUID        `gorm:"column:audit_log_user_id;type:uuid;index" json:"audit_log_user_id,omitempty"`
	AuditLogAction     string            `gorm:"column:audit_log_action;size:60;not null" json:"audit_log_action"`
	AuditLogEntityType string            `gorm:"column:audit_log_entity_type;size:60;not null;index:idx_audit_entity" json:"audit_log_entity_type"`
	AuditLogEntityID   *uuid.UUID        `gorm:"column:audit_log_entity_id;type:uuid;index:idx_audit_entity" json:"audit_log_entity_id,omitempty"`
	AuditLogData       datatypes.JSONMap `gorm:"column:audit_log_data;type:jsonb" json:"audit_log_data,omitempty"`
	AuditLogCreatedAt  time.Time         `gorm:"column:audit_log_created_at;autoCreateTime;index:idx_audit_school_created" json:"audit_log_created_at"`
}

func (AuditLogModel) TableName() string { return "audit_logs" }
