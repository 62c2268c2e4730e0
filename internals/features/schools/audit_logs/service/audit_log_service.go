package service

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/schools/audit_logs/model"
)

// Record: tulis satu baris audit di dalam transaksi pemanggil
func Record(tx *gorm.DB, schoolID uuid.UUID, actor *uuid.UUID, action, entityType string, entityID *uuid.UUID, data map[string]any) error {
	return tx.Create(&model.AuditLogModel{
		AuditLogSchoolID:   schoolID,
		AuditLogUserID:     actor,
		AuditLogAction:     action,
		AuditLogEntityType: entityType,
		AuditLogEntityID:   entityID,
		AuditLogData:       data,
	}).Error
}
