package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ReportCardDraft     = "draft"
	ReportCardGenerated = "generated"
	ReportCardSent      = "sent"
	ReportCardDelivered = "delivered"
	ReportCardViewed    = "viewed"
)

const (
	DeliveryEmail = "email"
	DeliveryInApp = "in_app"
	DeliverySMS   = "sms"
	DeliveryPrint = "print"
)

// ReportCardTemplateModel: satu template default per sekolah (unique index parsial)
type ReportCardTemplateModel struct {
	ReportCardTemplateID        uuid.UUID         `gorm:"column:report_card_template_id;type:uuid;default:gen_random_uuid();primaryKey" json:"report_card_template_id"`
	ReportCardTemplateSchoolID  uuid.UUID         `gorm:"column:report_card_template_school_id;type:uuid;not null;index;uniqueIndex:uq_report_card_template_default,where:report_card_template_is_default AND report_card_template_deleted_at IS NULL" json:"report_card_template_school_id"`
	ReportCardTemplateName      string            `gorm:"column:report_card_template_name;size:120;not null" json:"report_card_template_name"`
	ReportCardTemplateIsDefault bool              `gorm:"column:report_card_template_is_default;not null;default:false" json:"report_card_template_is_default"`
	ReportCardTemplateConfig    datatypes.JSONMap `gorm:"column:report_card_template_config;type:jsonb;not null;default:'{}'" json:"report_card_template_config"`

	ReportCardTemplateCreatedAt time.Time      `gorm:"column:report_card_template_created_at;autoCreateTime" json:"report_card_template_created_at"`
	ReportCardTemplateUpdatedAt time.Time      `gorm:"column:report_card_template_updated_at;autoUpdateTime" json:"report_card_template_updated_at"`
	ReportCardTemplateDeletedAt gorm.DeletedAt `gorm:"column:report_card_template_deleted_at;index" json:"-"`
}

func (ReportCardTemplateModel) TableName() string { return "report_card_templates" }

type ReportCardModel struct {
	ReportCardID                uuid.UUID         `gorm:"column:report_card_id;type:uuid;default:gen_random_uuid();primaryKey" json:"report_card_id"`
	ReportCardSchoolID          uuid.UUID         `gorm:"column:report_card_school_id;type:uuid;not null;index" json:"report_card_school_id"`
	ReportCardStudentID         uuid.UUID         `gorm:"column:report_card_student_id;type:uuid;not null;uniqueIndex:uq_report_card_student_term" json:"report_card_student_id"`
	ReportCardClassID           uuid.UUID         `gorm:"column:report_card_class_id;type:uuid;not null;index" json:"report_card_class_id"`
	ReportCardTermID            uuid.UUID         `gorm:"column:report_card_term_id;type:uuid;not null;uniqueIndex:uq_report_card_student_term;index" json:"report_card_term_id"`
	ReportCardTemplateID        *uuid.UUID        `gorm:"column:report_card_template_id;type:uuid" json:"report_card_template_id,omitempty"`
	ReportCardStatus            string            `gorm:"column:report_card_status;size:20;not null;default:draft;index" json:"report_card_status"`
	ReportCardDeliveryMethod    *string           `gorm:"column:report_card_delivery_method;size:20" json:"report_card_delivery_method,omitempty"`
	ReportCardHomeroomComment   *string           `gorm:"column:report_card_homeroom_comment" json:"report_card_homeroom_comment,omitempty"`
	ReportCardAttendanceSummary datatypes.JSONMap `gorm:"column:report_card_attendance_summary;type:jsonb" json:"report_card_attendance_summary,omitempty"`

	ReportCardGeneratedAt *time.Time `gorm:"column:report_card_generated_at" json:"report_card_generated_at,omitempty"`
	ReportCardGeneratedBy *uuid.UUID `gorm:"column:report_card_generated_by;type:uuid" json:"report_card_generated_by,omitempty"`
	ReportCardSentAt      *time.Time `gorm:"column:report_card_sent_at" json:"report_card_sent_at,omitempty"`
	ReportCardDeliveredAt *time.Time `gorm:"column:report_card_delivered_at" json:"report_card_delivered_at,omitempty"`
	ReportCardViewedAt    *time.Time `gorm:"column:report_card_viewed_at" json:"report_card_viewed_at,omitempty"`

	ReportCardCreatedAt time.Time `gorm:"column:report_card_created_at;autoCreateTime" json:"report_card_created_at"`
	ReportCardUpdatedAt time.Time `gorm:"column:report_card_updated_at;autoUpdateTime" json:"report_card_updated_at"`
}

func (ReportCardModel) TableName() string { return "report_cards" }

type TeacherCommentModel struct {
	TeacherCommentID           uuid.UUID  `gorm:"column:teacher_comment_id;type:uuid;default:gen_random_uuid();primaryKey" json:"teacher_comment_id"`
	TeacherCommentSchoolID     uuid.UUID  `gorm:"column:teacher_comment_school_id;type:uuid;not null;index" json:"teacher_comment_school_id"`
	TeacherCommentReportCardID uuid.UUID  `gorm:"column:teacher_comment_report_card_id;type:uuid;not null;uniqueIndex:uq_teacher_comment_card_subject" json:"teacher_comment_report_card_id"`
	TeacherCommentSubjectID    uuid.UUID  `gorm:"column:teacher_comment_subject_id;type:uuid;not null;uniqueIndex:uq_teacher_comment_card_subject" json:"teacher_comment_subject_id"`
	TeacherCommentTeacherID    *uuid.UUID `gorm:"column:teacher_comment_teacher_id;type:uuid" json:"teacher_comment_teacher_id,omitempty"`
	TeacherCommentText         string     `gorm:"column:teacher_comment_text;not null" json:"teacher_comment_text"`

	TeacherCommentCreatedAt time.Time `gorm:"column:teacher_comment_created_at;autoCreateTime" json:"teacher_comment_created_at"`
	TeacherCommentUpdatedAt time.Time `gorm:"column:teacher_comment_updated_at;autoUpdateTime" json:"teacher_comment_updated_at"`
}

func (TeacherCommentModel) TableName() string { return "teacher_comments" }
