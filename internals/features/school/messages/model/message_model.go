package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChannelInApp = "in_app"
	ChannelEmail = "email"
)

const (
	StatusSent   = "sent"
	StatusRead   = "read"
	StatusFailed = "failed"
)

// arah pesan relatif ke orang tua
const (
	DirectionToParent   = "to_parent"
	DirectionFromParent = "from_parent"
)

// MessageModel: percakapan staf ↔ orang tua. RecipientParentID selalu orang tua lawan bicara;
// balasan orang tua memakai direction from_parent dan recipient_user_id = staf pengirim awal.
type MessageModel struct {
	MessageID                uuid.UUID  `gorm:"column:message_id;type:uuid;default:gen_random_uuid();primaryKey" json:"message_id"`
	MessageSchoolID          uuid.UUID  `gorm:"column:message_school_id;type:uuid;not null;index" json:"message_school_id"`
	MessageSenderUserID      uuid.UUID  `gorm:"column:message_sender_user_id;type:uuid;not null;index:idx_message_sender" json:"message_sender_user_id"`
	MessageRecipientParentID uuid.UUID  `gorm:"column:message_recipient_parent_id;type:uuid;not null;index:idx_message_parent" json:"message_recipient_parent_id"`
	MessageRecipientUserID   *uuid.UUID `gorm:"column:message_recipient_user_id;type:uuid;index" json:"message_recipient_user_id,omitempty"`
	MessageStudentID         *uuid.UUID `gorm:"column:message_student_id;type:uuid" json:"message_student_id,omitempty"`
	MessageDirection         string     `gorm:"column:message_direction;size:20;not null;default:to_parent" json:"message_direction"`
	MessageParentMessageID   *uuid.UUID `gorm:"column:message_parent_message_id;type:uuid;index" json:"message_parent_message_id,omitempty"`

	MessageSubject string     `gorm:"column:message_subject;size:200;not null" json:"message_subject"`
	MessageBody    string     `gorm:"column:message_body;not null" json:"message_body"`
	MessageChannel string     `gorm:"column:message_channel;size:10;not null;default:in_app" json:"message_channel"`
	MessageStatus  string     `gorm:"column:message_status;size:10;not null;default:sent;index" json:"message_status"`
	MessageError   *string    `gorm:"column:message_error" json:"message_error,omitempty"`
	MessageReadAt  *time.Time `gorm:"column:message_read_at" json:"message_read_at,omitempty"`

	MessageCreatedAt time.Time `gorm:"column:message_created_at;autoCreateTime;index" json:"message_created_at"`
}

func (MessageModel) TableName() string { return "messages" }

// ThreadRoot: id pesan pertama percakapan
func (m MessageModel) ThreadRoot() uuid.UUID {
	if m.MessageParentMessageID != nil {
		return *m.MessageParentMessageID
	}
	return m.MessageID
}
