package dto

import (
	"strings"

	"github.com/google/uuid"

	"schoolhub_backend/internals/features/school/messages/model"
)

type SendRequest struct {
	ParentID  uuid.UUID  `json:"parent_id" validate:"required"`
	StudentID *uuid.UUID `json:"student_id"`
	Subject   string     `json:"subject" validate:"required,min=2,max=200"`
	Body      string     `json:"body" validate:"required,min=1,max=10000"`
	Channel   string     `json:"channel" validate:"omitempty,oneof=in_app email"`
}

func (r SendRequest) ToModel(schoolID, sender uuid.UUID) model.MessageModel {
	ch := r.Channel
	if ch == "" {
		ch = model.ChannelInApp
	}
	return model.MessageModel{
		MessageSchoolID:          schoolID,
		MessageSenderUserID:      sender,
		MessageRecipientParentID: r.ParentID,
		MessageStudentID:         r.StudentID,
		MessageDirection:         model.DirectionToParent,
		MessageSubject:           strings.TrimSpace(r.Subject),
		MessageBody:              strings.TrimSpace(r.Body),
		MessageChannel:           ch,
		MessageStatus:            model.StatusSent,
	}
}

// ClassBroadcastRequest: satu pesan untuk tiap orang tua siswa aktif di kelas
type ClassBroadcastRequest struct {
	ClassID uuid.UUID `json:"class_id" validate:"required"`
	Subject string    `json:"subject" validate:"required,min=2,max=200"`
	Body    string    `json:"body" validate:"required,min=1,max=10000"`
	Channel string    `json:"channel" validate:"omitempty,oneof=in_app email"`
}

type ReplyRequest struct {
	Body string `json:"body" validate:"required,min=1,max=10000"`
}

type MessageItem struct {
	model.MessageModel
	SenderName  string  `json:"sender_name"`
	ParentName  string  `json:"parent_name"`
	StudentName *string `json:"student_name,omitempty"`
}

type BroadcastResult struct {
	Total  int `json:"total"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}
