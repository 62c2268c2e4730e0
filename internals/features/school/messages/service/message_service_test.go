package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"schoolhub_backend/internals/features/school/messages/dto"
	"schoolhub_backend/internals/features/school/messages/model"
)

func TestIsRecipientToParent(t *testing.T) {
	staff, parentUser, other := uuid.New(), uuid.New(), uuid.New()
	m := model.MessageModel{MessageSenderUserID: staff, MessageDirection: model.DirectionToParent}

	assert.True(t, IsRecipient(m, parentUser, &parentUser))
	assert.False(t, IsRecipient(m, staff, &parentUser))
	assert.False(t, IsRecipient(m, other, &parentUser))
	assert.False(t, IsRecipient(m, parentUser, nil), "orang tua tanpa akun tidak bisa membaca di aplikasi")

	assert.True(t, IsParticipant(m, staff, &parentUser))
	assert.False(t, IsParticipant(m, other, &parentUser))
}

func TestIsRecipientFromParent(t *testing.T) {
	staff, parentUser := uuid.New(), uuid.New()
	m := model.MessageModel{
		MessageSenderUserID:    parentUser,
		MessageRecipientUserID: &staff,
		MessageDirection:       model.DirectionFromParent,
	}
	assert.True(t, IsRecipient(m, staff, &parentUser))
	assert.False(t, IsRecipient(m, parentUser, &parentUser))
	assert.True(t, IsParticipant(m, parentUser, &parentUser))
}

func TestThreadRoot(t *testing.T) {
	root := model.MessageModel{MessageID: uuid.New()}
	assert.Equal(t, root.MessageID, root.ThreadRoot())

	rid := root.MessageID
	reply := model.MessageModel{MessageID: uuid.New(), MessageParentMessageID: &rid}
	assert.Equal(t, rid, reply.ThreadRoot())
}

func TestSendRequestDefaultsToInApp(t *testing.T) {
	school, sender := uuid.New(), uuid.New()
	m := dto.SendRequest{ParentID: uuid.New(), Subject: " Réunion ", Body: "Bonjour"}.ToModel(school, sender)
	assert.Equal(t, model.ChannelInApp, m.MessageChannel)
	assert.Equal(t, model.StatusSent, m.MessageStatus)
	assert.Equal(t, model.DirectionToParent, m.MessageDirection)
	assert.Equal(t, "Réunion", m.MessageSubject)
}

func TestParentInfoName(t *testing.T) {
	assert.Equal(t, "Awa Diallo", parentInfo{ParentFirstName: "Awa", ParentLastName: "Diallo"}.name())
	assert.Equal(t, "Awa", parentInfo{ParentFirstName: "Awa"}.name())
}
