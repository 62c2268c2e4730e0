package dto

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhub_backend/internals/features/school/curriculum/model"
	helper "schoolhub_backend/internals/helpers"
)

func TestClassSessionRequestToModel(t *testing.T) {
	req := ClassSessionRequest{
		ClassID: uuid.New(), SubjectID: uuid.New(), TeacherID: uuid.New(),
		Date: "2026-10-05", StartTime: "08:00", EndTime: "09:30",
	}
	m, ok := req.ToModel(uuid.New())
	require.True(t, ok)
	assert.Equal(t, model.SessionScheduled, m.ClassSessionStatus)
	assert.Equal(t, "08:00", m.ClassSessionStartTime.String())
	assert.Equal(t, 5, m.ClassSessionDate.Day())

	req.EndTime = "08:00"
	_, ok = req.ToModel(uuid.New())
	assert.False(t, ok)
}

func TestChapterRequestValidation(t *testing.T) {
	v := helper.NewValidator()
	err := v.Struct(ChapterRequest{Title: "x"})
	require.Error(t, err)
	fields := helper.ValidationFields(err)
	assert.Contains(t, fields, "subject_id")
	assert.Contains(t, fields, "order")
	assert.Contains(t, fields, "title")
}

func TestChapterUpdateRequestUpdates(t *testing.T) {
	title := "  Fractions "
	u := ChapterUpdateRequest{Title: &title}.Updates()
	assert.Equal(t, map[string]any{"program_chapter_title": "Fractions"}, u)
	assert.Empty(t, ChapterUpdateRequest{}.Updates())
}
