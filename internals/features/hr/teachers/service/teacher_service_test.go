package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhub_backend/internals/features/hr/teachers/dto"
)

func TestMergeHomeroom(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	math := "Mathématiques"
	taught := []dto.TeacherClassItem{{ClassID: a, ClassName: "6e A", SubjectName: &math, HoursPerWeek: 4}}
	homeroom := []dto.TeacherClassItem{{ClassID: a, ClassName: "6e A"}, {ClassID: b, ClassName: "5e B"}}

	got := MergeHomeroom(taught, homeroom)
	require.Len(t, got, 2)
	assert.True(t, got[0].IsHomeroom)
	assert.Equal(t, 4, got[0].HoursPerWeek)
	assert.Equal(t, b, got[1].ClassID)
	assert.True(t, got[1].IsHomeroom)
	assert.Nil(t, got[1].SubjectName)
}

func TestMergeHomeroomWithoutHomeroom(t *testing.T) {
	taught := []dto.TeacherClassItem{{ClassID: uuid.New()}}
	got := MergeHomeroom(taught, nil)
	require.Len(t, got, 1)
	assert.False(t, got[0].IsHomeroom)
}
