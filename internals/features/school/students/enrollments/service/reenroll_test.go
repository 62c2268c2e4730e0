package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhub_backend/internals/features/school/students/enrollments/model"
)

func TestPlanReEnrollMapsGradesAndRolls(t *testing.T) {
	school, toYear := uuid.New(), uuid.New()
	g6, g5 := uuid.New(), uuid.New()
	target := uuid.New()

	s1, s2, s3 := uuid.New(), uuid.New(), uuid.New()
	prev := []PrevEnrollment{
		{EnrollmentID: uuid.New(), StudentID: s1, GradeID: g6},
		{EnrollmentID: uuid.New(), StudentID: s2, GradeID: g6},
		{EnrollmentID: uuid.New(), StudentID: s3, GradeID: g6},
	}
	targets := []TargetClass{{ClassID: target, GradeID: g5, MaxStudents: 40, MaxRoll: 7}}
	mapping := map[string]uuid.UUID{g6.String(): g5}
	already := map[uuid.UUID]bool{s2: true}

	now := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	rows, res := PlanReEnroll(school, toYear, prev, already, targets, mapping, false, now)

	assert.Equal(t, 2, res.Success)
	assert.Equal(t, 1, res.Skipped)
	assert.Empty(t, res.Errors)
	require.Len(t, rows, 2)
	assert.Equal(t, 8, *rows[0].EnrollmentRollNumber)
	assert.Equal(t, 9, *rows[1].EnrollmentRollNumber)
	assert.Equal(t, target, rows[0].EnrollmentClassID)
	assert.Equal(t, model.EnrollmentPending, rows[0].EnrollmentStatus)
	assert.Equal(t, prev[0].EnrollmentID, *rows[0].EnrollmentPreviousID)
	assert.Nil(t, rows[0].EnrollmentConfirmedAt)
}

func TestPlanReEnrollMissingClassAndCapacity(t *testing.T) {
	school, toYear := uuid.New(), uuid.New()
	g, serie := uuid.New(), uuid.New()
	target := uuid.New()
	prev := []PrevEnrollment{
		{EnrollmentID: uuid.New(), StudentID: uuid.New(), GradeID: g},
		{EnrollmentID: uuid.New(), StudentID: uuid.New(), GradeID: g},
		{EnrollmentID: uuid.New(), StudentID: uuid.New(), GradeID: g, SeriesID: &serie},
	}
	targets := []TargetClass{{ClassID: target, GradeID: g, MaxStudents: 1}}

	rows, res := PlanReEnroll(school, toYear, prev, nil, targets, nil, true, time.Now())
	require.Len(t, rows, 1)
	assert.Equal(t, model.EnrollmentConfirmed, rows[0].EnrollmentStatus)
	assert.NotNil(t, rows[0].EnrollmentConfirmedAt)
	assert.Equal(t, 1, res.Success)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, prev[1].StudentID, res.Errors[0].StudentID)
	assert.Equal(t, prev[2].StudentID, res.Errors[1].StudentID)
}
