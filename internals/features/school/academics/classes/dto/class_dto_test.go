package dto

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	helper "schoolhub_backend/internals/helpers"
)

func TestClassRequestDefaultsAndBounds(t *testing.T) {
	v := helper.NewValidator()
	r := ClassRequest{SchoolYearID: uuid.New(), GradeID: uuid.New(), Section: " a "}
	require.NoError(t, v.Struct(r))
	assert.Equal(t, "A", r.CleanSection())
	assert.Equal(t, 40, r.MaxOrDefault())

	over := 101
	r.MaxStudents = &over
	assert.Contains(t, helper.ValidationFields(v.Struct(r)), "max_students")
}

func TestClassSubjectBounds(t *testing.T) {
	v := helper.NewValidator()
	coef, hours := 21, 41
	fields := helper.ValidationFields(v.Struct(ClassSubjectRequest{SubjectID: uuid.New(), Coefficient: &coef, HoursPerWeek: &hours}))
	assert.Contains(t, fields, "coefficient")
	assert.Contains(t, fields, "hours_per_week")
}
