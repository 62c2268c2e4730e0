package dto

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhub_backend/internals/features/school/grades/student_grades/model"
	helper "schoolhub_backend/internals/helpers"
)

func validCreate() CreateGradeRequest {
	v := 13.456
	return CreateGradeRequest{
		StudentID: uuid.New(),
		ClassID:   uuid.New(),
		SubjectID: uuid.New(),
		TermID:    uuid.New(),
		Value:     &v,
		Type:      model.GradeTypeTest,
		GradeDate: "2025-01-10",
	}
}

func TestCreateGradeValidation(t *testing.T) {
	v := helper.NewValidator()
	require.NoError(t, v.Struct(validCreate()))

	tooHigh := validCreate()
	x := 20.5
	tooHigh.Value = &x
	assert.Contains(t, helper.ValidationFields(v.Struct(tooHigh)), "value")

	zero := validCreate()
	z := 0.0
	zero.Value = &z
	require.NoError(t, v.Struct(zero))

	future := validCreate()
	future.GradeDate = time.Now().AddDate(0, 0, 3).Format("2006-01-02")
	assert.Contains(t, helper.ValidationFields(v.Struct(future)), "grade_date")

	badType := validCreate()
	badType.Type = "oral"
	assert.Contains(t, helper.ValidationFields(v.Struct(badType)), "type")

	heavy := validCreate()
	w := 11
	heavy.Weight = &w
	assert.Contains(t, helper.ValidationFields(v.Struct(heavy)), "weight")
}

func TestToModelDefaults(t *testing.T) {
	school, teacher := uuid.New(), uuid.New()
	m, err := validCreate().ToModel(school, teacher)
	require.NoError(t, err)
	assert.Equal(t, 13.46, m.StudentGradeValue)
	assert.Equal(t, 1, m.StudentGradeWeight)
	assert.Equal(t, model.GradeStatusDraft, m.StudentGradeStatus)
	assert.Equal(t, teacher, m.StudentGradeTeacherID)
	assert.Equal(t, 10, m.StudentGradeDate.Day())
}

func TestRejectNeedsReason(t *testing.T) {
	v := helper.NewValidator()
	req := StatusUpdateRequest{GradeIDs: []uuid.UUID{uuid.New()}, Status: model.GradeStatusRejected}
	assert.Contains(t, helper.ValidationFields(v.Struct(req)), "reason")

	req.Status = model.GradeStatusValidated
	require.NoError(t, v.Struct(req))
}

func TestBulkEntryInheritsDescription(t *testing.T) {
	d := "Devoir 1"
	val := 12.0
	bulk := BulkGradesRequest{ClassID: uuid.New(), Type: model.GradeTypeHomework, Description: &d, GradeDate: "2025-01-10"}
	e := bulk.Entry(BulkGradeEntry{StudentID: uuid.New(), Value: &val})
	assert.Equal(t, &d, e.Description)
	assert.Equal(t, bulk.ClassID, e.ClassID)

	own := "rattrapage"
	e = bulk.Entry(BulkGradeEntry{StudentID: uuid.New(), Value: &val, Description: &own})
	assert.Equal(t, "rattrapage", *e.Description)
}

func TestUpdatesOnlySetFields(t *testing.T) {
	v := 9.999
	upd, err := UpdateGradeRequest{Value: &v}.Updates()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"student_grade_value": 10.0}, upd)
}
