package dto

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhub_backend/internals/features/school/attendance/model"
	helper "schoolhub_backend/internals/helpers"
)

func TestSettingsApplyPartial(t *testing.T) {
	s := model.DefaultSettings(uuid.New())
	arrival := "07:45"
	late := 20
	require.NoError(t, SettingsRequest{TeacherExpectedArrival: &arrival, TeacherLateThreshold: &late}.Apply(&s))

	assert.Equal(t, "07:45", s.AttendanceSettingsTeacherExpectedArrival.String())
	assert.Equal(t, 20, s.AttendanceSettingsTeacherLateThreshold)
	assert.Equal(t, 10, s.AttendanceSettingsStudentLateThreshold)
	assert.Equal(t, pq.Int64Array{1, 2, 3, 4, 5}, s.AttendanceSettingsWorkingDays)

	require.NoError(t, SettingsRequest{WorkingDays: []int64{1, 2, 3, 4, 5, 6}}.Apply(&s))
	assert.Len(t, s.AttendanceSettingsWorkingDays, 6)
}

func TestBulkSaveRequestValidation(t *testing.T) {
	v := helper.NewValidator()
	req := BulkSaveRequest{
		ClassID: uuid.New(),
		Date:    "2025-10-06",
		Records: []StudentRecord{{EnrollmentID: uuid.New(), Status: "sick"}},
	}
	err := v.Struct(req)
	require.Error(t, err)
	assert.Contains(t, helper.ValidationFields(err), "records[0].status")

	req.Records[0].Status = "late"
	assert.NoError(t, v.Struct(req))

	req.Date = "2999-01-01"
	assert.Error(t, v.Struct(req))
}
