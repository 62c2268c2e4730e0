package dto

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	helper "schoolhub_backend/internals/helpers"
)

func TestCreateTeacherNeedsUserOrEmail(t *testing.T) {
	v := helper.NewValidator()
	fields := helper.ValidationFields(v.Struct(CreateTeacherRequest{}))
	assert.Contains(t, fields, "user_id")
	assert.Contains(t, fields, "email")

	uid := uuid.New()
	require.NoError(t, v.Struct(CreateTeacherRequest{UserID: &uid}))

	fields = helper.ValidationFields(v.Struct(CreateTeacherRequest{Email: "guru@sekolah.sn"}))
	assert.Contains(t, fields, "full_name")
	require.NoError(t, v.Struct(CreateTeacherRequest{Email: "guru@sekolah.sn", FullName: "Moussa Fall"}))
}

func TestUpdateTeacherUpdates(t *testing.T) {
	d, st := "2021-09-01", "on_leave"
	up := UpdateTeacherRequest{HireDate: &d, Status: &st}.Updates()
	assert.Equal(t, "on_leave", up["teacher_status"])
	assert.Contains(t, up, "teacher_hire_date")
	assert.NotContains(t, up, "teacher_specialization")
}
