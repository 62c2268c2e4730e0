package dto

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/dbtime"
)

func ptr(s string) *string { return &s }

func TestStudentRequestRejectsFutureDOB(t *testing.T) {
	v := helper.NewValidator()
	tomorrow := dbtime.Today().AddDate(0, 0, 1).Format("2006-01-02")
	req := StudentRequest{FirstName: "Awa", LastName: "Diop", DOB: &tomorrow}
	assert.Contains(t, helper.ValidationFields(v.Struct(req)), "dob")

	req.DOB = ptr("2012-03-04")
	require.NoError(t, v.Struct(req))

	req.Gender = ptr("X")
	assert.Contains(t, helper.ValidationFields(v.Struct(req)), "gender")
}

func TestStudentRequestToModel(t *testing.T) {
	sid := uuid.New()
	m := StudentRequest{
		FirstName: " Awa ",
		LastName:  "Diop",
		Matricule: ptr(" dk250001 "),
		DOB:       ptr("2012-03-04"),
		Address:   ptr("   "),
	}.ToModel(sid)

	assert.Equal(t, sid, m.StudentSchoolID)
	assert.Equal(t, "Awa", m.StudentFirstName)
	assert.Equal(t, "DK250001", m.StudentMatricule)
	assert.Equal(t, "active", m.StudentStatus)
	assert.Nil(t, m.StudentAddress)
	require.NotNil(t, m.StudentDOB)
	assert.Equal(t, time.March, m.StudentDOB.Month())
	require.NotNil(t, m.StudentAdmissionDate)
	assert.Equal(t, dbtime.Today(), *m.StudentAdmissionDate)
}

func TestLinkParentNeedsParentOrID(t *testing.T) {
	v := helper.NewValidator()
	fields := helper.ValidationFields(v.Struct(LinkParentRequest{Relationship: "mother"}))
	assert.Contains(t, fields, "parent_id")

	id := uuid.New()
	require.NoError(t, v.Struct(LinkParentRequest{ParentID: &id, Relationship: "mother"}))

	bad := LinkParentRequest{Parent: &ParentRequest{FirstName: "Fatou"}, Relationship: "aunt"}
	fields = helper.ValidationFields(v.Struct(bad))
	assert.Contains(t, fields, "relationship")
	assert.Contains(t, fields, "parent.last_name")
}

func TestParentEmailLowercased(t *testing.T) {
	m := ParentRequest{FirstName: "Fatou", LastName: "Sow", Email: ptr(" Fatou@Mail.SN ")}.ToModel(uuid.New())
	require.NotNil(t, m.ParentEmail)
	assert.Equal(t, "fatou@mail.sn", *m.ParentEmail)
}
