package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	helper "schoolhub_backend/internals/helpers"
)

func TestCreateSchoolRequestValidation(t *testing.T) {
	v := helper.NewValidator()

	ok := CreateSchoolRequest{SchoolName: "Lycée Moderne", SchoolCode: "lm01"}
	require.NoError(t, v.Struct(ok))

	m := ok.ToModel()
	assert.Equal(t, "LM01", m.SchoolCode)
	assert.Equal(t, "active", m.SchoolStatus)
	assert.JSONEq(t, `{}`, string(m.SchoolSettings))

	bad := CreateSchoolRequest{SchoolName: "X", SchoolCode: "a b", SchoolStatus: "closed"}
	fields := helper.ValidationFields(v.Struct(bad))
	assert.Contains(t, fields, "school_name")
	assert.Contains(t, fields, "school_code")
	assert.Contains(t, fields, "school_status")
}

func TestUpdateSchoolRequestOnlySentFields(t *testing.T) {
	code := " ab12 "
	up := UpdateSchoolRequest{SchoolCode: &code}.Updates()
	assert.Equal(t, map[string]any{"school_code": "AB12"}, up)
}
