package dto

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	helper "schoolhub_backend/internals/helpers"
)

func TestTermRequestValidation(t *testing.T) {
	v := helper.NewValidator()
	ok := TermRequest{
		SchoolYearID: uuid.New(),
		Name:         "Trimestre 1",
		Type:         "trimester",
		Order:        1,
		StartDate:    "2024-09-02",
		EndDate:      "2024-12-20",
	}
	require.NoError(t, v.Struct(ok))

	bad := ok
	bad.Type = "quarter"
	bad.StartDate = "02/09/2024"
	fields := helper.ValidationFields(v.Struct(bad))
	assert.Contains(t, fields, "type")
	assert.Contains(t, fields, "start_date")
}

func TestSchoolYearDates(t *testing.T) {
	s, e := SchoolYearRequest{StartDate: "2024-09-01", EndDate: "2025-07-31"}.Dates()
	assert.Equal(t, 2024, s.Year())
	assert.Equal(t, 31, e.Day())
}
