package dto

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	helper "schoolhub_backend/internals/helpers"
)

func TestReEnrollRequiresYears(t *testing.T) {
	v := helper.NewValidator()
	fields := helper.ValidationFields(v.Struct(ReEnrollRequest{}))
	assert.Contains(t, fields, "from_school_year_id")
	assert.Contains(t, fields, "to_school_year_id")
	require.NoError(t, v.Struct(ReEnrollRequest{FromYearID: uuid.New(), ToYearID: uuid.New()}))
}

func TestTransferRequestDate(t *testing.T) {
	v := helper.NewValidator()
	bad := "01/09/2025"
	fields := helper.ValidationFields(v.Struct(TransferRequest{NewClassID: uuid.New(), EffectiveDate: &bad}))
	assert.Contains(t, fields, "effective_date")
}
