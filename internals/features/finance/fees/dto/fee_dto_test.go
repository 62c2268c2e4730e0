package dto

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhub_backend/internals/features/finance/fees/model"
	helper "schoolhub_backend/internals/helpers"
)

func TestFeeStructureRequestDefaults(t *testing.T) {
	n := 120000.004
	req := FeeStructureRequest{
		FeeTypeID:        uuid.New(),
		SchoolYearID:     uuid.New(),
		Amount:           99999.999,
		NewStudentAmount: &n,
	}
	m, ok := req.ToModel(uuid.New())
	require.True(t, ok)
	assert.Equal(t, model.DefaultCurrency, m.FeeStructureCurrency)
	assert.Equal(t, 100000.0, m.FeeStructureAmount)
	assert.Equal(t, 120000.0, *m.FeeStructureNewStudentAmount)
	assert.Nil(t, m.FeeStructureGradeID)
}

func TestFeeStructureRequestRejectsInvertedRange(t *testing.T) {
	from, to := "2026-09-01", "2026-08-01"
	req := FeeStructureRequest{FeeTypeID: uuid.New(), SchoolYearID: uuid.New(), Amount: 1, EffectiveFrom: &from, EffectiveTo: &to}
	_, ok := req.ToModel(uuid.New())
	assert.False(t, ok)
}

func TestDiscountRequestToModel(t *testing.T) {
	req := DiscountRequest{
		Code:            " fratrie ",
		Name:            "Réduction fratrie",
		Type:            "sibling",
		CalculationType: model.CalcPercentage,
		Value:           15,
		AppliesTo:       []string{"TUITION"},
	}
	m, ok := req.ToModel(uuid.New())
	require.True(t, ok)
	assert.Equal(t, "FRATRIE", m.DiscountCode)
	assert.Equal(t, model.StatusActive, m.DiscountStatus)
	assert.Equal(t, pq.StringArray{"TUITION"}, m.DiscountAppliesTo)

	req.AppliesTo = nil
	m, _ = req.ToModel(uuid.New())
	assert.Nil(t, m.DiscountAppliesTo, "no list means every fee type")

	req.Value = 120
	_, ok = req.ToModel(uuid.New())
	assert.False(t, ok, "percentage above 100")

	req.CalculationType = model.CalcFixed
	_, ok = req.ToModel(uuid.New())
	assert.True(t, ok)
}

func TestDiscountRequestValidation(t *testing.T) {
	v := helper.NewValidator()
	err := v.Struct(DiscountRequest{Code: "X", Type: "loyalty", CalculationType: "ratio"})
	require.Error(t, err)
	fields := helper.ValidationFields(err)
	assert.Contains(t, fields, "code")
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "type")
	assert.Contains(t, fields, "calculation_type")
	assert.Contains(t, fields, "value")
}

func TestFeeTypeRequestMandatoryDefault(t *testing.T) {
	m := FeeTypeRequest{Code: "exam", Name: "Examen", Category: "exam"}.ToModel(uuid.New())
	assert.True(t, m.FeeTypeIsMandatory)
	assert.Equal(t, "EXAM", m.FeeTypeCode)

	no := false
	m = FeeTypeRequest{Code: "bus", Name: "Transport", Category: "transport", IsMandatory: &no}.ToModel(uuid.New())
	assert.False(t, m.FeeTypeIsMandatory)
}

func TestFeeStructureUpdateRequest(t *testing.T) {
	amt := 5000.0
	u, ok := FeeStructureUpdateRequest{Amount: &amt}.Updates()
	require.True(t, ok)
	assert.Equal(t, map[string]any{"fee_structure_amount": 5000.0}, u)
}
