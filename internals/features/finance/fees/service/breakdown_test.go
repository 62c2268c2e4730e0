package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhub_backend/internals/features/finance/fees/model"
)

func f64(v float64) *float64 { return &v }

func tuition(amount float64, newAmount *float64) FeeLine {
	return FeeLine{
		FeeStructureID:   uuid.New(),
		FeeTypeID:        uuid.New(),
		FeeTypeCode:      "TUITION",
		FeeTypeName:      "Frais de scolarité",
		FeeTypeCategory:  "tuition",
		Amount:           amount,
		NewStudentAmount: newAmount,
	}
}

func TestCalculateBreakdownNewStudentUsesNewAmount(t *testing.T) {
	fee := tuition(150000, f64(200000))
	discounts := []DiscountLine{
		{CalculationType: model.CalcPercentage, Value: 10, MaxAmount: f64(15000)},
		{CalculationType: model.CalcFixed, Value: 5000, CalculatedAmount: 5000},
	}

	out := CalculateBreakdown(true, []FeeLine{fee}, discounts)
	require.Len(t, out, 1)
	assert.Equal(t, 200000.0, out[0].OriginalAmount)
	assert.Equal(t, 15000.0, out[0].DiscountAmount, "capped by max_discount_amount")
	assert.Equal(t, 185000.0, out[0].FinalAmount)
	assert.True(t, out[0].IsNewStudent)
	assert.Equal(t, fee.FeeStructureID, out[0].FeeStructureID)
}

func TestCalculateBreakdownReturningStudent(t *testing.T) {
	out := CalculateBreakdown(false, []FeeLine{tuition(150000, f64(200000))}, []DiscountLine{
		{CalculationType: model.CalcPercentage, Value: 5},
	})
	require.Len(t, out, 1)
	assert.Equal(t, 150000.0, out[0].OriginalAmount)
	assert.Equal(t, 7500.0, out[0].DiscountAmount)
	assert.Equal(t, 142500.0, out[0].FinalAmount)
}

func TestCalculateBreakdownNewStudentWithoutNewAmount(t *testing.T) {
	out := CalculateBreakdown(true, []FeeLine{tuition(90000, nil)}, nil)
	require.Len(t, out, 1)
	assert.Equal(t, 90000.0, out[0].OriginalAmount)
	assert.Zero(t, out[0].DiscountAmount)
	assert.Equal(t, 90000.0, out[0].FinalAmount)
}

func TestCalculateBreakdownDiscountNeverExceedsBase(t *testing.T) {
	out := CalculateBreakdown(false, []FeeLine{tuition(30000, nil)}, []DiscountLine{
		{CalculationType: model.CalcFixed, Value: 50000, CalculatedAmount: 50000},
	})
	require.Len(t, out, 1)
	assert.Equal(t, 30000.0, out[0].DiscountAmount)
	assert.Zero(t, out[0].FinalAmount)
}

func TestCalculateBreakdownAppliesTo(t *testing.T) {
	tu := tuition(100000, nil)
	exam := FeeLine{FeeStructureID: uuid.New(), FeeTypeID: uuid.New(), FeeTypeCode: "EXAM", Amount: 20000}
	onlyTuition := DiscountLine{CalculationType: model.CalcPercentage, Value: 50, AppliesTo: []string{"tuition"}}
	byID := DiscountLine{CalculationType: model.CalcFixed, CalculatedAmount: 1000, AppliesTo: []string{exam.FeeTypeID.String()}}

	out := CalculateBreakdown(false, []FeeLine{tu, exam}, []DiscountLine{onlyTuition, byID})
	require.Len(t, out, 2)
	assert.Equal(t, 50000.0, out[0].DiscountAmount)
	assert.Equal(t, 1000.0, out[1].DiscountAmount)
	assert.Equal(t, 19000.0, out[1].FinalAmount)
}

func TestCalculateBreakdownRoundsInCents(t *testing.T) {
	out := CalculateBreakdown(false, []FeeLine{tuition(333.33, nil)}, []DiscountLine{
		{CalculationType: model.CalcPercentage, Value: 15},
	})
	require.Len(t, out, 1)
	assert.Equal(t, 50.0, out[0].DiscountAmount)
	assert.Equal(t, 283.33, out[0].FinalAmount)

	o, d, f := Totals(out)
	assert.Equal(t, 333.33, o)
	assert.Equal(t, 50.0, d)
	assert.Equal(t, 283.33, f)
}

func TestMatchesPlacement(t *testing.T) {
	g1, g2 := uuid.New(), uuid.New()
	s1, s2 := uuid.New(), uuid.New()

	assert.True(t, MatchesPlacement(&g1, nil, &g1, nil))
	assert.True(t, MatchesPlacement(nil, nil, &g1, nil), "structure without grade applies to every grade")
	assert.False(t, MatchesPlacement(&g2, nil, &g1, nil))
	assert.False(t, MatchesPlacement(&g1, &s1, &g1, nil), "class without series needs structure without series")
	assert.True(t, MatchesPlacement(&g1, &s1, &g1, &s1))
	assert.False(t, MatchesPlacement(&g1, &s2, &g1, &s1))
	assert.False(t, MatchesPlacement(&g1, nil, &g1, &s1), "class with series needs the same series")
}

func TestIsNewStudent(t *testing.T) {
	assert.True(t, IsNewStudent(0))
	assert.True(t, IsNewStudent(1))
	assert.False(t, IsNewStudent(2))
}

func TestCalculatedAmountFor(t *testing.T) {
	assert.Equal(t, 2500.0, CalculatedAmountFor(model.DiscountModel{DiscountCalculationType: model.CalcFixed, DiscountValue: 2500}))
	assert.Zero(t, CalculatedAmountFor(model.DiscountModel{DiscountCalculationType: model.CalcPercentage, DiscountValue: 20}))
}

func TestBuildStudentFeesSkipsExistingPairs(t *testing.T) {
	school, year, grade := uuid.New(), uuid.New(), uuid.New()
	a := studentPlacement{EnrollmentID: uuid.New(), StudentID: uuid.New(), GradeID: &grade}
	b := studentPlacement{EnrollmentID: uuid.New(), StudentID: uuid.New(), GradeID: &grade}

	tu := feeLineRow{FeeStructureID: uuid.New(), FeeTypeID: uuid.New(), FeeTypeCode: "TUITION", Amount: 100000, NewStudentAmount: f64(120000), GradeID: &grade}
	reg := feeLineRow{FeeStructureID: uuid.New(), FeeTypeID: uuid.New(), FeeTypeCode: "REG", Amount: 10000, GradeID: &grade}
	other := feeLineRow{FeeStructureID: uuid.New(), FeeTypeID: uuid.New(), FeeTypeCode: "TUITION", Amount: 1, GradeID: ptrID(uuid.New())}

	counts := map[uuid.UUID]int{a.StudentID: 1, b.StudentID: 3}
	discounts := map[uuid.UUID][]DiscountLine{
		b.StudentID: {{CalculationType: model.CalcPercentage, Value: 10}},
	}
	existing := map[pairKey]bool{{a.StudentID, reg.FeeStructureID}: true}

	rows := buildStudentFees(school, year, []studentPlacement{a, b}, counts, []feeLineRow{tu, reg, other}, discounts, existing)
	require.Len(t, rows, 3)

	assert.Equal(t, a.StudentID, rows[0].StudentFeeStudentID)
	assert.Equal(t, 120000.0, rows[0].StudentFeeFinalAmount, "new student amount")
	assert.Equal(t, rows[0].StudentFeeFinalAmount, rows[0].StudentFeeBalance)
	assert.Equal(t, model.StudentFeePending, rows[0].StudentFeeStatus)
	assert.Equal(t, a.EnrollmentID, *rows[0].StudentFeeEnrollmentID)

	assert.Equal(t, b.StudentID, rows[1].StudentFeeStudentID)
	assert.Equal(t, 100000.0, rows[1].StudentFeeOriginalAmount)
	assert.Equal(t, 10000.0, rows[1].StudentFeeDiscountAmount)
	assert.Equal(t, 90000.0, rows[1].StudentFeeBalance)
	assert.Equal(t, reg.FeeStructureID, rows[2].StudentFeeFeeStructureID)
}

func ptrID(id uuid.UUID) *uuid.UUID { return &id }
