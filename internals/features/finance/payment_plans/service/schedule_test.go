package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhub_backend/internals/features/finance/payment_plans/model"
	helper "schoolhub_backend/internals/helpers"
)

func thirds() []model.ScheduleItem {
	return []model.ScheduleItem{
		{Number: 3, Percentage: 33.33, DueDaysFromStart: 120},
		{Number: 1, Percentage: 33.33, DueDaysFromStart: 0, Label: "Inscription"},
		{Number: 2, Percentage: 33.34, DueDaysFromStart: 60},
	}
}

func TestValidateSchedule(t *testing.T) {
	require.NoError(t, ValidateSchedule(3, thirds()))

	err := ValidateSchedule(2, thirds())
	require.Error(t, err)
	assert.ErrorIs(t, err, helper.ErrBadRequest)

	bad := thirds()
	bad[0].Percentage = 30
	assert.ErrorIs(t, ValidateSchedule(3, bad), helper.ErrBadRequest, "sum 96.66")

	dup := thirds()
	dup[0].Number = 1
	assert.ErrorIs(t, ValidateSchedule(3, dup), helper.ErrBadRequest)

	zero := []model.ScheduleItem{{Number: 1, Percentage: 100}, {Number: 2, Percentage: 0}}
	assert.ErrorIs(t, ValidateSchedule(2, zero), helper.ErrBadRequest)
}

func TestValidateScheduleTolerance(t *testing.T) {
	items := []model.ScheduleItem{{Number: 1, Percentage: 50}, {Number: 2, Percentage: 49.995}}
	assert.NoError(t, ValidateSchedule(2, items))
}

func TestBuildInstallmentsRemainderOnLast(t *testing.T) {
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	insts := BuildInstallments(uuid.New(), uuid.New(), 100000, start, thirds())
	require.Len(t, insts, 3)

	assert.Equal(t, 1, insts[0].InstallmentNumber)
	assert.Equal(t, "Inscription", *insts[0].InstallmentLabel)
	assert.Equal(t, "Versement 2", *insts[1].InstallmentLabel)

	assert.Equal(t, 33330.0, insts[0].InstallmentAmount)
	assert.Equal(t, 33340.0, insts[1].InstallmentAmount)
	assert.Equal(t, 33330.0, insts[2].InstallmentAmount)

	var sum int64
	for _, in := range insts {
		sum += helper.ToCents(in.InstallmentAmount)
		assert.Equal(t, in.InstallmentAmount, in.InstallmentBalance)
		assert.Equal(t, model.InstallmentPending, in.InstallmentStatus)
	}
	assert.Equal(t, helper.ToCents(100000), sum)

	assert.Equal(t, start, insts[0].InstallmentDueDate)
	assert.Equal(t, time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC), insts[1].InstallmentDueDate)
	assert.Equal(t, time.Date(2026, 12, 30, 0, 0, 0, 0, time.UTC), insts[2].InstallmentDueDate)
}

func TestBuildInstallmentsOddCents(t *testing.T) {
	items := []model.ScheduleItem{
		{Number: 1, Percentage: 33.33},
		{Number: 2, Percentage: 33.33},
		{Number: 3, Percentage: 33.34},
	}
	insts := BuildInstallments(uuid.New(), uuid.New(), 100.01, time.Now(), items)
	var sum int64
	for _, in := range insts {
		sum += helper.ToCents(in.InstallmentAmount)
	}
	assert.Equal(t, int64(10001), sum)
}

func TestDaysOverdue(t *testing.T) {
	due := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, DaysOverdue(due, due))
	assert.Equal(t, 0, DaysOverdue(due, due.AddDate(0, 0, -3)))
	assert.Equal(t, 18, DaysOverdue(due, time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)))
}

func TestIsOverdueCandidate(t *testing.T) {
	today := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	past := today.AddDate(0, 0, -1)

	cases := []struct {
		status string
		due    time.Time
		want   bool
	}{
		{model.InstallmentPending, past, true},
		{model.InstallmentPartial, past, true},
		{model.InstallmentOverdue, past, true},
		{model.InstallmentPaid, past, false},
		{model.InstallmentWaived, past, false},
		{model.InstallmentPending, today, false},
	}
	for _, tc := range cases {
		inst := model.InstallmentModel{InstallmentStatus: tc.status, InstallmentDueDate: tc.due}
		assert.Equal(t, tc.want, IsOverdueCandidate(inst, today), tc.status)
	}
}
