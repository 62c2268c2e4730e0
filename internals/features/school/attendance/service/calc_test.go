package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"schoolhub_backend/internals/features/school/attendance/model"
	"schoolhub_backend/internals/helpers/dbtime"
)

func clockPtr(s string) *dbtime.Clock {
	c := dbtime.MustClock(s)
	return &c
}

func TestLateMinutes(t *testing.T) {
	assert.Equal(t, 12, LateMinutes(dbtime.MustClock("08:12"), dbtime.MustClock("08:00")))
	assert.Equal(t, 0, LateMinutes(dbtime.MustClock("07:55"), dbtime.MustClock("08:00")))
}

func TestLateMinutesFor(t *testing.T) {
	start := clockPtr("08:00")

	assert.Equal(t, 7, LateMinutesFor(model.StatusLate, clockPtr("08:07"), start))

	// hadir tetap hadir walau datang lewat ambang; menit telat tidak dicatat
	assert.Zero(t, LateMinutesFor(model.StatusPresent, clockPtr("08:25"), start))

	assert.Zero(t, LateMinutesFor(model.StatusLate, nil, start))
	assert.Zero(t, LateMinutesFor(model.StatusLate, clockPtr("07:50"), start))
	assert.Zero(t, LateMinutesFor(model.StatusAbsent, clockPtr("09:00"), start))
}

func TestCountsRates(t *testing.T) {
	c := CountStatuses([]string{"present", "present", "present", "late", "absent", "excused", "bogus"})
	assert.Equal(t, Counts{Present: 3, Late: 1, Absent: 1, Excused: 1}, c)
	assert.Equal(t, 50.0, c.AttendanceRate())
	assert.Equal(t, 66.67, c.PresenceRate())
	assert.Equal(t, 75.0, c.PunctualityRate())

	var empty Counts
	assert.Equal(t, 0.0, empty.AttendanceRate())
	assert.Equal(t, 100.0, empty.PunctualityRate())
}

func TestSchoolDaysAndAbsence(t *testing.T) {
	// 2026-10-05 Senin s/d 2026-10-18 Minggu: dua minggu penuh
	from := time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 10, SchoolDays(from, to, nil))
	assert.Equal(t, 12, SchoolDays(from, to, []int64{1, 2, 3, 4, 5, 6}))

	rate := AbsenceRate(2, 10)
	assert.Equal(t, 20.0, rate)
	assert.True(t, IsChronic(rate, 10))
	assert.False(t, IsChronic(10, 10))
	assert.Equal(t, model.SeverityHigh, ChronicSeverity(rate, 10))
	assert.Equal(t, model.SeverityMedium, ChronicSeverity(12, 10))
	assert.Equal(t, model.SeverityMedium, LatenessSeverity(3))
	assert.Equal(t, model.SeverityHigh, LatenessSeverity(5))
}
