package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhub_backend/internals/features/school/timetables/dto"
	"schoolhub_backend/internals/features/school/timetables/model"
	"schoolhub_backend/internals/helpers/dbtime"
)

func slot(day int, start, end string, teacher, class uuid.UUID, room *uuid.UUID) model.TimetableSessionModel {
	return model.TimetableSessionModel{
		TimetableSessionID:          uuid.New(),
		TimetableSessionDayOfWeek:   day,
		TimetableSessionStartTime:   dbtime.MustClock(start),
		TimetableSessionEndTime:     dbtime.MustClock(end),
		TimetableSessionTeacherID:   teacher,
		TimetableSessionClassID:     class,
		TimetableSessionClassroomID: room,
	}
}

func types(cs []dto.Conflict) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Type)
	}
	return out
}

func TestDetectConflictsTypes(t *testing.T) {
	teacher, class, room := uuid.New(), uuid.New(), uuid.New()
	existing := []model.TimetableSessionModel{slot(1, "08:00", "10:00", teacher, class, &room)}

	cand := CandidateOf(slot(1, "09:00", "11:00", teacher, class, &room))
	assert.ElementsMatch(t, []string{dto.ConflictTeacher, dto.ConflictClassroom, dto.ConflictClass}, types(DetectConflicts(cand, existing)))

	other := CandidateOf(slot(1, "09:00", "11:00", uuid.New(), uuid.New(), &room))
	assert.Equal(t, []string{dto.ConflictClassroom}, types(DetectConflicts(other, existing)))
}

func TestDetectConflictsBoundaries(t *testing.T) {
	teacher, class := uuid.New(), uuid.New()
	existing := []model.TimetableSessionModel{slot(2, "08:00", "09:00", teacher, class, nil)}

	// bersentuhan di ujung bukan bentrok
	assert.Empty(t, DetectConflicts(CandidateOf(slot(2, "09:00", "10:00", teacher, class, nil)), existing))
	// hari lain
	assert.Empty(t, DetectConflicts(CandidateOf(slot(3, "08:00", "09:00", teacher, class, nil)), existing))
	// tanpa ruang di kedua sisi tidak menghasilkan konflik ruang
	got := DetectConflicts(CandidateOf(slot(2, "08:30", "09:30", uuid.New(), uuid.New(), nil)), existing)
	assert.Empty(t, got)
}

func TestDetectConflictsExcludeSelf(t *testing.T) {
	teacher, class := uuid.New(), uuid.New()
	s := slot(1, "08:00", "10:00", teacher, class, nil)
	assert.Empty(t, DetectConflicts(CandidateOf(s), []model.TimetableSessionModel{s}))
}

func TestDetectConflictsEffectiveRange(t *testing.T) {
	teacher, class := uuid.New(), uuid.New()
	jan := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	old := slot(1, "08:00", "10:00", teacher, class, nil)
	old.TimetableSessionEffectiveUntil = &jan
	next := slot(1, "08:00", "10:00", teacher, class, nil)
	next.TimetableSessionEffectiveFrom = &feb

	assert.Empty(t, DetectConflicts(CandidateOf(next), []model.TimetableSessionModel{old}))

	openEnded := slot(1, "08:00", "10:00", teacher, class, nil)
	assert.NotEmpty(t, DetectConflicts(CandidateOf(openEnded), []model.TimetableSessionModel{old}))
}

func TestAllConflictsPairsOnce(t *testing.T) {
	teacher := uuid.New()
	a := slot(4, "08:00", "09:00", teacher, uuid.New(), nil)
	b := slot(4, "08:30", "09:30", teacher, uuid.New(), nil)
	c := slot(4, "10:00", "11:00", teacher, uuid.New(), nil)

	got := AllConflicts([]model.TimetableSessionModel{a, b, c})
	require.Len(t, got, 1)
	assert.Equal(t, dto.ConflictTeacher, got[0].Type)
	assert.Equal(t, b.TimetableSessionID, got[0].TimetableSessionID)
	require.NotNil(t, got[0].OtherSessionID)
	assert.Equal(t, a.TimetableSessionID, *got[0].OtherSessionID)
}

func TestWeeklyHoursOf(t *testing.T) {
	teacher, class := uuid.New(), uuid.New()
	rows := []model.TimetableSessionModel{
		slot(1, "08:00", "09:30", teacher, class, nil),
		slot(2, "10:00", "11:00", teacher, class, nil),
		slot(3, "13:00", "13:45", teacher, class, nil),
	}
	assert.Equal(t, dto.WeeklyHours{TotalHours: 3, TotalMinutes: 15, SessionCount: 3}, WeeklyHoursOf(rows))
	assert.Equal(t, dto.WeeklyHours{}, WeeklyHoursOf(nil))
}

func TestFreeWindows(t *testing.T) {
	busy := []dto.Slot{
		{StartTime: dbtime.MustClock("10:00"), EndTime: dbtime.MustClock("11:00")},
		{StartTime: dbtime.MustClock("07:00"), EndTime: dbtime.MustClock("08:00")},
		{StartTime: dbtime.MustClock("10:30"), EndTime: dbtime.MustClock("12:00")},
	}
	free := FreeWindows(busy, DayStart, DayEnd)
	require.Len(t, free, 2)
	assert.Equal(t, "08:00", free[0].StartTime.String())
	assert.Equal(t, "10:00", free[0].EndTime.String())
	assert.Equal(t, "12:00", free[1].StartTime.String())
	assert.Equal(t, "18:00", free[1].EndTime.String())

	all := FreeWindows(nil, DayStart, DayEnd)
	require.Len(t, all, 1)
	assert.Equal(t, "07:00", all[0].StartTime.String())
}

func TestSessionDates(t *testing.T) {
	// 2026-03-02 adalah Senin
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	mondays := SessionDates(1, from, to, nil, nil)
	require.Len(t, mondays, 5)
	assert.Equal(t, 2, mondays[0].Day())
	assert.Equal(t, 30, mondays[4].Day())

	until := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	assert.Len(t, SessionDates(1, from, to, nil, &until), 2)

	sundays := SessionDates(7, from, to, nil, nil)
	assert.Equal(t, 1, sundays[0].Day())
}
