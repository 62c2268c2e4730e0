package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"schoolhub_backend/internals/features/school/timetables/dto"
	"schoolhub_backend/internals/features/school/timetables/model"
	"schoolhub_backend/internals/helpers/dbtime"
)

// Candidate: slot yang mau dicek; field nil = dimensi itu tidak dicek
type Candidate struct {
	ExcludeID   *uuid.UUID
	DayOfWeek   int
	Start       dbtime.Clock
	End         dbtime.Clock
	TeacherID   *uuid.UUID
	ClassroomID *uuid.UUID
	ClassID     *uuid.UUID
	From        *time.Time
	Until       *time.Time
}

func CandidateOf(m model.TimetableSessionModel) Candidate {
	c := Candidate{
		DayOfWeek:   m.TimetableSessionDayOfWeek,
		Start:       m.TimetableSessionStartTime,
		End:         m.TimetableSessionEndTime,
		TeacherID:   &m.TimetableSessionTeacherID,
		ClassroomID: m.TimetableSessionClassroomID,
		ClassID:     &m.TimetableSessionClassID,
		From:        m.TimetableSessionEffectiveFrom,
		Until:       m.TimetableSessionEffectiveUntil,
	}
	if m.TimetableSessionID != uuid.Nil {
		id := m.TimetableSessionID
		c.ExcludeID = &id
	}
	return c
}

// periodsOverlap: rentang berlaku (nil = terbuka) saling beririsan
func periodsOverlap(aFrom, aUntil, bFrom, bUntil *time.Time) bool {
	if aUntil != nil && bFrom != nil && aUntil.Before(*bFrom) {
		return false
	}
	if bUntil != nil && aFrom != nil && bUntil.Before(*aFrom) {
		return false
	}
	return true
}

func sameID(a *uuid.UUID, b uuid.UUID) bool { return a != nil && *a == b }

func conflictOf(typ string, s model.TimetableSessionModel, msg string) dto.Conflict {
	return dto.Conflict{
		Type:               typ,
		TimetableSessionID: s.TimetableSessionID,
		DayOfWeek:          s.TimetableSessionDayOfWeek,
		StartTime:          s.TimetableSessionStartTime,
		EndTime:            s.TimetableSessionEndTime,
		ClassID:            s.TimetableSessionClassID,
		TeacherID:          s.TimetableSessionTeacherID,
		ClassroomID:        s.TimetableSessionClassroomID,
		Message:            msg,
	}
}

// DetectConflicts: bentrok kalau hari sama dan start1 < end2 && start2 < end1.
// Satu sesi bisa menghasilkan beberapa konflik (guru, ruang, kelas).
func DetectConflicts(c Candidate, existing []model.TimetableSessionModel) []dto.Conflict {
	out := []dto.Conflict{}
	for _, s := range existing {
		if c.ExcludeID != nil && *c.ExcludeID == s.TimetableSessionID {
			continue
		}
		if s.TimetableSessionDayOfWeek != c.DayOfWeek {
			continue
		}
		if !dbtime.Overlaps(c.Start, c.End, s.TimetableSessionStartTime, s.TimetableSessionEndTime) {
			continue
		}
		if !periodsOverlap(c.From, c.Until, s.TimetableSessionEffectiveFrom, s.TimetableSessionEffectiveUntil) {
			continue
		}
		slot := fmt.Sprintf("%s-%s", s.TimetableSessionStartTime, s.TimetableSessionEndTime)
		if sameID(c.TeacherID, s.TimetableSessionTeacherID) {
			out = append(out, conflictOf(dto.ConflictTeacher, s, "Guru sudah mengajar pada "+slot))
		}
		if c.ClassroomID != nil && s.TimetableSessionClassroomID != nil && *c.ClassroomID == *s.TimetableSessionClassroomID {
			out = append(out, conflictOf(dto.ConflictClassroom, s, "Ruangan sudah dipakai pada "+slot))
		}
		if sameID(c.ClassID, s.TimetableSessionClassID) {
			out = append(out, conflictOf(dto.ConflictClass, s, "Kelas sudah punya jadwal pada "+slot))
		}
	}
	return out
}

// AllConflicts: cek berpasangan seluruh sesi satu tahun ajaran, tiap pasangan sekali
func AllConflicts(sessions []model.TimetableSessionModel) []dto.Conflict {
	out := []dto.Conflict{}
	for i := range sessions {
		c := CandidateOf(sessions[i])
		for _, cf := range DetectConflicts(c, sessions[i+1:]) {
			other := sessions[i].TimetableSessionID
			cf.OtherSessionID = &other
			out = append(out, cf)
		}
	}
	return out
}

// WeeklyHoursOf: total menit → {jam, sisa menit, jumlah sesi}
func WeeklyHoursOf(sessions []model.TimetableSessionModel) dto.WeeklyHours {
	total := 0
	for _, s := range sessions {
		total += s.TimetableSessionEndTime.Minutes - s.TimetableSessionStartTime.Minutes
	}
	return dto.WeeklyHours{TotalHours: total / 60, TotalMinutes: total % 60, SessionCount: len(sessions)}
}

// FreeWindows: celah kosong di antara slot sibuk dalam jam operasional
func FreeWindows(busy []dto.Slot, dayStart, dayEnd dbtime.Clock) []dto.Slot {
	sorted := append([]dto.Slot(nil), busy...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartTime.Before(sorted[j].StartTime) })

	free := []dto.Slot{}
	cursor := dayStart
	for _, b := range sorted {
		if cursor.Before(b.StartTime) {
			end := b.StartTime
			if dayEnd.Before(end) {
				end = dayEnd
			}
			if cursor.Before(end) {
				free = append(free, dto.Slot{StartTime: cursor, EndTime: end})
			}
		}
		if cursor.Before(b.EndTime) {
			cursor = b.EndTime
		}
	}
	if cursor.Before(dayEnd) {
		free = append(free, dto.Slot{StartTime: cursor, EndTime: dayEnd})
	}
	return free
}

// SessionDates: tanggal dalam [from,to] yang jatuh di hari slot dan masih dalam masa berlaku
func SessionDates(day int, from, to time.Time, effFrom, effUntil *time.Time) []time.Time {
	out := []time.Time{}
	for d := dbtime.DateOnly(from); !d.After(dbtime.DateOnly(to)); d = d.AddDate(0, 0, 1) {
		if dbtime.ISOWeekday(d) != day {
			continue
		}
		if effFrom != nil && d.Before(dbtime.DateOnly(*effFrom)) {
			continue
		}
		if effUntil != nil && d.After(dbtime.DateOnly(*effUntil)) {
			continue
		}
		out = append(out, d)
	}
	return out
}
