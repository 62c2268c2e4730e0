package service

import (
	"time"

	"schoolhub_backend/internals/features/school/attendance/model"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/dbtime"
)

// RepeatedLatenessCount: batas keterlambatan guru per bulan sebelum jadi alert
const RepeatedLatenessCount = 3

// LateMinutes: menit terlambat relatif ke jam acuan, tidak pernah negatif
func LateMinutes(arrival, reference dbtime.Clock) int {
	if d := arrival.Minutes - reference.Minutes; d > 0 {
		return d
	}
	return 0
}

// LateMinutesFor: menit terlambat hanya untuk status "late"; status yang dikirim
// disimpan apa adanya.
func LateMinutesFor(status string, arrival, reference *dbtime.Clock) int {
	if status != model.StatusLate || arrival == nil || reference == nil {
		return 0
	}
	return LateMinutes(*arrival, *reference)
}

type Counts struct {
	Present int64 `json:"present"`
	Late    int64 `json:"late"`
	Absent  int64 `json:"absent"`
	Excused int64 `json:"excused"`
	OnLeave int64 `json:"on_leave,omitempty"`
}

func (c Counts) Total() int64 { return c.Present + c.Late + c.Absent + c.Excused + c.OnLeave }

// AttendanceRate (siswa): hadir / tercatat · 100
func (c Counts) AttendanceRate() float64 {
	return helper.Percent(float64(c.Present), float64(c.Total()))
}

// PresenceRate (guru): (hadir + telat) / total · 100
func (c Counts) PresenceRate() float64 {
	return helper.Percent(float64(c.Present+c.Late), float64(c.Total()))
}

// PunctualityRate: hadir / (hadir + telat) · 100; 100 kalau belum ada hari masuk
func (c Counts) PunctualityRate() float64 {
	if c.Present+c.Late == 0 {
		return 100
	}
	return helper.Percent(float64(c.Present), float64(c.Present+c.Late))
}

func CountStatuses(statuses []string) Counts {
	var c Counts
	for _, s := range statuses {
		switch s {
		case model.StatusPresent:
			c.Present++
		case model.StatusLate:
			c.Late++
		case model.StatusAbsent:
			c.Absent++
		case model.StatusExcused:
			c.Excused++
		case model.StatusOnLeave:
			c.OnLeave++
		}
	}
	return c
}

// SchoolDays: jumlah hari kerja di [from, to]
func SchoolDays(from, to time.Time, workingDays []int64) int {
	if len(workingDays) == 0 {
		workingDays = []int64{1, 2, 3, 4, 5}
	}
	set := map[int]bool{}
	for _, d := range workingDays {
		set[int(d)] = true
	}
	n := 0
	for d := dbtime.DateOnly(from); !d.After(dbtime.DateOnly(to)); d = d.AddDate(0, 0, 1) {
		if set[dbtime.ISOWeekday(d)] {
			n++
		}
	}
	return n
}

// AbsenceRate: absen tanpa izin / hari sekolah · 100
func AbsenceRate(absences int64, schoolDays int) float64 {
	return helper.Percent(float64(absences), float64(schoolDays))
}

// IsChronic: rate di atas ambang (bukan sama dengan)
func IsChronic(rate, threshold float64) bool { return rate > threshold }

func ChronicSeverity(rate, threshold float64) string {
	if threshold > 0 && rate >= threshold*2 {
		return model.SeverityHigh
	}
	return model.SeverityMedium
}

func LatenessSeverity(count int64) string {
	if count >= RepeatedLatenessCount+2 {
		return model.SeverityHigh
	}
	return model.SeverityMedium
}
