// file: internals/helpers/dbtime/dates.go
package dbtime

import (
	"os"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var schoolLoc *time.Location

// SchoolLocation: zona waktu operasional (APP_TZ), default Africa/Abidjan (UTC+0).
func SchoolLocation() *time.Location {
	if schoolLoc != nil {
		return schoolLoc
	}
	name := strings.TrimSpace(os.Getenv("APP_TZ"))
	if name == "" {
		name = "Africa/Abidjan"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		loc = time.UTC
	}
	schoolLoc = loc
	return loc
}

// ParseDate "YYYY-MM-DD" → tengah malam UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// DateOnly membuang jam, menit, dst.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func Today() time.Time {
	return DateOnly(time.Now().In(SchoolLocation()))
}

// ISOWeekday: Senin=1 … Minggu=7
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// DaysBetween: jumlah hari kalender dari a ke b (b-a), bisa negatif.
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}

// MonthRange: [awal bulan, awal bulan berikutnya)
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
