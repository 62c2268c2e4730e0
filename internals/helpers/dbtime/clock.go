// file: internals/helpers/dbtime/clock.go
package dbtime

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Clock: jam dinding "HH:MM" (tanpa tanggal & zona), disimpan sebagai TIME di Postgres.
type Clock struct {
	Minutes int // menit sejak 00:00
}

func NewClock(hour, minute int) Clock { return Clock{Minutes: hour*60 + minute} }

// ParseClock menerima "HH:MM" atau "HH:MM:SS" (detik diabaikan).
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	if len(s) == 5 {
		s += ":00"
	}
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return Clock{}, fmt.Errorf("format jam harus HH:MM: %q", s)
	}
	return NewClock(t.Hour(), t.Minute()), nil
}

func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Minutes/60, c.Minutes%60)
}

func (c Clock) Before(o Clock) bool { return c.Minutes < o.Minutes }

// Overlaps: [aStart,aEnd) dan [bStart,bEnd) beririsan.
// Bersentuhan di ujung (08:00-09:00 vs 09:00-10:00) tidak dihitung bentrok.
func Overlaps(aStart, aEnd, bStart, bEnd Clock) bool {
	return aStart.Minutes < bEnd.Minutes && bStart.Minutes < aEnd.Minutes
}

// Scan: terima time.Time atau string dari driver.
func (c *Clock) Scan(v any) error {
	switch x := v.(type) {
	case time.Time:
		*c = NewClock(x.Hour(), x.Minute())
		return nil
	case []byte:
		return c.scanString(string(x))
	case string:
		return c.scanString(x)
	case nil:
		*c = Clock{}
		return nil
	default:
		return fmt.Errorf("clock: unsupported Scan type %T", v)
	}
}

func (c *Clock) scanString(s string) error {
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value: kirim "HH:MM:00" agar Postgres TIME paham
func (c Clock) Value() (driver.Value, error) {
	return c.String() + ":00", nil
}

func (Clock) GormDataType() string { return "time" }

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Clock) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return c.scanString(s)
}
