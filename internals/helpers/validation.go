// file: internals/helpers/validation.go
package helper

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"schoolhub_backend/internals/helpers/dbtime"
)

// NewValidator: validator standar + tag kustom:
//   - notfuture : tanggal "YYYY-MM-DD" (string/*string/time.Time) tidak boleh di masa depan
//   - hhmm      : jam "HH:MM"
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// pakai nama json di pesan error (fallback ke nama field)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notfuture", validateNotFuture)
	_ = v.RegisterValidation("hhmm", validateHHMM)
	return v
}

func validateNotFuture(fl validator.FieldLevel) bool {
	today := dbtime.Today()
	switch v := fl.Field().Interface().(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return true
		}
		d, err := dbtime.ParseDate(v)
		return err == nil && !d.After(today)
	case time.Time:
		return v.IsZero() || !dbtime.DateOnly(v).After(today)
	}
	return false
}

func validateHHMM(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	if strings.TrimSpace(s) == "" {
		return true
	}
	_, err := dbtime.ParseClock(s)
	return err == nil && len(strings.TrimSpace(s)) == 5
}
