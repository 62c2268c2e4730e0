package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"schoolhub_backend/internals/features/school/academics/school_years/model"
	helper "schoolhub_backend/internals/helpers"
)

func d(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestCheckRange(t *testing.T) {
	assert.NoError(t, CheckRange(d("2024-09-01"), d("2025-07-31")))
	assert.ErrorIs(t, CheckRange(d("2024-09-01"), d("2024-09-01")), helper.ErrBadRequest)
	assert.ErrorIs(t, CheckRange(d("2025-09-01"), d("2024-09-01")), helper.ErrBadRequest)
}

func TestCheckTermWithinYear(t *testing.T) {
	year := model.SchoolYearModel{
		SchoolYearStartDate: d("2024-09-01"),
		SchoolYearEndDate:   d("2025-07-31"),
	}
	assert.NoError(t, CheckTermWithinYear(year, d("2024-09-01"), d("2024-12-20")))
	assert.NoError(t, CheckTermWithinYear(year, d("2025-04-01"), d("2025-07-31")))

	err := CheckTermWithinYear(year, d("2024-08-15"), d("2024-12-20"))
	assert.ErrorIs(t, err, helper.ErrBadRequest)
	assert.Equal(t, "periode term harus di dalam tahun ajaran", helper.UserMessage(err))

	assert.ErrorIs(t, CheckTermWithinYear(year, d("2025-04-01"), d("2025-08-10")), helper.ErrBadRequest)
}
