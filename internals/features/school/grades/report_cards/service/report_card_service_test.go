package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"schoolhub_backend/internals/features/school/grades/report_cards/dto"
)

func TestSummarizeAttendance(t *testing.T) {
	got := SummarizeAttendance(map[string]int64{"present": 40, "late": 5, "absent": 4, "excused": 1})
	assert.Equal(t, int64(50), got["total"])
	assert.Equal(t, 90.0, got["attendance_rate"])
	assert.Equal(t, int64(4), got["absent"])

	empty := SummarizeAttendance(nil)
	assert.Equal(t, int64(0), empty["total"])
	assert.Equal(t, 0.0, empty["attendance_rate"])
}

func TestMergeConfigOverridesDefaults(t *testing.T) {
	cfg := dto.MergeConfig(dto.DefaultTemplateConfig(), map[string]any{"show_rank": false, "footer": "Le directeur"})
	assert.Equal(t, false, cfg["show_rank"])
	assert.Equal(t, true, cfg["show_attendance"])
	assert.Equal(t, "Le directeur", cfg["footer"])
	assert.Equal(t, true, dto.DefaultTemplateConfig()["show_rank"])
}
