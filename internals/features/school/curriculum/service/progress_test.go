package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"schoolhub_backend/internals/features/school/curriculum/model"
)

var (
	termStart = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	termEnd   = time.Date(2026, 12, 10, 0, 0, 0, 0, time.UTC) // 100 hari
)

func TestCalculateProgressEmptyProgram(t *testing.T) {
	p := CalculateProgress(0, 0, termStart, termEnd, termStart.AddDate(0, 0, 50))
	assert.Equal(t, Progress{Status: model.ProgressOnTrack}, p)
}

func TestCalculateProgressHalfway(t *testing.T) {
	now := termStart.AddDate(0, 0, 50)

	p := CalculateProgress(10, 5, termStart, termEnd, now)
	assert.Equal(t, 50.0, p.Percentage)
	assert.Equal(t, 50.0, p.Expected)
	assert.Equal(t, 0.0, p.Variance)
	assert.Equal(t, model.ProgressOnTrack, p.Status)

	assert.Equal(t, model.ProgressAhead, CalculateProgress(10, 6, termStart, termEnd, now).Status)
	assert.Equal(t, model.ProgressSlightlyBehind, CalculateProgress(10, 4, termStart, termEnd, now).Status)
	assert.Equal(t, model.ProgressSignificantlyBehind, CalculateProgress(10, 3, termStart, termEnd, now).Status)
}

func TestCalculateProgressRounding(t *testing.T) {
	p := CalculateProgress(3, 1, termStart, termEnd, termStart)
	assert.Equal(t, 33.33, p.Percentage)
	assert.Equal(t, 0.0, p.Expected)
	assert.Equal(t, 33.33, p.Variance)
}

func TestCalculateProgressStatusUsesUnroundedVariance(t *testing.T) {
	// expected 38.3349 → 38.33 tersimpan; variance mentah -5.0016 tetap slightly_behind
	now := termStart.AddDate(0, 0, 38).Add(8*time.Hour + 2*time.Minute + 15*time.Second)
	p := CalculateProgress(3, 1, termStart, termEnd, now)
	assert.Equal(t, 33.33, p.Percentage)
	assert.Equal(t, 38.33, p.Expected)
	assert.Equal(t, -5.0, p.Variance)
	assert.Equal(t, model.ProgressSlightlyBehind, p.Status)
}

func TestExpectedPercentageClamped(t *testing.T) {
	assert.Equal(t, 0.0, ExpectedPercentage(termStart, termEnd, termStart.AddDate(0, 0, -3)))
	assert.Equal(t, 100.0, ExpectedPercentage(termStart, termEnd, termEnd.AddDate(0, 1, 0)))
	assert.Equal(t, 25.0, ExpectedPercentage(termStart, termEnd, termStart.AddDate(0, 0, 25)))
	assert.Equal(t, 100.0, ExpectedPercentage(termStart, termStart, termStart))
}

func TestStatusForVarianceBoundaries(t *testing.T) {
	assert.Equal(t, model.ProgressAhead, StatusForVariance(5))
	assert.Equal(t, model.ProgressOnTrack, StatusForVariance(4.99))
	assert.Equal(t, model.ProgressOnTrack, StatusForVariance(-5))
	assert.Equal(t, model.ProgressSlightlyBehind, StatusForVariance(-5.01))
	assert.Equal(t, model.ProgressSlightlyBehind, StatusForVariance(-15))
	assert.Equal(t, model.ProgressSignificantlyBehind, StatusForVariance(-15.01))
}
