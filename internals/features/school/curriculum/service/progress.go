package service

import (
	"time"

	"schoolhub_backend/internals/features/school/curriculum/model"
	helper "schoolhub_backend/internals/helpers"
)

// Ambang variance (poin persen)
const (
	AheadThreshold          = 5.0
	OnTrackThreshold        = -5.0
	SlightlyBehindThreshold = -15.0

	DefaultBehindThreshold = -10.0
)

type Progress struct {
	Percentage float64
	Expected   float64
	Variance   float64
	Status     string
}

// ExpectedPercentage: porsi waktu periode yang sudah lewat, dibatasi 0..100
func ExpectedPercentage(termStart, termEnd, now time.Time) float64 {
	return helper.Round2(expectedRaw(termStart, termEnd, now))
}

func expectedRaw(termStart, termEnd, now time.Time) float64 {
	duration := termEnd.Sub(termStart)
	if duration <= 0 {
		if now.Before(termStart) {
			return 0
		}
		return 100
	}
	elapsed := now.Sub(termStart)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > duration {
		elapsed = duration
	}
	return float64(elapsed) / float64(duration) * 100
}

func StatusForVariance(v float64) string {
	switch {
	case v >= AheadThreshold:
		return model.ProgressAhead
	case v >= OnTrackThreshold:
		return model.ProgressOnTrack
	case v >= SlightlyBehindThreshold:
		return model.ProgressSlightlyBehind
	default:
		return model.ProgressSignificantlyBehind
	}
}

// CalculateProgress: total=0 → semua 0 & on_track.
// Status dari variance mentah; pembulatan 2 desimal hanya untuk disimpan.
func CalculateProgress(total, completed int, termStart, termEnd, now time.Time) Progress {
	if total <= 0 {
		return Progress{Status: model.ProgressOnTrack}
	}
	if completed > total {
		completed = total
	}
	pct := float64(completed) / float64(total) * 100
	exp := expectedRaw(termStart, termEnd, now)
	variance := pct - exp
	return Progress{
		Percentage: helper.Round2(pct),
		Expected:   helper.Round2(exp),
		Variance:   helper.Round2(variance),
		Status:     StatusForVariance(variance),
	}
}
