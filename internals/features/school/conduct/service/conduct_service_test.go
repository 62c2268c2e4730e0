package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"schoolhub_backend/internals/features/school/conduct/model"
)

func rec(typ, cat, status string, sev *string, pts int, day int) model.ConductRecordModel {
	return model.ConductRecordModel{
		ConductRecordType:          typ,
		ConductRecordCategory:      cat,
		ConductRecordStatus:        status,
		ConductRecordSeverity:      sev,
		ConductRecordPointsAwarded: pts,
		ConductRecordIncidentDate:  time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC),
	}
}

func strp(s string) *string { return &s }

func TestSummarize(t *testing.T) {
	sid := uuid.New()
	rows := []model.ConductRecordModel{
		rec(model.TypeIncident, "behavior", model.StatusOpen, strp(model.SeverityHigh), -5, 2),
		rec(model.TypeIncident, "bullying", model.StatusResolved, strp(model.SeverityCritical), -10, 9),
		rec(model.TypeSanction, "behavior", model.StatusClosed, strp(model.SeverityHigh), 0, 10),
		rec(model.TypeReward, "achievement", model.StatusInvestigating, nil, 20, 4),
		rec(model.TypeNote, "general", model.StatusOpen, nil, 0, 1),
	}
	s := Summarize(sid, rows)

	assert.Equal(t, sid, s.StudentID)
	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 2, s.ByType[model.TypeIncident])
	assert.Equal(t, 1, s.ByType[model.TypeSanction])
	assert.Equal(t, 1, s.ByType[model.TypeReward])
	assert.Equal(t, 1, s.ByType[model.TypeNote])
	assert.Equal(t, 2, s.Open)
	assert.Equal(t, 2, s.Resolved, "resolved + closed")
	assert.Equal(t, 2, s.BySeverity[model.SeverityHigh])
	assert.Equal(t, 1, s.BySeverity[model.SeverityCritical])
	assert.Equal(t, 0, s.BySeverity[model.SeverityLow])
	assert.Equal(t, 2, s.ByCategory["behavior"])
	assert.Equal(t, 5, s.TotalPoints)
	if assert.NotNil(t, s.LastRecord) {
		assert.Equal(t, 10, s.LastRecord.Day())
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(uuid.New(), nil)
	assert.Zero(t, s.Total)
	assert.Nil(t, s.LastRecord)
	assert.Len(t, s.ByType, 4)
	assert.Len(t, s.BySeverity, 5)
	assert.Empty(t, s.ByCategory)
}

func TestIsFinal(t *testing.T) {
	assert.True(t, model.IsFinal(model.StatusResolved))
	assert.True(t, model.IsFinal(model.StatusClosed))
	assert.False(t, model.IsFinal(model.StatusAppealed))
	assert.False(t, model.IsFinal(model.StatusOpen))
}
