package dto

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhub_backend/internals/features/school/conduct/model"
	helper "schoolhub_backend/internals/helpers"
)

func validRequest() ConductRequest {
	return ConductRequest{
		StudentID:    uuid.New(),
		SchoolYearID: uuid.New(),
		Type:         model.TypeSanction,
		Category:     "behavior",
		Title:        "  Bagarre en cour  ",
		Description:  "Bagarre pendant la récréation",
		IncidentDate: "2025-11-03",
		Witnesses:    []string{"M. Traoré"},
	}
}

func TestConductRequestToModel(t *testing.T) {
	req := validRequest()
	start, end := "2025-11-04", "2025-11-06"
	req.SanctionStart, req.SanctionEnd = &start, &end
	req.Attachments = json.RawMessage(`[{"url":"x.pdf"}]`)
	by := uuid.New()

	m, ok := req.ToModel(uuid.New(), &by)
	require.True(t, ok)
	assert.Equal(t, "Bagarre en cour", m.ConductRecordTitle)
	assert.Equal(t, model.StatusOpen, m.ConductRecordStatus)
	assert.Equal(t, pq.StringArray{"M. Traoré"}, m.ConductRecordWitnesses)
	assert.Equal(t, 4, m.ConductRecordSanctionStart.Day())
	assert.Equal(t, &by, m.ConductRecordRecordedBy)
	assert.JSONEq(t, `[{"url":"x.pdf"}]`, string(m.ConductRecordAttachments))
}

func TestConductRequestSanctionEndBeforeStart(t *testing.T) {
	req := validRequest()
	start, end := "2025-11-06", "2025-11-04"
	req.SanctionStart, req.SanctionEnd = &start, &end
	_, ok := req.ToModel(uuid.New(), nil)
	assert.False(t, ok)
}

func TestConductRequestValidation(t *testing.T) {
	v := helper.NewValidator()
	require.NoError(t, v.Struct(validRequest()))

	req := validRequest()
	req.Type = "warning"
	sev := "extreme"
	req.Severity = &sev
	err := v.Struct(req)
	require.Error(t, err)
	fields := helper.ValidationFields(err)
	assert.Contains(t, fields, "type")
	assert.Contains(t, fields, "severity")
}

func TestConductUpdateRequestUpdates(t *testing.T) {
	title := "  Retard répété "
	pts := -3
	u := ConductUpdateRequest{Title: &title, PointsAwarded: &pts, Witnesses: []string{"A"}}.Updates()
	assert.Equal(t, "Retard répété", u["conduct_record_title"])
	assert.Equal(t, -3, u["conduct_record_points_awarded"])
	assert.Equal(t, pq.StringArray{"A"}, u["conduct_record_witnesses"])
	assert.NotContains(t, u, "conduct_record_category")
}
