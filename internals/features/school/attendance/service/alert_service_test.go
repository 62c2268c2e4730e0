package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"schoolhub_backend/internals/features/school/attendance/model"
)

func TestCanMoveAlert(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{model.AlertActive, model.AlertAcknowledged, true},
		{model.AlertActive, model.AlertResolved, true},
		{model.AlertActive, model.AlertDismissed, true},
		{model.AlertAcknowledged, model.AlertResolved, true},
		{model.AlertAcknowledged, model.AlertAcknowledged, false},
		{model.AlertResolved, model.AlertDismissed, false},
		{model.AlertDismissed, model.AlertActive, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, CanMoveAlert(tc.from, tc.to), "%s → %s", tc.from, tc.to)
	}
}
