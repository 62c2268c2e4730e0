package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"schoolhub_backend/internals/constants"
	"schoolhub_backend/internals/features/hr/staff/model"
)

func TestRoleForPosition(t *testing.T) {
	cases := map[string]string{
		model.PositionAcademicCoordinator: constants.RoleAcademicCoordinator,
		model.PositionDisciplineOfficer:   constants.RoleDisciplineOfficer,
		model.PositionAccountant:          constants.RoleAccountant,
		model.PositionCashier:             constants.RoleCashier,
		model.PositionRegistrar:           constants.RoleRegistrar,
		model.PositionOther:               "",
		"janitor":                         "",
	}
	for pos, want := range cases {
		assert.Equal(t, want, RoleForPosition(pos), pos)
	}
}
