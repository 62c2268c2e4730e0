package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	helper "schoolhub_backend/internals/helpers"
)

func TestCreateStaffPosition(t *testing.T) {
	v := helper.NewValidator()
	req := CreateStaffRequest{Email: "caisse@ecole.sn", FullName: "Fatou Ndiaye", Position: "cashier"}
	require.NoError(t, v.Struct(req))

	req.Position = "janitor"
	assert.Contains(t, helper.ValidationFields(v.Struct(req)), "position")
}

func TestValidPosition(t *testing.T) {
	assert.True(t, ValidPosition("registrar"))
	assert.False(t, ValidPosition("regis"))
	assert.False(t, ValidPosition(""))
}
