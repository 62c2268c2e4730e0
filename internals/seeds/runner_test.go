package seeds

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhub_backend/internals/constants"
)

func TestDefaultSeedFileParses(t *testing.T) {
	f, err := LoadFile(filepath.Join("data", "seed.yaml"))
	require.NoError(t, err)

	slugs := map[string]bool{}
	for _, r := range f.Roles {
		slugs[r.Slug] = true
	}
	for _, want := range append(append([]string{}, constants.GlobalOwnerRoles...), constants.SchoolStaffRoles...) {
		assert.True(t, slugs[want], "role %s harus ada di seed", want)
	}

	require.Len(t, f.Catalogs.EducationLevels, 3)
	assert.Equal(t, "PRIM", f.Catalogs.EducationLevels[0].Code)
	lyc := f.Catalogs.EducationLevels[2]
	require.Len(t, lyc.Tracks, 1)
	assert.Len(t, lyc.Tracks[0].Series, 3)
	assert.Equal(t, "6E", f.Catalogs.EducationLevels[1].Tracks[0].Grades[0].Code)

	require.NotEmpty(t, f.FeeTypeTemplates)
	assert.Equal(t, "INSCRIPTION", f.FeeTypeTemplates[0].Code)
	require.NotNil(t, f.FeeTypeTemplates[4].IsMandatory)
	assert.False(t, *f.FeeTypeTemplates[4].IsMandatory)
	assert.Nil(t, f.FeeTypeTemplates[0].IsMandatory)

	require.NotNil(t, f.Owner)
	assert.Equal(t, "owner@schoolhub.app", f.Owner.Email)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("roles: [\n"), 0o600))
	_, err = LoadFile(bad)
	assert.Error(t, err)
}

func TestSeedRolesEmptyIsNoop(t *testing.T) {
	n, err := SeedRoles(t.Context(), nil, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
