package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	userModel "schoolhub_backend/internals/features/users/user/model"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

var testCfg = TokenConfig{AccessSecret: "a", RefreshSecret: "r", AccessTTL: time.Hour, RefreshTTL: 24 * time.Hour}

func TestBuildAccessClaimsSingleSchool(t *testing.T) {
	u := userModel.UserModel{ID: uuid.New(), UserName: "awa"}
	sid, tid := uuid.New(), uuid.New()
	rc := helperAuth.RolesClaim{
		RolesGlobal: []string{},
		SchoolRoles: []helperAuth.SchoolRolesEntry{{SchoolID: sid, Roles: []string{"teacher"}}},
	}
	now := time.Unix(1_700_000_000, 0)
	claims := BuildAccessClaims(u, rc, &tid, now, time.Hour)

	assert.Equal(t, u.ID.String(), claims["id"])
	assert.Equal(t, "access", claims["typ"])
	assert.Equal(t, sid.String(), claims["school_id"])
	assert.Equal(t, tid.String(), claims["teacher_id"])
	assert.Equal(t, now.Add(time.Hour).Unix(), claims["exp"])
}

func TestBuildAccessClaimsMultiSchoolHasNoActiveSchool(t *testing.T) {
	rc := helperAuth.RolesClaim{SchoolRoles: []helperAuth.SchoolRolesEntry{
		{SchoolID: uuid.New(), Roles: []string{"teacher"}},
		{SchoolID: uuid.New(), Roles: []string{"parent"}},
	}}
	claims := BuildAccessClaims(userModel.UserModel{ID: uuid.New()}, rc, nil, time.Now(), time.Hour)
	_, ok := claims["school_id"]
	assert.False(t, ok)
	_, ok = claims["teacher_id"]
	assert.False(t, ok)
}

func TestParseRefreshToken(t *testing.T) {
	uid := uuid.New()
	raw, err := sign(BuildRefreshClaims(uid, time.Now(), time.Hour), testCfg.RefreshSecret)
	require.NoError(t, err)

	got, err := ParseRefreshToken(testCfg, raw)
	require.NoError(t, err)
	assert.Equal(t, uid, got)

	// access token tidak boleh dipakai sebagai refresh
	access, err := sign(jwt.MapClaims{"sub": uid.String(), "typ": "access", "exp": time.Now().Add(time.Hour).Unix()}, testCfg.RefreshSecret)
	require.NoError(t, err)
	_, err = ParseRefreshToken(testCfg, access)
	assert.ErrorIs(t, err, ErrInvalidRefresh)

	// secret salah
	_, err = ParseRefreshToken(TokenConfig{RefreshSecret: "lain"}, raw)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestAccessTokenExpiry(t *testing.T) {
	exp := time.Now().Add(3 * time.Hour).Truncate(time.Second)
	raw, err := sign(jwt.MapClaims{"exp": exp.Unix()}, "x")
	require.NoError(t, err)
	assert.Equal(t, exp.Unix(), AccessTokenExpiry(raw).Unix())
}

func TestPasswordHelpers(t *testing.T) {
	h, err := HashPassword("rahasia123")
	require.NoError(t, err)
	assert.True(t, CheckPassword(&h, "rahasia123"))
	assert.False(t, CheckPassword(&h, "salah"))
	assert.False(t, CheckPassword(nil, "rahasia123"))

	p := RandomPassword(12)
	assert.Len(t, p, 12)
	assert.NotEqual(t, p, RandomPassword(12))
}
