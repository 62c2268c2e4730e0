package dto

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	helper "schoolhub_backend/internals/helpers"
)

func TestSubjectCategoryEnum(t *testing.T) {
	v := helper.NewValidator()
	require.NoError(t, v.Struct(SubjectRequest{Name: "Mathématiques", Category: "Scientifique"}))
	require.NoError(t, v.Struct(SubjectRequest{Name: "Français", Category: "Littéraire"}))

	fields := helper.ValidationFields(v.Struct(SubjectRequest{Name: "EPS", Category: "Sport"}))
	assert.Equal(t, []string{"oneof=Scientifique Littéraire Sportif Autre"}, fields["category"])
}

func TestCodesAreUppercased(t *testing.T) {
	tid := uuid.New()
	g := GradeRequest{Code: " 6e ", Name: "Sixième", Order: 1, TrackID: tid}.ToModel()
	assert.Equal(t, "6E", g.GradeCode)
	assert.Equal(t, tid, g.GradeTrackID)
}

func TestReorderRequiresItems(t *testing.T) {
	v := helper.NewValidator()
	fields := helper.ValidationFields(v.Struct(ReorderGradesRequest{}))
	assert.Contains(t, fields, "items")
}
