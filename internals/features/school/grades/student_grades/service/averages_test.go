package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhub_backend/internals/features/school/grades/student_grades/model"
)

func TestCompetitionRank(t *testing.T) {
	assert.Equal(t, []int{1, 1, 3}, CompetitionRank([]float64{15, 15, 12}))
	assert.Equal(t, []int{3, 1, 2, 3}, CompetitionRank([]float64{10, 18, 12.5, 10}))
	assert.Empty(t, CompetitionRank(nil))
}

func TestSubjectAveragesWeighted(t *testing.T) {
	st1, st2 := uuid.New(), uuid.New()
	math, fr := uuid.New(), uuid.New()
	grades := []GradeInput{
		{StudentID: st1, SubjectID: math, Value: 12, Weight: 1},
		{StudentID: st1, SubjectID: math, Value: 15, Weight: 2},
		{StudentID: st1, SubjectID: fr, Value: 10, Weight: 1},
		{StudentID: st2, SubjectID: math, Value: 14, Weight: 1},
		{StudentID: st2, SubjectID: fr, Value: 9.5, Weight: 0},
	}
	got := SubjectAverages(grades)
	require.Len(t, got, 4)

	byKey := map[[2]uuid.UUID]SubjectAverage{}
	for _, s := range got {
		byKey[[2]uuid.UUID{s.StudentID, s.SubjectID}] = s
	}
	// (12 + 30) / 3
	assert.Equal(t, 14.0, byKey[[2]uuid.UUID{st1, math}].Average)
	assert.Equal(t, 2, byKey[[2]uuid.UUID{st1, math}].GradeCount)
	assert.Equal(t, 1, byKey[[2]uuid.UUID{st1, math}].Rank)
	assert.Equal(t, 1, byKey[[2]uuid.UUID{st2, math}].Rank)
	assert.Equal(t, 9.5, byKey[[2]uuid.UUID{st2, fr}].Average)
	assert.Equal(t, 2, byKey[[2]uuid.UUID{st2, fr}].Rank)
}

func TestSubjectAverageRounding(t *testing.T) {
	st, subj := uuid.New(), uuid.New()
	got := SubjectAverages([]GradeInput{
		{StudentID: st, SubjectID: subj, Value: 10, Weight: 1},
		{StudentID: st, SubjectID: subj, Value: 11, Weight: 1},
		{StudentID: st, SubjectID: subj, Value: 11, Weight: 1},
	})
	require.Len(t, got, 1)
	assert.Equal(t, 10.67, got[0].Average)
}

func TestOverallAveragesUseCoefficients(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	math, fr := uuid.New(), uuid.New()
	subjects := []SubjectAverage{
		{StudentID: a, SubjectID: math, Average: 16, GradeCount: 2},
		{StudentID: a, SubjectID: fr, Average: 10, GradeCount: 1},
		{StudentID: b, SubjectID: math, Average: 10, GradeCount: 1},
		{StudentID: b, SubjectID: fr, Average: 16, GradeCount: 1},
		{StudentID: c, SubjectID: fr, Average: 14.5, GradeCount: 1},
	}
	got := OverallAverages(subjects, map[uuid.UUID]int{math: 3})
	require.Len(t, got, 3)

	// a: (48+10)/4, b: (30+16)/4, c: fr seul, coef absent → 1
	assert.Equal(t, 14.5, got[0].Average)
	assert.Equal(t, 3, got[0].GradeCount)
	assert.Equal(t, 11.5, got[1].Average)
	assert.Equal(t, 14.5, got[2].Average)

	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, 3, got[1].Rank)
	assert.Equal(t, 1, got[2].Rank)
}

func TestColorBand(t *testing.T) {
	assert.Equal(t, BandExcellent, ColorBand(16))
	assert.Equal(t, BandGood, ColorBand(14))
	assert.Equal(t, BandGood, ColorBand(15.99))
	assert.Equal(t, BandPass, ColorBand(10))
	assert.Equal(t, BandFail, ColorBand(9.99))
}

func TestStats(t *testing.T) {
	st := Stats([]float64{8, 10, 12, 16})
	assert.Equal(t, 4, st.Count)
	assert.Equal(t, 11.5, st.Average)
	assert.Equal(t, 8.0, st.Min)
	assert.Equal(t, 16.0, st.Max)
	assert.Equal(t, 2.96, st.StdDev)
	assert.Equal(t, 1, st.BelowTen)
	assert.Equal(t, 1, st.AboveFifteen)

	empty := Stats(nil)
	assert.Zero(t, empty.Count)
	assert.Zero(t, empty.Average)
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{model.GradeStatusDraft, model.GradeStatusSubmitted, true},
		{model.GradeStatusRejected, model.GradeStatusSubmitted, true},
		{model.GradeStatusSubmitted, model.GradeStatusValidated, true},
		{model.GradeStatusSubmitted, model.GradeStatusRejected, true},
		{model.GradeStatusDraft, model.GradeStatusValidated, false},
		{model.GradeStatusValidated, model.GradeStatusRejected, false},
		{model.GradeStatusValidated, model.GradeStatusSubmitted, false},
		{model.GradeStatusSubmitted, model.GradeStatusDraft, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to), "%s → %s", tc.from, tc.to)
	}
}

func TestBuildAverageRows(t *testing.T) {
	school, class, term := uuid.New(), uuid.New(), uuid.New()
	st, subj := uuid.New(), uuid.New()
	at := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	sub, all := BuildAverageRows(school, class, term,
		[]SubjectAverage{{StudentID: st, SubjectID: subj, Average: 12, GradeCount: 2, Rank: 2}},
		[]OverallAverage{{StudentID: st, Average: 12, GradeCount: 2, Rank: 1}}, at)

	require.Len(t, sub, 1)
	require.Len(t, all, 1)
	assert.Equal(t, subj, *sub[0].StudentAverageSubjectID)
	assert.Equal(t, 2, *sub[0].StudentAverageRank)
	assert.Nil(t, all[0].StudentAverageSubjectID)
	assert.Equal(t, 1, *all[0].StudentAverageRank)
	assert.Equal(t, at, all[0].StudentAverageCalculatedAt)
}
