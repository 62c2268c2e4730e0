package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGradeSheetOrdersByRank(t *testing.T) {
	math, fr := uuid.New(), uuid.New()
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	r1, r2 := 1, 2
	gs := GradeSheet{
		ClassName: "6e A",
		TermName:  "Trimestre 1",
		Subjects: []SheetSubject{
			{SubjectID: fr, SubjectName: "Français", Coefficient: 2},
			{SubjectID: math, SubjectName: "Mathématiques", Coefficient: 3},
		},
		Students: []SheetStudent{
			{StudentID: a, StudentMatricule: "A1", StudentLastName: "Adjo", StudentFirstName: "Ama"},
			{StudentID: b, StudentMatricule: "B1", StudentLastName: "Bamba", StudentFirstName: "Issa"},
			{StudentID: c, StudentMatricule: "C1", StudentLastName: "Coulibaly", StudentFirstName: "Awa"},
		},
		Cells: []SheetCell{
			{StudentID: a, SubjectID: &math, Average: 11},
			{StudentID: a, Average: 11, Rank: &r2},
			{StudentID: b, SubjectID: &fr, Average: 17},
			{StudentID: b, SubjectID: &math, Average: 15},
			{StudentID: b, Average: 15.8, Rank: &r1},
		},
	}

	f, err := BuildGradeSheet(gs)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Notes")
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "6e A - Trimestre 1", rows[0][0])
	assert.Equal(t, []string{"Matricule", "Nom", "Prénom", "Français", "Mathématiques", "Moyenne", "Rang"}, rows[2])

	assert.Equal(t, "B1", rows[3][0])
	assert.Equal(t, "15.8", rows[3][5])
	assert.Equal(t, "1", rows[3][6])
	assert.Equal(t, "A1", rows[4][0])
	assert.Equal(t, "", rows[4][3])
	assert.Equal(t, "C1", rows[5][0])
}
