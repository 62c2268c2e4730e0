package service

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sheetBytes(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	for i, r := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := r
		require.NoError(t, f.SetSheetRow("Sheet1", axis, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseImportSheet(t *testing.T) {
	future := time.Now().AddDate(1, 0, 0).Format("2006-01-02")
	buf := sheetBytes(t, [][]any{
		{"first_name", "last_name", "dob", "gender", "matricule"},
		{"Awa", "Diop", "2012-03-04", "F", ""},
		{"Moussa", "Fall", "15/09/2011", "m", "dk250099"},
		{"", "Sarr", "", "", ""},
		{},
		{"Ibou", "Ndiaye", future, "M", ""},
		{"Aminata", "Ba", "", "Z", ""},
		{"Khady", "Gueye", "", "", ""},
	})

	rows, errs, err := ParseImportSheet(buf)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, 2, rows[0].Row)
	require.NotNil(t, rows[0].DOB)
	assert.Equal(t, "2012-03-04", rows[0].DOB.Format("2006-01-02"))
	require.NotNil(t, rows[0].Gender)
	assert.Equal(t, "F", *rows[0].Gender)

	assert.Equal(t, "DK250099", rows[1].Matricule)
	assert.Equal(t, "2011-09-15", rows[1].DOB.Format("2006-01-02"))
	assert.Equal(t, "M", *rows[1].Gender)

	assert.Nil(t, rows[2].DOB)
	assert.Nil(t, rows[2].Gender)

	require.Len(t, errs, 3)
	assert.Equal(t, 4, errs[0].Row)
	assert.Equal(t, 6, errs[1].Row)
	assert.Equal(t, 7, errs[2].Row)
}

func TestParseImportSheetRejectsGarbage(t *testing.T) {
	_, _, err := ParseImportSheet(bytes.NewBufferString("not a workbook"))
	require.Error(t, err)
}

func TestBuildExportWorkbook(t *testing.T) {
	cls := "6e A"
	dob := time.Date(2012, 3, 4, 0, 0, 0, 0, time.UTC)
	f, err := BuildExportWorkbook([]ExportRow{{
		StudentMatricule: "DK250001", StudentLastName: "Diop", StudentFirstName: "Awa",
		StudentDOB: &dob, StudentStatus: "active", ClassName: &cls,
	}})
	require.NoError(t, err)

	rows, err := f.GetRows("Eleves")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Matricule", rows[0][0])
	assert.Equal(t, "DK250001", rows[1][0])
	assert.Equal(t, "2012-03-04", rows[1][3])
	assert.Equal(t, "6e A", rows[1][6])
}
