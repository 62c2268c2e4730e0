package service

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type SheetSubject struct {
	SubjectID   uuid.UUID
	SubjectName string
	Coefficient int
}

type SheetStudent struct {
	StudentID        uuid.UUID
	StudentMatricule string
	StudentLastName  string
	StudentFirstName string
}

type SheetCell struct {
	StudentID uuid.UUID
	SubjectID *uuid.UUID
	Average   float64
	Rank      *int
}

// GradeSheet: siswa × mapel + rata-rata umum + peringkat
type GradeSheet struct {
	ClassName string
	TermName  string
	Subjects  []SheetSubject
	Students  []SheetStudent
	Cells     []SheetCell
}

func LoadGradeSheet(ctx context.Context, db *gorm.DB, schoolID, classID, termID uuid.UUID) (GradeSheet, error) {
	var gs GradeSheet
	tx := db.WithContext(ctx)
	if err := checkScope(tx, schoolID, classID, termID); err != nil {
		return gs, err
	}
	if err := tx.Table("classes").Select("class_name").Where("class_id = ?", classID).Scan(&gs.ClassName).Error; err != nil {
		return gs, err
	}
	if err := tx.Table("terms").Select("term_name").Where("term_id = ?", termID).Scan(&gs.TermName).Error; err != nil {
		return gs, err
	}
	if err := tx.Table("class_subjects cs").
		Select("cs.class_subject_subject_id AS subject_id, s.subject_name, cs.class_subject_coefficient AS coefficient").
		Joins("JOIN subjects s ON s.subject_id = cs.class_subject_subject_id").
		Where("cs.class_subject_class_id = ?", classID).
		Order("s.subject_name ASC").
		Scan(&gs.Subjects).Error; err != nil {
		return gs, err
	}
	if err := tx.Table("enrollments e").
		Select("s.student_id, s.student_matricule, s.student_last_name, s.student_first_name").
		Joins("JOIN students s ON s.student_id = e.enrollment_student_id").
		Where("e.enrollment_class_id = ? AND e.enrollment_status = 'confirmed'", classID).
		Order("s.student_last_name ASC, s.student_first_name ASC").
		Scan(&gs.Students).Error; err != nil {
		return gs, err
	}
	err := tx.Table("student_averages").
		Select(`student_average_student_id AS student_id, student_average_subject_id AS subject_id,
			student_average_value AS average, student_average_rank_in_class AS rank`).
		Where("student_average_class_id = ? AND student_average_term_id = ?", classID, termID).
		Scan(&gs.Cells).Error
	return gs, err
}

// BuildGradeSheet: satu sheet, urut peringkat umum; siswa tanpa rata-rata di bawah.
func BuildGradeSheet(gs GradeSheet) (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "Notes"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	title := []any{gs.ClassName + " - " + gs.TermName}
	if err := f.SetSheetRow(sheet, "A1", &title); err != nil {
		return nil, err
	}
	header := []any{"Matricule", "Nom", "Prénom"}
	for _, s := range gs.Subjects {
		header = append(header, s.SubjectName)
	}
	header = append(header, "Moyenne", "Rang")
	if err := f.SetSheetRow(sheet, "A3", &header); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	if err := f.SetCellStyle(sheet, "A1", "A1", bold); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A3", lastCol+"3", bold); err != nil {
		return nil, err
	}
	bands := map[string]int{}
	for band, color := range map[string]string{
		BandExcellent: "#C6EFCE", BandGood: "#DDEBF7", BandPass: "#FFF2CC", BandFail: "#F8CBAD",
	} {
		id, err := f.NewStyle(&excelize.Style{Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}})
		if err != nil {
			return nil, err
		}
		bands[band] = id
	}

	subjectAvg := map[uuid.UUID]map[uuid.UUID]float64{}
	overall := map[uuid.UUID]SheetCell{}
	for _, c := range gs.Cells {
		if c.SubjectID == nil {
			overall[c.StudentID] = c
			continue
		}
		if subjectAvg[c.StudentID] == nil {
			subjectAvg[c.StudentID] = map[uuid.UUID]float64{}
		}
		subjectAvg[c.StudentID][*c.SubjectID] = c.Average
	}

	students := append([]SheetStudent(nil), gs.Students...)
	sort.SliceStable(students, func(i, j int) bool {
		a, okA := overall[students[i].StudentID]
		b, okB := overall[students[j].StudentID]
		if okA != okB {
			return okA
		}
		return okA && a.Rank != nil && b.Rank != nil && *a.Rank < *b.Rank
	})

	avgCol := len(gs.Subjects) + 4
	for i, st := range students {
		line := []any{st.StudentMatricule, st.StudentLastName, st.StudentFirstName}
		for _, s := range gs.Subjects {
			if v, ok := subjectAvg[st.StudentID][s.SubjectID]; ok {
				line = append(line, v)
			} else {
				line = append(line, "")
			}
		}
		o, ok := overall[st.StudentID]
		if ok {
			line = append(line, o.Average)
			if o.Rank != nil {
				line = append(line, *o.Rank)
			} else {
				line = append(line, "")
			}
		}
		row := i + 4
		axis, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, axis, &line); err != nil {
			return nil, err
		}
		if ok {
			cell, _ := excelize.CoordinatesToCellName(avgCol, row)
			if err := f.SetCellStyle(sheet, cell, cell, bands[ColorBand(o.Average)]); err != nil {
				return nil, err
			}
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, XSplit: 3, YSplit: 3, TopLeftCell: "D4", ActivePane: "bottomRight"}); err != nil {
		return nil, err
	}
	return f, nil
}
