package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolhub_backend/internals/features/school/students/students/dto"
	"schoolhub_backend/internals/features/school/students/students/model"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/dbtime"
)

const MaxImportRows = 5000

// ImportRow: satu baris sheet (baris 1 = header).
type ImportRow struct {
	Row       int
	FirstName string
	LastName  string
	DOB       *time.Time
	Gender    *string
	Matricule string
}

// excel kadang menyimpan tanggal sebagai serial number
func parseSheetDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", "02/01/2006", "2/1/2006", "01-02-06"} {
		if t, err := time.Parse(layout, s); err == nil {
			d := dbtime.DateOnly(t)
			return &d, nil
		}
	}
	var serial float64
	if _, err := fmt.Sscanf(s, "%f", &serial); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			d := dbtime.DateOnly(t)
			return &d, nil
		}
	}
	return nil, fmt.Errorf("tanggal lahir %q tidak valid", s)
}

func normalizeGender(s string) (*string, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return nil, nil
	case "M", "H", "MALE", "MASCULIN":
		g := "M"
		return &g, nil
	case "F", "FEMALE", "FEMININ", "FÉMININ":
		g := "F"
		return &g, nil
	case "OTHER", "AUTRE":
		g := "other"
		return &g, nil
	}
	return nil, fmt.Errorf("gender %q tidak dikenal", s)
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// ParseImportSheet: kolom first_name, last_name, dob, gender, matricule?
// Baris kosong dilewati. Baris tidak valid masuk ke errs.
func ParseImportSheet(r io.Reader) ([]ImportRow, []dto.ImportError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, errors.Wrap(helper.ErrBadRequest, "file excel tidak bisa dibuka")
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("[IMPORT] gagal menutup file excel: %v", err)
		}
	}()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil, errors.Wrap(helper.ErrBadRequest, "file excel tidak punya sheet")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, errors.Wrap(helper.ErrBadRequest, "gagal membaca baris excel")
	}
	if len(rows)-1 > MaxImportRows {
		return nil, nil, errors.Wrapf(helper.ErrBadRequest, "maksimal %d baris per import", MaxImportRows)
	}

	out := make([]ImportRow, 0, len(rows))
	var errs []dto.ImportError
	for i, row := range rows {
		if i == 0 {
			continue
		}
		rowNo := i + 1
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		ir := ImportRow{
			Row:       rowNo,
			FirstName: cell(row, 0),
			LastName:  cell(row, 1),
			Matricule: strings.ToUpper(cell(row, 4)),
		}
		if ir.FirstName == "" || ir.LastName == "" {
			errs = append(errs, dto.ImportError{Row: rowNo, Error: "first_name dan last_name wajib diisi"})
			continue
		}
		if ir.DOB, err = parseSheetDate(cell(row, 2)); err != nil {
			errs = append(errs, dto.ImportError{Row: rowNo, Error: err.Error()})
			continue
		}
		if ir.DOB != nil && ir.DOB.After(dbtime.Today()) {
			errs = append(errs, dto.ImportError{Row: rowNo, Error: "tanggal lahir di masa depan"})
			continue
		}
		if ir.Gender, err = normalizeGender(cell(row, 3)); err != nil {
			errs = append(errs, dto.ImportError{Row: rowNo, Error: err.Error()})
			continue
		}
		out = append(out, ir)
	}
	return out, errs, nil
}

// ImportStudents: reservasi matricule sekaligus, insert ON CONFLICT DO NOTHING.
// Baris yang matricule-nya bentrok dihitung skipped.
func ImportStudents(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, yearID *uuid.UUID, rows []ImportRow, parseErrs []dto.ImportError) (dto.ImportResult, error) {
	res := dto.ImportResult{Errors: append([]dto.ImportError{}, parseErrs...)}
	res.Skipped = len(parseErrs)
	if len(rows) == 0 {
		return res, nil
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		need := 0
		for _, r := range rows {
			if r.Matricule == "" {
				need++
			}
		}
		var reserved []string
		if need > 0 {
			y, err := resolveYear(ctx, tx, schoolID, yearID)
			if err != nil {
				return err
			}
			if reserved, err = ReserveMatricules(ctx, tx, schoolID, y, need); err != nil {
				return err
			}
		}

		today := dbtime.Today()
		models := make([]model.StudentModel, 0, len(rows))
		for _, r := range rows {
			mat := r.Matricule
			if mat == "" {
				mat, reserved = reserved[0], reserved[1:]
			}
			models = append(models, model.StudentModel{
				StudentID:            uuid.New(),
				StudentSchoolID:      schoolID,
				StudentMatricule:     mat,
				StudentFirstName:     r.FirstName,
				StudentLastName:      r.LastName,
				StudentDOB:           r.DOB,
				StudentGender:        r.Gender,
				StudentStatus:        model.StudentStatusActive,
				StudentAdmissionDate: &today,
			})
		}

		ids := make([]uuid.UUID, 0, len(models))
		for _, m := range models {
			ids = append(ids, m.StudentID)
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_school_id"}, {Name: "student_matricule"}},
			DoNothing: true,
		}).CreateInBatches(&models, 500).Error; err != nil {
			return err
		}

		// id dibuat di sisi aplikasi, jadi yang tidak ada di tabel = bentrok matricule
		var inserted []uuid.UUID
		if err := tx.Model(&model.StudentModel{}).Where("student_id IN ?", ids).
			Pluck("student_id", &inserted).Error; err != nil {
			return err
		}
		ok := make(map[uuid.UUID]bool, len(inserted))
		for _, id := range inserted {
			ok[id] = true
		}
		for i, m := range models {
			if !ok[m.StudentID] {
				res.Skipped++
				res.Errors = append(res.Errors, dto.ImportError{
					Row:   rows[i].Row,
					Error: fmt.Sprintf("matricule %s sudah dipakai", m.StudentMatricule),
				})
				continue
			}
			res.Imported++
		}
		return nil
	})
	return res, err
}

var exportHeader = []any{
	"Matricule", "Nom", "Prénom", "Date de naissance", "Sexe", "Statut",
	"Classe", "Série", "Nationalité", "Adresse", "Contact urgence", "Téléphone urgence", "Date d'admission",
}

type ExportRow struct {
	StudentMatricule        string
	StudentLastName         string
	StudentFirstName        string
	StudentDOB              *time.Time
	StudentGender           *string
	StudentStatus           string
	ClassName               *string
	SeriesName              *string
	StudentNationality      *string
	StudentAddress          *string
	StudentEmergencyContact *string
	StudentEmergencyPhone   *string
	StudentAdmissionDate    *time.Time
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func date(p *time.Time) string {
	if p == nil {
		return ""
	}
	return p.Format("2006-01-02")
}

// BuildExportWorkbook: satu sheet "Eleves", header tebal, kolom di-freeze.
func BuildExportWorkbook(rows []ExportRow) (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "Eleves"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(exportHeader))
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", bold); err != nil {
		return nil, err
	}
	for i, r := range rows {
		line := []any{
			r.StudentMatricule, r.StudentLastName, r.StudentFirstName, date(r.StudentDOB), str(r.StudentGender),
			r.StudentStatus, str(r.ClassName), str(r.SeriesName), str(r.StudentNationality), str(r.StudentAddress),
			str(r.StudentEmergencyContact), str(r.StudentEmergencyPhone), date(r.StudentAdmissionDate),
		}
		axis, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, axis, &line); err != nil {
			return nil, err
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, err
	}
	return f, nil
}
