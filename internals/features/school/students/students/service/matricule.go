package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	helper "schoolhub_backend/internals/helpers"
)

// MatriculePrefix: 2 huruf pertama kode sekolah, kalau tidak ada → "XX".
func MatriculePrefix(schoolCode string) string {
	letters := make([]rune, 0, 2)
	for _, r := range strings.ToUpper(strings.TrimSpace(schoolCode)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			letters = append(letters, r)
		}
		if len(letters) == 2 {
			return string(letters)
		}
	}
	return "XX"
}

func YearSuffix(start time.Time) string { return fmt.Sprintf("%02d", start.Year()%100) }

// FormatMatricule: {PREFIX}{YY}{NNNN}
func FormatMatricule(prefix, yy string, n int) string {
	return fmt.Sprintf("%s%s%04d", prefix, yy, n)
}

type seqRow struct {
	Prefix     string
	Year       string
	LastNumber int
}

// ReserveMatricules: naikkan counter sebanyak count secara atomik (upsert) dan
// kembalikan matricule untuk rentang yang didapat.
func ReserveMatricules(ctx context.Context, db *gorm.DB, schoolID, yearID uuid.UUID, count int) ([]string, error) {
	if count <= 0 {
		return nil, nil
	}

	var meta struct {
		SchoolCode string
		StartDate  time.Time
	}
	err := db.WithContext(ctx).Raw(`
		SELECT s.school_code, y.school_year_start_date AS start_date
		FROM school_years y
		JOIN schools s ON s.school_id = y.school_year_school_id
		WHERE y.school_year_id = ? AND y.school_year_school_id = ?
	`, yearID, schoolID).Scan(&meta).Error
	if err != nil {
		return nil, err
	}
	if meta.StartDate.IsZero() {
		return nil, errors.Wrap(helper.ErrNotFound, "tahun ajaran tidak ditemukan")
	}

	var row seqRow
	err = db.WithContext(ctx).Raw(`
		INSERT INTO matricule_sequences (
			matricule_sequence_school_id, matricule_sequence_school_year_id,
			matricule_sequence_prefix, matricule_sequence_year,
			matricule_sequence_last_number, matricule_sequence_updated_at
		) VALUES (?, ?, ?, ?, ?, NOW())
		ON CONFLICT (matricule_sequence_school_id, matricule_sequence_school_year_id) DO UPDATE
		SET matricule_sequence_last_number = matricule_sequences.matricule_sequence_last_number + EXCLUDED.matricule_sequence_last_number,
		    matricule_sequence_updated_at = NOW()
		RETURNING matricule_sequence_prefix AS prefix, matricule_sequence_year AS year, matricule_sequence_last_number AS last_number
	`, schoolID, yearID, MatriculePrefix(meta.SchoolCode), YearSuffix(meta.StartDate), count).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return MatriculeRange(row.Prefix, row.Year, row.LastNumber, count), nil
}

// MatriculeRange: count nomor terakhir yang berakhir di last.
func MatriculeRange(prefix, yy string, last, count int) []string {
	out := make([]string, 0, count)
	for n := last - count + 1; n <= last; n++ {
		out = append(out, FormatMatricule(prefix, yy, n))
	}
	return out
}
