package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ReceiptPrefix = "REC"
	RefundPrefix  = "REF"
)

// SequencePrefix: "REC-2026-"
func SequencePrefix(kind string, year int) string {
	return fmt.Sprintf("%s-%d-", kind, year)
}

// SequenceValue: angka di belakang prefix; false kalau prefix beda atau bukan angka.
func SequenceValue(prefix, number string) (int64, bool) {
	rest, ok := strings.CutPrefix(number, prefix)
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// FormatSequence: minimal 5 digit, lewat 99999 melebar sendiri.
func FormatSequence(prefix string, n int64) string {
	return fmt.Sprintf("%s%05d", prefix, n)
}

// NextSequenceNumber: nomor setelah last (prefix sama); last kosong/rusak → 00001.
func NextSequenceNumber(prefix, last string) string {
	n, _ := SequenceValue(prefix, last)
	return FormatSequence(prefix, n+1)
}

// sequencePattern: regex postgres untuk nomor ber-prefix yang ekornya angka saja.
func sequencePattern(prefix string) string {
	return "^" + regexp.QuoteMeta(prefix) + "[0-9]+$"
}

// LockSequence: serialisasi penomoran per sekolah+prefix sampai tx selesai.
func LockSequence(tx *gorm.DB, schoolID uuid.UUID, prefix string) error {
	return tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", schoolID.String()+":"+prefix).Error
}

// NextNumber: ambil ekor angka terbesar dengan prefix di table.column (school-scoped).
// MAX dihitung atas angka, bukan string, supaya 100000 > 99999. Panggil LockSequence dulu.
func NextNumber(tx *gorm.DB, table, column, schoolColumn string, schoolID uuid.UUID, prefix string) (string, error) {
	var last int64
	err := tx.Table(table).
		Select("COALESCE(MAX(CAST(SUBSTRING("+column+" FROM ?) AS BIGINT)), 0)", len(prefix)+1).
		Where(schoolColumn+" = ? AND "+column+" ~ ?", schoolID, sequencePattern(prefix)).
		Scan(&last).Error
	if err != nil {
		return "", err
	}
	return FormatSequence(prefix, last+1), nil
}
