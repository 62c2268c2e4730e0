package service

import (
	"math"
	"strings"

	"github.com/google/uuid"

	"schoolhub_backend/internals/features/finance/fees/dto"
	"schoolhub_backend/internals/features/finance/fees/model"
	helper "schoolhub_backend/internals/helpers"
)

// FeeLine: struktur biaya yang berlaku untuk siswa (hasil join fee_structures × fee_types)
type FeeLine struct {
	FeeStructureID   uuid.UUID
	FeeTypeID        uuid.UUID
	FeeTypeCode      string
	FeeTypeName      string
	FeeTypeCategory  string
	Amount           float64
	NewStudentAmount *float64
}

// DiscountLine: diskon siswa yang sudah disetujui
type DiscountLine struct {
	CalculationType  string
	Value            float64
	CalculatedAmount float64
	AppliesTo        []string
	MaxAmount        *float64
}

// applies: daftar kosong = semua jenis biaya. Dicocokkan ke id atau kode jenis biaya.
func (d DiscountLine) applies(f FeeLine) bool {
	if len(d.AppliesTo) == 0 {
		return true
	}
	id := f.FeeTypeID.String()
	for _, a := range d.AppliesTo {
		a = strings.TrimSpace(a)
		if a == id || strings.EqualFold(a, f.FeeTypeCode) {
			return true
		}
	}
	return false
}

// CalculateBreakdown: semua hitungan dalam sen.
// Total diskon dibatasi max_discount_amount terkecil lalu oleh nominal dasar.
func CalculateBreakdown(isNew bool, fees []FeeLine, discounts []DiscountLine) []dto.BreakdownItem {
	out := make([]dto.BreakdownItem, 0, len(fees))
	for _, f := range fees {
		base := f.Amount
		if isNew && f.NewStudentAmount != nil && *f.NewStudentAmount > 0 {
			base = *f.NewStudentAmount
		}
		baseCents := helper.ToCents(base)

		var discCents int64
		for _, d := range discounts {
			if !d.applies(f) {
				continue
			}
			if d.CalculationType == model.CalcPercentage {
				discCents += int64(math.Round(float64(baseCents) * d.Value / 100))
			} else {
				discCents += helper.ToCents(d.CalculatedAmount)
			}
		}

		capCents := discCents
		for _, d := range discounts {
			if d.MaxAmount != nil && *d.MaxAmount > 0 {
				capCents = min(capCents, helper.ToCents(*d.MaxAmount))
			}
		}
		finalDisc := min(discCents, capCents, baseCents)

		out = append(out, dto.BreakdownItem{
			FeeStructureID:  f.FeeStructureID,
			FeeTypeID:       f.FeeTypeID,
			FeeTypeName:     f.FeeTypeName,
			FeeTypeCategory: f.FeeTypeCategory,
			OriginalAmount:  helper.FromCents(baseCents),
			DiscountAmount:  helper.FromCents(finalDisc),
			FinalAmount:     helper.FromCents(baseCents - finalDisc),
			IsNewStudent:    isNew,
		})
	}
	return out
}

// Totals: jumlah original/diskon/final dalam sen supaya tidak ada drift float
func Totals(items []dto.BreakdownItem) (original, discount, final float64) {
	var o, d, f int64
	for _, it := range items {
		o += helper.ToCents(it.OriginalAmount)
		d += helper.ToCents(it.DiscountAmount)
		f += helper.ToCents(it.FinalAmount)
	}
	return helper.FromCents(o), helper.FromCents(d), helper.FromCents(f)
}
