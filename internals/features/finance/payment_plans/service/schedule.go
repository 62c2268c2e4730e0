package service

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"schoolhub_backend/internals/features/finance/payment_plans/model"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/dbtime"
)

// ValidateSchedule: jumlah item = installments_count, persen total 100 (±0.01), nomor unik.
func ValidateSchedule(count int, items []model.ScheduleItem) error {
	if count != len(items) {
		return errors.Wrapf(helper.ErrBadRequest, "installments_count (%d) harus sama dengan jumlah jadwal (%d)", count, len(items))
	}
	seen := map[int]bool{}
	var sum float64
	for _, it := range items {
		if it.Percentage <= 0 {
			return errors.Wrapf(helper.ErrBadRequest, "persentase cicilan #%d harus > 0", it.Number)
		}
		if seen[it.Number] {
			return errors.Wrapf(helper.ErrBadRequest, "nomor cicilan #%d duplikat", it.Number)
		}
		seen[it.Number] = true
		sum += it.Percentage
	}
	if math.Abs(sum-100) > helper.MoneyEpsilon+1e-9 {
		return errors.Wrapf(helper.ErrBadRequest, "total persentase %.2f, harus 100", sum)
	}
	return nil
}

// BuildInstallments: nominal = round2(pct/100 × total); sisa pembulatan masuk ke cicilan terakhir.
// Jatuh tempo = start + due_days_from_start.
func BuildInstallments(schoolID, planID uuid.UUID, total float64, start time.Time, items []model.ScheduleItem) []model.InstallmentModel {
	sorted := append([]model.ScheduleItem(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

	totalCents := helper.ToCents(total)
	var used int64
	out := make([]model.InstallmentModel, 0, len(sorted))
	for i, it := range sorted {
		cents := helper.ToCents(helper.Round2(it.Percentage / 100 * total))
		if i == len(sorted)-1 {
			cents = totalCents - used
		}
		used += cents
		amount := helper.FromCents(cents)
		label := it.Label
		if label == "" {
			label = fmt.Sprintf("Versement %d", it.Number)
		}
		out = append(out, model.InstallmentModel{
			InstallmentSchoolID:      schoolID,
			InstallmentPaymentPlanID: planID,
			InstallmentNumber:        it.Number,
			InstallmentLabel:         &label,
			InstallmentAmount:        amount,
			InstallmentBalance:       amount,
			InstallmentDueDate:       dbtime.DateOnly(start).AddDate(0, 0, it.DueDaysFromStart),
			InstallmentStatus:        model.InstallmentPending,
		})
	}
	return out
}

// DaysOverdue: hari sejak jatuh tempo, 0 kalau belum lewat
func DaysOverdue(due, today time.Time) int {
	d := dbtime.DaysBetween(due, today)
	if d < 0 {
		return 0
	}
	return d
}

// IsOverdueCandidate: lewat jatuh tempo dan belum lunas/dibebaskan
func IsOverdueCandidate(inst model.InstallmentModel, today time.Time) bool {
	switch inst.InstallmentStatus {
	case model.InstallmentPending, model.InstallmentPartial, model.InstallmentOverdue:
		return dbtime.DateOnly(inst.InstallmentDueDate).Before(dbtime.DateOnly(today))
	}
	return false
}
