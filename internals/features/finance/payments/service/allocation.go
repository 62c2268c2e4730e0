package service

import (
	"github.com/pkg/errors"

	"schoolhub_backend/internals/features/finance/payments/dto"
	helper "schoolhub_backend/internals/helpers"
)

// status tagihan & cicilan memakai string yang sama
const (
	balancePending = "pending"
	balancePartial = "partial"
	balancePaid    = "paid"
)

// ValidateAllocations: total alokasi harus sama dengan nominal pembayaran (±0.01).
func ValidateAllocations(amount float64, allocs []dto.AllocationRequest) error {
	if len(allocs) == 0 {
		return errors.Wrap(helper.ErrBadRequest, "minimal satu alokasi")
	}
	var sum int64
	for i, a := range allocs {
		if a.StudentFeeID == nil && a.InstallmentID == nil {
			return errors.Wrapf(helper.ErrBadRequest, "alokasi #%d tanpa tagihan maupun cicilan", i+1)
		}
		if a.Amount <= 0 {
			return errors.Wrapf(helper.ErrBadRequest, "nominal alokasi #%d harus > 0", i+1)
		}
		sum += helper.ToCents(a.Amount)
	}
	if !helper.AmountsEqual(helper.FromCents(sum), helper.Round2(amount)) {
		return errors.Wrapf(helper.ErrConflict, "total alokasi %.2f tidak sama dengan nominal pembayaran %.2f",
			helper.FromCents(sum), amount)
	}
	return nil
}

// ApplyAmount: paid += amt, balance -= amt; lunas kalau balance <= 0.
func ApplyAmount(paid, balance, amt float64) (float64, float64, string) {
	p := helper.ToCents(paid) + helper.ToCents(amt)
	b := helper.ToCents(balance) - helper.ToCents(amt)
	status := balancePartial
	if b <= 0 {
		status = balancePaid
	}
	return helper.FromCents(p), helper.FromCents(b), status
}

// ReverseAmount: kebalikan ApplyAmount; pending kalau paid <= 0.
func ReverseAmount(paid, balance, amt float64) (float64, float64, string) {
	p := helper.ToCents(paid) - helper.ToCents(amt)
	b := helper.ToCents(balance) + helper.ToCents(amt)
	status := balancePartial
	if p <= 0 {
		status = balancePending
	}
	return helper.FromCents(p), helper.FromCents(b), status
}
