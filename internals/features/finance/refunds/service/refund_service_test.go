package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	payModel "schoolhub_backend/internals/features/finance/payments/model"
	payService "schoolhub_backend/internals/features/finance/payments/service"
	helper "schoolhub_backend/internals/helpers"
)

func TestRefundable(t *testing.T) {
	assert.Equal(t, 150000.0, Refundable(150000, 0))
	assert.Equal(t, 100000.0, Refundable(150000, 50000))
	assert.Equal(t, 0.0, Refundable(150000, 150000))
	assert.Equal(t, 0.0, Refundable(100, 120), "never negative")
	assert.Equal(t, 0.1, Refundable(0.3, 0.2))
}

func TestPaymentStatusAfterRefund(t *testing.T) {
	assert.Equal(t, payModel.StatusRefunded, PaymentStatusAfterRefund(150000, 150000))
	assert.Equal(t, payModel.StatusPartialRefund, PaymentStatusAfterRefund(150000, 149999.99))
	assert.Equal(t, payModel.StatusPartialRefund, PaymentStatusAfterRefund(150000, 50000))
}

func TestRefundNumberFormat(t *testing.T) {
	prefix := payService.SequencePrefix(payService.RefundPrefix, 2026)
	assert.Equal(t, "REF-2026-00001", payService.NextSequenceNumber(prefix, ""))
	assert.Equal(t, "REF-2026-00013", payService.NextSequenceNumber(prefix, "REF-2026-00012"))
}

func TestCheckPaymentRefundable(t *testing.T) {
	assert.NoError(t, CheckPaymentRefundable(payModel.StatusCompleted))
	assert.NoError(t, CheckPaymentRefundable(payModel.StatusPartialRefund))
	for _, st := range []string{payModel.StatusPending, payModel.StatusCancelled, payModel.StatusRefunded} {
		err := CheckPaymentRefundable(st)
		assert.ErrorIs(t, err, helper.ErrInvalidState, st)
	}
}
