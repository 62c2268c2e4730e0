package service

import (
	"errors"
	"regexp"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhub_backend/internals/features/finance/payments/dto"
	"schoolhub_backend/internals/features/finance/payments/model"
	helper "schoolhub_backend/internals/helpers"
)

func TestNextSequenceNumber(t *testing.T) {
	prefix := SequencePrefix(ReceiptPrefix, 2026)
	assert.Equal(t, "REC-2026-", prefix)
	assert.Equal(t, "REC-2026-00001", NextSequenceNumber(prefix, ""))
	assert.Equal(t, "REC-2026-00042", NextSequenceNumber(prefix, "REC-2026-00041"))
	assert.Equal(t, "REC-2026-00001", NextSequenceNumber(prefix, "REC-2025-00041"), "new year restarts")
	assert.Equal(t, "REC-2026-00001", NextSequenceNumber(prefix, "REC-2026-abc"))
	assert.Equal(t, "REF-2026-100000", NextSequenceNumber("REF-2026-", "REF-2026-99999"))
}

func TestSequenceValueOrdersNumerically(t *testing.T) {
	prefix := SequencePrefix(ReceiptPrefix, 2026)
	big, ok := SequenceValue(prefix, "REC-2026-100000")
	require.True(t, ok)
	small, ok := SequenceValue(prefix, "REC-2026-99999")
	require.True(t, ok)
	assert.Greater(t, big, small)
	assert.Equal(t, "REC-2026-100001", FormatSequence(prefix, big+1))

	_, ok = SequenceValue(prefix, "REC-2026-")
	assert.False(t, ok)
	_, ok = SequenceValue(prefix, "REC-2025-00001")
	assert.False(t, ok)
}

func TestSequencePattern(t *testing.T) {
	re := regexp.MustCompile(sequencePattern("REC-2026-"))
	assert.True(t, re.MatchString("REC-2026-00001"))
	assert.True(t, re.MatchString("REC-2026-100000"))
	assert.False(t, re.MatchString("REC-2026-abc"))
	assert.False(t, re.MatchString("XREC-2026-00001"))
}

func alloc(amount float64) dto.AllocationRequest {
	id := uuid.New()
	return dto.AllocationRequest{StudentFeeID: &id, Amount: amount}
}

func TestValidateAllocations(t *testing.T) {
	require.NoError(t, ValidateAllocations(150000, []dto.AllocationRequest{alloc(100000), alloc(50000)}))
	require.NoError(t, ValidateAllocations(100.01, []dto.AllocationRequest{alloc(100)}), "within 0.01")

	err := ValidateAllocations(150000, []dto.AllocationRequest{alloc(100000)})
	assert.ErrorIs(t, err, helper.ErrConflict)
	assert.Equal(t, 409, helper.StatusFor(err))

	assert.ErrorIs(t, ValidateAllocations(10, nil), helper.ErrBadRequest)
	assert.ErrorIs(t, ValidateAllocations(10, []dto.AllocationRequest{{Amount: 10}}), helper.ErrBadRequest)
}

func TestApplyAndReverseAmount(t *testing.T) {
	paid, bal, st := ApplyAmount(0, 100000, 40000)
	assert.Equal(t, 40000.0, paid)
	assert.Equal(t, 60000.0, bal)
	assert.Equal(t, "partial", st)

	paid, bal, st = ApplyAmount(paid, bal, 60000)
	assert.Equal(t, 100000.0, paid)
	assert.Equal(t, 0.0, bal)
	assert.Equal(t, "paid", st)

	paid, bal, st = ReverseAmount(paid, bal, 60000)
	assert.Equal(t, 40000.0, paid)
	assert.Equal(t, 60000.0, bal)
	assert.Equal(t, "partial", st)

	_, bal, st = ReverseAmount(paid, bal, 40000)
	assert.Equal(t, 100000.0, bal)
	assert.Equal(t, "pending", st)
}

func TestApplyAmountCents(t *testing.T) {
	paid, bal, _ := ApplyAmount(0.1, 0.3, 0.2)
	assert.Equal(t, 0.3, paid)
	assert.Equal(t, 0.1, bal)
}

func TestVerifySignature(t *testing.T) {
	n := dto.MidtransNotification{OrderID: "SF-ABCD1234-1", StatusCode: "200", GrossAmount: "150000.00"}
	n.SignatureKey = sha512sum(n.OrderID + n.StatusCode + n.GrossAmount + "server-key")

	assert.True(t, VerifySignature(n, "server-key"))
	assert.False(t, VerifySignature(n, "other-key"))
	assert.False(t, VerifySignature(n, ""))

	n.GrossAmount = "1.00"
	assert.False(t, VerifySignature(n, "server-key"), "tampered amount")

	n.SignatureKey = ""
	assert.False(t, VerifySignature(n, "server-key"))
}

func TestMapTransactionStatus(t *testing.T) {
	cases := []struct{ ts, fraud, want string }{
		{"settlement", "", model.StatusCompleted},
		{"capture", "accept", model.StatusCompleted},
		{"capture", "challenge", ""},
		{"capture", "deny", model.StatusCancelled},
		{"pending", "", ""},
		{"deny", "", model.StatusCancelled},
		{"cancel", "", model.StatusCancelled},
		{"EXPIRE", "", model.StatusCancelled},
		{"refund", "", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MapTransactionStatus(tc.ts, tc.fraud), tc.ts+"/"+tc.fraud)
	}
}

func TestOrderID(t *testing.T) {
	id := uuid.MustParse("0a1b2c3d-0000-0000-0000-000000000000")
	assert.Equal(t, "SF-0A1B2C3D-1760000000", OrderID(id, time.Unix(1760000000, 0)))
}

func TestReceiptLines(t *testing.T) {
	tuition, n := "Frais de scolarité", 2
	lines := ReceiptLines([]dto.AllocationItem{
		{PaymentAllocationModel: model.PaymentAllocationModel{PaymentAllocationAmount: 50000}, FeeTypeName: &tuition},
		{PaymentAllocationModel: model.PaymentAllocationModel{PaymentAllocationAmount: 25000}, InstallmentNumber: &n},
		{PaymentAllocationModel: model.PaymentAllocationModel{PaymentAllocationAmount: 10000}, FeeTypeName: &tuition, InstallmentNumber: &n},
	})
	require.Len(t, lines, 3)
	assert.Equal(t, "Frais de scolarité", lines[0].Label)
	assert.Equal(t, "Versement 2", lines[1].Label)
	assert.Equal(t, "Frais de scolarité (versement 2)", lines[2].Label)
	assert.Equal(t, 25000.0, lines[1].Amount)
}

func TestBuildCashierWorkbook(t *testing.T) {
	sum := dto.CashierSummary{
		Date:          "2026-10-19",
		TotalPayments: 2,
		TotalAmount:   75000,
		ByMethod: []dto.MethodTotal{
			{Method: model.MethodCash, Count: 1, Amount: 50000},
			{Method: model.MethodMobileMoney, Count: 1, Amount: 25000},
		},
	}
	rows := []dto.PaymentItem{{
		PaymentModel: model.PaymentModel{
			PaymentReceiptNumber: "REC-2026-00001",
			PaymentDate:          time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
			PaymentMethod:        model.MethodCash,
			PaymentAmount:        50000,
		},
		StudentName:      "Awa Koné",
		StudentMatricule: "MAT-0001",
	}}
	f, err := BuildCashierWorkbook(sum, rows)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Caisse", "A2")
	require.NoError(t, err)
	assert.Equal(t, "REC-2026-00001", v)
	v, _ = f.GetCellValue("Caisse", "E2")
	assert.Equal(t, "Espèces", v)
	v, _ = f.GetCellValue("Synthese", "A4")
	assert.Equal(t, "Total", v)
	v, _ = f.GetCellValue("Synthese", "C4")
	assert.Equal(t, "75000", v)
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	name := "Frais de scolarité élève"
	assert.Equal(t, "Frais de scolarité", truncate(name, 18))
	assert.True(t, utf8.ValidString(truncate("ééééé", 3)))
	assert.Equal(t, "ééé", truncate("ééééé", 3))
	assert.Equal(t, name, truncate(name, 50))
}

func TestSnapFailureLogIncludesCancelError(t *testing.T) {
	line := snapFailureLog("snap token gagal: timeout", "SCH-1", nil)
	assert.Contains(t, line, "order=SCH-1")
	assert.NotContains(t, line, "tetap pending")

	line = snapFailureLog("snap token gagal: timeout", "SCH-1", errors.New("conn reset"))
	assert.Contains(t, line, "tetap pending")
	assert.Contains(t, line, "conn reset")
}
