package service

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"math"
	"strings"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/pkg/errors"

	"schoolhub_backend/internals/features/finance/payments/dto"
	"schoolhub_backend/internals/features/finance/payments/model"
)

/* =========================================================
   Midtrans client
========================================================= */

var (
	SnapClient snap.Client
	serverKey  string
)

// InitMidtrans dipanggil sekali saat bootstrap; useProduction=false → Sandbox.
func InitMidtrans(key string, useProduction bool) {
	serverKey = key
	env := midtrans.Sandbox
	if useProduction {
		env = midtrans.Production
	}
	SnapClient.New(key, env)
}

func MidtransEnabled() bool { return serverKey != "" }

type CustomerInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// GenerateSnapToken: order id = payment reference.
func GenerateSnapToken(p model.PaymentModel, cust CustomerInput, itemName string) (string, string, error) {
	if !MidtransEnabled() {
		return "", "", errors.New("midtrans belum dikonfigurasi")
	}
	if p.PaymentAmount <= 0 {
		return "", "", errors.New("payment_amount tidak valid")
	}
	if p.PaymentReference == nil || *p.PaymentReference == "" {
		return "", "", errors.New("payment_reference wajib (dipakai sebagai order id)")
	}
	gross := int64(math.Round(p.PaymentAmount))

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  *p.PaymentReference,
			GrossAmt: gross,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: cust.FirstName,
			LName: cust.LastName,
			Email: cust.Email,
			Phone: cust.Phone,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:       *p.PaymentReference,
			Price:    gross,
			Qty:      1,
			Name:     truncate(itemName, 50),
			Category: "frais scolaires",
		}},
		CustomField1: p.PaymentReceiptNumber,
	}

	resp, merr := SnapClient.CreateTransaction(req)
	if merr != nil {
		return "", "", errors.Wrap(merr, "gagal membuat transaksi midtrans")
	}
	return resp.Token, resp.RedirectURL, nil
}

/* =========================================================
   Webhook helpers
========================================================= */

func sha512sum(s string) string {
	h := sha512.Sum512([]byte(s))
	return hex.EncodeToString(h[:])
}

// VerifySignature: SHA512(order_id + status_code + gross_amount + server_key)
func VerifySignature(n dto.MidtransNotification, key string) bool {
	want := strings.ToLower(strings.TrimSpace(n.SignatureKey))
	if want == "" || key == "" {
		return false
	}
	got := sha512sum(n.OrderID + n.StatusCode + n.GrossAmount + key)
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// MapTransactionStatus: status Midtrans → status payment; "" = tidak berubah.
func MapTransactionStatus(transactionStatus, fraudStatus string) string {
	switch strings.ToLower(transactionStatus) {
	case "settlement":
		return model.StatusCompleted
	case "capture":
		if strings.ToLower(fraudStatus) == "accept" || fraudStatus == "" {
			return model.StatusCompleted
		}
		if strings.ToLower(fraudStatus) == "deny" {
			return model.StatusCancelled
		}
		return ""
	case "deny", "cancel", "expire", "failure":
		return model.StatusCancelled
	}
	return ""
}

// truncate: potong per rune supaya nama beraksen tidak terbelah.
func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
