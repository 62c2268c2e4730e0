package service

import (
	"github.com/xuri/excelize/v2"

	"schoolhub_backend/internals/features/finance/payments/dto"
	"schoolhub_backend/internals/helpers/dbtime"
)

var (
	cashierHeader = []any{"Reçu", "Date", "Matricule", "Élève", "Mode", "Opérateur", "Référence", "Montant"}
	methodLabels  = map[string]string{
		"cash":          "Espèces",
		"bank_transfer": "Virement",
		"mobile_money":  "Mobile money",
		"card":          "Carte",
		"check":         "Chèque",
		"other":         "Autre",
	}
)

func MethodLabel(m string) string {
	if l, ok := methodLabels[m]; ok {
		return l
	}
	return m
}

// BuildCashierWorkbook: sheet "Caisse" (detail) + "Synthese" (per mode).
func BuildCashierWorkbook(sum dto.CashierSummary, rows []dto.PaymentItem) (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "Caisse"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &cashierHeader); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(cashierHeader))
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", bold); err != nil {
		return nil, err
	}
	for i, r := range rows {
		ref, op := "", ""
		if r.PaymentReference != nil {
			ref = *r.PaymentReference
		}
		if r.PaymentMobileProvider != nil {
			op = *r.PaymentMobileProvider
		}
		line := []any{
			r.PaymentReceiptNumber, r.PaymentDate.Format(dbtime.DateLayout), r.StudentMatricule, r.StudentName,
			MethodLabel(r.PaymentMethod), op, ref, r.PaymentAmount,
		}
		axis, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, axis, &line); err != nil {
			return nil, err
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, err
	}

	const synth = "Synthese"
	if _, err := f.NewSheet(synth); err != nil {
		return nil, err
	}
	head := []any{"Mode", "Nombre", "Montant"}
	if err := f.SetSheetRow(synth, "A1", &head); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(synth, "A1", "C1", bold); err != nil {
		return nil, err
	}
	for i, m := range sum.ByMethod {
		line := []any{MethodLabel(m.Method), m.Count, m.Amount}
		axis, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(synth, axis, &line); err != nil {
			return nil, err
		}
	}
	total := []any{"Total", sum.TotalPayments, sum.TotalAmount}
	axis, _ := excelize.CoordinatesToCellName(1, len(sum.ByMethod)+2)
	if err := f.SetSheetRow(synth, axis, &total); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(synth, axis, "C"+axis[1:], bold); err != nil {
		return nil, err
	}
	return f, nil
}
