// file: internals/helpers/money.go
package helper

import "math"

// MoneyEpsilon: toleransi selisih nominal (0.01)
const MoneyEpsilon = 0.01

// Round2: pembulatan 2 desimal (half away from zero)
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ToCents / FromCents: aritmetika uang dikerjakan di integer sen.
func ToCents(v float64) int64 { return int64(math.Round(v * 100)) }

func FromCents(c int64) float64 { return float64(c) / 100 }

// AmountsEqual: |a-b| <= 0.01
func AmountsEqual(a, b float64) bool {
	return math.Abs(a-b) <= MoneyEpsilon+1e-9
}

// Percent: part/total*100 dibulatkan 2 desimal; total 0 → 0.
func Percent(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return Round2(part / total * 100)
}
