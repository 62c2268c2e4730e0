package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMatriculePrefix(t *testing.T) {
	assert.Equal(t, "DK", MatriculePrefix("dkr-01"))
	assert.Equal(t, "LY", MatriculePrefix(" Lycee "))
	assert.Equal(t, "XX", MatriculePrefix(""))
	assert.Equal(t, "XX", MatriculePrefix("a"))
}

func TestFormatAndRange(t *testing.T) {
	yy := YearSuffix(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "25", yy)
	assert.Equal(t, "DK250001", FormatMatricule("DK", yy, 1))
	assert.Equal(t, "DK2512345", FormatMatricule("DK", yy, 12345))

	assert.Equal(t, []string{"DK250008", "DK250009", "DK250010"}, MatriculeRange("DK", "25", 10, 3))
	assert.Empty(t, MatriculeRange("DK", "25", 10, 0))
}
