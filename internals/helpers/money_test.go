package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 12.35, Round2(12.345))
	assert.Equal(t, 0.1, Round2(0.1))
	assert.Equal(t, -1.25, Round2(-1.245))
}

func TestCents(t *testing.T) {
	assert.Equal(t, int64(1999), ToCents(19.99))
	assert.Equal(t, int64(10), ToCents(0.1))
	assert.Equal(t, 150000.5, FromCents(15000050))
}

func TestAmountsEqual(t *testing.T) {
	assert.True(t, AmountsEqual(100, 100.01))
	assert.True(t, AmountsEqual(100, 99.99))
	assert.False(t, AmountsEqual(100, 100.02))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Percent(3, 0))
	assert.Equal(t, 33.33, Percent(1, 3))
	assert.Equal(t, 100.0, Percent(5, 5))
}
