package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultUserName(t *testing.T) {
	got := DefaultUserName("  Awa.Diop@Example.com ")
	assert.True(t, strings.HasPrefix(got, "awa.diop_"))
	assert.Len(t, got, len("awa.diop_")+4)

	long := DefaultUserName(strings.Repeat("x", 60) + "@mail.com")
	assert.Len(t, long, 45)
}
