package helper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type sampleForm struct {
	Birth string  `validate:"required,datetime=2006-01-02,notfuture"`
	Start string  `validate:"omitempty,hhmm"`
	Note  *string `validate:"omitempty,max=5"`
}

func TestNotFuture(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Struct(sampleForm{Birth: "2010-05-01"}))

	tomorrow := time.Now().AddDate(0, 0, 2).Format("2006-01-02")
	err := v.Struct(sampleForm{Birth: tomorrow})
	assert.Error(t, err)
	assert.Equal(t, []string{"notfuture"}, ValidationFields(err)["Birth"])
}

func TestHHMM(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Struct(sampleForm{Birth: "2010-05-01", Start: "07:30"}))
	assert.Error(t, v.Struct(sampleForm{Birth: "2010-05-01", Start: "7:30"}))
	assert.Error(t, v.Struct(sampleForm{Birth: "2010-05-01", Start: "24:10"}))
}

func TestValidationFieldsNonValidatorError(t *testing.T) {
	assert.Nil(t, ValidationFields(assert.AnError))
}
