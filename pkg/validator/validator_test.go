package validator_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodegas-api/pkg/validator"
)

type sample struct {
	Name   string          `validate:"notblank"`
	Qty    int             `validate:"gt=0"`
	Amount decimal.Decimal `validate:"gte=0"`
}

func TestValidateStruct_OK(t *testing.T) {
	errs := validator.ValidateStruct(sample{Name: "x", Qty: 1, Amount: decimal.NewFromInt(3)})
	assert.Nil(t, errs)
}

func TestValidateStruct_ReportaCampos(t *testing.T) {
	errs := validator.ValidateStruct(sample{Name: "   ", Qty: 0, Amount: decimal.NewFromInt(-1)})
	require.Len(t, errs, 3)
	assert.Equal(t, "sample.Name", errs[0].Field)
	assert.Equal(t, "notblank", errs[0].Tag)
	assert.Equal(t, "gt", errs[1].Tag)
	assert.Equal(t, "gte", errs[2].Tag)
	assert.Contains(t, validator.Message(errs), "sample.Qty (gt=0)")
}
