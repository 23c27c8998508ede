package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string          `json:"name" validate:"nonblank"`
	Price decimal.Decimal `json:"price" validate:"gte=0"`
	Qty   int             `json:"qty" validate:"gte=1"`
}

func TestStruct(t *testing.T) {
	assert.NoError(t, Struct(sample{Name: "ok", Price: decimal.NewFromInt(3), Qty: 1}))

	err := Struct(sample{Name: "  ", Price: decimal.NewFromInt(-1), Qty: 0})
	require.Error(t, err)

	fields := Fields(err)
	require.Len(t, fields, 3)
	assert.Equal(t, "name", fields[0].Field)
	assert.Equal(t, "nonblank", fields[0].Tag)
	assert.Equal(t, "price", fields[1].Field)
	assert.Equal(t, "price must be at least 0", fields[1].Message)
	assert.Equal(t, "qty", fields[2].Field)
}

func TestFieldsIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, Fields(assert.AnError))
}
