package ocr

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"R$ 1.234,56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"45,90", "45.9"},
		{"45,9", "45.9"},
		{"TOTAL R$ 20,00", "20"},
		{"1.234", "1234"},
		{"R$ 1.500.000,00", "1500000"},
		{"valor: 15,50.", "15.5"},
		{"350", "350"},
	}
	for _, c := range cases {
		got, err := ParseAmount(c.in)
		require.NoError(t, err, c.in)
		assert.True(t, decimal.RequireFromString(c.want).Equal(got), "%s: got %s want %s", c.in, got, c.want)
	}
}

func TestParseAmountRejectsEmpty(t *testing.T) {
	_, err := ParseAmount("  ")
	assert.Error(t, err)
	_, err = ParseAmount("R$")
	assert.Error(t, err)
}

func TestIsPlausibleAmount(t *testing.T) {
	assert.True(t, isPlausibleAmount("R$ 45,90"))
	assert.True(t, isPlausibleAmount("45,90"))
	assert.True(t, isPlausibleAmount("350"))
	assert.False(t, isPlausibleAmount("12345678000199")) // CNPJ
	assert.False(t, isPlausibleAmount("0800"))
	assert.False(t, isPlausibleAmount("7"))
}
