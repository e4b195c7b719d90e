package ocr

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBestAmountPrefersCurrencyMarker(t *testing.T) {
	amt, raw, ok := BestAmountFromMatches([]string{"9.999,00", "R$ 45,90", "120"})
	require.True(t, ok)
	assert.Equal(t, "R$ 45,90", raw)
	assert.True(t, decimal.RequireFromString("45.90").Equal(amt))
}

func TestBestAmountPrefersTotalOverLargerPlain(t *testing.T) {
	amt, _, ok := BestAmountFromMatches([]string{"R$ 80,00", "TOTAL R$ 75,00"})
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("75").Equal(amt))
}

func TestBestAmountNone(t *testing.T) {
	_, _, ok := BestAmountFromMatches(nil)
	assert.False(t, ok)
	_, _, ok = BestAmountFromMatches([]string{"R$ 0,00"})
	assert.False(t, ok)
}

func TestExtractAmountFromText(t *testing.T) {
	text := `PADARIA BOM PAO LTDA
CNPJ 12345678000199
2 PAO DE QUEIJO      12,00
1 CAFE                8,50
TOTAL R$ 20,50
OBRIGADO`
	res, err := ExtractAmountFromText(text)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("20.50").Equal(res.Amount), res.Amount.String())
	assert.Greater(t, res.Confidence, 0.8)
}

func TestExtractAmountFromTextNoAmount(t *testing.T) {
	_, err := ExtractAmountFromText("recibo sem valor legivel")
	assert.True(t, errors.Is(err, ErrNoAmount))
}

type fakeRecognizer struct{ text string }

func (f fakeRecognizer) Text(string) (string, error) { return f.text, nil }

func TestExtractAmountUsesRecognizer(t *testing.T) {
	res, err := ExtractAmount(fakeRecognizer{text: "Valor pago: R$ 1.234,56"}, "x.jpg")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1234.56").Equal(res.Amount))
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("a/b/RECIBO.JPG"))
	assert.False(t, IsImage("notes.txt"))
}
