package view

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finboard/finboard/internal/financial"
)

func TestFormatterEnglish(t *testing.T) {
	f := NewFormatter("en")
	assert.Equal(t, "1,234,567", f.Int(1234567))
	assert.Equal(t, "1,500,000", f.Decimal(decimal.RequireFromString("1500000.00")))
	assert.Equal(t, "1,234.5", f.Decimal(decimal.RequireFromString("1234.504")))
	assert.Equal(t, "-20", f.Decimal(decimal.RequireFromString("-20")))
}

func TestFormatterPersianDigits(t *testing.T) {
	f := NewFormatter(DefaultLocale)
	out := f.Int(1234)
	assert.Contains(t, out, "۱")
	assert.NotContains(t, out, "1")
}

func TestFormatterFallsBackOnBadLocale(t *testing.T) {
	assert.NotPanics(t, func() { NewFormatter("not a locale!!").Int(5) })
}

func TestFormatterDates(t *testing.T) {
	f := NewFormatter("en")
	assert.Equal(t, "2024-03-05", f.Date(financial.NewDate(2024, time.March, 5)))
	assert.Equal(t, "", f.Date(financial.Date{}))
	assert.Equal(t, "2024-03-05 14:30", f.Time(time.Date(2024, 3, 5, 14, 30, 59, 0, time.UTC)))
	assert.Equal(t, "", f.Time(time.Time{}))
}

func TestDict(t *testing.T) {
	m, err := dict("Page", 1, "Placeholder", "x")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"Page": 1, "Placeholder": "x"}, m)

	_, err = dict("odd")
	assert.Error(t, err)
	_, err = dict(1, 2)
	assert.Error(t, err)
}
