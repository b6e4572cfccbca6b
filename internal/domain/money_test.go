package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		want     string
	}{
		{"usd with cents", "1234.5", "USD", "$1,234.50"},
		{"eur uses european separators", "1234.56", "EUR", "€1.234,56"},
		{"yen has no fraction", "1234", "JPY", "¥1,234"},
		{"negative", "-30", "USD", "-$30.00"},
		{"unknown code degrades readably", "10", "ZZZ", "ZZZ 10.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatAmount(decimal.RequireFromString(tt.amount), tt.currency)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsKnownCurrency(t *testing.T) {
	assert.True(t, IsKnownCurrency("USD"))
	assert.True(t, IsKnownCurrency("JPY"))
	assert.False(t, IsKnownCurrency("ZZZ"))
	assert.False(t, IsKnownCurrency(""))
}
