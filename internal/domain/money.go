package domain

import (
	money "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatAmount renders a decimal amount in the given ISO currency, using the
// currency's own symbol and fraction rules ("$1,234.50", "¥1,234").
func FormatAmount(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return currency + " " + amount.StringFixed(2)
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), cur.Code).Display()
}

// IsKnownCurrency reports whether code is an ISO currency go-money knows.
func IsKnownCurrency(code string) bool {
	return money.GetCurrency(code) != nil
}
