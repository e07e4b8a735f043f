// Package money converts between decimal amounts and integer minor units,
// and renders display strings with proper currency formatting.
package money

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ToMinorUnits converts a decimal rupee amount to paise, rounding to the
// nearest paisa.
func ToMinorUnits(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}

// FromMinorUnits converts paise back to a decimal rupee amount.
func FromMinorUnits(paise int64) decimal.Decimal {
	return decimal.NewFromInt(paise).Div(hundred)
}

// FormatINR renders an amount like "₹12,345.67" using the INR locale rules.
func FormatINR(d decimal.Decimal) string {
	return money.New(ToMinorUnits(d), money.INR).Display()
}
