package normalizer

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount means the string holds no parseable amount. Callers must
// discard the candidate record; an invalid amount is never stored as zero.
var ErrInvalidAmount = errors.New("invalid amount")

var amountCleaner = strings.NewReplacer(
	"₹", "",
	"$", "",
	"€", "",
	"£", "",
	",", "",
	" ", "",
)

// ParseAmount strips currency glyphs and group separators and parses the
// remainder as a decimal.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := amountCleaner.Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}
