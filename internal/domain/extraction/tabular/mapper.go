// Package tabular maps structured CSV and spreadsheet rows to transactions
// using a bank profile's column schema.
package tabular

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moneyapp/moneyapp/internal/domain/extraction/bank"
	"github.com/moneyapp/moneyapp/internal/domain/extraction/normalizer"
	"github.com/moneyapp/moneyapp/internal/domain/transaction"
)

// MissingColumnsError reports every schema column absent from the upload at
// once, so the caller sees the full gap instead of fixing columns one at a
// time.
type MissingColumnsError struct {
	Bank    bank.Bank
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s upload missing required columns: %s",
		e.Bank.DisplayName(), strings.Join(e.Columns, ", "))
}

// Mapper converts header-keyed rows into transactions.
type Mapper struct{}

func NewMapper() *Mapper {
	return &Mapper{}
}

// Map validates headers against the profile schema for b, then converts rows
// one at a time. Row conversion is partial-success: a row with a bad date,
// empty description, or no positive debit/credit amount is skipped and the
// rest still map. Column matching is case-insensitive on trimmed names.
func (m *Mapper) Map(headers []string, rows [][]string, b bank.Bank) ([]transaction.Transaction, error) {
	profile := b.Profile()
	schema := profile.Schema

	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var missing []string
	for _, col := range schema.Required() {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Bank: b, Columns: missing}
	}

	cell := func(row []string, col string) string {
		i := idx[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := make([]transaction.Transaction, 0, len(rows))
	for _, row := range rows {
		date, err := time.Parse(profile.DateFormat, cell(row, schema.Date))
		if err != nil {
			continue
		}

		desc := cell(row, schema.Description)
		if desc == "" {
			continue
		}

		// Credit wins when a row carries values in both columns.
		amount, txType := decimal.Zero, transaction.TypeDebit
		if credit, err := normalizer.ParseAmount(cell(row, schema.Credit)); err == nil && credit.IsPositive() {
			amount, txType = credit, transaction.TypeCredit
		} else if debit, err := normalizer.ParseAmount(cell(row, schema.Debit)); err == nil && debit.IsPositive() {
			amount = debit
		} else {
			continue
		}

		out = append(out, transaction.Transaction{
			Date:        date.Format(transaction.ISODate),
			Description: desc,
			Amount:      amount,
			Type:        txType,
			Category:    transaction.DefaultCategory,
			Bank:        profile.DisplayName,
		})
	}

	return out, nil
}
