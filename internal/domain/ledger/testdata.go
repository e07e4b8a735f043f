package ledger

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	"github.com/moneyapp/moneyapp/internal/domain/transaction"
)

// TestDataGenerator produces realistic transactions for tests and demos.
type TestDataGenerator struct {
	faker *gofakeit.Faker
}

// NewTestDataGenerator creates a generator with a fixed seed for
// reproducibility.
func NewTestDataGenerator(seed int64) *TestDataGenerator {
	return &TestDataGenerator{faker: gofakeit.New(seed)}
}

// Transaction generates one random transaction with a date in the past
// year.
func (g *TestDataGenerator) Transaction() transaction.Transaction {
	txType := transaction.TypeDebit
	if g.faker.Bool() {
		txType = transaction.TypeCredit
	}

	paise := g.faker.Number(100, 5_000_000)
	date := g.faker.DateRange(time.Now().AddDate(-1, 0, 0), time.Now())

	return transaction.Transaction{
		Date:        date.Format(transaction.ISODate),
		Description: fmt.Sprintf("%s %s", g.faker.Company(), g.faker.DigitN(4)),
		Amount:      decimal.NewFromInt(int64(paise)).Div(decimal.NewFromInt(100)),
		Type:        txType,
		Category:    transaction.DefaultCategory,
	}
}

// Transactions generates n distinct random transactions.
func (g *TestDataGenerator) Transactions(n int) []transaction.Transaction {
	seen := make(map[string]bool, n)
	out := make([]transaction.Transaction, 0, n)
	for len(out) < n {
		tx := g.Transaction()
		if seen[tx.DedupeKey()] {
			continue
		}
		seen[tx.DedupeKey()] = true
		out = append(out, tx)
	}
	return out
}
