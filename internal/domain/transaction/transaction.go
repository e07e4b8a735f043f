// Package transaction defines the canonical transaction record produced by
// every extraction component and consumed by the ledger and API layers.
package transaction

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Type classifies a transaction as money in or money out.
type Type string

const (
	TypeCredit Type = "credit"
	TypeDebit  Type = "debit"
)

// Sentinel values used when extraction cannot resolve a field.
const (
	UnknownDescription = "Unknown Transaction"
	DefaultCategory    = "Other"
)

// ISODate is the canonical date layout for every stored record.
const ISODate = "2006-01-02"

// Transaction is the sole output entity of the extraction core. Records are
// created fresh per parse call and hold no back-reference to their source.
type Transaction struct {
	Date        string          `json:"date" csv:"date"`
	Description string          `json:"description" csv:"description"`
	Amount      decimal.Decimal `json:"amount" csv:"amount"`
	Type        Type            `json:"type" csv:"type"`
	Category    string          `json:"category" csv:"category"`
	Bank        string          `json:"bank,omitempty" csv:"bank"`
}

// Fingerprint identifies a transaction within a single extraction run.
// Two candidates with the same date, amount and type are considered the
// same extraction and only the first is kept.
func (t Transaction) Fingerprint() string {
	return fmt.Sprintf("%s_%s_%s", t.Date, t.Amount.String(), t.Type)
}

// DedupeKey identifies a transaction across runs. Unlike Fingerprint it
// includes the description, so two distinct same-day purchases of the same
// amount are not collapsed.
func (t Transaction) DedupeKey() string {
	return fmt.Sprintf("%s_%s_%s_%s", t.Date, t.Amount.String(), t.Description, t.Type)
}
