package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneyapp/moneyapp/internal/domain/extraction/bank"
	"github.com/moneyapp/moneyapp/internal/domain/transaction"
)

func TestMap_HDFCDebitRow(t *testing.T) {
	m := NewMapper()

	headers := []string{"Date", "Narration", "Debit", "Credit", "Balance"}
	rows := [][]string{
		{"01/02/23", "Grocery Store", "500.00", "", "10000"},
	}

	txs, err := m.Map(headers, rows, bank.HDFC)
	require.NoError(t, err)
	require.Len(t, txs, 1)

	assert.Equal(t, "2023-02-01", txs[0].Date)
	assert.Equal(t, "Grocery Store", txs[0].Description)
	assert.Equal(t, "500", txs[0].Amount.String())
	assert.Equal(t, transaction.TypeDebit, txs[0].Type)
	assert.Equal(t, transaction.DefaultCategory, txs[0].Category)
	assert.Equal(t, "HDFC Bank", txs[0].Bank)
}

func TestMap_CreditWinsOverDebit(t *testing.T) {
	m := NewMapper()

	headers := []string{"Date", "Narration", "Debit", "Credit", "Balance"}
	rows := [][]string{
		{"01/02/23", "Both Columns Filled", "100.00", "900.00", "5000"},
	}

	txs, err := m.Map(headers, rows, bank.HDFC)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, transaction.TypeCredit, txs[0].Type)
	assert.Equal(t, "900", txs[0].Amount.String())
}

func TestMap_MissingColumnsListsAll(t *testing.T) {
	m := NewMapper()

	headers := []string{"Date", "Narration"}
	_, err := m.Map(headers, nil, bank.HDFC)

	var missing *MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.ElementsMatch(t, []string{"debit", "credit", "balance"}, missing.Columns)
	assert.Contains(t, missing.Error(), "HDFC Bank")
}

func TestMap_CaseInsensitiveColumns(t *testing.T) {
	m := NewMapper()

	headers := []string{"DATE", "NARRATION", "debit", "Credit", " Balance "}
	rows := [][]string{
		{"01/02/23", "Upper Case Export", "", "250.00", "1000"},
	}

	txs, err := m.Map(headers, rows, bank.HDFC)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, transaction.TypeCredit, txs[0].Type)
}

func TestMap_SkipsBadRows(t *testing.T) {
	m := NewMapper()

	headers := []string{"Date", "Narration", "Debit", "Credit", "Balance"}
	rows := [][]string{
		{"not-a-date", "Bad Date", "100.00", "", "1"},
		{"02/02/23", "", "100.00", "", "1"},
		{"03/02/23", "No Amounts", "", "", "1"},
		{"04/02/23", "Zero Amount", "0.00", "", "1"},
		{"05/02/23", "Good Row", "75.00", "", "1"},
		{"06/02/23", "Short Row"},
	}

	txs, err := m.Map(headers, rows, bank.HDFC)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "Good Row", txs[0].Description)
}

func TestMap_SBIDateFormat(t *testing.T) {
	m := NewMapper()

	headers := []string{"Date", "Description", "Debit", "Credit", "Balance"}
	rows := [][]string{
		{"02 Jan 2024", "Cheque Deposit", "", "1,200.00", "8000"},
	}

	txs, err := m.Map(headers, rows, bank.SBI)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "2024-01-02", txs[0].Date)
	assert.Equal(t, "1200", txs[0].Amount.String())
}
