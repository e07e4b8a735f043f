package bank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Bank
	}{
		{"hdfc keyword", "HDFC BANK Account Statement for March", HDFC},
		{"hdfc lowercase", "statement issued by hdfc bank ltd", HDFC},
		{"sbi url", "visit www.onlinesbi.com for details", SBI},
		{"icici", "ICICI Bank Statement of Account", ICICI},
		{"axis", "Axis Bank Limited, registered office", Axis},
		{"kotak", "Kotak Mahindra Bank savings account", Kotak},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Identify(tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdentify_NoMatch(t *testing.T) {
	got, ok := Identify("a statement from some unknown lender")
	assert.False(t, ok)
	assert.Equal(t, Unknown, got)
}

func TestIdentify_RegistryOrderBreaksTies(t *testing.T) {
	// Both keywords present; HDFC comes first in the registry.
	got, ok := Identify("transfer from HDFC BANK to ICICI Bank")
	require.True(t, ok)
	assert.Equal(t, HDFC, got)
}

func TestIdentifyTabular(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		row     []string
		want    Bank
	}{
		{
			"hdfc narration schema",
			[]string{"Date", "Narration", "Debit", "Credit", "Balance"},
			[]string{"01/02/23", "UPI-SWIGGY", "500.00", "", "10000"},
			HDFC,
		},
		{
			"sbi description schema",
			[]string{"Date", "Description", "Debit", "Credit", "Balance"},
			[]string{"02 Jan 2024", "ATM WDL", "200.00", "", "5000"},
			SBI,
		},
		{
			"axis particulars without icici token",
			[]string{"Date", "Particulars", "Debit", "Credit", "Balance"},
			[]string{"01-02-2024", "NEFT TRANSFER", "", "900.00", "1200"},
			Axis,
		},
		{
			"icici particulars with row token",
			[]string{"Date", "Particulars", "Debit", "Credit", "Balance"},
			[]string{"01-02-2024", "ICICI CREDIT CARD PAYMENT", "450.00", "", "800"},
			ICICI,
		},
		{
			"kotak amount columns without balance",
			[]string{"Date", "Narration", "Debit Amount", "Credit Amount"},
			[]string{"01/02/2024", "IMPS", "100.00", ""},
			Kotak,
		},
		{
			"case insensitive headers",
			[]string{"DATE", "narration", "DEBIT", "credit", "Balance"},
			[]string{"01/02/23", "POS PURCHASE", "50.00", "", "100"},
			HDFC,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IdentifyTabular(tt.headers, tt.row)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdentifyTabular_NoMatch(t *testing.T) {
	_, err := IdentifyTabular([]string{"When", "What", "How Much"}, []string{"yesterday", "coffee", "3.50"})
	assert.ErrorIs(t, err, ErrCSVNotDetected)
}

func TestProfiles_Complete(t *testing.T) {
	for _, b := range All {
		p := b.Profile()
		assert.NotEmpty(t, p.DisplayName, b.String())
		assert.NotEmpty(t, p.Keywords, b.String())
		assert.NotEmpty(t, p.DateFormat, b.String())
		assert.NotEmpty(t, p.Patterns, b.String())
		for i, pat := range p.Patterns {
			assert.NotNil(t, pat.Re, "%s pattern %d", b, i)
			assert.Positive(t, pat.DateGroup, "%s pattern %d", b, i)
			assert.Positive(t, pat.AmountGroup, "%s pattern %d", b, i)
		}
	}
}

func TestKotakSchema_OmitsBalance(t *testing.T) {
	required := Kotak.Profile().Schema.Required()
	assert.NotContains(t, required, "balance")
	assert.Contains(t, required, "debit amount")
}
