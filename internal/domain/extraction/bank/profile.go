// Package bank holds the static catalog of known statement sources and the
// logic that classifies a document against it.
//
// Each supported bank is a variant of the closed Bank enum; dispatch is an
// exhaustive switch, never a string branch. Profiles are immutable shared
// configuration, safe for concurrent reads.
package bank

import "regexp"

// Bank identifies a known statement source.
type Bank int

const (
	Unknown Bank = iota
	HDFC
	SBI
	ICICI
	Axis
	Kotak
)

// All lists the known banks in declared priority order. Identification
// checks profiles in this order and the first match wins.
var All = []Bank{HDFC, SBI, ICICI, Axis, Kotak}

func (b Bank) String() string {
	switch b {
	case HDFC:
		return "hdfc"
	case SBI:
		return "sbi"
	case ICICI:
		return "icici"
	case Axis:
		return "axis"
	case Kotak:
		return "kotak"
	default:
		return "unknown"
	}
}

// DisplayName is the user-facing name attached to extracted records.
func (b Bank) DisplayName() string {
	return b.Profile().DisplayName
}

// Pattern is one extraction template in a profile's cascade. Capture-group
// roles are explicit because some templates reverse the description/amount
// order; the parser must read them from here, never assume positions.
type Pattern struct {
	Re          *regexp.Regexp
	DateGroup   int
	DescGroup   int
	AmountGroup int
	// TypeGroup, when non-zero, captures a CR/DR token that decides the
	// transaction type directly. Zero means the parser inspects the whole
	// matched span for indicator tokens instead.
	TypeGroup int
}

// Schema names the required CSV columns for a bank, matched
// case-insensitively. Balance is empty for banks whose exports omit it.
type Schema struct {
	Date        string
	Description string
	Debit       string
	Credit      string
	Balance     string
}

// Required returns the column names a tabular upload must contain.
func (s Schema) Required() []string {
	cols := []string{s.Date, s.Description, s.Debit, s.Credit}
	if s.Balance != "" {
		cols = append(cols, s.Balance)
	}
	return cols
}

// Profile is the immutable per-bank configuration: how to recognize the
// bank and how to pull transactions out of its statements.
type Profile struct {
	DisplayName string
	Keywords    []string
	Schema      Schema
	DateFormat  string
	Patterns    []Pattern
}

// Profile returns the configuration for the bank. Unknown yields an empty
// profile; callers route it to the generic pattern cascade.
func (b Bank) Profile() Profile {
	switch b {
	case HDFC:
		return hdfcProfile
	case SBI:
		return sbiProfile
	case ICICI:
		return iciciProfile
	case Axis:
		return axisProfile
	case Kotak:
		return kotakProfile
	default:
		return Profile{}
	}
}

var hdfcProfile = Profile{
	DisplayName: "HDFC Bank",
	Keywords:    []string{"HDFC BANK", "HDFC Bank Statement", "HDFCBank"},
	Schema: Schema{
		Date:        "date",
		Description: "narration",
		Debit:       "debit",
		Credit:      "credit",
		Balance:     "balance",
	},
	DateFormat: "02/01/06",
	Patterns: []Pattern{
		// UPI/NEFT/IMPS narrations first; they are the bulk of retail statements.
		{
			Re:          regexp.MustCompile(`(?i)(\d{2}/\d{2}/\d{2})\s+([^0-9]+?(?:UPI|NEFT|IMPS)[^0-9]*?)\s+([\d,]+\.\d{2})\s*(?:Cr|Dr)?`),
			DateGroup:   1,
			DescGroup:   2,
			AmountGroup: 3,
		},
		{
			Re:          regexp.MustCompile(`(?i)(\d{2}/\d{2}/\d{2})\s+([^0-9]+?)\s+([\d,]+\.\d{2})\s*(?:Cr|Dr)?`),
			DateGroup:   1,
			DescGroup:   2,
			AmountGroup: 3,
		},
		// Reversed layout: amount before narration.
		{
			Re:          regexp.MustCompile(`(?i)(\d{2}/\d{2}/\d{2})\s+([\d,]+\.\d{2})\s*(?:Cr|Dr)?\s+([^0-9]+(?:UPI|NEFT|IMPS)?[^0-9]*)`),
			DateGroup:   1,
			DescGroup:   3,
			AmountGroup: 2,
		},
	},
}

var sbiProfile = Profile{
	DisplayName: "State Bank of India",
	Keywords:    []string{"State Bank of India", "SBI Statement", "www.onlinesbi.com"},
	Schema: Schema{
		Date:        "date",
		Description: "description",
		Debit:       "debit",
		Credit:      "credit",
		Balance:     "balance",
	},
	DateFormat: "02 Jan 2006",
	Patterns: []Pattern{
		{
			Re:          regexp.MustCompile(`(\d{2}/\d{2}/\d{4})\s+([\w\s\-\/]+?)\s+([\d,]+\.\d{2})\s*(CR|DR)`),
			DateGroup:   1,
			DescGroup:   2,
			AmountGroup: 3,
			TypeGroup:   4,
		},
	},
}

var iciciProfile = Profile{
	DisplayName: "ICICI Bank",
	Keywords:    []string{"ICICI Bank", "ICICI Bank Statement", "www.icicibank.com"},
	Schema: Schema{
		Date:        "date",
		Description: "particulars",
		Debit:       "debit",
		Credit:      "credit",
		Balance:     "balance",
	},
	DateFormat: "02-01-2006",
	Patterns: []Pattern{
		{
			Re:          regexp.MustCompile(`(\d{2}/\d{2}/\d{4})\s+([\w\s\-\/]+?)\s+([\d,]+\.\d{2})\s*(CR|DR)`),
			DateGroup:   1,
			DescGroup:   2,
			AmountGroup: 3,
			TypeGroup:   4,
		},
	},
}

var axisProfile = Profile{
	DisplayName: "Axis Bank",
	Keywords:    []string{"Axis Bank", "Axis Bank Statement", "www.axisbank.com"},
	Schema: Schema{
		Date:        "date",
		Description: "particulars",
		Debit:       "debit",
		Credit:      "credit",
		Balance:     "balance",
	},
	DateFormat: "02-01-2006",
	Patterns: []Pattern{
		{
			Re:          regexp.MustCompile(`(?i)(\d{2}-\d{2}-\d{4})\s+([^0-9]+?)\s+([\d,]+\.\d{2})\s*(?:Cr|Dr)`),
			DateGroup:   1,
			DescGroup:   2,
			AmountGroup: 3,
		},
		{
			Re:          regexp.MustCompile(`(?i)(\d{2}-\d{2}-\d{4})\s+([^0-9]+?(?:UPI|NEFT|IMPS)[^0-9]*?)\s+([\d,]+\.\d{2})`),
			DateGroup:   1,
			DescGroup:   2,
			AmountGroup: 3,
		},
		// Some Axis exports print dates as "12 Mar 2024".
		{
			Re:          regexp.MustCompile(`(?i)(\d{2}\s+[A-Za-z]+\s+\d{4})\s+([^0-9]+?)\s+(-?[\d,]+\.\d{2})`),
			DateGroup:   1,
			DescGroup:   2,
			AmountGroup: 3,
		},
	},
}

var kotakProfile = Profile{
	DisplayName: "Kotak Mahindra Bank",
	Keywords:    []string{"Kotak Mahindra Bank", "Kotak Statement", "www.kotak.com"},
	Schema: Schema{
		Date:        "date",
		Description: "narration",
		Debit:       "debit amount",
		Credit:      "credit amount",
	},
	DateFormat: "02/01/2006",
	Patterns: []Pattern{
		{
			Re:          regexp.MustCompile(`(\d{2}/\d{2}/\d{4})\s+([\w\s\-\/]+?)\s+([\d,]+\.\d{2})\s*(CR|DR)`),
			DateGroup:   1,
			DescGroup:   2,
			AmountGroup: 3,
			TypeGroup:   4,
		},
	},
}
