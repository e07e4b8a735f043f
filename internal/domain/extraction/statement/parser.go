// Package statement extracts transactions from unstructured statement text
// by running a bank profile's ordered pattern cascade over page text and,
// additively, over flattened table grids.
package statement

import (
	"regexp"
	"strings"

	"github.com/moneyapp/moneyapp/internal/domain/extraction/bank"
	"github.com/moneyapp/moneyapp/internal/domain/extraction/normalizer"
	"github.com/moneyapp/moneyapp/internal/domain/transaction"
)

// Page is one page of extracted document content: its text flow and any
// table grids found on it.
type Page struct {
	Text   string
	Tables [][][]string
}

// Two-pattern fallback cascade applied when the bank is unknown. The second
// template has no description group; its matches carry the unknown-text
// sentinel.
var genericPatterns = []bank.Pattern{
	{
		Re:          regexp.MustCompile(`(?i)(\d{2}[-/]\d{2}[-/]\d{2,4})\s+([^0-9]+?)\s+([\d,]+\.\d{2})`),
		DateGroup:   1,
		DescGroup:   2,
		AmountGroup: 3,
	},
	{
		Re:          regexp.MustCompile(`(?i)(\d{2}[-/]\d{2}[-/]\d{2,4})[^\n]*?((?:CR|DR|Cr\.|Dr\.|Credit|Debit))[^\n]*?([\d,]+\.\d{2})`),
		DateGroup:   1,
		TypeGroup:   2,
		AmountGroup: 3,
	},
}

var (
	creditTokenRe = regexp.MustCompile(`(?i)\b(?:cr|credit)\b`)
	spaceRe       = regexp.MustCompile(`\s+`)
)

// Parser applies pattern cascades to statement pages.
type Parser struct{}

// NewParser returns a statement parser. It is stateless and safe for
// concurrent use; per-call state lives in Parse.
func NewParser() *Parser {
	return &Parser{}
}

// Parse runs the profile cascade for b (or the generic cascade when b is
// bank.Unknown) over every page. Table grids are flattened and run through
// the same cascade as a second, additive pass to catch transactions whose
// columnar layout defeats text-flow extraction. A known profile whose
// cascade finds nothing gets one more chance through the generic patterns
// before the caller declares the document empty.
//
// Overlapping patterns and the table pass can capture the same transaction
// more than once, so candidates are deduplicated by (date, description,
// amount, type) before returning. Distinct same-day transactions of equal
// amounts survive because the description participates in the key.
func (p *Parser) Parse(pages []Page, b bank.Bank) []transaction.Transaction {
	patterns := b.Profile().Patterns
	if b == bank.Unknown {
		patterns = genericPatterns
	}

	bankName := ""
	if b != bank.Unknown {
		bankName = b.DisplayName()
	}

	out := parsePages(pages, patterns, bankName)
	if len(out) == 0 && b != bank.Unknown {
		out = parsePages(pages, genericPatterns, bankName)
	}
	return out
}

func parsePages(pages []Page, patterns []bank.Pattern, bankName string) []transaction.Transaction {
	seen := make(map[string]bool)
	var out []transaction.Transaction

	collect := func(text string) {
		for _, tx := range applyCascade(text, patterns, bankName) {
			key := tx.DedupeKey()
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, tx)
		}
	}

	for _, page := range pages {
		collect(page.Text)
		for _, table := range page.Tables {
			collect(flattenTable(table))
		}
	}

	return out
}

// applyCascade runs every pattern in order against text and validates each
// match into a candidate record. Invalid candidates (unparseable date,
// non-positive amount) are dropped, never propagated.
func applyCascade(text string, patterns []bank.Pattern, bankName string) []transaction.Transaction {
	var out []transaction.Transaction

	for _, pat := range patterns {
		for _, m := range pat.Re.FindAllStringSubmatchIndex(text, -1) {
			span := text[m[0]:m[1]]

			date, err := normalizer.ParseLooseDate(group(text, m, pat.DateGroup))
			if err != nil {
				continue
			}

			amount, err := normalizer.ParseAmount(group(text, m, pat.AmountGroup))
			if err != nil || !amount.IsPositive() {
				continue
			}

			desc := transaction.UnknownDescription
			if pat.DescGroup > 0 {
				if cleaned := cleanDescription(group(text, m, pat.DescGroup)); cleaned != "" {
					desc = cleaned
				}
			}

			txType := transaction.TypeDebit
			if pat.TypeGroup > 0 {
				if creditTokenRe.MatchString(group(text, m, pat.TypeGroup)) {
					txType = transaction.TypeCredit
				}
			} else if creditTokenRe.MatchString(span) {
				txType = transaction.TypeCredit
			}

			out = append(out, transaction.Transaction{
				Date:        date.Format(transaction.ISODate),
				Description: desc,
				Amount:      amount,
				Type:        txType,
				Category:    transaction.DefaultCategory,
				Bank:        bankName,
			})
		}
	}

	return out
}

// group returns the submatch for capture group n, or "" when it did not
// participate in the match.
func group(text string, m []int, n int) string {
	if n <= 0 || 2*n+1 >= len(m) || m[2*n] < 0 {
		return ""
	}
	return text[m[2*n]:m[2*n+1]]
}

// flattenTable joins cells with spaces and rows with newlines so the text
// cascade can run over columnar content.
func flattenTable(table [][]string) string {
	rows := make([]string, 0, len(table))
	for _, row := range table {
		rows = append(rows, strings.Join(row, " "))
	}
	return strings.Join(rows, "\n")
}

func cleanDescription(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
