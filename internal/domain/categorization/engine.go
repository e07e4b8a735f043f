// Package categorization tags transactions with a spending category from a
// static keyword table.
//
// Matching runs in two stages: an Aho-Corasick pass that finds every
// keyword in one sweep of the description, then a fuzzy fallback that
// catches OCR-mangled merchant names ("Swigy", "Zomatoo") within a small
// Levenshtein distance.
package categorization

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/moneyapp/moneyapp/internal/domain/transaction"
)

// Category labels attached to transactions.
const (
	Food          = "Food & Dining"
	Transport     = "Transportation"
	Shopping      = "Shopping"
	Utilities     = "Bills & Utilities"
	Entertainment = "Entertainment"
	Health        = "Health & Medical"
	Rent          = "Rent"
	Salary        = "Salary"
	Investment    = "Investments"
	Other         = transaction.DefaultCategory
)

// keywordTable maps each category to the lowercase keywords that imply it.
// Order matters: the first category whose keyword appears wins, so the more
// specific buckets come before the broad ones.
var keywordTable = []struct {
	category string
	keywords []string
}{
	{Food, []string{"food", "restaurant", "cafe", "swiggy", "zomato", "dinner", "lunch", "breakfast"}},
	{Transport, []string{"uber", "ola", "taxi", "auto", "petrol", "fuel", "metro", "bus", "train"}},
	{Shopping, []string{"amazon", "flipkart", "mall", "shop", "store", "market"}},
	{Utilities, []string{"electricity", "water", "gas", "internet", "wifi", "broadband", "mobile", "phone"}},
	{Entertainment, []string{"movie", "netflix", "amazon prime", "hotstar", "theatre", "concert"}},
	{Health, []string{"medical", "medicine", "hospital", "doctor", "pharmacy", "clinic"}},
	{Rent, []string{"rent", "house rent", "accommodation"}},
	{Salary, []string{"salary", "payroll", "income"}},
	{Investment, []string{"mutual fund", "stocks", "shares", "investment"}},
}

// maxFuzzyDistance bounds the Levenshtein fallback; anything farther is
// treated as no match rather than a guess.
const maxFuzzyDistance = 1

// Engine is immutable after construction and safe for concurrent use.
type Engine struct {
	matcher  *ahocorasick.Matcher
	keywords []string
	category []string
}

// NewEngine builds the matcher from the static keyword table.
func NewEngine() *Engine {
	var (
		keywords []string
		category []string
		patterns [][]byte
	)
	for _, row := range keywordTable {
		for _, kw := range row.keywords {
			keywords = append(keywords, kw)
			category = append(category, row.category)
			patterns = append(patterns, []byte(kw))
		}
	}
	return &Engine{
		matcher:  ahocorasick.NewMatcher(patterns),
		keywords: keywords,
		category: category,
	}
}

// Categories lists every label the engine can assign.
func (e *Engine) Categories() []string {
	out := make([]string, 0, len(keywordTable)+1)
	for _, row := range keywordTable {
		out = append(out, row.category)
	}
	return append(out, Other)
}

// Categorize returns the category for one transaction. Salary keywords only
// count for credits; a debit to "Salary Advance Loan" is not income.
func (e *Engine) Categorize(tx transaction.Transaction) string {
	desc := strings.ToLower(tx.Description)
	if desc == "" {
		return Other
	}

	best := -1
	for _, idx := range e.matcher.Match([]byte(desc)) {
		if idx < 0 || idx >= len(e.keywords) {
			continue
		}
		if e.category[idx] == Salary && tx.Type != transaction.TypeCredit {
			continue
		}
		if best == -1 || idx < best {
			best = idx
		}
	}
	if best >= 0 {
		return e.category[best]
	}

	return e.fuzzyCategory(desc, tx.Type)
}

// Tag assigns categories in place, leaving already-labelled records alone.
func (e *Engine) Tag(txs []transaction.Transaction) {
	for i := range txs {
		if txs[i].Category == "" || txs[i].Category == Other {
			txs[i].Category = e.Categorize(txs[i])
		}
	}
}

// fuzzyCategory checks each description word against the keyword list
// within the distance bound. Short words are skipped; at three characters
// one edit turns "ola" into "old".
func (e *Engine) fuzzyCategory(desc string, txType transaction.Type) string {
	for _, word := range strings.Fields(desc) {
		if len(word) <= 3 {
			continue
		}
		for i, kw := range e.keywords {
			if len(kw) <= 3 {
				continue
			}
			if e.category[i] == Salary && txType != transaction.TypeCredit {
				continue
			}
			if fuzzy.LevenshteinDistance(word, kw) <= maxFuzzyDistance {
				return e.category[i]
			}
		}
	}
	return Other
}
