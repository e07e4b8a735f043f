package screenshot

import (
	"regexp"
	"strings"
	"time"

	"github.com/moneyapp/moneyapp/internal/domain/extraction/normalizer"
	"github.com/moneyapp/moneyapp/internal/domain/transaction"
)

const monthNames = `Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:tember)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?`

var amountRe = regexp.MustCompile(`₹\s*(\d+(?:,\d+)*(?:\.\d{2})?)`)

// Date token shapes seen in screenshot headers and transaction lines.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b\d{1,2}\s+(?:` + monthNames + `)(?:\s+\d{2,4})?\b`),
	regexp.MustCompile(`\b\d{1,2}[-/]\d{1,2}[-/]\d{2,4}\b`),
	regexp.MustCompile(`\b\d{4}[-/]\d{1,2}[-/]\d{1,2}\b`),
	regexp.MustCompile(`(?i)\b(?:` + monthNames + `)\s*\d{1,2}(?:\s*,\s*|\s+)\d{4}\b`),
}

// Contextual description patterns, tried in order; the first whose trimmed
// capture exceeds two characters wins. The final entry is the catch-all run
// of text immediately preceding the amount marker.
var descriptionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:from|to|paid to|received from)\s+([A-Za-z0-9\s.-]+?)(?:\s+(?:on|at|via)\b|\s*₹|\s+\d{1,2}\s+(?:` + monthNames + `))`),
	regexp.MustCompile(`(?i)(?:UPI|IMPS|NEFT|RTGS)\s*[-:]?\s*([A-Za-z0-9\s.-]+)`),
	regexp.MustCompile(`(?i)([A-Za-z0-9\s.-]+?)\s+(?:paid|sent|received)\b`),
	regexp.MustCompile(`(?i)([A-Za-z0-9\s.-]+?)\s+(?:UPI|IMPS|NEFT|RTGS)\b`),
	regexp.MustCompile(`(?i)(?:payment|transfer)\s+(?:to|from)\s+([A-Za-z0-9\s.-]+)`),
	regexp.MustCompile(`([A-Za-z0-9\s.-]{3,}?)\s*₹`),
}

var (
	leadingPrefixRe      = regexp.MustCompile(`(?i)^(?:to|from|by|via|through)\s+`)
	trailingReferenceRe  = regexp.MustCompile(`(?i)\s*\b(?:UPI|IMPS|NEFT|RTGS|REF|ID|NO)\b[:\s]*(?:\d+|[A-Z0-9]+)?$`)
	collapseWhitespaceRe = regexp.MustCompile(`\s+`)
)

// Lines carrying any of these indicate a declined or errored payment; no
// record is produced for them.
var failedVocabulary = []string{
	"failed", "failure", "declined", "rejected", "unsuccessful",
	"transaction failed", "payment failed", "not successful",
	"could not process", "error", "invalid",
}

// Non-transaction header rows of common payment apps.
var headerVocabulary = []string{"search transaction", "status", "payment method"}

// Extractor scans preprocessed OCR text line by line. The clock is a field
// so tests can pin "today", the last-resort date fallback.
type Extractor struct {
	now func() time.Time
}

func NewExtractor() *Extractor {
	return &Extractor{now: time.Now}
}

// Extract runs the single-pass line scan. A line that is nothing but a date
// updates the carried date and yields no record; a transaction line takes
// its own date token when it has one, else the carried date, else today.
// Candidates are deduplicated within the run by (date, amount, type).
func (e *Extractor) Extract(text string) []transaction.Transaction {
	var (
		out         []transaction.Transaction
		currentDate string
		seen        = make(map[string]bool)
	)

	for _, line := range strings.Split(Preprocess(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isHeader(line) || isFailed(line) {
			continue
		}

		lineDate, dateToken := extractDate(line)
		if dateToken != "" && dateToken == line {
			currentDate = lineDate
			continue
		}

		m := amountRe.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}
		amount, err := normalizer.ParseAmount(line[m[2]:m[3]])
		if err != nil || !amount.IsPositive() {
			continue
		}

		date := lineDate
		if date == "" {
			date = currentDate
		}
		if date == "" {
			date = e.now().Format(transaction.ISODate)
		}

		txType := transaction.TypeDebit
		if strings.Contains(line, "+") {
			txType = transaction.TypeCredit
		}

		tx := transaction.Transaction{
			Date:        date,
			Description: extractDescription(line, m[0]),
			Amount:      amount,
			Type:        txType,
			Category:    transaction.DefaultCategory,
		}

		key := tx.Fingerprint()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tx)
	}

	return out
}

// extractDate returns the first parseable date token in the line as an ISO
// date plus the raw token, or empty strings when the line has none.
func extractDate(line string) (iso, token string) {
	for _, re := range datePatterns {
		candidate := re.FindString(line)
		if candidate == "" {
			continue
		}
		t, err := normalizer.ParseLooseDate(candidate)
		if err != nil {
			continue
		}
		return t.Format(transaction.ISODate), candidate
	}
	return "", ""
}

// extractDescription tries the contextual patterns first, then falls back
// to the raw text before the amount marker at amountStart.
func extractDescription(line string, amountStart int) string {
	for _, re := range descriptionPatterns {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if desc := cleanDescription(m[1]); len(desc) > 2 {
			return desc
		}
	}
	if desc := cleanDescription(line[:amountStart]); len(desc) > 2 {
		return desc
	}
	return transaction.UnknownDescription
}

func cleanDescription(s string) string {
	s = collapseWhitespaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
	s = leadingPrefixRe.ReplaceAllString(s, "")
	s = trailingReferenceRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func isHeader(line string) bool {
	lower := strings.ToLower(line)
	for _, h := range headerVocabulary {
		if strings.Contains(lower, h) {
			return true
		}
	}
	return false
}

func isFailed(line string) bool {
	lower := strings.ToLower(line)
	for _, v := range failedVocabulary {
		if strings.Contains(lower, v) {
			return true
		}
	}
	return false
}
