package bank

import (
	"errors"
	"strings"
)

var (
	// ErrNotDetected means no identifier keyword matched the document text.
	ErrNotDetected = errors.New("bank not detected")
	// ErrCSVNotDetected means no profile schema matched the column layout.
	ErrCSVNotDetected = errors.New("csv bank not detected")
)

// Identify scans text for each profile's identifier keywords, checking
// profiles in registry order. Matching is case-insensitive substring search.
func Identify(text string) (Bank, bool) {
	upper := strings.ToUpper(text)
	for _, b := range All {
		for _, kw := range b.Profile().Keywords {
			if strings.Contains(upper, strings.ToUpper(kw)) {
				return b, true
			}
		}
	}
	return Unknown, false
}

// IdentifyTabular classifies a tabular upload by column-name superset
// matching against each profile's schema. Schemas overlap, so profiles are
// checked in a fixed priority order; when two remain indistinguishable a
// content sniff of the first data row breaks the tie.
func IdentifyTabular(headers []string, firstRow []string) (Bank, error) {
	cols := make(map[string]bool, len(headers))
	for _, h := range headers {
		cols[strings.ToLower(strings.TrimSpace(h))] = true
	}

	hasSchema := func(b Bank) bool {
		for _, required := range b.Profile().Schema.Required() {
			if !cols[required] {
				return false
			}
		}
		return true
	}

	sample := strings.Join(firstRow, " ")

	switch {
	case hasSchema(HDFC):
		// The narration layout is shared by white-label exports; trust a
		// row-level identifier over the schema when one is present.
		if b, ok := Identify(sample); ok {
			return b, nil
		}
		return HDFC, nil
	case hasSchema(SBI):
		return SBI, nil
	case hasSchema(ICICI):
		// ICICI and Axis share the particulars schema.
		if strings.Contains(strings.ToUpper(sample), "ICICI") {
			return ICICI, nil
		}
		return Axis, nil
	case hasSchema(Kotak):
		return Kotak, nil
	}

	return Unknown, ErrCSVNotDetected
}
