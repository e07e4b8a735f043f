// Package normalizer provides the stateless date and amount converters used
// by every extraction component.
package normalizer

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// ErrUnparseableDate means none of the supported layouts matched. Callers
// must treat it as "drop this record", never as a document-level failure.
var ErrUnparseableDate = errors.New("unparseable date")

// Layouts are tried strictly in order; the first that parses wins.
// 4-digit-year forms come before their 2-digit twins so "01/02/2023" is
// never truncated to year 20.
var dateLayouts = []string{
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"2006-01-02",
	"2006/01/02",
	"02/01/06",
	"02-01-06",
	"02.01.06",
}

// Month-name forms accepted by the screenshot pipeline in addition to the
// numeric layouts. The year-less form resolves against the current year.
var looseLayouts = []string{
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"January 2 2006",
	"2 Jan 06",
	"2 Jan",
	"2 January",
}

var monthTokenRe = regexp.MustCompile(`(?i)\b(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\b`)

// ParseDate tries the fixed ordered layout list and returns the first match.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrUnparseableDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrUnparseableDate
}

// ParseLooseDate accepts everything ParseDate does plus month-name forms,
// case-insensitively. OCR output often upper-cases month names, so the
// month token is canonicalized before parsing.
func ParseLooseDate(s string) (time.Time, error) {
	if t, err := ParseDate(s); err == nil {
		return t, nil
	}

	cleaned := monthTokenRe.ReplaceAllStringFunc(strings.TrimSpace(s), func(m string) string {
		return strings.ToUpper(m[:1]) + strings.ToLower(m[1:])
	})

	for _, layout := range looseLayouts {
		t, err := time.Parse(layout, cleaned)
		if err != nil {
			continue
		}
		if t.Year() == 0 {
			t = time.Date(time.Now().Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
		return t, nil
	}
	return time.Time{}, ErrUnparseableDate
}
