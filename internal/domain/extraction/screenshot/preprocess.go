// Package screenshot extracts transactions from OCR'd payment-app
// screenshots with a line-oriented scan that carries date state across
// lines.
package screenshot

import "regexp"

// OCR output writes the rupee marker many ways: "Rs", "Rs.", "INR", or a
// misread digit 2 standing alone before the numerals. Preprocess collapses
// them all into the ₹ glyph so the amount pattern has one shape to match.
var (
	currencyWordRe = regexp.MustCompile(`(?i)\b(?:Rs\.?|INR)\s*`)
	// A lone "2" separated from the following numerals by whitespace is a
	// misread ₹. Requiring the whitespace keeps real amounts such as
	// "₹250.00" intact.
	strayDigitRe    = regexp.MustCompile(`(^|[^0-9₹])2(\s+[0-9])`)
	doubledMarkerRe = regexp.MustCompile(`₹[\s₹]*₹`)
)

// Preprocess canonicalizes currency markers in raw OCR text.
func Preprocess(text string) string {
	text = currencyWordRe.ReplaceAllString(text, "₹")
	text = strayDigitRe.ReplaceAllString(text, "${1}₹${2}")
	text = doubledMarkerRe.ReplaceAllString(text, "₹")
	return text
}
