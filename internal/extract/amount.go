package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	currencyTokens = regexp.MustCompile(`[€$£]|CHF|EUR|USD|FCFA|XOF|GBP|MAD`)
	europeanFormat = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+(,\d{1,2})?$`)
	angloFormat    = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+(\.\d{1,2})?$`)
)

// glyph confusions OCR produces in numeric contexts
var ocrGlyphs = strings.NewReplacer(
	"O", "0", "o", "0",
	"l", "1", "I", "1",
	"S", "5", "Z", "2",
)

// ParseAmount converts a raw monetary string into a float64. It repairs
// common OCR glyph confusions, strips currency tokens and separators, then
// classifies the remainder as European (dot thousands, comma decimal),
// Anglo (comma thousands, dot decimal) or plain before the final parse.
// Malformed input returns (0, false), never an error.
//
//	"1 234,56 €" -> 1234.56
//	"1.234,56"   -> 1234.56
//	"1,234.56"   -> 1234.56
//	"1'234.56"   -> 1234.56
//	"1O8,4O"     -> 108.40
//	"-120,50"    -> -120.50
func ParseAmount(s string) (float64, bool) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return 0, false
	}

	cleaned = ocrGlyphs.Replace(cleaned)
	cleaned = currencyTokens.ReplaceAllString(cleaned, "")

	// drop all whitespace, including NBSP thousands separators
	cleaned = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, cleaned)

	// Swiss apostrophe thousands separator
	cleaned = strings.ReplaceAll(cleaned, "'", "")

	switch {
	case europeanFormat.MatchString(cleaned):
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	case angloFormat.MatchString(cleaned):
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	default:
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
