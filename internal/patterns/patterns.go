// Package patterns holds the per-locale extraction tables: regex templates,
// month names, legal VAT rates and the keyword votes used for language
// detection. A Set is immutable; selection is a pure function of the
// language code.
package patterns

import "strings"

// Set is the fixed operation surface every locale must provide.
type Set interface {
	LanguageCode() string
	LanguageName() string

	// AmountPattern captures one monetary amount in the locale's format.
	// The captured group is the bare numeric string.
	AmountPattern() string
	DatePatterns() []string

	InvoiceNumberPatterns() []string
	InvoiceKeywords() []string
	SupplierPatterns() []string
	TTCPatterns() []string
	HTPatterns() []string
	VATPatterns() []string

	IBANPattern() string
	BalancePatterns() []string

	// GenericWords are header words a candidate field value must not be.
	GenericWords() []string
	MonthNames() map[string]int
	ValidVATRates() []float64
}

var registry = map[string]Set{
	"fr": French{},
	"en": English{},
}

// ForLanguage returns the Set for an ISO 639-1 code, falling back to French
// for unknown codes.
func ForLanguage(lang string) Set {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if s, ok := registry[lang]; ok {
		return s
	}
	return French{}
}

// Detect picks a Set from a small keyword vote over the text. French wins
// ties and is the fallback when nothing matches.
func Detect(text string) Set {
	lower := strings.ToLower(text)
	for _, w := range []string{"facture", "fournisseur", "tva", "siret"} {
		if strings.Contains(lower, w) {
			return registry["fr"]
		}
	}
	for _, w := range []string{"invoice", "supplier", "vat", "tax"} {
		if strings.Contains(lower, w) {
			return registry["en"]
		}
	}
	return registry["fr"]
}

// Languages lists the registered language codes.
func Languages() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}
