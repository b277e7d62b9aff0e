package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForLanguage(t *testing.T) {
	assert.Equal(t, "fr", ForLanguage("fr").LanguageCode())
	assert.Equal(t, "en", ForLanguage("EN").LanguageCode())
	assert.Equal(t, "fr", ForLanguage("de").LanguageCode(), "unknown code falls back to fr")
	assert.Equal(t, "fr", ForLanguage("").LanguageCode())
}

func TestDetect(t *testing.T) {
	assert.Equal(t, "fr", Detect("FACTURE N° 123\nTVA 20%").LanguageCode())
	assert.Equal(t, "en", Detect("INVOICE #123\nVAT 20%").LanguageCode())
	assert.Equal(t, "fr", Detect("lorem ipsum dolor").LanguageCode(), "no keyword vote falls back to fr")
	// French keywords win when both languages appear.
	assert.Equal(t, "fr", Detect("invoice facture").LanguageCode())
}

func TestMonthTables(t *testing.T) {
	fr := French{}.MonthNames()
	assert.Equal(t, 12, fr["déc"])
	assert.Equal(t, 8, fr["aout"])

	en := English{}.MonthNames()
	assert.Equal(t, 12, en["december"])
	assert.Equal(t, 9, en["sept"])
}

func TestValidVATRates(t *testing.T) {
	assert.Equal(t, []float64{2.1, 5.5, 8.5, 10.0, 20.0}, French{}.ValidVATRates())
	assert.Equal(t, []float64{0.0, 5.0, 20.0}, English{}.ValidVATRates())
}
