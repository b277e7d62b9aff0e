package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smalter/autodoc/internal/patterns"
)

const sampleInvoiceFR = `
Carrefour Market SARL
123 Rue de Paris, 75001 Paris
SIRET : 732 829 320 00074

FACTURE N° F2024-001
Date : 15/12/2024

Total HT    100,00 €
TVA 20%      20,00 €
Total TTC   120,00 €
`

func newFR(t *testing.T) *PatternExtractor {
	t.Helper()
	return NewPatternExtractor(patterns.ForLanguage("fr"), nil)
}

func TestExtractInvoiceFieldsComplete(t *testing.T) {
	e := newFR(t)
	m := e.ExtractInvoiceFields(sampleInvoiceFR)

	num, _ := m.Get("numero_facture")
	assert.Equal(t, "F2024-001", num)

	date, _ := m.Get("date_facture")
	assert.Equal(t, "2024-12-15", date)

	ttc, _ := m.Get("montant_ttc")
	assert.InDelta(t, 120.00, ttc, 1e-9)

	ht, _ := m.Get("montant_ht")
	assert.InDelta(t, 100.00, ht, 1e-9)

	rates, _ := m.Get("tva_rates")
	assert.Equal(t, []float64{20.0}, rates)

	siret, _ := m.Get("siret")
	assert.Equal(t, "73282932000074", siret)

	supplier, ok := m.Get("fournisseur")
	require.True(t, ok, "supplier should be extracted")
	assert.Contains(t, supplier, "Carrefour")

	assert.NotContains(t, m.Missing, "numero_facture")
	assert.NotContains(t, m.Missing, "date_facture")
	assert.NotContains(t, m.Missing, "montant_ttc")
	// never extracted by the pattern stage
	assert.Contains(t, m.Missing, "conditions_paiement")

	for _, f := range m.Fields {
		assert.Equal(t, SourceRegex, f.Source)
	}
}

func TestExtractDateForms(t *testing.T) {
	e := newFR(t)
	cases := []struct {
		text string
		want string
	}{
		{"Date : 15/12/2024", "2024-12-15"},
		{"Date : 2024-12-15", "2024-12-15"},
		{"Le 15 décembre 2024", "2024-12-15"},
		{"15/12/24", "2024-12-15"},  // two-digit year pivots to 2024
		{"15/12/74", "1974-12-15"},  // > 50 pivots to 19xx
	}
	for _, tc := range cases {
		got, ok := findDate(tc.text, e.dateRes, e.months)
		assert.True(t, ok, "date in %q", tc.text)
		assert.Equal(t, tc.want, got, "date in %q", tc.text)
	}

	_, ok := findDate("31/02/2024 rien d'autre", e.dateRes, e.months)
	assert.False(t, ok, "overflowed date must be rejected")
}

func TestExtractDateEnglishMonthName(t *testing.T) {
	e := NewPatternExtractor(patterns.ForLanguage("en"), nil)
	got, ok := findDate("Date: December 15, 2024", e.dateRes, e.months)
	assert.True(t, ok)
	assert.Equal(t, "2024-12-15", got)
}

func TestExtractSIRET(t *testing.T) {
	e := newFR(t)

	v, ok := e.extractSIRET("SIRET : 732 829 320 00074")
	assert.True(t, ok)
	assert.Equal(t, "73282932000074", v)

	// spaced form without keyword
	v, ok = e.extractSIRET("Entreprise 732 829 320 00074 située à Paris")
	assert.True(t, ok)
	assert.Equal(t, "73282932000074", v)

	// bad checksum is dropped
	_, ok = e.extractSIRET("SIRET : 732 829 320 00075")
	assert.False(t, ok)
}

func TestExtractVATRatesValidatedAgainstLegalSet(t *testing.T) {
	e := newFR(t)
	rates := e.extractVATRates("TVA 20%\nTVA 5,5%\nTVA 19%")
	// 19% is not a French rate and must be discarded
	assert.Equal(t, []float64{5.5, 20.0}, rates)
}

func TestExtractInvoiceNumberGuards(t *testing.T) {
	e := newFR(t)

	// a bare 10-digit run without invoice context looks like a phone number
	_, ok := e.extractInvoiceNumber("Contact: 0612345678")
	assert.False(t, ok)

	// the locale's own keywords nearby mark it as a document number
	v, ok := e.extractInvoiceNumber("facture n° 0612345678")
	assert.True(t, ok)
	assert.Equal(t, "0612345678", v)

	en := NewPatternExtractor(patterns.ForLanguage("en"), nil)
	v, ok = en.extractInvoiceNumber("invoice number 0612345678")
	assert.True(t, ok)
	assert.Equal(t, "0612345678", v)
}

func TestExtractSupplierGuards(t *testing.T) {
	e := newFR(t)

	v, ok := e.extractSupplier("Tech Solutions SARL\n123 Rue Paris")
	assert.True(t, ok)
	assert.Equal(t, "Tech Solutions SARL", v)

	// generic header lines are not supplier names
	v, _ = e.extractSupplier("FACTURE DE VENTE")
	assert.NotEqual(t, "FACTURE DE VENTE", v)
}

func TestExtractBankFields(t *testing.T) {
	e := newFR(t)
	text := `
Relevé de compte
IBAN : FR14 2004 1010 0505 0001 3M02 606
BIC : BNPAFRPP

Solde au 01/12/2024 : 1 000,00 €
Nouveau solde : 1 234,56 €
`
	m := e.ExtractBankFields(text)

	iban, ok := m.Get("iban")
	require.True(t, ok)
	assert.Equal(t, "FR1420041010050500013M02606", iban)
	assert.Len(t, iban, 27)

	bic, _ := m.Get("bic")
	assert.Equal(t, "BNPAFRPP", bic)

	// closing balance is the LAST matching amount
	solde, ok := m.Get("solde_final")
	require.True(t, ok)
	assert.InDelta(t, 1234.56, solde, 1e-9)

	assert.Contains(t, m.Missing, "transactions")
}

func TestExtractIBANLengthMismatchDropped(t *testing.T) {
	e := NewPatternExtractor(patterns.ForLanguage("en"), nil)
	// FR prefix with a German-style 22-char body fails the length table
	_, ok := e.extractIBAN("IBAN: FR89 3704 0044 0532 0130 00")
	assert.False(t, ok)

	v, ok := e.extractIBAN("IBAN: DE89 3704 0044 0532 0130 00")
	assert.True(t, ok)
	assert.Equal(t, "DE89370400440532013000", v)
}

func TestExtractCashFields(t *testing.T) {
	e := newFR(t)
	text := `
Boulangerie Dupont SARL
TICKET Z du 15/12/2024
Total TTC 845,20 €
`
	m := e.ExtractCashFields(text)

	date, _ := m.Get("date_facture")
	assert.Equal(t, "2024-12-15", date)
	ttc, _ := m.Get("montant_ttc")
	assert.InDelta(t, 845.20, ttc, 1e-9)
	assert.Empty(t, m.Missing)
}
