package extract

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smalter/autodoc/constants"
	"github.com/smalter/autodoc/internal/patterns"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEligibleFields(t *testing.T) {
	missing := []string{
		"montant_ttc", "iban", "fournisseur", "adresse_fournisseur",
		"numero_facture", "date_facture", "_extraction_method",
	}

	got := EligibleFields(missing, true)
	assert.ElementsMatch(t, []string{"fournisseur", "adresse_fournisseur", "numero_facture", "date_facture"}, got)

	got = EligibleFields(missing, false)
	assert.ElementsMatch(t, []string{"fournisseur", "adresse_fournisseur"}, got)
}

// A hard-protected field can never end up with LLM provenance, even when
// the backend volunteers a value for it.
func TestMergeHardProtectedNeverLLM(t *testing.T) {
	regexResult := NewFieldMap()
	regexResult.Set("numero_facture", "F2024-001", SourceRegex)
	regexResult.recomputeMissing(InvoiceFields)

	llmResult := map[string]any{
		"montant_ttc": "999.99", // hallucinated, must be dropped
		"siret":       "00000000000000",
		"fournisseur": "Carrefour Market",
	}

	res := merge(regexResult, llmResult, InvoiceFields, "fr")

	_, ok := res.Get("montant_ttc")
	assert.False(t, ok)
	_, ok = res.Get("siret")
	assert.False(t, ok)

	for name, f := range res.Fields {
		_, hard := HardProtectedFields[name]
		if hard {
			assert.NotEqual(t, SourceLLM, f.Source, "field %s", name)
		}
	}

	supplier := res.Fields["fournisseur"]
	assert.Equal(t, SourceLLM, supplier.Source)
	assert.Equal(t, constants.MethodHybrid, res.Method)
}

// The regex result overwrites any semantic value for the same key.
func TestMergeRegexPrecedence(t *testing.T) {
	regexResult := NewFieldMap()
	regexResult.Set("fournisseur", "Carrefour Market SARL", SourceRegex)
	regexResult.recomputeMissing(InvoiceFields)

	llmResult := map[string]any{"fournisseur": "Some Other Shop"}

	res := merge(regexResult, llmResult, InvoiceFields, "fr")
	f := res.Fields["fournisseur"]
	assert.Equal(t, "Carrefour Market SARL", f.Value)
	assert.Equal(t, SourceRegex, f.Source)
}

func TestMergeMethodRegexWhenLLMSilent(t *testing.T) {
	regexResult := NewFieldMap()
	regexResult.Set("numero_facture", "F2024-001", SourceRegex)
	regexResult.recomputeMissing(InvoiceFields)

	res := merge(regexResult, nil, InvoiceFields, "fr")
	assert.Equal(t, constants.MethodRegex, res.Method)
	assert.Contains(t, res.Missing, "fournisseur")
	assert.NotContains(t, res.Missing, "numero_facture")
}

// With the semantic stage disabled the extractor still produces the full
// deterministic result.
func TestHybridExtractRegexOnly(t *testing.T) {
	regex := NewPatternExtractor(patterns.ForLanguage("fr"), nil)
	h := NewHybridExtractor(regex, nil, nil)

	res := h.Extract(context.Background(), sampleInvoiceFR, constants.DocTypeInvoice, nil)
	require.NotNil(t, res)
	assert.Equal(t, constants.MethodRegex, res.Method)
	assert.Equal(t, "fr", res.Language)

	num, _ := res.Get("numero_facture")
	assert.Equal(t, "F2024-001", num)
}

func TestParseJSONResponseFlattening(t *testing.T) {
	raw := "Here you go:\n{\"fournisseur\": \"Carrefour\", \"adresse_fournisseur\": {\"street\": \"123 Rue de Paris\"}, \"conditions_paiement\": null, \"vide\": \"\"}"
	got := parseJSONResponse(raw, discardLogger())

	assert.Equal(t, "Carrefour", got["fournisseur"])
	assert.Equal(t, "123 Rue de Paris", got["adresse_fournisseur"])
	_, hasNull := got["conditions_paiement"]
	assert.False(t, hasNull)
	_, hasEmpty := got["vide"]
	assert.False(t, hasEmpty)
}

func TestParseJSONResponseFailClosed(t *testing.T) {
	assert.Empty(t, parseJSONResponse("no json here", discardLogger()))
	assert.Empty(t, parseJSONResponse("{broken", discardLogger()))
	assert.Empty(t, parseJSONResponse("[1, 2, 3]", discardLogger()))
}
