package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smalter/autodoc/constants"
	"github.com/smalter/autodoc/internal/common"
	"github.com/smalter/autodoc/internal/extract"
	"github.com/smalter/autodoc/internal/patterns"
)

const invoiceText = `
Carrefour Market SARL
123 Rue de Paris, 75001 Paris
SIRET : 732 829 320 00074

FACTURE N° F2024-001
Date : 15/12/2024

Total HT    100,00 €
TVA 20%      20,00 €
Total TTC   120,00 €
`

func newInvoiceAgent(t *testing.T) *Agent {
	t.Helper()
	regex := extract.NewPatternExtractor(patterns.ForLanguage("fr"), nil)
	hybrid := extract.NewHybridExtractor(regex, nil, nil)
	a, ok := New(constants.DocTypeInvoice, hybrid, nil)
	require.True(t, ok)
	return a
}

func TestProcessCompleteInvoice(t *testing.T) {
	a := newInvoiceAgent(t)
	res := a.Process(context.Background(), invoiceText)

	assert.True(t, res.Success)
	assert.Equal(t, "InvoiceAgent", res.AgentName)
	assert.Equal(t, constants.DocTypeInvoice, res.DocumentType)
	assert.Empty(t, res.MissingRequiredFields)
	assert.Equal(t, constants.MethodRegex, res.ExtractionMethod)
	assert.Equal(t, "F2024-001", res.ExtractedData["numero_facture"])

	// 4/4 required (70) + 3/5 optional (18) + regex bonus (5)
	assert.InDelta(t, 93.0, res.ConfidenceScore, 1e-9)
	// adresse_fournisseur and conditions_paiement stay missing
	assert.Len(t, res.Warnings, 2)
}

func TestProcessMissingRequiredField(t *testing.T) {
	a := newInvoiceAgent(t)
	res := a.Process(context.Background(), "FACTURE sans rien d'exploitable")

	assert.False(t, res.Success)
	assert.Contains(t, res.MissingRequiredFields, "montant_ttc")
	assert.NotEmpty(t, res.Errors)
}

func TestProcessCashReport(t *testing.T) {
	regex := extract.NewPatternExtractor(patterns.ForLanguage("fr"), nil)
	hybrid := extract.NewHybridExtractor(regex, nil, nil)
	a, ok := New(constants.DocTypeCashReport, hybrid, nil)
	require.True(t, ok)

	res := a.Process(context.Background(), "Boulangerie Dupont SARL\nTICKET Z du 15/12/2024\nTotal TTC 845,20 €")
	assert.True(t, res.Success)
	// 2/2 required (70) + 1/1 optional (30) + regex bonus clamps at 100
	assert.InDelta(t, 100.0, res.ConfidenceScore, 1e-9)
}

func TestNewUnknownType(t *testing.T) {
	regex := extract.NewPatternExtractor(patterns.ForLanguage("fr"), nil)
	hybrid := extract.NewHybridExtractor(regex, nil, nil)
	_, ok := New("CONTRAT", hybrid, nil)
	assert.False(t, ok)
}

func TestRouterResolveCachesPerTypeAndLanguage(t *testing.T) {
	r := NewRouter(common.LLMConfig{Enabled: false}, nil)

	a1, ok := r.Resolve(constants.DocTypeInvoice, "fr")
	require.True(t, ok)
	a2, ok := r.Resolve(constants.DocTypeInvoice, "fr")
	require.True(t, ok)
	assert.Same(t, a1, a2)

	b, ok := r.Resolve(constants.DocTypeInvoice, "en")
	require.True(t, ok)
	assert.NotSame(t, a1, b)

	_, ok = r.Resolve("CONTRAT", "fr")
	assert.False(t, ok)
}

func TestRouterResolveNormalizesDeclaredType(t *testing.T) {
	r := NewRouter(common.LLMConfig{}, nil)
	a, ok := r.Resolve("  facture ", "fr")
	require.True(t, ok)
	assert.Equal(t, "InvoiceAgent", a.Name())
}
