package typecheck

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smalter/autodoc/constants"
)

func TestValidateForbiddenTermDetectsRealType(t *testing.T) {
	v := NewValidator(nil)
	res := v.Validate("DEVIS N° D-2024-042\nValable 30 jours", constants.DocTypeInvoice)

	assert.True(t, res.Supported)
	assert.False(t, res.Valid)
	assert.Equal(t, constants.DocumentType("DEVIS"), res.DetectedType)
	assert.Zero(t, res.Confidence)
}

func TestValidateNoKeywordsIsWarningNotRejection(t *testing.T) {
	v := NewValidator(nil)
	res := v.Validate("Lorem ipsum dolor sit amet", constants.DocTypeInvoice)

	assert.True(t, res.Valid)
	assert.InDelta(t, 50.0, res.Confidence, 1e-9)
}

func TestValidateConfidenceScalesWithHits(t *testing.T) {
	v := NewValidator(nil)

	res := v.Validate("FACTURE N° F2024-001", constants.DocTypeInvoice)
	assert.True(t, res.Valid)
	assert.InDelta(t, 50.0, res.Confidence, 1e-9)

	res = v.Validate("FACTURE / INVOICE N° F2024-001", constants.DocTypeInvoice)
	assert.True(t, res.Valid)
	assert.InDelta(t, 100.0, res.Confidence, 1e-9)
}

func TestValidateUnknownDeclaredType(t *testing.T) {
	v := NewValidator(nil)
	res := v.Validate("CONTRAT DE BAIL", "CONTRAT")

	assert.False(t, res.Supported)
	assert.False(t, res.Valid)
	assert.Empty(t, res.DetectedType)
}

func TestValidateBankStatement(t *testing.T) {
	v := NewValidator(nil)
	res := v.Validate("Relevé de compte - décembre 2024", constants.DocTypeBankStatement)

	assert.True(t, res.Valid)
	assert.True(t, res.Confidence >= 50)
}
