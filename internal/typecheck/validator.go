// Package typecheck cross-checks the user-declared document type against
// the extracted text with a small keyword table per type.
package typecheck

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/smalter/autodoc/constants"
)

type keywordSet struct {
	required  []string
	forbidden []string
}

// typeKeywords also carries entries for types the pipeline has no agent
// for (DEVIS): they exist so a forbidden hit can name the detected type.
var typeKeywords = map[constants.DocumentType]keywordSet{
	constants.DocTypeInvoice: {
		required:  []string{"facture", "invoice"},
		forbidden: []string{"devis", "quote", "proforma", "bon de commande", "purchase order"},
	},
	"DEVIS": {
		required:  []string{"devis", "quote", "proforma"},
		forbidden: []string{"facture", "invoice"},
	},
	constants.DocTypeBankStatement: {
		required:  []string{"relevé", "extrait", "compte", "bank statement"},
		forbidden: []string{"facture", "devis"},
	},
	constants.DocTypeCashReport: {
		required:  []string{"ticket z", "rapport de caisse", "z-report"},
		forbidden: []string{"facture", "devis"},
	},
}

// Result is the outcome of one consistency check. Supported is false when
// the declared type has no keyword entry at all, which the caller treats
// differently from a mismatch.
type Result struct {
	Valid        bool
	Supported    bool
	DeclaredType constants.DocumentType
	DetectedType constants.DocumentType
	Confidence   float64
	Reason       string
}

type Validator struct {
	logger *slog.Logger
}

func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{logger: logger}
}

// Validate checks the declared type against the text. A forbidden-term hit
// invalidates and names the conflicting type; a text with no required term
// passes with a fixed low confidence, as a warning rather than a rejection.
func (v *Validator) Validate(text string, declared constants.DocumentType) Result {
	declared = constants.NormalizeDocumentType(string(declared))

	keywords, ok := typeKeywords[declared]
	if !ok {
		return Result{
			Valid:        false,
			Supported:    false,
			DeclaredType: declared,
			Confidence:   0,
			Reason:       fmt.Sprintf("type %q non supporté", declared),
		}
	}

	textLower := strings.ToLower(text)

	var requiredFound, forbiddenFound []string
	for _, kw := range keywords.required {
		if strings.Contains(textLower, kw) {
			requiredFound = append(requiredFound, kw)
		}
	}
	for _, kw := range keywords.forbidden {
		if strings.Contains(textLower, kw) {
			forbiddenFound = append(forbiddenFound, kw)
		}
	}

	res := Result{DeclaredType: declared, Supported: true}
	switch {
	case len(forbiddenFound) > 0:
		res.Valid = false
		res.Confidence = 0
		res.DetectedType = detectType(forbiddenFound)
		res.Reason = fmt.Sprintf("le document semble être un %q (mots trouvés : %s), pas un %q",
			res.DetectedType, strings.Join(forbiddenFound, ", "), declared)
	case len(requiredFound) == 0:
		res.Valid = true
		res.Confidence = 50
		res.Reason = fmt.Sprintf("aucun mot-clé %q trouvé dans le texte, vérifiez le type déclaré", declared)
	default:
		res.Valid = true
		res.Confidence = min(100, float64(len(requiredFound))*50)
		res.Reason = fmt.Sprintf("type %q confirmé (mots trouvés : %s)", declared, strings.Join(requiredFound, ", "))
	}

	v.logger.Info("typecheck.result",
		"declared_type", declared,
		"valid", res.Valid,
		"detected_type", res.DetectedType,
		"confidence", res.Confidence)
	return res
}

// detectType names the first type whose required set contains one of the
// forbidden terms we hit.
func detectType(forbiddenFound []string) constants.DocumentType {
	for _, docType := range orderedTypes {
		kw := typeKeywords[docType]
		for _, fb := range forbiddenFound {
			for _, req := range kw.required {
				if fb == req {
					return docType
				}
			}
		}
	}
	return ""
}

// Map iteration order is random; detection scans types in a fixed order so
// the same text always names the same conflicting type.
var orderedTypes = []constants.DocumentType{
	constants.DocTypeInvoice,
	"DEVIS",
	constants.DocTypeBankStatement,
	constants.DocTypeCashReport,
}
