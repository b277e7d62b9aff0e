// Package agents binds each document type to its field schema and runs the
// shared processing workflow: extract, validate required fields, score.
package agents

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/smalter/autodoc/constants"
	"github.com/smalter/autodoc/internal/extract"
)

// Definition is the data behind one agent variant: no behavior of its own,
// the processing algorithm is shared.
type Definition struct {
	Name     string
	DocType  constants.DocumentType
	Required []string
	Optional []string
	Hints    map[string]string
}

var definitions = map[constants.DocumentType]Definition{
	constants.DocTypeInvoice: {
		Name:     "InvoiceAgent",
		DocType:  constants.DocTypeInvoice,
		Required: []string{"numero_facture", "date_facture", "montant_ttc", "fournisseur"},
		Optional: []string{"siret", "montant_ht", "tva_rates", "adresse_fournisseur", "conditions_paiement"},
		Hints: map[string]string{
			"fournisseur":         "nom complet de l'entreprise émettrice de la facture",
			"adresse_fournisseur": "adresse complète du fournisseur (rue, code postal, ville)",
			"client":              "nom de l'entreprise destinataire de la facture",
			"adresse_client":      "adresse complète du client",
			"lignes_articles":     "liste détaillée des produits ou services facturés avec description, quantité et prix",
			"conditions_paiement": "conditions ou délai de paiement indiqué sur la facture (ex: '30 jours fin de mois')",
		},
	},
	constants.DocTypeBankStatement: {
		Name:     "BankAgent",
		DocType:  constants.DocTypeBankStatement,
		Required: []string{"iban", "solde_final"},
		Optional: []string{"bic", "solde_initial", "transactions"},
		Hints: map[string]string{
			"iban":          "numéro IBAN du compte bancaire",
			"bic":           "code BIC/SWIFT de la banque",
			"solde_initial": "solde du compte en début de période",
			"solde_final":   "solde du compte en fin de période",
			"transactions":  "liste des opérations bancaires avec date, libellé et montant",
		},
	},
	constants.DocTypeCashReport: {
		Name:     "CashAgent",
		DocType:  constants.DocTypeCashReport,
		Required: []string{"date_facture", "montant_ttc"},
		Optional: []string{"fournisseur"},
		Hints: map[string]string{
			"date_facture": "date du rapport de caisse",
			"montant_ttc":  "montant total encaissé dans la journée",
			"fournisseur":  "nom du point de vente ou commerce",
		},
	},
}

// ProcessingResult is the unified output of every agent variant.
type ProcessingResult struct {
	Success               bool                       `json:"success"`
	DocumentType          constants.DocumentType     `json:"document_type"`
	AgentName             string                     `json:"agent_name"`
	ExtractedData         map[string]any             `json:"extracted_data"`
	MissingRequiredFields []string                   `json:"missing_required_fields"`
	ExtractionMethod      constants.ExtractionMethod `json:"extraction_method"`
	ConfidenceScore       float64                    `json:"confidence_score"`
	Errors                []string                   `json:"errors,omitempty"`
	Warnings              []string                   `json:"warnings,omitempty"`
}

// Agent couples a definition with a language-bound extractor.
type Agent struct {
	def       Definition
	extractor *extract.HybridExtractor
	logger    *slog.Logger
}

func New(docType constants.DocumentType, extractor *extract.HybridExtractor, logger *slog.Logger) (*Agent, bool) {
	def, ok := definitions[docType]
	if !ok {
		return nil, false
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{def: def, extractor: extractor, logger: logger}, true
}

func (a *Agent) Name() string { return a.def.Name }

// Process extracts the document's fields, checks required ones and scores
// the result.
func (a *Agent) Process(ctx context.Context, text string) ProcessingResult {
	res := a.extractor.Extract(ctx, text, a.def.DocType, a.def.Hints)

	var missing []string
	for _, f := range a.def.Required {
		if !res.Has(f) {
			missing = append(missing, f)
		}
	}
	success := len(missing) == 0

	confidence := a.confidence(res)

	var warnings []string
	for _, f := range a.def.Optional {
		if !res.Has(f) {
			warnings = append(warnings, fmt.Sprintf("champ optionnel manquant : %s", f))
		}
	}
	var errs []string
	if !success {
		errs = append(errs, fmt.Sprintf("champs obligatoires manquants : %v", missing))
	}

	a.logger.Info("agent.processed",
		"agent", a.def.Name,
		"success", success,
		"confidence", confidence,
		"method", res.Method,
		"missing_required", len(missing))

	return ProcessingResult{
		Success:               success,
		DocumentType:          a.def.DocType,
		AgentName:             a.def.Name,
		ExtractedData:         res.Values(),
		MissingRequiredFields: missing,
		ExtractionMethod:      res.Method,
		ConfidenceScore:       confidence,
		Errors:                errs,
		Warnings:              warnings,
	}
}

// confidence weighs required fields at 70%, optional at 30%, with a small
// bonus for a pure regex result and a penalty for anything weaker than
// hybrid.
func (a *Agent) confidence(res *extract.Result) float64 {
	if len(a.def.Required)+len(a.def.Optional) == 0 {
		return 100
	}

	requiredScore := 70.0
	if len(a.def.Required) > 0 {
		found := 0
		for _, f := range a.def.Required {
			if res.Has(f) {
				found++
			}
		}
		requiredScore = float64(found) / float64(len(a.def.Required)) * 70
	}

	optionalScore := 30.0
	if len(a.def.Optional) > 0 {
		found := 0
		for _, f := range a.def.Optional {
			if res.Has(f) {
				found++
			}
		}
		optionalScore = float64(found) / float64(len(a.def.Optional)) * 30
	}

	var bonus float64
	switch res.Method {
	case constants.MethodRegex:
		bonus = 5
	case constants.MethodHybrid:
		bonus = 0
	default:
		bonus = -5
	}

	score := math.Min(100, math.Max(0, requiredScore+optionalScore+bonus))
	return math.Round(score*100) / 100
}
