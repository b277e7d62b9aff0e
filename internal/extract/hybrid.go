package extract

import (
	"context"
	"log/slog"

	"github.com/smalter/autodoc/constants"
)

// Result is the merged output of the regex and semantic stages.
type Result struct {
	*FieldMap
	Method   constants.ExtractionMethod
	Language string
}

// HybridExtractor runs the deterministic engine first and lets the
// semantic backend fill only what stayed missing. The merge gives the
// regex result absolute precedence and a hard-protected field can never
// end up with LLM provenance.
type HybridExtractor struct {
	regex  *PatternExtractor
	llm    *SemanticExtractor // nil disables the semantic stage
	hard   map[string]struct{}
	logger *slog.Logger
}

func NewHybridExtractor(regex *PatternExtractor, llm *SemanticExtractor, logger *slog.Logger) *HybridExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &HybridExtractor{regex: regex, llm: llm, hard: HardProtectedFields, logger: logger}
}

func (h *HybridExtractor) Language() string { return h.regex.LanguageCode() }

// Extract produces the full field set for one document type.
func (h *HybridExtractor) Extract(ctx context.Context, text string, docType constants.DocumentType, hints map[string]string) *Result {
	var (
		regexResult *FieldMap
		schema      []string
	)
	switch docType {
	case constants.DocTypeInvoice:
		regexResult = h.regex.ExtractInvoiceFields(text)
		schema = InvoiceFields
	case constants.DocTypeBankStatement:
		regexResult = h.regex.ExtractBankFields(text)
		schema = BankFields
	case constants.DocTypeCashReport:
		regexResult = h.regex.ExtractCashFields(text)
		schema = CashFields
	default:
		h.logger.Warn("hybrid.unknown_type", "document_type", docType)
		return &Result{FieldMap: NewFieldMap(), Method: constants.MethodRegex, Language: h.Language()}
	}

	var llmResult map[string]any
	if h.llm != nil && len(regexResult.Missing) > 0 {
		if h.llm.Available(ctx) {
			llmResult = h.llm.Extract(ctx, text, regexResult.Missing, hints)
		} else {
			h.logger.Warn("hybrid.llm_unavailable", "missing", len(regexResult.Missing))
		}
	}

	return merge(regexResult, llmResult, schema, h.Language())
}

// merge starts from the semantic result and overlays every non-empty
// regex field, then recomputes the missing list against the full schema.
func merge(regexResult *FieldMap, llmResult map[string]any, schema []string, language string) *Result {
	final := NewFieldMap()

	contributed := false
	for key, value := range llmResult {
		if _, hard := HardProtectedFields[key]; hard {
			continue
		}
		if isEmptyValue(value) {
			continue
		}
		final.Set(key, value, SourceLLM)
		contributed = true
	}
	for key, f := range regexResult.Fields {
		if !isEmptyValue(f.Value) {
			final.Set(key, f.Value, SourceRegex)
		}
	}

	final.recomputeMissing(schema)

	method := constants.MethodRegex
	if contributed {
		method = constants.MethodHybrid
	}
	return &Result{FieldMap: final, Method: method, Language: language}
}
