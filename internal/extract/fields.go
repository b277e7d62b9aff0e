// Package extract turns raw document text into a structured field map.
// The deterministic pattern engine runs first; a local generative backend
// may fill the remaining non-protected fields, and the merge always lets
// the deterministic result win.
package extract

// Provenance records which engine produced a field value.
type Provenance string

const (
	SourceRegex Provenance = "REGEX"
	SourceLLM   Provenance = "LLM"
)

// Field is one extracted value tagged with its provenance.
type Field struct {
	Value  any        `json:"value"`
	Source Provenance `json:"source"`
}

// FieldMap is the extraction result for one document: named values plus
// the schema keys that stayed unresolved. A hard-protected field never
// carries LLM provenance.
type FieldMap struct {
	Fields  map[string]Field `json:"fields"`
	Missing []string         `json:"missing"`
}

// Schema keys per document type. Order is the reporting order.
var (
	InvoiceFields = []string{
		"numero_facture", "date_facture", "montant_ttc", "montant_ht",
		"tva_rates", "fournisseur", "siret", "adresse_fournisseur",
		"lignes_articles", "conditions_paiement",
	}
	BankFields = []string{
		"iban", "bic", "solde_initial", "solde_final", "transactions",
	}
	CashFields = []string{
		"date_facture", "montant_ttc", "fournisseur",
	}
)

func NewFieldMap() *FieldMap {
	return &FieldMap{Fields: make(map[string]Field)}
}

// Set stores a value unless it is empty.
func (m *FieldMap) Set(key string, value any, src Provenance) {
	if isEmptyValue(value) {
		return
	}
	m.Fields[key] = Field{Value: value, Source: src}
}

// Get returns the value for key if present and non-empty.
func (m *FieldMap) Get(key string) (any, bool) {
	f, ok := m.Fields[key]
	if !ok || isEmptyValue(f.Value) {
		return nil, false
	}
	return f.Value, true
}

// Has reports whether key holds a usable value.
func (m *FieldMap) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Values flattens the map to plain name → value pairs.
func (m *FieldMap) Values() map[string]any {
	out := make(map[string]any, len(m.Fields))
	for k, f := range m.Fields {
		out[k] = f.Value
	}
	return out
}

// recomputeMissing rebuilds the missing list against a full schema.
func (m *FieldMap) recomputeMissing(schema []string) {
	m.Missing = m.Missing[:0]
	for _, key := range schema {
		if !m.Has(key) {
			m.Missing = append(m.Missing, key)
		}
	}
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []float64:
		return len(t) == 0
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}
