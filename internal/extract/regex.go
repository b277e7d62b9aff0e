package extract

import (
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/smalter/autodoc/internal/patterns"
)

// SIRET candidates, French documents only.
var siretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bSIRET\b\s*(?:n°|num[eé]ro)?\s*[:\-]?\s*([\d\s]{14,20})`),
	regexp.MustCompile(`(?i)(?:siret|siren)\s*[:=]?\s*(\d[\d\s]{12,18}\d)`),
	regexp.MustCompile(`\b(\d{3}\s+\d{3}\s+\d{3}\s+\d{5})\b`),
}

// BIC/SWIFT, 8 or 11 characters.
var bicPattern = regexp.MustCompile(`(?i)(?:BIC|SWIFT)\s*[:=]?\s*([A-Z]{4}[A-Z]{2}[A-Z0-9]{2}(?:[A-Z0-9]{3})?)\b`)

var whitespaceRe = regexp.MustCompile(`\s`)

// PatternExtractor applies one locale's PatternSet to raw text. It is
// deterministic and has no external dependencies; every regex is compiled
// once at construction.
type PatternExtractor struct {
	set    patterns.Set
	logger *slog.Logger

	numberRes       []*regexp.Regexp
	dateRes         []*regexp.Regexp
	supplierRes     []*regexp.Regexp
	ttcRes          []*regexp.Regexp
	htRes           []*regexp.Regexp
	vatRes          []*regexp.Regexp
	ibanRe          *regexp.Regexp
	balanceRes      []*regexp.Regexp
	months          map[string]int
	genericSet      map[string]struct{}
	invoiceKeywords []string
	validRates      []float64
}

func NewPatternExtractor(set patterns.Set, logger *slog.Logger) *PatternExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	e := &PatternExtractor{
		set:        set,
		logger:     logger,
		months:     normalizeMonthKeys(set.MonthNames()),
		validRates: set.ValidVATRates(),
		genericSet: make(map[string]struct{}),
	}
	for _, w := range set.GenericWords() {
		e.genericSet[strings.ToLower(w)] = struct{}{}
	}
	for _, w := range set.InvoiceKeywords() {
		e.invoiceKeywords = append(e.invoiceKeywords, strings.ToLower(w))
	}

	for _, p := range set.InvoiceNumberPatterns() {
		e.numberRes = append(e.numberRes, regexp.MustCompile(`(?i)`+p))
	}
	for _, p := range set.DatePatterns() {
		e.dateRes = append(e.dateRes, regexp.MustCompile(`(?i)`+p))
	}
	for _, p := range set.SupplierPatterns() {
		e.supplierRes = append(e.supplierRes, regexp.MustCompile(`(?im)`+p))
	}

	amount := set.AmountPattern()
	for _, p := range set.TTCPatterns() {
		e.ttcRes = append(e.ttcRes, regexp.MustCompile(`(?i)`+strings.ReplaceAll(p, "{amount}", amount)))
	}
	for _, p := range set.HTPatterns() {
		e.htRes = append(e.htRes, regexp.MustCompile(`(?i)`+strings.ReplaceAll(p, "{amount}", amount)))
	}

	// Rate alternation, longest value first so "20" wins over "0". Integer
	// rates also match bare ("TVA 20%") and with trailing zeros ("20,00").
	sorted := append([]float64(nil), e.validRates...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	rateAlts := make([]string, len(sorted))
	for i, r := range sorted {
		s := strconv.FormatFloat(r, 'f', -1, 64)
		if strings.Contains(s, ".") {
			rateAlts[i] = strings.ReplaceAll(s, ".", `[.,]`)
		} else {
			rateAlts[i] = s + `(?:[.,]0{1,2})?`
		}
	}
	rateGroup := "(" + strings.Join(rateAlts, "|") + ")"
	for _, p := range set.VATPatterns() {
		e.vatRes = append(e.vatRes, regexp.MustCompile(`(?i)`+strings.ReplaceAll(p, "({rate})", rateGroup)))
	}

	e.ibanRe = regexp.MustCompile(`(?i)` + set.IBANPattern())
	for _, p := range set.BalancePatterns() {
		e.balanceRes = append(e.balanceRes, regexp.MustCompile(`(?i)`+strings.ReplaceAll(p, "{amount}", amount)))
	}

	e.logger.Debug("pattern extractor ready", "language", set.LanguageCode())
	return e
}

func (e *PatternExtractor) LanguageCode() string { return e.set.LanguageCode() }

// ExtractInvoiceFields pulls the invoice schema from text.
func (e *PatternExtractor) ExtractInvoiceFields(text string) *FieldMap {
	text = normalizeText(text)
	m := NewFieldMap()

	if v, ok := e.extractInvoiceNumber(text); ok {
		m.Set("numero_facture", v, SourceRegex)
	}
	if v, ok := findDate(text, e.dateRes, e.months); ok {
		m.Set("date_facture", v, SourceRegex)
	}
	if v, ok := e.extractTTC(text); ok {
		m.Set("montant_ttc", v, SourceRegex)
	}
	if v, ok := e.extractHT(text); ok {
		m.Set("montant_ht", v, SourceRegex)
	}
	if rates := e.extractVATRates(text); len(rates) > 0 {
		m.Set("tva_rates", rates, SourceRegex)
	}
	if v, ok := e.extractSupplier(text); ok {
		m.Set("fournisseur", v, SourceRegex)
	}
	if e.set.LanguageCode() == "fr" {
		if v, ok := e.extractSIRET(text); ok {
			m.Set("siret", v, SourceRegex)
		}
	}

	m.recomputeMissing(InvoiceFields)
	e.logger.Info("regex.invoice",
		"language", e.set.LanguageCode(),
		"found", len(InvoiceFields)-len(m.Missing),
		"missing", len(m.Missing))
	return m
}

// ExtractBankFields pulls the bank statement schema from text.
func (e *PatternExtractor) ExtractBankFields(text string) *FieldMap {
	text = normalizeText(text)
	m := NewFieldMap()

	if v, ok := e.extractIBAN(text); ok {
		m.Set("iban", v, SourceRegex)
	}
	if v, ok := e.extractBIC(text); ok {
		m.Set("bic", v, SourceRegex)
	}
	if v, ok := e.extractBalance(text); ok {
		m.Set("solde_final", v, SourceRegex)
	}

	m.recomputeMissing(BankFields)
	e.logger.Info("regex.bank",
		"language", e.set.LanguageCode(),
		"found", len(BankFields)-len(m.Missing),
		"missing", len(m.Missing))
	return m
}

// ExtractCashFields pulls the cash report schema: report date, day total
// and the merchant name, reusing the invoice patterns.
func (e *PatternExtractor) ExtractCashFields(text string) *FieldMap {
	text = normalizeText(text)
	m := NewFieldMap()

	if v, ok := findDate(text, e.dateRes, e.months); ok {
		m.Set("date_facture", v, SourceRegex)
	}
	if v, ok := e.extractTTC(text); ok {
		m.Set("montant_ttc", v, SourceRegex)
	}
	if v, ok := e.extractSupplier(text); ok {
		m.Set("fournisseur", v, SourceRegex)
	}

	m.recomputeMissing(CashFields)
	return m
}

// invoice number: ordered pattern list, each candidate filtered against
// the generic-word stoplist, a short-stopword list, and a phone number
// guard for bare 10-digit matches.
func (e *PatternExtractor) extractInvoiceNumber(text string) (string, bool) {
	for _, re := range e.numberRes {
		loc := re.FindStringSubmatchIndex(text)
		if loc == nil || loc[2] < 0 {
			continue
		}
		val := strings.TrimSpace(text[loc[2]:loc[3]])
		if val == "" {
			continue
		}
		lower := strings.ToLower(val)
		if _, generic := e.genericSet[lower]; generic {
			continue
		}
		if len(val) <= 2 && isShortStopword(lower) {
			continue
		}
		if len(val) == 10 && isDigits(val) {
			// bare 10-digit run is likely a phone number unless one of
			// the locale's invoice keywords appears nearby
			if !containsAny(contextWindow(text, loc[0], 50), e.invoiceKeywords) {
				continue
			}
		}
		return val, true
	}
	return "", false
}

// gross total: all keyword-anchored candidates, keep the maximum. Known
// trade-off: a detail line larger than the real total wins.
func (e *PatternExtractor) extractTTC(text string) (float64, bool) {
	var best float64
	found := false
	for _, re := range e.ttcRes {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if amt, ok := ParseAmount(lastGroup(m)); ok && amt != 0 {
				if !found || amt > best {
					best = amt
				}
				found = true
			}
		}
	}
	return best, found
}

// net total: first keyword-anchored match wins.
func (e *PatternExtractor) extractHT(text string) (float64, bool) {
	for _, re := range e.htRes {
		if m := re.FindStringSubmatch(text); m != nil {
			if amt, ok := ParseAmount(m[1]); ok && amt != 0 {
				return amt, true
			}
		}
	}
	return 0, false
}

// VAT rates: only values from the locale's legal rate set are kept.
func (e *PatternExtractor) extractVATRates(text string) []float64 {
	seen := make(map[float64]struct{})
	var rates []float64
	for _, re := range e.vatRes {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			raw := strings.ReplaceAll(m[1], ",", ".")
			rate, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			if !e.isValidRate(rate) {
				continue
			}
			if _, dup := seen[rate]; !dup {
				seen[rate] = struct{}{}
				rates = append(rates, rate)
			}
		}
	}
	sort.Float64s(rates)
	return rates
}

func (e *PatternExtractor) extractSupplier(text string) (string, bool) {
	for _, re := range e.supplierRes {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		candidate := strings.TrimSpace(m[1])
		lower := strings.ToLower(candidate)

		if e.containsGenericWord(lower) {
			continue
		}
		if isDigits(strings.ReplaceAll(candidate, " ", "")) {
			continue
		}
		words := 0
		for _, w := range strings.Fields(candidate) {
			if len(w) > 2 {
				words++
			}
		}
		if words >= 2 {
			return candidate, true
		}
	}
	return "", false
}

func (e *PatternExtractor) extractSIRET(text string) (string, bool) {
	for _, re := range siretPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		cleaned := whitespaceRe.ReplaceAllString(m[1], "")
		if len(cleaned) == 14 && isDigits(cleaned) && ValidateSIRETLuhn(cleaned) {
			return cleaned, true
		}
	}
	return "", false
}

func (e *PatternExtractor) extractIBAN(text string) (string, bool) {
	m := e.ibanRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	iban := strings.ToUpper(whitespaceRe.ReplaceAllString(m[1], ""))
	if !ValidateIBANLength(iban) {
		return "", false
	}
	return iban, true
}

func (e *PatternExtractor) extractBIC(text string) (string, bool) {
	m := bicPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.ToUpper(strings.TrimSpace(m[1])), true
}

// closing balance: the LAST matching amount, statements list it at the end.
func (e *PatternExtractor) extractBalance(text string) (float64, bool) {
	var last float64
	found := false
	for _, re := range e.balanceRes {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if amt, ok := ParseAmount(lastGroup(m)); ok {
				last = amt
				found = true
			}
		}
	}
	return last, found
}

func (e *PatternExtractor) isValidRate(rate float64) bool {
	for _, r := range e.validRates {
		if r == rate {
			return true
		}
	}
	return false
}

func (e *PatternExtractor) containsGenericWord(lower string) bool {
	for w := range e.genericSet {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// normalizeText trims indentation and drops empty lines while keeping the
// line structure the patterns anchor on.
func normalizeText(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if cleaned := strings.TrimSpace(line); cleaned != "" {
			lines = append(lines, cleaned)
		}
	}
	return strings.Join(lines, "\n")
}

func normalizeMonthKeys(months map[string]int) map[string]int {
	out := make(map[string]int, len(months))
	for k, v := range months {
		out[strings.ToLower(strings.ReplaceAll(k, ".", ""))] = v
	}
	return out
}

// lastGroup returns the last participating capture group of a match.
// Table-style patterns carry two amount groups and the rightmost is the
// one in the total column.
func lastGroup(m []string) string {
	for i := len(m) - 1; i >= 1; i-- {
		if m[i] != "" {
			return m[i]
		}
	}
	return ""
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func contextWindow(text string, pos, radius int) string {
	start := pos - radius
	if start < 0 {
		start = 0
	}
	end := pos + radius
	if end > len(text) {
		end = len(text)
	}
	return strings.ToLower(text[start:end])
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isShortStopword(s string) bool {
	switch s {
	case "to", "in", "no", "by", "or":
		return true
	}
	return false
}
