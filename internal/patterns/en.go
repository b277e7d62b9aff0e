package patterns

// English covers UK and US style documents.
type English struct{}

func (English) LanguageCode() string { return "en" }
func (English) LanguageName() string { return "English" }

// $30 or 30.00 or $1,234.56
func (English) AmountPattern() string {
	return `(?:[$£€]?\s*)?(\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?)\b`
}

func (English) DatePatterns() []string {
	return []string{
		`\b(\d{1,2})[/\-](\d{1,2})[/\-](\d{2,4})\b`, // MM/DD/YYYY
		`\b([A-Za-z]+)\s+(\d{1,2}),?\s+(\d{2,4})\b`, // Month DD, YYYY
	}
}

func (English) InvoiceNumberPatterns() []string {
	return []string{
		`(?:invoice|inv\.?|number|ref|no\.?)(?:\s*(?:no\.?|number))?\s*[:#]?\s*([A-Z0-9][\w\.\-/]*)`,
		`\b(INV[-/]?\d{2,8})\b`,
		`\b(\d{4,10})\b`,
	}
}

func (English) InvoiceKeywords() []string {
	return []string{"invoice", "inv", "inv.", "no", "no.", "number", "ref", "reference"}
}

func (English) SupplierPatterns() []string {
	return []string{
		`(?:supplier|vendor|from|seller)\s*[:=]?\s*([^\n\r]{3,80})`,
		`\b([A-Z][\w\s&]{2,50}(?:Ltd|LLC|Inc|Corp|Company))\b`,
	}
}

func (English) TTCPatterns() []string {
	return []string{
		`(?:total|amount\s+due|balance\s+due)\s*[:\-]?\s*{amount}`,
		`(?:total\s+including\s+(?:vat|tax))\s*[:\-]?\s*{amount}`,
		`total\s*[:=]?\s*{amount}`,
	}
}

func (English) HTPatterns() []string {
	return []string{
		`(?:subtotal|sub-total|sub\s+total)\s*[:\-]?\s*{amount}`,
		`(?:net\s+amount)\s*[:\-]?\s*{amount}`,
	}
}

func (English) VATPatterns() []string {
	return []string{
		`(?:vat|v\.?a\.?t\.?|tax)\s*[:=]?\s*({rate})\s*%?`,
	}
}

func (English) IBANPattern() string {
	return `(?:IBAN\s*[:=]?\s*)?([A-Z]{2}\d{2}(?:\s*[A-Z0-9]){12,30})\b`
}

func (English) BalancePatterns() []string {
	return []string{
		`(?:balance|closing\s+balance|final\s+balance)\s*[:=]?\s*{amount}`,
	}
}

func (English) GenericWords() []string {
	return []string{
		"invoice", "quote", "credit", "note", "proforma",
		"statement", "receipt", "page", "date", "total", "customer",
	}
}

func (English) MonthNames() map[string]int {
	return map[string]int{
		"january": 1, "jan": 1,
		"february": 2, "feb": 2,
		"march": 3, "mar": 3,
		"april": 4, "apr": 4,
		"may":  5,
		"june": 6, "jun": 6,
		"july": 7, "jul": 7,
		"august": 8, "aug": 8,
		"september": 9, "sep": 9, "sept": 9,
		"october": 10, "oct": 10,
		"november": 11, "nov": 11,
		"december": 12, "dec": 12,
	}
}

// Zero-rated, reduced, standard.
func (English) ValidVATRates() []float64 {
	return []float64{0.0, 5.0, 20.0}
}
