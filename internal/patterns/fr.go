package patterns

// French covers invoices, bank statements and cash reports issued in France.
// VAT rates follow the 2024-2026 schedule, including the 8.5% overseas rate.
type French struct{}

func (French) LanguageCode() string { return "fr" }
func (French) LanguageName() string { return "Français" }

// 1 234,56 € or 1.234,56
func (French) AmountPattern() string {
	return `(?:(?:[\-−])?\s*(?:[€]|EUR)?\s*)?(\d{1,3}(?:[\s\.]?\d{3})*[.,]\d{1,2})\b`
}

func (French) DatePatterns() []string {
	return []string{
		`\b(\d{1,2})[/\-\.](\d{1,2})[/\-\.](\d{2,4})\b`, // DD/MM/YYYY
		`\b(\d{4})[/\-\.](\d{1,2})[/\-\.](\d{1,2})\b`,   // YYYY-MM-DD
		`\b(\d{1,2})\s*(janv\.?|f[ée]vr\.?|mars|avr\.?|mai|juin|juil\.?|ao[uû]t|sept\.?|oct\.?|nov\.?|d[ée]c\.?)\s*(\d{2,4})\b`,
	}
}

// Ordered by reliability: keyword-anchored first, bare numeric as last
// resort (extra validation happens in the extractor).
func (French) InvoiceNumberPatterns() []string {
	return []string{
		`(?:facture|fac\.?|num[eé]ro|n°|no\.?)(?:\s*(?:n°|no\.?|num[eé]ro))?\s*[:#]?\s*([A-Z0-9][\w\.\-/]*)`,
		`\b([A-Z]{1,6}[-/.]\d+(?:[-.]\d+)*)\b`,
		`\b([A-Z]{2,6}[-/]?\d{2,8})\b`,
		`\b(\d{4,10})\b`,
	}
}

func (French) InvoiceKeywords() []string {
	return []string{
		"facture", "fac", "fac.", "n°", "no", "no.",
		"numéro", "numero", "ref", "référence", "reference",
	}
}

func (French) SupplierPatterns() []string {
	return []string{
		`(?:fournisseur|vendeur|société|émetteur)\s*[:=]?\s*([^\n\r]{3,80})`,
		`\b([A-ZÀ-Ý][\w\s&]{2,50}(?:SARL|SAS|SA|EURL|SCI|SASU))\b`,
		`^([A-ZÀ-Ý][^\n\r]{3,70})$`,
		`(?:fournisseur|vendeur|société|company)\s*[:=]?\s*([^\n\r]{3,80})`,
		`\b([A-ZÀ-Ý][\w\s&]{2,50}(?:SARL|SAS|SA|Ltd|LLC|Inc|Company|Compagnie))\b`,
		`^([A-ZÀ-Ý][^\n\r]{10,70})$`,
	}
}

func (French) TTCPatterns() []string {
	return []string{
		`(?:total\s+)?ttc\s*[:=]?\s*{amount}`,
		`(?:net\s+[àa]\s+payer|à\s+régler)\s*[:=]?\s*{amount}`,
		`somme\s+[àa]\s+payer\s*[:=]?\s*{amount}`,
		`total\s+(?:g[ée]n[ée]ral)?\s*{amount}\s+{amount}`, // table row
	}
}

func (French) HTPatterns() []string {
	return []string{
		`(?:total\s+)?(?:h\.?t\.?|hors\s+taxes?)\s*[:=]?\s*{amount}`,
		`total\s+(?:g[ée]n[ée]ral)?\s*{amount}`,
	}
}

func (French) VATPatterns() []string {
	return []string{
		`(?:tva|t\.?v\.?a\.?)\s*[:\-=]?\s*({rate})\s*%?`,
	}
}

// FR + 25 characters, spaces allowed between groups.
func (French) IBANPattern() string {
	return `(?:IBAN\s*[:=]?\s*)?(FR\d{2}(?:\s*[A-Z0-9]){23})\b`
}

func (French) BalancePatterns() []string {
	return []string{
		`(?:solde\s+final|nouveau\s+solde|solde\s+créditeur|solde\s+au)[\s\S]{0,50}?{amount}`,
		`solde\s*[:=]?\s*{amount}`,
	}
}

func (French) GenericWords() []string {
	return []string{
		"facture", "invoice", "devis", "avoir", "note", "proforma",
		"relevé", "extrait", "bordereau", "bon", "ticket", "reçu",
		"page", "date", "total", "client", "reference",
	}
}

func (French) MonthNames() map[string]int {
	return map[string]int{
		"janvier": 1, "jan": 1, "janv": 1,
		"février": 2, "fevrier": 2, "fevr": 2, "fév": 2, "févr": 2,
		"mars": 3,
		"avril": 4, "avr": 4,
		"mai":  5,
		"juin": 6, "jun": 6,
		"juillet": 7, "juil": 7,
		"août": 8, "aout": 8, "aoû": 8,
		"septembre": 9, "sept": 9, "sep": 9,
		"octobre": 10, "oct": 10,
		"novembre": 11, "nov": 11,
		"décembre": 12, "decembre": 12, "dec": 12, "déc": 12,
	}
}

func (French) ValidVATRates() []float64 {
	return []float64{2.1, 5.5, 8.5, 10.0, 20.0}
}
