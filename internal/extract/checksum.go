package extract

// ibanLengths maps an IBAN country prefix to its mandated total length.
var ibanLengths = map[string]int{
	"FR": 27, "DE": 22, "ES": 24, "IT": 27, "PT": 25,
	"BE": 16, "NL": 18, "LU": 20, "CH": 21, "GB": 22,
	"IE": 22, "AT": 20, "PL": 28, "SE": 24, "DK": 18,
}

// ValidateIBANLength accepts an IBAN only when its country prefix is known
// and the total length matches that country's format.
func ValidateIBANLength(iban string) bool {
	if len(iban) < 2 {
		return false
	}
	want, ok := ibanLengths[iban[:2]]
	return ok && len(iban) == want
}

// ValidateSIRETLuhn checks the 14-digit French business identifier with the
// Luhn scheme: digits at even 0-based positions are doubled, 9 is
// subtracted when the double exceeds 9, and the sum must be a multiple
// of 10.
//
//	732 829 320 00074 -> doubled/adjusted digit sum 50 -> valid
func ValidateSIRETLuhn(siret string) bool {
	if len(siret) != 14 {
		return false
	}
	total := 0
	for i, r := range siret {
		if r < '0' || r > '9' {
			return false
		}
		d := int(r - '0')
		if i%2 == 0 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		total += d
	}
	return total%10 == 0
}
