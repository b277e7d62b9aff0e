package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmountFormats(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1.234,56", 1234.56},   // European
		{"1,234.56", 1234.56},   // Anglo
		{"1 234,56 €", 1234.56}, // French with currency
		{"1'234.56", 1234.56},   // Swiss apostrophe
		{"108,40", 108.40},
		{"108.40", 108.40},
		{"120,50 EUR", 120.50},
		{"€ 120,50", 120.50},
		{"-120,50", -120.50}, // credit note
		{"30", 30},
	}
	for _, tc := range cases {
		got, ok := ParseAmount(tc.in)
		assert.True(t, ok, "ParseAmount(%q)", tc.in)
		assert.InDelta(t, tc.want, got, 1e-9, "ParseAmount(%q)", tc.in)
	}
}

// Separator-format invariance: the same value written both ways parses
// identically.
func TestParseAmountFormatInvariance(t *testing.T) {
	eu, okEU := ParseAmount("1.234,56")
	an, okAN := ParseAmount("1,234.56")
	assert.True(t, okEU)
	assert.True(t, okAN)
	assert.Equal(t, eu, an)
	assert.InDelta(t, 1234.56, eu, 1e-9)
}

func TestParseAmountOCRGlyphRepair(t *testing.T) {
	got, ok := ParseAmount("1O8,4O")
	assert.True(t, ok)
	assert.InDelta(t, 108.40, got, 1e-9)

	got, ok = ParseAmount("l23,45")
	assert.True(t, ok)
	assert.InDelta(t, 123.45, got, 1e-9)
}

// ParseAmount is total over garbage: it reports failure, it never panics
// and never returns a silently wrong number.
func TestParseAmountMalformed(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "€", "12.34.56,78.9x", "--", "1.2.3"} {
		_, ok := ParseAmount(in)
		assert.False(t, ok, "ParseAmount(%q) should fail", in)
	}
}
