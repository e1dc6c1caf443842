package search

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// The domain's signature term shows up with and without the accent and
	// in every casing; matching must not depend on which one was typed.
	pokemonRE = regexp.MustCompile(`(?i)pok[eé]mon`)

	// "100 x" / "100x" shorthand for the multiplier glyph.
	timesSuffixRE = regexp.MustCompile(`(\d+)\s*[x×]`)

	nonDigitsRE = regexp.MustCompile(`\D`)
)

// NormalizeTerm canonicalizes a text filter value or free-text phrase:
// trims, rewrites spelling variants of "Pokémon" and collapses the numeric
// multiplier shorthand to the × glyph.
func NormalizeTerm(s string) string {
	s = strings.TrimSpace(s)
	s = pokemonRE.ReplaceAllString(s, "Pokémon")
	s = timesSuffixRE.ReplaceAllString(s, "$1×")
	return s
}

// normalizeValue applies term normalization to text-shaped values. Other
// variants pass through unchanged.
func normalizeValue(v Value) Value {
	switch v := v.(type) {
	case Text:
		return Text(NormalizeTerm(string(v)))
	case Multi:
		out := make(Multi, len(v))
		for i, s := range v {
			out[i] = NormalizeTerm(s)
		}
		return out
	case NumberText:
		return NumberText{Raw: strings.TrimSpace(v.Raw), Op: v.Op}
	default:
		return v
	}
}

// splitWords tokenizes a multi-word text value. Each word becomes an
// independent substring match.
func splitWords(s string) []string {
	return strings.Fields(s)
}

// numericFromText strips every non-digit character and parses the rest.
// Values without any digit report ok=false and never match a comparison.
func numericFromText(raw string) (int, bool) {
	digits := nonDigitsRE.ReplaceAllString(raw, "")
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// collapseSpace normalizes runs of whitespace to single spaces; used by the
// trainer-card equivalence rule.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
