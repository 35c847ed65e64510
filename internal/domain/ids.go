package domain

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const idFragmentMax = 20

// ClientIDBase derives the readable id base for a client: "DUPONT_MARIE".
func ClientIDBase(nom, prenom string) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{nom, prenom} {
		if f := idFragment(p); f != "" {
			parts = append(parts, f)
		}
	}
	if len(parts) == 0 {
		return "CLIENT"
	}
	return strings.Join(parts, "_")
}

// TarifIDBase derives the readable id base for a tariff: "CONSULTATION".
func TarifIDBase(libelle string) string {
	if f := idFragment(libelle); f != "" {
		return f
	}
	return "TARIF"
}

// UniqueID returns base if it is free, otherwise base_1, base_2, ... The
// result only depends on base and the taken set.
func UniqueID(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for n := 1; ; n++ {
		candidate := base + "_" + strconv.Itoa(n)
		if !taken(candidate) {
			return candidate
		}
	}
}

// idFragment upper-cases s, strips diacritics, maps every run of other
// characters to a single '_' and truncates the result.
func idFragment(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToUpper(folded) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}

	out := b.String()
	if len(out) > idFragmentMax {
		out = strings.TrimRight(out[:idFragmentMax], "_")
	}
	return out
}
