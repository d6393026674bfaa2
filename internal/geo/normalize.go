package geo

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName is the join key between region metrics and boundary
// features: lowercased, decomposed with combining marks removed, trimmed.
// "  São Paulo " and "sao paulo" normalize to the same key.
func NormalizeName(name string) string {
	if name == "" {
		return ""
	}
	// Transformers carry state, so each call builds its own chain.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, strings.ToLower(name))
	if err != nil {
		out = strings.ToLower(name)
	}
	return strings.TrimSpace(out)
}

// RegionMetric maps normalized region names to a percentage.
type RegionMetric map[string]float64

// Set stores v under the normalized form of name. Blank names are ignored.
func (m RegionMetric) Set(name string, v float64) {
	key := NormalizeName(name)
	if key == "" {
		return
	}
	m[key] = v
}

// Lookup normalizes name and returns its value.
func (m RegionMetric) Lookup(name string) (float64, bool) {
	v, ok := m[NormalizeName(name)]
	return v, ok
}
