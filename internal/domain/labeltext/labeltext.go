// Package labeltext turns raw label text into candidate ingredient names.
package labeltext

import (
	"regexp"
	"strings"
)

var (
	separators = regexp.MustCompile(`[,\n]`)
	disallowed = regexp.MustCompile(`[^\w\s-]`)
)

type substitution struct {
	code string
	name string
}

// Checked in order; the first code contained in the cleaned name wins.
var eNumberNames = []substitution{
	{"E102", "Tartrazine"},
	{"E951", "Aspartame"},
	{"E211", "Sodium Benzoate"},
	{"E420", "Sorbitol"},
	{"E621", "Monosodium Glutamate"},
	{"E320", "Sugar"},
	{"E321", "Sugar"},
}

// Split breaks label text on commas and newlines, trims each piece and
// drops empty ones.
func Split(text string) []string {
	parts := separators.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// CleanName strips everything but word characters, whitespace and hyphens,
// then replaces a known E-number with its common name.
func CleanName(raw string) string {
	cleaned := strings.TrimSpace(disallowed.ReplaceAllString(raw, ""))
	upper := strings.ToUpper(cleaned)
	for _, s := range eNumberNames {
		if strings.Contains(upper, s.code) {
			return s.name
		}
	}
	return cleaned
}

// Candidates cleans every raw name and drops the ones that end up empty.
func Candidates(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if c := CleanName(r); c != "" {
			out = append(out, c)
		}
	}
	return out
}
