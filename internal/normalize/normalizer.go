// Package normalize canonicalizes vendor and company names so that
// duplicate-detection and aggregation keys are stable across formatting
// variations of the same real-world entity.
package normalize

import (
	"regexp"
	"strings"
)

// legalSuffixes are trailing legal-entity markers stripped during alias
// lookup. Stripping only takes effect when the stripped form maps to a known
// alias; unmapped names pass through trimmed and case-folded.
var legalSuffixes = []string{
	", llc", " llc", ", inc.", ", inc", " inc.", " inc",
	", ltd", " ltd", " pty ltd", ", corp", " corp", " co.",
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Normalizer folds raw vendor and company names onto canonical names using a
// static alias table. It is a pure lookup component: identical inputs always
// produce identical outputs for a given alias table.
type Normalizer struct {
	vendorAliases  map[string]string
	companyAliases map[string]string
}

// New creates a Normalizer with the built-in alias tables.
func New() *Normalizer {
	return NewWithAliases(defaultVendorAliases, defaultCompanyAliases)
}

// NewWithAliases creates a Normalizer with caller-supplied alias tables.
// Keys are matched case-insensitively.
func NewWithAliases(vendorAliases, companyAliases map[string]string) *Normalizer {
	n := &Normalizer{
		vendorAliases:  make(map[string]string, len(vendorAliases)),
		companyAliases: make(map[string]string, len(companyAliases)),
	}
	for k, v := range vendorAliases {
		n.vendorAliases[fold(k)] = v
	}
	for k, v := range companyAliases {
		n.companyAliases[fold(k)] = v
	}
	return n
}

// Vendor normalizes a raw vendor name. Known variants (including forms that
// only differ by punctuation or a trailing legal suffix) map to their
// canonical name; anything else passes through case-folded and trimmed.
func (n *Normalizer) Vendor(raw string) string {
	return n.lookup(n.vendorAliases, raw)
}

// Company normalizes a raw company / bill-to name.
func (n *Normalizer) Company(raw string) string {
	return n.lookup(n.companyAliases, raw)
}

// Description normalizes a line-item description: case-folded, trimmed, with
// internal whitespace collapsed.
func (n *Normalizer) Description(raw string) string {
	return fold(raw)
}

func (n *Normalizer) lookup(aliases map[string]string, raw string) string {
	folded := fold(raw)
	if canonical, ok := aliases[folded]; ok {
		return canonical
	}

	stripped := stripLegalSuffix(folded)
	if stripped != folded {
		if canonical, ok := aliases[stripped]; ok {
			return canonical
		}
	}

	return folded
}

// fold lower-cases, trims, and collapses internal whitespace.
func fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return whitespaceRe.ReplaceAllString(s, " ")
}

func stripLegalSuffix(s string) string {
	for _, suffix := range legalSuffixes {
		if strings.HasSuffix(s, suffix) {
			return strings.TrimSpace(strings.TrimSuffix(s, suffix))
		}
	}
	return s
}
