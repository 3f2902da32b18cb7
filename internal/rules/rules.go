// Package rules implements the ordered keyword rule table used as the first
// categorization stage, ahead of the cache and the oracle.
package rules

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spendlens/spendlens/internal/model"
)

// Rule maps a keyword pattern to a category path. Rules are evaluated in
// table order and the first match wins, so more specific patterns must
// precede general ones.
type Rule struct {
	Name         string `yaml:"name"`
	Pattern      string `yaml:"pattern"`
	CategoryPath string `yaml:"category"`
}

type compiledRule struct {
	regex *regexp.Regexp
	Rule
}

// Table is an ordered, compiled rule table.
type Table struct {
	rules []compiledRule
}

// NewTable compiles the given rules, preserving their order. Patterns are
// matched case-insensitively.
func NewTable(rules []Rule) (*Table, error) {
	compiled := make([]compiledRule, 0, len(rules))

	for _, r := range rules {
		if r.CategoryPath == "" {
			return nil, fmt.Errorf("rule %q has no category path", r.Name)
		}

		pattern := r.Pattern
		if !strings.HasPrefix(pattern, "(?i)") {
			pattern = "(?i)" + pattern
		}

		regex, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile rule %q: %w", r.Name, err)
		}

		compiled = append(compiled, compiledRule{Rule: r, regex: regex})
	}

	return &Table{rules: compiled}, nil
}

// Match tests the record's normalized vendor and line-item descriptions
// against the table. It returns the first matching rule's category path.
func (t *Table) Match(record *model.InvoiceRecord) (string, bool) {
	var sb strings.Builder
	sb.WriteString(record.VendorNormalized)
	for _, li := range record.LineItems {
		sb.WriteString(" ")
		sb.WriteString(li.Description)
	}
	haystack := sb.String()

	for _, r := range t.rules {
		if r.regex.MatchString(haystack) {
			return r.CategoryPath, true
		}
	}

	return "", false
}

// Len returns the number of rules in the table.
func (t *Table) Len() int {
	return len(t.rules)
}

// LoadTable reads a rule table from a YAML file. The file's rules are
// prepended to the built-in defaults so user rules take precedence.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var file struct {
		Rules []Rule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	return NewTable(append(file.Rules, DefaultRules()...))
}
