package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendlens/spendlens/internal/model"
)

func record(vendor string, descriptions ...string) *model.InvoiceRecord {
	items := make([]model.LineItem, 0, len(descriptions))
	for _, d := range descriptions {
		items = append(items, model.LineItem{
			Description: d,
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   decimal.NewFromInt(100),
		})
	}
	return &model.InvoiceRecord{VendorNormalized: vendor, LineItems: items}
}

func TestMatch_DefaultRules(t *testing.T) {
	table, err := NewTable(DefaultRules())
	require.NoError(t, err)

	tests := []struct {
		name   string
		record *model.InvoiceRecord
		want   string
	}{
		{
			name:   "azure line item",
			record: record("Synoptek", "Azure compute charges"),
			want:   "it_services/cloud_services",
		},
		{
			name:   "managed services wins over vendor catch-all",
			record: record("Synoptek", "Managed Services monthly retainer"),
			want:   "it_services/cloud_services/managed_services",
		},
		{
			name:   "msp vendor catch-all",
			record: record("Synoptek", "quarterly invoice"),
			want:   "it_services/managed_services",
		},
		{
			name:   "endpoint security",
			record: record("CrowdStrike", "Falcon platform subscription"),
			want:   "security_software/endpoint",
		},
		{
			name:   "microsoft 365 licensing",
			record: record("Microsoft", "Microsoft 365 E5 licenses"),
			want:   "enterprise_software/licensing",
		},
		{
			name:   "case insensitive",
			record: record("acme", "JIRA cloud premium"),
			want:   "development_tools/collaboration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := table.Match(tt.record)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatch_Miss(t *testing.T) {
	table, err := NewTable(DefaultRules())
	require.NoError(t, err)

	_, ok := table.Match(record("mystery vendor", "unlabeled charge"))
	assert.False(t, ok)
}

func TestMatch_FirstMatchWins(t *testing.T) {
	table, err := NewTable([]Rule{
		{Name: "specific", Pattern: `\bazure\s*backup\b`, CategoryPath: "it_services/cloud_services/backup"},
		{Name: "general", Pattern: `\bazure\b`, CategoryPath: "it_services/cloud_services"},
	})
	require.NoError(t, err)

	got, ok := table.Match(record("acme", "Azure Backup vault"))
	require.True(t, ok)
	assert.Equal(t, "it_services/cloud_services/backup", got)

	got, ok = table.Match(record("acme", "Azure compute"))
	require.True(t, ok)
	assert.Equal(t, "it_services/cloud_services", got)
}

// Rules with disjoint categories must not both match the same canonical probe
// input; ordering only disambiguates specific-versus-general pairs within the
// same category subtree.
func TestDefaultRules_NoCrossCategoryAmbiguity(t *testing.T) {
	table, err := NewTable(DefaultRules())
	require.NoError(t, err)

	probes := []struct {
		input string
		top   string
	}{
		{input: "azure compute", top: "it_services"},
		{input: "crowdstrike falcon", top: "security_software"},
		{input: "jira confluence", top: "development_tools"},
		{input: "microsoft 365 licenses", top: "enterprise_software"},
		{input: "professional services engagement", top: "it_services"},
	}

	for _, p := range probes {
		var matches []string
		for _, r := range table.rules {
			if r.regex.MatchString(p.input) {
				matches = append(matches, model.TopCategory(r.CategoryPath))
			}
		}
		require.NotEmpty(t, matches, "probe %q matched nothing", p.input)
		for _, top := range matches {
			assert.Equal(t, p.top, top, "probe %q matched rules across category trees", p.input)
		}
	}
}

func TestNewTable_InvalidPattern(t *testing.T) {
	_, err := NewTable([]Rule{{Name: "bad", Pattern: `[unclosed`, CategoryPath: "x"}})
	assert.Error(t, err)
}

func TestNewTable_MissingCategory(t *testing.T) {
	_, err := NewTable([]Rule{{Name: "bad", Pattern: `azure`}})
	assert.Error(t, err)
}

func TestLoadTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := `rules:
  - name: Internal chargeback
    pattern: '\bchargeback\b'
    category: internal/chargeback
  - name: Azure override
    pattern: '\bazure\b'
    category: custom/cloud
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	table, err := LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultRules())+2, table.Len())

	// User rules are evaluated before the defaults.
	got, ok := table.Match(record("acme", "Azure compute"))
	require.True(t, ok)
	assert.Equal(t, "custom/cloud", got)
}
