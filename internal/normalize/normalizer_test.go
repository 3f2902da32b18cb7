package normalize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVendor(t *testing.T) {
	n := New()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "exact alias", raw: "Synoptek", want: "Synoptek"},
		{name: "alias with legal suffix and punctuation", raw: "Synoptek, LLC", want: "Synoptek"},
		{name: "alias with legal suffix no comma", raw: "Synoptek LLC", want: "Synoptek"},
		{name: "case folding into alias", raw: "  SYNOPTEK  ", want: "Synoptek"},
		{name: "amazon folds to AWS", raw: "Amazon Web Services", want: "AWS"},
		{name: "unmapped passes through folded", raw: "  Contoso Widgets  ", want: "contoso widgets"},
		{name: "unmapped keeps legal suffix", raw: "Contoso, LLC", want: "contoso, llc"},
		{name: "internal whitespace collapsed", raw: "Markov   Processes", want: "Markov Processes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Vendor(tt.raw))
		})
	}
}

func TestVendor_Idempotent(t *testing.T) {
	n := New()

	inputs := []string{
		"Synoptek, LLC",
		"SYNOPTEK",
		"Amazon Web Services",
		"Contoso Widgets",
		"contoso, llc",
		"",
	}

	for _, raw := range inputs {
		once := n.Vendor(raw)
		assert.Equal(t, once, n.Vendor(once), "normalization must be idempotent for %q", raw)
	}
}

func TestCompany(t *testing.T) {
	n := New()

	assert.Equal(t, "RPAG", n.Company("Retirement Plan Advisory Group"))
	assert.Equal(t, "Great Gray Trust Company", n.Company("great gray trust company"))
	assert.Equal(t, "unknown holdings", n.Company("Unknown Holdings"))
}

func TestDescription(t *testing.T) {
	n := New()

	assert.Equal(t, "azure compute d4s v3", n.Description("  Azure   Compute D4s v3 "))
}

func TestLoadAliases(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aliases.yaml")
	content := `vendors:
  "initech corp": Initech
  "initech": Initech
companies:
  "hooli inc": Hooli
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	n, err := LoadAliases(path)
	require.NoError(t, err)

	// File entries are merged over the defaults.
	assert.Equal(t, "Initech", n.Vendor("INITECH CORP"))
	assert.Equal(t, "Synoptek", n.Vendor("Synoptek, LLC"))
	assert.Equal(t, "Hooli", n.Company("Hooli Inc"))
}

func TestLoadAliases_MissingFile(t *testing.T) {
	_, err := LoadAliases(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
