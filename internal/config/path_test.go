package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Setenv("SPENDLENS_TEST_DIR", "/var/data")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "plain path", input: "/tmp/spendlens.db", want: "/tmp/spendlens.db"},
		{name: "tilde only", input: "~", want: home},
		{name: "tilde prefix", input: "~/data/x.db", want: filepath.Join(home, "data/x.db")},
		{name: "env var", input: "$SPENDLENS_TEST_DIR/x.db", want: "/var/data/x.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.input))
		})
	}
}

func TestLoadOracleConfig_Defaults(t *testing.T) {
	cfg := LoadOracleConfig()
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 10, cfg.RateLimit)
}
