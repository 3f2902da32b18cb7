package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClassification(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantPath string
		wantErr  bool
	}{
		{
			name:     "bare json",
			content:  `{"category_path": "it_services/cloud_services", "confidence": 0.92}`,
			wantPath: "it_services/cloud_services",
		},
		{
			name: "markdown fenced",
			content: "```json\n" +
				`{"category_path": "security_software/endpoint", "confidence": 0.8}` +
				"\n```",
			wantPath: "security_software/endpoint",
		},
		{
			name:     "path needing sanitization",
			content:  `{"category_path": " IT Services / Cloud Services ", "confidence": 0.7}`,
			wantPath: "it_services/cloud_services",
		},
		{
			name:    "missing category path",
			content: `{"confidence": 0.9}`,
			wantErr: true,
		},
		{
			name:    "not json",
			content: "the category is probably cloud",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := parseClassification(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, resp.CategoryPath)
		})
	}
}

func TestSanitizeCategoryPath(t *testing.T) {
	assert.Equal(t, "it_services/managed_services", sanitizeCategoryPath("IT Services/Managed Services"))
	assert.Equal(t, "it_services", sanitizeCategoryPath("/it_services/"))
	assert.Equal(t, "", sanitizeCategoryPath("  "))
}

func TestCleanMarkdownWrapper(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanMarkdownWrapper("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanMarkdownWrapper(`{"a":1}`))
}
