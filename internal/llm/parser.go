package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spendlens/spendlens/internal/common"
)

// parseClassification extracts a category path and confidence from a raw LLM
// completion. The models are instructed to emit bare JSON, but responses
// wrapped in markdown code fences are tolerated.
func parseClassification(content string) (ClassificationResponse, error) {
	var jsonResp struct {
		CategoryPath string  `json:"category_path"`
		Confidence   float64 `json:"confidence"`
	}

	content = cleanMarkdownWrapper(content)

	if err := json.Unmarshal([]byte(content), &jsonResp); err != nil {
		return ClassificationResponse{}, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	path := sanitizeCategoryPath(jsonResp.CategoryPath)
	if path == "" {
		return ClassificationResponse{}, fmt.Errorf("no category path found in response")
	}

	return ClassificationResponse{
		CategoryPath: path,
		Confidence:   jsonResp.Confidence,
	}, nil
}

// cleanMarkdownWrapper strips a surrounding ```json ... ``` fence if present.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		if idx := strings.Index(content, "\n"); idx >= 0 {
			content = content[idx+1:]
		}
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}

	return strings.TrimSpace(content)
}

// sanitizeCategoryPath canonicalizes a model-produced category path: segments
// are lower-cased, trimmed, and space-separated words joined by underscores.
// Empty segments are dropped.
func sanitizeCategoryPath(raw string) string {
	segments := strings.Split(strings.TrimSpace(raw), "/")
	cleaned := make([]string, 0, len(segments))

	for _, seg := range segments {
		seg = strings.ToLower(strings.TrimSpace(seg))
		seg = strings.ReplaceAll(seg, " ", "_")
		if seg != "" {
			cleaned = append(cleaned, seg)
		}
	}

	return strings.Join(cleaned, "/")
}

// errRateLimited maps an HTTP 429 body onto the shared rate-limit sentinel so
// retry logic backs off appropriately.
func errRateLimited(body []byte) error {
	return fmt.Errorf("%w: %s", common.ErrRateLimit, strings.TrimSpace(string(body)))
}
