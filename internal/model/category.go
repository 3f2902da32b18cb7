package model

import "strings"

// CategorizationStatus tracks how far a record has moved through the
// categorization state machine.
type CategorizationStatus string

// Categorization status constants.
const (
	StatusUncategorized        CategorizationStatus = "UNCATEGORIZED"
	StatusRuleMatched          CategorizationStatus = "RULE_MATCHED"
	StatusOraclePending        CategorizationStatus = "ORACLE_PENDING"
	StatusCategorized          CategorizationStatus = "CATEGORIZED"
	StatusCategorizationFailed CategorizationStatus = "CATEGORIZATION_FAILED"
)

// UncategorizedPath is assigned to records whose categorization failed.
// Such records still count toward vendor, company, and period totals.
const UncategorizedPath = "uncategorized"

// CategoryPathSeparator delimits segments of a hierarchical category path,
// e.g. "it_services/cloud_services/managed_services".
const CategoryPathSeparator = "/"

// ParentCategory strips the trailing segment from a category path. It returns
// the empty string when the path has no parent.
func ParentCategory(path string) string {
	idx := strings.LastIndex(path, CategoryPathSeparator)
	if idx < 0 {
		return ""
	}
	return path[:idx]
}

// TopCategory returns the first segment of a category path.
func TopCategory(path string) string {
	if idx := strings.Index(path, CategoryPathSeparator); idx >= 0 {
		return path[:idx]
	}
	return path
}
