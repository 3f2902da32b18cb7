package model

import "github.com/shopspring/decimal"

// RecommendationKind identifies the class of a cost-optimization suggestion.
type RecommendationKind string

// Recommendation kinds.
const (
	KindCostReduction       RecommendationKind = "cost_reduction"
	KindVendorConsolidation RecommendationKind = "vendor_consolidation"
	KindCompanyReview       RecommendationKind = "company_review"
)

// Priority orders recommendations for presentation.
type Priority string

// Recommendation priorities.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank converts a priority to a sortable ordinal, high first. Unknown
// priorities sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// Recommendation is a derived cost-optimization suggestion.
type Recommendation struct {
	Kind             RecommendationKind `json:"kind"`
	Subject          string             `json:"subject"`
	Message          string             `json:"message"`
	Priority         Priority           `json:"priority"`
	PotentialSavings decimal.Decimal    `json:"potential_savings"`
}
