// internal/workers/catalog/evaluate-listing/models.go
package evaluatelisting

import "storefront-workers/internal/catalog"

// Input is the job payload. Fields left out of criteria keep their defaults. A zero
// limit, or one above the worker's max_limit, is replaced by max_limit.
type Input struct {
	Criteria catalog.Criteria `json:"criteria"`
	Limit    int              `json:"limit,omitempty"`
}

func newInput() Input {
	return Input{Criteria: catalog.DefaultCriteria()}
}

// Output carries the evaluated listing. ShownCount counts every match even when
// Products is cut to the requested limit.
type Output struct {
	EvaluationID string             `json:"evaluationId"`
	Products     []*catalog.Product `json:"products"`
	ShownCount   int                `json:"shownCount"`
	TotalCount   int                `json:"totalCount"`
	Truncated    bool               `json:"truncated"`
	SortKey      catalog.SortKey    `json:"sortKey"`
	SearchTerm   string             `json:"searchTerm,omitempty"`
}
