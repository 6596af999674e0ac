// internal/workers/catalog/reconcile-criteria/models.go
package reconcilecriteria

import "storefront-workers/internal/catalog"

// Input is the job payload. A missing previous state starts from the default criteria.
type Input struct {
	Previous    catalog.Criteria  `json:"previous"`
	URLParams   catalog.URLParams `json:"urlParams"`
	Edit        *catalog.Edit     `json:"edit,omitempty"`
	InitialLoad bool              `json:"initialLoad"`
}

func newInput() Input {
	return Input{Previous: catalog.DefaultCriteria()}
}

type Output struct {
	Criteria catalog.Criteria `json:"criteria"`
	Changed  bool             `json:"changed"`
}
