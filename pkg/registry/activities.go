package registry

import (
	"encoding/json"
	"slices"
	"time"

	"storefront-workers/internal/common/errors"
	"storefront-workers/internal/common/validation"
	evaluatelisting "storefront-workers/internal/workers/catalog/evaluate-listing"
	reconcilecriteria "storefront-workers/internal/workers/catalog/reconcile-criteria"
)

const Version = "1.0.0"

// Default lists the catalog activities served by the worker manager.
func Default() *ActivityRegistry {
	return &ActivityRegistry{
		Version:     Version,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		Activities: []Activity{
			{
				ID:          reconcilecriteria.TaskType,
				DisplayName: "Reconcile Listing Criteria",
				Description: "Merges previous criteria, URL parameters and one sidebar edit into the next listing criteria",
				Category:    "catalog",
				Version:     Version,
				TaskType:    reconcilecriteria.TaskType,
				InputSchema: json.RawMessage(validation.ReconcileRequestSchema.Document()),
				Outputs:     []string{"criteria", "changed"},
				ErrorCodes:  bpmnCodes(errors.ErrCodeParseError, errors.ErrCodeInvalidCriteria),
				Timeout:     reconcilecriteria.DefaultConfig().Timeout.String(),
				Retries:     0,
				Tags:        []string{"storefront", "filters"},
			},
			{
				ID:          evaluatelisting.TaskType,
				DisplayName: "Evaluate Product Listing",
				Description: "Filters and orders the current product snapshot by the given criteria",
				Category:    "catalog",
				Version:     Version,
				TaskType:    evaluatelisting.TaskType,
				InputSchema: json.RawMessage(validation.EvaluateRequestSchema.Document()),
				Outputs:     []string{"evaluationId", "products", "shownCount", "totalCount", "truncated", "sortKey", "searchTerm"},
				ErrorCodes: bpmnCodes(
					errors.ErrCodeParseError,
					errors.ErrCodeInvalidCriteria,
					errors.ErrCodeSnapshotLoadFailed,
					errors.ErrCodeSnapshotTimeout,
					errors.ErrCodeSnapshotDecodeFailed,
					errors.ErrCodeIndexNotFound,
				),
				Timeout: evaluatelisting.DefaultConfig().Timeout.String(),
				Retries: errors.GetRetryCount(errors.ErrCodeSnapshotLoadFailed),
				Tags:    []string{"storefront", "listing"},
			},
		},
	}
}

// bpmnCodes returns the boundary-event codes thrown for the given internal codes, without repeats.
func bpmnCodes(codes ...errors.ErrorCode) []string {
	var out []string
	for _, code := range codes {
		bpmn, ok := errors.BPMNErrorMapping[code]
		if !ok {
			bpmn = string(code)
		}
		if !slices.Contains(out, bpmn) {
			out = append(out, bpmn)
		}
	}
	return out
}
