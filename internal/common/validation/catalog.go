package validation

// Schemas for job variables and request bodies carrying listing criteria. Unknown sort keys,
// categories and brands pass here; the reconciler ignores them.

const criteriaDefinition = `{
	"type": ["object", "null"],
	"properties": {
		"searchTerm": {"type": "string"},
		"categories": {"type": ["array", "null"], "items": {"type": "string"}, "uniqueItems": true},
		"brands":     {"type": ["array", "null"], "items": {"type": "string"}, "uniqueItems": true},
		"priceRange": {
			"type": ["object", "null"],
			"properties": {
				"min": {"type": "number"},
				"max": {"type": "number"}
			}
		},
		"minRating": {"type": "number"},
		"sortKey":   {"type": "string"}
	}
}`

const urlParamsDefinition = `{
	"type": ["object", "null"],
	"properties": {
		"search":   {"type": "string"},
		"category": {"type": "string"}
	}
}`

const editDefinition = `{
	"type": ["object", "null"],
	"required": ["kind"],
	"properties": {
		"kind":   {"type": "string", "minLength": 1},
		"value":  {"type": "string"},
		"min":    {"type": "number", "minimum": 0},
		"max":    {"type": "number", "minimum": 0},
		"rating": {"type": "number"}
	}
}`

// ReconcileRequestSchema validates {previous, urlParams, edit, initialLoad}.
var ReconcileRequestSchema = MustCompile("reconcile-request", `{
	"type": "object",
	"properties": {
		"previous":    `+criteriaDefinition+`,
		"urlParams":   `+urlParamsDefinition+`,
		"edit":        `+editDefinition+`,
		"initialLoad": {"type": "boolean"}
	}
}`)

// EvaluateRequestSchema validates {criteria, limit}.
var EvaluateRequestSchema = MustCompile("evaluate-request", `{
	"type": "object",
	"properties": {
		"criteria": `+criteriaDefinition+`,
		"limit":    {"type": "integer", "minimum": 0}
	}
}`)
