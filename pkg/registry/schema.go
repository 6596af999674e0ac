// pkg/registry/schema.go
package registry

import "encoding/json"

// ActivityRegistry describes the job types this service implements, for process modelers.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

type Activity struct {
	ID          string          `json:"id"`
	DisplayName string          `json:"displayName"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Version     string          `json:"version"`
	TaskType    string          `json:"taskType"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
	Outputs     []string        `json:"outputs"`
	ErrorCodes  []string        `json:"errorCodes"`
	Timeout     string          `json:"timeout"`
	Retries     int             `json:"retries"`
	Tags        []string        `json:"tags,omitempty"`
}
