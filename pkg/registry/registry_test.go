package registry

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-workers/internal/common/errors"
)

func TestDefault_IsValid(t *testing.T) {
	reg := Default()
	require.NoError(t, reg.Validate())

	a, ok := reg.Find("evaluate-listing")
	require.True(t, ok)
	assert.Equal(t, []string{"PARSE_ERROR", "INVALID_CRITERIA", "SNAPSHOT_LOAD_FAILED", "SNAPSHOT_TIMEOUT"}, a.ErrorCodes)
	assert.Equal(t, 3, a.Retries)
	assert.True(t, json.Valid(a.InputSchema))

	_, ok = reg.Find("send-notification")
	assert.False(t, ok)
}

func TestSaveAndLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs", "activity-registry.json")
	require.NoError(t, SaveRegistry(Default(), path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	require.Len(t, loaded.Activities, 2)
	assert.NoError(t, loaded.Validate())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		reg  ActivityRegistry
		msg  string
	}{
		{"empty", ActivityRegistry{}, "no activities"},
		{"duplicate", ActivityRegistry{Activities: []Activity{
			{ID: "a", DisplayName: "A", TaskType: "a"},
			{ID: "a", DisplayName: "A", TaskType: "a"},
		}}, "duplicate"},
		{"missing task type", ActivityRegistry{Activities: []Activity{{ID: "a", DisplayName: "A"}}}, "TaskType"},
		{"bad schema", ActivityRegistry{Activities: []Activity{
			{ID: "a", DisplayName: "A", TaskType: "a", InputSchema: json.RawMessage(`{"type": 5}`)},
		}}, "invalid input schema"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestDefault_ErrorCodesAreBPMNCodes(t *testing.T) {
	thrown := map[string]bool{}
	for _, code := range errors.BPMNErrorMapping {
		thrown[code] = true
	}

	for _, a := range Default().Activities {
		for _, code := range a.ErrorCodes {
			assert.True(t, thrown[code], "%s lists %s", a.TaskType, code)
		}
	}
}
