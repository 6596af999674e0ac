// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeParseError      ErrorCode = "PARSE_ERROR"
	ErrCodeInvalidCriteria ErrorCode = "INVALID_CRITERIA"

	ErrCodeSnapshotLoadFailed   ErrorCode = "SNAPSHOT_LOAD_FAILED"
	ErrCodeSnapshotTimeout      ErrorCode = "SNAPSHOT_TIMEOUT"
	ErrCodeSnapshotDecodeFailed ErrorCode = "SNAPSHOT_DECODE_FAILED"
	ErrCodeIndexNotFound        ErrorCode = "INDEX_NOT_FOUND"
	ErrCodeCacheUnavailable     ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message string, retryable bool, cause error, details string) *StandardError {
	if details == "" && cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewParseError creates a non-retryable error for job variables that are not valid JSON.
func NewParseError(err error) *StandardError {
	return newError(ErrCodeParseError, "Job variables could not be parsed", false, err, "")
}

// NewInvalidCriteriaError creates a non-retryable error for criteria that fail schema validation.
func NewInvalidCriteriaError(details string) *StandardError {
	return newError(ErrCodeInvalidCriteria, "Listing criteria are invalid", false, nil, details)
}

// NewSnapshotLoadFailedError creates a retryable error for a failed product snapshot read.
func NewSnapshotLoadFailedError(source string, err error) *StandardError {
	e := newError(ErrCodeSnapshotLoadFailed, "Product snapshot could not be loaded", true, err, "")
	e.Metadata = map[string]interface{}{"source": source}
	return e
}

func NewSnapshotTimeoutError(source string, err error) *StandardError {
	e := newError(ErrCodeSnapshotTimeout, "Product snapshot load timed out", true, err, "")
	e.Metadata = map[string]interface{}{"source": source}
	return e
}

func NewSnapshotDecodeFailedError(err error) *StandardError {
	return newError(ErrCodeSnapshotDecodeFailed, "Product snapshot contains malformed records", false, err, "")
}

func NewIndexNotFoundError(indexName string) *StandardError {
	return newError(ErrCodeIndexNotFound, "Product index not found", false, nil, fmt.Sprintf("index: %s", indexName))
}

func NewCacheUnavailableError(err error) *StandardError {
	return newError(ErrCodeCacheUnavailable, "Snapshot cache unavailable", true, err, "")
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", false, err, "")
}

// ==========================
// 4. Mapping helpers
// ==========================

// BPMNErrorMapping maps internal codes to the error codes caught by boundary events.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeParseError:           "PARSE_ERROR",
	ErrCodeInvalidCriteria:      "INVALID_CRITERIA",
	ErrCodeSnapshotLoadFailed:   "SNAPSHOT_LOAD_FAILED",
	ErrCodeSnapshotTimeout:      "SNAPSHOT_TIMEOUT",
	ErrCodeSnapshotDecodeFailed: "SNAPSHOT_LOAD_FAILED",
	ErrCodeIndexNotFound:        "SNAPSHOT_LOAD_FAILED",
	ErrCodeCacheUnavailable:     "SNAPSHOT_LOAD_FAILED",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeSnapshotLoadFailed, ErrCodeCacheUnavailable:
		return 3
	case ErrCodeSnapshotTimeout:
		return 2
	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "SNAPSHOT") || strings.Contains(codeStr, "INDEX"):
		return "SNAPSHOT"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "PARSE") || strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

// HTTPStatus maps a code onto the status the listing API answers with.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeParseError, ErrCodeInvalidCriteria:
		return http.StatusBadRequest
	case ErrCodeSnapshotTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeSnapshotLoadFailed, ErrCodeIndexNotFound, ErrCodeCacheUnavailable, ErrCodeSnapshotDecodeFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// AsStandardError finds a StandardError in err's chain or wraps err as an internal error.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}
