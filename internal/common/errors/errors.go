// Package errors provides standardized error handling for the turn pipeline.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeMalformedInput ErrorCode = "MALFORMED_INPUT"

	ErrCodeStoreLoadFailed   ErrorCode = "STORE_LOAD_FAILED"
	ErrCodeStoreReloadFailed ErrorCode = "STORE_RELOAD_FAILED"
	ErrCodeSchemaInvalid     ErrorCode = "SCHEMA_INVALID"

	ErrCodePostcodeUncovered ErrorCode = "POSTCODE_UNCOVERED"
	ErrCodeUnknownSKU        ErrorCode = "UNKNOWN_SKU"
	ErrCodeNoBranches        ErrorCode = "NO_BRANCHES"

	ErrCodeRequiredToolFailed ErrorCode = "REQUIRED_TOOL_FAILED"
	ErrCodeGeocodeFailed      ErrorCode = "GEOCODE_FAILED"
	ErrCodeRenderFailed       ErrorCode = "RENDER_FAILED"

	ErrCodeSessionStoreFailed ErrorCode = "SESSION_STORE_FAILED"
	ErrCodeCRMWriteFailed     ErrorCode = "CRM_WRITE_FAILED"
	ErrCodeAnalyticsFailed    ErrorCode = "ANALYTICS_WRITE_FAILED"
	ErrCodeNotifyFailed       ErrorCode = "NOTIFY_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewMalformedInputError creates a non-retryable input error. Callers in the
// turn path should degrade to intent unknown rather than surface this.
func NewMalformedInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedInput,
		Message:   "Inbound turn payload is malformed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreLoadFailedError creates a retryable tenant document load error.
func NewStoreLoadFailedError(doc string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreLoadFailed,
		Message:   "Tenant document load failed",
		Details:   fmt.Sprintf("doc: %s, error: %s", doc, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreReloadFailedError creates a retryable reload error. The previous
// snapshot stays authoritative when this is returned.
func NewStoreReloadFailedError(doc string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreReloadFailed,
		Message:   "Tenant document reload failed; previous snapshot kept",
		Details:   fmt.Sprintf("doc: %s, error: %s", doc, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSchemaInvalidError creates a non-retryable document schema error.
func NewSchemaInvalidError(doc, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSchemaInvalid,
		Message:   "Tenant document failed schema validation",
		Details:   fmt.Sprintf("doc: %s, %s", doc, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPostcodeUncoveredError creates a non-retryable coverage error.
func NewPostcodeUncoveredError(postcode string) *StandardError {
	return &StandardError{
		Code:      ErrCodePostcodeUncovered,
		Message:   "No delivery rule covers this postcode",
		Details:   fmt.Sprintf("postcode: %s", postcode),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownSKUError creates a non-retryable catalog lookup error.
func NewUnknownSKUError(sku string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownSKU,
		Message:   "SKU not present in catalog",
		Details:   fmt.Sprintf("sku: %s", sku),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRequiredToolFailedError creates a non-retryable planner error. A
// required tool failing forces a clarifier, never a best-effort answer.
func NewRequiredToolFailedError(tool string, err error) *StandardError {
	details := fmt.Sprintf("tool: %s", tool)
	if err != nil {
		details = fmt.Sprintf("tool: %s, error: %s", tool, err.Error())
	}
	return &StandardError{
		Code:      ErrCodeRequiredToolFailed,
		Message:   "Required plan tool call failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGeocodeFailedError creates a retryable geocoder error. Callers fall
// back to outward-prefix matching.
func NewGeocodeFailedError(postcode string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGeocodeFailed,
		Message:   "Postcode geocoding failed",
		Details:   fmt.Sprintf("postcode: %s, error: %s", postcode, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRenderFailedError creates a non-retryable strategy render error. The
// orchestrator replaces the reply with a minimal normalized draft.
func NewRenderFailedError(mode string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRenderFailed,
		Message:   "Strategy rewrite failed",
		Details:   fmt.Sprintf("mode: %s, error: %s", mode, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionStoreFailedError creates a retryable session store error.
func NewSessionStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreFailed,
		Message:   "Session store operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCRMWriteFailedError creates a retryable CRM write error.
func NewCRMWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCRMWriteFailed,
		Message:   "CRM lead write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAnalyticsFailedError creates a retryable analytics sink error.
func NewAnalyticsFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAnalyticsFailed,
		Message:   "Analytics event write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotifyFailedError creates a retryable notifier error.
func NewNotifyFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotifyFailed,
		Message:   "Handoff notification failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// GetRetryCount returns the recommended retry count for side-effect writes.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeStoreLoadFailed,
		ErrCodeStoreReloadFailed,
		ErrCodeSessionStoreFailed,
		ErrCodeCRMWriteFailed,
		ErrCodeAnalyticsFailed,
		ErrCodeNotifyFailed:
		return 3

	case ErrCodeGeocodeFailed:
		return 1

	default:
		return 0
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "SESSION"):
		return "SESSION"
	case strings.Contains(codeStr, "STORE") || strings.Contains(codeStr, "SCHEMA"):
		return "RETRIEVAL"
	case strings.Contains(codeStr, "POSTCODE") || strings.Contains(codeStr, "SKU") || strings.Contains(codeStr, "BRANCH"):
		return "GROUNDING"
	case strings.Contains(codeStr, "TOOL") || strings.Contains(codeStr, "RENDER"):
		return "STRATEGY"
	case strings.Contains(codeStr, "CRM") || strings.Contains(codeStr, "ANALYTICS") || strings.Contains(codeStr, "NOTIFY"):
		return "SIDE_EFFECTS"
	default:
		return "OTHER"
	}
}
