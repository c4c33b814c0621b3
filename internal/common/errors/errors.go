// internal/common/errors/errors.go

// Package errors provides the standardized error taxonomy for the scout
// pipeline. The four classes mirror how failures are recovered: data gaps
// degrade to neutral defaults, bad scrapes suppress absence transitions,
// malformed configuration fails fast at load, and a missing secondary model
// silently falls back to the rule-based composite.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeDataUnavailable       ErrorCode = "DATA_UNAVAILABLE"
	ErrCodeReconcileInputInvalid ErrorCode = "RECONCILIATION_INPUT_INVALID"
	ErrCodeConfigInvalid         ErrorCode = "CONFIG_INVALID"
	ErrCodeSecondaryUnavailable  ErrorCode = "SECONDARY_MODEL_UNAVAILABLE"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeMarketLookupFailed       ErrorCode = "MARKET_LOOKUP_FAILED"
	ErrCodeNotificationSendFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeSnapshotBatchInvalid     ErrorCode = "SNAPSHOT_BATCH_INVALID"
)

// Sentinels for errors.Is checks at the pipeline boundary.
var (
	// ErrEmptyScrape marks a cycle whose scrape returned zero listings.
	// Absence-based transitions are suppressed for that cycle; callers log
	// it as a warning, never fail on it.
	ErrEmptyScrape = errors.New("empty scrape: absence-based transitions suppressed")

	// ErrModelUnavailable is returned by predictors that have no trained
	// model (cold start). Scoring falls back to the pure composite.
	ErrModelUnavailable = errors.New("secondary model unavailable")
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

// NewConfigInvalidError creates a non-retryable configuration error. Raised
// at load time only; the core never scores with malformed weights.
func NewConfigInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigInvalid,
		Message:   "Invalid scout configuration",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSnapshotBatchInvalidError creates a non-retryable error for a snapshot
// batch that fails schema validation at the ingestion boundary.
func NewSnapshotBatchInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSnapshotBatchInvalid,
		Message:   "Snapshot batch failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("op: %s, error: %s", op, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMarketLookupFailedError creates a retryable market-data lookup error.
// Scoring treats a failed lookup as an unresolved range, so this surfaces
// only in logs and metrics.
func NewMarketLookupFailedError(brand, model string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMarketLookupFailed,
		Message:   "Market price-guide lookup failed",
		Details:   fmt.Sprintf("brand: %s, model: %s, error: %s", brand, model, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// IsRetryable reports whether err carries a retryable StandardError.
func IsRetryable(err error) bool {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}
