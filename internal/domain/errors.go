package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrTargetUnresolved indicates no database id could be resolved for a group
	ErrTargetUnresolved = errors.New("target database not resolved")

	// ErrSnapshotNotFound indicates the snapshot document is missing
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrChecksumMismatch indicates the snapshot content does not match its declared checksum
	ErrChecksumMismatch = errors.New("snapshot checksum mismatch")

	// ErrRateLimited indicates the remote target rejected a call for rate reasons
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout indicates a timeout occurred
	ErrTimeout = errors.New("timeout")
)

// ConfigError represents an unusable run configuration for one group
type ConfigError struct {
	Group string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for group %s: %v", e.Group, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(group string, err error) *ConfigError {
	return &ConfigError{Group: group, Err: err}
}

// TransportError represents a network or API failure for one call
type TransportError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("transport error for %s: status %d: %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transport error for %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a new TransportError
func NewTransportError(endpoint string, statusCode int, err error) *TransportError {
	return &TransportError{
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Err:        err,
	}
}

// SchemaError represents a failure to prepare one categorical field on the
// target. Operations depending on the field fail individually afterwards.
type SchemaError struct {
	Field string
	Err   error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error for field %q: %v", e.Field, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// NewSchemaError creates a new SchemaError
func NewSchemaError(field string, err error) *SchemaError {
	return &SchemaError{Field: field, Err: err}
}

// RetryableError indicates an error that can be retried
type RetryableError struct {
	Err        error
	RetryAfter int // Seconds to wait before retry, 0 if unknown
}

func (e *RetryableError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("retryable error (retry after %ds): %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("retryable error: %v", e.Err)
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	var retryable *RetryableError
	if errors.As(err, &retryable) {
		return true
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		switch transportErr.StatusCode {
		case 429, 502, 503, 504:
			return true
		}
	}

	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTimeout)
}
