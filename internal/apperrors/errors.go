// Package apperrors holds the error kinds shared across the pipeline.
// Only ConfigError is fatal; everything else is reported per request.
package apperrors

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	ErrInvalidConfig     = errors.New("invalid config")
	ErrMissingVariable   = errors.New("missing template variable")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// ConfigError is raised before any external call is attempted.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return "config: " + e.Reason
	}
	return fmt.Sprintf("config %s: %s", e.Key, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

func NewConfigError(key string, format string, args ...any) *ConfigError {
	return &ConfigError{Key: key, Reason: fmt.Sprintf(format, args...)}
}

// TransientError marks a failure of a network call that may succeed on retry.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: transient: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

func Transient(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Op: op, Err: err}
}

func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsRetryableStatus reports whether an HTTP status code is worth retrying.
func IsRetryableStatus(code int) bool {
	return code == 408 || code == 429 || code >= 500
}

// IsNetworkError covers timeouts and dropped connections that never produced
// a status code. A cancelled parent context is not retryable.
func IsNetworkError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
