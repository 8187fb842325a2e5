package domain

import "fmt"

// Error types for consistent error handling across the proxy.
// A non-2xx answer from the gateway is not an error: it is passed through as data.

// ErrValidation indicates a validation error (bad input). Always the caller's fault.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrConfiguration indicates the proxy is not configured to reach the gateway,
// typically because a credential is missing. Fatal and non-retryable.
type ErrConfiguration struct {
	Message string
}

func (e *ErrConfiguration) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// ErrNetwork indicates no response was received from the gateway at all
// (DNS, connection refused, timeout, open circuit).
type ErrNetwork struct {
	Operation string
	Details   string
	Err       error
}

func (e *ErrNetwork) Error() string {
	return fmt.Sprintf("network error [%s]: %s", e.Operation, e.Details)
}

func (e *ErrNetwork) Unwrap() error {
	return e.Err
}
