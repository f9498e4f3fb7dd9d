// Package errors provides custom error types for the ragchat gateway client.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrEmptyInput       = errors.New("input cannot be empty")
	ErrNoCredential     = errors.New("no API key configured")
	ErrClientClosed     = errors.New("client is closed")
	ErrExchangeInFlight = errors.New("a response is already streaming")
	ErrCancelled        = errors.New("request cancelled")
	ErrInvalidResponse  = errors.New("invalid response format")
)

// NetworkError represents a transport failure: the gateway was unreachable
// or the connection broke while the body was being read.
type NetworkError struct {
	Operation string
	Endpoint  string
	Err       error
}

func (e *NetworkError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("network error during %s at %s: %v", e.Operation, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("network error during %s: %v", e.Operation, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is matches ErrCancelled when the underlying cause is a context cancellation.
func (e *NetworkError) Is(target error) bool {
	if target == ErrCancelled {
		return errors.Is(e.Err, context.Canceled)
	}
	_, ok := target.(*NetworkError)
	return ok
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(operation, endpoint string, err error) *NetworkError {
	return &NetworkError{
		Operation: operation,
		Endpoint:  endpoint,
		Err:       err,
	}
}

// APIError represents a non-2xx response from the gateway
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// NewAPIErrorWithBody creates a new APIError that keeps the response body for diagnostics
func NewAPIErrorWithBody(statusCode int, endpoint, message, body string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
		Body:       body,
	}
}

// UploadError reports a single file that failed to upload. Batches keep going.
type UploadError struct {
	FileName string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("Error uploading %s: %v", e.FileName, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// NewUploadError creates a new UploadError
func NewUploadError(fileName string, err error) *UploadError {
	return &UploadError{FileName: fileName, Err: err}
}

// ValidationError represents rejected user input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

// Is lets an empty-field ValidationError match ErrEmptyInput
func (e *ValidationError) Is(target error) bool {
	if target == ErrEmptyInput {
		return e.Message == ErrEmptyInput.Error()
	}
	_, ok := target.(*ValidationError)
	return ok
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NewEmptyInputError reports an empty required field
func NewEmptyInputError(field string) *ValidationError {
	return &ValidationError{Field: field, Message: ErrEmptyInput.Error()}
}

// IsNetworkError reports whether err is a transport failure
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsAPIError reports whether err is a non-2xx gateway response
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// GetHTTPStatus returns the status code carried by err, or 0
func GetHTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsAuthError reports whether the gateway rejected the credential
func IsAuthError(err error) bool {
	status := GetHTTPStatus(err)
	return status == 401 || status == 403
}

// IsCancelled reports whether err came from a cancelled context
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}

// IsUploadError reports whether err is a per-file upload failure
func IsUploadError(err error) bool {
	var upErr *UploadError
	return errors.As(err, &upErr)
}
