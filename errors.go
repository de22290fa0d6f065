package paddle

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for use with errors.Is.
//
// Every failure returned by this package matches exactly one of ErrValidation,
// ErrDeserialization, ErrAPI, ErrUnavailable or ErrNotImplemented. API errors
// additionally match the category of their HTTP status.
var (
	// ErrValidation means request parameters were rejected before any network call.
	ErrValidation = errors.New("invalid request parameters")

	// ErrDeserialization means a response did not have the documented shape.
	ErrDeserialization = errors.New("unexpected response shape")

	// ErrAPI means Paddle answered with a non-success status.
	ErrAPI = errors.New("paddle api error")

	// ErrBadRequest is returned for 400 and 422 responses.
	ErrBadRequest = errors.New("bad request")

	// ErrAuthentication is returned for 401 responses.
	ErrAuthentication = errors.New("authentication failed")

	// ErrAuthorization is returned for 403 responses.
	ErrAuthorization = errors.New("permission denied")

	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned for 409 responses.
	ErrConflict = errors.New("conflict")

	// ErrRateLimited is returned for 429 responses.
	ErrRateLimited = errors.New("rate limited")

	// ErrServer is returned for 5xx responses.
	ErrServer = errors.New("paddle server error")

	// ErrUnavailable means no HTTP response was obtained: network failure,
	// timeout, cancellation or an open circuit breaker. An async call that
	// panicked is reported the same way.
	ErrUnavailable = errors.New("paddle unavailable")

	// ErrNotImplemented is returned by operations that are declared but not wired up.
	ErrNotImplemented = errors.New("not implemented")
)

// ValidationError describes the first request parameter that failed validation.
type ValidationError struct {
	// Param is the wire name of the parameter, dotted for nested fields.
	Param   string
	Rule    string
	Message string
	Value   any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("paddle: invalid parameter %s: %s", e.Param, e.Message)
	}

	return "paddle: invalid parameters: " + e.Message
}

// Unwrap returns the sentinel error for errors.Is support.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// DeserializationError describes a response that could not be turned into a record.
type DeserializationError struct {
	// Resource names the response being decoded, e.g. "customers".
	Resource string
	// Field is the offending path within the envelope, e.g. "data.email".
	Field  string
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *DeserializationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("paddle: decoding %s response: field %s: %s", e.Resource, e.Field, e.Reason)
	}

	return fmt.Sprintf("paddle: decoding %s response: %s", e.Resource, e.Reason)
}

// Unwrap returns the sentinel and the underlying decoder error, if any.
func (e *DeserializationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDeserialization}
	}

	return []error{ErrDeserialization, e.Err}
}

// FieldError is a per-field message from a Paddle error response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is a non-success response from Paddle.
type APIError struct {
	StatusCode       int
	Type             string
	Code             string
	Message          string
	DocumentationURL string
	RequestID        string
	FieldErrors      []FieldError

	// RetryAfter is set for rate-limited responses that carry a Retry-After header.
	RetryAfter time.Duration

	kind error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "paddle: %d", e.StatusCode)
	if e.Code != "" {
		b.WriteString(" " + e.Code)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	for _, fe := range e.FieldErrors {
		fmt.Fprintf(&b, "; %s: %s", fe.Field, fe.Message)
	}
	if e.RequestID != "" {
		fmt.Fprintf(&b, " (request_id %s)", e.RequestID)
	}

	return b.String()
}

// Unwrap returns the status category and ErrAPI.
func (e *APIError) Unwrap() []error {
	if e.kind == nil || e.kind == ErrAPI {
		return []error{ErrAPI}
	}

	return []error{e.kind, ErrAPI}
}

// UnavailableError wraps a failure to obtain any response from Paddle.
type UnavailableError struct {
	Operation string
	Err       error
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	return fmt.Sprintf("paddle: %s: %v", e.Operation, e.Err)
}

// Unwrap returns the sentinel and the transport error, so context.Canceled
// and context.DeadlineExceeded remain matchable.
func (e *UnavailableError) Unwrap() []error {
	return []error{ErrUnavailable, e.Err}
}

// NotImplementedError is returned by operations that are not yet available.
type NotImplementedError struct {
	Operation string
}

// Error implements the error interface.
func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("paddle: %s is not implemented", e.Operation)
}

// Unwrap returns the sentinel error for errors.Is support.
func (e *NotImplementedError) Unwrap() error {
	return ErrNotImplemented
}

// AsAPIError returns the *APIError in err's chain, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

// IsValidation reports whether err is a parameter validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsDeserialization reports whether err is a response shape mismatch.
func IsDeserialization(err error) bool {
	return errors.Is(err, ErrDeserialization)
}

// IsBadRequest reports whether Paddle rejected the request as malformed.
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest)
}

// IsAuthentication reports whether the API key was rejected.
func IsAuthentication(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

// IsAuthorization reports whether the API key lacks a permission.
func IsAuthorization(err error) bool {
	return errors.Is(err, ErrAuthorization)
}

// IsNotFound reports whether the requested entity does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether the request conflicted with the entity's state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsRateLimited reports whether the request was throttled.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsServer reports whether Paddle failed with a 5xx status.
func IsServer(err error) bool {
	return errors.Is(err, ErrServer)
}

// IsUnavailable reports whether Paddle could not be reached.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsNotImplemented reports whether the operation is not available.
func IsNotImplemented(err error) bool {
	return errors.Is(err, ErrNotImplemented)
}
