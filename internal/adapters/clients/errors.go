// Package clients provides the instrumented HTTP transport used to reach the Paddle API.
package clients

import "errors"

// Client errors represent failures in the HTTP client layer. They carry no
// Paddle semantics; callers translate them into their own error types.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open and the
	// request was not sent.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrRequestFailed wraps a transport failure of a single attempt.
	ErrRequestFailed = errors.New("request failed")

	// ErrMaxRetriesExceeded is returned after all retry attempts have been exhausted.
	// The last attempt's error is wrapped for context.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)
