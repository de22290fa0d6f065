// Package paddle is a typed client for the Paddle Billing API.
//
// A Client is created from an API key and functional options. It is safe for
// concurrent use and groups operations by resource:
//
//	client, err := paddle.New(apiKey,
//		paddle.WithEnvironment(paddle.Production),
//		paddle.WithRetry(paddle.RetryPolicy{MaxAttempts: 3}),
//	)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	resp, err := client.Customers().Get(ctx, "ctm_01h8441jn5pcwrfhwh78jqt8hk")
//
// Customers, Products, Prices and Subscriptions each return a resource client.
// List methods return one page; ListAll walks every page as an iterator.
//
// AsyncClient, from Client.Async or NewAsync, exposes the same operations but
// returns a Future per call. Await a single Future or use AwaitAll to wait for
// several at once.
//
// # Options
//
// WithEnvironment picks Sandbox (the default) or Production, and WithBaseURL
// overrides it. WithTimeout, WithRetry and WithCircuitBreaker tune the
// transport. WithLogger, WithMetrics and WithUserAgent control what the client
// reports. WithHTTPClient and WithRequester replace the transport, mainly for
// tests.
//
// # Errors
//
// Every error matches exactly one of ErrValidation, ErrDeserialization, ErrAPI,
// ErrUnavailable or ErrNotImplemented:
//
//   - ValidationError: parameters were rejected before any request was sent.
//   - DeserializationError: Paddle's response did not have the documented shape.
//   - APIError: Paddle answered with an error status. It also matches the
//     category of that status, such as ErrNotFound or ErrRateLimited.
//   - UnavailableError: no response was obtained, for example on timeout,
//     cancellation or an open circuit breaker.
//
// The Is helpers (IsNotFound, IsUnavailable and so on) wrap errors.Is, and
// AsAPIError extracts the Paddle error code and field errors.
package paddle
