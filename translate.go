package paddle

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// errorEnvelope is the body Paddle sends with non-success responses.
type errorEnvelope struct {
	Error struct {
		Type             string       `json:"type"`
		Code             string       `json:"code"`
		Detail           string       `json:"detail"`
		DocumentationURL string       `json:"documentation_url"`
		Errors           []FieldError `json:"errors"`
	} `json:"error"`
	Meta struct {
		RequestID string `json:"request_id"`
	} `json:"meta"`
}

// translateError turns a non-success response into an *APIError.
// The body is parsed best-effort; a missing or non-JSON body still yields an
// error of the right category with the status text as message.
// requestID is the X-Request-ID that was sent, used when the body carries none.
func translateError(status int, header http.Header, body []byte, requestID string) *APIError {
	apiErr := &APIError{
		StatusCode: status,
		Message:    http.StatusText(status),
		RequestID:  requestID,
		kind:       categoryFor(status),
	}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		apiErr.Type = env.Error.Type
		apiErr.Code = env.Error.Code
		apiErr.DocumentationURL = env.Error.DocumentationURL
		apiErr.FieldErrors = env.Error.Errors

		if env.Error.Detail != "" {
			apiErr.Message = env.Error.Detail
		}
		if env.Meta.RequestID != "" {
			apiErr.RequestID = env.Meta.RequestID
		}
	} else if text := strings.TrimSpace(string(body)); text != "" && len(text) <= maxPlainErrorLen {
		apiErr.Message = text
	}

	if status == http.StatusTooManyRequests {
		apiErr.RetryAfter = parseRetryAfter(header.Get("Retry-After"), time.Now())
	}

	return apiErr
}

// maxPlainErrorLen bounds how much of a non-JSON error body becomes the message.
const maxPlainErrorLen = 512

// categoryFor is the single place where HTTP status codes map to error categories.
func categoryFor(status int) error {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return ErrBadRequest
	case status == http.StatusUnauthorized:
		return ErrAuthentication
	case status == http.StatusForbidden:
		return ErrAuthorization
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusConflict:
		return ErrConflict
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status >= http.StatusInternalServerError:
		return ErrServer
	default:
		return ErrAPI
	}
}

// parseRetryAfter accepts delay-seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time) time.Duration {
	if v == "" {
		return 0
	}

	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}

	if at, err := http.ParseTime(v); err == nil && at.After(now) {
		return at.Sub(now)
	}

	return 0
}

// translateTransportError wraps a failure to get any response.
func translateTransportError(operation string, err error) error {
	return &UnavailableError{Operation: operation, Err: err}
}
