package paddletest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error types Paddle reports in the error envelope.
const (
	TypeRequestError = "request_error"
	TypeAPIError     = "api_error"
)

// Error codes used by the fake API.
const (
	CodeNotFound         = "entity_not_found"
	CodeInvalidToken     = "invalid_token"
	CodeForbidden        = "forbidden"
	CodeBadRequest       = "bad_request"
	CodeInvalidField     = "invalid_field"
	CodeConflict         = "conflict"
	CodeTooManyRequests  = "too_many_requests"
	CodeInternal         = "internal_error"
	CodeInvalidOperation = "invalid_operation"
)

const docsBaseURL = "https://developer.paddle.com/errors/shared/"

// ErrorBody is the envelope Paddle sends with non-success responses.
type ErrorBody struct {
	Error ErrorDetail  `json:"error"`
	Meta  ResponseMeta `json:"meta"`
}

// ErrorDetail describes what went wrong.
type ErrorDetail struct {
	Type             string       `json:"type"`
	Code             string       `json:"code"`
	Detail           string       `json:"detail"`
	DocumentationURL string       `json:"documentation_url"`
	Errors           []FieldError `json:"errors,omitempty"`
}

// FieldError is a per-field validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ResponseMeta is the meta block of every response.
type ResponseMeta struct {
	RequestID  string      `json:"request_id"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination is the pagination block of list responses.
type Pagination struct {
	PerPage        int    `json:"per_page"`
	Next           string `json:"next"`
	HasMore        bool   `json:"has_more"`
	EstimatedTotal int    `json:"estimated_total"`
}

// NewErrorBody builds an error envelope. Server-side failures get the
// api_error type, everything else request_error.
func NewErrorBody(status int, code, detail string, fields ...FieldError) ErrorBody {
	typ := TypeRequestError
	if status >= http.StatusInternalServerError {
		typ = TypeAPIError
	}

	return ErrorBody{
		Error: ErrorDetail{
			Type:             typ,
			Code:             code,
			Detail:           detail,
			DocumentationURL: docsBaseURL + code,
			Errors:           fields,
		},
	}
}

// abortWithError writes an error envelope carrying the request ID.
func abortWithError(c *gin.Context, status int, code, detail string, fields ...FieldError) {
	body := NewErrorBody(status, code, detail, fields...)
	body.Meta.RequestID = requestID(c)

	c.AbortWithStatusJSON(status, body)
}

func notFound(c *gin.Context, entity, id string) {
	abortWithError(c, http.StatusNotFound, CodeNotFound, "Unable to find requested "+entity+" "+id)
}
