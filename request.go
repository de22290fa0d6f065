package paddle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/ccxlv/paddle-go/internal/adapters/clients"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 10 << 20

// Request is one Paddle API call as seen by a Requester.
type Request struct {
	Method string
	// Path is relative to the base URL, e.g. "/customers/ctm_01".
	Path  string
	Query url.Values
	// Body is encoded as JSON when non-nil.
	Body any
}

// Requester performs a Paddle API call.
//
// On a 2xx response Do returns the raw response body. Otherwise it returns an
// *APIError for non-success statuses or an *UnavailableError when no response
// was obtained. Resource clients depend only on this interface, so a fake can
// stand in for the network in tests.
type Requester interface {
	Do(ctx context.Context, req *Request) ([]byte, error)
}

// transportRequester is the Requester backed by the instrumented HTTP client.
type transportRequester struct {
	client *clients.Client
}

func (r *transportRequester) Do(ctx context.Context, req *Request) ([]byte, error) {
	operation := req.Method + " " + req.Path

	var body []byte
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &ValidationError{Rule: "json", Message: fmt.Sprintf("encoding request body: %v", err)}
		}
		body = encoded
	}

	resp, err := r.client.Send(ctx, req.Method, req.Path, req.Query, body)
	if err != nil {
		return nil, translateTransportError(operation, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, translateTransportError(operation, fmt.Errorf("reading response body: %w", err))
	}
	if len(payload) > maxResponseBytes {
		return nil, &DeserializationError{
			Resource: operation,
			Reason:   fmt.Sprintf("response body exceeds %d bytes", maxResponseBytes),
		}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, translateError(resp.StatusCode, resp.Header, payload, sentRequestID(resp))
	}

	return payload, nil
}

// sentRequestID returns the X-Request-ID the transport attached to the request.
func sentRequestID(resp *http.Response) string {
	if resp.Request == nil {
		return ""
	}

	return resp.Request.Header.Get(clients.HeaderRequestID)
}
