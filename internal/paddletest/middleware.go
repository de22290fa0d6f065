package paddletest

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ccxlv/paddle-go/internal/platform/logging"
)

const (
	headerRequestID = "X-Request-ID"

	contextKeyRequestID = "request_id"
)

// RecordedRequest is a request the fake API received.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// recovery turns a handler panic into a 500 error envelope.
func recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					slog.Any("error", r),
					slog.String("stack", string(debug.Stack())),
					slog.String("path", c.Request.URL.Path),
					slog.String("method", c.Request.Method),
				)

				if !c.Writer.Written() {
					abortWithError(c, http.StatusInternalServerError, CodeInternal, "An internal error occurred")
				} else {
					c.Abort()
				}
			}
		}()

		c.Next()
	}
}

// requestIDMiddleware echoes the caller's X-Request-ID or generates one, and
// tags the request logger with it.
func requestIDMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(contextKeyRequestID, id)
		c.Header(headerRequestID, id)

		ctx := logging.WithRequestID(logging.WithContext(c.Request.Context(), logger), id)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func requestID(c *gin.Context) string {
	if id := c.GetString(contextKeyRequestID); id != "" {
		return id
	}

	return uuid.NewString()
}

// requestLogging logs each completed request at a level matching its status.
func requestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + c.Request.URL.RawQuery
		}

		c.Next()

		status := c.Writer.Status()

		level := slog.LevelDebug
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		} else if status >= http.StatusBadRequest {
			level = slog.LevelWarn
		}

		logging.FromContext(c.Request.Context()).Log(c.Request.Context(), level, "request completed",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
		)
	}
}

// record stores a copy of every request before it is handled.
func (s *Server) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method: c.Request.Method,
			Path:   c.Request.URL.Path,
			Query:  c.Request.URL.Query(),
			Header: c.Request.Header.Clone(),
			Body:   body,
		})
		s.mu.Unlock()

		c.Next()
	}
}

// requireBearer rejects requests without "Authorization: Bearer <apiKey>".
func requireBearer(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || token != apiKey {
			abortWithError(c, http.StatusUnauthorized, CodeInvalidToken,
				"Authentication token passed is invalid or expired")
			return
		}

		c.Next()
	}
}

// stubs serves a registered Reply instead of the real handler.
func (s *Server) stubs() gin.HandlerFunc {
	return func(c *gin.Context) {
		reply, ok := s.takeStub(c.Request.Method, c.Request.URL.Path)
		if !ok {
			c.Next()
			return
		}

		for name, values := range reply.Header {
			for _, v := range values {
				c.Writer.Header().Add(name, v)
			}
		}

		status := reply.Status
		if status == 0 {
			status = http.StatusOK
		}

		switch {
		case reply.Body != "":
			c.Data(status, "application/json", []byte(reply.Body))
		case reply.Error != nil:
			body := *reply.Error
			body.Meta.RequestID = requestID(c)
			c.JSON(status, body)
		default:
			c.Status(status)
		}

		c.Abort()
	}
}
