// Package paddletest runs an in-memory fake of the Paddle Billing API for
// tests and local runs. It keeps customers, products, prices and
// subscriptions in memory, records every request it receives, and can be
// told to answer a route with a canned reply.
package paddletest

import (
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ccxlv/paddle-go/internal/platform/telemetry"
	"github.com/ccxlv/paddle-go/models"
)

// DefaultAPIKey is the key the fake API accepts unless WithAPIKey is used.
const DefaultAPIKey = "pdl_sdbx_apikey_fake"

// Reply is a canned response registered with Server.Stub.
type Reply struct {
	Status int
	Header http.Header
	// Body is sent verbatim when set.
	Body string
	// Error is sent as an error envelope when Body is empty.
	Error *ErrorBody
	// Times limits how many requests the reply serves. Zero means every request.
	Times int
}

// ErrorReply builds a Reply carrying a Paddle error envelope.
func ErrorReply(status int, code, detail string, fields ...FieldError) Reply {
	body := NewErrorBody(status, code, detail, fields...)
	return Reply{Status: status, Error: &body}
}

// Option configures a Server.
type Option func(*Server)

// WithAPIKey sets the bearer token the fake API accepts.
func WithAPIKey(key string) Option {
	return func(s *Server) { s.apiKey = key }
}

// WithLogger sets the logger for request logs.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithClock fixes the time used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// Server is a fake Paddle Billing API.
type Server struct {
	apiKey string
	logger *slog.Logger
	now    func() time.Time

	engine *gin.Engine
	srv    *httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest
	stubbed  map[string]*Reply

	customers      *Store[models.Customer]
	products       *Store[models.Product]
	prices         *Store[models.Price]
	subscriptions  *Store[models.Subscription]
	creditBalances *Store[[]models.CreditBalance]
}

// NewServer builds a fake API without starting a listener. Use Handler to
// serve it.
func NewServer(opts ...Option) *Server {
	s := &Server{
		apiKey:         DefaultAPIKey,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:            time.Now,
		stubbed:        make(map[string]*Reply),
		customers:      NewStore[models.Customer]("ctm"),
		products:       NewStore[models.Product]("pro"),
		prices:         NewStore[models.Price]("pri"),
		subscriptions:  NewStore[models.Subscription]("sub"),
		creditBalances: NewStore[[]models.CreditBalance]("cbl"),
	}

	for _, opt := range opts {
		opt(s)
	}

	gin.SetMode(gin.TestMode)
	s.engine = gin.New()
	s.routes()

	return s
}

// New starts a fake API on a local port.
func New(opts ...Option) *Server {
	s := NewServer(opts...)
	s.srv = httptest.NewServer(s.engine)

	return s
}

// Start starts a fake API that is closed when t ends.
func Start(t testing.TB, opts ...Option) *Server {
	t.Helper()

	s := New(opts...)
	t.Cleanup(s.Close)

	return s
}

// Close stops the listener started by New.
func (s *Server) Close() {
	if s.srv != nil {
		s.srv.Close()
	}
}

// URL is the base URL of the running fake API.
func (s *Server) URL() string {
	if s.srv == nil {
		return ""
	}

	return s.srv.URL
}

// Handler serves the fake API.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// APIKey is the bearer token the fake API accepts.
func (s *Server) APIKey() string {
	return s.apiKey
}

// routes wires middleware and endpoints. Order matters: recovery first, then
// request ID so every later log line and error body carries it.
func (s *Server) routes() {
	s.engine.Use(recovery(s.logger), requestIDMiddleware(s.logger))
	s.engine.Use(telemetry.ServerMiddleware("paddle-fake")...)
	s.engine.Use(requestLogging(), s.record(), requireBearer(s.apiKey), s.stubs())

	customers := s.engine.Group("/customers")
	customers.GET("", s.listCustomers)
	customers.POST("", s.createCustomer)
	customers.GET("/:id", s.getCustomer)
	customers.PATCH("/:id", s.updateCustomer)
	customers.GET("/:id/credit-balances", s.listCreditBalances)
	customers.POST("/:id/auth-token", s.generateAuthToken)
	customers.POST("/:id/portal-sessions", s.createPortalSession)

	products := s.engine.Group("/products")
	products.GET("", s.listProducts)
	products.POST("", s.createProduct)
	products.GET("/:id", s.getProduct)
	products.PATCH("/:id", s.updateProduct)

	prices := s.engine.Group("/prices")
	prices.GET("", s.listPrices)
	prices.POST("", s.createPrice)

	subscriptions := s.engine.Group("/subscriptions")
	subscriptions.GET("", s.listSubscriptions)
	subscriptions.GET("/:id", s.getSubscription)
	subscriptions.POST("/:id/pause", s.pauseSubscription)
	subscriptions.POST("/:id/resume", s.resumeSubscription)
	subscriptions.POST("/:id/cancel", s.cancelSubscription)

	s.engine.NoRoute(func(c *gin.Context) {
		abortWithError(c, http.StatusNotFound, CodeNotFound, "Route "+c.Request.Method+" "+c.Request.URL.Path+" does not exist")
	})
}

// Stub makes requests to method and path answer with reply. A later Stub for
// the same route replaces the earlier one.
func (s *Server) Stub(method, path string, reply Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stubbed[method+" "+path] = &reply
}

// ClearStubs removes every registered reply.
func (s *Server) ClearStubs() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.stubbed)
}

func (s *Server) takeStub(method, path string) (Reply, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := method + " " + path
	reply, ok := s.stubbed[key]
	if !ok {
		return Reply{}, false
	}

	if reply.Times > 0 {
		reply.Times--
		if reply.Times == 0 {
			delete(s.stubbed, key)
		}
	}

	return *reply, true
}

// Requests returns every request received so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.requests)
}

// LastRequest returns the most recent request.
func (s *Server) LastRequest() (RecordedRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.requests) == 0 {
		return RecordedRequest{}, false
	}

	return s.requests[len(s.requests)-1], true
}

// RequestsTo returns the requests whose path starts with prefix.
func (s *Server) RequestsTo(method, prefix string) []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []RecordedRequest
	for _, r := range s.requests {
		if r.Method == method && strings.HasPrefix(r.Path, prefix) {
			out = append(out, r)
		}
	}

	return out
}

// Reset forgets stored entities, recorded requests and stubs.
func (s *Server) Reset() {
	s.customers.Reset()
	s.products.Reset()
	s.prices.Reset()
	s.subscriptions.Reset()
	s.creditBalances.Reset()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = nil
	clear(s.stubbed)
}

func (s *Server) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

// dataBody is the success envelope.
type dataBody struct {
	Data any          `json:"data"`
	Meta ResponseMeta `json:"meta"`
}

func (s *Server) respond(c *gin.Context, status int, data any) {
	c.JSON(status, dataBody{Data: data, Meta: ResponseMeta{RequestID: requestID(c)}})
}

// respondPage writes a list envelope. next points at the following page
// whenever the page is not empty, as Paddle does.
func respondPage[T any](c *gin.Context, page Page[T], q listQuery) {
	next := ""
	if page.Cursor != "" {
		query := maps.Clone(c.Request.URL.Query())
		query.Set("after", page.Cursor)
		next = "http://" + c.Request.Host + c.Request.URL.Path + "?" + query.Encode()
	}

	c.JSON(http.StatusOK, dataBody{
		Data: page.Data,
		Meta: ResponseMeta{
			RequestID: requestID(c),
			Pagination: &Pagination{
				PerPage:        q.PerPage,
				Next:           next,
				HasMore:        page.HasMore,
				EstimatedTotal: page.Total,
			},
		},
	})
}

// ordered sorts items by ID in the direction order_by asks for.
func ordered[T any](items []T, id func(T) string, orderBy string) []T {
	slices.SortStableFunc(items, func(a, b T) int { return strings.Compare(id(a), id(b)) })
	if strings.HasSuffix(orderBy, "[DESC]") {
		slices.Reverse(items)
	}

	return items
}
