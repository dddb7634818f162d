// Package http dispatches requests to the etcd v2 API and classifies the
// responses.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/fivetwenty-io/etcdv2-client/internal/constants"
	"github.com/fivetwenty-io/etcdv2-client/pkg/etcd"
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// queryPlacement says where the encoded query arguments travel.
type queryPlacement int

const (
	queryInURL queryPlacement = iota
	queryInBody
)

// Writes carry form-encoded payloads; reads and deletes carry query strings.
var queryPlacements = map[string]queryPlacement{
	http.MethodGet:    queryInURL,
	http.MethodDelete: queryInURL,
	http.MethodPut:    queryInBody,
	http.MethodPost:   queryInBody,
}

// Client dispatches requests on one connection.
type Client struct {
	conn       *etcd.Connection
	httpClient *retryablehttp.Client
	logger     Logger
	debug      bool
	userAgent  string
	limiter    *rate.Limiter
	tracer     trace.Tracer
}

// Request describes a single call. Path is relative to the API version root.
type Request struct {
	Method  string
	Path    string
	Query   []etcd.QueryArg
	Headers map[string]string
}

// Response is a received response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
		c.httpClient.Logger = &retryLogger{logger: logger}
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig switches retries on for transient failures.
func WithRetryConfig(maxRetries int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = maxRetries
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithRateLimit limits outbound requests to rps per second with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			return
		}

		if burst < 1 {
			burst = 1
		}

		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithTracer sets the tracer used for request spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// NewClient creates a dispatcher for conn. Retries are off by default.
func NewClient(conn *etcd.Connection, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = newHTTPClient(conn.Options())
	retryClient.RetryMax = 0
	retryClient.Logger = nil
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		conn:       conn,
		httpClient: retryClient,
		userAgent:  constants.DefaultUserAgent,
		tracer:     otel.Tracer(constants.TracerName),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

func newHTTPClient(opts etcd.ConnectionOptions) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DisableKeepAlives = !opts.KeepAlive

	// Redirects are returned to the caller like any other non-2xx status.
	client := &http.Client{
		Transport: transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	if opts.Timeout > 0 {
		client.Timeout = opts.Timeout
	}

	return client
}

// Connection returns the connection the client dispatches on.
func (c *Client) Connection() *etcd.Connection {
	return c.conn
}

// URL returns the full URL of path below the API version root. Each path
// segment is escaped, so keys may contain characters such as '#' or '?'.
func (c *Client) URL(path string) string {
	return c.conn.BaseURL() + "/" + constants.APIVersion + "/" + EscapePath(strings.TrimLeft(path, "/"))
}

// EscapePath escapes every segment of path, keeping the '/' separators.
func EscapePath(path string) string {
	segments := strings.Split(path, "/")
	for idx, segment := range segments {
		segments[idx] = url.PathEscape(segment)
	}

	return strings.Join(segments, "/")
}

// EncodeQuery form-encodes args, keeping their order.
func EncodeQuery(args []etcd.QueryArg) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		parts = append(parts, url.QueryEscape(arg.Name)+"="+url.QueryEscape(arg.Value))
	}

	return strings.Join(parts, "&")
}

// Do executes the request. Any 2xx status is a success. Every received body,
// successful or not, is recorded on the connection; a transport failure leaves
// the recorded body unchanged. On a non-2xx status both the response and an
// *etcd.APIError or *etcd.HTTPError are returned.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	placement, ok := queryPlacements[req.Method]
	if !ok {
		return nil, fmt.Errorf("%w: %s", constants.ErrUnsupportedMethod, req.Method)
	}

	target := c.URL(req.Path)

	var body interface{}

	if query := EncodeQuery(req.Query); query != "" {
		switch placement {
		case queryInBody:
			body = []byte(query)
		case queryInURL:
			target += "?" + query
		}
	}

	ctx, span := c.tracer.Start(ctx, "etcd "+req.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", target),
		),
	)
	defer span.End()

	if c.limiter != nil {
		err := c.limiter.Wait(ctx)
		if err != nil {
			return nil, c.transportError(span, fmt.Errorf("%w: %w", constants.ErrRateLimited, err))
		}
	}

	httpReq, err := c.newRequest(ctx, req, target, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")

		return nil, err
	}

	c.logRequest(req.Method, target)

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if httpResp != nil {
			_ = httpResp.Body.Close()
		}

		return nil, c.transportError(span, err)
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, c.transportError(span, fmt.Errorf("reading response body: %w", err))
	}

	c.conn.RecordResponse(string(data))

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       data,
	}

	c.logResponse(req.Method, target, resp.StatusCode, time.Since(start))
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))

		if apiErr := etcd.ParseAPIError(resp.StatusCode, data); apiErr != nil {
			return resp, apiErr
		}

		return resp, &etcd.HTTPError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	return resp, nil
}

// newRequest builds the outgoing request for req against target.
func (c *Client) newRequest(ctx context.Context, req *Request, target string, body interface{}) (*retryablehttp.Request, error) {
	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrInvalidRequest, err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	if body != nil {
		httpReq.Header.Set("Content-Type", constants.FormContentType)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	return httpReq, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query []etcd.QueryArg) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Put performs a PUT request; query travels in the body.
func (c *Client) Put(ctx context.Context, path string, query []etcd.QueryArg) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Query: query})
}

// Post performs a POST request; query travels in the body.
func (c *Client) Post(ctx context.Context, path string, query []etcd.QueryArg) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Query: query})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, query []etcd.QueryArg) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path, Query: query})
}

func (c *Client) transportError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, "transport error")

	if c.logger != nil {
		c.logger.Error("HTTP Transport Error", map[string]interface{}{
			"addr":  c.conn.Addr(),
			"error": err.Error(),
		})
	}

	return &etcd.TransportError{Addr: c.conn.Addr(), Err: err}
}

func (c *Client) logRequest(method, target string) {
	if !c.debug || c.logger == nil {
		return
	}

	c.logger.Debug("HTTP Request", map[string]interface{}{
		"method": method,
		"url":    target,
	})
}

func (c *Client) logResponse(method, target string, statusCode int, duration time.Duration) {
	if !c.debug || c.logger == nil {
		return
	}

	c.logger.Debug("HTTP Response", map[string]interface{}{
		"method":      method,
		"url":         target,
		"status_code": statusCode,
		"duration":    duration.String(),
	})
}

// retryLogger forwards retryablehttp warnings and errors. Per-request debug
// output comes from Client itself.
type retryLogger struct {
	logger Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, toFields(keysAndValues))
}

func (l *retryLogger) Info(string, ...interface{}) {}

func (l *retryLogger) Debug(string, ...interface{}) {}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, toFields(keysAndValues))
}

func toFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)
	for idx := 0; idx+1 < len(keysAndValues); idx += 2 {
		fields[fmt.Sprint(keysAndValues[idx])] = keysAndValues[idx+1]
	}

	return fields
}
