package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fivetwenty-io/erp-sdk/internal/auth"
	"github.com/fivetwenty-io/erp-sdk/internal/constants"
	"github.com/fivetwenty-io/erp-sdk/pkg/erp"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/fivetwenty-io/erp-sdk/internal/http"

// Client is the HTTP transport used by every entity client.
type Client struct {
	baseURL      string
	httpClient   *retryablehttp.Client
	tokenManager auth.TokenManager
	logger       erp.Logger
	debug        bool
	userAgent    string
	tenant       string
	interceptors *erp.InterceptorChain
	tracer       trace.Tracer
}

// Request represents an HTTP request.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// RawQuery is sent verbatim and takes precedence over Query.
	RawQuery string
	Headers  map[string]string
	Body     interface{}
}

// Response represents an HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger erp.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the user agent.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithTenant sends the tenant identifier with every request.
func WithTenant(tenant string) Option {
	return func(c *Client) {
		c.tenant = tenant
	}
}

// WithRetryConfig sets the retry configuration.
func WithRetryConfig(maxRetries int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = maxRetries
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithHTTPTimeout sets the per-attempt timeout.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithInterceptors runs chain around every request.
func WithInterceptors(chain *erp.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// WithTracerProvider sets the tracer provider. The global provider is used
// otherwise.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(c *Client) {
		c.tracer = provider.Tracer(tracerName)
	}
}

// NewClient creates a new HTTP client. A nil tokenManager sends requests
// without an Authorization header.
func NewClient(baseURL string, tokenManager auth.TokenManager, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	retryClient.Logger = nil
	retryClient.CheckRetry = retryablehttp.DefaultRetryPolicy
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   retryClient,
		tokenManager: tokenManager,
		userAgent:    constants.DefaultUserAgent,
		tracer:       otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Do executes an HTTP request. Non-2xx responses are returned together with an
// *erp.ResponseError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "erp.http "+req.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("erp.path", req.Path),
		),
	)
	defer span.End()

	resp, err := c.execute(ctx, req)
	if resp != nil {
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return resp, err
}

func (c *Client) execute(ctx context.Context, req *Request) (*Response, error) {
	var body []byte

	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}

		body = encoded
	}

	rawQuery := req.RawQuery
	if rawQuery == "" && len(req.Query) > 0 {
		rawQuery = req.Query.Encode()
	}

	intercepted := &erp.Request{
		Method:   req.Method,
		Path:     req.Path,
		Query:    rawQuery,
		Headers:  make(http.Header),
		Body:     body,
		Metadata: make(map[string]interface{}),
	}

	for key, value := range req.Headers {
		intercepted.Headers.Set(key, value)
	}

	err := c.interceptors.ExecuteRequestInterceptors(ctx, intercepted)
	if err != nil {
		// Response interceptors also observe rejected requests.
		_ = c.interceptors.ExecuteResponseInterceptors(ctx, intercepted, &erp.Response{Error: err, Rejected: true})

		return nil, err
	}

	resp, sendErr := c.send(ctx, intercepted, true)

	observed := &erp.Response{Error: sendErr}
	if resp != nil {
		observed.StatusCode = resp.StatusCode
		observed.Headers = resp.Headers
		observed.Body = resp.Body
		observed.Error = nil
	}

	err = c.interceptors.ExecuteResponseInterceptors(ctx, intercepted, observed)
	if err != nil && sendErr == nil {
		return resp, err
	}

	if sendErr != nil {
		return resp, sendErr
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return resp, c.parseErrorResponse(resp)
	}

	return resp, nil
}

// send performs one logical request. A 401 refreshes the token and replays
// the request once when replay is set.
func (c *Client) send(ctx context.Context, req *erp.Request, replay bool) (*Response, error) {
	fullURL := c.baseURL + req.Path
	if req.Query != "" {
		fullURL += "?" + req.Query
	}

	var bodyReader interface{}
	if req.Body != nil {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	err = c.setHeaders(ctx, httpReq, req)
	if err != nil {
		return nil, err
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method":     req.Method,
			"url":        fullURL,
			"request_id": httpReq.Header.Get(constants.HeaderRequestID),
		})
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status": resp.StatusCode,
			"size":   len(respBody),
		})
	}

	if resp.StatusCode == http.StatusUnauthorized && replay && c.tokenManager != nil {
		refreshErr := c.tokenManager.RefreshToken(ctx)
		if refreshErr != nil {
			if c.logger != nil {
				c.logger.Warn("token refresh after 401 failed", map[string]interface{}{"error": refreshErr.Error()})
			}

			return resp, nil
		}

		return c.send(ctx, req, false)
	}

	return resp, nil
}

func (c *Client) setHeaders(ctx context.Context, httpReq *retryablehttp.Request, req *erp.Request) error {
	httpReq.Header.Set(constants.HeaderAccept, constants.ContentTypeJSON)
	httpReq.Header.Set(constants.HeaderUserAgent, c.userAgent)
	httpReq.Header.Set(constants.HeaderRequestID, uuid.NewString())

	if req.Body != nil {
		httpReq.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	}

	if c.tenant != "" {
		httpReq.Header.Set(constants.HeaderTenant, c.tenant)
	}

	if c.tokenManager != nil {
		token, err := c.tokenManager.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("getting auth token: %w", err)
		}

		httpReq.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	}

	for key, values := range req.Headers {
		httpReq.Header.Del(key)

		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	return nil
}

func (c *Client) parseErrorResponse(resp *Response) error {
	errResp, err := erp.ParseResponseError(resp.Body)
	if err != nil || len(errResp.Errors) == 0 {
		errResp = &erp.ResponseError{}

		body := string(resp.Body)
		if len(body) > constants.MaxErrorBodyLog {
			body = body[:constants.MaxErrorBodyLog]
		}

		errResp.Body = strings.TrimSpace(body)
	}

	errResp.StatusCode = resp.StatusCode

	if c.logger != nil {
		c.logger.Debug("API error response", map[string]interface{}{
			"status": resp.StatusCode,
			"error":  errResp.Error(),
		})
	}

	return errResp
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// GetRaw performs a GET request with an already encoded query string.
func (c *Client) GetRaw(ctx context.Context, path, rawQuery string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, RawQuery: rawQuery})
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}
