package erp_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/fivetwenty-io/erp-sdk/pkg/erp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

type recordingLogger struct {
	messages []string
}

func (l *recordingLogger) Debug(msg string, _ map[string]interface{}) { l.messages = append(l.messages, "debug:"+msg) }
func (l *recordingLogger) Info(msg string, _ map[string]interface{})  { l.messages = append(l.messages, "info:"+msg) }
func (l *recordingLogger) Warn(msg string, _ map[string]interface{})  { l.messages = append(l.messages, "warn:"+msg) }
func (l *recordingLogger) Error(msg string, _ map[string]interface{}) { l.messages = append(l.messages, "error:"+msg) }

func TestInterceptorChain_Order(t *testing.T) {
	t.Parallel()

	chain := erp.NewInterceptorChain()
	ctx := context.Background()

	var executionOrder []string

	chain.AddRequestInterceptor(func(ctx context.Context, req *erp.Request) error {
		executionOrder = append(executionOrder, "request-first")

		return nil
	}).AddRequestInterceptor(func(ctx context.Context, req *erp.Request) error {
		executionOrder = append(executionOrder, "request-second")

		return nil
	}).AddResponseInterceptor(func(ctx context.Context, req *erp.Request, resp *erp.Response) error {
		executionOrder = append(executionOrder, "response")

		return nil
	})

	req := &erp.Request{Method: http.MethodGet, Path: "/accounts"}

	require.NoError(t, chain.ExecuteRequestInterceptors(ctx, req))
	require.NoError(t, chain.ExecuteResponseInterceptors(ctx, req, &erp.Response{StatusCode: http.StatusOK}))

	assert.Equal(t, []string{"request-first", "request-second", "response"}, executionOrder)
	assert.Equal(t, 3, chain.Len())
}

func TestInterceptorChain_StopsOnError(t *testing.T) {
	t.Parallel()

	chain := erp.NewInterceptorChain()
	called := false

	chain.AddRequestInterceptor(func(ctx context.Context, req *erp.Request) error {
		return errBoom
	})
	chain.AddRequestInterceptor(func(ctx context.Context, req *erp.Request) error {
		called = true

		return nil
	})

	err := chain.ExecuteRequestInterceptors(context.Background(), &erp.Request{})
	require.ErrorIs(t, err, errBoom)
	assert.False(t, called)
}

func TestInterceptorChain_Nil(t *testing.T) {
	t.Parallel()

	var chain *erp.InterceptorChain

	require.NoError(t, chain.ExecuteRequestInterceptors(context.Background(), &erp.Request{}))
	require.NoError(t, chain.ExecuteResponseInterceptors(context.Background(), &erp.Request{}, &erp.Response{}))
	assert.Equal(t, 0, chain.Len())
}

func TestHeaderInterceptor(t *testing.T) {
	t.Parallel()

	interceptor := erp.HeaderInterceptor(map[string]string{"X-Custom-Header": "custom-value"})
	req := &erp.Request{Method: http.MethodGet, Path: "/accounts"}

	require.NoError(t, interceptor(context.Background(), req))
	assert.Equal(t, "custom-value", req.Headers.Get("X-Custom-Header"))
}

func TestLoggingInterceptors(t *testing.T) {
	t.Parallel()

	logger := &recordingLogger{}
	req := &erp.Request{Method: http.MethodGet, Path: "/accounts"}

	require.NoError(t, erp.LoggingInterceptor(logger)(context.Background(), req))
	require.NoError(t, erp.LoggingResponseInterceptor(logger)(context.Background(), req, &erp.Response{StatusCode: http.StatusOK}))
	require.NoError(t, erp.LoggingResponseInterceptor(logger)(context.Background(), req, &erp.Response{Error: errBoom}))

	assert.Equal(t, []string{"debug:API Request", "debug:API Response", "error:API Response Error"}, logger.messages)
}

func TestRateLimitInterceptor(t *testing.T) {
	t.Parallel()

	_, err := erp.RateLimitInterceptor(0, 1)
	require.ErrorIs(t, err, erp.ErrInvalidRateLimit)

	interceptor, err := erp.RateLimitInterceptor(1, 1)
	require.NoError(t, err)

	require.NoError(t, interceptor(context.Background(), &erp.Request{}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err = interceptor(ctx, &erp.Request{})
	require.Error(t, err, "second call must wait longer than the deadline")
}

func TestPrometheusMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	metrics := erp.NewPrometheusMetrics(reg)
	chain := erp.NewInterceptorChain()
	metrics.Install(chain)

	ctx := context.Background()

	for _, path := range []string{"/accounts", "/accounts/1000", "/accounts/1000/balance"} {
		req := &erp.Request{Method: http.MethodGet, Path: path}
		require.NoError(t, chain.ExecuteRequestInterceptors(ctx, req))
		require.NoError(t, chain.ExecuteResponseInterceptors(ctx, req, &erp.Response{StatusCode: http.StatusOK}))
	}

	req := &erp.Request{Method: http.MethodPost, Path: "/production-lines/L1/start"}
	require.NoError(t, chain.ExecuteRequestInterceptors(ctx, req))
	require.NoError(t, chain.ExecuteResponseInterceptors(ctx, req, &erp.Response{Error: errBoom}))

	expected := `
# HELP erp_client_requests_in_flight Current number of ERP API requests awaiting a response
# TYPE erp_client_requests_in_flight gauge
erp_client_requests_in_flight 0
# HELP erp_client_requests_total Total number of ERP API requests
# TYPE erp_client_requests_total counter
erp_client_requests_total{entity="accounts",method="GET",status="200"} 3
erp_client_requests_total{entity="production-lines",method="POST",status="error"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"erp_client_requests_total", "erp_client_requests_in_flight"))
}

func TestPrometheusMetrics_RejectedRequest(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	metrics := erp.NewPrometheusMetrics(reg)
	chain := erp.NewInterceptorChain()
	metrics.Install(chain)
	chain.AddRequestInterceptor(func(ctx context.Context, req *erp.Request) error {
		return errBoom
	})

	ctx := context.Background()
	req := &erp.Request{Method: http.MethodGet, Path: "/accounts"}

	err := chain.ExecuteRequestInterceptors(ctx, req)
	require.ErrorIs(t, err, errBoom)
	require.NoError(t, chain.ExecuteResponseInterceptors(ctx, req, &erp.Response{Error: err, Rejected: true}))

	expected := `
# HELP erp_client_requests_in_flight Current number of ERP API requests awaiting a response
# TYPE erp_client_requests_in_flight gauge
erp_client_requests_in_flight 0
# HELP erp_client_requests_total Total number of ERP API requests
# TYPE erp_client_requests_total counter
erp_client_requests_total{entity="accounts",method="GET",status="rejected"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"erp_client_requests_total", "erp_client_requests_in_flight"))
}

func TestCircuitBreaker(t *testing.T) {
	t.Parallel()

	breaker := erp.NewCircuitBreaker(&erp.CircuitBreakerConfig{
		Threshold:        2,
		Timeout:          20 * time.Millisecond,
		SuccessThreshold: 1,
	})
	chain := erp.NewInterceptorChain()
	breaker.Install(chain)

	ctx := context.Background()
	req := &erp.Request{Method: http.MethodGet, Path: "/accounts"}

	for range 2 {
		require.NoError(t, chain.ExecuteRequestInterceptors(ctx, req))
		require.NoError(t, chain.ExecuteResponseInterceptors(ctx, req, &erp.Response{StatusCode: http.StatusBadGateway}))
	}

	assert.Equal(t, erp.CircuitOpen, breaker.State())
	require.ErrorIs(t, chain.ExecuteRequestInterceptors(ctx, req), erp.ErrCircuitBreakerOpen)
	require.NoError(t, chain.ExecuteResponseInterceptors(ctx, req, &erp.Response{Error: erp.ErrCircuitBreakerOpen, Rejected: true}))

	time.Sleep(30 * time.Millisecond)

	require.NoError(t, chain.ExecuteRequestInterceptors(ctx, req))
	assert.Equal(t, erp.CircuitHalfOpen, breaker.State())

	require.NoError(t, chain.ExecuteResponseInterceptors(ctx, req, &erp.Response{StatusCode: http.StatusOK}))
	assert.Equal(t, erp.CircuitClosed, breaker.State())
}
