package aidbox

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Request is one exchange with the server as hooks see it. Hooks may add
// headers; Metadata carries values from the request hooks to the response
// hooks of the same exchange.
type Request struct {
	Method   string
	Path     string
	Headers  http.Header
	Metadata map[string]interface{}
}

// Response is what came back for a Request. Error is set when no response
// was received at all.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Error      error
}

// RequestInterceptor runs before a request leaves. Returning an error
// cancels the request.
type RequestInterceptor func(ctx context.Context, req *Request) error

// ResponseInterceptor runs once the exchange is over, successful or not.
type ResponseInterceptor func(ctx context.Context, req *Request, resp *Response) error

// InterceptorChain is the ordered set of hooks a client runs around every
// call to the server.
type InterceptorChain struct {
	before []RequestInterceptor
	after  []ResponseInterceptor
}

// NewInterceptorChain returns a chain with no hooks.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{}
}

// AddRequestInterceptor appends a request hook.
func (c *InterceptorChain) AddRequestInterceptor(interceptor RequestInterceptor) {
	c.before = append(c.before, interceptor)
}

// AddResponseInterceptor appends a response hook.
func (c *InterceptorChain) AddResponseInterceptor(interceptor ResponseInterceptor) {
	c.after = append(c.after, interceptor)
}

// Before runs the request hooks in order. The first failure aborts the call.
func (c *InterceptorChain) Before(ctx context.Context, req *Request) error {
	for i, hook := range c.before {
		err := hook(ctx, req)
		if err != nil {
			return fmt.Errorf("request hook %d on %s %s: %w", i, req.Method, req.Path, err)
		}
	}

	return nil
}

// After runs the response hooks in order and stops at the first failure.
func (c *InterceptorChain) After(ctx context.Context, req *Request, resp *Response) error {
	for i, hook := range c.after {
		err := hook(ctx, req, resp)
		if err != nil {
			return fmt.Errorf("response hook %d on %s %s: %w", i, req.Method, req.Path, err)
		}
	}

	return nil
}

// Endpoint labels an exchange by method and resource type. Instance reads
// collapse to "Type/{id}" so every Patient read lands under one label.
func Endpoint(method, path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")

	label := segments[0]
	if len(segments) > 1 {
		label += "/{id}"
	}

	return method + " " + label
}

// LoggingInterceptor logs each outgoing call at debug level.
func LoggingInterceptor(logger Logger) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		logger.Debug("aidbox call", map[string]interface{}{
			"endpoint": Endpoint(req.Method, req.Path),
			"path":     req.Path,
		})

		return nil
	}
}

// LoggingResponseInterceptor logs each answer. Transport failures are logged
// at error level; HTTP error statuses stay at debug since callers get them
// as typed errors.
func LoggingResponseInterceptor(logger Logger) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		fields := map[string]interface{}{
			"endpoint": Endpoint(req.Method, req.Path),
			"status":   resp.StatusCode,
		}

		if resp.Error != nil {
			fields["error"] = resp.Error.Error()
			logger.Error("aidbox call failed", fields)

			return nil
		}

		logger.Debug("aidbox answer", fields)

		return nil
	}
}

// HeaderInterceptor adds the given headers to every call.
func HeaderInterceptor(headers map[string]string) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if req.Headers == nil {
			req.Headers = make(http.Header, len(headers))
		}

		for key, value := range headers {
			req.Headers.Set(key, value)
		}

		return nil
	}
}

// Metrics counts calls to one endpoint.
type Metrics struct {
	TotalRequests   int64
	TotalErrors     int64
	TotalLatency    time.Duration
	AverageLatency  time.Duration
	LastRequestTime time.Time
}

// MetricsCollector keeps Metrics per Endpoint label.
type MetricsCollector struct {
	mu       sync.Mutex
	byLabel  map[string]*Metrics
	onChange func(endpoint string, metrics Metrics)
}

// NewMetricsCollector returns an empty collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{byLabel: make(map[string]*Metrics)}
}

// SetOnChange registers fn to receive a copy of an endpoint's metrics after
// each recorded answer.
func (m *MetricsCollector) SetOnChange(fn func(endpoint string, metrics Metrics)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.onChange = fn
}

// GetMetrics returns a copy of the metrics for endpoint, or nil if it was
// never called.
func (m *MetricsCollector) GetMetrics(endpoint string) *Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	metrics, ok := m.byLabel[endpoint]
	if !ok {
		return nil
	}

	snapshot := *metrics

	return &snapshot
}

func (m *MetricsCollector) record(endpoint string, started time.Time, failed bool) {
	m.mu.Lock()

	metrics, ok := m.byLabel[endpoint]
	if !ok {
		metrics = &Metrics{}
		m.byLabel[endpoint] = metrics
	}

	now := time.Now()

	metrics.TotalRequests++
	metrics.LastRequestTime = now

	if !started.IsZero() {
		metrics.TotalLatency += now.Sub(started)
		metrics.AverageLatency = metrics.TotalLatency / time.Duration(metrics.TotalRequests)
	}

	if failed {
		metrics.TotalErrors++
	}

	snapshot := *metrics
	onChange := m.onChange

	m.mu.Unlock()

	if onChange != nil {
		onChange(endpoint, snapshot)
	}
}

const startedAtKey = "aidbox.started_at"

// MetricsRequestInterceptor notes when the call started.
func MetricsRequestInterceptor(collector *MetricsCollector) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if req.Metadata == nil {
			req.Metadata = make(map[string]interface{}, 1)
		}

		req.Metadata[startedAtKey] = time.Now()

		return nil
	}
}

// MetricsResponseInterceptor records the call in collector. Transport
// failures and statuses of 400 or above count as errors.
func MetricsResponseInterceptor(collector *MetricsCollector) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		started, _ := req.Metadata[startedAtKey].(time.Time)
		failed := resp.Error != nil || resp.StatusCode >= http.StatusBadRequest

		collector.record(Endpoint(req.Method, req.Path), started, failed)

		return nil
	}
}
