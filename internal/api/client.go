// Package api is the HTTP client for the worksheet backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/pavelanni/worksheet/internal/format"
	"github.com/pavelanni/worksheet/internal/model"
)

const requestIDHeader = "X-Request-ID"

// Client performs JSON calls against the worksheet backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *Metrics
	tracer     trace.Tracer
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout. Zero keeps the transport default.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a client for the backend at baseURL, e.g. "http://localhost:8000/api".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		tracer:     defaultTracer(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Call sends a request to path and decodes a successful response into out.
// A non-nil body is JSON-encoded, except *Multipart bodies which are sent as-is
// with their own content type. out may be nil to discard the response body.
func (c *Client) Call(ctx context.Context, method, path string, body, out any) error {
	if mp, ok := body.(*Multipart); ok {
		return c.Upload(ctx, path, mp, out)
	}

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return c.fail(&RequestFailure{Method: method, Path: path, Err: fmt.Errorf("marshal request: %w", err)})
		}
		r = bytes.NewReader(data)
	}
	return c.do(ctx, method, path, r, "application/json", out)
}

// Upload sends a pre-built multipart payload to path with POST.
func (c *Client) Upload(ctx context.Context, path string, mp *Multipart, out any) error {
	if mp == nil {
		return c.fail(&RequestFailure{Method: http.MethodPost, Path: path, Err: errors.New("nil multipart payload")})
	}
	return c.do(ctx, http.MethodPost, path, mp.Body, mp.ContentType, out)
}

// HealthCheck probes GET /health. It never fails: any error is reported as
// a status of "error" with a non-empty message.
func (c *Client) HealthCheck(ctx context.Context) model.HealthStatus {
	var status model.HealthStatus
	if err := c.Call(ctx, http.MethodGet, "/health", nil, &status); err != nil {
		msg := err.Error()
		if msg == "" {
			msg = "health check failed"
		}
		return model.HealthStatus{Status: "error", Message: msg}
	}
	if status.Status == "" {
		status.Status = "ok"
	}
	return status
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) (err error) {
	requestID := format.NewID()
	ctx, span := c.tracer.Start(ctx, method+" "+endpoint(path),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
			attribute.String("worksheet.request_id", requestID),
		))
	start := time.Now()
	status := 0
	defer func() {
		c.metrics.observe(method, path, status, time.Since(start))
		if status != 0 {
			span.SetAttributes(attribute.Int("http.response.status_code", status))
		}
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return c.fail(&RequestFailure{Method: method, Path: path, Err: fmt.Errorf("create request: %w", err)})
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.fail(&RequestFailure{Method: method, Path: path, Err: err})
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(&RequestFailure{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Err:        fmt.Errorf("read response: %w", err),
		})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.fail(&RequestFailure{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    errorMessage(respBody),
		})
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return c.fail(&RequestFailure{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Err:        fmt.Errorf("decode response: %w", err),
		})
	}
	slog.Debug("API request", "method", method, "path", path, "status", resp.StatusCode)
	return nil
}

func (c *Client) fail(f *RequestFailure) error {
	slog.Error("API request failed", "method", f.Method, "path", f.Path, "error", f)
	return f
}
