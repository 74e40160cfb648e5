// Package backend is the HTTP client for the procurement backend API.
// Every endpoint answers with the same JSON envelope; the client owns the
// envelope handling and hands per-endpoint payloads back as raw JSON.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/otelhelper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const defaultTimeoutSeconds = 30

// Envelope is the backend's uniform response wrapper. Data stays opaque;
// only the error flag and message are interpreted here.
type Envelope struct {
	StatusCode int             `json:"statusCode"`
	IsError    bool            `json:"isError"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

// RetryConfig bounds how often a failed call is retried.
type RetryConfig struct {
	Attempts int
	Delay    time.Duration
}

// Client performs envelope-aware GET/POST calls against the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      RetryConfig
	tracer     trace.Tracer
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithRetry overrides the default single-attempt behaviour.
func WithRetry(retry RetryConfig) Option {
	return func(c *Client) {
		if retry.Attempts > 0 {
			c.retry = retry
		}
	}
}

// WithTracer attaches a tracer; spans are emitted per call.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(baseURL string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeoutSeconds * time.Second},
		retry:      RetryConfig{Attempts: 1},
		tracer:     noop.NewTracerProvider().Tracer("backend"),
		logger:     logger.With("module", "backend_client"),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Get performs a GET call and returns the envelope's data payload.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	return c.do(ctx, http.MethodGet, path, target, nil)
}

// Post performs a POST call with a JSON body and returns the envelope's
// data payload.
func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}

	return c.do(ctx, http.MethodPost, path, c.baseURL+path, payload)
}

func (c *Client) do(ctx context.Context, method, path, target string, body []byte) (json.RawMessage, error) {
	ctx, span := otelhelper.StartSpan(ctx, c.tracer, "backend.call",
		attribute.String(otelhelper.BackendMethodKey, method),
		attribute.String(otelhelper.BackendPathKey, path),
	)
	defer span.End()

	var lastErr error

	for attempt := 1; attempt <= c.retry.Attempts; attempt++ {
		if attempt > 1 {
			c.logger.InfoContext(ctx, "Retrying backend call",
				"method", method, "path", path,
				"attempt", attempt, "of", c.retry.Attempts)

			select {
			case <-time.After(c.retry.Delay):
			case <-ctx.Done():
				lastErr = ctx.Err()

				return nil, c.fail(span, method, path, lastErr)
			}
		}

		data, err := c.doOnce(ctx, method, target, body)
		if err == nil {
			return data, nil
		}

		lastErr = err

		// Envelope-level rejections carry the backend's message and are
		// not transient; retrying them only repeats the refusal.
		var fetchErr *FetchError
		if AsFetchError(err, &fetchErr) && fetchErr.Envelope {
			break
		}
	}

	return nil, c.fail(span, method, path, lastErr)
}

func (c *Client) doOnce(ctx context.Context, method, target string, body []byte) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, &FetchError{Op: method, Target: target, Err: err}
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Op: method, Target: target, Err: err}
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.WarnContext(ctx, "Failed to close response body", "error", closeErr)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Op: method, Target: target, Err: err}
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, &FetchError{
			Op:      method,
			Target:  target,
			Message: fmt.Sprintf("server error (status %d)", resp.StatusCode),
			Err:     ErrServerError,
		}
	}

	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, &FetchError{Op: method, Target: target, Message: "malformed envelope", Err: err}
	}

	if envelope.IsError {
		return nil, &FetchError{
			Op:       method,
			Target:   target,
			Message:  envelope.Message,
			Envelope: true,
			Err:      ErrBackendRejected,
		}
	}

	return envelope.Data, nil
}

func (c *Client) fail(span trace.Span, method, path string, err error) error {
	otelhelper.SetError(span, err,
		attribute.String(otelhelper.BackendMethodKey, method),
		attribute.String(otelhelper.BackendPathKey, path),
	)

	c.logger.Error("Backend call failed", "method", method, "path", path, "error", err)

	return err
}
