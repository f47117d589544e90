// Package http is the transport collaborator: it performs HTTP verbs
// against API paths and hands back parsed status/body pairs. Auth headers,
// retries for transient failures, and debug logging all live here; the
// resource clients above it only ever see the normalized Response shape.
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

	"github.com/dashkit-io/gdash/internal/constants"
	"github.com/dashkit-io/gdash/pkg/grafana"
	"github.com/hashicorp/go-retryablehttp"
)

// Logger interface for HTTP client logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Request represents an HTTP request to the API.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Headers map[string]string
	Body    interface{}
}

// Response represents an HTTP response from the API.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Client performs HTTP requests against the API base URL.
type Client struct {
	baseURL   string
	retryable *retryablehttp.Client
	apiKey    string
	username  string
	password  string
	userAgent string
	logger    Logger
	debug     bool
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey authenticates requests with a Bearer token.
func WithAPIKey(token string) Option {
	return func(c *Client) {
		c.apiKey = token
	}
}

// WithBasicAuth authenticates requests with HTTP basic auth. Ignored when
// an API key is also configured.
func WithBasicAuth(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithLogger sets the logger used for debug request/response logging.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging through the configured logger.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithRetryConfig tunes retries for transient failures.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retryable.RetryMax = retryMax
		c.retryable.RetryWaitMin = waitMin
		c.retryable.RetryWaitMax = waitMax
	}
}

// NewClient creates a transport client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	retryable := retryablehttp.NewClient()
	retryable.RetryMax = constants.DefaultRetryMax
	retryable.RetryWaitMax = constants.DefaultRetryWaitMax
	retryable.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	retryable.Logger = nil
	// Keep the last response (and its status) when retries are exhausted so
	// callers still see the normalized status/message shape.
	retryable.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		retryable: retryable,
		userAgent: constants.DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Do executes the request. Non-2xx responses return both the Response and
// a *grafana.APIError carrying the server's status and message.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	fullURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	var body io.Reader

	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}

		body = bytes.NewReader(data)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	switch {
	case c.apiKey != "":
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	case c.username != "":
		httpReq.SetBasicAuth(c.username, c.password)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
		})
	}

	httpResp, err := c.retryable.Do(httpReq)
	if err != nil && httpResp == nil {
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
			"size":   len(resp.Body),
		})
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return resp, parseAPIError(resp)
	}

	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// parseAPIError maps a non-2xx response onto the normalized status/message
// shape. The server's own message is preferred; a body that cannot be
// parsed falls back to the HTTP status text.
func parseAPIError(resp *Response) error {
	apiErr := &grafana.APIError{
		Status:  resp.StatusCode,
		Message: http.StatusText(resp.StatusCode),
	}

	var parsed struct {
		Message string `json:"message"`
	}

	if err := json.Unmarshal(resp.Body, &parsed); err == nil && parsed.Message != "" {
		apiErr.Message = parsed.Message
	}

	return apiErr
}
