// Package client is the typed HTTP client of the wingman API. Streaming
// calls hand the response body to the stream consumer once the status has
// been checked; callers own the accumulation of chunks.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/papercomputeco/wingman/pkg/dating"
	"github.com/papercomputeco/wingman/pkg/stream"
)

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 * 1024

// APIError is a non-2xx answer of the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Client talks to a wingman API server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	streamOpts []stream.Option
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithStreamOptions configures the consumer of every streamed call.
func WithStreamOptions(opts ...stream.Option) Option {
	return func(c *Client) {
		c.streamOpts = append(c.streamOpts, opts...)
	}
}

// WithLogger sets the logger for requests and the stream consumer.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a Client for the API at baseURL (e.g. "http://localhost:8000").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API address the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) consumer() *stream.Consumer {
	opts := append([]stream.Option{stream.WithLogger(c.logger)}, c.streamOpts...)
	return stream.New(opts...)
}

// do sends a request and returns the response once its status is 2xx.
// The caller closes the body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, accept string) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", accept)

	c.logger.Debug("api request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp, nil
}

// call runs a JSON request and decodes the JSON answer into out.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	resp, err := c.do(ctx, method, path, query, body, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// streamCall posts body and feeds the SSE answer to the consumer.
func (c *Client) streamCall(ctx context.Context, path string, body any, h stream.Handlers) (*stream.Result, error) {
	resp, err := c.do(ctx, http.MethodPost, path, nil, body, "text/event-stream")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return c.consumer().Consume(ctx, resp.Body, h)
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body dating.ErrorResponse
	msg := ""
	if json.Unmarshal(raw, &body) == nil {
		msg = body.Error
	}
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

func userQuery(userID int64) url.Values {
	if userID == 0 {
		return nil
	}
	return url.Values{"user_id": {strconv.FormatInt(userID, 10)}}
}
