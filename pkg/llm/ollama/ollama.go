// Package ollama implements llm.Generator against Ollama's /api/generate.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/papercomputeco/wingman/pkg/llm"
)

const (
	// DefaultModel is the model used when none is configured.
	DefaultModel = "llama3.2:1b"

	// DefaultBaseURL is the default Ollama API URL.
	DefaultBaseURL = "http://localhost:11434"

	// DefaultTimeout bounds the wait for Ollama to start answering.
	DefaultTimeout = 30 * time.Second

	maxLineSize = 1024 * 1024
)

// Config holds configuration for the Ollama generator.
type Config struct {
	// BaseURL is the Ollama API URL. Defaults to DefaultBaseURL if empty.
	BaseURL string

	// Model is the generation model. Defaults to DefaultModel if empty.
	Model string

	// Timeout bounds how long to wait for response headers. Once tokens
	// flow there is no overall limit. Defaults to DefaultTimeout if zero.
	Timeout time.Duration
}

// Generator streams completions from an Ollama server.
type Generator struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// New creates a Generator.
func New(cfg Config) *Generator {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout

	return &Generator{
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Transport: transport},
	}
}

func (g *Generator) Name() string {
	return "ollama"
}

// Generate implements llm.Generator.
func (g *Generator) Generate(ctx context.Context, req *llm.GenerateRequest, onToken llm.TokenFunc) (*llm.GenerateResponse, error) {
	model := req.Model
	if model == "" {
		model = g.model
	}

	body, err := json.Marshal(generateRequest{
		Model:  model,
		Prompt: req.Prompt,
		System: req.System,
		Stream: true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, classify(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	result := &llm.GenerateResponse{Model: model}
	var text strings.Builder

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var chunk generateChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			return nil, &llm.Error{
				Status:  http.StatusBadGateway,
				Message: fmt.Sprintf("Invalid response from Ollama: %v", err),
				Err:     err,
			}
		}

		if chunk.Error != "" {
			return nil, &llm.Error{Status: http.StatusBadGateway, Message: chunk.Error}
		}

		if chunk.Response != "" {
			text.WriteString(chunk.Response)
			if onToken != nil {
				if err := onToken(chunk.Response); err != nil {
					return nil, err
				}
			}
		}

		if chunk.Done {
			result.Model = chunk.Model
			result.CreatedAt = chunk.CreatedAt
			result.Text = text.String()
			result.StopReason = chunk.DoneReason
			if chunk.PromptEvalCount > 0 || chunk.EvalCount > 0 || chunk.TotalDuration > 0 {
				result.Usage = &llm.Usage{
					PromptTokens:     chunk.PromptEvalCount,
					CompletionTokens: chunk.EvalCount,
					TotalTokens:      chunk.PromptEvalCount + chunk.EvalCount,
					TotalDurationNs:  chunk.TotalDuration,
					PromptDurationNs: chunk.PromptEvalDuration,
				}
			}
			return result, nil
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, classify(ctx, err)
	}

	return nil, &llm.Error{
		Status:  http.StatusBadGateway,
		Message: "Ollama closed the stream before finishing",
	}
}

// Close releases idle connections.
func (g *Generator) Close() error {
	g.httpClient.CloseIdleConnections()
	return nil
}

// classify maps transport failures to the user-facing errors of the API.
// Cancellation by the caller is returned as is.
func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &llm.Error{
			Status:  http.StatusGatewayTimeout,
			Message: "Request to Ollama timed out. Try again or increase timeout.",
			Err:     llm.ErrTimeout,
		}
	}

	var opErr *net.OpError
	if errors.Is(err, syscall.ECONNREFUSED) || (errors.As(err, &opErr) && opErr.Op == "dial") {
		return &llm.Error{
			Status:  http.StatusServiceUnavailable,
			Message: "Could not connect to Ollama server. Is it running?",
			Err:     llm.ErrUnavailable,
		}
	}

	return &llm.Error{
		Status:  http.StatusInternalServerError,
		Message: fmt.Sprintf("Failed to connect to Ollama: %v", err),
		Err:     errors.Join(llm.ErrUnavailable, err),
	}
}

func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	detail := strings.TrimSpace(string(data))
	var body errorBody
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		detail = body.Error
	}

	msg := fmt.Sprintf("HTTP error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	if detail != "" {
		msg += ": " + detail
	}

	return &llm.Error{Status: resp.StatusCode, Message: msg}
}

var _ llm.Generator = (*Generator)(nil)
