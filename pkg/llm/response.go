package llm

import (
	"time"
)

// GenerateResponse is the result of a completed generation.
type GenerateResponse struct {
	// Model that generated the response
	Model string `json:"model"`

	// Response timestamp
	CreatedAt time.Time `json:"created_at,omitzero"`

	// Text is the full generated text, the concatenation of every token
	// passed to the TokenFunc.
	Text string `json:"text"`

	// Stop reason (e.g., "stop", "length")
	StopReason string `json:"stop_reason,omitempty"`

	// Token usage and timing metrics
	Usage *Usage `json:"usage,omitempty"`
}

// Usage contains token counts and timing information.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`

	// Timing, normalized to nanoseconds
	TotalDurationNs  int64 `json:"total_duration_ns,omitempty"`
	PromptDurationNs int64 `json:"prompt_duration_ns,omitempty"`
}
