package ollama

import "time"

// generateRequest is the body of Ollama's POST /api/generate.
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Stream bool   `json:"stream"`
}

// generateChunk is one NDJSON line of a streamed /api/generate response.
type generateChunk struct {
	Model              string    `json:"model"`
	CreatedAt          time.Time `json:"created_at"`
	Response           string    `json:"response"`
	Done               bool      `json:"done"`
	DoneReason         string    `json:"done_reason,omitempty"`
	Error              string    `json:"error,omitempty"`
	TotalDuration      int64     `json:"total_duration,omitempty"`
	PromptEvalCount    int       `json:"prompt_eval_count,omitempty"`
	PromptEvalDuration int64     `json:"prompt_eval_duration,omitempty"`
	EvalCount          int       `json:"eval_count,omitempty"`
}

// errorBody is the JSON body Ollama sends with non-2xx statuses.
type errorBody struct {
	Error string `json:"error"`
}
