package llm

// GenerateRequest is a provider-agnostic text generation request.
type GenerateRequest struct {
	// Model name (e.g., "llama3.2:1b"). Empty selects the generator's default.
	Model string `json:"model,omitempty"`

	// System instruction, sent separately from the prompt where the backend
	// supports it.
	System string `json:"system,omitempty"`

	// Prompt is the user text to answer.
	Prompt string `json:"prompt"`
}
