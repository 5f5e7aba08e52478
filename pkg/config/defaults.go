package config

import "slices"

const (
	ProviderOllama = "ollama"
	ProviderFake   = "fake"

	defaultProvider  = ProviderOllama
	defaultUpstream  = "http://localhost:11434"
	defaultModel     = "llama3.2:1b"
	defaultTimeout   = "30s"
	defaultAPIListen = ":8000"

	defaultAllowOrigins = "http://localhost:3000"
	defaultKeepAlive    = "15s"

	defaultClientAPITarget = "http://localhost:8000"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		API: APIConfig{
			Listen:       defaultAPIListen,
			AllowOrigins: defaultAllowOrigins,
			KeepAlive:    defaultKeepAlive,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
		LLM: LLMConfig{
			Provider: defaultProvider,
			Upstream: defaultUpstream,
			Model:    defaultModel,
			Timeout:  defaultTimeout,
		},
	}
}

// ValidProviders returns the supported llm.provider values.
func ValidProviders() []string {
	return []string{ProviderOllama, ProviderFake}
}

// IsValidProvider reports whether name is a supported llm.provider value.
func IsValidProvider(name string) bool {
	return slices.Contains(ValidProviders(), name)
}
