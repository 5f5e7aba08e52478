package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config represents the persistent wingman configuration stored as config.toml
// in the .wingman/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version int           `toml:"version"`
	API     APIConfig     `toml:"api"`
	Client  ClientConfig  `toml:"client"`
	LLM     LLMConfig     `toml:"llm"`
	Storage StorageConfig `toml:"storage"`
	Stream  StreamConfig  `toml:"stream"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen       string `toml:"listen,omitempty"`
	AllowOrigins string `toml:"allow_origins,omitempty"`

	// KeepAlive is the interval of SSE keep-alive comments, "0s" disables them.
	KeepAlive string `toml:"keep_alive,omitempty"`

	// MCP mounts the MCP tools at /mcp.
	MCP bool `toml:"mcp,omitempty"`

	// LogFile receives a JSON copy of the server log when set.
	LogFile string `toml:"log_file,omitempty"`
}

// ClientConfig holds settings for CLI commands that talk to a running API
// server. APITarget is a full URL (scheme + host + port).
type ClientConfig struct {
	APITarget string `toml:"api_target,omitempty"`
}

// LLMConfig selects the text generation backend used by the API server.
type LLMConfig struct {
	Provider string `toml:"provider,omitempty"`
	Upstream string `toml:"upstream,omitempty"`
	Model    string `toml:"model,omitempty"`

	// Timeout bounds how long the server waits for the backend to start
	// answering. It is a Go duration string such as "30s".
	Timeout string `toml:"timeout,omitempty"`
}

// StorageConfig holds server storage settings. PostgresDSN wins over
// SQLitePath; with neither set everything is kept in memory.
type StorageConfig struct {
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// StreamConfig tunes how the CLI consumes streamed responses.
type StreamConfig struct {
	RequireDone bool   `toml:"require_done,omitempty"`
	IdleTimeout string `toml:"idle_timeout,omitempty"`
}

// TimeoutDuration parses Timeout. An empty value yields zero.
func (c LLMConfig) TimeoutDuration() (time.Duration, error) {
	return parseDuration("llm.timeout", c.Timeout)
}

// KeepAliveDuration parses KeepAlive.
func (c APIConfig) KeepAliveDuration() (time.Duration, error) {
	return parseDuration("api.keep_alive", c.KeepAlive)
}

// IdleTimeoutDuration parses IdleTimeout. An empty value yields zero, which
// disables the idle timeout.
func (c StreamConfig) IdleTimeoutDuration() (time.Duration, error) {
	return parseDuration("stream.idle_timeout", c.IdleTimeout)
}

func parseDuration(key, v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid value for %s: must not be negative", key)
	}
	return d, nil
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"api.allow_origins": {
		get: func(c *Config) string { return c.API.AllowOrigins },
		set: func(c *Config, v string) error { c.API.AllowOrigins = v; return nil },
	},
	"api.keep_alive": {
		get: func(c *Config) string { return c.API.KeepAlive },
		set: func(c *Config, v string) error {
			if _, err := parseDuration("api.keep_alive", v); err != nil {
				return err
			}
			c.API.KeepAlive = v
			return nil
		},
	},
	"api.mcp": {
		get: func(c *Config) string { return strconv.FormatBool(c.API.MCP) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for api.mcp: %w", err)
			}
			c.API.MCP = b
			return nil
		},
	},
	"api.log_file": {
		get: func(c *Config) string { return c.API.LogFile },
		set: func(c *Config, v string) error { c.API.LogFile = v; return nil },
	},
	"client.api_target": {
		get: func(c *Config) string { return c.Client.APITarget },
		set: func(c *Config, v string) error { c.Client.APITarget = v; return nil },
	},
	"llm.provider": {
		get: func(c *Config) string { return c.LLM.Provider },
		set: func(c *Config, v string) error {
			if !IsValidProvider(v) {
				return fmt.Errorf("invalid value for llm.provider: %q (available: %v)", v, ValidProviders())
			}
			c.LLM.Provider = v
			return nil
		},
	},
	"llm.upstream": {
		get: func(c *Config) string { return c.LLM.Upstream },
		set: func(c *Config, v string) error { c.LLM.Upstream = v; return nil },
	},
	"llm.model": {
		get: func(c *Config) string { return c.LLM.Model },
		set: func(c *Config, v string) error { c.LLM.Model = v; return nil },
	},
	"llm.timeout": {
		get: func(c *Config) string { return c.LLM.Timeout },
		set: func(c *Config, v string) error {
			if _, err := parseDuration("llm.timeout", v); err != nil {
				return err
			}
			c.LLM.Timeout = v
			return nil
		},
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_dsn": {
		get: func(c *Config) string { return c.Storage.PostgresDSN },
		set: func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
	},
	"stream.require_done": {
		get: func(c *Config) string { return strconv.FormatBool(c.Stream.RequireDone) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for stream.require_done: %w", err)
			}
			c.Stream.RequireDone = b
			return nil
		},
	},
	"stream.idle_timeout": {
		get: func(c *Config) string { return c.Stream.IdleTimeout },
		set: func(c *Config, v string) error {
			if _, err := parseDuration("stream.idle_timeout", v); err != nil {
				return err
			}
			c.Stream.IdleTimeout = v
			return nil
		},
	},
}
