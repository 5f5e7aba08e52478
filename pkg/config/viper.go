package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/wingman/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// found via dotdir resolution, and binds environment variables with the
// WINGMAN_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (WINGMAN_API_LISTEN, WINGMAN_LLM_MODEL, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}
	v.AddConfigPath(target)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("WINGMAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// FromViper materialises the effective configuration held by v.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		API: APIConfig{
			Listen:       v.GetString("api.listen"),
			AllowOrigins: v.GetString("api.allow_origins"),
			KeepAlive:    v.GetString("api.keep_alive"),
			MCP:          v.GetBool("api.mcp"),
			LogFile:      v.GetString("api.log_file"),
		},
		Client: ClientConfig{
			APITarget: v.GetString("client.api_target"),
		},
		LLM: LLMConfig{
			Provider: v.GetString("llm.provider"),
			Upstream: v.GetString("llm.upstream"),
			Model:    v.GetString("llm.model"),
			Timeout:  v.GetString("llm.timeout"),
		},
		Storage: StorageConfig{
			SQLitePath:  v.GetString("storage.sqlite_path"),
			PostgresDSN: v.GetString("storage.postgres_dsn"),
		},
		Stream: StreamConfig{
			RequireDone: v.GetBool("stream.require_done"),
			IdleTimeout: v.GetString("stream.idle_timeout"),
		},
	}
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	v.SetDefault("api.listen", d.API.Listen)
	v.SetDefault("api.allow_origins", d.API.AllowOrigins)
	v.SetDefault("api.keep_alive", d.API.KeepAlive)
	v.SetDefault("api.mcp", d.API.MCP)
	v.SetDefault("api.log_file", d.API.LogFile)

	v.SetDefault("client.api_target", d.Client.APITarget)

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.upstream", d.LLM.Upstream)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.timeout", d.LLM.Timeout)

	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres_dsn", d.Storage.PostgresDSN)

	v.SetDefault("stream.require_done", d.Stream.RequireDone)
	v.SetDefault("stream.idle_timeout", d.Stream.IdleTimeout)
}
