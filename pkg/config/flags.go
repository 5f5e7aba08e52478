package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --api-target
// on "wingman chat", "wingman reply" and "wingman history").
type Flag struct {
	// Name is the long flag name (e.g. "upstream").
	Name string

	// Shorthand is the one-letter short flag (e.g. "u"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "llm.upstream").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddBoolFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagListen      = "listen"
	FlagOrigins     = "allow-origins"
	FlagKeepAlive   = "keep-alive"
	FlagMCP         = "mcp"
	FlagLogFile     = "log-file"
	FlagPostgres    = "postgres"
	FlagAPITarget   = "api-target"
	FlagProvider    = "provider"
	FlagUpstream    = "upstream"
	FlagModel       = "model"
	FlagLLMTimeout  = "llm-timeout"
	FlagSQLite      = "sqlite"
	FlagRequireDone = "require-done"
	FlagIdleTimeout = "idle-timeout"
)

// ServeFlags are the flags accepted by "wingman serve".
var ServeFlags = FlagSet{
	FlagListen:     {Name: "listen", Shorthand: "l", ViperKey: "api.listen", Description: "Address for the API server to listen on"},
	FlagProvider:   {Name: "provider", Shorthand: "p", ViperKey: "llm.provider", Description: "Text generation backend (ollama, fake)"},
	FlagUpstream:   {Name: "upstream", Shorthand: "u", ViperKey: "llm.upstream", Description: "Base URL of the text generation backend"},
	FlagModel:      {Name: "model", Shorthand: "m", ViperKey: "llm.model", Description: "Model name passed to the backend"},
	FlagLLMTimeout: {Name: "llm-timeout", ViperKey: "llm.timeout", Description: "How long to wait for the backend to start answering"},
	FlagSQLite:     {Name: "sqlite", Shorthand: "s", ViperKey: "storage.sqlite_path", Description: "Path to SQLite database (default: in-memory)"},
	FlagPostgres:   {Name: "postgres", ViperKey: "storage.postgres_dsn", Description: "PostgreSQL connection string, takes precedence over --sqlite"},
	FlagOrigins:    {Name: "allow-origins", ViperKey: "api.allow_origins", Description: "Comma separated origins allowed by CORS"},
	FlagKeepAlive:  {Name: "keep-alive", ViperKey: "api.keep_alive", Description: "Interval of SSE keep-alive comments (0s disables)"},
	FlagMCP:        {Name: "mcp", ViperKey: "api.mcp", Description: "Serve the MCP tools at /mcp"},
	FlagLogFile:    {Name: "log-file", ViperKey: "api.log_file", Description: "Also write the server log as JSON to this file"},
}

// ClientFlags are the flags accepted by commands that call the API server.
var ClientFlags = FlagSet{
	FlagAPITarget:   {Name: "api-target", ViperKey: "client.api_target", Description: "Wingman API server URL"},
	FlagRequireDone: {Name: "require-done", ViperKey: "stream.require_done", Description: "Fail streams that end without a done frame"},
	FlagIdleTimeout: {Name: "idle-timeout", ViperKey: "stream.idle_timeout", Description: "Fail streams that stall for this long (0 disables)"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, key string, target *bool) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultBool returns the default bool value for a viper key from NewDefaultConfig.
func defaultBool(viperKey string) bool {
	v := viper.New()
	setViperDefaults(v)
	return v.GetBool(viperKey)
}
