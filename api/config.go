// Package api provides the wingman HTTP API: accounts, chat windows, stored
// responses and the streamed generation endpoints.
package api

import "time"

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8000")
	ListenAddr string

	// Model is passed to the generator with every request. Empty selects
	// the generator's default.
	Model string

	// KeepAlive is the interval of SSE comment frames sent while a stream
	// waits on the model. Zero disables them.
	KeepAlive time.Duration

	// AllowOrigins is the CORS origin list for browser clients.
	AllowOrigins string

	// MCP mounts the Model Context Protocol endpoint at /mcp.
	MCP bool
}
