// Package mcp provides an MCP (Model Context Protocol) server exposing the
// wingman dating tools to MCP capable assistants.
package mcp

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/wingman/pkg/llm"
	"github.com/papercomputeco/wingman/pkg/storage"
	"github.com/papercomputeco/wingman/pkg/utils"
)

type Config struct {
	// Driver reads stored responses for the history tool
	Driver storage.Driver

	// Generator answers the reply and description tools
	Generator llm.Generator

	// Model is passed with every generation. Empty selects the generator's
	// default.
	Model string

	// Logger is the configured slog logger
	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the wingman tools.
func NewServer(c Config) (*Server, error) {
	if c.Driver == nil {
		return nil, errors.New("storage driver is required")
	}
	if c.Generator == nil {
		return nil, errors.New("generator is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "wingman",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        loveToolName,
		Description: loveDescription,
	}, s.handleLove)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        repliesToolName,
		Description: repliesDescription,
	}, s.handleReplies)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        describeToolName,
		Description: describeDescription,
	}, s.handleDescribe)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        historyToolName,
		Description: historyDescription,
	}, s.handleHistory)

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// MCPServer returns the underlying server, for in-process transports.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}
