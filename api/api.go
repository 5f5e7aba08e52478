package api

import (
	"errors"
	"log/slog"
	"net"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/papercomputeco/wingman/api/mcp"
	"github.com/papercomputeco/wingman/api/worker"
	"github.com/papercomputeco/wingman/pkg/llm"
	"github.com/papercomputeco/wingman/pkg/storage"
)

// DefaultAllowOrigins is the web frontend's development origin.
const DefaultAllowOrigins = "http://localhost:3000"

// RequestIDHeader carries the id assigned to every request.
const RequestIDHeader = "X-Request-ID"

// Server is the API server for the wingman dating assistant
type Server struct {
	config Config
	storer storage.Driver
	gen    llm.Generator
	pool   *worker.Pool
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
// The storer and generator are injected so the serve command owns their
// lifecycle; the server owns the worker pool persisting generated text.
func NewServer(config Config, storer storage.Driver, gen llm.Generator, logger *slog.Logger) (*Server, error) {
	if storer == nil {
		return nil, errors.New("storage driver is required")
	}
	if gen == nil {
		return nil, errors.New("generator is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := worker.NewPool(&worker.Config{
		Driver: storer,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(logger),
	})

	s := &Server{
		config: config,
		storer: storer,
		gen:    gen,
		pool:   pool,
		logger: logger,
		app:    app,
	}

	origins := config.AllowOrigins
	if origins == "" {
		origins = DefaultAllowOrigins
	}

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Header:    RequestIDHeader,
		Generator: uuid.NewString,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowHeaders:  "Origin, Content-Type, Accept, " + RequestIDHeader,
		AllowMethods:  "GET, POST, OPTIONS",
		ExposeHeaders: RequestIDHeader,
	}))

	app.Get("/ping", s.handlePing)

	r := app.Group("/api")
	r.Post("/generate/", s.handleGenerate)
	r.Get("/responses/", s.handleListResponses)

	r.Post("/create_user/", s.handleCreateUser)
	r.Get("/get_user/", s.handleGetUser)
	r.Post("/login_user/", s.handleLogin)
	r.Post("/update_user/", s.handleUpdateUser)

	r.Post("/create_chat_window/", s.handleCreateChatWindow)
	r.Get("/get_chat_window/", s.handleListChatWindows)

	r.Post("/love_calculator/", s.handleLoveCalculator)
	r.Post("/generate_tinder_description/", s.handleGenerateDescription)
	r.Post("/update_tinder_description/", s.handleRefineDescription)
	r.Post("/tinder_replies/", s.handleReplies)

	if config.MCP {
		mcpServer, err := mcp.NewServer(mcp.Config{
			Driver:    storer,
			Generator: gen,
			Model:     config.Model,
			Logger:    logger,
		})
		if err != nil {
			pool.Close()
			return nil, err
		}
		app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))
	}

	return s, nil
}

// App exposes the underlying fiber app, mainly for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
		"generator", s.gen.Name(),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// RunWithListener starts the API server using the provided listener.
func (s *Server) RunWithListener(listener net.Listener) error {
	s.logger.Info("starting API server",
		"listen", listener.Addr().String(),
		"generator", s.gen.Name(),
	)
	return s.app.Listener(listener)
}

// Shutdown gracefully shuts down the API server, then drains pending
// storage jobs.
func (s *Server) Shutdown() error {
	err := s.app.Shutdown()
	s.pool.Close()
	return err
}
