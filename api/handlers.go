package api

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/wingman/api/worker"
	"github.com/papercomputeco/wingman/pkg/dating"
	"github.com/papercomputeco/wingman/pkg/llm"
)

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// parseBody decodes the JSON request body into v.
func parseBody(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return badRequest("Invalid request body")
	}
	return nil
}

// userIDQuery reads the user_id query parameter. A missing parameter is
// zero; required makes it an error.
func userIDQuery(c *fiber.Ctx, required bool) (int64, error) {
	raw := strings.TrimSpace(c.Query("user_id"))
	if raw == "" {
		if required {
			return 0, badRequest("user_id is required")
		}
		return 0, nil
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, badRequest("user_id must be a positive integer")
	}
	return id, nil
}

func (s *Server) handleCreateUser(c *fiber.Ctx) error {
	var reg dating.Registration
	if err := parseBody(c, &reg); err != nil {
		return err
	}
	if err := reg.Validate(); err != nil {
		return err
	}

	u, err := s.storer.CreateUser(c.UserContext(), reg)
	if err != nil {
		return err
	}

	s.logger.Info("user registered", "user_id", u.ID)
	return c.Status(fiber.StatusCreated).JSON(u)
}

func (s *Server) handleGetUser(c *fiber.Ctx) error {
	id, err := userIDQuery(c, true)
	if err != nil {
		return err
	}

	u, err := s.storer.GetUser(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(u)
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var creds dating.Credentials
	if err := parseBody(c, &creds); err != nil {
		return err
	}
	if err := creds.Validate(); err != nil {
		return err
	}

	u, err := s.storer.Authenticate(c.UserContext(), creds.Email, creds.Password)
	if err != nil {
		return err
	}
	return c.JSON(u)
}

func (s *Server) handleUpdateUser(c *fiber.Ctx) error {
	var upd dating.ProfileUpdate
	if err := parseBody(c, &upd); err != nil {
		return err
	}
	if err := upd.Validate(); err != nil {
		return err
	}

	u, err := s.storer.UpdateUser(c.UserContext(), upd)
	if err != nil {
		return err
	}
	return c.JSON(u)
}

func (s *Server) handleCreateChatWindow(c *fiber.Ctx) error {
	var w dating.NewChatWindow
	if err := parseBody(c, &w); err != nil {
		return err
	}
	if err := w.Validate(); err != nil {
		return err
	}

	cw, err := s.storer.CreateChatWindow(c.UserContext(), w)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(cw)
}

func (s *Server) handleListChatWindows(c *fiber.Ctx) error {
	id, err := userIDQuery(c, true)
	if err != nil {
		return err
	}

	windows, err := s.storer.ListChatWindows(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(windows)
}

// handleListResponses returns stored responses newest first, optionally
// limited to one user.
func (s *Server) handleListResponses(c *fiber.Ctx) error {
	id, err := userIDQuery(c, false)
	if err != nil {
		return err
	}

	responses, err := s.storer.ListResponses(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(responses)
}

func (s *Server) handleLoveCalculator(c *fiber.Ctx) error {
	var req dating.LoveRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}
	return c.JSON(dating.LoveScore(req.Name1, req.Name2))
}

func (s *Server) handleGenerateDescription(c *fiber.Ctx) error {
	var req dating.BioRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	req.Options = req.Options.WithDefaults()
	if err := req.Validate(); err != nil {
		return err
	}

	return s.describe(c, req.UserID, dating.BioPrompt(req.Basics, req.Options))
}

func (s *Server) handleRefineDescription(c *fiber.Ctx) error {
	var req dating.BioRefineRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	req.Options = req.Options.WithDefaults()
	if err := req.Validate(); err != nil {
		return err
	}

	return s.describe(c, req.UserID, dating.RefinePrompt(req.Description, req.Adjustments, req.Options))
}

// describe generates a profile description and stores it on the user.
func (s *Server) describe(c *fiber.Ctx, userID int64, p dating.Prompt) error {
	ctx := c.UserContext()
	if _, err := s.storer.GetUser(ctx, userID); err != nil {
		return err
	}

	resp, err := s.gen.Generate(ctx, s.llmRequest(p), nil)
	if err != nil {
		return err
	}

	description := strings.TrimSpace(resp.Text)
	s.pool.Enqueue(worker.Job{
		Description: &worker.Description{UserID: userID, Text: description},
	})
	return c.JSON(dating.BioResult{Description: description})
}

func (s *Server) llmRequest(p dating.Prompt) *llm.GenerateRequest {
	return &llm.GenerateRequest{
		Model:  s.config.Model,
		System: p.System,
		Prompt: p.Text,
	}
}
