package client

import (
	"context"
	"net/http"

	"github.com/papercomputeco/wingman/pkg/dating"
	"github.com/papercomputeco/wingman/pkg/stream"
)

// Ping checks that the API answers.
func (c *Client) Ping(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/ping", nil, nil, nil)
}

// CreateUser registers a new account.
func (c *Client) CreateUser(ctx context.Context, reg dating.Registration) (*dating.User, error) {
	var u dating.User
	if err := c.call(ctx, http.MethodPost, "/api/create_user/", nil, reg, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser fetches a user by id.
func (c *Client) GetUser(ctx context.Context, userID int64) (*dating.User, error) {
	var u dating.User
	if err := c.call(ctx, http.MethodGet, "/api/get_user/", userQuery(userID), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login checks credentials and returns the matching user.
func (c *Client) Login(ctx context.Context, creds dating.Credentials) (*dating.User, error) {
	var u dating.User
	if err := c.call(ctx, http.MethodPost, "/api/login_user/", nil, creds, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUser replaces the profile of a user.
func (c *Client) UpdateUser(ctx context.Context, upd dating.ProfileUpdate) (*dating.User, error) {
	var u dating.User
	if err := c.call(ctx, http.MethodPost, "/api/update_user/", nil, upd, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateChatWindow opens a chat window.
func (c *Client) CreateChatWindow(ctx context.Context, w dating.NewChatWindow) (*dating.ChatWindow, error) {
	var cw dating.ChatWindow
	if err := c.call(ctx, http.MethodPost, "/api/create_chat_window/", nil, w, &cw); err != nil {
		return nil, err
	}
	return &cw, nil
}

// ChatWindows lists the chat windows of a user, newest first.
func (c *Client) ChatWindows(ctx context.Context, userID int64) ([]dating.ChatWindow, error) {
	var out []dating.ChatWindow
	if err := c.call(ctx, http.MethodGet, "/api/get_chat_window/", userQuery(userID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Responses lists stored responses newest first. A zero userID lists all.
func (c *Client) Responses(ctx context.Context, userID int64) ([]dating.Response, error) {
	var out []dating.Response
	if err := c.call(ctx, http.MethodGet, "/api/responses/", userQuery(userID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Generate asks for a complete answer in one JSON response.
func (c *Client) Generate(ctx context.Context, req dating.GenerateRequest) (string, error) {
	req.Stream = false
	var out dating.GenerateResponse
	if err := c.call(ctx, http.MethodPost, "/api/generate/", nil, req, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

// GenerateStream asks for a streamed answer and delivers it to h.
func (c *Client) GenerateStream(ctx context.Context, req dating.GenerateRequest, h stream.Handlers) (*stream.Result, error) {
	req.Stream = true
	return c.streamCall(ctx, "/api/generate/", req, h)
}

// Replies streams reply options to a match's message into h. Parse the
// accumulated text with dating.ParseReplies.
func (c *Client) Replies(ctx context.Context, req dating.ReplyRequest, h stream.Handlers) (*stream.Result, error) {
	return c.streamCall(ctx, "/api/tinder_replies/", req, h)
}

// LoveCalculator scores two names.
func (c *Client) LoveCalculator(ctx context.Context, req dating.LoveRequest) (*dating.LoveResult, error) {
	var out dating.LoveResult
	if err := c.call(ctx, http.MethodPost, "/api/love_calculator/", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateDescription writes a new profile description.
func (c *Client) GenerateDescription(ctx context.Context, req dating.BioRequest) (string, error) {
	var out dating.BioResult
	if err := c.call(ctx, http.MethodPost, "/api/generate_tinder_description/", nil, req, &out); err != nil {
		return "", err
	}
	return out.Description, nil
}

// RefineDescription revises an existing profile description.
func (c *Client) RefineDescription(ctx context.Context, req dating.BioRefineRequest) (string, error) {
	var out dating.BioResult
	if err := c.call(ctx, http.MethodPost, "/api/update_tinder_description/", nil, req, &out); err != nil {
		return "", err
	}
	return out.Description, nil
}
