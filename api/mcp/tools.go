package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/wingman/pkg/dating"
	"github.com/papercomputeco/wingman/pkg/llm"
)

var (
	loveToolName    = "love_calculator"
	loveDescription = "Compute the playful love compatibility score (0-100) of two names. The score is deterministic and does not depend on the order of the names."

	repliesToolName    = "reply_options"
	repliesDescription = "Suggest five reply options to a message received from a match on a dating app, for a given intention and style."

	describeToolName    = "profile_description"
	describeDescription = "Write a dating profile description from a person's age, occupation and interests."

	historyToolName    = "recent_responses"
	historyDescription = "List the most recent answers wingman generated, newest first, optionally for one user."
)

// defaultHistoryLimit bounds recent_responses when no limit is given.
const defaultHistoryLimit = 10

// LoveInput represents the input arguments for the love_calculator tool.
type LoveInput struct {
	Name1 string `json:"name1" jsonschema:"the first name"`
	Name2 string `json:"name2" jsonschema:"the second name"`
}

// RepliesInput represents the input arguments for the reply_options tool.
type RepliesInput struct {
	Message   string `json:"message" jsonschema:"the message received from the match"`
	Intention string `json:"intention,omitempty" jsonschema:"what the user wants: date, casual, serious, hookup or friendship (default: date)"`
	Style     string `json:"style,omitempty" jsonschema:"reply style: flirty, funny, confident, mysterious, intellectual or casual (default: casual)"`
}

// RepliesOutput represents the output of the reply_options tool.
type RepliesOutput struct {
	Replies []string `json:"replies"`
}

// DescribeInput represents the input arguments for the profile_description tool.
type DescribeInput struct {
	Age        int    `json:"age" jsonschema:"the person's age"`
	Occupation string `json:"occupation" jsonschema:"the person's occupation"`
	Interests  string `json:"interests,omitempty" jsonschema:"free-form interests and hobbies"`
	Tone       string `json:"tone,omitempty" jsonschema:"friendly, confident, mysterious, professional or casual (default: friendly)"`
	Length     string `json:"length,omitempty" jsonschema:"short, medium or long (default: medium)"`
}

// DescribeOutput represents the output of the profile_description tool.
type DescribeOutput struct {
	Description string `json:"description"`
}

// HistoryInput represents the input arguments for the recent_responses tool.
type HistoryInput struct {
	UserID int64 `json:"user_id,omitempty" jsonschema:"only list answers for this user id"`
	Limit  int   `json:"limit,omitempty" jsonschema:"number of answers to return (default: 10)"`
}

// HistoryEntry is one stored answer.
type HistoryEntry struct {
	Prompt    string `json:"prompt"`
	Response  string `json:"response"`
	CreatedAt string `json:"created_at"`
}

// HistoryOutput represents the output of the recent_responses tool.
type HistoryOutput struct {
	Responses []HistoryEntry `json:"responses"`
	Count     int            `json:"count"`
}

func (s *Server) handleLove(_ context.Context, _ *mcp.CallToolRequest, input LoveInput) (*mcp.CallToolResult, dating.LoveResult, error) {
	req := dating.LoveRequest{Name1: input.Name1, Name2: input.Name2}
	if err := req.Validate(); err != nil {
		return toolError(err.Error()), dating.LoveResult{}, nil
	}

	out := dating.LoveScore(input.Name1, input.Name2)
	return textResult(out), out, nil
}

func (s *Server) handleReplies(ctx context.Context, _ *mcp.CallToolRequest, input RepliesInput) (*mcp.CallToolResult, RepliesOutput, error) {
	intention := dating.Intention(orDefault(input.Intention, string(dating.IntentionDate)))
	style := dating.Style(orDefault(input.Style, string(dating.StyleCasual)))

	// The user id is not part of the tool, any positive value passes.
	req := dating.ReplyRequest{UserID: 1, Message: input.Message, Intention: intention, Style: style}
	if err := req.Validate(); err != nil {
		return toolError(err.Error()), RepliesOutput{}, nil
	}

	s.config.Logger.Debug("MCP reply options request",
		"intention", intention,
		"style", style,
	)

	text, err := s.generate(ctx, dating.ReplyPrompt(input.Message, intention, style))
	if err != nil {
		return toolError(fmt.Sprintf("Failed to generate replies: %v", err)), RepliesOutput{}, nil
	}

	out := RepliesOutput{Replies: dating.ParseReplies(text)}
	return textResult(out), out, nil
}

func (s *Server) handleDescribe(ctx context.Context, _ *mcp.CallToolRequest, input DescribeInput) (*mcp.CallToolResult, DescribeOutput, error) {
	opts := dating.BioOptions{
		Tone:   dating.Tone(input.Tone),
		Length: dating.Length(input.Length),
	}.WithDefaults()

	req := dating.BioRequest{
		UserID:  1,
		Basics:  dating.BioBasics{Age: input.Age, Occupation: input.Occupation, Interests: input.Interests},
		Options: opts,
	}
	if err := req.Validate(); err != nil {
		return toolError(err.Error()), DescribeOutput{}, nil
	}

	text, err := s.generate(ctx, dating.BioPrompt(req.Basics, opts))
	if err != nil {
		return toolError(fmt.Sprintf("Failed to write description: %v", err)), DescribeOutput{}, nil
	}

	out := DescribeOutput{Description: strings.TrimSpace(text)}
	return textResult(out), out, nil
}

func (s *Server) handleHistory(ctx context.Context, _ *mcp.CallToolRequest, input HistoryInput) (*mcp.CallToolResult, HistoryOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	responses, err := s.config.Driver.ListResponses(ctx, input.UserID)
	if err != nil {
		s.config.Logger.Error("failed to list responses", "error", err)
		return toolError(fmt.Sprintf("Failed to list responses: %v", err)), HistoryOutput{}, nil
	}

	entries := make([]HistoryEntry, 0, min(limit, len(responses)))
	for _, r := range responses {
		if len(entries) == limit {
			break
		}
		entries = append(entries, HistoryEntry{
			Prompt:    r.Prompt,
			Response:  r.Response,
			CreatedAt: r.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	out := HistoryOutput{Responses: entries, Count: len(entries)}
	return textResult(out), out, nil
}

func (s *Server) generate(ctx context.Context, p dating.Prompt) (string, error) {
	resp, err := s.config.Generator.Generate(ctx, &llm.GenerateRequest{
		Model:  s.config.Model,
		System: p.System,
		Prompt: p.Text,
	}, nil)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// textResult serializes the structured output as JSON for the text field.
// Tools returning structured content should also return it in a TextContent
// block for older clients.
func textResult(v any) *mcp.CallToolResult {
	b, err := json.Marshal(v)
	if err != nil {
		return toolError(fmt.Sprintf("Failed to serialize results: %v", err))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(b)},
		},
	}
}

func toolError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
