// Package fake implements llm.Generator without a model. It backs the
// "offline" preset and tests.
package fake

import (
	"context"
	"strings"
	"time"

	"github.com/papercomputeco/wingman/pkg/llm"
)

// Responder returns the full text to generate for req.
type Responder func(req *llm.GenerateRequest) (string, error)

// Generator emits the text of its Responder word by word.
type Generator struct {
	respond Responder
	delay   time.Duration
}

// Option configures a Generator.
type Option func(*Generator)

// WithResponder replaces the default canned answers.
func WithResponder(r Responder) Option {
	return func(g *Generator) {
		g.respond = r
	}
}

// WithText always answers with text.
func WithText(text string) Option {
	return WithResponder(func(*llm.GenerateRequest) (string, error) { return text, nil })
}

// WithDelay pauses between tokens, simulating a slow model.
func WithDelay(d time.Duration) Option {
	return func(g *Generator) {
		g.delay = d
	}
}

// New creates a Generator.
func New(opts ...Option) *Generator {
	g := &Generator{respond: canned}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) Name() string {
	return "fake"
}

// Generate implements llm.Generator.
func (g *Generator) Generate(ctx context.Context, req *llm.GenerateRequest, onToken llm.TokenFunc) (*llm.GenerateResponse, error) {
	text, err := g.respond(req)
	if err != nil {
		return nil, err
	}

	for _, tok := range Tokens(text) {
		if g.delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(g.delay):
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if onToken != nil {
			if err := onToken(tok); err != nil {
				return nil, err
			}
		}
	}

	return &llm.GenerateResponse{
		Model:      "fake",
		CreatedAt:  time.Now().UTC(),
		Text:       text,
		StopReason: "stop",
	}, nil
}

func (g *Generator) Close() error {
	return nil
}

// Tokens splits text into word tokens that concatenate back to text.
func Tokens(text string) []string {
	var (
		out   []string
		start int
	)
	for i, r := range text {
		if r == ' ' || r == '\n' {
			out = append(out, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

func canned(req *llm.GenerateRequest) (string, error) {
	p := strings.ToLower(req.Prompt)
	switch {
	case strings.Contains(p, "reply options"):
		return "1. Haha, I like where this is going. Tell me more?\n" +
			"2. Okay, you've got my attention.\n" +
			"3. That's the best message I've had all week.\n" +
			"4. Bold opener. Coffee or cocktails?\n" +
			"5. I'm intrigued. What's the story behind that?", nil

	case strings.Contains(p, "profile description"):
		return "Curious by nature and kind by choice. I'm happiest exploring a new neighbourhood, " +
			"trying the food truck nobody has reviewed yet and swapping stories over a good coffee. " +
			"Looking for someone who laughs easily and isn't afraid of a spontaneous weekend plan.", nil

	default:
		return "Be yourself, ask open questions and listen to the answers. " +
			"Suggest a simple first date within a few days so the conversation doesn't fizzle out.", nil
	}
}

var _ llm.Generator = (*Generator)(nil)
