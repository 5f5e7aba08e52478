package dating

import (
	"fmt"
	"strings"
)

// ReplyCount is the number of reply options requested from the model and
// returned by ParseReplies.
const ReplyCount = 5

// Prompt is a model input: a system instruction plus the user text.
type Prompt struct {
	System string
	Text   string
}

var modeSystem = map[Mode]string{
	ModeBasic: "You are Wingman, a friendly AI dating assistant. " +
		"Answer questions about dating, relationships and online profiles clearly and kindly.",
	ModeExpert: "You are Wingman in dating coach mode: an experienced, candid dating coach. " +
		"Give concrete, actionable advice, explain the reasoning behind it and " +
		"suggest exact wording when the user needs something to say.",
	ModeAlpha: "You are Wingman α, an upbeat and confident dating strategist. " +
		"Be direct and encouraging, keep answers short and always end with one next step the user can take today. " +
		"Never encourage manipulation or disrespect.",
}

// ChatPrompt builds the prompt for free-form chat in mode. An unknown or
// empty mode falls back to ModeBasic.
func ChatPrompt(mode Mode, text string) Prompt {
	system, ok := modeSystem[mode]
	if !ok {
		system = modeSystem[ModeBasic]
	}
	return Prompt{System: system, Text: text}
}

const bioSystem = "You write dating app profile descriptions. " +
	"Write in the first person, never use hashtags and return only the description text."

// BioPrompt builds the prompt that generates a profile description.
func BioPrompt(basics BioBasics, opts BioOptions) Prompt {
	var b strings.Builder
	b.WriteString("Write a dating profile description for me.\n\n")
	fmt.Fprintf(&b, "Age: %d\n", basics.Age)
	fmt.Fprintf(&b, "Occupation: %s\n", strings.TrimSpace(basics.Occupation))
	if interests := strings.TrimSpace(basics.Interests); interests != "" {
		fmt.Fprintf(&b, "Interests: %s\n", interests)
	}
	b.WriteString("\n")
	writeStyle(&b, opts)

	return Prompt{System: bioSystem, Text: b.String()}
}

// RefinePrompt builds the prompt that revises an existing description,
// applying the user's free-form adjustments when given.
func RefinePrompt(description, adjustments string, opts BioOptions) Prompt {
	var b strings.Builder
	b.WriteString("Improve this dating profile description:\n\n")
	b.WriteString(strings.TrimSpace(description))
	b.WriteString("\n\n")
	if adj := strings.TrimSpace(adjustments); adj != "" {
		fmt.Fprintf(&b, "Apply these changes: %s\n", adj)
	}
	writeStyle(&b, opts)

	return Prompt{System: bioSystem, Text: b.String()}
}

func writeStyle(b *strings.Builder, opts BioOptions) {
	lo, hi := opts.Length.wordRange()
	fmt.Fprintf(b, "Tone: %s\n", Label(Tones, opts.Tone))
	fmt.Fprintf(b, "Length: between %d and %d words\n", lo, hi)
	fmt.Fprintf(b, "Focus on: %s\n", Label(Focuses, opts.Focus))
	fmt.Fprintf(b, "Humor: %s\n", Label(HumorLevels, opts.Humor))
}

const replySystem = "You help people reply to messages from their matches on dating apps. " +
	"Replies are short, natural and ready to send."

// ReplyPrompt builds the prompt asking for ReplyCount numbered reply
// options to message.
func ReplyPrompt(message string, intention Intention, style Style) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "My match sent me this message:\n\n\"%s\"\n\n", strings.TrimSpace(message))
	fmt.Fprintf(&b, "My goal: %s\n", Label(Intentions, intention))
	fmt.Fprintf(&b, "Reply style: %s\n\n", Label(Styles, style))
	fmt.Fprintf(&b, "Write exactly %d different reply options. ", ReplyCount)
	b.WriteString("Number them 1. to ")
	fmt.Fprintf(&b, "%d. with one reply per line and no other text.", ReplyCount)

	return Prompt{System: replySystem, Text: b.String()}
}
