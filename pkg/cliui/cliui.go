// Package cliui provides reusable terminal UI helpers (spinners, step indicators,
// markdown rendering) for wingman CLI commands.
package cliui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	SuccessMark  = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Render("✓")
	FailMark     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")
	StepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	HeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	NameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	KeyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("111"))
	ValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	DimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	WarnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)

	UserPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	AssistantPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Render("wingman> ")

	heartStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))
)

var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// Step prints an animated spinner while fn runs, then replaces it with
// a ✓ or ✗ checkmark and elapsed time.
func Step(w io.Writer, msg string, fn func() error) error {
	done := make(chan struct{})
	stopped := make(chan struct{})
	var mu sync.Mutex

	go func() {
		defer close(stopped)
		frame := 0
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for {
			mu.Lock()
			fmt.Fprintf(w, "\r  %s %s",
				spinnerStyle.Render(spinnerFrames[frame%len(spinnerFrames)]),
				msg,
			)
			mu.Unlock()

			select {
			case <-done:
				return
			case <-ticker.C:
				frame++
			}
		}
	}()

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	close(done)
	<-stopped

	mu.Lock()
	fmt.Fprintf(w, "\r  %s %s %s\n",
		Mark(err),
		msg,
		StepStyle.Render(fmt.Sprintf("(%s)", FormatDuration(elapsed))),
	)
	mu.Unlock()

	return err
}

// Mark returns a ✓ for nil errors or ✗ for non-nil errors.
func Mark(err error) string {
	if err != nil {
		return FailMark
	}
	return SuccessMark
}

// FormatDuration formats a duration for display (e.g. "12ms" or "3.2s").
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// RenderMarkdown renders markdown content for terminal display using glamour.
// On failure the content is returned unchanged along with the error.
func RenderMarkdown(content string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content, err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content, err
	}

	return rendered, nil
}

// Numbered renders items as a "1. item" list, one per line.
func Numbered(items []string) string {
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "  %s %s\n", NameStyle.Render(fmt.Sprintf("%d.", i+1)), item)
	}
	return b.String()
}

// HeartMeter renders a ten-cell bar for a 0-100 score.
func HeartMeter(score int) string {
	score = max(0, min(score, 100))
	full := score / 10
	return heartStyle.Render(strings.Repeat("♥", full)) + DimStyle.Render(strings.Repeat("♡", 10-full))
}
