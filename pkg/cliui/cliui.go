// Package cliui provides reusable terminal UI helpers (spinners, step indicators,
// session stats, markdown rendering) for trickle CLI commands.
package cliui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/papercomputeco/trickle/pkg/session"
)

var (
	SuccessMark  = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Render("✓")
	FailMark     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")
	StepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	KeyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	ValueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	DimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
)

var stateColors = map[session.State]lipgloss.Color{
	session.Idle:       lipgloss.Color("245"),
	session.Connecting: lipgloss.Color("214"),
	session.Streaming:  lipgloss.Color("39"),
	session.Completed:  lipgloss.Color("82"),
	session.Aborted:    lipgloss.Color("214"),
	session.Failed:     lipgloss.Color("196"),
}

// spinnerFrames matches bubbletea's spinner.Dot pattern used in the tui.
var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// Step prints an animated spinner while fn runs, then replaces it with
// a ✓ or ✗ checkmark and elapsed time.
func Step(w io.Writer, msg string, fn func() error) error {
	done := make(chan struct{})
	var mu sync.Mutex

	// Run spinner animation in background
	go func() {
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

	// Clear the spinner line and print final result
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

// State renders a session state name in its color.
func State(st session.State) string {
	return lipgloss.NewStyle().Bold(true).Foreground(stateColors[st]).Render(st.String())
}

// Stats renders the one-line summary printed after a session ends, e.g.
// "✓ completed  12 chunks · 87 chars · 31 frames (1.2s)".
func Stats(snap session.Snapshot) string {
	var err error
	if snap.State != session.Completed {
		err = snap.LastError
		if err == nil {
			err = fmt.Errorf("%s", snap.State)
		}
	}

	line := fmt.Sprintf("%s %s  %s",
		Mark(err),
		State(snap.State),
		StepStyle.Render(fmt.Sprintf("%d chunks · %d chars · %d frames (%s)",
			snap.ChunkCount, snap.TotalChars, snap.FrameCount, FormatDuration(snap.Duration()))),
	)
	if snap.LastError != nil {
		line += "\n  " + FailMark + " " + snap.LastError.Error()
	}
	return line
}

// RenderMarkdown renders markdown content for terminal display using glamour.
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
