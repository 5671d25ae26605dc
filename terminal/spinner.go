// Package terminal renders UI streams in a terminal.
package terminal

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// Spinner wraps a terminal spinner for loading states.
type Spinner struct {
	s *spinner.Spinner
	w io.Writer
}

// NewSpinner creates a spinner with the given message writing to w.
// It only animates when w is a terminal.
func NewSpinner(w io.Writer, msg string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 80*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = "  " + msg
	_ = s.Color("cyan")
	return &Spinner{s: s, w: w}
}

// Start begins the spinner animation.
func (sp *Spinner) Start() {
	sp.s.Start()
}

// Stop halts the spinner and clears the line.
func (sp *Spinner) Stop() {
	sp.s.Stop()
}

// Fail stops the spinner and prints a red cross.
func (sp *Spinner) Fail(msg string) {
	sp.s.Stop()
	red := color.New(color.FgRed)
	red.Fprintf(sp.w, "  ✗ %s\n", msg)
}
