package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	streamui "github.com/haowjy/meridian-streamui-go"
)

// ErrNoResult is returned when the stream closes without a final update.
var ErrNoResult = errors.New("stream ended without a result")

// Render reads updates until the stream closes. Loading fragments show a
// spinner on errw; the final fragment's text is printed to w. It returns the
// final fragment, or the stream's error after printing it in red. A stream
// that closes without a final update yields ctx.Err() if ctx is done and
// ErrNoResult otherwise.
func Render(ctx context.Context, w, errw io.Writer, updates <-chan streamui.Update) (streamui.Fragment, error) {
	var sp *Spinner
	stopSpinner := func() {
		if sp != nil {
			sp.Stop()
			sp = nil
		}
	}
	defer stopSpinner()

	var (
		final    streamui.Fragment
		gotFinal bool
	)
	for u := range updates {
		if u.Err != nil {
			if sp != nil {
				sp.Fail(u.Err.Error())
				sp = nil
			} else {
				color.New(color.FgRed).Fprintf(errw, "  ✗ %s\n", u.Err)
			}
			return streamui.Fragment{}, u.Err
		}

		if !u.Final {
			stopSpinner()
			if u.Fragment.Kind == streamui.FragmentLoading {
				sp = NewSpinner(errw, u.Fragment.Text)
				sp.Start()
			} else {
				fmt.Fprintln(errw, u.Fragment.Text)
			}
			continue
		}

		stopSpinner()
		final = u.Fragment
		gotFinal = true
		printFragment(w, final)
	}

	if gotFinal {
		return final, nil
	}
	if err := ctx.Err(); err != nil {
		return streamui.Fragment{}, err
	}
	return streamui.Fragment{}, ErrNoResult
}

func printFragment(w io.Writer, f streamui.Fragment) {
	switch f.Kind {
	case streamui.FragmentText:
		fmt.Fprintln(w, f.Text)
	case streamui.FragmentError:
		color.New(color.FgRed).Fprintln(w, f.Text)
	default:
		color.New(color.FgCyan, color.Bold).Fprintln(w, f.Text)
	}
}
