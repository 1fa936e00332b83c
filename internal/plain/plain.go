// Package plain streams a document one aligned word per line.
package plain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuiread/internal/rsvp"
)

// pivotColumn is where every pivot character lands. Prefixes are at most
// four runes, so only wide runes can push a pivot past it.
const pivotColumn = 8

// Options configures a plain run.
type Options struct {
	DocumentID string
	Tokens     []string
	Start      int
	WPM        int

	// Observers are attached to the session before playback starts.
	Observers []rsvp.Option
}

// Printer formats words for w. Pivot characters are emphasized when w is a
// color terminal and left bare otherwise.
type Printer struct {
	w     io.Writer
	pivot lipgloss.Style
}

// NewPrinter returns a Printer for w.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:     w,
		pivot: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF4D4F")),
	}
}

// Line aligns token so its pivot sits at pivotColumn.
func (p *Printer) Line(token string) string {
	orp := rsvp.ComputeORP(token)
	pad := max(pivotColumn-runewidth.StringWidth(orp.Prefix), 0)
	return strings.Repeat(" ", pad) + orp.Prefix + p.pivot.Render(orp.Pivot) + orp.Suffix
}

// Print writes one aligned line.
func (p *Printer) Print(token string) error {
	if _, err := fmt.Fprintln(p.w, p.Line(token)); err != nil {
		return fmt.Errorf("failed to write word: %w", err)
	}
	return nil
}

// Run plays opts.Tokens from opts.Start until the last word or until ctx is
// done, and returns the final cursor. Cancelling ctx is a normal stop.
func Run(ctx context.Context, w io.Writer, opts Options) (int, error) {
	if len(opts.Tokens) == 0 {
		return 0, nil
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	printer := NewPrinter(w)
	loop := rsvp.NewLoop()
	var (
		session  *rsvp.Session
		writeErr error
	)
	show := func() {
		if writeErr != nil {
			return
		}
		if writeErr = printer.Print(session.Current()); writeErr != nil {
			cancel()
		}
	}
	observers := []rsvp.Option{
		rsvp.WithPositionObserver(func(string, int) { show() }),
		rsvp.WithStateObserver(func(state rsvp.State, _ int) {
			if state == rsvp.Paused {
				cancel()
			}
		}),
	}
	session = rsvp.NewSession(opts.DocumentID, opts.Tokens, opts.Start, opts.WPM, loop,
		append(append([]rsvp.Option(nil), opts.Observers...), observers...)...)

	loop.Post(func() {
		show()
		session.Play()
	})
	err := loop.Run(ctx)
	session.Close()
	if writeErr != nil {
		return session.Cursor(), writeErr
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return session.Cursor(), err
	}
	return session.Cursor(), nil
}
