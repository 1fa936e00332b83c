package plain

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/verte-zerg/tuiread/internal/rsvp"
)

func TestLineAlignsPivot(t *testing.T) {
	p := NewPrinter(&bytes.Buffer{})
	cases := map[string]string{
		"a":                    "        a",
		"reading":              "      reading",
		"internationalization": "    internationalization",
	}
	for token, want := range cases {
		if got := p.Line(token); got != want {
			t.Fatalf("%q: expected %q, got %q", token, want, got)
		}
	}
}

func TestRunStreamsToEnd(t *testing.T) {
	var out bytes.Buffer
	var states []rsvp.State
	cursor, err := Run(context.Background(), &out, Options{
		DocumentID: "doc",
		Tokens:     []string{"one", "two", "three"},
		WPM:        rsvp.MaxWPM,
		Observers: []rsvp.Option{rsvp.WithStateObserver(func(state rsvp.State, _ int) {
			states = append(states, state)
		})},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if cursor != 2 {
		t.Fatalf("expected final cursor 2, got %d", cursor)
	}
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 3 || strings.TrimSpace(lines[2]) != "three" {
		t.Fatalf("unexpected output: %q", out.String())
	}
	if len(states) != 2 || states[0] != rsvp.Running || states[1] != rsvp.Paused {
		t.Fatalf("unexpected state transitions: %v", states)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var out bytes.Buffer
	cursor, err := Run(ctx, &out, Options{
		Tokens: strings.Fields("a b c d e f g h"),
		Start:  1,
		WPM:    rsvp.MaxWPM,
		Observers: []rsvp.Option{rsvp.WithPositionObserver(func(_ string, cursor int) {
			if cursor == 3 {
				cancel()
			}
		})},
	})
	if err != nil {
		t.Fatalf("expected interrupt to be a normal stop, got %v", err)
	}
	if cursor != 3 {
		t.Fatalf("expected cursor 3, got %d", cursor)
	}
	if got := strings.Count(out.String(), "\n"); got != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", got, out.String())
	}
}

func TestRunEmptyDocument(t *testing.T) {
	var out bytes.Buffer
	cursor, err := Run(context.Background(), &out, Options{})
	if err != nil || cursor != 0 || out.Len() != 0 {
		t.Fatalf("unexpected result: cursor=%d err=%v out=%q", cursor, err, out.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestRunReportsWriteErrors(t *testing.T) {
	_, err := Run(context.Background(), failingWriter{}, Options{Tokens: []string{"one", "two"}, WPM: rsvp.MaxWPM})
	if err == nil || !strings.Contains(err.Error(), "closed pipe") {
		t.Fatalf("expected write error, got %v", err)
	}
}
