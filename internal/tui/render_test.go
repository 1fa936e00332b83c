package tui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/rsvp"
)

func TestRenderWordPivotColumn(t *testing.T) {
	st := newStyles(model.DisplayPrefs{})
	out := renderWord(rsvp.ComputeORP("reading"), st, sizeMetrics{}, 21)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 rows, got %d: %q", len(lines), out)
	}
	tick := strings.Repeat(" ", 10) + "│" + strings.Repeat(" ", 10)
	if lines[0] != tick || lines[2] != tick {
		t.Fatalf("unexpected tick rows: %q / %q", lines[0], lines[2])
	}
	want := strings.Repeat(" ", 8) + "reading" + strings.Repeat(" ", 6)
	if lines[1] != want {
		t.Fatalf("expected %q, got %q", want, lines[1])
	}
}

func TestRenderWordRowsKeepWidth(t *testing.T) {
	st := newStyles(model.DisplayPrefs{})
	m := metricsFor(model.FontExtraLarge)
	for _, word := range []string{"a", "東京", "internationalization", "supercalifragilistic"} {
		out := renderWord(rsvp.ComputeORP(word), st, m, 30)
		lines := strings.Split(out, "\n")
		if len(lines) != 3+2*m.gap {
			t.Fatalf("%q: expected %d rows, got %d", word, 3+2*m.gap, len(lines))
		}
		for i, line := range lines {
			if w := runewidth.StringWidth(line); w != 30 {
				t.Fatalf("%q row %d: expected width 30, got %d (%q)", word, i, w, line)
			}
		}
	}
}

func TestLayoutWordSpacing(t *testing.T) {
	orp := rsvp.ComputeORP("word")
	l := layoutWord(orp, 1, 10)
	if l.prefix != "w " || l.pivot != "o" || l.suffix != " r d" {
		t.Fatalf("unexpected layout: %+v", l)
	}
	if l.pad != 8 {
		t.Fatalf("expected pad 8, got %d", l.pad)
	}
	if l.width() != 15 {
		t.Fatalf("expected width 15, got %d", l.width())
	}
}

func TestLayoutWordPrefixWiderThanColumn(t *testing.T) {
	l := layoutWord(rsvp.ComputeORP("internationalization"), 0, 2)
	if l.pad != 0 {
		t.Fatalf("expected no padding, got %d", l.pad)
	}
}

func TestMetricsForDefaultsToMedium(t *testing.T) {
	if got := metricsFor(""); got != metricsFor(model.FontMedium) {
		t.Fatalf("expected medium metrics, got %+v", got)
	}
}
