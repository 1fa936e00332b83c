package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuiread/internal/rsvp"
)

// wordLayout is a word split around its pivot with the left padding that
// puts the pivot in a fixed column.
type wordLayout struct {
	pad    int
	prefix string
	pivot  string
	suffix string
}

func (l wordLayout) width() int {
	return l.pad + runewidth.StringWidth(l.prefix) + runewidth.StringWidth(l.pivot) + runewidth.StringWidth(l.suffix)
}

// spaced inserts spacing blanks between the runes of s.
func spaced(s string, spacing int) string {
	if spacing <= 0 || s == "" {
		return s
	}
	gap := strings.Repeat(" ", spacing)
	var b strings.Builder
	for i, r := range s {
		if i > 0 {
			b.WriteString(gap)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// layoutWord pads the word so the pivot starts at column. A prefix wider
// than column starts at the left edge.
func layoutWord(orp rsvp.ORP, spacing, column int) wordLayout {
	gap := strings.Repeat(" ", max(spacing, 0))
	prefix := spaced(orp.Prefix, spacing)
	if prefix != "" {
		prefix += gap
	}
	suffix := spaced(orp.Suffix, spacing)
	if suffix != "" {
		suffix = gap + suffix
	}
	pad := column - runewidth.StringWidth(prefix)
	if pad < 0 {
		pad = 0
	}
	return wordLayout{pad: pad, prefix: prefix, pivot: orp.Pivot, suffix: suffix}
}

// pivotColumn is the fixed column of the pivot for a view width.
func pivotColumn(width int) int {
	if width <= 0 {
		return 0
	}
	return (width - 1) / 2
}

// fitRight pads s with blanks to exactly width cells, truncating when wider.
func fitRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w > width {
		return runewidth.Truncate(s, width, "")
	}
	return s + strings.Repeat(" ", width-w)
}

// renderWord draws the guide ticks and the word, every row width cells wide.
func renderWord(orp rsvp.ORP, st styles, m sizeMetrics, width int) string {
	column := pivotColumn(width)
	l := layoutWord(orp, m.spacing, column)
	// Long words on narrow terminals are cut from the end.
	if over := l.width() - width; over > 0 && width > 0 {
		l.suffix = runewidth.Truncate(l.suffix, max(runewidth.StringWidth(l.suffix)-over, 0), "")
	}

	tick := st.guide.Render(fitRight(strings.Repeat(" ", column)+"│", width))
	blank := st.word.Render(strings.Repeat(" ", width))
	trailing := width - l.width()
	word := st.word.Render(strings.Repeat(" ", l.pad)+l.prefix) +
		st.pivot.Render(l.pivot) +
		st.word.Render(l.suffix+strings.Repeat(" ", max(trailing, 0)))

	rows := make([]string, 0, 3+2*m.gap)
	rows = append(rows, tick)
	for i := 0; i < m.gap; i++ {
		rows = append(rows, blank)
	}
	rows = append(rows, word)
	for i := 0; i < m.gap; i++ {
		rows = append(rows, blank)
	}
	rows = append(rows, tick)
	return strings.Join(rows, "\n")
}
