package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuiread/internal/model"
)

func TestRenderFooterFormats(t *testing.T) {
	m := NewModel(Options{
		Document: model.Document{ID: "doc", Title: "Walden"},
		Tokens:   strings.Fields("one two three four five six seven eight nine ten"),
		Start:    2,
		Config:   model.Config{WPM: 300, SkipWords: 5},
	})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	out := m.renderFooter()
	if out == "" {
		t.Fatalf("expected footer output")
	}
	if !containsAll(out, []string{"Walden", "paused", "word 3/10", "300 WPM", "0:01 left"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func TestRenderFooterEmptyDocument(t *testing.T) {
	m := NewModel(Options{Document: model.Document{ID: "empty"}, Config: model.Config{WPM: 300}})
	out := m.renderFooter()
	if !containsAll(out, []string{"word 0/0", "0:00 left", "Document has no words."}) {
		t.Fatalf("unexpected footer for empty document: %s", out)
	}
}

func TestFormatRemaining(t *testing.T) {
	cases := map[string]string{
		"0:00":  formatRemaining(0),
		"0:59":  formatRemaining(59 * 1e9),
		"12:05": formatRemaining(725 * 1e9),
		"1h02m": formatRemaining(3720 * 1e9),
	}
	for want, got := range cases {
		if got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
