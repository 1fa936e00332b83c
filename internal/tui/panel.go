package tui

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/verte-zerg/tuiread/internal/assist"
)

const (
	summaryBefore = 120
	summaryAfter  = 40
	defineContext = 12
	maxPanelRows  = 8
	maxPanelWidth = 72
)

// assistMsg carries the answer of request id.
type assistMsg struct {
	id   int
	text string
	err  error
}

// panel shows summarize and define answers. Every request gets a new id;
// closing the panel bumps it too, so answers that arrive late are dropped.
type panel struct {
	open    bool
	loading bool
	failed  bool
	id      int
	title   string
	text    string
	cancel  context.CancelFunc

	vp   viewport.Model
	spin spinner.Model
}

func newPanel() panel {
	vp := viewport.New(0, 0)
	vp.KeyMap = viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
	}
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	return panel{vp: vp, spin: spin}
}

var clipboardWrite = clipboard.WriteAll

func (m *Model) requestSummary() tea.Cmd {
	passage := m.session.Context(summaryBefore, summaryAfter)
	if passage == "" {
		m.status = "Nothing to summarize."
		return nil
	}
	svc := m.assist
	return m.requestAssist("Summary", func(ctx context.Context) (string, error) {
		return svc.Summarize(ctx, passage)
	})
}

func (m *Model) requestDefinition() tea.Cmd {
	word := trimWord(m.session.Current())
	if word == "" {
		m.status = "Nothing to define."
		return nil
	}
	passage := m.session.Context(defineContext, defineContext)
	svc := m.assist
	return m.requestAssist("Define: "+word, func(ctx context.Context) (string, error) {
		return svc.Define(ctx, word, passage)
	})
}

func (m *Model) requestAssist(title string, call func(ctx context.Context) (string, error)) tea.Cmd {
	m.closePanel()
	ctx, cancel := context.WithCancel(m.ctx)
	id := m.panel.id
	m.panel.open = true
	m.panel.loading = true
	m.panel.title = title
	m.panel.cancel = cancel
	m.layoutPanel()
	return tea.Batch(m.panel.spin.Tick, func() tea.Msg {
		text, err := call(ctx)
		return assistMsg{id: id, text: text, err: err}
	})
}

func (m *Model) finishAssist(msg assistMsg) {
	if !m.panel.open || msg.id != m.panel.id {
		return
	}
	if m.panel.cancel != nil {
		m.panel.cancel()
		m.panel.cancel = nil
	}
	m.panel.loading = false
	m.panel.failed = msg.err != nil
	if msg.err != nil {
		m.panel.text = assist.Placeholder(msg.err)
	} else {
		m.panel.text = msg.text
	}
	m.layoutPanel()
}

func (m *Model) closePanel() {
	if m.panel.cancel != nil {
		m.panel.cancel()
		m.panel.cancel = nil
	}
	m.panel.id++
	m.panel.open = false
	m.panel.loading = false
	m.panel.failed = false
	m.panel.title = ""
	m.panel.text = ""
	m.panel.vp.SetContent("")
}

func (m *Model) copyPanel() {
	if !m.panel.open || m.panel.loading || m.panel.failed || m.panel.text == "" {
		m.status = "Nothing to copy."
		return
	}
	if err := clipboardWrite(m.panel.text); err != nil {
		m.status = fmt.Sprintf("Clipboard copy failed: %v", err)
		return
	}
	m.status = "Answer copied to clipboard."
}

func (m *Model) layoutPanel() {
	width := panelWidth(m.width)
	body := wordwrap.String(m.panel.text, width)
	m.panel.vp.Width = width
	m.panel.vp.Height = min(max(lipgloss.Height(body), 1), maxPanelRows)
	m.panel.vp.SetContent(body)
	m.panel.vp.GotoTop()
}

func (m *Model) panelView() string {
	body := m.panel.vp.View()
	if m.panel.loading {
		body = m.panel.spin.View() + " Waiting for answer..."
	}
	return m.styles.panel.Render(m.styles.title.Render(m.panel.title) + "\n" + body)
}

// panelWidth is the text width inside the panel border and padding.
func panelWidth(total int) int {
	width := total - 4
	if width > maxPanelWidth {
		width = maxPanelWidth
	}
	if width < 10 {
		width = 10
	}
	return width
}

// trimWord strips surrounding punctuation so "whale," is defined as "whale".
func trimWord(word string) string {
	trimmed := strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	if trimmed == "" {
		return word
	}
	return trimmed
}
