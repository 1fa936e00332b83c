// Package libraryui provides the Bubble Tea library browser.
package libraryui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/stats"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	modalStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Library is the document store the browser lists and edits.
type Library interface {
	ListDocuments(ctx context.Context) ([]model.DocumentSummary, error)
	DeleteDocument(ctx context.Context, id string) error
}

// Model implements the Bubble Tea library browser. Enter picks the
// highlighted document and quits; Selected reports the pick.
type Model struct {
	lib Library

	docs    []model.DocumentSummary
	visible []model.DocumentSummary
	table   table.Model
	errMsg  string

	width  int
	height int

	filterMode bool
	filter     textinput.Model

	confirm  bool
	selected string
}

// NewModel constructs a browser and loads the library.
func NewModel(lib Library) *Model {
	m := &Model{lib: lib}
	m.filter = newFilterInput()
	m.table = buildTable(nil, 80, 10)
	m.refresh()
	return m
}

// Selected returns the ID of the picked document.
func (m *Model) Selected() (string, bool) {
	return m.selected, m.selected != ""
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.confirm {
			return m.updateConfirm(msg)
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit
		case "enter":
			if doc, ok := m.current(); ok {
				m.selected = doc.ID
				return m, tea.Quit
			}
			return m, nil
		case "/":
			m.filterMode = true
			return m, m.filter.Focus()
		case "x", "delete":
			if _, ok := m.current(); ok {
				m.confirm = true
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filter.SetValue("")
		m.filterMode = false
		m.filter.Blur()
		m.applyFilter()
		return m, nil
	case tea.KeyEnter:
		m.filterMode = false
		m.filter.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.confirm = false
	if msg.String() != "y" {
		return m, nil
	}
	doc, ok := m.current()
	if !ok {
		return m, nil
	}
	if err := m.lib.DeleteDocument(context.Background(), doc.ID); err != nil {
		m.errMsg = err.Error()
		return m, nil
	}
	m.refresh()
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.confirm {
		return fitLines(m.renderConfirm(), m.width, m.height)
	}
	footer := m.renderFooter()
	footerHeight := lipgloss.Height(footer)
	bodyHeight := max(m.height-1-footerHeight, 1)
	header := fitLines(m.renderHeader(), m.width, 1)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	return strings.Join([]string{header, body, fitLines(footer, m.width, footerHeight)}, "\n")
}

func (m *Model) renderHeader() string {
	summary := fmt.Sprintf("%d of %d documents", len(m.visible), len(m.docs))
	if value := m.filter.Value(); value != "" && !m.filterMode {
		summary += fmt.Sprintf("  filter=%q", value)
	}
	return titleStyle.Render("Library") + "  " + headerStyle.Render(summary)
}

func (m *Model) renderBody() string {
	switch {
	case m.errMsg != "" && len(m.docs) == 0:
		return "Failed to load library."
	case len(m.docs) == 0:
		return "Library is empty. Import a file with: tuiread import <file>"
	case len(m.visible) == 0:
		return "No documents match the filter."
	}
	return m.table.View()
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return m.filter.View() + "\n" + headerStyle.Render("enter: keep filter  esc: clear")
	}
	help := headerStyle.Render("Open: enter  Move: up/down  Filter: /  Forget: x  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderConfirm() string {
	doc, _ := m.current()
	text := fmt.Sprintf("Forget %q and its reading history?\n\n%s", displayTitle(doc), headerStyle.Render("y: forget  any other key: cancel"))
	box := modalStyle.Render(text)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) refresh() {
	docs, err := m.lib.ListDocuments(context.Background())
	if err != nil {
		m.errMsg = err.Error()
		m.docs = nil
		m.applyFilter()
		return
	}
	m.errMsg = ""
	m.docs = docs
	m.applyFilter()
}

func (m *Model) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	visible := make([]model.DocumentSummary, 0, len(m.docs))
	for _, doc := range m.docs {
		if query == "" ||
			strings.Contains(strings.ToLower(displayTitle(doc)), query) ||
			strings.HasPrefix(doc.ID, query) {
			visible = append(visible, doc)
		}
	}
	m.visible = visible
	m.table.SetRows(buildRows(m.visible))
	if m.table.Cursor() >= len(m.visible) {
		m.table.SetCursor(max(len(m.visible)-1, 0))
	}
}

func (m *Model) current() (model.DocumentSummary, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.visible) {
		return model.DocumentSummary{}, false
	}
	return m.visible[idx], true
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.table.SetColumns(buildColumns(m.width))
	m.table.SetWidth(m.width)
	m.table.SetHeight(max(m.height-4, 2))
	m.filter.Width = max(10, m.width-lipgloss.Width(m.filter.Prompt)-2)
}

func newFilterInput() textinput.Model {
	input := textinput.New()
	input.Prompt = "Filter: "
	input.Placeholder = "title or id"
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func buildTable(docs []model.DocumentSummary, width, height int) table.Model {
	t := table.New(
		table.WithColumns(buildColumns(width)),
		table.WithRows(buildRows(docs)),
		table.WithHeight(max(1, height)),
		table.WithFocused(true),
	)
	t.SetWidth(width)
	t.SetStyles(tableStyles())
	return t
}

func buildColumns(width int) []table.Column {
	const fixed = 12 + 9 + 9 + 16
	title := max(width-fixed-5*2, 12)
	return []table.Column{
		{Title: "ID", Width: 12},
		{Title: "Title", Width: title},
		{Title: "Words", Width: 9},
		{Title: "Progress", Width: 9},
		{Title: "Opened", Width: 16},
	}
}

func buildRows(docs []model.DocumentSummary) []table.Row {
	rows := make([]table.Row, 0, len(docs))
	for _, doc := range docs {
		opened := "-"
		if !doc.OpenedAt.IsZero() {
			opened = doc.OpenedAt.Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, table.Row{
			stats.ShortID(doc.ID),
			displayTitle(doc),
			fmt.Sprintf("%d", doc.WordCount),
			fmt.Sprintf("%.1f%%", doc.Progress()*100),
			opened,
		})
	}
	return rows
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func displayTitle(doc model.DocumentSummary) string {
	if doc.Title != "" {
		return doc.Title
	}
	if doc.SourcePath != "" {
		return filepath.Base(doc.SourcePath)
	}
	return stats.ShortID(doc.ID)
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}
