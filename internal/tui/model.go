// Package tui provides the Bubble Tea reading interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuiread/internal/assist"
	"github.com/verte-zerg/tuiread/internal/config"
	"github.com/verte-zerg/tuiread/internal/idle"
	"github.com/verte-zerg/tuiread/internal/library"
	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/rsvp"
)

const rateStep = 25

// Saver receives reading state without blocking the UI.
type Saver interface {
	Save(pos model.Position)
	Record(r model.ReadingSession)
}

type discardSaver struct{}

func (discardSaver) Save(model.Position)         {}
func (discardSaver) Record(model.ReadingSession) {}

// Options configures a reader Model.
type Options struct {
	Document model.Document
	Tokens   []string
	Start    int
	Config   model.Config
	Assist   assist.Service
	Saver    Saver
	// ConfigPath enables hot reload of the [reader] section when set.
	ConfigPath string
	// Pinned lists [reader] keys set on the command line. Reloads leave
	// them alone.
	Pinned []string
}

// StatusMsg replaces the status line text.
type StatusMsg string

type configMsg struct {
	cfg config.FileConfig
	err error
}

// Model implements the Bubble Tea reader UI.
type Model struct {
	doc        model.Document
	cfg        model.Config
	session    *rsvp.Session
	sched      *teaScheduler
	idle       *idle.Watcher
	tracker    *library.Tracker
	saver      Saver
	assist     assist.Service
	configPath string
	pinned     []string
	reloads    chan configMsg

	ctx    context.Context
	cancel context.CancelFunc

	styles  styles
	metrics sizeMetrics
	keys    keyMap
	help    help.Model
	bar     progress.Model
	panel   panel

	width    int
	height   int
	status   string
	zen      bool
	quitting bool
}

// NewModel constructs a paused reader positioned at opts.Start.
func NewModel(opts Options) *Model {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		doc:        opts.Document,
		cfg:        opts.Config,
		sched:      newTeaScheduler(),
		saver:      opts.Saver,
		assist:     opts.Assist,
		configPath: opts.ConfigPath,
		pinned:     opts.Pinned,
		ctx:        ctx,
		cancel:     cancel,
		keys:       defaultKeyMap(),
		help:       help.New(),
		panel:      newPanel(),
	}
	if m.saver == nil {
		m.saver = discardSaver{}
	}
	if m.assist == nil {
		m.assist = assist.Disabled{}
	}
	if m.cfg.SkipWords <= 0 {
		m.cfg.SkipWords = 1
	}

	m.tracker = library.NewTracker(m.doc.ID, func() int { return m.session.Rate() }, m.saver.Record)
	m.session = rsvp.NewSession(m.doc.ID, opts.Tokens, opts.Start, m.cfg.WPM, m.sched,
		rsvp.WithPositionObserver(m.onPosition),
		rsvp.WithStateObserver(m.tracker.Observe),
		rsvp.WithTickObserver(m.tracker.Advance),
		rsvp.WithStateObserver(m.onState),
	)
	m.cfg.WPM = m.session.Rate()

	m.idle = idle.New(m.sched, m.cfg.ZenTimeout)
	m.idle.OnIdle = func() { m.zen = true }
	m.idle.OnActive = func() { m.zen = false }

	m.applyDisplay()
	if m.session.Len() == 0 {
		m.status = "Document has no words."
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	m.idle.Activity()
	cmds := []tea.Cmd{m.sched.flush()}
	if m.configPath != "" {
		m.reloads = make(chan configMsg, 1)
		cmds = append(cmds, m.watchConfig(), m.waitConfig())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	return m, tea.Batch(cmd, m.sched.flush())
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return nil
	case timerMsg:
		m.sched.fire(msg.id)
		return nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case assistMsg:
		m.finishAssist(msg)
		return nil
	case spinner.TickMsg:
		if !m.panel.loading {
			return nil
		}
		var cmd tea.Cmd
		m.panel.spin, cmd = m.panel.spin.Update(msg)
		return cmd
	case configMsg:
		m.applyReload(msg)
		return m.waitConfig()
	case StatusMsg:
		m.status = string(msg)
		return nil
	default:
		return nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	m.idle.Activity()
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.shutdown()
		return tea.Quit
	case key.Matches(msg, m.keys.Play):
		m.status = ""
		m.session.TogglePlay()
	case key.Matches(msg, m.keys.Back):
		m.session.Skip(-m.cfg.SkipWords)
	case key.Matches(msg, m.keys.Forward):
		m.session.Skip(m.cfg.SkipWords)
	case key.Matches(msg, m.keys.Faster):
		m.setRate(m.session.Rate() + rateStep)
	case key.Matches(msg, m.keys.Slower):
		m.setRate(m.session.Rate() - rateStep)
	case key.Matches(msg, m.keys.Reset):
		m.status = ""
		m.session.Reset()
	case key.Matches(msg, m.keys.Summarize):
		return m.requestSummary()
	case key.Matches(msg, m.keys.Define):
		return m.requestDefinition()
	case key.Matches(msg, m.keys.Copy):
		m.copyPanel()
	case key.Matches(msg, m.keys.Dismiss):
		m.closePanel()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	default:
		if m.panel.open && !m.panel.loading {
			var cmd tea.Cmd
			m.panel.vp, cmd = m.panel.vp.Update(msg)
			return cmd
		}
	}
	return nil
}

func (m *Model) setRate(wpm int) {
	got := m.session.SetRate(wpm)
	if got != wpm {
		m.status = fmt.Sprintf("Rate limited to %d-%d WPM.", rsvp.MinWPM, rsvp.MaxWPM)
	} else {
		m.status = ""
	}
	m.cfg.WPM = got
	m.saver.Save(m.position())
}

func (m *Model) onPosition(string, int) {
	m.saver.Save(m.position())
}

func (m *Model) onState(state rsvp.State, _ int) {
	if state == rsvp.Paused && m.session.AtEnd() {
		m.status = "End of document. Press r to read again."
	}
}

func (m *Model) position() model.Position {
	return model.Position{
		DocumentID: m.doc.ID,
		Cursor:     m.session.Cursor(),
		WPM:        m.session.Rate(),
		Display:    m.cfg.Display,
		UpdatedAt:  time.Now(),
	}
}

// shutdown stops playback and hands the final state to the saver.
func (m *Model) shutdown() {
	if m.quitting {
		return
	}
	m.quitting = true
	m.session.Close()
	m.idle.Stop()
	m.closePanel()
	m.saver.Save(m.position())
	m.cancel()
}

func (m *Model) applyDisplay() {
	m.styles = newStyles(m.cfg.Display)
	m.metrics = metricsFor(m.cfg.Display.FontSize)
	width := m.bar.Width
	m.bar = progress.New(
		progress.WithSolidFill(string(m.styles.palette.pivot)),
		progress.WithoutPercentage(),
	)
	if width > 0 {
		m.bar.Width = width
	}
	m.help.Styles.ShortKey = m.styles.footer.Bold(true)
	m.help.Styles.ShortDesc = m.styles.footer
	m.help.Styles.ShortSeparator = m.styles.footer
	m.help.Styles.FullKey = m.styles.footer.Bold(true)
	m.help.Styles.FullDesc = m.styles.footer
	m.help.Styles.FullSeparator = m.styles.footer
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
	m.bar.Width = max(width-4, 10)
	if m.panel.open {
		m.layoutPanel()
	}
}

func (m *Model) watchConfig() tea.Cmd {
	ctx, path, out := m.ctx, m.configPath, m.reloads
	return func() tea.Msg {
		err := config.Watch(ctx, path, func(cfg config.FileConfig, err error) {
			select {
			case out <- configMsg{cfg: cfg, err: err}:
			case <-ctx.Done():
			}
		})
		if err != nil && ctx.Err() == nil {
			return StatusMsg(fmt.Sprintf("Config watch stopped: %v", err))
		}
		return nil
	}
}

func (m *Model) waitConfig() tea.Cmd {
	if m.reloads == nil {
		return nil
	}
	ctx, in := m.ctx, m.reloads
	return func() tea.Msg {
		select {
		case msg := <-in:
			return msg
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *Model) applyReload(msg configMsg) {
	if msg.err != nil {
		m.status = fmt.Sprintf("Config reload failed: %v", msg.err)
		return
	}
	next := m.cfg
	warnings, err := config.ApplyReader(msg.cfg.Reader.Without(m.pinned...), &next)
	if err != nil {
		m.status = fmt.Sprintf("Config reload failed: %v", err)
		return
	}
	zenChanged := next.ZenTimeout != m.cfg.ZenTimeout
	m.cfg = next
	m.cfg.WPM = m.session.SetRate(next.WPM)
	if zenChanged {
		m.idle.SetTimeout(next.ZenTimeout)
	}
	m.applyDisplay()
	if m.panel.open {
		m.layoutPanel()
	}
	m.saver.Save(m.position())
	m.status = strings.Join(append([]string{"Config reloaded."}, warnings...), " ")
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return m.session.Current()
	}
	word := renderWord(m.session.ORP(), m.styles, m.metrics, m.width)

	var bottom []string
	if m.panel.open {
		bottom = append(bottom, lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.panelView(),
			lipgloss.WithWhitespaceBackground(m.styles.palette.bg)))
	}
	if !m.zen {
		bottom = append(bottom, m.renderFooter())
	}
	tail := strings.Join(bottom, "\n")
	bodyHeight := m.height - lipgloss.Height(tail)
	if tail == "" {
		bodyHeight = m.height
	}
	if bodyHeight < lipgloss.Height(word) {
		bodyHeight = lipgloss.Height(word)
	}
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Left, lipgloss.Center, word,
		lipgloss.WithWhitespaceBackground(m.styles.palette.bg))
	if tail == "" {
		return body
	}
	return body + "\n" + tail
}

func (m *Model) renderFooter() string {
	state := "paused"
	if m.session.Running() {
		state = "reading"
	}
	index := 0
	if m.session.Len() > 0 {
		index = m.session.Cursor() + 1
	}
	segments := []string{
		state,
		fmt.Sprintf("word %d/%d", index, m.session.Len()),
		fmt.Sprintf("%d WPM", m.session.Rate()),
		formatRemaining(m.session.Remaining()) + " left",
	}
	if m.doc.Title != "" {
		segments = append([]string{m.doc.Title}, segments...)
	}
	lines := []string{
		lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.bar.ViewAs(m.session.Progress())),
		lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.styles.footer.Render(strings.Join(segments, "  ·  "))),
	}
	if m.status != "" {
		lines = append(lines, lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.styles.status.Render(m.status)))
	}
	lines = append(lines, lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.help.View(m.keys)))
	return strings.Join(lines, "\n")
}

func formatRemaining(d time.Duration) string {
	d = d.Round(time.Second)
	if d >= time.Hour {
		return fmt.Sprintf("%dh%02dm", int(d/time.Hour), int(d%time.Hour/time.Minute))
	}
	return fmt.Sprintf("%d:%02d", int(d/time.Minute), int(d%time.Minute/time.Second))
}
