package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuiread/internal/rsvp"
)

// timerMsg fires the task armed under id.
type timerMsg struct {
	id uint64
}

// teaScheduler arms callbacks as tea.Tick commands and runs them from
// Update, so the session and the idle watcher never leave the UI goroutine.
type teaScheduler struct {
	next  uint64
	tasks map[uint64]func()
	cmds  []tea.Cmd
}

func newTeaScheduler() *teaScheduler {
	return &teaScheduler{tasks: map[uint64]func(){}}
}

type teaTask struct {
	sched *teaScheduler
	id    uint64
}

func (t teaTask) Cancel() {
	delete(t.sched.tasks, t.id)
}

// AfterFunc implements rsvp.Scheduler.
func (s *teaScheduler) AfterFunc(d time.Duration, fn func()) rsvp.Task {
	s.next++
	id := s.next
	s.tasks[id] = fn
	s.cmds = append(s.cmds, tea.Tick(d, func(time.Time) tea.Msg {
		return timerMsg{id: id}
	}))
	return teaTask{sched: s, id: id}
}

// fire runs the task for id. Cancelled ids are ignored.
func (s *teaScheduler) fire(id uint64) {
	fn, ok := s.tasks[id]
	if !ok {
		return
	}
	delete(s.tasks, id)
	fn()
}

// pending reports how many tasks are armed and not cancelled.
func (s *teaScheduler) pending() int {
	return len(s.tasks)
}

// flush returns the commands armed since the previous flush.
func (s *teaScheduler) flush() tea.Cmd {
	if len(s.cmds) == 0 {
		return nil
	}
	cmds := s.cmds
	s.cmds = nil
	return tea.Batch(cmds...)
}
