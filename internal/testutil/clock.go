// Package testutil provides deterministic helpers for tests.
package testutil

import (
	"sort"
	"time"

	"github.com/verte-zerg/tuiread/internal/rsvp"
)

// FakeScheduler is a virtual clock implementing rsvp.Scheduler.
// Callbacks only run inside Advance, in due-time order (ties by arm order).
type FakeScheduler struct {
	now   time.Duration
	seq   int
	tasks []*fakeTask
}

type fakeTask struct {
	at    time.Duration
	seq   int
	fn    func()
	sched *FakeScheduler
}

func (t *fakeTask) Cancel() {
	t.sched.remove(t)
}

// NewFakeScheduler returns a scheduler at virtual time 0.
func NewFakeScheduler() *FakeScheduler {
	return &FakeScheduler{}
}

// AfterFunc implements rsvp.Scheduler.
func (f *FakeScheduler) AfterFunc(d time.Duration, fn func()) rsvp.Task {
	f.seq++
	t := &fakeTask{at: f.now + d, seq: f.seq, fn: fn, sched: f}
	f.tasks = append(f.tasks, t)
	return t
}

// Now returns the elapsed virtual time.
func (f *FakeScheduler) Now() time.Duration {
	return f.now
}

// Pending returns the number of armed, uncancelled callbacks.
func (f *FakeScheduler) Pending() int {
	return len(f.tasks)
}

// Advance moves the clock forward by d, running every callback that comes due.
// Callbacks armed while advancing run too if they fall inside the window.
func (f *FakeScheduler) Advance(d time.Duration) {
	target := f.now + d
	for {
		next := f.nextDue(target)
		if next == nil {
			break
		}
		f.remove(next)
		f.now = next.at
		next.fn()
	}
	f.now = target
}

func (f *FakeScheduler) nextDue(target time.Duration) *fakeTask {
	if len(f.tasks) == 0 {
		return nil
	}
	sort.SliceStable(f.tasks, func(i, j int) bool {
		if f.tasks[i].at == f.tasks[j].at {
			return f.tasks[i].seq < f.tasks[j].seq
		}
		return f.tasks[i].at < f.tasks[j].at
	})
	if f.tasks[0].at > target {
		return nil
	}
	return f.tasks[0]
}

func (f *FakeScheduler) remove(t *fakeTask) {
	for i, item := range f.tasks {
		if item == t {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return
		}
	}
}
