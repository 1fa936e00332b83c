// Package idle reports when an activity source has gone quiet.
package idle

import (
	"time"

	"github.com/verte-zerg/tuiread/internal/rsvp"
)

// Watcher fires OnIdle after Timeout without Activity, and OnActive on the
// first activity after going idle. It shares the caller's scheduler, so the
// callbacks run on the same goroutine as the rest of the UI.
type Watcher struct {
	Timeout  time.Duration
	OnIdle   func()
	OnActive func()

	sched   rsvp.Scheduler
	pending rsvp.Task
	idle    bool
}

// New returns a stopped watcher. A zero timeout disables it.
func New(sched rsvp.Scheduler, timeout time.Duration) *Watcher {
	return &Watcher{Timeout: timeout, sched: sched}
}

// Idle reports whether the timeout elapsed since the last activity.
func (w *Watcher) Idle() bool { return w.idle }

// Activity records an activity event and restarts the countdown.
func (w *Watcher) Activity() {
	if w.idle {
		w.idle = false
		if w.OnActive != nil {
			w.OnActive()
		}
	}
	w.arm()
}

// SetTimeout changes the timeout and restarts the countdown.
func (w *Watcher) SetTimeout(timeout time.Duration) {
	w.Timeout = timeout
	w.Activity()
}

// Stop cancels the countdown without changing the idle flag.
func (w *Watcher) Stop() {
	if w.pending != nil {
		w.pending.Cancel()
		w.pending = nil
	}
}

func (w *Watcher) arm() {
	w.Stop()
	if w.Timeout <= 0 {
		return
	}
	w.pending = w.sched.AfterFunc(w.Timeout, w.fire)
}

func (w *Watcher) fire() {
	w.pending = nil
	if w.idle {
		return
	}
	w.idle = true
	if w.OnIdle != nil {
		w.OnIdle()
	}
}
