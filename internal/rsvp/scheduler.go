package rsvp

import (
	"context"
	"time"
)

// Task is a pending one-shot callback.
type Task interface {
	// Cancel prevents the callback from running. Calling it more than once,
	// or after the callback ran, is a no-op.
	Cancel()
}

// Scheduler arms one-shot delayed callbacks. Implementations must run every
// callback on the same goroutine that drives the Session.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Task
}

// Loop is a real-time Scheduler that confines all callbacks to the goroutine
// running Run. Other goroutines hand work to it through Post.
type Loop struct {
	funcs chan func()
	done  chan struct{}
}

// NewLoop returns a Loop that is idle until Run is called.
func NewLoop() *Loop {
	return &Loop{
		funcs: make(chan func(), 16),
		done:  make(chan struct{}),
	}
}

type loopTask struct {
	timer     *time.Timer
	cancelled bool
}

func (t *loopTask) Cancel() {
	t.cancelled = true
	t.timer.Stop()
}

// AfterFunc implements Scheduler. It must be called from the loop goroutine.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Task {
	task := &loopTask{}
	task.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			// A timer that already fired can still be cancelled before its
			// callback reaches the loop.
			if task.cancelled {
				return
			}
			task.cancelled = true
			fn()
		})
	})
	return task
}

// Post queues fn to run on the loop goroutine. It is dropped once Run has
// returned.
func (l *Loop) Post(fn func()) {
	select {
	case l.funcs <- fn:
	case <-l.done:
	}
}

// Run executes posted callbacks until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.funcs:
			fn()
		}
	}
}
