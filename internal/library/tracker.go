package library

import (
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/rsvp"
)

// Tracker turns playback transitions into reading session records. Only
// playback advances count as words read; skips and seeks move the cursor
// without adding to the span.
type Tracker struct {
	documentID string
	rate       func() int
	now        func() time.Time
	record     func(model.ReadingSession)

	active      bool
	startedAt   time.Time
	startCursor int
	words       int
}

// NewTracker reports finished spans of documentID to record. rate is read
// when a span ends.
func NewTracker(documentID string, rate func() int, record func(model.ReadingSession)) *Tracker {
	return &Tracker{documentID: documentID, rate: rate, now: time.Now, record: record}
}

// Observe is an rsvp.StateObserver.
func (t *Tracker) Observe(state rsvp.State, cursor int) {
	if state == rsvp.Running {
		if !t.active {
			t.active = true
			t.startedAt = t.now()
			t.startCursor = cursor
			t.words = 0
		}
		return
	}
	t.finish(cursor)
}

// Advance is an rsvp.TickObserver.
func (t *Tracker) Advance(int) {
	if t.active {
		t.words++
	}
}

// Finish closes an open span, e.g. when the reader quits mid-playback.
func (t *Tracker) Finish(cursor int) {
	t.finish(cursor)
}

func (t *Tracker) finish(cursor int) {
	if !t.active {
		return
	}
	t.active = false
	words := t.words
	if words <= 0 {
		return
	}
	ended := t.now()
	t.record(model.ReadingSession{
		ID:          uuid.NewString(),
		DocumentID:  t.documentID,
		StartedAt:   t.startedAt,
		EndedAt:     ended,
		StartCursor: t.startCursor,
		EndCursor:   cursor,
		WordsRead:   words,
		WPM:         t.rate(),
		DurationMs:  ended.Sub(t.startedAt).Milliseconds(),
	})
}
