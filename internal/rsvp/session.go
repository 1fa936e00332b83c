package rsvp

import (
	"strings"
	"time"
)

// Rate bounds in words per minute.
const (
	MinWPM     = 100
	MaxWPM     = 1500
	DefaultWPM = 300
)

// State is the playback state of a Session.
type State int

const (
	Paused State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "paused"
}

// PositionObserver receives every cursor change of a document session.
type PositionObserver func(documentID string, cursor int)

// StateObserver receives every Running/Paused transition.
type StateObserver func(state State, cursor int)

// TickObserver receives the cursor after each playback advance. Skips and
// seeks are not reported.
type TickObserver func(cursor int)

// Option configures a Session.
type Option func(*Session)

// WithPositionObserver registers a cursor observer.
func WithPositionObserver(fn PositionObserver) Option {
	return func(s *Session) {
		s.positionObservers = append(s.positionObservers, fn)
	}
}

// WithStateObserver registers a playback state observer.
func WithStateObserver(fn StateObserver) Option {
	return func(s *Session) {
		s.stateObservers = append(s.stateObservers, fn)
	}
}

// WithTickObserver registers an observer of playback advances.
func WithTickObserver(fn TickObserver) Option {
	return func(s *Session) {
		s.tickObservers = append(s.tickObservers, fn)
	}
}

// Session is a document's token sequence with its cursor and playback state.
// It is not safe for concurrent use; all calls, including scheduled ticks,
// must happen on one goroutine.
type Session struct {
	documentID string
	tokens     []string
	cursor     int
	running    bool
	wpm        int

	sched   Scheduler
	pending Task

	positionObservers []PositionObserver
	stateObservers    []StateObserver
	tickObservers     []TickObserver
}

// NewSession creates a paused session. The start cursor and rate are clamped.
func NewSession(documentID string, tokens []string, start, wpm int, sched Scheduler, opts ...Option) *Session {
	s := &Session{
		documentID: documentID,
		tokens:     tokens,
		wpm:        ClampRate(wpm),
		sched:      sched,
	}
	s.cursor = s.clampIndex(start)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ClampRate bounds wpm to [MinWPM, MaxWPM].
func ClampRate(wpm int) int {
	if wpm < MinWPM {
		return MinWPM
	}
	if wpm > MaxWPM {
		return MaxWPM
	}
	return wpm
}

// IntervalFor returns the tick interval for a rate.
func IntervalFor(wpm int) time.Duration {
	return time.Minute / time.Duration(ClampRate(wpm))
}

// DocumentID returns the id passed to observers.
func (s *Session) DocumentID() string { return s.documentID }

// Len returns the number of tokens.
func (s *Session) Len() int { return len(s.tokens) }

// Cursor returns the index of the displayed token.
func (s *Session) Cursor() int { return s.cursor }

// Running reports whether playback is active.
func (s *Session) Running() bool { return s.running }

// State returns the playback state.
func (s *Session) State() State {
	if s.running {
		return Running
	}
	return Paused
}

// Rate returns the current rate in words per minute.
func (s *Session) Rate() int { return s.wpm }

// Interval returns the delay the next armed tick will use.
func (s *Session) Interval() time.Duration { return IntervalFor(s.wpm) }

// Current returns the displayed token, or "" for an empty document.
func (s *Session) Current() string {
	if len(s.tokens) == 0 {
		return ""
	}
	return s.tokens[s.cursor]
}

// ORP returns the fixed-point split of the displayed token.
func (s *Session) ORP() ORP {
	return ComputeORP(s.Current())
}

// AtEnd reports whether the cursor is on the last token.
func (s *Session) AtEnd() bool {
	return len(s.tokens) > 0 && s.cursor >= len(s.tokens)-1
}

// Progress returns the reading progress in [0, 1].
func (s *Session) Progress() float64 {
	switch len(s.tokens) {
	case 0:
		return 0
	case 1:
		return 1
	}
	return float64(s.cursor) / float64(len(s.tokens)-1)
}

// Remaining estimates the time left to reach the last token at the current rate.
func (s *Session) Remaining() time.Duration {
	if len(s.tokens) == 0 {
		return 0
	}
	left := len(s.tokens) - 1 - s.cursor
	return time.Duration(left) * s.Interval()
}

// Context returns up to before tokens preceding the cursor and after tokens
// following it, including the current token, joined by spaces.
func (s *Session) Context(before, after int) string {
	if len(s.tokens) == 0 {
		return ""
	}
	from := s.clampIndex(s.cursor - before)
	to := s.clampIndex(s.cursor + after)
	return strings.Join(s.tokens[from:to+1], " ")
}

// TogglePlay switches between Running and Paused.
func (s *Session) TogglePlay() {
	if s.running {
		s.Pause()
		return
	}
	s.Play()
}

// Play enters Running and arms the first tick. Empty documents stay Paused.
func (s *Session) Play() {
	if s.running || len(s.tokens) == 0 {
		return
	}
	s.running = true
	s.notifyState()
	s.arm()
}

// Pause enters Paused and cancels any pending tick.
func (s *Session) Pause() {
	if !s.running {
		return
	}
	s.cancel()
	s.running = false
	s.notifyState()
}

// Skip moves the cursor by delta, clamped to the document bounds.
func (s *Session) Skip(delta int) {
	if len(s.tokens) == 0 {
		return
	}
	s.Seek(s.cursor + delta)
}

// Seek moves the cursor to index, clamped to the document bounds.
func (s *Session) Seek(index int) {
	if len(s.tokens) == 0 {
		return
	}
	s.setCursor(s.clampIndex(index))
}

// Reset moves the cursor to the first token and pauses.
func (s *Session) Reset() {
	s.Pause()
	if len(s.tokens) == 0 {
		return
	}
	s.setCursor(0)
}

// SetRate changes the rate and returns the clamped value. A tick already
// armed keeps its delay; the new rate applies from the next one.
func (s *Session) SetRate(wpm int) int {
	s.wpm = ClampRate(wpm)
	return s.wpm
}

// Close pauses the session and releases its pending tick.
func (s *Session) Close() {
	s.Pause()
}

func (s *Session) tick() {
	s.pending = nil
	if !s.running {
		return
	}
	if s.cursor >= len(s.tokens)-1 {
		s.running = false
		s.notifyState()
		return
	}
	s.setCursor(s.cursor + 1)
	for _, fn := range s.tickObservers {
		fn(s.cursor)
	}
	s.arm()
}

func (s *Session) arm() {
	s.cancel()
	if !s.running {
		return
	}
	s.pending = s.sched.AfterFunc(s.Interval(), s.tick)
}

func (s *Session) cancel() {
	if s.pending != nil {
		s.pending.Cancel()
		s.pending = nil
	}
}

func (s *Session) setCursor(cursor int) {
	s.cursor = cursor
	for _, fn := range s.positionObservers {
		fn(s.documentID, cursor)
	}
}

func (s *Session) notifyState() {
	state := s.State()
	for _, fn := range s.stateObservers {
		fn(state, s.cursor)
	}
}

func (s *Session) clampIndex(i int) int {
	if len(s.tokens) == 0 || i < 0 {
		return 0
	}
	if i > len(s.tokens)-1 {
		return len(s.tokens) - 1
	}
	return i
}
