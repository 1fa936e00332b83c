package store

import (
	"context"
	"sync"

	"github.com/verte-zerg/tuiread/internal/model"
)

// Writer persists reading state.
type Writer interface {
	SavePosition(ctx context.Context, pos model.Position) error
	InsertReading(ctx context.Context, r model.ReadingSession) error
}

// Saver writes positions and reading sessions in the background so callers
// never wait on disk. Queued positions for the same document coalesce to the
// latest one; reading sessions are written in order.
type Saver struct {
	w       Writer
	onError func(error)

	mu       sync.Mutex
	pending  map[string]model.Position
	order    []string
	readings []model.ReadingSession
	closed   bool

	wake chan struct{}
	done chan struct{}
}

// NewSaver starts the background writer. onError may be nil.
func NewSaver(w Writer, onError func(error)) *Saver {
	s := &Saver{
		w:       w,
		onError: onError,
		pending: map[string]model.Position{},
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

// Save queues pos without blocking. Saves after Close are dropped.
func (s *Saver) Save(pos model.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if _, ok := s.pending[pos.DocumentID]; !ok {
		s.order = append(s.order, pos.DocumentID)
	}
	s.pending[pos.DocumentID] = pos
	s.signal()
}

// Record queues a finished reading session without blocking.
func (s *Saver) Record(r model.ReadingSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.readings = append(s.readings, r)
	s.signal()
}

// Close flushes everything queued and stops the writer.
func (s *Saver) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.wake)
	}
	s.mu.Unlock()
	<-s.done
}

// signal must be called with mu held.
func (s *Saver) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Saver) run() {
	defer close(s.done)
	for range s.wake {
		s.flush()
	}
	s.flush()
}

func (s *Saver) flush() {
	s.mu.Lock()
	positions := make([]model.Position, 0, len(s.order))
	for _, id := range s.order {
		positions = append(positions, s.pending[id])
	}
	readings := s.readings
	s.pending = map[string]model.Position{}
	s.order = nil
	s.readings = nil
	s.mu.Unlock()

	ctx := context.Background()
	for _, pos := range positions {
		s.report(s.w.SavePosition(ctx, pos))
	}
	for _, r := range readings {
		s.report(s.w.InsertReading(ctx, r))
	}
}

func (s *Saver) report(err error) {
	if err != nil && s.onError != nil {
		s.onError(err)
	}
}
