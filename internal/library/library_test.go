package library

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/tuiread/internal/extract"
	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/rsvp"
	"github.com/verte-zerg/tuiread/internal/store"
	"github.com/verte-zerg/tuiread/internal/testutil"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "tuiread.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return NewService(st), st
}

func writeText(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestOpenNewDocumentHasNoPosition(t *testing.T) {
	svc, _ := newTestService(t)
	path := writeText(t, t.TempDir(), "fox.txt", "The quick  brown\nfox.")

	opened, err := svc.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if opened.HasPosition {
		t.Fatalf("expected no stored position")
	}
	if opened.Position.DocumentID != opened.Document.ID {
		t.Fatalf("position not bound to document")
	}
	if len(opened.Tokens) != 4 || opened.Document.WordCount != 4 {
		t.Fatalf("unexpected tokens %v", opened.Tokens)
	}
	if opened.Document.Title != "fox" {
		t.Fatalf("unexpected title %q", opened.Document.Title)
	}
}

func TestReimportKeepsIDAndPosition(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	dir := t.TempDir()
	first := writeText(t, dir, "a.txt", "one two three")
	// Same words, different spacing and file.
	second := writeText(t, dir, "b.txt", "one\n\ntwo   three\n")

	opened, err := svc.Open(ctx, first)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := st.SavePosition(ctx, model.Position{DocumentID: opened.Document.ID, Cursor: 2, WPM: 400}); err != nil {
		t.Fatalf("save position: %v", err)
	}

	again, err := svc.Open(ctx, second)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if again.Document.ID != opened.Document.ID {
		t.Fatalf("expected stable id, got %s and %s", opened.Document.ID, again.Document.ID)
	}
	if !again.HasPosition || again.Position.Cursor != 2 || again.Position.WPM != 400 {
		t.Fatalf("unexpected position %+v", again.Position)
	}
}

func TestResume(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Resume(ctx); !errors.Is(err, ErrEmptyLibrary) {
		t.Fatalf("expected ErrEmptyLibrary, got %v", err)
	}

	clock := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	dir := t.TempDir()
	if _, err := svc.Import(ctx, writeText(t, dir, "old.txt", "old words")); err != nil {
		t.Fatalf("import old: %v", err)
	}
	clock = clock.Add(time.Hour)
	if _, err := svc.Import(ctx, writeText(t, dir, "new.txt", "new words")); err != nil {
		t.Fatalf("import new: %v", err)
	}

	opened, err := svc.Resume(ctx)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if opened.Document.Title != "new" {
		t.Fatalf("expected the latest document, got %q", opened.Document.Title)
	}
}

func TestImportPropagatesExtractErrors(t *testing.T) {
	svc, _ := newTestService(t)
	path := writeText(t, t.TempDir(), "deck.pptx", "binary")
	if _, err := svc.Import(context.Background(), path); !errors.Is(err, extract.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestTrackerRecordsSpans(t *testing.T) {
	var got []model.ReadingSession
	tr := NewTracker("doc", func() int { return 300 }, func(r model.ReadingSession) {
		got = append(got, r)
	})
	clock := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return clock }

	tr.Observe(rsvp.Running, 10)
	for c := 11; c <= 160; c++ {
		tr.Advance(c)
	}
	clock = clock.Add(30 * time.Second)
	tr.Observe(rsvp.Paused, 160)

	// A span with no words read is dropped.
	tr.Observe(rsvp.Running, 160)
	tr.Observe(rsvp.Paused, 160)

	tr.Observe(rsvp.Running, 160)
	for c := 161; c <= 170; c++ {
		tr.Advance(c)
	}
	clock = clock.Add(2 * time.Second)
	tr.Finish(170)
	tr.Finish(180)

	if len(got) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(got))
	}
	first := got[0]
	if first.DocumentID != "doc" || first.StartCursor != 10 || first.EndCursor != 160 ||
		first.WordsRead != 150 || first.DurationMs != 30000 || first.WPM != 300 {
		t.Fatalf("unexpected session %+v", first)
	}
	if first.ID == "" || first.ID == got[1].ID {
		t.Fatalf("expected distinct ids, got %q and %q", first.ID, got[1].ID)
	}
	if got[1].WordsRead != 10 {
		t.Fatalf("unexpected second session %+v", got[1])
	}
}

func TestTrackerIgnoresSkipsDuringPlayback(t *testing.T) {
	var got []model.ReadingSession
	tr := NewTracker("doc", func() int { return 300 }, func(r model.ReadingSession) {
		got = append(got, r)
	})
	sched := testutil.NewFakeScheduler()
	s := rsvp.NewSession("doc", make([]string, 1000), 0, 300, sched,
		rsvp.WithStateObserver(tr.Observe),
		rsvp.WithTickObserver(tr.Advance),
	)

	s.Play()
	sched.Advance(s.Interval())
	s.Skip(500)
	s.Skip(-20)
	sched.Advance(s.Interval())
	s.Pause()

	if len(got) != 1 {
		t.Fatalf("expected 1 session, got %d", len(got))
	}
	if got[0].WordsRead != 2 || got[0].StartCursor != 0 || got[0].EndCursor != 482 {
		t.Fatalf("unexpected session %+v", got[0])
	}

	// Skipping while running with no playback advance records nothing.
	s.Play()
	s.Skip(100)
	s.Pause()
	if len(got) != 1 {
		t.Fatalf("expected skip-only span to be dropped, got %d sessions", len(got))
	}
}
