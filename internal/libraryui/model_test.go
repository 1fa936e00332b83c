package libraryui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuiread/internal/model"
)

type fakeLibrary struct {
	docs    []model.DocumentSummary
	listErr error
	deleted []string
}

func (f *fakeLibrary) ListDocuments(context.Context) ([]model.DocumentSummary, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.DocumentSummary(nil), f.docs...), nil
}

func (f *fakeLibrary) DeleteDocument(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	kept := f.docs[:0]
	for _, doc := range f.docs {
		if doc.ID != id {
			kept = append(kept, doc)
		}
	}
	f.docs = kept
	return nil
}

func testLibrary() *fakeLibrary {
	opened := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	return &fakeLibrary{docs: []model.DocumentSummary{
		{ID: "aaaa1111", Title: "Moby-Dick", WordCount: 100, Cursor: 33, OpenedAt: opened},
		{ID: "bbbb2222", Title: "Walden", WordCount: 10, Cursor: 9, OpenedAt: opened},
		{ID: "cccc3333", SourcePath: "/tmp/notes.md", WordCount: 5},
	}}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newSizedModel(lib Library) *Model {
	m := NewModel(lib)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	return m
}

func TestEnterSelectsHighlightedDocument(t *testing.T) {
	m := newSizedModel(testLibrary())
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	id, ok := m.Selected()
	if !ok || id != "bbbb2222" {
		t.Fatalf("expected bbbb2222, got %q (%v)", id, ok)
	}
}

func TestQuitWithoutSelection(t *testing.T) {
	m := newSizedModel(testLibrary())
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := m.Selected(); ok {
		t.Fatalf("expected no selection")
	}
}

func TestFilterNarrowsRows(t *testing.T) {
	m := newSizedModel(testLibrary())
	m.Update(runes("/"))
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	for _, r := range "walD" {
		m.Update(runes(string(r)))
	}
	if len(m.visible) != 1 || m.visible[0].ID != "bbbb2222" {
		t.Fatalf("unexpected visible rows: %+v", m.visible)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filterMode {
		t.Fatalf("expected enter to leave filter mode")
	}
	if !strings.Contains(m.View(), "1 of 3 documents") {
		t.Fatalf("header missing filter count:\n%s", m.View())
	}

	m.Update(runes("/"))
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if len(m.visible) != 3 {
		t.Fatalf("expected esc to clear the filter, got %d rows", len(m.visible))
	}
}

func TestFilterMatchesSourcePathAndID(t *testing.T) {
	m := newSizedModel(testLibrary())
	m.filter.SetValue("notes")
	m.applyFilter()
	if len(m.visible) != 1 || m.visible[0].ID != "cccc3333" {
		t.Fatalf("unexpected rows for source path filter: %+v", m.visible)
	}
	m.filter.SetValue("aaaa")
	m.applyFilter()
	if len(m.visible) != 1 || m.visible[0].ID != "aaaa1111" {
		t.Fatalf("unexpected rows for id filter: %+v", m.visible)
	}
}

func TestForgetAsksForConfirmation(t *testing.T) {
	lib := testLibrary()
	m := newSizedModel(lib)

	m.Update(runes("x"))
	if !strings.Contains(m.View(), `Forget "Moby-Dick"`) {
		t.Fatalf("expected confirmation prompt:\n%s", m.View())
	}
	m.Update(runes("n"))
	if len(lib.deleted) != 0 || m.confirm {
		t.Fatalf("expected cancel, deleted=%v", lib.deleted)
	}

	m.Update(runes("x"))
	m.Update(runes("y"))
	if len(lib.deleted) != 1 || lib.deleted[0] != "aaaa1111" {
		t.Fatalf("expected aaaa1111 deleted, got %v", lib.deleted)
	}
	if len(m.visible) != 2 {
		t.Fatalf("expected library reloaded, got %d rows", len(m.visible))
	}
}

func TestListErrorShown(t *testing.T) {
	m := newSizedModel(&fakeLibrary{listErr: errors.New("disk on fire")})
	view := m.View()
	if !strings.Contains(view, "Failed to load library.") || !strings.Contains(view, "disk on fire") {
		t.Fatalf("expected error in view:\n%s", view)
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatalf("expected no selection on empty library")
	}
}

func TestBuildRows(t *testing.T) {
	rows := buildRows(testLibrary().docs)
	if rows[0][0] != "aaaa1111" || rows[0][3] != "33.3%" {
		t.Fatalf("unexpected first row: %v", rows[0])
	}
	if rows[2][1] != "notes.md" || rows[2][4] != "-" {
		t.Fatalf("unexpected untitled row: %v", rows[2])
	}
}
