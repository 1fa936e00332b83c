// Package library imports documents and reopens them with their saved position.
package library

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/tuiread/internal/extract"
	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/rsvp"
	"github.com/verte-zerg/tuiread/internal/store"
)

// Repository is the persistence the library needs.
type Repository interface {
	UpsertDocument(ctx context.Context, doc model.Document) error
	TouchDocument(ctx context.Context, id string, openedAt time.Time) error
	GetDocument(ctx context.Context, id string) (model.Document, error)
	LastOpened(ctx context.Context) (model.Document, error)
	LoadPosition(ctx context.Context, documentID string) (model.Position, error)
}

// ErrEmptyLibrary is returned by Resume when nothing was opened before.
var ErrEmptyLibrary = errors.New("library is empty")

// Opened is a document ready for reading.
type Opened struct {
	Document    model.Document
	Tokens      []string
	Position    model.Position
	HasPosition bool
}

// Service glues extraction, tokenizing and persistence.
type Service struct {
	repo    Repository
	extract func(path string) (extract.Document, error)
	now     func() time.Time
}

// NewService creates a library service backed by repo.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, extract: extract.Extract, now: time.Now}
}

// DocumentID derives the stable id of a normalized text.
func DocumentID(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Import extracts path and stores it. Re-importing unchanged text keeps
// the document id, so the saved position survives.
func (s *Service) Import(ctx context.Context, path string) (model.Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	src, err := s.extract(abs)
	if err != nil {
		return model.Document{}, err
	}
	tokens := rsvp.Tokenize(src.Text)
	now := s.now()
	doc := model.Document{
		ID:         DocumentID(strings.Join(tokens, " ")),
		Title:      src.Title,
		SourcePath: abs,
		Text:       src.Text,
		WordCount:  len(tokens),
		AddedAt:    now,
		OpenedAt:   now,
	}
	if err := s.repo.UpsertDocument(ctx, doc); err != nil {
		return model.Document{}, fmt.Errorf("failed to save document: %w", err)
	}
	return doc, nil
}

// Open imports path and loads its saved position.
func (s *Service) Open(ctx context.Context, path string) (Opened, error) {
	doc, err := s.Import(ctx, path)
	if err != nil {
		return Opened{}, err
	}
	return s.load(ctx, doc)
}

// OpenID reopens a stored document by id.
func (s *Service) OpenID(ctx context.Context, id string) (Opened, error) {
	doc, err := s.repo.GetDocument(ctx, id)
	if err != nil {
		return Opened{}, fmt.Errorf("failed to load document: %w", err)
	}
	if err := s.repo.TouchDocument(ctx, doc.ID, s.now()); err != nil {
		return Opened{}, fmt.Errorf("failed to update document: %w", err)
	}
	return s.load(ctx, doc)
}

// Resume reopens the most recently opened document.
func (s *Service) Resume(ctx context.Context) (Opened, error) {
	doc, err := s.repo.LastOpened(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Opened{}, ErrEmptyLibrary
		}
		return Opened{}, fmt.Errorf("failed to load last document: %w", err)
	}
	return s.OpenID(ctx, doc.ID)
}

func (s *Service) load(ctx context.Context, doc model.Document) (Opened, error) {
	opened := Opened{Document: doc, Tokens: rsvp.Tokenize(doc.Text)}
	pos, err := s.repo.LoadPosition(ctx, doc.ID)
	switch {
	case err == nil:
		opened.Position = pos
		opened.HasPosition = true
	case errors.Is(err, store.ErrNotFound):
		opened.Position = model.Position{DocumentID: doc.ID}
	default:
		return Opened{}, fmt.Errorf("failed to load position: %w", err)
	}
	return opened, nil
}
