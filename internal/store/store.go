// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/tuiread/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when a document or position does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps SQLite access for documents, positions and reading sessions.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, err
	}
	// The background saver and the UI share one connection.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// dsn turns a file path into a modernc URI. Pragmas set here apply to every
// connection the pool opens.
func dsn(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path), RawQuery: "_pragma=foreign_keys(1)"}
	return u.String()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			source_path TEXT NOT NULL,
			text TEXT NOT NULL,
			word_count INTEGER NOT NULL,
			added_at TEXT NOT NULL,
			opened_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS positions (
			document_id TEXT PRIMARY KEY REFERENCES documents(id) ON DELETE CASCADE,
			cursor INTEGER NOT NULL,
			wpm INTEGER NOT NULL,
			font_size TEXT NOT NULL,
			font_family TEXT NOT NULL,
			theme TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS reading_sessions (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			start_cursor INTEGER NOT NULL,
			end_cursor INTEGER NOT NULL,
			words_read INTEGER NOT NULL,
			wpm INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_opened_at ON documents(opened_at);`,
		`CREATE INDEX IF NOT EXISTS idx_reading_sessions_ended_at ON reading_sessions(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// UpsertDocument inserts a document or refreshes its title, path, text and
// opened_at. The original added_at is kept.
func (s *Store) UpsertDocument(ctx context.Context, doc model.Document) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, title, source_path, text, word_count, added_at, opened_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			source_path = excluded.source_path,
			text = excluded.text,
			word_count = excluded.word_count,
			opened_at = excluded.opened_at`,
		doc.ID,
		doc.Title,
		doc.SourcePath,
		doc.Text,
		doc.WordCount,
		formatTime(doc.AddedAt),
		formatTime(doc.OpenedAt),
	)
	return err
}

// TouchDocument marks a document as opened at the given time.
func (s *Store) TouchDocument(ctx context.Context, id string, openedAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE documents SET opened_at = ? WHERE id = ?`, formatTime(openedAt), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetDocument loads a document including its text.
func (s *Store) GetDocument(ctx context.Context, id string) (model.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, source_path, text, word_count, added_at, opened_at
		 FROM documents WHERE id = ?`, id)
	return scanDocument(row)
}

// LastOpened returns the most recently opened document.
func (s *Store) LastOpened(ctx context.Context) (model.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, source_path, text, word_count, added_at, opened_at
		 FROM documents ORDER BY opened_at DESC LIMIT 1`)
	return scanDocument(row)
}

// FindDocument resolves a full id or a unique id prefix.
func (s *Store) FindDocument(ctx context.Context, prefix string) (model.Document, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return model.Document{}, ErrNotFound
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM documents WHERE substr(id, 1, length(?1)) = ?1 LIMIT 2`, prefix)
	if err != nil {
		return model.Document{}, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return model.Document{}, err
		}
		ids = append(ids, id)
	}
	if err := rows.Close(); err != nil {
		return model.Document{}, err
	}
	switch len(ids) {
	case 0:
		return model.Document{}, ErrNotFound
	case 1:
		return s.GetDocument(ctx, ids[0])
	default:
		return model.Document{}, fmt.Errorf("document id prefix %q is ambiguous", prefix)
	}
}

// DeleteDocument removes a document with its position and reading sessions.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	for _, stmt := range []string{
		`DELETE FROM reading_sessions WHERE document_id = ?`,
		`DELETE FROM positions WHERE document_id = ?`,
	} {
		if _, err = tx.ExecContext(ctx, stmt, id); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		err = ErrNotFound
		return err
	}
	err = tx.Commit()
	return err
}

// ListDocuments returns library rows with stored progress, most recent first.
func (s *Store) ListDocuments(ctx context.Context) ([]model.DocumentSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.id, d.title, d.source_path, d.word_count, d.opened_at,
			COALESCE(p.cursor, 0), COALESCE(p.wpm, 0)
		 FROM documents d
		 LEFT JOIN positions p ON p.document_id = d.id
		 ORDER BY d.opened_at DESC, d.title ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var docs []model.DocumentSummary
	for rows.Next() {
		var d model.DocumentSummary
		var openedAt string
		if err := rows.Scan(&d.ID, &d.Title, &d.SourcePath, &d.WordCount, &openedAt, &d.Cursor, &d.WPM); err != nil {
			return nil, err
		}
		if d.OpenedAt, err = parseTime(openedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// LoadPosition returns the stored reading state of a document.
func (s *Store) LoadPosition(ctx context.Context, documentID string) (model.Position, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT document_id, cursor, wpm, font_size, font_family, theme, updated_at
		 FROM positions WHERE document_id = ?`, documentID)
	var (
		pos                     model.Position
		fontSize, family, theme string
		updatedAt               string
	)
	if err := row.Scan(&pos.DocumentID, &pos.Cursor, &pos.WPM, &fontSize, &family, &theme, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Position{}, ErrNotFound
		}
		return model.Position{}, err
	}
	pos.Display = model.DisplayPrefs{
		FontSize:   model.FontSize(fontSize),
		FontFamily: model.FontFamily(family),
		Theme:      model.Theme(theme),
	}
	var err error
	if pos.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.Position{}, err
	}
	return pos, nil
}

// SavePosition stores the reading state of a document.
func (s *Store) SavePosition(ctx context.Context, pos model.Position) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO positions (document_id, cursor, wpm, font_size, font_family, theme, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(document_id) DO UPDATE SET
			cursor = excluded.cursor,
			wpm = excluded.wpm,
			font_size = excluded.font_size,
			font_family = excluded.font_family,
			theme = excluded.theme,
			updated_at = excluded.updated_at`,
		pos.DocumentID,
		pos.Cursor,
		pos.WPM,
		string(pos.Display.FontSize),
		string(pos.Display.FontFamily),
		string(pos.Display.Theme),
		formatTime(pos.UpdatedAt),
	)
	return err
}

// InsertReading stores a completed playback span.
func (s *Store) InsertReading(ctx context.Context, r model.ReadingSession) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reading_sessions (id, document_id, started_at, ended_at, start_cursor, end_cursor, words_read, wpm, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.DocumentID,
		formatTime(r.StartedAt),
		formatTime(r.EndedAt),
		r.StartCursor,
		r.EndCursor,
		r.WordsRead,
		r.WPM,
		r.DurationMs,
	)
	return err
}

// ListReadings returns reading sessions filtered by stats config, oldest first.
func (s *Store) ListReadings(ctx context.Context, cfg model.StatsConfig) ([]model.ReadingSession, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.DocumentID != "" {
		clauses = append(clauses, "document_id = ?")
		args = append(args, cfg.DocumentID)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, formatTime(*cfg.Since))
	}
	query := fmt.Sprintf(`SELECT id, document_id, started_at, ended_at, start_cursor, end_cursor, words_read, wpm, duration_ms
		FROM reading_sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var readings []model.ReadingSession
	for rows.Next() {
		var r model.ReadingSession
		var startedAt, endedAt string
		if err := rows.Scan(&r.ID, &r.DocumentID, &startedAt, &endedAt, &r.StartCursor, &r.EndCursor, &r.WordsRead, &r.WPM, &r.DurationMs); err != nil {
			return nil, err
		}
		if r.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, err
		}
		if r.EndedAt, err = parseTime(endedAt); err != nil {
			return nil, err
		}
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return readings, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (model.Document, error) {
	var (
		doc               model.Document
		addedAt, openedAt string
	)
	if err := row.Scan(&doc.ID, &doc.Title, &doc.SourcePath, &doc.Text, &doc.WordCount, &addedAt, &openedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Document{}, ErrNotFound
		}
		return model.Document{}, err
	}
	var err error
	if doc.AddedAt, err = parseTime(addedAt); err != nil {
		return model.Document{}, err
	}
	if doc.OpenedAt, err = parseTime(openedAt); err != nil {
		return model.Document{}, err
	}
	return doc, nil
}

// Fixed-width UTC timestamps keep ORDER BY on text columns chronological.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) (time.Time, error) {
	return time.Parse(timeLayout, v)
}
