// Package extract turns document files into plain text.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Document is the extracted title and body text.
type Document struct {
	Title string
	Text  string
}

var (
	// ErrFormat matches any FormatError.
	ErrFormat = errors.New("unrecognized document format")
	// ErrIO matches any IOError.
	ErrIO = errors.New("unreadable document")
)

// FormatError reports a source that is not a recognized document structure.
type FormatError struct {
	Path   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// Is reports ErrFormat.
func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// IOError reports a source that could not be read.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Is reports ErrIO.
func (e *IOError) Is(target error) bool { return target == ErrIO }

// Extract reads the file at path and returns its text, chosen by extension.
func Extract(path string) (Document, error) {
	var (
		doc Document
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".text", ".md", ".markdown":
		doc, err = extractText(path)
	case ".html", ".htm", ".xhtml":
		doc, err = extractHTMLFile(path)
	case ".epub":
		doc, err = extractEPUB(path)
	default:
		return Document{}, &FormatError{Path: path, Reason: "unsupported file extension"}
	}
	if err != nil {
		return Document{}, err
	}
	doc.Text = norm.NFC.String(doc.Text)
	doc.Title = norm.NFC.String(strings.TrimSpace(doc.Title))
	if doc.Title == "" {
		doc.Title = TitleFromPath(path)
	}
	return doc, nil
}

// TitleFromPath returns the base file name without its extension.
func TitleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
