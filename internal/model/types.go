// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// FontSize controls letter spacing of the displayed word.
type FontSize string

const (
	FontSmall      FontSize = "small"
	FontMedium     FontSize = "medium"
	FontLarge      FontSize = "large"
	FontExtraLarge FontSize = "extra-large"
)

// FontFamily controls the emphasis style of the displayed word.
type FontFamily string

const (
	FamilyMonospace FontFamily = "monospace"
	FamilySans      FontFamily = "sans"
	FamilySerif     FontFamily = "serif"
)

// Theme selects the color palette.
type Theme string

const (
	ThemeDark   Theme = "dark"
	ThemeAmoled Theme = "amoled"
	ThemeSepia  Theme = "sepia"
	ThemeLight  Theme = "light"
)

// ParseFontSize validates a font size name.
func ParseFontSize(v string) (FontSize, error) {
	switch fs := FontSize(strings.ToLower(strings.TrimSpace(v))); fs {
	case FontSmall, FontMedium, FontLarge, FontExtraLarge:
		return fs, nil
	}
	return "", fmt.Errorf("unknown font size %q (want small, medium, large, extra-large)", v)
}

// ParseFontFamily validates a font family name.
func ParseFontFamily(v string) (FontFamily, error) {
	switch ff := FontFamily(strings.ToLower(strings.TrimSpace(v))); ff {
	case FamilyMonospace, FamilySans, FamilySerif:
		return ff, nil
	}
	return "", fmt.Errorf("unknown font family %q (want monospace, sans, serif)", v)
}

// ParseTheme validates a theme name.
func ParseTheme(v string) (Theme, error) {
	switch th := Theme(strings.ToLower(strings.TrimSpace(v))); th {
	case ThemeDark, ThemeAmoled, ThemeSepia, ThemeLight:
		return th, nil
	}
	return "", fmt.Errorf("unknown theme %q (want dark, amoled, sepia, light)", v)
}

// DisplayPrefs are presentation-only settings.
type DisplayPrefs struct {
	FontSize   FontSize
	FontFamily FontFamily
	Theme      Theme
}

// Config defines reader settings.
type Config struct {
	WPM        int
	Display    DisplayPrefs
	ZenTimeout time.Duration
	SkipWords  int
	Plain      bool
	Restart    bool
}

// AssistConfig defines the optional assist endpoint.
type AssistConfig struct {
	Endpoint string
	Model    string
	APIKey   string
	Timeout  time.Duration
}

// Document is an imported text.
type Document struct {
	ID         string
	Title      string
	SourcePath string
	Text       string
	WordCount  int
	AddedAt    time.Time
	OpenedAt   time.Time
}

// Position is the persisted per-document reading state.
type Position struct {
	DocumentID string
	Cursor     int
	WPM        int
	Display    DisplayPrefs
	UpdatedAt  time.Time
}

// DocumentSummary is a library listing row.
type DocumentSummary struct {
	ID         string
	Title      string
	SourcePath string
	WordCount  int
	Cursor     int
	WPM        int
	OpenedAt   time.Time
}

// Progress returns the reading progress in [0, 1].
func (d DocumentSummary) Progress() float64 {
	switch {
	case d.WordCount <= 0:
		return 0
	case d.WordCount == 1:
		return 1
	}
	return float64(d.Cursor) / float64(d.WordCount-1)
}

// ReadingSession records one uninterrupted playback span.
type ReadingSession struct {
	ID          string
	DocumentID  string
	StartedAt   time.Time
	EndedAt     time.Time
	StartCursor int
	EndCursor   int
	WordsRead   int
	WPM         int
	DurationMs  int64
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	DocumentID  string
	Since       *time.Time
	Last        int
	CurveWindow int
}
