package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuiread/internal/model"
)

type palette struct {
	bg    lipgloss.Color
	fg    lipgloss.Color
	pivot lipgloss.Color
	guide lipgloss.Color
	dim   lipgloss.Color
}

var palettes = map[model.Theme]palette{
	model.ThemeDark: {
		bg: "#1E1E1E", fg: "#F0F0F0", pivot: "#FF4D4F", guide: "#5A5A5A", dim: "#6E6E6E",
	},
	model.ThemeAmoled: {
		bg: "#000000", fg: "#D9D9D9", pivot: "#FF3B30", guide: "#3A3A3A", dim: "#595959",
	},
	model.ThemeSepia: {
		bg: "#F4ECD8", fg: "#5B4636", pivot: "#B03A2E", guide: "#C8B89A", dim: "#8C7A63",
	},
	model.ThemeLight: {
		bg: "#FAFAFA", fg: "#1F1F1F", pivot: "#D32F2F", guide: "#BDBDBD", dim: "#8C8C8C",
	},
}

func paletteFor(theme model.Theme) palette {
	if p, ok := palettes[theme]; ok {
		return p
	}
	return palettes[model.ThemeDark]
}

type styles struct {
	palette palette
	word    lipgloss.Style
	pivot   lipgloss.Style
	guide   lipgloss.Style
	footer  lipgloss.Style
	status  lipgloss.Style
	panel   lipgloss.Style
	title   lipgloss.Style
}

func newStyles(prefs model.DisplayPrefs) styles {
	p := paletteFor(prefs.Theme)
	base := lipgloss.NewStyle().Background(p.bg)
	word := base.Foreground(p.fg)
	switch prefs.FontFamily {
	case model.FamilySans:
		word = word.Bold(true)
	case model.FamilySerif:
		word = word.Italic(true)
	}
	return styles{
		palette: p,
		word:    word,
		pivot:   word.Foreground(p.pivot).Bold(true),
		guide:   base.Foreground(p.guide),
		footer:  base.Foreground(p.dim),
		status:  base.Foreground(p.pivot),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.guide).
			Padding(0, 1),
		title: lipgloss.NewStyle().Foreground(p.pivot).Bold(true),
	}
}

// sizeMetrics is the letter spacing and the blank rows between the guide
// ticks and the word.
type sizeMetrics struct {
	spacing int
	gap     int
}

func metricsFor(size model.FontSize) sizeMetrics {
	switch size {
	case model.FontSmall:
		return sizeMetrics{spacing: 0, gap: 0}
	case model.FontLarge:
		return sizeMetrics{spacing: 1, gap: 1}
	case model.FontExtraLarge:
		return sizeMetrics{spacing: 2, gap: 2}
	default:
		return sizeMetrics{spacing: 0, gap: 1}
	}
}
