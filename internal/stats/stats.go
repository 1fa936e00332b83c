// Package stats contains reading statistics and their text rendering.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/tuiread/internal/model"
)

const sparkChars = " .:-=+*#%@"

// displayLocation is the zone used for timestamps in listings.
var displayLocation = time.Local

// SessionMetrics returns the effective words per minute of a reading span.
// Pauses inside a span are not counted since spans end on pause.
func SessionMetrics(wordsRead int, durationMs int64) float64 {
	if durationMs <= 0 || wordsRead <= 0 {
		return 0
	}
	minutes := float64(durationMs) / 60000.0
	return float64(wordsRead) / minutes
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := minMax(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

func minMax(values []float64) (float64, float64) {
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

// RenderSummary prints totals for reading sessions.
func RenderSummary(w io.Writer, readings []model.ReadingSession) error {
	if len(readings) == 0 {
		_, err := fmt.Fprintln(w, "No reading sessions found.")
		return err
	}
	var (
		words     int
		totalMs   int64
		totalWPM  float64
		bestWPM   float64
		setRates  int
		documents = map[string]struct{}{}
	)
	for _, r := range readings {
		words += r.WordsRead
		totalMs += r.DurationMs
		wpm := SessionMetrics(r.WordsRead, r.DurationMs)
		totalWPM += wpm
		if wpm > bestWPM {
			bestWPM = wpm
		}
		setRates += r.WPM
		documents[r.DocumentID] = struct{}{}
	}
	count := float64(len(readings))
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(readings)),
		fmt.Sprintf("Documents: %d", len(documents)),
		fmt.Sprintf("Words read: %d", words),
		fmt.Sprintf("Time read: %s", formatDuration(time.Duration(totalMs)*time.Millisecond)),
		fmt.Sprintf("Avg WPM: %.2f", totalWPM/count),
		fmt.Sprintf("Best WPM: %.2f", bestWPM),
		fmt.Sprintf("Avg set WPM: %.0f", float64(setRates)/count),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderLibrary prints the imported documents with their progress.
func RenderLibrary(w io.Writer, docs []model.DocumentSummary) error {
	if len(docs) == 0 {
		_, err := fmt.Fprintln(w, "Library is empty. Run tuiread <file> to start reading.")
		return err
	}
	cols := []column{
		{title: "ID"},
		{title: "Title"},
		{title: "Words", right: true},
		{title: "Progress", right: true},
		{title: "WPM", right: true},
		{title: "Opened"},
	}
	rows := make([][]string, 0, len(docs))
	for _, d := range docs {
		wpm := "-"
		if d.WPM > 0 {
			wpm = fmt.Sprintf("%d", d.WPM)
		}
		rows = append(rows, []string{
			ShortID(d.ID),
			truncate(d.Title, 40),
			fmt.Sprintf("%d", d.WordCount),
			fmt.Sprintf("%.1f%%", d.Progress()*100),
			wpm,
			d.OpenedAt.In(displayLocation).Format("2006-01-02 15:04"),
		})
	}
	for _, line := range formatTable(cols, rows) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderTrend prints a sparkline of effective WPM smoothed over window
// sessions. A width of 0 uses the terminal width.
func RenderTrend(w io.Writer, readings []model.ReadingSession, window, width int) error {
	if len(readings) == 0 {
		return nil
	}
	wpms := make([]float64, len(readings))
	for i, r := range readings {
		wpms[i] = SessionMetrics(r.WordsRead, r.DurationMs)
	}
	wpms = MovingAverage(wpms, window)
	if width <= 0 {
		width = terminalWidth()
	}
	plotWidth := width - len(trendIndent)
	if plotWidth < minTrendWidth {
		plotWidth = minTrendWidth
	}
	minVal, maxVal := minMax(wpms)
	lines := []string{
		fmt.Sprintf("Reading speed (moving average, window %d)", max(window, 1)),
		trendIndent + Sparkline(downsample(wpms, plotWidth)),
		fmt.Sprintf("%smin %.0f WPM, max %.0f WPM", trendIndent, minVal, maxVal),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// ShortID is the id prefix shown in listings and accepted by lookups.
func ShortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
