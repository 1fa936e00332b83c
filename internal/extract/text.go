package extract

import (
	"bufio"
	"os"
	"strings"
	"unicode/utf8"
)

// extractText reads a plain text file line by line. A leading Markdown
// heading becomes the title.
func extractText(path string) (Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return Document{}, &IOError{Path: path, Err: err}
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only source.
			_ = cerr
		}
	}()

	var (
		b     strings.Builder
		title string
		first = true
	)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if first && strings.TrimSpace(line) != "" {
			first = false
			if strings.HasPrefix(line, "# ") {
				title = strings.TrimSpace(strings.TrimPrefix(line, "# "))
			}
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return Document{}, &IOError{Path: path, Err: err}
	}
	text := b.String()
	if !utf8.ValidString(text) {
		return Document{}, &FormatError{Path: path, Reason: "not valid UTF-8 text"}
	}
	return Document{Title: title, Text: text}, nil
}
