// Package rsvp implements the word presentation engine: tokenization,
// optimal recognition point calculation and timed playback.
package rsvp

import "strings"

// Tokenize splits text on runs of whitespace and drops empty results.
func Tokenize(text string) []string {
	fields := strings.Fields(text)
	if fields == nil {
		return []string{}
	}
	return fields
}
