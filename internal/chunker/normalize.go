package chunker

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// normalizeText prepares raw abstract text for section detection and
// sentence splitting: NFKC unicode normalization, rejoined hyphen-broken
// line wraps, and collapsed whitespace. The result contains no newlines
// and no runs of spaces.
func normalizeText(text string) string {
	if text == "" {
		return ""
	}

	text = norm.NFKC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")

	// Rejoin words broken across line wraps ("random-\nised" -> "randomised").
	text = strings.ReplaceAll(text, "-\n", "")

	return strings.Join(strings.Fields(text), " ")
}
