package chunker

import (
	"strings"
	"unicode"
)

// protectedSuffixes are abbreviations whose trailing period never ends a
// sentence. Checked case-insensitively against the text accumulated so far.
var protectedSuffixes = []string{
	"vs.",
	"al.",
	"e.g.",
	"i.e.",
	"fig.",
	"figs.",
	"no.",
	"ca.",
	"approx.",
	"resp.",
}

// splitSentences splits normalized section content into ordered, non-empty
// sentences. It never breaks at a decimal point, inside a p-value or dose
// expression, or after "vs."; joining the output with single spaces
// reproduces the input content.
func splitSentences(content string) []string {
	if content == "" {
		return nil
	}

	runes := []rune(content)
	var sentences []string
	start := 0

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if !isBoundary(runes, i) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}

	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// isBoundary reports whether the terminator at runes[i] ends a sentence.
func isBoundary(runes []rune, i int) bool {
	// Terminator at end of content always closes the sentence.
	if i == len(runes)-1 {
		return true
	}

	// A decimal point ("p=0.02", "15.2%") is followed by a digit, not a
	// space; anything not followed by whitespace stays inside the sentence.
	if !unicode.IsSpace(runes[i+1]) {
		return false
	}

	// The next sentence must start with an uppercase letter, a digit, or
	// an opening bracket. Lowercase continuations ("... mg/kg q.d. twice
	// daily") stay in the current sentence.
	j := i + 1
	for j < len(runes) && unicode.IsSpace(runes[j]) {
		j++
	}
	if j == len(runes) {
		return true
	}
	next := runes[j]
	if !unicode.IsUpper(next) && !unicode.IsDigit(next) && next != '(' && next != '[' {
		return false
	}

	if runes[i] != '.' {
		return true
	}
	return !endsWithProtected(runes[:i+1])
}

// endsWithProtected reports whether the text ends with a protected
// abbreviation forming its own token.
func endsWithProtected(runes []rune) bool {
	lower := []rune(strings.ToLower(string(runes)))
	for _, p := range protectedSuffixes {
		pr := []rune(p)
		if len(lower) < len(pr) || string(lower[len(lower)-len(pr):]) != p {
			continue
		}
		if len(lower) == len(pr) {
			return true
		}
		prev := lower[len(lower)-len(pr)-1]
		if !unicode.IsLetter(prev) && !unicode.IsDigit(prev) {
			return true
		}
	}
	return false
}
