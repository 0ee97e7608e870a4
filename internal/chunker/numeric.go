package chunker

import "regexp"

// statMarkerRe matches statistical claims: p-values, percentages,
// confidence intervals, doses, and deltas.
var statMarkerRe = regexp.MustCompile(
	`(?i)\bp\s*[=<>]\s*\d*\.?\d+` +
		`|\d+(?:\.\d+)?\s*%` +
		`|\b(?:95\s*%\s*)?ci\b` +
		`|confidence interval` +
		`|\d+(?:\.\d+)?\s*(?:mg|mcg|µg|g|kg|ml|l|iu|units?)\b` +
		`|\bdelta\b|Δ|±`,
)

// comparisonCueRe matches language tying a statistic to its comparator.
var comparisonCueRe = regexp.MustCompile(
	`(?i)\b(?:compared|comparison|versus|vs\.?|controls?|placebo|baseline)\b`,
)

// splitsStatistic reports whether putting a window boundary between before
// and after would separate a statistical claim from its comparison context.
func splitsStatistic(before, after string) bool {
	return statMarkerRe.MatchString(before) && comparisonCueRe.MatchString(after)
}
