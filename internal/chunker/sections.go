package chunker

import (
	"regexp"
	"sort"
	"strings"

	"medlit/internal/models"
)

// Section is a transient slice of the abstract produced by heading
// detection. Start and End are offsets into the normalized source text.
type Section struct {
	Name    string
	Content string
	Start   int
	End     int
}

// headingSynonyms maps heading spellings seen in structured abstracts to
// canonical section labels. Detection is best-effort: anything that does
// not match falls back to a single Unstructured section. The mapping is
// kept in one table so the synonym set stays centrally reviewable.
var headingSynonyms = map[string]string{
	"background":            models.SectionBackground,
	"introduction":          models.SectionBackground,
	"rationale":             models.SectionBackground,
	"objective":             models.SectionObjective,
	"objectives":            models.SectionObjective,
	"aim":                   models.SectionObjective,
	"aims":                  models.SectionObjective,
	"aims and objectives":   models.SectionObjective,
	"purpose":               models.SectionObjective,
	"goal":                  models.SectionObjective,
	"goals":                 models.SectionObjective,
	"method":                models.SectionMethods,
	"methods":               models.SectionMethods,
	"materials":             models.SectionMethods,
	"materials and methods": models.SectionMethods,
	"design":                models.SectionMethods,
	"study design":          models.SectionMethods,
	"setting":               models.SectionMethods,
	"participants":          models.SectionMethods,
	"interventions":         models.SectionMethods,
	"results":               models.SectionResults,
	"findings":              models.SectionResults,
	"outcomes":              models.SectionResults,
	"conclusion":            models.SectionConclusions,
	"conclusions":           models.SectionConclusions,
	"interpretation":        models.SectionConclusions,
	"implications":          models.SectionConclusions,
	"limitations":           models.SectionConclusions,
}

// headingRe matches a heading at the start of the text or right after a
// sentence boundary, followed by a colon. Built once from the synonym
// table, longest spellings first so multi-word headings win.
var headingRe = buildHeadingRegexp()

func buildHeadingRegexp() *regexp.Regexp {
	spellings := make([]string, 0, len(headingSynonyms))
	for s := range headingSynonyms {
		spellings = append(spellings, s)
	}
	sort.Slice(spellings, func(i, j int) bool {
		if len(spellings[i]) != len(spellings[j]) {
			return len(spellings[i]) > len(spellings[j])
		}
		return spellings[i] < spellings[j]
	})
	for i, s := range spellings {
		spellings[i] = regexp.QuoteMeta(s)
	}
	pattern := `(?i)(?:^|[.!?;]\s+)(` + strings.Join(spellings, "|") + `)\s*:\s*`
	return regexp.MustCompile(pattern)
}

// detectSections finds structural headings in normalized abstract text and
// returns the sections in document order, heading text stripped from the
// content. Text before the first heading is returned as a leading
// Unstructured section. If no heading matches, the whole text is one
// Unstructured section.
func detectSections(text string) []Section {
	if text == "" {
		return nil
	}

	matches := headingRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []Section{{
			Name:    models.SectionUnstructured,
			Content: text,
			Start:   0,
			End:     len(text),
		}}
	}

	var sections []Section

	// Preamble before the first heading.
	firstHeading := matches[0][2]
	if lead := strings.TrimSpace(text[:firstHeading]); lead != "" {
		sections = append(sections, Section{
			Name:    models.SectionUnstructured,
			Content: lead,
			Start:   0,
			End:     firstHeading,
		})
	}

	for i, m := range matches {
		headingStart, contentStart := m[2], m[1]
		contentEnd := len(text)
		if i+1 < len(matches) {
			contentEnd = matches[i+1][2]
		}

		name := headingSynonyms[strings.ToLower(text[m[2]:m[3]])]
		content := strings.TrimSpace(text[contentStart:contentEnd])
		if content == "" {
			continue
		}

		sections = append(sections, Section{
			Name:    name,
			Content: content,
			Start:   headingStart,
			End:     contentEnd,
		})
	}

	if len(sections) == 0 {
		return []Section{{
			Name:    models.SectionUnstructured,
			Content: text,
			Start:   0,
			End:     len(text),
		}}
	}

	return sections
}
