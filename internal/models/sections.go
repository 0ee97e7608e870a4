package models

// Canonical section labels produced by section detection. Unstructured is
// the mandatory fallback when no heading pattern matches.
const (
	SectionBackground   = "Background"
	SectionObjective    = "Objective"
	SectionMethods      = "Methods"
	SectionResults      = "Results"
	SectionConclusions  = "Conclusions"
	SectionUnstructured = "Unstructured"
)

// sectionBoosts is the single reviewable table of per-section additive
// score weights. Results rank highest because they carry the findings a
// query is usually after; Conclusions next; framing sections low.
var sectionBoosts = map[string]float64{
	SectionBackground:   0.02,
	SectionObjective:    0.02,
	SectionMethods:      0.05,
	SectionResults:      0.15,
	SectionConclusions:  0.12,
	SectionUnstructured: 0.0,
}

// SectionBoost returns the additive boost weight for a canonical section
// label. Unknown labels get 0.
func SectionBoost(section string) float64 {
	return sectionBoosts[section]
}

// IsCanonicalSection reports whether label is one of the canonical
// section names, including the Unstructured fallback.
func IsCanonicalSection(label string) bool {
	_, ok := sectionBoosts[label]
	return ok
}

// sectionPriorities defines the canonical reading order used when
// reassembling a document from its chunks.
var sectionPriorities = map[string]int{
	SectionBackground:   0,
	SectionObjective:    1,
	SectionMethods:      2,
	SectionResults:      3,
	SectionConclusions:  4,
	SectionUnstructured: 6,
}

// SectionPriority returns the reading-order rank of a section label.
// Labels outside the canonical set sort after Conclusions but before
// Unstructured.
func SectionPriority(section string) int {
	if p, ok := sectionPriorities[section]; ok {
		return p
	}
	return 5
}
