package chunker

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "empty content",
			content: "",
			want:    nil,
		},
		{
			name:    "single sentence",
			content: "Treatment reduced mortality.",
			want:    []string{"Treatment reduced mortality."},
		},
		{
			name:    "two plain sentences",
			content: "Treatment reduced mortality. Follow-up lasted two years.",
			want: []string{
				"Treatment reduced mortality.",
				"Follow-up lasted two years.",
			},
		},
		{
			name:    "decimal point is not a boundary",
			content: "The rate was 15.2% overall. Controls reached 3.1% at week 12.",
			want: []string{
				"The rate was 15.2% overall.",
				"Controls reached 3.1% at week 12.",
			},
		},
		{
			name:    "p-value expression stays intact",
			content: "Mortality fell significantly (p=0.02). The effect persisted.",
			want: []string{
				"Mortality fell significantly (p=0.02).",
				"The effect persisted.",
			},
		},
		{
			name:    "vs. does not end a sentence",
			content: "We compared 10 mg vs. 20 mg daily. Adherence was similar.",
			want: []string{
				"We compared 10 mg vs. 20 mg daily.",
				"Adherence was similar.",
			},
		},
		{
			name:    "et al. does not end a sentence",
			content: "As reported by Smith et al. The cohort differed.",
			want: []string{
				"As reported by Smith et al. The cohort differed.",
			},
		},
		{
			name:    "sentence starting with a digit",
			content: "A gap remained. 3.1% of controls responded.",
			want: []string{
				"A gap remained.",
				"3.1% of controls responded.",
			},
		},
		{
			name:    "sentence starting with a parenthesis",
			content: "Outcomes improved. (See the supplement.)",
			want: []string{
				"Outcomes improved.",
				"(See the supplement.)",
			},
		},
		{
			name:    "lowercase continuation is not a boundary",
			content: "Dosing was 5 mg q.d. throughout the study. No events occurred.",
			want: []string{
				"Dosing was 5 mg q.d. throughout the study.",
				"No events occurred.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitSentences(tt.content)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitSentences() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitSentences_JoinReproducesContent(t *testing.T) {
	content := "The rate was 15.2% (SD 4.1) in treated patients. " +
		"This compared favorably to 3.1% in controls (p=0.02). " +
		"Doses of 10 mg vs. 20 mg behaved alike. Follow-up lasted 2 years."

	got := splitSentences(content)
	if joined := strings.Join(got, " "); joined != content {
		t.Errorf("joined sentences = %q, want original content %q", joined, content)
	}
}
