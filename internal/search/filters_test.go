package search

import (
	"testing"

	"medlit/internal/index"
)

func TestFilterBuilder(t *testing.T) {
	conds, err := NewFilterBuilder().
		Source("pubmed").
		Section("Results").
		YearRange(2019, 2024).
		MinQuality(0.5).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(conds) != 4 {
		t.Fatalf("Build() returned %d conditions, want 4", len(conds))
	}

	if conds[0].Field != index.FieldSource || conds[0].Keyword != "pubmed" {
		t.Errorf("source condition = %+v", conds[0])
	}
	if conds[2].Min == nil || *conds[2].Min != 2019 || conds[2].Max == nil || *conds[2].Max != 2024 {
		t.Errorf("year condition = %+v", conds[2])
	}
}

func TestFilterBuilderRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		build func() ([]index.Condition, error)
	}{
		{
			name: "unknown section",
			build: func() ([]index.Condition, error) {
				return NewFilterBuilder().Section("Discussion").Build()
			},
		},
		{
			name: "empty source",
			build: func() ([]index.Condition, error) {
				return NewFilterBuilder().Source("").Build()
			},
		},
		{
			name: "inverted year range",
			build: func() ([]index.Condition, error) {
				return NewFilterBuilder().YearRange(2024, 2019).Build()
			},
		},
		{
			name: "unbounded year range",
			build: func() ([]index.Condition, error) {
				return NewFilterBuilder().YearRange(0, 0).Build()
			},
		},
		{
			name: "negative min quality",
			build: func() ([]index.Condition, error) {
				return NewFilterBuilder().MinQuality(-0.1).Build()
			},
		},
		{
			name: "non-filterable field",
			build: func() ([]index.Condition, error) {
				return NewFilterBuilder().Field("meta", "x").Build()
			},
		},
		{
			name: "text is not a filter target",
			build: func() ([]index.Condition, error) {
				return NewFilterBuilder().Field("text", "aspirin").Build()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.build(); err == nil {
				t.Error("Build() expected error, got nil")
			}
		})
	}
}

func TestFilterBuilderErrorSticks(t *testing.T) {
	// The first invalid call poisons the builder; later valid calls
	// must not clear it.
	_, err := NewFilterBuilder().
		Section("NotASection").
		Source("pubmed").
		Build()
	if err == nil {
		t.Error("Build() expected error from earlier invalid filter")
	}
}

func TestFilterBuilderOpenEndedRanges(t *testing.T) {
	conds, err := NewFilterBuilder().YearRange(2020, 0).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if conds[0].Min == nil || conds[0].Max != nil {
		t.Errorf("open-ended range = %+v, want Min only", conds[0])
	}

	conds, err = NewFilterBuilder().TokenRange(0, 450).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if conds[0].Min != nil || conds[0].Max == nil {
		t.Errorf("open-ended range = %+v, want Max only", conds[0])
	}
}
