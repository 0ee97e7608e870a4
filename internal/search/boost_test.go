package search

import (
	"testing"
	"time"

	"medlit/internal/models"
)

func TestRecencyBoost(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		year int
		want float64
	}{
		{"current year", 2026, 0.10},
		{"two years old", 2024, 0.10},
		{"five years old", 2021, 0.05},
		{"ten years old", 2016, 0.02},
		{"older than ten years", 2010, 0},
		{"unknown year", 0, 0},
		{"future year", 2030, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := recencyBoost(tt.year, now); got != tt.want {
				t.Errorf("recencyBoost(%d) = %v, want %v", tt.year, got, tt.want)
			}
		})
	}
}

func TestApplyBoosts(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	hits := []models.ScoredHit{
		{
			Chunk: models.Chunk{ID: "a", Section: models.SectionBackground},
			Score: 0.50,
		},
		{
			Chunk: models.Chunk{ID: "b", Section: models.SectionResults},
			Score: 0.50,
		},
	}

	applyBoosts(hits, now)

	// Identical base scores: the Results chunk must outrank Background.
	if hits[0].Chunk.ID != "b" {
		t.Errorf("expected Results chunk first, got %q", hits[0].Chunk.ID)
	}
	if hits[0].SectionBoost != 0.15 {
		t.Errorf("SectionBoost = %v, want 0.15", hits[0].SectionBoost)
	}
	if hits[0].Score != 0.65 {
		t.Errorf("Score = %v, want 0.65", hits[0].Score)
	}
}

func TestApplyBoostsQualityAndRecency(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	hits := []models.ScoredHit{
		{
			Chunk: models.Chunk{
				ID:           "x",
				Section:      models.SectionUnstructured,
				QualityTotal: 0.8,
				PublishedAt:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			},
			Score: 0.40,
		},
	}

	applyBoosts(hits, now)

	h := hits[0]
	if diff := h.QualityBoost - 0.08; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("QualityBoost = %v, want 0.08", h.QualityBoost)
	}
	if h.RecencyBoost != 0.10 {
		t.Errorf("RecencyBoost = %v, want 0.10", h.RecencyBoost)
	}
	if h.SectionBoost != 0 {
		t.Errorf("SectionBoost = %v, want 0", h.SectionBoost)
	}
	want := 0.40 + 0.08 + 0.10
	if diff := h.Score - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Score = %v, want %v", h.Score, want)
	}
}
