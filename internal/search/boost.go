package search

import (
	"sort"
	"time"

	"medlit/internal/models"
)

const qualityBoostWeight = 0.1

// recencyBoost returns the additive boost for a publication year relative
// to now. Recent findings outrank older ones in tiers rather than on a
// continuous decay, so the effect stays bounded and auditable.
func recencyBoost(year int, now time.Time) float64 {
	if year <= 0 {
		return 0
	}
	age := now.Year() - year
	switch {
	case age < 0:
		return 0
	case age <= 2:
		return 0.10
	case age <= 5:
		return 0.05
	case age <= 10:
		return 0.02
	default:
		return 0
	}
}

// applyBoosts adds section, quality, and recency boosts to each hit's
// relevance score and re-sorts the hits by final score. The individual
// boost components are recorded on the hit for score explanation.
func applyBoosts(hits []models.ScoredHit, now time.Time) {
	for i := range hits {
		h := &hits[i]
		h.SectionBoost = models.SectionBoost(h.Chunk.Section)
		h.QualityBoost = h.Chunk.QualityTotal * qualityBoostWeight
		h.RecencyBoost = recencyBoost(h.Chunk.Year(), now)
		h.Score += h.SectionBoost + h.QualityBoost + h.RecencyBoost
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Chunk.ID < hits[j].Chunk.ID
	})
}
