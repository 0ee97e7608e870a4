package indexer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"

	"medlit/internal/chunker"
)

// CoverageStats summarizes one indexing run.
type CoverageStats struct {
	// DocsProcessed is the total number of documents handled.
	DocsProcessed int `json:"docs_processed"`
	// DocsSkippedUnchanged is the number skipped because their content
	// hash matched the catalog.
	DocsSkippedUnchanged int `json:"docs_skipped_unchanged"`
	// DocsWithoutChunks is the number that produced 0 chunks.
	DocsWithoutChunks int `json:"docs_without_chunks"`
	// ChunksEmbedded is the number of chunks embedded and stored.
	ChunksEmbedded int `json:"chunks_embedded"`
	// ChunkTokenStats summarizes token counts across embedded chunks.
	ChunkTokenStats ChunkTokenStats `json:"chunk_token_stats"`
	// ChunkerVersion is the version of the chunker used.
	ChunkerVersion string `json:"chunker_version"`
}

// ChunkTokenStats contains statistics about token counts in chunks.
type ChunkTokenStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
	P95  int     `json:"p95"`
}

// IndexVersion derives a short hash identifying an index build from the
// chunker version, embedding model, and chunking parameters. Two indexes
// with the same version hash are interchangeable.
func IndexVersion(embeddingModel string, cfg chunker.Config) string {
	input := fmt.Sprintf("%s|%s|target=%d|hardMax=%d|minSection=%d|overlap=%d",
		chunker.Version, embeddingModel,
		cfg.TargetTokens, cfg.HardMaxTokens, cfg.MinSectionTokens, cfg.OverlapTokens)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16]
}

// computeTokenStats computes min, max, mean, and p95 from token counts.
func computeTokenStats(tokenCounts []int) ChunkTokenStats {
	if len(tokenCounts) == 0 {
		return ChunkTokenStats{}
	}

	sorted := make([]int, len(tokenCounts))
	copy(sorted, tokenCounts)
	sort.Ints(sorted)

	sum := 0
	for _, count := range tokenCounts {
		sum += count
	}
	mean := float64(sum) / float64(len(tokenCounts))

	p95Index := int(math.Ceil(float64(len(sorted)) * 0.95))
	if p95Index >= len(sorted) {
		p95Index = len(sorted) - 1
	}

	return ChunkTokenStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100,
		P95:  sorted[p95Index],
	}
}
