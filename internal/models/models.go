package models

import "time"

// Document is a normalized literature record, already fetched and cleaned
// by an upstream ingestion layer. It is read-only input to chunking.
type Document struct {
	// UID is the stable identifier, format "<source>:<source_id>" (e.g. "pubmed:38012345").
	UID string `json:"uid"`
	// Source identifies the literature source (e.g. "pubmed").
	Source string `json:"source"`
	// Title is the document title.
	Title string `json:"title"`
	// Text is the body to chunk (typically the abstract).
	Text string `json:"text"`
	// Authors lists the authors in source order.
	Authors []string `json:"authors,omitempty"`
	// PublishedAt is the publication date. Zero value means unknown.
	PublishedAt time.Time `json:"published_at"`
	// Identifiers maps external ID schemes to values (e.g. "doi", "pmid").
	Identifiers map[string]string `json:"identifiers,omitempty"`
	// Detail holds source-specific extension fields. Scalar entries are
	// passed through into chunk metadata under "src.<source>.*".
	Detail map[string]any `json:"detail,omitempty"`
	// QualityTotal is an externally supplied per-document quality score in [0,1].
	QualityTotal float64 `json:"quality_total"`
	// SchemaVersion tracks the normalized record schema.
	SchemaVersion int `json:"schema_version"`
}

// Chunk is a bounded fragment of a document's text, the unit of indexing
// and retrieval. Chunks are immutable once produced; re-chunking the same
// document yields identical IDs, so re-indexing overwrites in place.
type Chunk struct {
	// ID is a deterministic UUID derived from ParentUID and ChunkID.
	// It is the index point ID and the basis for idempotent upsert.
	ID string `json:"id"`
	// ChunkID is the short in-document identifier: "w{n}" for
	// unstructured or single-section documents, "s{i}" for a
	// single-window section, "s{i}_{w}" for window w of section i.
	ChunkID string `json:"chunk_id"`
	// ParentUID is the UID of the source document.
	ParentUID string `json:"parent_uid"`
	// Source is copied from the parent document.
	Source string `json:"source"`
	// ChunkIdx is the global ordinal of this chunk within the document.
	ChunkIdx int `json:"chunk_idx"`
	// Text is the chunk content. Only the chunk with ChunkIdx == 0
	// carries the title/section display prefix.
	Text string `json:"text"`
	// Title is the parent document title, copied for display.
	Title string `json:"title"`
	// Section is the canonical section label.
	Section string `json:"section"`
	// Tokens is the token count of Text under the chunking tokenizer.
	Tokens int `json:"tokens"`
	// NSentences is the number of sentences in the chunk.
	NSentences int `json:"n_sentences"`
	// PublishedAt is copied from the parent document.
	PublishedAt time.Time `json:"published_at"`
	// QualityTotal is copied from the parent document.
	QualityTotal float64 `json:"quality_total"`
	// Meta holds namespaced provenance metadata: chunker version,
	// tokenizer identifier, section boost weight, and a "src.<source>.*"
	// passthrough of scalar document detail fields.
	Meta map[string]any `json:"meta,omitempty"`
}

// Year returns the publication year, or 0 when the date is unknown.
func (c Chunk) Year() int {
	if c.PublishedAt.IsZero() {
		return 0
	}
	return c.PublishedAt.Year()
}

// ScoredHit is a chunk paired with its retrieval score and boost breakdown.
type ScoredHit struct {
	Chunk Chunk `json:"chunk"`
	// Score is the final score after blending and boosts.
	Score float64 `json:"score"`
	// ScoreSemantic and ScoreLexical are the pre-blend component scores.
	ScoreSemantic float64 `json:"score_semantic,omitempty"`
	ScoreLexical  float64 `json:"score_lexical,omitempty"`
	// SectionBoost, QualityBoost and RecencyBoost record the additive
	// adjustments applied on top of the base score.
	SectionBoost float64 `json:"section_boost,omitempty"`
	QualityBoost float64 `json:"quality_boost,omitempty"`
	RecencyBoost float64 `json:"recency_boost,omitempty"`
}

// ReconstructedDocument is a document-level search result reassembled from
// ranked chunk hits.
type ReconstructedDocument struct {
	UID    string `json:"uid"`
	Source string `json:"source"`
	Title  string `json:"title"`
	// Abstract is the reassembled text, section prefixes stripped,
	// chunks joined in canonical section order.
	Abstract      string    `json:"abstract"`
	PublishedAt   time.Time `json:"published_at"`
	QualityTotal  float64   `json:"quality_total"`
	ChunkCount    int       `json:"chunk_count"`
	SectionsFound []string  `json:"sections_found"`
	BestScore     float64   `json:"best_score"`
	AvgScore      float64   `json:"avg_score"`
	SourceURL     string    `json:"source_url,omitempty"`
}
