package index

import (
	"fmt"
	"time"

	"medlit/internal/models"
)

// Payload property names. Scalar properties double as filter targets;
// "meta" is a structured property stored for display and provenance only;
// the index cannot filter on it.
const (
	FieldParentUID    = "parent_uid"
	FieldSource       = "source"
	FieldSection      = "section"
	FieldTitle        = "title"
	FieldText         = "text"
	FieldChunkID      = "chunk_id"
	FieldChunkIdx     = "chunk_idx"
	FieldPublishedAt  = "published_at"
	FieldYear         = "year"
	FieldTokens       = "tokens"
	FieldNSentences   = "n_sentences"
	FieldQualityTotal = "quality_total"
	FieldMeta         = "meta"
)

// ScalarFields lists the payload properties the index can filter on.
var ScalarFields = map[string]bool{
	FieldParentUID:    true,
	FieldSource:       true,
	FieldSection:      true,
	FieldTitle:        true,
	FieldChunkID:      true,
	FieldChunkIdx:     true,
	FieldYear:         true,
	FieldTokens:       true,
	FieldNSentences:   true,
	FieldQualityTotal: true,
}

// PointFromChunk converts a chunk and its embedding into an index point.
// Timestamps are stored as RFC 3339 strings plus a scalar year for range
// filtering.
func PointFromChunk(chunk models.Chunk, vector []float32) Point {
	payload := map[string]any{
		FieldParentUID:    chunk.ParentUID,
		FieldSource:       chunk.Source,
		FieldSection:      chunk.Section,
		FieldTitle:        chunk.Title,
		FieldText:         chunk.Text,
		FieldChunkID:      chunk.ChunkID,
		FieldChunkIdx:     chunk.ChunkIdx,
		FieldYear:         chunk.Year(),
		FieldTokens:       chunk.Tokens,
		FieldNSentences:   chunk.NSentences,
		FieldQualityTotal: chunk.QualityTotal,
	}
	if !chunk.PublishedAt.IsZero() {
		payload[FieldPublishedAt] = chunk.PublishedAt.Format(time.RFC3339)
	}
	if len(chunk.Meta) > 0 {
		payload[FieldMeta] = chunk.Meta
	}
	return Point{ID: chunk.ID, Vector: vector, Payload: payload}
}

// ChunkFromPayload rebuilds a chunk from a hit's payload. It is lenient
// about numeric types since the index returns integers and doubles
// interchangeably, but a hit without parent_uid or text is malformed.
func ChunkFromPayload(id string, payload map[string]any) (models.Chunk, error) {
	chunk := models.Chunk{
		ID:           id,
		ParentUID:    asString(payload[FieldParentUID]),
		Source:       asString(payload[FieldSource]),
		Section:      asString(payload[FieldSection]),
		Title:        asString(payload[FieldTitle]),
		Text:         asString(payload[FieldText]),
		ChunkID:      asString(payload[FieldChunkID]),
		ChunkIdx:     asInt(payload[FieldChunkIdx]),
		Tokens:       asInt(payload[FieldTokens]),
		NSentences:   asInt(payload[FieldNSentences]),
		QualityTotal: asFloat(payload[FieldQualityTotal]),
	}

	if chunk.ParentUID == "" {
		return models.Chunk{}, fmt.Errorf("hit %s has no parent_uid", id)
	}
	if chunk.Text == "" {
		return models.Chunk{}, fmt.Errorf("hit %s has no text", id)
	}

	if raw := asString(payload[FieldPublishedAt]); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			chunk.PublishedAt = ts
		}
	}
	if meta, ok := payload[FieldMeta].(map[string]any); ok {
		chunk.Meta = meta
	}

	return chunk, nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}
