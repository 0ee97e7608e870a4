package storage

import "time"

// DocumentRecord is the catalog row for an indexed document. The hash is
// a content digest of the normalized text; unchanged documents are
// skipped on re-ingestion.
type DocumentRecord struct {
	UID          string
	Source       string
	Title        string
	Hash         string
	PublishedAt  time.Time
	QualityTotal float64
	IndexedAt    time.Time
}

// ChunkRef maps a chunk's index point ID back to its document, so stale
// points can be deleted when a document shrinks between ingestions.
type ChunkRef struct {
	ID          string
	DocumentUID string
	ChunkIdx    int
}
