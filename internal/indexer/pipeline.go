// Package indexer orchestrates chunking, embedding, and index upsert for
// normalized literature documents.
package indexer

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"medlit/internal/chunker"
	"medlit/internal/contextutil"
	"medlit/internal/embed"
	"medlit/internal/index"
	"medlit/internal/models"
	"medlit/internal/storage"
)

// DocResult reports what indexing one document did.
type DocResult struct {
	// Skipped is true when the document's content hash matched the
	// catalog and nothing was re-indexed.
	Skipped bool
	// Chunks is the number of chunks embedded and upserted.
	Chunks int
	// TokenCounts holds the token count of each produced chunk.
	TokenCounts []int
}

// Pipeline indexes documents into the search index, with a SQLite catalog
// for change detection and stale point cleanup.
type Pipeline struct {
	docRepo   storage.DocumentStore
	chunkRepo storage.ChunkStore
	chunker   *chunker.AbstractChunker
	embedder  embed.Embedder
	index     index.SearchIndex
	pool      *ants.Pool
}

// NewPipeline creates an indexing pipeline with a worker pool of the
// given size for concurrent bulk indexing. Call Release when done.
func NewPipeline(
	docRepo storage.DocumentStore,
	chunkRepo storage.ChunkStore,
	ch *chunker.AbstractChunker,
	embedder embed.Embedder,
	idx index.SearchIndex,
	concurrency int,
) (*Pipeline, error) {
	if concurrency <= 0 {
		concurrency = 4
	}
	pool, err := ants.NewPool(concurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	return &Pipeline{
		docRepo:   docRepo,
		chunkRepo: chunkRepo,
		chunker:   ch,
		embedder:  embedder,
		index:     idx,
		pool:      pool,
	}, nil
}

// Release releases the worker pool. The pipeline should not be used
// after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// contentHash digests the parts of a document that affect its chunks.
func contentHash(doc models.Document) string {
	h := sha256.New()
	h.Write([]byte(doc.Title))
	h.Write([]byte{0})
	h.Write([]byte(doc.Text))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// IndexDocument indexes a single document. Unchanged documents (by
// content hash) are skipped. Stale index points from a previous version
// are deleted before the new chunks are upserted.
func (p *Pipeline) IndexDocument(ctx context.Context, doc models.Document) (*DocResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if doc.UID == "" {
		return nil, fmt.Errorf("document has no UID")
	}

	hash := contentHash(doc)

	existing, err := p.docRepo.GetByUID(ctx, doc.UID)
	if err != nil && err != storage.ErrNotFound {
		return nil, fmt.Errorf("failed to check existing document: %w", err)
	}

	if existing != nil && existing.Hash == hash {
		logger.DebugContext(ctx, "skipping unchanged document", "uid", doc.UID, "hash", hash)
		return &DocResult{Skipped: true}, nil
	}

	chunks := p.chunker.ChunkDocument(doc)
	if len(chunks) == 0 {
		logger.WarnContext(ctx, "no chunks produced", "uid", doc.UID)
		return &DocResult{}, nil
	}

	// Chunk IDs are deterministic, so points that survive re-chunking are
	// overwritten in place. Only IDs absent from the new set are stale.
	if existing != nil {
		oldIDs, err := p.chunkRepo.ListIDsByDocument(ctx, doc.UID)
		if err != nil {
			return nil, fmt.Errorf("failed to list old chunk IDs: %w", err)
		}
		newIDs := make(map[string]bool, len(chunks))
		for _, c := range chunks {
			newIDs[c.ID] = true
		}
		var stale []string
		for _, id := range oldIDs {
			if !newIDs[id] {
				stale = append(stale, id)
			}
		}
		if len(stale) > 0 {
			if err := p.index.Delete(ctx, stale); err != nil {
				logger.WarnContext(ctx, "failed to delete stale points", "uid", doc.UID, "count", len(stale), "error", err)
			}
		}
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embeddings, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(embeddings))
	}

	points := make([]index.Point, len(chunks))
	refs := make([]storage.ChunkRef, len(chunks))
	tokenCounts := make([]int, len(chunks))
	for i, c := range chunks {
		points[i] = index.PointFromChunk(c, embeddings[i])
		refs[i] = storage.ChunkRef{ID: c.ID, DocumentUID: doc.UID, ChunkIdx: c.ChunkIdx}
		tokenCounts[i] = c.Tokens
	}

	if err := p.index.Upsert(ctx, points); err != nil {
		return nil, fmt.Errorf("failed to upsert points: %w", err)
	}

	record := &storage.DocumentRecord{
		UID:          doc.UID,
		Source:       doc.Source,
		Title:        doc.Title,
		Hash:         hash,
		PublishedAt:  doc.PublishedAt,
		QualityTotal: doc.QualityTotal,
	}
	if err := p.docRepo.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to upsert document record: %w", err)
	}
	if err := p.chunkRepo.ReplaceForDocument(ctx, doc.UID, refs); err != nil {
		return nil, fmt.Errorf("failed to record chunk refs: %w", err)
	}

	logger.InfoContext(ctx, "indexed document", "uid", doc.UID, "chunks", len(chunks))
	return &DocResult{Chunks: len(chunks), TokenCounts: tokenCounts}, nil
}

// IndexAll indexes a batch of documents concurrently. Errors for
// individual documents are logged but don't stop the batch.
func (p *Pipeline) IndexAll(ctx context.Context, docs []models.Document) (*CoverageStats, error) {
	logger := contextutil.LoggerFromContext(ctx)

	logger.InfoContext(ctx, "starting indexing", "total_docs", len(docs))

	var (
		mu          sync.Mutex
		wg          sync.WaitGroup
		stats       CoverageStats
		tokenCounts []int
		errorCount  int
	)
	stats.ChunkerVersion = chunker.Version

	for _, doc := range docs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		doc := doc
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			result, err := p.IndexDocument(ctx, doc)

			mu.Lock()
			defer mu.Unlock()
			stats.DocsProcessed++
			if err != nil {
				errorCount++
				logger.ErrorContext(ctx, "failed to index document", "uid", doc.UID, "error", err)
				return
			}
			if result.Skipped {
				stats.DocsSkippedUnchanged++
				return
			}
			if result.Chunks == 0 {
				stats.DocsWithoutChunks++
				return
			}
			stats.ChunksEmbedded += result.Chunks
			tokenCounts = append(tokenCounts, result.TokenCounts...)
		})
		if err != nil {
			wg.Done()
			return nil, fmt.Errorf("failed to submit indexing task: %w", err)
		}
	}

	wg.Wait()

	stats.ChunkTokenStats = computeTokenStats(tokenCounts)
	logger.InfoContext(ctx, "indexing completed",
		"total_docs", len(docs),
		"skipped", stats.DocsSkippedUnchanged,
		"chunks", stats.ChunksEmbedded,
		"errors", errorCount,
	)

	if errorCount > 0 {
		return &stats, fmt.Errorf("indexing completed with %d errors", errorCount)
	}
	return &stats, nil
}

// DeleteDocument removes a document's points from the index and its
// rows from the catalog.
func (p *Pipeline) DeleteDocument(ctx context.Context, uid string) error {
	ids, err := p.chunkRepo.ListIDsByDocument(ctx, uid)
	if err != nil {
		return fmt.Errorf("failed to list chunk IDs: %w", err)
	}
	if len(ids) > 0 {
		if err := p.index.Delete(ctx, ids); err != nil {
			return fmt.Errorf("failed to delete points: %w", err)
		}
	}
	if err := p.chunkRepo.DeleteByDocument(ctx, uid); err != nil {
		return err
	}
	return p.docRepo.Delete(ctx, uid)
}
