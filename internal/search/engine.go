package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"medlit/internal/contextutil"
	"medlit/internal/embed"
	"medlit/internal/index"
	"medlit/internal/models"
	"medlit/internal/reconstruct"
)

// Mode selects the retrieval strategy.
type Mode string

const (
	ModeSemantic Mode = "semantic"
	ModeLexical  Mode = "lexical"
	ModeHybrid   Mode = "hybrid"
)

// DefaultAlpha is the hybrid blend weight when none is given: equal parts
// semantic and lexical.
const DefaultAlpha = 0.5

// candidateMultiplier widens the lexical and hybrid candidate pools so
// client-side scoring has enough material to rank before truncation.
const candidateMultiplier = 4

// reconstructMultiplier widens the chunk pool behind a document-level
// search so that documents spread over several chunks survive truncation.
const reconstructMultiplier = 3

// Options controls a single search call.
type Options struct {
	// Mode is the retrieval strategy. Empty means hybrid.
	Mode Mode
	// Alpha is the hybrid blend weight in [0,1]: 1 is purely semantic,
	// 0 purely lexical. Nil means DefaultAlpha. Ignored outside hybrid mode.
	Alpha *float64
	// Filters restricts results by scalar payload fields. Build with
	// FilterBuilder so invalid fields fail before the query runs.
	Filters []index.Condition
	// Limit is the maximum number of results. Zero means 10.
	Limit int
}

// Engine runs chunk- and document-level retrieval over an indexed corpus.
type Engine struct {
	index    index.SearchIndex
	embedder embed.Embedder
}

// NewEngine creates a search engine over the given index and embedder.
func NewEngine(idx index.SearchIndex, embedder embed.Embedder) *Engine {
	return &Engine{index: idx, embedder: embedder}
}

// SearchChunks retrieves the highest-scoring chunks for a query.
func (e *Engine) SearchChunks(ctx context.Context, query string, opts Options) ([]models.ScoredHit, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if query == "" {
		return nil, fmt.Errorf("query must not be empty")
	}

	mode := opts.Mode
	if mode == "" {
		mode = ModeHybrid
	}
	alpha := DefaultAlpha
	if opts.Alpha != nil {
		alpha = *opts.Alpha
	}
	if alpha < 0 || alpha > 1 {
		return nil, fmt.Errorf("alpha must be in [0,1], got %v", alpha)
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	logger.InfoContext(ctx, "search started", "mode", mode, "limit", limit, "filters", len(opts.Filters))

	var hits []models.ScoredHit
	var err error
	switch mode {
	case ModeSemantic:
		hits, err = e.semanticHits(ctx, query, limit, opts.Filters)
	case ModeLexical:
		hits, err = e.lexicalHits(ctx, query, limit, opts.Filters)
	case ModeHybrid:
		hits, err = e.hybridHits(ctx, query, limit, alpha, opts.Filters)
	default:
		return nil, fmt.Errorf("unknown search mode %q", mode)
	}
	if err != nil {
		return nil, err
	}

	applyBoosts(hits, time.Now())
	if len(hits) > limit {
		hits = hits[:limit]
	}

	logger.InfoContext(ctx, "search completed", "mode", mode, "results", len(hits))
	return hits, nil
}

// SearchDocuments retrieves chunks for a query and reassembles them into
// ranked document-level results.
func (e *Engine) SearchDocuments(ctx context.Context, query string, opts Options) ([]models.ReconstructedDocument, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	// Over-fetch chunks so multi-chunk documents are not starved by the
	// chunk-level cutoff.
	chunkOpts := opts
	chunkOpts.Limit = limit * reconstructMultiplier
	hits, err := e.SearchChunks(ctx, query, chunkOpts)
	if err != nil {
		return nil, err
	}

	return reconstruct.Documents(ctx, hits, limit), nil
}

// semanticHits runs a dense similarity query and hydrates the results.
func (e *Engine) semanticHits(ctx context.Context, query string, limit int, conds []index.Condition) ([]models.ScoredHit, error) {
	logger := contextutil.LoggerFromContext(ctx)

	embeddings, err := e.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed query", "error", err)
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned for query")
	}

	raw, err := e.index.QueryVector(ctx, embeddings[0], limit, conds)
	if err != nil {
		return nil, fmt.Errorf("semantic query failed: %w", err)
	}

	hits := make([]models.ScoredHit, 0, len(raw))
	for _, h := range raw {
		chunk, err := index.ChunkFromPayload(h.ID, h.Payload)
		if err != nil {
			logger.WarnContext(ctx, "skipping malformed point", "point_id", h.ID, "error", err)
			continue
		}
		score := float64(h.Score)
		hits = append(hits, models.ScoredHit{Chunk: chunk, Score: score, ScoreSemantic: score})
	}
	return hits, nil
}

// lexicalHits fetches text-matching candidates from the index and scores
// them client-side. The index's full-text match is a boolean filter, so
// ranking happens here.
func (e *Engine) lexicalHits(ctx context.Context, query string, limit int, conds []index.Condition) ([]models.ScoredHit, error) {
	logger := contextutil.LoggerFromContext(ctx)

	raw, err := e.index.MatchText(ctx, query, limit*candidateMultiplier, conds)
	if err != nil {
		return nil, fmt.Errorf("lexical match failed: %w", err)
	}

	hits := make([]models.ScoredHit, 0, len(raw))
	for _, h := range raw {
		chunk, err := index.ChunkFromPayload(h.ID, h.Payload)
		if err != nil {
			logger.WarnContext(ctx, "skipping malformed point", "point_id", h.ID, "error", err)
			continue
		}
		score := float64(lexicalScore(query, chunk.Text, chunk.Section))
		hits = append(hits, models.ScoredHit{Chunk: chunk, Score: score, ScoreLexical: score})
	}
	return hits, nil
}

// hybridHits runs the semantic and lexical legs concurrently and blends
// their scores. If exactly one leg fails the other still serves results;
// only a double failure is an error.
func (e *Engine) hybridHits(ctx context.Context, query string, limit int, alpha float64, conds []index.Condition) ([]models.ScoredHit, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var wg sync.WaitGroup
	var semHits, lexHits []models.ScoredHit
	var semErr, lexErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		semHits, semErr = e.semanticHits(ctx, query, limit*candidateMultiplier, conds)
	}()
	go func() {
		defer wg.Done()
		lexHits, lexErr = e.lexicalHits(ctx, query, limit, conds)
	}()
	wg.Wait()

	if semErr != nil && lexErr != nil {
		return nil, fmt.Errorf("hybrid search failed: semantic: %v; lexical: %v", semErr, lexErr)
	}
	if semErr != nil {
		logger.WarnContext(ctx, "semantic leg failed, serving lexical results only", "error", semErr)
	}
	if lexErr != nil {
		logger.WarnContext(ctx, "lexical leg failed, serving semantic results only", "error", lexErr)
	}

	merged := make(map[string]*models.ScoredHit, len(semHits)+len(lexHits))
	order := make([]string, 0, len(semHits)+len(lexHits))
	for _, h := range semHits {
		hit := h
		merged[h.Chunk.ID] = &hit
		order = append(order, h.Chunk.ID)
	}
	for _, h := range lexHits {
		if existing, ok := merged[h.Chunk.ID]; ok {
			existing.ScoreLexical = h.ScoreLexical
			continue
		}
		hit := h
		merged[h.Chunk.ID] = &hit
		order = append(order, h.Chunk.ID)
	}

	hits := make([]models.ScoredHit, 0, len(order))
	for _, id := range order {
		h := merged[id]
		h.Score = alpha*h.ScoreSemantic + (1-alpha)*h.ScoreLexical
		hits = append(hits, *h)
	}
	return hits, nil
}
