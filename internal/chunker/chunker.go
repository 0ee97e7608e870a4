package chunker

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"medlit/internal/models"
	"medlit/internal/tokenizer"
)

// Version identifies the chunking implementation, recorded in chunk
// metadata. Update when the chunking logic changes in a way that should
// trigger re-ingestion.
const Version = "v1.0"

// chunkNamespace is the fixed UUID namespace for deterministic chunk IDs.
// Hashing "<parent_uid>:<chunk_id>" under a fixed namespace keeps point IDs
// stable across re-runs, which is what makes re-ingestion an overwrite
// instead of a duplicate insert.
var chunkNamespace = uuid.MustParse("b60b2a6c-99b0-4d15-9a4e-2f1c6c3d8e47")

// DeterministicID returns the stable point ID for a chunk of a document.
func DeterministicID(parentUID, chunkID string) string {
	return uuid.NewSHA1(chunkNamespace, []byte(parentUID+":"+chunkID)).String()
}

// Config holds chunking parameters. Token counts are measured with the
// injected tokenizer.
type Config struct {
	// TargetTokens is the size a window aims for.
	TargetTokens int
	// HardMaxTokens is the ceiling no chunk may exceed.
	HardMaxTokens int
	// MinSectionTokens is the smallest remainder worth a window of its
	// own; a shorter tail is absorbed into the previous window when it fits.
	MinSectionTokens int
	// OverlapTokens is the trailing-sentence overlap between consecutive
	// windows of the same section.
	OverlapTokens int
}

// DefaultConfig returns the default chunking parameters.
func DefaultConfig() Config {
	return Config{
		TargetTokens:     300,
		HardMaxTokens:    450,
		MinSectionTokens: 120,
		OverlapTokens:    50,
	}
}

// AbstractChunker turns documents into ordered, bounded, overlapping
// chunks with deterministic IDs. Chunking is pure and stateless apart from
// the read-only config and tokenizer, so one chunker is safe to share
// across concurrent workers.
type AbstractChunker struct {
	cfg    Config
	tok    tokenizer.Tokenizer
	logger *slog.Logger
}

// New creates a chunker. Zero-valued config fields fall back to defaults.
func New(cfg Config, tok tokenizer.Tokenizer) *AbstractChunker {
	def := DefaultConfig()
	if cfg.TargetTokens <= 0 {
		cfg.TargetTokens = def.TargetTokens
	}
	if cfg.HardMaxTokens <= 0 {
		cfg.HardMaxTokens = def.HardMaxTokens
	}
	if cfg.MinSectionTokens <= 0 {
		cfg.MinSectionTokens = def.MinSectionTokens
	}
	if cfg.OverlapTokens < 0 {
		cfg.OverlapTokens = def.OverlapTokens
	}
	return &AbstractChunker{
		cfg:    cfg,
		tok:    tok,
		logger: slog.Default(),
	}
}

// ChunkDocument splits a document into chunks. Empty or whitespace-only
// text yields zero chunks, never an error; the caller decides whether that
// is worth a warning.
func (c *AbstractChunker) ChunkDocument(doc models.Document) []models.Chunk {
	text := normalizeText(doc.Text)
	if text == "" {
		return nil
	}

	sections := detectSections(text)
	single := len(sections) == 1

	var chunks []models.Chunk
	for si, sec := range sections {
		sents := splitSentences(sec.Content)
		if len(sents) == 0 {
			continue
		}

		windows := c.windows(sents)
		for wi, w := range windows {
			body := strings.Join(sents[w[0]:w[1]], " ")
			chunkID := shortChunkID(single, si, wi, len(windows))

			chunks = append(chunks, models.Chunk{
				ID:           DeterministicID(doc.UID, chunkID),
				ChunkID:      chunkID,
				ParentUID:    doc.UID,
				Source:       doc.Source,
				ChunkIdx:     len(chunks),
				Text:         body,
				Title:        doc.Title,
				Section:      sec.Name,
				Tokens:       c.tok.CountTokens(body),
				NSentences:   w[1] - w[0],
				PublishedAt:  doc.PublishedAt,
				QualityTotal: doc.QualityTotal,
				Meta:         c.chunkMeta(doc, sec.Name),
			})
		}
	}

	c.prefixFirstChunk(doc, chunks)
	return chunks
}

// shortChunkID builds the in-document identifier: window-numbered "w{n}"
// for single-section documents, "s{i}" / "s{i}_{w}" for sectioned ones.
func shortChunkID(singleSection bool, sectionIdx, windowIdx, windowCount int) string {
	if singleSection {
		return fmt.Sprintf("w%d", windowIdx)
	}
	if windowCount == 1 {
		return fmt.Sprintf("s%d", sectionIdx)
	}
	return fmt.Sprintf("s%d_%d", sectionIdx, windowIdx)
}

// chunkMeta builds the namespaced metadata map: chunker provenance, the
// section boost weight, and a "src.<source>.*" passthrough of scalar
// document detail fields.
func (c *AbstractChunker) chunkMeta(doc models.Document, section string) map[string]any {
	meta := map[string]any{
		"chunker.version":   Version,
		"chunker.tokenizer": c.tok.Identifier(),
		"boost.section":     models.SectionBoost(section),
	}
	for k, v := range doc.Detail {
		if isScalar(v) {
			meta["src."+doc.Source+"."+k] = v
		}
	}
	return meta
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool, int, int32, int64, float32, float64:
		return true
	}
	return false
}

// prefixFirstChunk prepends the title/section display prefix to the first
// emitted chunk only and recomputes its token count. No other chunk
// carries the prefix; reconstruction strips it again.
func (c *AbstractChunker) prefixFirstChunk(doc models.Document, chunks []models.Chunk) {
	if len(chunks) == 0 || doc.Title == "" {
		return
	}
	first := &chunks[0]
	var b strings.Builder
	b.WriteString(doc.Title)
	b.WriteString("\n")
	if first.Section != models.SectionUnstructured {
		b.WriteString("[Section] ")
		b.WriteString(first.Section)
		b.WriteString("\n")
	}
	b.WriteString(first.Text)
	first.Text = b.String()
	first.Tokens = c.tok.CountTokens(first.Text)
}

// windows partitions a section's sentences into [start, end) windows.
// A section within the hard maximum is one window. Otherwise sentences
// accumulate greedily up to the target without crossing the hard maximum,
// the boundary is widened for numeric safety, and the next window starts
// far enough back to reuse up to OverlapTokens of trailing context.
func (c *AbstractChunker) windows(sents []string) [][2]int {
	toks := make([]int, len(sents))
	total := 0
	for i, s := range sents {
		toks[i] = c.tok.CountTokens(s)
		total += toks[i]
	}

	if total <= c.cfg.HardMaxTokens {
		return [][2]int{{0, len(sents)}}
	}

	var out [][2]int
	start := 0
	for start < len(sents) {
		end := start
		wt := 0
		for end < len(sents) && wt < c.cfg.TargetTokens && wt+toks[end] <= c.cfg.HardMaxTokens {
			wt += toks[end]
			end++
		}
		if end == start {
			// A lone sentence above the hard maximum still has to go
			// somewhere; emit it by itself.
			wt = toks[end]
			end++
		}

		end, wt = c.expandBoundary(sents, toks, start, end, wt)

		// Absorb a tail too short to stand as its own window.
		if end < len(sents) {
			rem := 0
			for j := end; j < len(sents); j++ {
				rem += toks[j]
			}
			if rem < c.cfg.MinSectionTokens && wt+rem <= c.cfg.HardMaxTokens {
				end = len(sents)
			}
		}

		out = append(out, [2]int{start, end})
		if end >= len(sents) {
			break
		}

		// Walk backward from the window end collecting overlap sentences.
		next := end
		ot := 0
		for j := end - 1; j > start; j-- {
			if ot+toks[j] > c.cfg.OverlapTokens {
				break
			}
			ot += toks[j]
			next = j
		}
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return out
}

// expandBoundary widens a window whose boundary would separate a statistic
// from its comparison context. Forward extension is preferred; when that
// would cross the hard maximum, the boundary retreats one sentence so the
// statistic travels with its comparator into the next window.
func (c *AbstractChunker) expandBoundary(sents []string, toks []int, start, end, wt int) (int, int) {
	if end >= len(sents) || !splitsStatistic(sents[end-1], sents[end]) {
		return end, wt
	}
	if wt+toks[end] <= c.cfg.HardMaxTokens {
		return end + 1, wt + toks[end]
	}
	if end-start > 1 {
		return end - 1, wt - toks[end-1]
	}
	return end, wt
}
