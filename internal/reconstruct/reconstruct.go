// Package reconstruct reassembles document-level search results from
// ranked chunk hits.
package reconstruct

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"medlit/internal/contextutil"
	"medlit/internal/models"
)

// Documents groups chunk hits by parent document, reassembles each
// document's text in canonical section order, and returns up to limit
// documents ranked by their best chunk score. A document that fails to
// reassemble is skipped so one malformed group cannot sink the response.
func Documents(ctx context.Context, hits []models.ScoredHit, limit int) []models.ReconstructedDocument {
	logger := contextutil.LoggerFromContext(ctx)

	if len(hits) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = 10
	}

	groups := make(map[string][]models.ScoredHit)
	order := make([]string, 0)
	for _, hit := range hits {
		uid := hit.Chunk.ParentUID
		if uid == "" {
			logger.WarnContext(ctx, "skipping chunk without parent uid", "chunk_id", hit.Chunk.ID)
			continue
		}
		if _, ok := groups[uid]; !ok {
			order = append(order, uid)
		}
		groups[uid] = append(groups[uid], hit)
	}

	docs := make([]models.ReconstructedDocument, 0, len(order))
	for _, uid := range order {
		doc, err := assemble(uid, groups[uid])
		if err != nil {
			logger.WarnContext(ctx, "failed to reassemble document", "uid", uid, "error", err)
			continue
		}
		docs = append(docs, doc)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].BestScore != docs[j].BestScore {
			return docs[i].BestScore > docs[j].BestScore
		}
		return docs[i].UID < docs[j].UID
	})

	if len(docs) > limit {
		docs = docs[:limit]
	}
	return docs
}

// assemble builds one document from its chunk hits.
func assemble(uid string, hits []models.ScoredHit) (models.ReconstructedDocument, error) {
	if len(hits) == 0 {
		return models.ReconstructedDocument{}, fmt.Errorf("no chunks for document")
	}

	// Reading order, not retrieval order: section priority first, then
	// window position within the section.
	sorted := make([]models.ScoredHit, len(hits))
	copy(sorted, hits)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi := models.SectionPriority(sorted[i].Chunk.Section)
		pj := models.SectionPriority(sorted[j].Chunk.Section)
		if pi != pj {
			return pi < pj
		}
		si, wi := parseChunkID(sorted[i].Chunk.ChunkID)
		sj, wj := parseChunkID(sorted[j].Chunk.ChunkID)
		if si != sj {
			return si < sj
		}
		return wi < wj
	})

	first := sorted[0].Chunk
	var parts []string
	var best, sum float64
	sectionSeen := make(map[string]bool)
	var sections []string

	for i, hit := range sorted {
		chunk := hit.Chunk
		text := stripDisplayPrefix(chunk)
		if text != "" {
			parts = append(parts, text)
		}
		if i == 0 || hit.Score > best {
			best = hit.Score
		}
		sum += hit.Score
		if chunk.Section != "" && !sectionSeen[chunk.Section] {
			sectionSeen[chunk.Section] = true
			sections = append(sections, chunk.Section)
		}
	}

	abstract := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	if abstract == "" {
		return models.ReconstructedDocument{}, fmt.Errorf("document has no text after prefix stripping")
	}

	return models.ReconstructedDocument{
		UID:           uid,
		Source:        first.Source,
		Title:         first.Title,
		Abstract:      abstract,
		PublishedAt:   first.PublishedAt,
		QualityTotal:  first.QualityTotal,
		ChunkCount:    len(sorted),
		SectionsFound: sections,
		BestScore:     best,
		AvgScore:      sum / float64(len(sorted)),
		SourceURL:     sourceURL(first.Source, uid),
	}, nil
}

// parseChunkID decodes a short chunk identifier into (section, window).
// "s{i}_{w}" is window w of section i, "s{i}" is a whole section,
// "w{n}" is window n of an undivided document. Unparseable IDs sort last.
func parseChunkID(id string) (int, int) {
	switch {
	case strings.HasPrefix(id, "s"):
		body := id[1:]
		if sec, win, ok := strings.Cut(body, "_"); ok {
			return atoiOr(sec, 1<<30), atoiOr(win, 1<<30)
		}
		return atoiOr(body, 1<<30), 0
	case strings.HasPrefix(id, "w"):
		return 0, atoiOr(id[1:], 1<<30)
	default:
		return 1 << 30, 1 << 30
	}
}

func atoiOr(s string, fallback int) int {
	n := 0
	if s == "" {
		return fallback
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return fallback
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// stripDisplayPrefix removes the title line and section label that the
// chunker prepends to a document's first chunk, plus any leading
// "Section:" heading left in the raw text, so reassembly does not repeat
// them mid-abstract.
func stripDisplayPrefix(chunk models.Chunk) string {
	text := chunk.Text

	if chunk.ChunkIdx == 0 && chunk.Title != "" {
		if rest, ok := strings.CutPrefix(text, chunk.Title); ok {
			text = strings.TrimLeft(rest, "\n ")
		}
	}
	if chunk.Section != "" {
		if rest, ok := strings.CutPrefix(text, "[Section] "+chunk.Section); ok {
			text = strings.TrimLeft(rest, "\n ")
		}
		if rest, ok := strings.CutPrefix(text, chunk.Section+":"); ok {
			text = strings.TrimLeft(rest, " ")
		}
	}
	return strings.TrimSpace(text)
}

// sourceURL returns the canonical public URL for a document, when the
// source has one. UIDs are "<source>:<source_id>".
func sourceURL(source, uid string) string {
	_, id, ok := strings.Cut(uid, ":")
	if !ok || id == "" {
		return ""
	}
	switch source {
	case "pubmed":
		return "https://pubmed.ncbi.nlm.nih.gov/" + id + "/"
	default:
		return ""
	}
}
