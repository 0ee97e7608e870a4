package chunker

import (
	"fmt"
	"strings"
	"testing"

	"medlit/internal/models"
)

// wordTokenizer counts one token per whitespace-separated word, which keeps
// windowing arithmetic predictable in tests.
type wordTokenizer struct{}

func (wordTokenizer) CountTokens(text string) int { return len(strings.Fields(text)) }
func (wordTokenizer) Identifier() string          { return "test/words" }

func testDoc(title, text string) models.Document {
	return models.Document{
		UID:    "pubmed:12345678",
		Source: "pubmed",
		Title:  title,
		Text:   text,
	}
}

func TestChunkDocument_EmptyTextYieldsNoChunks(t *testing.T) {
	c := New(DefaultConfig(), wordTokenizer{})

	for _, text := range []string{"", "   ", "\n\t "} {
		if chunks := c.ChunkDocument(testDoc("T", text)); len(chunks) != 0 {
			t.Errorf("ChunkDocument(%q) = %d chunks, want 0", text, len(chunks))
		}
	}
}

func TestChunkDocument_StructuredAbstract(t *testing.T) {
	c := New(DefaultConfig(), wordTokenizer{})

	doc := testDoc("Study X", "Background: A. Methods: B. Results: C (p=0.01). Conclusions: D.")
	chunks := c.ChunkDocument(doc)

	if len(chunks) != 4 {
		t.Fatalf("ChunkDocument() = %d chunks, want 4", len(chunks))
	}

	wantIDs := []string{"s0", "s1", "s2", "s3"}
	wantSections := []string{
		models.SectionBackground,
		models.SectionMethods,
		models.SectionResults,
		models.SectionConclusions,
	}
	for i, ch := range chunks {
		if ch.ChunkID != wantIDs[i] {
			t.Errorf("chunk %d ChunkID = %q, want %q", i, ch.ChunkID, wantIDs[i])
		}
		if ch.Section != wantSections[i] {
			t.Errorf("chunk %d Section = %q, want %q", i, ch.Section, wantSections[i])
		}
		if ch.ChunkIdx != i {
			t.Errorf("chunk %d ChunkIdx = %d, want %d", i, ch.ChunkIdx, i)
		}
		startsWithTitle := strings.HasPrefix(ch.Text, "Study X")
		if (i == 0) != startsWithTitle {
			t.Errorf("chunk %d title prefix = %t, want %t (text %q)",
				i, startsWithTitle, i == 0, ch.Text)
		}
	}

	if !strings.HasPrefix(chunks[0].Text, "Study X\n[Section] Background\n") {
		t.Errorf("first chunk text = %q, want title and section prefix", chunks[0].Text)
	}
}

func TestChunkDocument_Deterministic(t *testing.T) {
	c := New(DefaultConfig(), wordTokenizer{})
	doc := testDoc("Study X", "Background: One two three. Methods: Four five. Results: Six (p=0.01).")

	first := c.ChunkDocument(doc)
	second := c.ChunkDocument(doc)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ across runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("chunk %d ID differs across runs: %q vs %q", i, first[i].ID, second[i].ID)
		}
		if first[i].ChunkIdx != second[i].ChunkIdx {
			t.Errorf("chunk %d ChunkIdx differs across runs", i)
		}
	}
}

func TestDeterministicID_Stable(t *testing.T) {
	a := DeterministicID("pubmed:1", "s0")
	b := DeterministicID("pubmed:1", "s0")
	if a != b {
		t.Errorf("DeterministicID not stable: %q vs %q", a, b)
	}
	if DeterministicID("pubmed:2", "s0") == a {
		t.Error("DeterministicID collides across parent UIDs")
	}
	if DeterministicID("pubmed:1", "s1") == a {
		t.Error("DeterministicID collides across chunk IDs")
	}
}

func TestChunkDocument_WindowingRespectsHardMax(t *testing.T) {
	cfg := Config{TargetTokens: 16, HardMaxTokens: 30, MinSectionTokens: 1, OverlapTokens: 4}
	c := New(cfg, wordTokenizer{})

	var sb strings.Builder
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&sb, "Sentence number %d has exactly eight words total. ", i)
	}
	doc := testDoc("", strings.TrimSpace(sb.String()))

	chunks := c.ChunkDocument(doc)
	if len(chunks) < 2 {
		t.Fatalf("ChunkDocument() = %d chunks, want windowing to produce several", len(chunks))
	}

	tok := wordTokenizer{}
	for i, ch := range chunks {
		if ch.Tokens > cfg.HardMaxTokens {
			t.Errorf("chunk %d tokens = %d, exceeds hard max %d", i, ch.Tokens, cfg.HardMaxTokens)
		}
		if got := tok.CountTokens(ch.Text); got != ch.Tokens {
			t.Errorf("chunk %d recorded tokens = %d, recount = %d", i, ch.Tokens, got)
		}
		want := fmt.Sprintf("w%d", i)
		if ch.ChunkID != want {
			t.Errorf("chunk %d ChunkID = %q, want %q", i, ch.ChunkID, want)
		}
	}
}

func TestChunkDocument_CoversEverySentence(t *testing.T) {
	cfg := Config{TargetTokens: 16, HardMaxTokens: 30, MinSectionTokens: 1, OverlapTokens: 0}
	c := New(cfg, wordTokenizer{})

	var sentences []string
	for i := 0; i < 10; i++ {
		sentences = append(sentences, fmt.Sprintf("Observation %d covered exactly seven distinct words.", i))
	}
	doc := testDoc("Coverage Study", strings.Join(sentences, " "))

	chunks := c.ChunkDocument(doc)
	if len(chunks) == 0 {
		t.Fatal("ChunkDocument() produced no chunks")
	}

	var joined strings.Builder
	for i, ch := range chunks {
		text := ch.Text
		if i == 0 {
			text = strings.TrimPrefix(text, "Coverage Study\n")
		}
		joined.WriteString(text)
		joined.WriteString(" ")
	}
	for _, sent := range sentences {
		if !strings.Contains(joined.String(), sent) {
			t.Errorf("sentence %q missing from chunk texts", sent)
		}
	}
}

func TestChunkDocument_NumericSafetyKeepsComparisonTogether(t *testing.T) {
	cfg := Config{TargetTokens: 16, HardMaxTokens: 30, MinSectionTokens: 1, OverlapTokens: 0}
	c := New(cfg, wordTokenizer{})

	stat := "A response of 15.2% (SD 4.1) was observed at the end."
	cue := "This compared favorably to 3.1% in controls (p=0.02)."
	text := "The trial enrolled forty adult patients across four separate sites. " +
		stat + " " + cue + " " +
		"Further follow-up work is planned for the coming year ahead."

	chunks := c.ChunkDocument(testDoc("", text))
	if len(chunks) < 2 {
		t.Fatalf("ChunkDocument() = %d chunks, want windowing", len(chunks))
	}

	statSent := "15.2% (SD 4.1) was observed"
	cueSent := "compared favorably to 3.1%"
	together := false
	for _, ch := range chunks {
		hasStat := strings.Contains(ch.Text, statSent)
		hasCue := strings.Contains(ch.Text, cueSent)
		if hasStat && !hasCue || hasCue && !hasStat {
			t.Errorf("statistic and comparison split across chunks: %q", ch.Text)
		}
		if hasStat && hasCue {
			together = true
		}
	}
	if !together {
		t.Error("statistic and comparison sentences never appear in the same chunk")
	}
}

func TestChunkDocument_OverlapOnlyForMultiWindowSections(t *testing.T) {
	cfg := Config{TargetTokens: 16, HardMaxTokens: 30, MinSectionTokens: 1, OverlapTokens: 10}
	c := New(cfg, wordTokenizer{})

	var sb strings.Builder
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&sb, "Filler sentence number %d carries a few more words here. ", i)
	}
	chunks := c.ChunkDocument(testDoc("", strings.TrimSpace(sb.String())))
	if len(chunks) < 2 {
		t.Fatalf("want multiple windows, got %d", len(chunks))
	}

	// Consecutive windows share the trailing sentence of the previous one.
	for i := 1; i < len(chunks); i++ {
		prevSents := splitSentences(chunks[i-1].Text)
		last := prevSents[len(prevSents)-1]
		if !strings.Contains(chunks[i].Text, last) {
			t.Errorf("chunk %d does not overlap with previous window (missing %q)", i, last)
		}
	}

	// A short single-window document never overlaps (and yields one chunk).
	short := c.ChunkDocument(testDoc("", "Only one small sentence here."))
	if len(short) != 1 {
		t.Errorf("short document = %d chunks, want 1", len(short))
	}
}

func TestChunkDocument_Metadata(t *testing.T) {
	c := New(DefaultConfig(), wordTokenizer{})
	doc := testDoc("Study X", "Results: The treatment worked well.")
	doc.Detail = map[string]any{
		"journal":    "Example Journal",
		"mesh_terms": []string{"not", "scalar"},
	}
	doc.QualityTotal = 0.8

	chunks := c.ChunkDocument(doc)
	if len(chunks) != 1 {
		t.Fatalf("ChunkDocument() = %d chunks, want 1", len(chunks))
	}

	meta := chunks[0].Meta
	if meta["chunker.version"] != Version {
		t.Errorf("meta chunker.version = %v, want %q", meta["chunker.version"], Version)
	}
	if meta["chunker.tokenizer"] != "test/words" {
		t.Errorf("meta chunker.tokenizer = %v, want test/words", meta["chunker.tokenizer"])
	}
	if meta["boost.section"] != models.SectionBoost(models.SectionResults) {
		t.Errorf("meta boost.section = %v, want Results weight", meta["boost.section"])
	}
	if meta["src.pubmed.journal"] != "Example Journal" {
		t.Errorf("meta src.pubmed.journal = %v, want passthrough", meta["src.pubmed.journal"])
	}
	if _, ok := meta["src.pubmed.mesh_terms"]; ok {
		t.Error("non-scalar detail field leaked into chunk metadata")
	}
	if chunks[0].QualityTotal != 0.8 {
		t.Errorf("QualityTotal = %v, want 0.8", chunks[0].QualityTotal)
	}
}
