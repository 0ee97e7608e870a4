package tokenizer

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer counts tokens the way the downstream vectorization model does.
// The chunker records Identifier() in chunk metadata so a tokenizer/embedding
// mismatch can be diagnosed after the fact. Implementations must be safe for
// concurrent use.
type Tokenizer interface {
	// CountTokens returns the token count of text.
	CountTokens(text string) int
	// Identifier returns a stable name for this tokenizer, recorded in
	// chunk metadata for provenance.
	Identifier() string
}

// DefaultEncoding is the BPE encoding used when none is configured.
const DefaultEncoding = "cl100k_base"

// encodings caches loaded BPE encoders. Loading an encoding is expensive,
// so it happens at most once per encoding name and the result is shared
// read-only across goroutines.
var encodings struct {
	mu    sync.Mutex
	cache map[string]*tiktoken.Tiktoken
}

func loadEncoding(name string) (*tiktoken.Tiktoken, error) {
	encodings.mu.Lock()
	defer encodings.mu.Unlock()

	if enc, ok := encodings.cache[name]; ok {
		return enc, nil
	}

	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load encoding %q: %w", name, err)
	}

	if encodings.cache == nil {
		encodings.cache = make(map[string]*tiktoken.Tiktoken)
	}
	encodings.cache[name] = enc
	return enc, nil
}

// BPETokenizer counts tokens with a tiktoken BPE encoding.
type BPETokenizer struct {
	enc  *tiktoken.Tiktoken
	name string
}

// NewBPE creates a tokenizer backed by the named tiktoken encoding.
func NewBPE(encoding string) (*BPETokenizer, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := loadEncoding(encoding)
	if err != nil {
		return nil, err
	}
	return &BPETokenizer{enc: enc, name: encoding}, nil
}

// CountTokens returns the BPE token count of text.
func (t *BPETokenizer) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}

// Identifier returns "tiktoken/<encoding>".
func (t *BPETokenizer) Identifier() string {
	return "tiktoken/" + t.name
}

// Approx is a whitespace-based approximate token counter used when the
// preferred tokenizer cannot be constructed. Its identifier is distinct so
// downstream consumers can detect and monitor degraded counts.
type Approx struct{}

// CountTokens estimates tokens as words scaled by 4/3, the usual
// English words-to-BPE-tokens ratio.
func (Approx) CountTokens(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return (words*4 + 2) / 3
}

// Identifier returns "approx/whitespace".
func (Approx) Identifier() string {
	return "approx/whitespace"
}

// NewWithFallback returns a BPE tokenizer for the given encoding, degrading
// to the approximate counter if construction fails. It never returns an
// error: a degraded tokenizer is preferred over failing the pipeline, and
// the fallback is visible in chunk metadata via Identifier().
func NewWithFallback(encoding string, logger *slog.Logger) Tokenizer {
	if logger == nil {
		logger = slog.Default()
	}
	tok, err := NewBPE(encoding)
	if err != nil {
		logger.Warn("tokenizer construction failed, using approximate counter",
			"encoding", encoding, "error", err)
		return Approx{}
	}
	return tok
}
