package embed

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks medlit/internal/embed Embedder

import "context"

// Embedder generates vector embeddings for text. Implementations must be
// safe for concurrent use; the engine embeds queries from many callers at
// once.
type Embedder interface {
	// EmbedTexts returns one vector per input text, in input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
