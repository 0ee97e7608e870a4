package index

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_search_index.go -package=mocks medlit/internal/index SearchIndex

import "context"

// Point is an upsert payload for the external index, keyed by the chunk's
// deterministic ID so re-ingestion overwrites instead of duplicating.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// Hit is a raw query result. Score is the index's similarity score for
// vector queries and zero for text matches, which are scored client-side.
type Hit struct {
	ID      string
	Score   float32
	Payload map[string]any
}

// Condition restricts a query to points whose scalar payload field
// matches. Exactly one of Keyword or the Min/Max range is used. The
// external index can only filter on scalar properties; the search filter
// builder enforces that before a Condition is ever constructed.
type Condition struct {
	Field   string
	Keyword string
	Min     *float64
	Max     *float64
}

// SearchIndex is the port to the external vector/lexical index.
type SearchIndex interface {
	// EnsureCollection creates the backing collection if missing and
	// validates the vector size if it exists.
	EnsureCollection(ctx context.Context, vectorSize int) error

	// Upsert inserts or overwrites points by ID.
	Upsert(ctx context.Context, points []Point) error

	// QueryVector performs a semantic similarity query.
	QueryVector(ctx context.Context, vector []float32, limit int, conds []Condition) ([]Hit, error)

	// MatchText returns points whose text property matches the query
	// terms. Hits carry no score; lexical scoring happens in the caller.
	MatchText(ctx context.Context, text string, limit int, conds []Condition) ([]Hit, error)

	// Delete removes points by ID.
	Delete(ctx context.Context, ids []string) error

	// Count returns the exact number of stored points.
	Count(ctx context.Context) (uint64, error)
}
