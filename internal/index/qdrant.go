package index

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"medlit/internal/contextutil"
)

// QdrantIndex implements SearchIndex against a Qdrant collection.
type QdrantIndex struct {
	client     *qdrant.Client
	collection string
}

// NewQdrantIndex creates a Qdrant-backed index bound to one collection.
// urlStr is the HTTP URL ("http://host:port"); the gRPC port is derived
// from the HTTP port.
func NewQdrantIndex(urlStr, collection string) (*QdrantIndex, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	// gRPC listens one port above HTTP by Qdrant convention.
	port := 6334
	if parsedURL.Port() != "" {
		if httpPort, err := strconv.Atoi(parsedURL.Port()); err == nil {
			port = httpPort + 1
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{Host: host, Port: port})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantIndex{client: client, collection: collection}, nil
}

// EnsureCollection creates the collection with cosine distance if missing,
// and validates the stored vector size if it already exists.
func (q *QdrantIndex) EnsureCollection(ctx context.Context, vectorSize int) error {
	logger := contextutil.LoggerFromContext(ctx)

	exists, err := q.client.CollectionExists(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !exists {
		logger.InfoContext(ctx, "creating collection", "collection", q.collection, "vector_size", vectorSize)
		err := q.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: q.collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(vectorSize),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		return nil
	}

	info, err := q.client.GetCollectionInfo(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("failed to get collection info: %w", err)
	}

	config := info.GetConfig()
	if config == nil || config.GetParams() == nil {
		return fmt.Errorf("collection config is invalid")
	}
	params := config.GetParams().GetVectorsConfig().GetParams()
	if params == nil || params.GetSize() == 0 {
		return fmt.Errorf("could not determine collection vector size")
	}
	if int(params.GetSize()) != vectorSize {
		return fmt.Errorf("collection vector size mismatch: expected %d, got %d", vectorSize, params.GetSize())
	}

	return nil
}

// Upsert inserts or overwrites points. Point IDs are deterministic chunk
// IDs, so re-ingesting the same chunks replaces them in place.
func (q *QdrantIndex) Upsert(ctx context.Context, points []Point) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(points) == 0 {
		return nil
	}

	qdrantPoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, point := range points {
		p := &qdrant.PointStruct{
			Id:      qdrant.NewID(point.ID),
			Vectors: qdrant.NewVectors(point.Vector...),
		}
		if len(point.Payload) > 0 {
			p.Payload = qdrant.NewValueMap(point.Payload)
		}
		qdrantPoints = append(qdrantPoints, p)
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Points:         qdrantPoints,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to upsert points", "collection", q.collection, "count", len(points), "error", err)
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	logger.InfoContext(ctx, "upserted points", "collection", q.collection, "count", len(points))
	return nil
}

// QueryVector performs a similarity query with optional scalar conditions.
func (q *QdrantIndex) QueryVector(ctx context.Context, vector []float32, limit int, conds []Condition) ([]Hit, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}

	lim := uint64(limit)
	req := &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &lim,
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if filter := buildFilter(conds, nil); filter != nil {
		req.Filter = filter
	}

	scored, err := q.client.Query(ctx, req)
	if err != nil {
		logger.ErrorContext(ctx, "failed to query points", "collection", q.collection, "limit", limit, "error", err)
		return nil, fmt.Errorf("failed to query points: %w", err)
	}

	hits := make([]Hit, 0, len(scored))
	for _, point := range scored {
		hit := Hit{Score: point.GetScore()}
		if point.GetId() != nil {
			hit.ID = point.GetId().GetUuid()
		}
		if point.GetPayload() != nil {
			hit.Payload = convertPayloadToMap(point.GetPayload())
		}
		hits = append(hits, hit)
	}

	return hits, nil
}

// MatchText returns points whose text property matches the query terms,
// using the index's full-text match. Hits carry no score.
func (q *QdrantIndex) MatchText(ctx context.Context, text string, limit int, conds []Condition) ([]Hit, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}

	textCond := qdrant.NewMatchText(FieldText, text)
	req := &qdrant.ScrollPoints{
		CollectionName: q.collection,
		Filter:         buildFilter(conds, textCond),
		Limit:          qdrant.PtrOf(uint32(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	}

	points, err := q.client.Scroll(ctx, req)
	if err != nil {
		logger.ErrorContext(ctx, "failed to match text", "collection", q.collection, "limit", limit, "error", err)
		return nil, fmt.Errorf("failed to match text: %w", err)
	}

	hits := make([]Hit, 0, len(points))
	for _, point := range points {
		hit := Hit{}
		if point.GetId() != nil {
			hit.ID = point.GetId().GetUuid()
		}
		if point.GetPayload() != nil {
			hit.Payload = convertPayloadToMap(point.GetPayload())
		}
		hits = append(hits, hit)
	}

	return hits, nil
}

// Delete removes points by ID.
func (q *QdrantIndex) Delete(ctx context.Context, ids []string) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(ids) == 0 {
		return nil
	}

	qdrantIDs := make([]*qdrant.PointId, 0, len(ids))
	for _, id := range ids {
		qdrantIDs = append(qdrantIDs, qdrant.NewID(id))
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collection,
		Points:         qdrant.NewPointsSelector(qdrantIDs...),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to delete points", "collection", q.collection, "count", len(ids), "error", err)
		return fmt.Errorf("failed to delete points: %w", err)
	}

	return nil
}

// Count returns the exact number of stored points.
func (q *QdrantIndex) Count(ctx context.Context) (uint64, error) {
	count, err := q.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: q.collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}
	return count, nil
}

// buildFilter translates scalar conditions (plus an optional text-match
// condition) into a Qdrant filter.
func buildFilter(conds []Condition, extra *qdrant.Condition) *qdrant.Filter {
	var must []*qdrant.Condition
	if extra != nil {
		must = append(must, extra)
	}

	for _, cond := range conds {
		switch {
		case cond.Keyword != "":
			must = append(must, qdrant.NewMatch(cond.Field, cond.Keyword))
		case cond.Min != nil || cond.Max != nil:
			must = append(must, qdrant.NewRange(cond.Field, &qdrant.Range{
				Gte: cond.Min,
				Lte: cond.Max,
			}))
		}
	}

	if len(must) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: must}
}

// convertPayloadToMap converts a Qdrant payload to a plain map.
func convertPayloadToMap(payload map[string]*qdrant.Value) map[string]any {
	result := make(map[string]any, len(payload))
	for k, v := range payload {
		if v == nil {
			continue
		}
		result[k] = convertValue(v)
	}
	return result
}

// convertValue converts a Qdrant value to its Go equivalent.
func convertValue(v *qdrant.Value) any {
	switch val := v.Kind.(type) {
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_ListValue:
		list := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			list[i] = convertValue(item)
		}
		return list
	case *qdrant.Value_StructValue:
		return convertPayloadToMap(val.StructValue.Fields)
	default:
		return nil
	}
}
