package services

import (
	"context"
	"fmt"

	"law-rag-platform/internal/logger"
	"law-rag-platform/models"

	"github.com/qdrant/go-client/qdrant"
)

// Named vector slots in every law collection. Dense carries the semantic
// embedding, sparse the BM25-style lexical vector.
const (
	denseVectorName  = "dense"
	sparseVectorName = "sparse"
)

// Payload fields carrying keyword indexes for filtered search.
var indexedKeywordFields = []string{"country", "law_type", "law_name"}

// QdrantStore implements VectorStore on a Qdrant cluster using named dense
// plus sparse vectors per point.
type QdrantStore struct {
	client *qdrant.Client
}

func NewQdrantStore(client *qdrant.Client) *QdrantStore {
	return &QdrantStore{client: client}
}

// EnsureCollection creates the collection and its payload indexes if they
// do not exist. Existing collections are left untouched, so a dimension
// change requires an explicit reset.
func (s *QdrantStore) EnsureCollection(ctx context.Context, name string, denseDim int) error {
	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check collection %s: %w", name, err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfigMap(map[string]*qdrant.VectorParams{
			denseVectorName: {
				Size:     uint64(denseDim),
				Distance: qdrant.Distance_Cosine,
			},
		}),
		SparseVectorsConfig: qdrant.NewSparseVectorsConfig(map[string]*qdrant.SparseVectorParams{
			sparseVectorName: {
				Modifier: qdrant.Modifier_Idf.Enum(),
			},
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}

	for _, field := range indexedKeywordFields {
		if _, err := s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: name,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
			Wait:           qdrant.PtrOf(true),
		}); err != nil {
			return fmt.Errorf("failed to index field %s on %s: %w", field, name, err)
		}
	}
	if _, err := s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: name,
		FieldName:      "article_number",
		FieldType:      qdrant.FieldType_FieldTypeInteger.Enum(),
		Wait:           qdrant.PtrOf(true),
	}); err != nil {
		return fmt.Errorf("failed to index field article_number on %s: %w", name, err)
	}

	logger.Info("collection created", "collection", name, "dense_dim", denseDim)
	return nil
}

// UpsertChunks writes chunks as points keyed by their deterministic chunk
// ID, so re-ingesting the same law overwrites in place. Chunks missing
// either vector are rejected.
func (s *QdrantStore) UpsertChunks(ctx context.Context, collection string, chunks []models.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for i := range chunks {
		chunk := &chunks[i]
		if len(chunk.DenseVector) == 0 || chunk.SparseVector == nil {
			return fmt.Errorf("chunk %s has unpopulated vectors", chunk.ChunkID)
		}
		points = append(points, &qdrant.PointStruct{
			Id: qdrant.NewIDUUID(chunk.ChunkID),
			Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{
				denseVectorName:  qdrant.NewVectorDense(chunk.DenseVector),
				sparseVectorName: qdrant.NewVectorSparse(chunk.SparseVector.Indices, chunk.SparseVector.Values),
			}),
			Payload: qdrant.NewValueMap(chunk.Payload()),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert %d points to %s: %w", len(points), collection, err)
	}

	logger.Info("chunks stored", "collection", collection, "count", len(points))
	return nil
}

// HybridSearch runs one dense and one sparse prefetch of `limit` hits each,
// then fuses the two ranked lists with reciprocal rank fusion client-side.
func (s *QdrantStore) HybridSearch(ctx context.Context, collection string, dense []float32, sparse *models.SparseVector, filter SearchFilter, limit int) ([]models.RetrievedChunk, error) {
	if len(dense) == 0 || sparse == nil {
		return nil, fmt.Errorf("hybrid search requires both dense and sparse query vectors")
	}

	qdrantFilter := buildFilter(filter)

	denseHits, err := s.query(ctx, collection, qdrant.NewQueryDense(dense), denseVectorName, qdrantFilter, limit)
	if err != nil {
		return nil, fmt.Errorf("dense search failed: %w", err)
	}

	sparseHits, err := s.query(ctx, collection, qdrant.NewQuerySparse(sparse.Indices, sparse.Values), sparseVectorName, qdrantFilter, limit)
	if err != nil {
		return nil, fmt.Errorf("sparse search failed: %w", err)
	}

	fused := ReciprocalRankFusion(denseHits, sparseHits, rrfK)
	logger.Debug("hybrid search",
		"collection", collection, "dense_hits", len(denseHits),
		"sparse_hits", len(sparseHits), "fused", len(fused))
	return fused, nil
}

func (s *QdrantStore) query(ctx context.Context, collection string, query *qdrant.Query, using string, filter *qdrant.Filter, limit int) ([]models.RetrievedChunk, error) {
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          query,
		Using:          qdrant.PtrOf(using),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}

	chunks := make([]models.RetrievedChunk, 0, len(points))
	for _, point := range points {
		chunks = append(chunks, chunkFromPayload(point))
	}
	return chunks, nil
}

func buildFilter(filter SearchFilter) *qdrant.Filter {
	var must []*qdrant.Condition
	if filter.Country != "" {
		must = append(must, qdrant.NewMatch("country", filter.Country))
	}
	if len(filter.LawTypes) > 0 {
		must = append(must, qdrant.NewMatchKeywords("law_type", filter.LawTypes...))
	}
	if len(must) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: must}
}

// chunkFromPayload materializes a search hit back into the chunk fields the
// ingestion side persisted.
func chunkFromPayload(point *qdrant.ScoredPoint) models.RetrievedChunk {
	payload := point.GetPayload()

	str := func(key string) string {
		if v, ok := payload[key]; ok {
			return v.GetStringValue()
		}
		return ""
	}
	num := func(key string) int {
		if v, ok := payload[key]; ok {
			return int(v.GetIntegerValue())
		}
		return 0
	}

	chunkID := str("chunk_id")
	if chunkID == "" {
		chunkID = point.GetId().GetUuid()
	}

	return models.RetrievedChunk{
		ChunkID:       chunkID,
		Content:       str("content"),
		ArticleNumber: num("article_number"),
		MarkerText:    str("marker_text"),
		LawName:       str("law_name"),
		LawType:       str("law_type"),
		PageNumber:    num("page_number"),
		HybridScore:   float64(point.GetScore()),
		Chapter:       str("chapter"),
		ChunkPart:     num("chunk_part"),
		TotalParts:    num("total_parts"),
	}
}

// DeleteCollection removes a collection and all of its points.
func (s *QdrantStore) DeleteCollection(ctx context.Context, name string) error {
	if err := s.client.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", name, err)
	}
	logger.Info("collection deleted", "collection", name)
	return nil
}

// CollectionExists reports whether the collection is present.
func (s *QdrantStore) CollectionExists(ctx context.Context, name string) (bool, error) {
	return s.client.CollectionExists(ctx, name)
}

// CollectionInfo returns point count and status for one collection.
func (s *QdrantStore) CollectionInfo(ctx context.Context, name string) (*CollectionInfo, error) {
	info, err := s.client.GetCollectionInfo(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get info for %s: %w", name, err)
	}

	var points uint64
	if info.PointsCount != nil {
		points = *info.PointsCount
	}
	return &CollectionInfo{
		Name:        name,
		PointsCount: points,
		Status:      info.Status.String(),
	}, nil
}

// ListCollections returns all collection names.
func (s *QdrantStore) ListCollections(ctx context.Context) ([]string, error) {
	return s.client.ListCollections(ctx)
}
