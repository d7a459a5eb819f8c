package services

import (
	"context"

	"law-rag-platform/models"
)

// PageExtractor turns raw document bytes into ordered per-page text.
type PageExtractor interface {
	ExtractPages(ctx context.Context, content []byte) ([]models.PageContent, error)
}

// DenseEncoder produces dense embedding vectors. Query and document
// embeddings may use different task types, so they are separate methods.
type DenseEncoder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// SparseEncoder produces BM25-style sparse vectors for lexical matching.
type SparseEncoder interface {
	EncodeQuery(ctx context.Context, text string) (*models.SparseVector, error)
	EncodeDocuments(ctx context.Context, texts []string) ([]*models.SparseVector, error)
}

// Reranker scores query/chunk pairs with a cross-encoder and returns the
// top candidates in descending score order.
type Reranker interface {
	Rerank(ctx context.Context, query string, chunks []models.RetrievedChunk, topK int) ([]models.RetrievedChunk, error)
}

// AnswerGenerator produces a grounded answer from retrieved chunks.
type AnswerGenerator interface {
	Answer(ctx context.Context, question string, chunks []models.RetrievedChunk) (string, error)
}

// SearchFilter narrows hybrid retrieval by payload fields. Country is an
// equality match; LawTypes is an any-of match. Zero values mean no filter.
type SearchFilter struct {
	Country  string
	LawTypes []string
}

// VectorStore is the persistence boundary for chunks and hybrid search.
type VectorStore interface {
	EnsureCollection(ctx context.Context, name string, denseDim int) error
	UpsertChunks(ctx context.Context, collection string, chunks []models.DocumentChunk) error
	HybridSearch(ctx context.Context, collection string, dense []float32, sparse *models.SparseVector, filter SearchFilter, limit int) ([]models.RetrievedChunk, error)
	DeleteCollection(ctx context.Context, name string) error
	CollectionExists(ctx context.Context, name string) (bool, error)
	CollectionInfo(ctx context.Context, name string) (*CollectionInfo, error)
	ListCollections(ctx context.Context) ([]string, error)
}

// CollectionInfo is the summary returned by the law catalog endpoints.
type CollectionInfo struct {
	Name        string `json:"name"`
	PointsCount uint64 `json:"points_count"`
	Status      string `json:"status"`
}
