package services

import (
	"context"
	"fmt"

	"law-rag-platform/models"
)

// Test doubles shared by the pipeline tests. Each fake counts its calls so
// tests can assert which capabilities a pipeline run actually touched.

type fakePageExtractor struct {
	pages []models.PageContent
	err   error
	calls int
}

func (f *fakePageExtractor) ExtractPages(ctx context.Context, content []byte) ([]models.PageContent, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.pages, nil
}

type fakeDenseEncoder struct {
	dim        int
	queryCalls int
	docCalls   int
	err        error
}

func (f *fakeDenseEncoder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	f.queryCalls++
	if f.err != nil {
		return nil, f.err
	}
	return make([]float32, f.dim), nil
}

func (f *fakeDenseEncoder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	f.docCalls++
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = make([]float32, f.dim)
		vectors[i][0] = float32(i + 1)
	}
	return vectors, nil
}

func (f *fakeDenseEncoder) Dimension() int { return f.dim }

type fakeSparseEncoder struct {
	queryCalls int
	docCalls   int
	err        error
}

func (f *fakeSparseEncoder) EncodeQuery(ctx context.Context, text string) (*models.SparseVector, error) {
	f.queryCalls++
	if f.err != nil {
		return nil, f.err
	}
	return &models.SparseVector{Indices: []uint32{1}, Values: []float32{0.5}}, nil
}

func (f *fakeSparseEncoder) EncodeDocuments(ctx context.Context, texts []string) ([]*models.SparseVector, error) {
	f.docCalls++
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([]*models.SparseVector, len(texts))
	for i := range texts {
		vectors[i] = &models.SparseVector{Indices: []uint32{uint32(i)}, Values: []float32{1}}
	}
	return vectors, nil
}

// fakeVectorStore keeps collections in memory and returns canned search
// results.
type fakeVectorStore struct {
	collections   map[string][]models.DocumentChunk
	searchResults []models.RetrievedChunk
	searchCalls   int
	searchErr     error
	lastFilter    SearchFilter
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{collections: make(map[string][]models.DocumentChunk)}
}

func (f *fakeVectorStore) EnsureCollection(ctx context.Context, name string, denseDim int) error {
	if _, ok := f.collections[name]; !ok {
		f.collections[name] = nil
	}
	return nil
}

func (f *fakeVectorStore) UpsertChunks(ctx context.Context, collection string, chunks []models.DocumentChunk) error {
	if _, ok := f.collections[collection]; !ok {
		return fmt.Errorf("collection %s does not exist", collection)
	}
	f.collections[collection] = append(f.collections[collection], chunks...)
	return nil
}

func (f *fakeVectorStore) HybridSearch(ctx context.Context, collection string, dense []float32, sparse *models.SparseVector, filter SearchFilter, limit int) ([]models.RetrievedChunk, error) {
	f.searchCalls++
	f.lastFilter = filter
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchResults, nil
}

func (f *fakeVectorStore) DeleteCollection(ctx context.Context, name string) error {
	delete(f.collections, name)
	return nil
}

func (f *fakeVectorStore) CollectionExists(ctx context.Context, name string) (bool, error) {
	_, ok := f.collections[name]
	return ok, nil
}

func (f *fakeVectorStore) CollectionInfo(ctx context.Context, name string) (*CollectionInfo, error) {
	chunks, ok := f.collections[name]
	if !ok {
		return nil, fmt.Errorf("collection %s does not exist", name)
	}
	return &CollectionInfo{Name: name, PointsCount: uint64(len(chunks)), Status: "green"}, nil
}

func (f *fakeVectorStore) ListCollections(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(f.collections))
	for name := range f.collections {
		names = append(names, name)
	}
	return names, nil
}

// fakeReranker assigns descending scores in input order and truncates.
type fakeReranker struct {
	calls int
	err   error
}

func (f *fakeReranker) Rerank(ctx context.Context, query string, chunks []models.RetrievedChunk, topK int) ([]models.RetrievedChunk, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.RetrievedChunk, 0, topK)
	for i := range chunks {
		if i >= topK {
			break
		}
		c := chunks[i]
		score := 1.0 - float64(i)*0.1
		c.RerankScore = &score
		out = append(out, c)
	}
	return out, nil
}

type fakeGenerator struct {
	calls  int
	answer string
	err    error
}

func (f *fakeGenerator) Answer(ctx context.Context, question string, chunks []models.RetrievedChunk) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}
