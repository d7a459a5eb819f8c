package services

import (
	"context"
	"strings"
	"testing"

	"law-rag-platform/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeArticlePages() []models.PageContent {
	// Article 3 is long enough to split into two parts under the test
	// budget, giving four chunks in total.
	long := strings.Repeat("نص طويل جدا في هذه المادة. ", 8)
	return []models.PageContent{
		{PageNumber: 1, Text: "مادة ١\nنص المادة الأولى.\n\nمادة ٢\nنص المادة الثانية."},
		{PageNumber: 2, Text: "مادة ٣\n" + long + "\n\n" + long},
	}
}

func newTestIngestionPipeline(extractor PageExtractor, store *fakeVectorStore, dense *fakeDenseEncoder, sparse *fakeSparseEncoder) *IngestionPipeline {
	return NewIngestionPipeline(
		extractor,
		NewSegmenter(100),
		NewChunkBuilder(100, 1.0),
		dense,
		sparse,
		store,
	)
}

func TestIngestEndToEnd(t *testing.T) {
	extractor := &fakePageExtractor{pages: threeArticlePages()}
	store := newFakeVectorStore()
	dense := &fakeDenseEncoder{dim: 8}
	sparse := &fakeSparseEncoder{}

	p := newTestIngestionPipeline(extractor, store, dense, sparse)

	input := models.IngestionInput{
		PDFContent: []byte("%PDF-1.4 fake"),
		Filename:   "civil_code.pdf",
		Metadata: models.ArticleMetadata{
			Country: "jordan",
			LawType: "civil",
			LawName: "القانون المدني",
		},
	}

	output, result := p.Ingest(context.Background(), input)

	require.True(t, result.Success, "errors: %v", result.Errors)
	assert.True(t, output.Success)
	assert.Equal(t, "laws_jordan", output.Collection)
	assert.Equal(t, 2, output.PagesProcessed)
	assert.Equal(t, 3, output.ArticlesFound)
	assert.Equal(t, 4, output.ChunksCreated)
	assert.Len(t, result.Steps, 7)

	stored := store.collections["laws_jordan"]
	require.Len(t, stored, 4)
	for _, c := range stored {
		assert.Len(t, c.DenseVector, 8)
		require.NotNil(t, c.SparseVector)
		assert.Equal(t, "jordan", c.Country)
		assert.Equal(t, "civil", c.LawType)
	}

	// Article 3 split into contiguous parts with the continuation marker on
	// part 2 only.
	assert.Equal(t, 1, stored[2].ChunkPart)
	assert.Equal(t, 2, stored[3].ChunkPart)
	assert.Equal(t, 2, stored[3].TotalParts)
	assert.Contains(t, stored[3].Content, "جزء ٢ من ٢")
	assert.NotContains(t, stored[2].Content, "جزء")

	assert.Equal(t, 1, dense.docCalls)
	assert.Equal(t, 1, sparse.docCalls)
}

func TestIngestHonorsExplicitCollection(t *testing.T) {
	extractor := &fakePageExtractor{pages: threeArticlePages()}
	store := newFakeVectorStore()

	p := newTestIngestionPipeline(extractor, store, &fakeDenseEncoder{dim: 4}, &fakeSparseEncoder{})

	output, _ := p.Ingest(context.Background(), models.IngestionInput{
		PDFContent: []byte("%PDF"),
		Metadata:   models.ArticleMetadata{Country: "uae", LawType: "labor", LawName: "قانون العمل"},
		Collection: "laws_custom",
	})

	assert.Equal(t, "laws_custom", output.Collection)
	_, ok := store.collections["laws_custom"]
	assert.True(t, ok)
}

func TestIngestFailsFastOnEncoderError(t *testing.T) {
	extractor := &fakePageExtractor{pages: threeArticlePages()}
	store := newFakeVectorStore()
	dense := &fakeDenseEncoder{dim: 8, err: assert.AnError}
	sparse := &fakeSparseEncoder{}

	p := newTestIngestionPipeline(extractor, store, dense, sparse)

	output, result := p.Ingest(context.Background(), models.IngestionInput{
		PDFContent: []byte("%PDF"),
		Metadata:   models.ArticleMetadata{Country: "jordan", LawType: "civil"},
	})

	assert.False(t, output.Success)
	assert.NotEmpty(t, result.Errors)
	// Nothing after the failed step runs: no sparse encoding, no storage.
	assert.Equal(t, 0, sparse.docCalls)
	assert.Empty(t, store.collections)
	assert.Equal(t, 0, output.ChunksCreated)
}

func TestIngestRejectsEmptyDocument(t *testing.T) {
	p := newTestIngestionPipeline(&fakePageExtractor{}, newFakeVectorStore(), &fakeDenseEncoder{dim: 4}, &fakeSparseEncoder{})

	output, result := p.Ingest(context.Background(), models.IngestionInput{
		Metadata: models.ArticleMetadata{Country: "jordan", LawType: "civil"},
	})

	assert.False(t, output.Success)
	assert.NotEmpty(t, result.Errors)
}

func TestIngestRejectsUnknownCountry(t *testing.T) {
	p := newTestIngestionPipeline(&fakePageExtractor{pages: threeArticlePages()}, newFakeVectorStore(), &fakeDenseEncoder{dim: 4}, &fakeSparseEncoder{})

	output, _ := p.Ingest(context.Background(), models.IngestionInput{
		PDFContent: []byte("%PDF"),
		Metadata:   models.ArticleMetadata{Country: "atlantis", LawType: "civil"},
	})

	assert.False(t, output.Success)
}

func TestIngestReportsExtractionFailure(t *testing.T) {
	extractor := &fakePageExtractor{err: assert.AnError}
	p := newTestIngestionPipeline(extractor, newFakeVectorStore(), &fakeDenseEncoder{dim: 4}, &fakeSparseEncoder{})

	output, result := p.Ingest(context.Background(), models.IngestionInput{
		PDFContent: []byte("%PDF"),
		Metadata:   models.ArticleMetadata{Country: "jordan", LawType: "civil"},
	})

	assert.False(t, output.Success)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, 1, extractor.calls)
}
