package services

import (
	"context"
	"fmt"

	"law-rag-platform/internal/pipeline"
	"law-rag-platform/models"
)

// Context bag keys shared across ingestion steps.
const (
	ctxCollection    = "collection"
	ctxMetadata      = "metadata"
	ctxPagesTotal    = "pages_processed"
	ctxArticlesTotal = "articles_found"
)

// IngestionPipeline runs one document through load, extraction,
// segmentation, chunking, dual encoding and storage. It fails fast: a
// document stored with half its vectors is worse than one not stored at
// all.
type IngestionPipeline struct {
	engine *pipeline.Engine
	store  VectorStore
	dim    int
}

func NewIngestionPipeline(
	pdfService PageExtractor,
	segmenter *Segmenter,
	builder *ChunkBuilder,
	dense DenseEncoder,
	sparse SparseEncoder,
	store VectorStore,
) *IngestionPipeline {
	engine := pipeline.NewEngine("ingestion").
		AddStep(&loadPDFStep{}).
		AddStep(&extractPagesStep{pdf: pdfService}).
		AddStep(&segmentStep{segmenter: segmenter}).
		AddStep(&buildChunksStep{builder: builder}).
		AddStep(&denseEmbedStep{encoder: dense}).
		AddStep(&sparseEncodeStep{encoder: sparse}).
		AddStep(&storeChunksStep{store: store, dim: dense.Dimension()})

	return &IngestionPipeline{engine: engine, store: store, dim: dense.Dimension()}
}

// Ingest runs the pipeline for one document and summarizes the result.
func (p *IngestionPipeline) Ingest(ctx context.Context, input models.IngestionInput) (*models.IngestionOutput, *pipeline.Result) {
	collection := input.Collection
	if collection == "" {
		collection = CollectionName(input.Metadata.Country)
	}

	pctx := pipeline.Context{
		ctxCollection: collection,
		ctxMetadata:   input.Metadata,
	}

	result := p.engine.Run(ctx, input, pctx, true)

	output := &models.IngestionOutput{
		Success:        result.Success,
		Collection:     collection,
		PagesProcessed: pctx.GetInt(ctxPagesTotal),
		ArticlesFound:  pctx.GetInt(ctxArticlesTotal),
		DurationMs:     float64(result.TotalDuration.Microseconds()) / 1000.0,
		Errors:         result.Errors,
	}
	if chunks, ok := result.Data.([]models.DocumentChunk); ok {
		output.ChunksCreated = len(chunks)
	}
	return output, result
}

// loadPDFStep validates the raw document before any heavy work runs.
type loadPDFStep struct{}

func (s *loadPDFStep) Name() string { return "load_pdf" }

func (s *loadPDFStep) Validate(input any) bool {
	in, ok := input.(models.IngestionInput)
	return ok && len(in.PDFContent) > 0 && in.Metadata.Country != "" && in.Metadata.LawType != ""
}

func (s *loadPDFStep) Process(ctx context.Context, input any, pctx pipeline.Context) (any, error) {
	in := input.(models.IngestionInput)
	if err := ValidateCountry(in.Metadata.Country); err != nil {
		return nil, err
	}
	if err := ValidateLawType(in.Metadata.LawType); err != nil {
		return nil, err
	}
	return in.PDFContent, nil
}

// extractPagesStep turns PDF bytes into ordered per-page text.
type extractPagesStep struct {
	pdf PageExtractor
}

func (s *extractPagesStep) Name() string { return "extract_pages" }

func (s *extractPagesStep) Validate(input any) bool {
	content, ok := input.([]byte)
	return ok && len(content) > 0
}

func (s *extractPagesStep) Process(ctx context.Context, input any, pctx pipeline.Context) (any, error) {
	pages, err := s.pdf.ExtractPages(ctx, input.([]byte))
	if err != nil {
		return nil, err
	}
	pctx[ctxPagesTotal] = len(pages)
	return pages, nil
}

func (s *extractPagesStep) DataSize(data any) int {
	if pages, ok := data.([]models.PageContent); ok {
		return len(pages)
	}
	return pipeline.DataSize(data)
}

// segmentStep partitions page texts into articles.
type segmentStep struct {
	segmenter *Segmenter
}

func (s *segmentStep) Name() string { return "segment_articles" }

func (s *segmentStep) Validate(input any) bool {
	pages, ok := input.([]models.PageContent)
	return ok && len(pages) > 0
}

func (s *segmentStep) Process(ctx context.Context, input any, pctx pipeline.Context) (any, error) {
	articles := s.segmenter.Segment(input.([]models.PageContent))
	if len(articles) == 0 {
		return nil, fmt.Errorf("no articles found in document")
	}
	pctx[ctxArticlesTotal] = len(articles)
	return articles, nil
}

func (s *segmentStep) DataSize(data any) int {
	if articles, ok := data.([]models.RawArticle); ok {
		return len(articles)
	}
	return pipeline.DataSize(data)
}

// buildChunksStep converts articles into budgeted chunks with lineage
// metadata.
type buildChunksStep struct {
	builder *ChunkBuilder
}

func (s *buildChunksStep) Name() string { return "build_chunks" }

func (s *buildChunksStep) Validate(input any) bool {
	articles, ok := input.([]models.RawArticle)
	return ok && len(articles) > 0
}

func (s *buildChunksStep) Process(ctx context.Context, input any, pctx pipeline.Context) (any, error) {
	meta, ok := pctx[ctxMetadata].(models.ArticleMetadata)
	if !ok {
		return nil, fmt.Errorf("missing article metadata in pipeline context")
	}
	chunks := s.builder.Build(input.([]models.RawArticle), meta)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks produced")
	}
	return chunks, nil
}

func (s *buildChunksStep) DataSize(data any) int {
	return chunkCount(data)
}

// denseEmbedStep attaches dense vectors to every chunk, order-preserving.
type denseEmbedStep struct {
	encoder DenseEncoder
}

func (s *denseEmbedStep) Name() string { return "embed_dense" }

func (s *denseEmbedStep) Validate(input any) bool {
	chunks, ok := input.([]models.DocumentChunk)
	return ok && len(chunks) > 0
}

func (s *denseEmbedStep) Process(ctx context.Context, input any, pctx pipeline.Context) (any, error) {
	chunks := input.([]models.DocumentChunk)
	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}

	vectors, err := s.encoder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("dense embedding failed: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("dense encoder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}
	for i := range chunks {
		chunks[i].DenseVector = vectors[i]
	}
	return chunks, nil
}

func (s *denseEmbedStep) DataSize(data any) int {
	return chunkCount(data)
}

// sparseEncodeStep attaches sparse vectors to every chunk.
type sparseEncodeStep struct {
	encoder SparseEncoder
}

func (s *sparseEncodeStep) Name() string { return "encode_sparse" }

func (s *sparseEncodeStep) Validate(input any) bool {
	chunks, ok := input.([]models.DocumentChunk)
	return ok && len(chunks) > 0
}

func (s *sparseEncodeStep) Process(ctx context.Context, input any, pctx pipeline.Context) (any, error) {
	chunks := input.([]models.DocumentChunk)
	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}

	vectors, err := s.encoder.EncodeDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("sparse encoding failed: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("sparse encoder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}
	for i := range chunks {
		chunks[i].SparseVector = vectors[i]
	}
	return chunks, nil
}

func (s *sparseEncodeStep) DataSize(data any) int {
	return chunkCount(data)
}

// storeChunksStep creates the collection if needed and upserts all chunks.
type storeChunksStep struct {
	store VectorStore
	dim   int
}

func (s *storeChunksStep) Name() string { return "store_chunks" }

func (s *storeChunksStep) Validate(input any) bool {
	chunks, ok := input.([]models.DocumentChunk)
	if !ok || len(chunks) == 0 {
		return false
	}
	// A chunk must never reach storage without both vectors.
	for i := range chunks {
		if len(chunks[i].DenseVector) == 0 || chunks[i].SparseVector == nil {
			return false
		}
	}
	return true
}

func (s *storeChunksStep) Process(ctx context.Context, input any, pctx pipeline.Context) (any, error) {
	chunks := input.([]models.DocumentChunk)
	collection := pctx.GetString(ctxCollection)
	if collection == "" {
		return nil, fmt.Errorf("missing collection in pipeline context")
	}

	if err := s.store.EnsureCollection(ctx, collection, s.dim); err != nil {
		return nil, err
	}
	if err := s.store.UpsertChunks(ctx, collection, chunks); err != nil {
		return nil, err
	}
	return chunks, nil
}

func (s *storeChunksStep) DataSize(data any) int {
	return chunkCount(data)
}

func chunkCount(data any) int {
	if chunks, ok := data.([]models.DocumentChunk); ok {
		return len(chunks)
	}
	return pipeline.DataSize(data)
}
