package ai

import (
	"context"
	"fmt"

	"law-rag-platform/internal/config"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini caps batch embedding requests at 100 contents per call.
const maxEmbedBatch = 100

// DenseEncoder produces dense embedding vectors via the Google
// Generative AI embeddings API (text-embedding-004 by default).
type DenseEncoder struct {
	client *genai.Client
	model  string
	dim    int
}

func NewDenseEncoder(ctx context.Context, cfg *config.Config) (*DenseEncoder, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY for embeddings")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, err
	}
	return &DenseEncoder{
		client: client,
		model:  cfg.EmbeddingsModel,
		dim:    cfg.EmbeddingDimension,
	}, nil
}

// Dimension returns the configured vector width, used when creating
// Qdrant collections.
func (e *DenseEncoder) Dimension() int {
	return e.dim
}

// EmbedQuery embeds a single search query.
func (e *DenseEncoder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	model := e.client.EmbeddingModel(e.model)
	model.TaskType = genai.TaskTypeRetrievalQuery

	resp, err := model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, err
	}
	if resp.Embedding == nil {
		return nil, fmt.Errorf("no embedding returned")
	}
	return resp.Embedding.Values, nil
}

// EmbedDocuments embeds document chunks in batches, preserving input order.
func (e *DenseEncoder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	model := e.client.EmbeddingModel(e.model)
	model.TaskType = genai.TaskTypeRetrievalDocument

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxEmbedBatch {
		end := start + maxEmbedBatch
		if end > len(texts) {
			end = len(texts)
		}

		batch := model.NewBatch()
		for _, text := range texts[start:end] {
			batch = batch.AddContent(genai.Text(text))
		}

		resp, err := model.BatchEmbedContents(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("batch embed failed at offset %d: %w", start, err)
		}
		if len(resp.Embeddings) != end-start {
			return nil, fmt.Errorf("batch embed returned %d vectors for %d inputs", len(resp.Embeddings), end-start)
		}
		for _, emb := range resp.Embeddings {
			vectors = append(vectors, emb.Values)
		}
	}
	return vectors, nil
}

func (e *DenseEncoder) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}
