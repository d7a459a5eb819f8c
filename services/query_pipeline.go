package services

import (
	"context"
	"fmt"
	"time"

	"law-rag-platform/internal/logger"
	"law-rag-platform/models"
	"law-rag-platform/utils"
)

// FallbackAnswer is returned verbatim when retrieval produces no usable
// context. It never reaches the generation model.
const FallbackAnswer = "لم أجد معلومات كافية للإجابة على سؤالك."

// QueryPipelineConfig carries the tunables and model labels surfaced in
// response metadata.
type QueryPipelineConfig struct {
	PrefetchLimit  int
	RerankTopK     int
	EmbeddingModel string
	RerankerModel  string
	LLMModel       string
}

// QueryPipeline is the retrieval funnel: normalize, dual-encode, hybrid
// retrieve, rerank, generate, format. Stages run in fixed order with typed
// results threaded forward; the generic engine's context bag is too loose
// for this flow.
type QueryPipeline struct {
	dense     DenseEncoder
	sparse    SparseEncoder
	store     VectorStore
	reranker  Reranker
	generator AnswerGenerator
	cache     *AnswerCache
	cfg       QueryPipelineConfig
}

func NewQueryPipeline(
	dense DenseEncoder,
	sparse SparseEncoder,
	store VectorStore,
	reranker Reranker,
	generator AnswerGenerator,
	cache *AnswerCache,
	cfg QueryPipelineConfig,
) *QueryPipeline {
	if cfg.PrefetchLimit <= 0 {
		cfg.PrefetchLimit = 25
	}
	if cfg.RerankTopK <= 0 {
		cfg.RerankTopK = 5
	}
	return &QueryPipeline{
		dense:     dense,
		sparse:    sparse,
		store:     store,
		reranker:  reranker,
		generator: generator,
		cache:     cache,
		cfg:       cfg,
	}
}

// Answer runs the full funnel for one question.
func (p *QueryPipeline) Answer(ctx context.Context, input models.QueryInput) (*models.QueryOutput, error) {
	if input.Question == "" {
		return nil, fmt.Errorf("question is required")
	}
	if err := ValidateCountry(input.Country); err != nil {
		return nil, err
	}
	for _, lt := range input.LawTypes {
		if err := ValidateLawType(lt); err != nil {
			return nil, err
		}
	}

	var cacheKey string
	if p.cache != nil {
		cacheKey = p.cache.Key(input.Question, input.Country, input.LawTypes)
		if cached, _ := p.cache.Get(ctx, cacheKey); cached != nil {
			logger.Debug("answer cache hit", "country", input.Country)
			return cached, nil
		}
	}

	started := time.Now()
	timings := make(map[string]float64)
	stageStart := started

	mark := func(stage string) {
		now := time.Now()
		timings[stage] = float64(now.Sub(stageStart).Microseconds()) / 1000.0
		stageStart = now
	}

	// Stage 1: normalize. The raw question is kept for generation; search
	// uses the folded form.
	normalized := utils.NormalizeQuery(input.Question)
	mark("normalize")

	// Stage 2: dual-encode. Both vectors are required downstream.
	denseVec, err := p.dense.EmbedQuery(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}
	sparseVec, err := p.sparse.EncodeQuery(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("sparse query encoding failed: %w", err)
	}
	if len(denseVec) == 0 || sparseVec == nil {
		return nil, fmt.Errorf("dual encoding produced an empty vector")
	}
	mark("encode")

	// Stage 3: hybrid retrieve. A jurisdiction with nothing ingested is an
	// empty result, not an error.
	collection := CollectionName(input.Country)
	var candidates []models.RetrievedChunk

	exists, err := p.store.CollectionExists(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("collection lookup failed: %w", err)
	}
	if exists {
		filter := SearchFilter{Country: input.Country, LawTypes: input.LawTypes}
		candidates, err = p.store.HybridSearch(ctx, collection, denseVec, sparseVec, filter, p.cfg.PrefetchLimit)
		if err != nil {
			return nil, fmt.Errorf("hybrid search failed: %w", err)
		}
	}
	mark("retrieve")

	// Stage 4: rerank. Empty candidates skip the scoring capability
	// entirely.
	topK := p.cfg.RerankTopK
	if input.TopK > 0 && input.TopK < topK {
		topK = input.TopK
	}

	var reranked []models.RetrievedChunk
	if len(candidates) > 0 {
		reranked, err = p.reranker.Rerank(ctx, input.Question, candidates, topK)
		if err != nil {
			return nil, fmt.Errorf("rerank failed: %w", err)
		}
	}
	mark("rerank")

	// Stage 5: generate, or short-circuit to the fixed fallback.
	var answer string
	if len(reranked) == 0 {
		answer = FallbackAnswer
	} else {
		answer, err = p.generator.Answer(ctx, input.Question, reranked)
		if err != nil {
			return nil, fmt.Errorf("answer generation failed: %w", err)
		}
	}
	mark("generate")

	// Stage 6: format.
	sources := make([]models.Source, 0, len(reranked))
	for i := range reranked {
		sources = append(sources, models.NewSource(&reranked[i]))
	}
	mark("format")

	output := &models.QueryOutput{
		Success: true,
		Answer:  answer,
		Sources: sources,
		Metadata: models.QueryMetadata{
			QueryTimeMs:       float64(time.Since(started).Microseconds()) / 1000.0,
			ChunksRetrieved:   len(candidates),
			ChunksAfterRerank: len(reranked),
			StageTimingsMs:    timings,
			EmbeddingModel:    p.cfg.EmbeddingModel,
			RerankerModel:     p.cfg.RerankerModel,
			LLMModel:          p.cfg.LLMModel,
		},
	}

	if p.cache != nil && len(sources) > 0 {
		p.cache.Set(ctx, cacheKey, output)
	}
	return output, nil
}
