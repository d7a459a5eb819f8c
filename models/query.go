package models

import "math"

// QueryInput is the request to the query pipeline.
type QueryInput struct {
	Question  string   `json:"question" binding:"required"`
	Country   string   `json:"country" binding:"required"`
	LawTypes  []string `json:"law_types,omitempty"`
	SessionID string   `json:"session_id,omitempty"`
	TopK      int      `json:"top_k,omitempty"`
}

// RetrievedChunk is a vector-store hit materialized for the query pipeline.
// RerankScore is populated only after the rerank stage.
type RetrievedChunk struct {
	ChunkID       string `json:"chunk_id"`
	Content       string `json:"content"`
	ArticleNumber int    `json:"article_number"`
	MarkerText    string `json:"marker_text,omitempty"`
	LawName       string `json:"law_name"`
	LawType       string `json:"law_type"`
	PageNumber    int    `json:"page_number"`

	HybridScore float64  `json:"hybrid_score"`
	RerankScore *float64 `json:"rerank_score,omitempty"`

	Chapter    string `json:"chapter,omitempty"`
	ChunkPart  int    `json:"chunk_part"`
	TotalParts int    `json:"total_parts"`
}

// RelevanceScore prefers the rerank score and falls back to the fused
// hybrid score.
func (c *RetrievedChunk) RelevanceScore() float64 {
	if c.RerankScore != nil {
		return *c.RerankScore
	}
	return c.HybridScore
}

const previewLimit = 200

// Source is the externally visible citation derived from a reranked chunk.
type Source struct {
	LawName        string  `json:"law_name"`
	ArticleNumber  int     `json:"article_number"`
	MarkerText     string  `json:"marker_text,omitempty"`
	PageNumber     int     `json:"page_number"`
	RelevanceScore float64 `json:"relevance_score"`
	ContentPreview string  `json:"content_preview"`
}

// NewSource builds a citation from a retrieved chunk, truncating the body to
// a 200-character preview and rounding the score for display.
func NewSource(c *RetrievedChunk) Source {
	preview := c.Content
	if len([]rune(preview)) > previewLimit {
		preview = string([]rune(preview)[:previewLimit]) + "..."
	}
	return Source{
		LawName:        c.LawName,
		ArticleNumber:  c.ArticleNumber,
		MarkerText:     c.MarkerText,
		PageNumber:     c.PageNumber,
		RelevanceScore: roundScore(c.RelevanceScore()),
		ContentPreview: preview,
	}
}

func roundScore(s float64) float64 {
	return math.Round(s*10000) / 10000
}

// QueryMetadata carries the timing and stage counters of one query run.
type QueryMetadata struct {
	QueryTimeMs       float64            `json:"query_time_ms"`
	ChunksRetrieved   int                `json:"chunks_retrieved"`
	ChunksAfterRerank int                `json:"chunks_after_rerank"`
	StageTimingsMs    map[string]float64 `json:"stage_timings_ms,omitempty"`
	EmbeddingModel    string             `json:"embedding_model,omitempty"`
	RerankerModel     string             `json:"reranker_model,omitempty"`
	LLMModel          string             `json:"llm_model,omitempty"`
}

// QueryOutput is the assembled answer with citations.
type QueryOutput struct {
	Success  bool          `json:"success"`
	Answer   string        `json:"answer"`
	Sources  []Source      `json:"sources"`
	Metadata QueryMetadata `json:"metadata"`
	Errors   []string      `json:"errors,omitempty"`
}
