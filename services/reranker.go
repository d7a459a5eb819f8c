package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"law-rag-platform/models"
)

// RerankerClient talks to the cross-encoder sidecar. Scoring every
// query/chunk pair is expensive, so it only ever sees the small hybrid
// candidate set.
type RerankerClient struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

type rerankRequest struct {
	Model     string   `json:"model,omitempty"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

type rerankResponse struct {
	Scores []float64 `json:"scores"`
	Error  string    `json:"error,omitempty"`
}

func NewRerankerClient(baseURL, model string, timeout time.Duration) *RerankerClient {
	return &RerankerClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		model:      model,
	}
}

// IsHealthy checks the sidecar's readiness endpoint.
func (c *RerankerClient) IsHealthy(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/health", nil)
	if err != nil {
		return false, fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("health check request failed: %w", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}

// Rerank scores the chunks against the query and returns the topK highest
// scoring ones, descending. An empty candidate set returns empty without
// calling the sidecar.
func (c *RerankerClient) Rerank(ctx context.Context, query string, chunks []models.RetrievedChunk, topK int) ([]models.RetrievedChunk, error) {
	if len(chunks) == 0 {
		return []models.RetrievedChunk{}, nil
	}

	documents := make([]string, len(chunks))
	for i, chunk := range chunks {
		documents[i] = chunk.Content
	}

	body, err := json.Marshal(rerankRequest{Model: c.model, Query: query, Documents: documents})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("rerank failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var rrResp rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&rrResp); err != nil {
		return nil, fmt.Errorf("failed to decode rerank response: %w", err)
	}
	if rrResp.Error != "" {
		return nil, fmt.Errorf("reranker error: %s", rrResp.Error)
	}
	if len(rrResp.Scores) != len(chunks) {
		return nil, fmt.Errorf("reranker returned %d scores for %d documents", len(rrResp.Scores), len(chunks))
	}

	return applyRerankScores(chunks, rrResp.Scores, topK), nil
}

// applyRerankScores attaches scores and returns the topK chunks in
// descending score order. The sort is stable so hybrid order breaks ties.
func applyRerankScores(chunks []models.RetrievedChunk, scores []float64, topK int) []models.RetrievedChunk {
	scored := make([]models.RetrievedChunk, len(chunks))
	copy(scored, chunks)
	for i := range scored {
		s := scores[i]
		scored[i].RerankScore = &s
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return *scored[i].RerankScore > *scored[j].RerankScore
	})

	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}
