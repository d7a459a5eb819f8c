package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"law-rag-platform/models"
)

// SparseEncoderClient talks to the BM25/SPLADE encoder sidecar over JSON.
// The sidecar owns the vocabulary, so queries and documents must be encoded
// by the same instance to share an index space.
type SparseEncoderClient struct {
	httpClient *http.Client
	baseURL    string
}

type sparseEncodeRequest struct {
	Texts []string `json:"texts"`
	Mode  string   `json:"mode"` // "query" or "document"
}

type sparseEncodeResponse struct {
	Vectors []models.SparseVector `json:"vectors"`
	Error   string                `json:"error,omitempty"`
}

func NewSparseEncoderClient(baseURL string, timeout time.Duration) *SparseEncoderClient {
	return &SparseEncoderClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// IsHealthy checks the sidecar's readiness endpoint.
func (c *SparseEncoderClient) IsHealthy(ctx context.Context) (bool, error) {
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

// EncodeQuery produces the sparse vector for one query string.
func (c *SparseEncoderClient) EncodeQuery(ctx context.Context, text string) (*models.SparseVector, error) {
	vectors, err := c.encode(ctx, []string{text}, "query")
	if err != nil {
		return nil, err
	}
	return &vectors[0], nil
}

// EncodeDocuments produces sparse vectors for document chunks, order
// preserved.
func (c *SparseEncoderClient) EncodeDocuments(ctx context.Context, texts []string) ([]*models.SparseVector, error) {
	vectors, err := c.encode(ctx, texts, "document")
	if err != nil {
		return nil, err
	}
	out := make([]*models.SparseVector, len(vectors))
	for i := range vectors {
		out[i] = &vectors[i]
	}
	return out, nil
}

func (c *SparseEncoderClient) encode(ctx context.Context, texts []string, mode string) ([]models.SparseVector, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no texts to encode")
	}

	body, err := json.Marshal(sparseEncodeRequest{Texts: texts, Mode: mode})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/encode", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create encode request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sparse encode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("sparse encode failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var encResp sparseEncodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&encResp); err != nil {
		return nil, fmt.Errorf("failed to decode sparse encode response: %w", err)
	}
	if encResp.Error != "" {
		return nil, fmt.Errorf("sparse encoder error: %s", encResp.Error)
	}
	if len(encResp.Vectors) != len(texts) {
		return nil, fmt.Errorf("sparse encoder returned %d vectors for %d texts", len(encResp.Vectors), len(texts))
	}

	return encResp.Vectors, nil
}
