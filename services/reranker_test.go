package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"law-rag-platform/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyRerankScoresOrdersAndTruncates(t *testing.T) {
	chunks := []models.RetrievedChunk{
		{ChunkID: "a"}, {ChunkID: "b"}, {ChunkID: "c"},
	}
	scores := []float64{0.2, 0.9, 0.5}

	out := applyRerankScores(chunks, scores, 2)

	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].ChunkID)
	assert.Equal(t, "c", out[1].ChunkID)
	assert.Equal(t, 0.9, *out[0].RerankScore)

	// Input slice is untouched.
	assert.Nil(t, chunks[0].RerankScore)
}

func TestApplyRerankScoresStableOnTies(t *testing.T) {
	chunks := []models.RetrievedChunk{
		{ChunkID: "first"}, {ChunkID: "second"},
	}
	out := applyRerankScores(chunks, []float64{0.5, 0.5}, 0)

	require.Len(t, out, 2)
	assert.Equal(t, "first", out[0].ChunkID)
	assert.Equal(t, "second", out[1].ChunkID)
}

func TestRerankEmptyInputSkipsSidecar(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := NewRerankerClient(srv.URL, "test-model", 5*time.Second)
	out, err := client.Rerank(context.Background(), "سؤال", nil, 5)

	require.NoError(t, err)
	assert.Empty(t, out)
	assert.False(t, called)
}

func TestRerankRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rerank", r.URL.Path)

		var req rerankRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Len(t, req.Documents, 2)

		json.NewEncoder(w).Encode(rerankResponse{Scores: []float64{0.1, 0.8}})
	}))
	defer srv.Close()

	client := NewRerankerClient(srv.URL, "test-model", 5*time.Second)
	chunks := []models.RetrievedChunk{
		{ChunkID: "a", Content: "نص أ"},
		{ChunkID: "b", Content: "نص ب"},
	}

	out, err := client.Rerank(context.Background(), "سؤال", chunks, 5)

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].ChunkID)
}

func TestRerankScoreCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(rerankResponse{Scores: []float64{0.1}})
	}))
	defer srv.Close()

	client := NewRerankerClient(srv.URL, "", 5*time.Second)
	chunks := []models.RetrievedChunk{{ChunkID: "a"}, {ChunkID: "b"}}

	_, err := client.Rerank(context.Background(), "سؤال", chunks, 5)
	assert.ErrorContains(t, err, "2 documents")
}

func TestRerankSidecarError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(rerankResponse{Error: "model not loaded"})
	}))
	defer srv.Close()

	client := NewRerankerClient(srv.URL, "", 5*time.Second)
	_, err := client.Rerank(context.Background(), "سؤال", []models.RetrievedChunk{{ChunkID: "a"}}, 5)
	assert.ErrorContains(t, err, "model not loaded")
}
