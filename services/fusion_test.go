package services

import (
	"testing"

	"law-rag-platform/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rc(id string) models.RetrievedChunk {
	return models.RetrievedChunk{ChunkID: id, Content: "نص " + id}
}

func fusedIDs(chunks []models.RetrievedChunk) []string {
	ids := make([]string, 0, len(chunks))
	for _, c := range chunks {
		ids = append(ids, c.ChunkID)
	}
	return ids
}

func TestReciprocalRankFusionPromotesAgreedResults(t *testing.T) {
	// "b" is second in both lists; "a" and "c" each lead one list. Two
	// mid-rank appearances beat one top rank.
	dense := []models.RetrievedChunk{rc("a"), rc("b"), rc("x")}
	sparse := []models.RetrievedChunk{rc("c"), rc("b"), rc("y")}

	fused := ReciprocalRankFusion(dense, sparse, 60)

	require.NotEmpty(t, fused)
	assert.Equal(t, "b", fused[0].ChunkID)

	// b's fused rank is strictly better than its rank in either input.
	idx := map[string]int{}
	for i, c := range fused {
		idx[c.ChunkID] = i
	}
	assert.Less(t, idx["b"], 1)
}

func TestReciprocalRankFusionDeduplicates(t *testing.T) {
	dense := []models.RetrievedChunk{rc("a"), rc("b")}
	sparse := []models.RetrievedChunk{rc("b"), rc("a")}

	fused := ReciprocalRankFusion(dense, sparse, 60)

	require.Len(t, fused, 2)
	assert.ElementsMatch(t, []string{"a", "b"}, fusedIDs(fused))
}

func TestReciprocalRankFusionScores(t *testing.T) {
	dense := []models.RetrievedChunk{rc("a"), rc("b")}
	sparse := []models.RetrievedChunk{rc("b")}

	fused := ReciprocalRankFusion(dense, sparse, 60)

	require.Len(t, fused, 2)
	scores := map[string]float64{}
	for _, c := range fused {
		scores[c.ChunkID] = c.HybridScore
	}
	assert.InDelta(t, 1.0/62.0+1.0/61.0, scores["b"], 1e-12)
	assert.InDelta(t, 1.0/61.0, scores["a"], 1e-12)
	assert.Equal(t, "b", fused[0].ChunkID)
}

func TestReciprocalRankFusionEmptyInputs(t *testing.T) {
	assert.Empty(t, ReciprocalRankFusion(nil, nil, 60))

	dense := []models.RetrievedChunk{rc("a")}
	fused := ReciprocalRankFusion(dense, nil, 60)
	require.Len(t, fused, 1)
	assert.Equal(t, "a", fused[0].ChunkID)
	assert.Greater(t, fused[0].HybridScore, 0.0)
}

func TestReciprocalRankFusionDefaultsK(t *testing.T) {
	dense := []models.RetrievedChunk{rc("a")}
	fused := ReciprocalRankFusion(dense, nil, 0)
	require.Len(t, fused, 1)
	assert.InDelta(t, 1.0/61.0, fused[0].HybridScore, 1e-12)
}
