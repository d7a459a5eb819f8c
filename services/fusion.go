package services

import (
	"sort"

	"law-rag-platform/models"
)

// rrfK dampens the weight of top ranks so a single list cannot dominate
// the fused order. 60 is the value from the original RRF paper and the
// common default in hybrid search engines.
const rrfK = 60

// ReciprocalRankFusion merges two independently ranked result lists by rank
// position. Scores from the two retrievers are not comparable, so only rank
// matters: each appearance contributes 1/(k + rank). Chunks present in both
// lists accumulate both contributions, which is what pushes agreed-on
// results to the top. The fused score is written to HybridScore.
func ReciprocalRankFusion(dense, sparse []models.RetrievedChunk, k int) []models.RetrievedChunk {
	if k <= 0 {
		k = rrfK
	}

	scores := make(map[string]float64)
	byID := make(map[string]models.RetrievedChunk)
	order := make([]string, 0, len(dense)+len(sparse))

	accumulate := func(list []models.RetrievedChunk) {
		for rank, chunk := range list {
			if _, seen := scores[chunk.ChunkID]; !seen {
				byID[chunk.ChunkID] = chunk
				order = append(order, chunk.ChunkID)
			}
			scores[chunk.ChunkID] += 1.0 / float64(k+rank+1)
		}
	}
	accumulate(dense)
	accumulate(sparse)

	fused := make([]models.RetrievedChunk, 0, len(order))
	for _, id := range order {
		chunk := byID[id]
		chunk.HybridScore = scores[id]
		fused = append(fused, chunk)
	}

	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].HybridScore > fused[j].HybridScore
	})
	return fused
}
