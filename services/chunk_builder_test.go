package services

import (
	"fmt"
	"strings"
	"testing"

	"law-rag-platform/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMeta() models.ArticleMetadata {
	return models.ArticleMetadata{
		Country: "jordan",
		LawType: "civil",
		LawName: "القانون المدني",
		LawYear: "1976",
	}
}

func TestEstimateTokens(t *testing.T) {
	b := NewChunkBuilder(1000, 1.5)
	assert.Equal(t, 0, b.EstimateTokens(""))
	assert.Equal(t, 2, b.EstimateTokens("مادة")) // 4 runes / 1.5
	assert.Equal(t, 100, b.EstimateTokens(strings.Repeat("م", 150)))
}

func TestBuildSingleChunkKeepsContentVerbatim(t *testing.T) {
	b := NewChunkBuilder(1000, 1.5)

	articles := []models.RawArticle{{
		ArticleNumber: 5,
		MarkerText:    "مادة ٥",
		Content:       "نص قصير يدخل في قطعة واحدة.",
		PageNumber:    3,
	}}

	chunks := b.Build(articles, testMeta())

	require.Len(t, chunks, 1)
	c := chunks[0]
	assert.Equal(t, articles[0].Content, c.Content)
	assert.Equal(t, 1, c.ChunkPart)
	assert.Equal(t, 1, c.TotalParts)
	assert.Equal(t, 5, c.ArticleNumber)
	assert.Equal(t, 3, c.PageNumber)
	assert.Equal(t, "jordan", c.Country)
	assert.NotContains(t, c.Content, "جزء")
}

func TestBuildSplitsOversizedArticle(t *testing.T) {
	// Budget of 20 tokens at 1 char/token: 30-rune paragraphs cannot pair up.
	b := NewChunkBuilder(20, 1.0)

	para := strings.Repeat("م", 30)
	content := para + "\n\n" + para + "\n\n" + para

	articles := []models.RawArticle{
		{ArticleNumber: 1, MarkerText: "مادة ١", Content: "قصير"},
		{ArticleNumber: 2, MarkerText: "مادة ٢", Content: "قصير أيضا"},
		{ArticleNumber: 3, MarkerText: "مادة ٣", Content: content},
	}

	chunks := b.Build(articles, testMeta())

	// Articles 1 and 2 give one chunk each, article 3 splits but the exact
	// part count follows the greedy packing: each paragraph overflows alone.
	require.Len(t, chunks, 5)

	assert.Equal(t, 1, chunks[0].TotalParts)
	assert.Equal(t, 1, chunks[1].TotalParts)

	parts := chunks[2:]
	for i, c := range parts {
		assert.Equal(t, 3, c.ArticleNumber)
		assert.Equal(t, i+1, c.ChunkPart)
		assert.Equal(t, 3, c.TotalParts)
	}

	// Part 1 carries no continuation marker, parts 2+ do, in Arabic numerals.
	assert.False(t, strings.HasPrefix(parts[0].Content, "["))
	assert.True(t, strings.HasPrefix(parts[1].Content, "[مادة ٣ - جزء ٢ من ٣]\n\n"))
	assert.True(t, strings.HasPrefix(parts[2].Content, "[مادة ٣ - جزء ٣ من ٣]\n\n"))
}

func TestBuildChunkIdentityIsUnique(t *testing.T) {
	b := NewChunkBuilder(20, 1.0)

	para := strings.Repeat("م", 30)
	articles := []models.RawArticle{
		{ArticleNumber: 1, Content: para + "\n\n" + para},
		{ArticleNumber: 2, Content: "قصير"},
	}

	chunks := b.Build(articles, testMeta())

	seen := map[string]bool{}
	for _, c := range chunks {
		key := fmt.Sprintf("%d/%d", c.ArticleNumber, c.ChunkPart)
		assert.False(t, seen[key], "duplicate identity %s", key)
		seen[key] = true
		assert.False(t, seen[c.ChunkID], "duplicate chunk id")
		seen[c.ChunkID] = true
	}
}

func TestChunkIDDeterministic(t *testing.T) {
	a := ChunkID("jordan", "civil", 12, 1)
	b := ChunkID("jordan", "civil", 12, 1)
	c := ChunkID("jordan", "civil", 12, 2)
	d := ChunkID("uae", "civil", 12, 1)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)

	// Valid UUID shape.
	assert.Len(t, a, 36)
}

func TestSplitContentFinalPieceAlwaysEmitted(t *testing.T) {
	b := NewChunkBuilder(20, 1.0)

	// Two paragraphs that fit together plus a trailing one that does not.
	p1 := strings.Repeat("أ", 8)
	p2 := strings.Repeat("ب", 8)
	p3 := strings.Repeat("ج", 30)

	pieces := b.splitContent(p1 + "\n\n" + p2 + "\n\n" + p3)

	require.Len(t, pieces, 2)
	assert.Equal(t, p1+"\n\n"+p2, pieces[0])
	assert.Equal(t, p3, pieces[1])
}
