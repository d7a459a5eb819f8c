package services

import (
	"fmt"
	"strings"

	"law-rag-platform/models"
	"law-rag-platform/utils"

	"github.com/google/uuid"
)

// ChunkBuilder converts segmented articles into bounded, embeddable chunks.
// Token counts are approximated as character count divided by a fixed
// ratio; an exact tokenizer is deliberately not used here.
type ChunkBuilder struct {
	maxTokens     int
	charsPerToken float64
}

func NewChunkBuilder(maxTokens int, charsPerToken float64) *ChunkBuilder {
	return &ChunkBuilder{maxTokens: maxTokens, charsPerToken: charsPerToken}
}

// EstimateTokens approximates the token count of a text span.
func (b *ChunkBuilder) EstimateTokens(text string) int {
	return int(float64(len([]rune(text))) / b.charsPerToken)
}

// Build emits one chunk per article, or several parts when an article
// exceeds the token budget. Part markers are prefixed onto parts 2..n only,
// so an unsplit article's content is stored verbatim.
func (b *ChunkBuilder) Build(articles []models.RawArticle, meta models.ArticleMetadata) []models.DocumentChunk {
	var chunks []models.DocumentChunk
	for _, article := range articles {
		chunks = append(chunks, b.buildArticle(article, meta)...)
	}
	return chunks
}

func (b *ChunkBuilder) buildArticle(article models.RawArticle, meta models.ArticleMetadata) []models.DocumentChunk {
	parts := b.splitContent(article.Content)
	total := len(parts)

	chunks := make([]models.DocumentChunk, 0, total)
	for i, content := range parts {
		part := i + 1
		if part >= 2 {
			content = partMarker(article.ArticleNumber, part, total) + content
		}
		chunks = append(chunks, models.DocumentChunk{
			ChunkID:       ChunkID(meta.Country, meta.LawType, article.ArticleNumber, part),
			Content:       content,
			ArticleNumber: article.ArticleNumber,
			MarkerText:    article.MarkerText,
			PageNumber:    article.PageNumber,
			Country:       meta.Country,
			LawType:       meta.LawType,
			LawName:       meta.LawName,
			LawNameEn:     meta.LawNameEn,
			LawNumber:     meta.LawNumber,
			LawYear:       meta.LawYear,
			SourceFile:    meta.SourceFile,
			Chapter:       article.Chapter,
			ChunkPart:     part,
			TotalParts:    total,
		})
	}
	return chunks
}

// splitContent returns the article body as one piece when it fits the
// budget, otherwise greedily accumulates paragraphs: each paragraph joins
// the current piece unless the addition would overflow, in which case the
// piece is emitted and a new one starts. The final accumulation is always
// emitted.
func (b *ChunkBuilder) splitContent(content string) []string {
	if b.EstimateTokens(content) <= b.maxTokens {
		return []string{content}
	}

	paragraphs := strings.Split(content, "\n\n")
	var pieces []string
	var current strings.Builder

	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		candidate := para
		if current.Len() > 0 {
			candidate = current.String() + "\n\n" + para
		}

		if current.Len() > 0 && b.EstimateTokens(candidate) > b.maxTokens {
			pieces = append(pieces, current.String())
			current.Reset()
			current.WriteString(para)
			continue
		}
		current.Reset()
		current.WriteString(candidate)
	}

	if current.Len() > 0 {
		pieces = append(pieces, current.String())
	}
	if len(pieces) == 0 {
		pieces = []string{content}
	}
	return pieces
}

// partMarker renders the localized continuation prefix, e.g.
// "[مادة ٣ - جزء ٢ من ٤]".
func partMarker(articleNumber, part, total int) string {
	return fmt.Sprintf("[مادة %s - جزء %s من %s]\n\n",
		utils.ASCIIDigitsToArabic(fmt.Sprint(articleNumber)),
		utils.ASCIIDigitsToArabic(fmt.Sprint(part)),
		utils.ASCIIDigitsToArabic(fmt.Sprint(total)))
}

// ChunkID derives the deterministic chunk identity. Re-ingesting the same
// law yields the same IDs, making storage upserts idempotent.
func ChunkID(country, lawType string, articleNumber, part int) string {
	name := fmt.Sprintf("%s:%s:%d:%d", country, lawType, articleNumber, part)
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(name)).String()
}
