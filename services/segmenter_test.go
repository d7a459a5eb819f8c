package services

import (
	"strings"
	"testing"

	"law-rag-platform/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func articleNumbers(articles []models.RawArticle) []int {
	nums := make([]int, 0, len(articles))
	for _, a := range articles {
		nums = append(nums, a.ArticleNumber)
	}
	return nums
}

func TestSegmentExcludesInlineReference(t *testing.T) {
	seg := NewSegmenter(100)

	pages := []models.PageContent{
		{PageNumber: 1, Text: "قانون العقوبات\n\n" +
			"مادة ١\nنص المادة الأولى في هذا القانون.\n\n" +
			"مادة ٢\nنص المادة الثانية، انظر المادة ١٠ لمزيد من التفاصيل."},
		{PageNumber: 2, Text: "مادة ٣\nنص المادة الثالثة من القانون."},
	}

	articles := seg.Segment(pages)

	require.Equal(t, []int{1, 2, 3}, articleNumbers(articles))
	// The inline "المادة ١٠" stays inside article 2's body.
	assert.Contains(t, articles[1].Content, "المادة ١٠")
	assert.Equal(t, "مادة ٢", articles[1].MarkerText)
	assert.Equal(t, 2, articles[2].PageNumber)
}

func TestSegmentRecoversReversedNumerals(t *testing.T) {
	seg := NewSegmenter(100)

	// Literal readings are 11, 21, 31, 41; the last three are visually
	// reversed multi-digit numbers whose true values are 12, 13, 14.
	pages := []models.PageContent{{PageNumber: 1, Text: "" +
		"مادة ١١\nنص المادة الحادية عشرة.\n\n" +
		"مادة ٢١\nنص المادة الثانية عشرة.\n\n" +
		"مادة ٣١\nنص المادة الثالثة عشرة.\n\n" +
		"مادة ٤١\nنص المادة الرابعة عشرة."}}

	articles := seg.Segment(pages)

	assert.Equal(t, []int{11, 12, 13, 14}, articleNumbers(articles))
}

func TestSegmentEmitsPreambleAboveThreshold(t *testing.T) {
	seg := NewSegmenter(20)

	preamble := "هذا القانون صادر بمرسوم ملكي ويحدد الأحكام العامة للمعاملات المدنية في الدولة."
	pages := []models.PageContent{{PageNumber: 1, Text: preamble + "\n\nمادة ١\nنص المادة الأولى."}}

	articles := seg.Segment(pages)

	require.Len(t, articles, 2)
	assert.Equal(t, 0, articles[0].ArticleNumber)
	assert.Equal(t, "مقدمة", articles[0].MarkerText)
	assert.Equal(t, preamble, articles[0].Content)
	assert.Equal(t, 1, articles[1].ArticleNumber)
}

func TestSegmentShortPreambleIsDropped(t *testing.T) {
	seg := NewSegmenter(100)

	pages := []models.PageContent{{PageNumber: 1, Text: "عنوان قصير\n\nمادة ١\nنص المادة الأولى."}}

	articles := seg.Segment(pages)

	require.Len(t, articles, 1)
	assert.Equal(t, 1, articles[0].ArticleNumber)
}

func TestSegmentNoHeadersReturnsWholeTextAsArticleZero(t *testing.T) {
	seg := NewSegmenter(100)

	pages := []models.PageContent{
		{PageNumber: 1, Text: "وثيقة بلا عناوين مواد على الإطلاق."},
		{PageNumber: 2, Text: "مجرد نص متواصل."},
	}

	articles := seg.Segment(pages)

	require.Len(t, articles, 1)
	assert.Equal(t, 0, articles[0].ArticleNumber)
	assert.Contains(t, articles[0].Content, "بلا عناوين")
	assert.Contains(t, articles[0].Content, "متواصل")
}

func TestSegmentDetectsChapter(t *testing.T) {
	seg := NewSegmenter(100)

	pages := []models.PageContent{{PageNumber: 1, Text: "" +
		"مادة ١\nالباب الأول في الأحكام العامة\nنص المادة الأولى.\n\n" +
		"مادة ٢\nنص المادة الثانية بدون باب."}}

	articles := seg.Segment(pages)

	require.Len(t, articles, 2)
	assert.True(t, strings.HasPrefix(articles[0].Chapter, "الباب الأول"))
	assert.Empty(t, articles[1].Chapter)
}

func TestSegmentASCIIDigitsAndBrackets(t *testing.T) {
	seg := NewSegmenter(100)

	pages := []models.PageContent{{PageNumber: 1, Text: "" +
		"مادة (1)\nنص المادة الأولى.\n\n" +
		"مادة (2)\nنص المادة الثانية."}}

	articles := seg.Segment(pages)

	assert.Equal(t, []int{1, 2}, articleNumbers(articles))
}

func TestSegmentEmptyInput(t *testing.T) {
	seg := NewSegmenter(100)
	assert.Nil(t, seg.Segment(nil))
	assert.Nil(t, seg.Segment([]models.PageContent{{PageNumber: 1, Text: "   "}}))
}

func TestFilterSequentialTiePrefersRunStartingAtOne(t *testing.T) {
	// Two equal-length monotonic runs: 1,2 and 7,8. The run seeded at 1
	// wins the tie.
	cands := []headerCandidate{
		{start: 0, end: 1, normal: 1},
		{start: 10, end: 11, normal: 2},
		{start: 20, end: 21, normal: 7},
		{start: 30, end: 31, normal: 8},
	}

	accepted := filterSequential(cands)
	require.Len(t, accepted, 2)
	assert.Equal(t, 1, accepted[0].number)
	assert.Equal(t, 2, accepted[1].number)
}

func TestBuildRunDegenerateFirstElementCorrection(t *testing.T) {
	// A lone early acceptance (9) is displaced by a lower number closer
	// to the seed, after which the true sequence extends.
	cands := []headerCandidate{
		{start: 0, end: 1, normal: 9},
		{start: 10, end: 11, normal: 7},
		{start: 20, end: 21, normal: 8},
		{start: 30, end: 31, normal: 9},
	}

	run := buildRun(cands, 7)
	require.Len(t, run, 3)
	assert.Equal(t, 7, run[0].number)
	assert.Equal(t, 9, run[2].number)
}
