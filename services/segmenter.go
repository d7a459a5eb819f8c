package services

import (
	"regexp"
	"sort"
	"strings"

	"law-rag-platform/internal/logger"
	"law-rag-platform/models"
	"law-rag-platform/utils"
)

// seqGap is the maximum jump tolerated between consecutive accepted article
// numbers. Legal codes occasionally skip repealed articles, but a jump
// larger than this is an inline reference, not a header.
const seqGap = 3

// chapterScanLimit bounds how far into an article body chapter keywords are
// searched.
const chapterScanLimit = 500

var (
	// Header keyword followed by a number in either numeral script. The
	// presentation-form variants appear verbatim in text extracted from
	// Arabic PDFs. Dashes, brackets and a line break may sit between the
	// keyword and its number.
	articleMarkerRe = regexp.MustCompile(`(?:^|[^\p{L}])((?:المادة|مادة|اﻟﻤﺎدة|ﻣﺎدة)\s*[:ـ\-–—]*\s*[\(\[]?\s*([0-9٠-٩]+)\s*[\)\]]?)`)

	chapterRe = regexp.MustCompile(`((?:الباب|الفصل|القسم)\s+[^\n.،:]{1,40})`)
)

// Segmenter partitions extracted document text into article-aligned spans.
// Header detection is sequence-filtered: a marker only counts as a real
// article boundary when its number extends a monotonic run, which separates
// headers from inline references like "انظر المادة ١٠".
type Segmenter struct {
	minPreambleLen int
}

func NewSegmenter(minPreambleLen int) *Segmenter {
	return &Segmenter{minPreambleLen: minPreambleLen}
}

// headerCandidate is one marker match with both numeral readings. Reversed
// readings exist because RTL extraction can emit multi-digit numbers in
// visual order.
type headerCandidate struct {
	start       int // byte offset of the keyword
	end         int // byte offset just past the number
	normal      int
	reversed    int
	hasReversed bool
}

// acceptedHeader is a candidate admitted by the sequential filter with the
// numeral reading the filter chose.
type acceptedHeader struct {
	start  int
	end    int
	number int
}

// Segment splits the concatenated page texts into RawArticles. A document
// with no accepted headers becomes a single article 0.
func (s *Segmenter) Segment(pages []models.PageContent) []models.RawArticle {
	buffer, pageStarts := concatPages(pages)
	if strings.TrimSpace(buffer) == "" {
		return nil
	}

	candidates := s.findCandidates(buffer)
	accepted := filterSequential(candidates)

	logger.Debug("segmentation scan",
		"candidates", len(candidates), "accepted", len(accepted))

	if len(accepted) == 0 {
		return []models.RawArticle{{
			ArticleNumber: 0,
			MarkerText:    "مقدمة",
			Content:       strings.TrimSpace(buffer),
			PageNumber:    pageForOffset(pageStarts, 0),
			Chapter:       detectChapter(buffer),
		}}
	}

	articles := make([]models.RawArticle, 0, len(accepted)+1)

	preamble := strings.TrimSpace(buffer[:accepted[0].start])
	if len([]rune(preamble)) > s.minPreambleLen {
		articles = append(articles, models.RawArticle{
			ArticleNumber: 0,
			MarkerText:    "مقدمة",
			Content:       preamble,
			PageNumber:    pageForOffset(pageStarts, 0),
			Chapter:       detectChapter(preamble),
		})
	}

	for i, h := range accepted {
		contentEnd := len(buffer)
		if i+1 < len(accepted) {
			contentEnd = accepted[i+1].start
		}
		content := strings.TrimSpace(buffer[h.end:contentEnd])
		if content == "" {
			continue
		}
		articles = append(articles, models.RawArticle{
			ArticleNumber: h.number,
			MarkerText:    utils.FormatArticleNumber(h.number, true),
			Content:       content,
			PageNumber:    pageForOffset(pageStarts, h.start),
			Chapter:       detectChapter(content),
		})
	}

	return articles
}

// concatPages joins page texts into one buffer and records each page's
// starting byte offset for later offset-to-page resolution.
func concatPages(pages []models.PageContent) (string, []pageStart) {
	var sb strings.Builder
	starts := make([]pageStart, 0, len(pages))
	for i, p := range pages {
		if i > 0 {
			sb.WriteString("\n")
		}
		starts = append(starts, pageStart{offset: sb.Len(), page: p.PageNumber})
		sb.WriteString(p.Text)
	}
	return sb.String(), starts
}

type pageStart struct {
	offset int
	page   int
}

func pageForOffset(starts []pageStart, offset int) int {
	if len(starts) == 0 {
		return 1
	}
	idx := sort.Search(len(starts), func(i int) bool {
		return starts[i].offset > offset
	})
	if idx == 0 {
		return starts[0].page
	}
	return starts[idx-1].page
}

func (s *Segmenter) findCandidates(buffer string) []headerCandidate {
	matches := articleMarkerRe.FindAllStringSubmatchIndex(buffer, -1)
	candidates := make([]headerCandidate, 0, len(matches))
	for _, m := range matches {
		// group 1 = full marker, group 2 = digits
		markerStart, markerEnd := m[2], m[3]
		digits := buffer[m[4]:m[5]]

		normal, reversed, hasReversed, ok := utils.ExtractNumberWithReverse(digits)
		if !ok || normal == 0 {
			continue
		}
		candidates = append(candidates, headerCandidate{
			start:       markerStart,
			end:         markerEnd,
			normal:      normal,
			reversed:    reversed,
			hasReversed: hasReversed,
		})
	}
	return candidates
}

// filterSequential admits the longest monotonic run of candidates, trying
// "start at 1" and "start at the minimum observed number" as seeds. The
// longer run wins; on a tie, the run seeded at 1 wins.
func filterSequential(candidates []headerCandidate) []acceptedHeader {
	if len(candidates) == 0 {
		return nil
	}

	minSeen := candidates[0].normal
	for _, c := range candidates {
		if c.normal < minSeen {
			minSeen = c.normal
		}
		if c.hasReversed && c.reversed < minSeen {
			minSeen = c.reversed
		}
	}

	runFromOne := buildRun(candidates, 1)
	if minSeen == 1 {
		return runFromOne
	}

	runFromMin := buildRun(candidates, minSeen)
	if len(runFromMin) > len(runFromOne) {
		return runFromMin
	}
	return runFromOne
}

// buildRun greedily extends a monotonic run from the seed. For each
// candidate the literal reading is preferred; the reversed reading is used
// when only it extends the run. A candidate below the current head is
// accepted only as a correction of a single degenerate first element.
func buildRun(candidates []headerCandidate, seed int) []acceptedHeader {
	var run []acceptedHeader
	last := seed - 1

	fits := func(v int) bool {
		return v > last && v-last <= seqGap
	}
	fitsSeed := func(v int) bool {
		return v >= seed && v-seed < seqGap
	}

	for _, c := range candidates {
		switch {
		case fits(c.normal):
			run = append(run, acceptedHeader{start: c.start, end: c.end, number: c.normal})
			last = c.normal
		case c.hasReversed && fits(c.reversed):
			run = append(run, acceptedHeader{start: c.start, end: c.end, number: c.reversed})
			last = c.reversed
		case len(run) == 1 && c.normal < run[0].number && fitsSeed(c.normal):
			// Degenerate first element: a lone early acceptance displaced
			// by a lower number that restarts the sequence closer to the
			// seed.
			run[0] = acceptedHeader{start: c.start, end: c.end, number: c.normal}
			last = c.normal
		}
	}
	return run
}

// detectChapter looks for a structural keyword near the start of a span and
// returns the matched heading, or "".
func detectChapter(content string) string {
	head := []rune(content)
	if len(head) > chapterScanLimit {
		head = head[:chapterScanLimit]
	}
	m := chapterRe.FindString(string(head))
	return strings.TrimSpace(m)
}
