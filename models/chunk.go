package models

// PageContent is the normalized text of one extracted PDF page.
type PageContent struct {
	PageNumber int    `json:"page_number"` // 1-based
	Text       string `json:"text"`
}

// ArticleMetadata describes the law a document belongs to. It is supplied by
// the caller at ingestion time and copied onto every chunk.
type ArticleMetadata struct {
	Country    string `json:"country"`
	LawType    string `json:"law_type"`
	LawName    string `json:"law_name"`
	LawNameEn  string `json:"law_name_en,omitempty"`
	LawNumber  string `json:"law_number,omitempty"`
	LawYear    string `json:"law_year,omitempty"`
	SourceFile string `json:"source_file,omitempty"`
}

// RawArticle is one article-aligned span produced by the segmenter.
// ArticleNumber 0 marks the preamble (text before the first accepted
// header) or a document with no detectable headers.
type RawArticle struct {
	ArticleNumber int    `json:"article_number"`
	MarkerText    string `json:"marker_text,omitempty"` // e.g. "مادة ٣١٨"
	Content       string `json:"content"`
	PageNumber    int    `json:"page_number"`
	Chapter       string `json:"chapter,omitempty"`
}

// SparseVector is a BM25-style index/value pair list. Indices and Values are
// parallel arrays.
type SparseVector struct {
	Indices []uint32  `json:"indices"`
	Values  []float32 `json:"values"`
}

// DocumentChunk is a persisted, embeddable unit of text: one article, or one
// part of an article split under the token budget. Vectors are attached by
// the encoder steps before storage; a chunk is never stored without both.
type DocumentChunk struct {
	ChunkID       string `json:"chunk_id"`
	Content       string `json:"content"`
	ArticleNumber int    `json:"article_number"`
	MarkerText    string `json:"marker_text,omitempty"`
	PageNumber    int    `json:"page_number"`

	Country    string `json:"country"`
	LawType    string `json:"law_type"`
	LawName    string `json:"law_name"`
	LawNameEn  string `json:"law_name_en,omitempty"`
	LawNumber  string `json:"law_number,omitempty"`
	LawYear    string `json:"law_year,omitempty"`
	SourceFile string `json:"source_file,omitempty"`
	Chapter    string `json:"chapter,omitempty"`

	ChunkPart  int `json:"chunk_part"`
	TotalParts int `json:"total_parts"`

	DenseVector  []float32     `json:"dense_vector,omitempty"`
	SparseVector *SparseVector `json:"sparse_vector,omitempty"`
}

// Payload returns the vector-store payload for this chunk. This is the
// bit-exact field set the retrieval side reads back.
func (c *DocumentChunk) Payload() map[string]any {
	return map[string]any{
		"chunk_id":       c.ChunkID,
		"content":        c.Content,
		"article_number": int64(c.ArticleNumber),
		"marker_text":    c.MarkerText,
		"page_number":    int64(c.PageNumber),
		"country":        c.Country,
		"law_type":       c.LawType,
		"law_name":       c.LawName,
		"law_name_en":    c.LawNameEn,
		"law_number":     c.LawNumber,
		"law_year":       c.LawYear,
		"source_file":    c.SourceFile,
		"chapter":        c.Chapter,
		"chunk_part":     int64(c.ChunkPart),
		"total_parts":    int64(c.TotalParts),
	}
}
