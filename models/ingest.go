package models

// IngestionInput bundles everything the ingestion pipeline needs for one
// document.
type IngestionInput struct {
	PDFContent []byte          `json:"-"`
	Filename   string          `json:"filename"`
	Metadata   ArticleMetadata `json:"metadata"`
	Collection string          `json:"collection"`
}

// IngestionOutput summarizes one ingestion run.
type IngestionOutput struct {
	Success        bool     `json:"success"`
	Collection     string   `json:"collection"`
	ArticlesFound  int      `json:"articles_found"`
	ChunksCreated  int      `json:"chunks_created"`
	PagesProcessed int      `json:"pages_processed"`
	DurationMs     float64  `json:"duration_ms"`
	Errors         []string `json:"errors,omitempty"`
}
