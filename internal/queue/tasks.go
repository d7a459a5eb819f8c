package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/hibiken/asynq"

	"law-rag-platform/internal/logger"
	"law-rag-platform/models"
	"law-rag-platform/services"
)

const TaskIngestLaw = "law:ingest"

// IngestLawPayload references the uploaded document on disk rather than
// embedding it, keeping queue entries small.
type IngestLawPayload struct {
	FilePath string                 `json:"file_path"`
	Filename string                 `json:"filename"`
	Metadata models.ArticleMetadata `json:"metadata"`
}

// NewIngestLawTask creates the queue task for one uploaded law document.
func NewIngestLawTask(filePath, filename string, metadata models.ArticleMetadata) (*asynq.Task, error) {
	payload, err := json.Marshal(IngestLawPayload{
		FilePath: filePath,
		Filename: filename,
		Metadata: metadata,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskIngestLaw,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(15*time.Minute),
		asynq.Queue("ingestion"),
	), nil
}

// TaskProcessor executes queued ingestion jobs against the same pipeline
// the synchronous endpoint uses.
type TaskProcessor struct {
	ingestion *services.IngestionPipeline
}

func NewTaskProcessor(ingestion *services.IngestionPipeline) *TaskProcessor {
	return &TaskProcessor{ingestion: ingestion}
}

// ProcessIngestLaw loads the staged file, runs the ingestion pipeline and
// removes the file on success. Malformed payloads are never retried.
func (p *TaskProcessor) ProcessIngestLaw(ctx context.Context, t *asynq.Task) error {
	var payload IngestLawPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	logger.Info("async ingestion started",
		"file", payload.Filename,
		"country", payload.Metadata.Country,
		"law_type", payload.Metadata.LawType)

	content, err := os.ReadFile(payload.FilePath)
	if err != nil {
		return fmt.Errorf("failed to read staged file %s: %v: %w", payload.FilePath, err, asynq.SkipRetry)
	}

	output, _ := p.ingestion.Ingest(ctx, models.IngestionInput{
		PDFContent: content,
		Filename:   payload.Filename,
		Metadata:   payload.Metadata,
	})
	if !output.Success {
		return fmt.Errorf("ingestion failed for %s: %v", payload.Filename, output.Errors)
	}

	if err := os.Remove(payload.FilePath); err != nil {
		logger.Warn("failed to remove staged file", "path", payload.FilePath, "error", err)
	}

	logger.Info("async ingestion completed",
		"file", payload.Filename,
		"collection", output.Collection,
		"articles", output.ArticlesFound,
		"chunks", output.ChunksCreated)
	return nil
}
