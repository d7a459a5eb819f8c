package routes

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"law-rag-platform/internal/config"
	"law-rag-platform/internal/queue"
	"law-rag-platform/internal/telemetry"
	"law-rag-platform/models"
	"law-rag-platform/services"
	"law-rag-platform/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// metadataFromForm reads the law descriptor fields accompanying an upload.
func metadataFromForm(c *gin.Context, filename string) (models.ArticleMetadata, error) {
	meta := models.ArticleMetadata{
		Country:    strings.ToLower(strings.TrimSpace(c.PostForm("country"))),
		LawType:    strings.ToLower(strings.TrimSpace(c.PostForm("law_type"))),
		LawName:    strings.TrimSpace(c.PostForm("law_name")),
		LawNameEn:  strings.TrimSpace(c.PostForm("law_name_en")),
		LawNumber:  strings.TrimSpace(c.PostForm("law_number")),
		LawYear:    strings.TrimSpace(c.PostForm("law_year")),
		SourceFile: filename,
	}

	if meta.Country == "" || meta.LawType == "" || meta.LawName == "" {
		return meta, fmt.Errorf("country, law_type and law_name are required")
	}
	if err := services.ValidateCountry(meta.Country); err != nil {
		return meta, err
	}
	if err := services.ValidateLawType(meta.LawType); err != nil {
		return meta, err
	}
	return meta, nil
}

// readUploadedPDF validates and reads the uploaded file into memory.
func readUploadedPDF(c *gin.Context, maxFileSize int64) ([]byte, string, error) {
	file, header, err := c.Request.FormFile("pdf")
	if err != nil {
		return nil, "", fmt.Errorf("no PDF file provided")
	}
	defer file.Close()

	ct := header.Header.Get("Content-Type")
	if !strings.Contains(ct, "pdf") && !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		return nil, "", fmt.Errorf("only PDF files are allowed")
	}
	if header.Size > maxFileSize {
		return nil, "", fmt.Errorf("file size exceeds maximum limit")
	}

	content, err := io.ReadAll(io.LimitReader(file, maxFileSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read uploaded file")
	}
	if int64(len(content)) > maxFileSize {
		return nil, "", fmt.Errorf("file size exceeds maximum limit")
	}
	if len(content) < 5 || string(content[:4]) != "%PDF" {
		return nil, "", fmt.Errorf("file does not appear to be a valid PDF")
	}
	return content, header.Filename, nil
}

// HandleIngestLaw ingests one law document synchronously and reports the
// pipeline summary.
func HandleIngestLaw(cfg *config.Config, ingestion *services.IngestionPipeline, metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := c.Request.ParseMultipartForm(cfg.MaxFileSize); err != nil {
			utils.RespondWithBadRequest(c, "File size exceeds maximum limit", nil)
			return
		}

		content, filename, err := readUploadedPDF(c, cfg.MaxFileSize)
		if err != nil {
			utils.RespondWithBadRequest(c, err.Error(), nil)
			return
		}

		meta, err := metadataFromForm(c, filename)
		if err != nil {
			utils.RespondWithBadRequest(c, err.Error(), nil)
			return
		}

		output, _ := ingestion.Ingest(c.Request.Context(), models.IngestionInput{
			PDFContent: content,
			Filename:   filename,
			Metadata:   meta,
		})

		if metrics != nil {
			metrics.RecordIngestion(meta.Country, meta.LawType, output.ChunksCreated, output.Success)
		}

		if !output.Success {
			c.JSON(http.StatusUnprocessableEntity, output)
			return
		}
		c.JSON(http.StatusOK, output)
	}
}

// HandleAsyncIngestLaw stages the upload on disk and enqueues an ingestion
// task for the worker.
func HandleAsyncIngestLaw(cfg *config.Config, queueClient *asynq.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := c.Request.ParseMultipartForm(cfg.MaxFileSize); err != nil {
			utils.RespondWithBadRequest(c, "File size exceeds maximum limit", nil)
			return
		}

		content, filename, err := readUploadedPDF(c, cfg.MaxFileSize)
		if err != nil {
			utils.RespondWithBadRequest(c, err.Error(), nil)
			return
		}

		meta, err := metadataFromForm(c, filename)
		if err != nil {
			utils.RespondWithBadRequest(c, err.Error(), nil)
			return
		}

		uploadDir := filepath.Join(cfg.FileStorageDir, "laws", meta.Country)
		if err := os.MkdirAll(uploadDir, 0o755); err != nil {
			utils.RespondWithInternalError(c, "Failed to create upload directory", nil)
			return
		}

		fileID := uuid.NewString()
		filePath := filepath.Join(uploadDir, fileID+".pdf")
		if err := os.WriteFile(filePath, content, 0o600); err != nil {
			utils.RespondWithInternalError(c, "Failed to stage uploaded file", nil)
			return
		}

		task, err := queue.NewIngestLawTask(filePath, filename, meta)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to create ingestion task", nil)
			return
		}

		info, err := queueClient.Enqueue(task)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to enqueue ingestion task", nil)
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"task_id":    info.ID,
			"queue":      info.Queue,
			"collection": services.CollectionName(meta.Country),
			"filename":   filename,
		})
	}
}
