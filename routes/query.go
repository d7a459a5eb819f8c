package routes

import (
	"net/http"
	"time"

	"law-rag-platform/internal/logger"
	"law-rag-platform/internal/telemetry"
	"law-rag-platform/models"
	"law-rag-platform/services"
	"law-rag-platform/utils"

	"github.com/gin-gonic/gin"
)

// HandleQuery answers one legal question. Session history is best-effort:
// a session write failure never fails the query.
func HandleQuery(pipeline *services.QueryPipeline, sessions *services.SessionService, metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.QueryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.RespondWithBadRequest(c, "Invalid query payload", err.Error())
			return
		}

		output, err := pipeline.Answer(c.Request.Context(), input)
		if err != nil {
			utils.RespondWithInternalError(c, "Query failed", err.Error())
			return
		}

		if metrics != nil {
			metrics.RecordQuery(input.Country, output.Metadata.QueryTimeMs/1000.0, false)
		}

		if sessions != nil && input.SessionID != "" {
			now := time.Now().UTC()
			appendErr := sessions.AppendMessage(c.Request.Context(), input.SessionID, models.Message{
				Role:      "user",
				Content:   input.Question,
				Timestamp: now,
			})
			if appendErr == nil {
				appendErr = sessions.AppendMessage(c.Request.Context(), input.SessionID, models.Message{
					Role:      "assistant",
					Content:   output.Answer,
					Timestamp: now,
					Metadata: map[string]any{
						"sources": len(output.Sources),
						"country": input.Country,
					},
				})
			}
			if appendErr != nil {
				logger.Warn("failed to record session history", "session", input.SessionID, "error", appendErr)
			}
		}

		c.JSON(http.StatusOK, output)
	}
}
