package routes

import (
	"context"
	"net/http"
	"time"

	"law-rag-platform/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// HandleHealth reports the reachability of every external dependency. The
// endpoint returns 503 when any required component is down.
func HandleHealth(rdb *redis.Client, store services.VectorStore, sparse *services.SparseEncoderClient, reranker *services.RerankerClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		components := gin.H{}
		healthy := true

		if err := rdb.Ping(ctx).Err(); err != nil {
			components["redis"] = "down"
			healthy = false
		} else {
			components["redis"] = "ok"
		}

		if _, err := store.ListCollections(ctx); err != nil {
			components["qdrant"] = "down"
			healthy = false
		} else {
			components["qdrant"] = "ok"
		}

		if ok, _ := sparse.IsHealthy(ctx); !ok {
			components["sparse_encoder"] = "down"
			healthy = false
		} else {
			components["sparse_encoder"] = "ok"
		}

		if ok, _ := reranker.IsHealthy(ctx); !ok {
			components["reranker"] = "down"
			healthy = false
		} else {
			components["reranker"] = "ok"
		}

		status := http.StatusOK
		overall := "healthy"
		if !healthy {
			status = http.StatusServiceUnavailable
			overall = "degraded"
		}
		c.JSON(status, gin.H{"status": overall, "components": components})
	}
}
