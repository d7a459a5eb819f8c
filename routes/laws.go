package routes

import (
	"net/http"

	"law-rag-platform/services"
	"law-rag-platform/utils"

	"github.com/gin-gonic/gin"
)

// HandleListLaws lists every law collection with its point count.
func HandleListLaws(store services.VectorStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		names, err := store.ListCollections(c.Request.Context())
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list collections", err.Error())
			return
		}

		laws := make([]gin.H, 0, len(names))
		for _, name := range names {
			country, ok := services.CountryFromCollection(name)
			if !ok {
				continue
			}
			info, err := store.CollectionInfo(c.Request.Context(), name)
			if err != nil {
				utils.RespondWithInternalError(c, "Failed to read collection info", err.Error())
				return
			}
			laws = append(laws, gin.H{
				"country":    country,
				"collection": name,
				"chunks":     info.PointsCount,
				"status":     info.Status,
			})
		}

		c.JSON(http.StatusOK, gin.H{"laws": laws})
	}
}

// HandleGetLaw reports one country's collection.
func HandleGetLaw(store services.VectorStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		country := c.Param("country")
		if err := services.ValidateCountry(country); err != nil {
			utils.RespondWithBadRequest(c, err.Error(), nil)
			return
		}

		name := services.CollectionName(country)
		exists, err := store.CollectionExists(c.Request.Context(), name)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to check collection", err.Error())
			return
		}
		if !exists {
			utils.RespondWithNotFound(c, "No laws ingested for "+country)
			return
		}

		info, err := store.CollectionInfo(c.Request.Context(), name)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to read collection info", err.Error())
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"country":    country,
			"collection": name,
			"chunks":     info.PointsCount,
			"status":     info.Status,
		})
	}
}

// HandleDeleteLaw removes a country's collection entirely.
func HandleDeleteLaw(store services.VectorStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		country := c.Param("country")
		if err := services.ValidateCountry(country); err != nil {
			utils.RespondWithBadRequest(c, err.Error(), nil)
			return
		}

		name := services.CollectionName(country)
		exists, err := store.CollectionExists(c.Request.Context(), name)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to check collection", err.Error())
			return
		}
		if !exists {
			utils.RespondWithNotFound(c, "No laws ingested for "+country)
			return
		}

		if err := store.DeleteCollection(c.Request.Context(), name); err != nil {
			utils.RespondWithInternalError(c, "Failed to delete collection", err.Error())
			return
		}

		c.JSON(http.StatusOK, gin.H{"deleted": name})
	}
}

// HandleResetLaw drops and recreates a country's collection. Upserts
// overwrite silently on re-ingestion; this is the explicit escape hatch
// when stale chunks from a previous segmentation must go.
func HandleResetLaw(store services.VectorStore, denseDim int) gin.HandlerFunc {
	return func(c *gin.Context) {
		country := c.Param("country")
		if err := services.ValidateCountry(country); err != nil {
			utils.RespondWithBadRequest(c, err.Error(), nil)
			return
		}

		name := services.CollectionName(country)
		exists, err := store.CollectionExists(c.Request.Context(), name)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to check collection", err.Error())
			return
		}
		if exists {
			if err := store.DeleteCollection(c.Request.Context(), name); err != nil {
				utils.RespondWithInternalError(c, "Failed to delete collection", err.Error())
				return
			}
		}

		if err := store.EnsureCollection(c.Request.Context(), name, denseDim); err != nil {
			utils.RespondWithInternalError(c, "Failed to recreate collection", err.Error())
			return
		}

		c.JSON(http.StatusOK, gin.H{"reset": name})
	}
}
