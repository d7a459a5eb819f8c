package routes

import (
	"net/http"

	"law-rag-platform/services"
	"law-rag-platform/utils"

	"github.com/gin-gonic/gin"
)

// HandleCreateSession starts a new conversation session.
func HandleCreateSession(sessions *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Metadata map[string]any `json:"metadata"`
		}
		// Body is optional.
		_ = c.ShouldBindJSON(&body)

		session, err := sessions.Create(c.Request.Context(), body.Metadata)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to create session", err.Error())
			return
		}
		c.JSON(http.StatusCreated, session)
	}
}

// HandleGetSession returns a session with its message history.
func HandleGetSession(sessions *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := sessions.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			utils.RespondWithNotFound(c, "Session not found or expired")
			return
		}
		c.JSON(http.StatusOK, session)
	}
}

// HandleDeleteSession removes a session.
func HandleDeleteSession(sessions *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := sessions.Delete(c.Request.Context(), c.Param("id")); err != nil {
			utils.RespondWithInternalError(c, "Failed to delete session", err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
	}
}
