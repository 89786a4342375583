package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/HammadAli08/Portfolio-backend/internal/rag"
	"github.com/HammadAli08/Portfolio-backend/utils"
)

// ReindexFunc rebuilds the vector index and reports success.
type ReindexFunc func() bool

// SetupSystemRoutes registers the capability descriptor, health, stats and
// reindex endpoints.
func SetupSystemRoutes(router *gin.Engine, holder *rag.Holder, stats *rag.Stats, reindex ReindexFunc) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":      "Portfolio RAG Backend is running",
			"docs_url":     "/docs",
			"health_check": "/api/health",
		})
	})

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":       "healthy",
			"index_status": stats.IndexStatus(),
			"timestamp":    time.Now().Unix(),
		})
	})

	router.POST("/api/reindex", func(c *gin.Context) {
		if !reindex() {
			utils.RespondWithInternalError(c, "Failed to rebuild Pinecone index", nil)
			return
		}

		// Drop the cached pipeline so the next query binds to the rebuilt
		// index. In-flight requests finish on the old instance.
		holder.Reset()
		stats.SetIndexStatus("Ready (Pinecone)")
		stats.MarkReindexed(time.Now())

		c.JSON(http.StatusOK, gin.H{"message": "Pinecone index rebuilt successfully"})
	})

	router.GET("/api/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, stats.Snapshot())
	})
}
