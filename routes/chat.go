package routes

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/HammadAli08/Portfolio-backend/internal/logger"
	"github.com/HammadAli08/Portfolio-backend/internal/rag"
	"github.com/HammadAli08/Portfolio-backend/models"
	"github.com/HammadAli08/Portfolio-backend/utils"
)

// doneSentinel marks end-of-turn on the socket protocol.
const doneSentinel = "[DONE]"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Portfolio widget may be embedded anywhere
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SetupChatRoutes registers the HTTP chat endpoint and the WebSocket loop.
func SetupChatRoutes(router *gin.Engine, holder *rag.Holder, stats *rag.Stats) {
	router.POST("/api/chat", func(c *gin.Context) {
		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		start := time.Now()
		defer func() { stats.RecordQuery(time.Since(start)) }()

		pipeline, err := holder.Get()
		if err != nil {
			logger.Error("Pipeline initialization failed", "error", err)
			utils.RespondWithInternalError(c, "RAG pipeline unavailable", nil)
			return
		}

		if !req.WantsStream() {
			response, err := pipeline.Answer(c.Request.Context(), req.Message)
			if err != nil {
				logger.Error("Chat generation failed", "error", err)
				utils.RespondWithInternalError(c, "Failed to generate response", nil)
				return
			}
			c.JSON(http.StatusOK, models.ChatResponse{Response: response})
			return
		}

		tokens, err := pipeline.StreamAnswer(c.Request.Context(), req.Message)
		if err != nil {
			logger.Error("Chat stream failed", "error", err)
			utils.RespondWithInternalError(c, "Failed to generate response", nil)
			return
		}

		// Raw fragment concatenation, no framing: the body is plain text
		// flushed chunk by chunk as the model produces it.
		c.Header("Content-Type", "text/plain; charset=utf-8")
		c.Status(http.StatusOK)
		c.Stream(func(w io.Writer) bool {
			token, ok := <-tokens
			if !ok {
				return false
			}
			if token.Err != nil {
				logger.Error("Stream interrupted", "error", token.Err)
				return false
			}
			_, _ = w.Write([]byte(token.Content))
			return true
		})
	})

	router.GET("/ws/chat", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Error("WebSocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		pipeline, err := holder.Get()
		if err != nil {
			logger.Error("Pipeline initialization failed", "error", err)
			return
		}

		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				logger.Debug("WebSocket disconnected", "error", err)
				return
			}

			start := time.Now()
			tokens, err := pipeline.StreamAnswer(c.Request.Context(), string(message))
			if err != nil {
				logger.Error("WebSocket stream failed", "error", err)
				return
			}

			for token := range tokens {
				if token.Err != nil {
					logger.Error("WebSocket stream interrupted", "error", token.Err)
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, []byte(token.Content)); err != nil {
					return
				}
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(doneSentinel)); err != nil {
				return
			}

			stats.RecordQuery(time.Since(start))
		}
	})
}
